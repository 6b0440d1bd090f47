package handlers

import (
	"encoding/json"
	"errors"
	"strings"

	"EstateHub/models"
	"EstateHub/utils"

	"github.com/labstack/echo/v4"
)

// apiError maps repository and service errors onto HTTP errors. notFound is
// the 404 message; failure is the 500 message for anything unrecognised.
func apiError(err error, notFound, failure string) error {
	var verrs models.ValidationErrors
	var ferr models.FieldError
	switch {
	case errors.Is(err, models.ErrNotFound):
		return utils.NotFound(notFound)
	case errors.As(err, &verrs), errors.As(err, &ferr):
		return utils.BadRequest("Validation failed: "+err.Error(), err)
	case errors.Is(err, models.ErrDuplicateFavorite):
		return utils.BadRequest("Listing already in favorites", err)
	case errors.Is(err, models.ErrEmailInUse):
		return utils.BadRequest("User already exists", err)
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrInvalidKind),
		errors.Is(err, models.ErrInvalidReference):
		return utils.BadRequest(err.Error(), err)
	case errors.Is(err, models.ErrInvalidCredentials):
		return utils.Unauthorized("Invalid credentials", err)
	case errors.Is(err, models.ErrForbidden):
		return utils.Forbidden("Access denied")
	case errors.Is(err, models.ErrPaymentFinalized):
		return utils.Conflict("Payment is no longer pending", err)
	}
	return utils.Internal(failure, err)
}

// bindBody decodes a JSON body, or for multipart requests the JSON document in
// the "data" form field.
func bindBody(c echo.Context, dst interface{}) error {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		raw := c.FormValue("data")
		if raw == "" {
			return nil
		}
		if err := json.Unmarshal([]byte(raw), dst); err != nil {
			return utils.BadRequest("Invalid request body", err)
		}
		return nil
	}
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return utils.BadRequest("Invalid request body", err)
	}
	return nil
}

// bindAndValidate binds the request body and runs the echo validator.
func bindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return utils.BadRequest("Invalid request body", err)
	}
	return c.Validate(dst)
}
