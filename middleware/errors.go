package middleware

import (
	"net/http"

	"EstateHub/logging"
	"EstateHub/utils"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every error as {success:false, message, error}.
func ErrorHandler(fallback logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		apiErr := utils.AsAPIError(err)

		log := logging.FromContextOr(c.Request().Context(), fallback)
		fields := logging.Fields{"status": apiErr.Status, "path": c.Request().URL.Path}
		if apiErr.Status >= http.StatusInternalServerError {
			log.Error(apiErr.Message, err, fields)
		} else {
			log.Debug(apiErr.Message, fields)
		}

		body := utils.Envelope{Success: false, Message: apiErr.Message, Error: apiErr.Detail()}
		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(apiErr.Status)
		} else {
			writeErr = c.JSON(apiErr.Status, body)
		}
		if writeErr != nil {
			fallback.Error("failed to write error response", writeErr, nil)
		}
	}
}
