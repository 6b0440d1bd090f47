package middleware

import (
	"errors"
	"strings"

	"EstateHub/logging"
	"EstateHub/models"
	"EstateHub/repository"
	"EstateHub/utils"

	"github.com/labstack/echo/v4"
)

const (
	userKey     = "user"
	userIDKey   = "user_id"
	userRoleKey = "user_role"
)

// Authenticator resolves the acting user from a bearer token or the token cookie.
type Authenticator struct {
	signer *utils.TokenSigner
	users  repository.UserStore
}

func NewAuthenticator(signer *utils.TokenSigner, users repository.UserStore) *Authenticator {
	return &Authenticator{signer: signer, users: users}
}

func tokenFromRequest(c echo.Context) string {
	if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(utils.TokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth rejects requests without a valid token for an existing user.
func (a *Authenticator) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := tokenFromRequest(c)
			if tokenString == "" {
				return utils.Unauthorized("Not authorized, no token", nil)
			}

			claims, err := a.signer.Validate(tokenString)
			if err != nil {
				return utils.Unauthorized("Not authorized, token failed", err)
			}
			userID, err := claims.UserID()
			if err != nil {
				return utils.Unauthorized("Not authorized, token failed", err)
			}

			ctx := c.Request().Context()
			user, err := a.users.GetByID(ctx, userID)
			if errors.Is(err, models.ErrNotFound) {
				return utils.Unauthorized("Not authorized, user not found", nil)
			}
			if err != nil {
				return utils.Internal("Failed to load user", err)
			}

			c.Set(userKey, user)
			c.Set(userIDKey, user.ID)
			c.Set(userRoleKey, user.Role)
			log := logging.FromContext(ctx).WithFields(logging.Fields{"user_id": user.ID.Hex()})
			c.SetRequest(c.Request().WithContext(logging.WithLogger(ctx, log)))
			return next(c)
		}
	}
}

// AdminOnly must run after RequireAuth.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if role, _ := c.Get(userRoleKey).(string); role != models.RoleAdmin {
				return utils.Forbidden("Access denied, admin only")
			}
			return next(c)
		}
	}
}

// CurrentUser returns the user loaded by RequireAuth.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(userKey).(*models.User)
	return user
}
