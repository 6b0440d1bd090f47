package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"EstateHub/logging"
	"EstateHub/models"
	"EstateHub/repository"
	"EstateHub/services"
	"EstateHub/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const resetTokenPrefix = "reset:"

type AuthConfig struct {
	CookieSecure  bool
	PublicBaseURL string
	ResetTokenTTL time.Duration
	// OnRegister runs after a new account is stored.
	OnRegister func()
}

type AuthController struct {
	users  repository.UserStore
	signer *utils.TokenSigner
	tokens *utils.Cache
	mailer services.Mailer
	cfg    AuthConfig
}

func NewAuthController(users repository.UserStore, signer *utils.TokenSigner, tokens *utils.Cache, mailer services.Mailer, cfg AuthConfig) *AuthController {
	return &AuthController{users: users, signer: signer, tokens: tokens, mailer: mailer, cfg: cfg}
}

// issue signs a token for user, sets the cookie and writes the login response.
func (ac *AuthController) issue(c echo.Context, status int, user *models.User, message string) error {
	token, _, err := ac.signer.Generate(user.ID, user.Role)
	if err != nil {
		return utils.Internal("Failed to generate token", err)
	}
	utils.SetTokenCookie(c, token, ac.signer.TTL(), ac.cfg.CookieSecure)
	return utils.Success(c, status, models.LoginResponse{Token: token, User: user}, message)
}

func (ac *AuthController) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return utils.Internal("Failed to hash password", err)
	}
	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: hashedPassword,
		Role:     models.RoleUser,
	}
	if err := ac.users.Create(c.Request().Context(), user); err != nil {
		return apiError(err, "", "Failed to create user")
	}
	if ac.cfg.OnRegister != nil {
		ac.cfg.OnRegister()
	}
	return ac.issue(c, http.StatusCreated, user, "User registered successfully")
}

func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := ac.users.GetByEmail(c.Request().Context(), req.Email)
	if errors.Is(err, models.ErrNotFound) {
		return utils.Unauthorized("Invalid email or password", nil)
	}
	if err != nil {
		return utils.Internal("Failed to fetch user", err)
	}
	if err := utils.CheckPassword(user.Password, req.Password); err != nil {
		return utils.Unauthorized("Invalid email or password", nil)
	}
	return ac.issue(c, http.StatusOK, user, "Login successful")
}

func (ac *AuthController) Logout(c echo.Context) error {
	utils.ClearTokenCookie(c, ac.cfg.CookieSecure)
	return utils.Success(c, http.StatusOK, nil, "Logged out successfully")
}

func (ac *AuthController) Me(c echo.Context) error {
	return utils.Success(c, http.StatusOK, currentUser(c), "")
}

// ForgotPassword answers 200 whether or not the email is registered.
func (ac *AuthController) ForgotPassword(c echo.Context) error {
	var req models.ForgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if ac.tokens == nil {
		return utils.NewAPIError(http.StatusServiceUnavailable, "Password reset is not available", nil)
	}

	ctx := c.Request().Context()
	log := logging.FromContext(ctx)
	const sent = "If that email is registered, a reset link has been sent"

	user, err := ac.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, models.ErrNotFound) {
		log.Debug("password reset for unknown email", nil)
		return utils.Success(c, http.StatusOK, nil, sent)
	}
	if err != nil {
		return utils.Internal("Failed to fetch user", err)
	}

	token := uuid.NewString()
	if err := ac.tokens.PutToken(ctx, resetTokenPrefix+token, user.ID.Hex(), ac.cfg.ResetTokenTTL); err != nil {
		return utils.Internal("Failed to store reset token", err)
	}
	link := ac.cfg.PublicBaseURL + "/reset-password?token=" + url.QueryEscape(token)
	subject, body := services.PasswordResetMail(user.Name, link)
	if err := ac.mailer.Send(ctx, user.Email, subject, body); err != nil {
		return utils.Internal("Failed to send reset email", err)
	}
	log.Info("password reset requested", logging.Fields{"user_id": user.ID.Hex()})
	return utils.Success(c, http.StatusOK, nil, sent)
}

// ResetPassword consumes a reset token; each token works once.
func (ac *AuthController) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if ac.tokens == nil {
		return utils.NewAPIError(http.StatusServiceUnavailable, "Password reset is not available", nil)
	}

	ctx := c.Request().Context()
	raw, ok, err := ac.tokens.TakeToken(ctx, resetTokenPrefix+req.Token)
	if err != nil {
		return utils.Internal("Failed to read reset token", err)
	}
	if !ok {
		return utils.BadRequest("Invalid or expired reset token", nil)
	}
	userID, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return utils.BadRequest("Invalid or expired reset token", err)
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return utils.Internal("Failed to hash password", err)
	}
	if err := ac.users.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return apiError(err, "User not found", "Failed to update password")
	}
	return utils.Success(c, http.StatusOK, nil, "Password has been reset")
}
