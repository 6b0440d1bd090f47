package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"EstateHub/logging"
	"EstateHub/models"
	"EstateHub/repository/memstore"
	"EstateHub/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testApp struct {
	e      *echo.Echo
	signer *utils.TokenSigner
	users  *memstore.Users
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	signer, err := utils.NewTokenSigner("test-secret", time.Hour)
	require.NoError(t, err)
	users := memstore.NewUsers()

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(logging.Nop())
	e.Use(RequestLogger(logging.Nop()))

	auth := NewAuthenticator(signer, users)
	e.GET("/me", func(c echo.Context) error {
		return utils.Success(c, http.StatusOK, CurrentUser(c), "")
	}, auth.RequireAuth())
	e.GET("/admin", func(c echo.Context) error {
		return utils.Success(c, http.StatusOK, nil, "ok")
	}, auth.RequireAuth(), AdminOnly())
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("kaboom")
	})
	return &testApp{e: e, signer: signer, users: users}
}

func (a *testApp) token(t *testing.T, role string) (string, *models.User) {
	t.Helper()
	u := &models.User{Name: role, Email: role + "@test.io", Role: role}
	require.NoError(t, a.users.Create(context.Background(), u))
	tok, _, err := a.signer.Generate(u.ID, u.Role)
	require.NoError(t, err)
	return tok, u
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) utils.Envelope {
	t.Helper()
	var env utils.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	env := decode(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "Not authorized, no token", env.Message)
}

func TestRequireAuthRejectsBadToken(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, app.do(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, app.do(req).Code)
}

func TestRequireAuthBearerAndCookie(t *testing.T) {
	app := newTestApp(t)
	tok, u := app.token(t, models.RoleUser)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	rec := app.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), u.ID.Hex())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: utils.TokenCookie, Value: tok})
	assert.Equal(t, http.StatusOK, app.do(req).Code)
}

func TestRequireAuthDeletedUser(t *testing.T) {
	app := newTestApp(t)
	tok, _, err := app.signer.Generate(primitive.NewObjectID(), models.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, app.do(req).Code)
}

func TestAdminOnly(t *testing.T) {
	app := newTestApp(t)
	userTok, _ := app.token(t, models.RoleUser)
	adminTok, _ := app.token(t, models.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+userTok)
	assert.Equal(t, http.StatusForbidden, app.do(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+adminTok)
	assert.Equal(t, http.StatusOK, app.do(req).Code)

	assert.Equal(t, http.StatusUnauthorized, app.do(httptest.NewRequest(http.MethodGet, "/admin", nil)).Code)
}

func TestErrorHandlerEnvelope(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "Internal server error", env.Message)
	assert.Equal(t, "kaboom", env.Error)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, decode(t, rec).Success)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(httptest.NewRequest(http.MethodGet, "/boom", nil))
	_, err := uuid.Parse(rec.Header().Get(echo.HeaderXRequestID))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(echo.HeaderXRequestID, id)
	assert.Equal(t, id, app.do(req).Header().Get(echo.HeaderXRequestID))
}
