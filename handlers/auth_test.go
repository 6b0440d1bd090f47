package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"EstateHub/models"
	"EstateHub/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == utils.TokenCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", utils.TokenCookie)
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]string{"name": "Ama", "email": "Ama@Test.io", "password": "secret1"}

	rec := env.do(t, http.MethodPost, "/api/auth/register", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reg := decode[models.LoginResponse](t, rec)
	assert.Equal(t, "User registered successfully", reg.Message)
	assert.NotEmpty(t, reg.Data.Token)
	assert.Equal(t, "ama@test.io", reg.Data.User.Email)
	assert.Equal(t, models.RoleUser, reg.Data.User.Role)
	assert.NotContains(t, rec.Body.String(), "secret1")
	assert.True(t, tokenCookie(t, rec).HttpOnly)

	rec = env.do(t, http.MethodPost, "/api/auth/register", body, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists", decode[any](t, rec).Message)

	rec = env.do(t, http.MethodPost, "/api/auth/register", map[string]string{"name": "x", "email": "bad", "password": "1"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "ama@test.io", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	claims, err := env.signer.Validate(decode[models.LoginResponse](t, rec).Data.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.Data.User.ID.Hex(), claims.ID)

	for _, creds := range []map[string]string{
		{"email": "ama@test.io", "password": "wrong-password"},
		{"email": "nobody@test.io", "password": "secret1"},
	} {
		rec = env.do(t, http.MethodPost, "/api/auth/login", creds, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid email or password", decode[any](t, rec).Message)
	}
}

func TestMeAcceptsCookieOrBearer(t *testing.T) {
	env := newTestEnv(t)
	u, token := env.user(t, "me@test.io", "secret1", models.RoleUser)

	rec := env.do(t, http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, no token", decode[any](t, rec).Message)

	rec = env.do(t, http.MethodGet, "/api/auth/me", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, u.ID, decode[models.User](t, env.do(t, http.MethodGet, "/api/auth/me", nil, token)).Data.ID)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: utils.TokenCookie, Value: token})
	rec = httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "me@test.io", decode[models.User](t, rec).Data.Email)
}

func TestMeRejectsDeletedUser(t *testing.T) {
	env := newTestEnv(t)
	u, token := env.user(t, "gone@test.io", "secret1", models.RoleUser)
	require.NoError(t, env.users.Delete(t.Context(), u.ID))

	rec := env.do(t, http.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, user not found", decode[any](t, rec).Message)
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/auth/logout", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	c := tokenCookie(t, rec)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
}

func TestPasswordReset(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "reset@test.io", "secret1", models.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": "unknown@test.io"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.mailer.sent)

	rec = env.do(t, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": "reset@test.io"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.mailer.sent, 1)
	assert.Contains(t, env.mailer.sent[0], "http://localhost:3000/reset-password?token=")
	token := resetTokenFrom(t, env.mailer.sent[0])

	reset := map[string]string{"token": token, "password": "newsecret"}
	rec = env.do(t, http.MethodPost, "/api/auth/reset-password", reset, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Password has been reset", decode[any](t, rec).Message)

	rec = env.do(t, http.MethodPost, "/api/auth/reset-password", reset, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired reset token", decode[any](t, rec).Message)

	assert.Equal(t, http.StatusUnauthorized,
		env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "reset@test.io", "password": "secret1"}, "").Code)
	assert.Equal(t, http.StatusOK,
		env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "reset@test.io", "password": "newsecret"}, "").Code)
}

func TestAdminLogin(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.user(t, "boss@test.io", "secret1", models.RoleAdmin)
	env.user(t, "plain@test.io", "secret1", models.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/admin/login", map[string]string{"email": "boss@test.io", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tokenCookie(t, rec)

	claims, err := env.signer.Validate(decode[models.LoginResponse](t, rec).Data.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID.Hex(), claims.ID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, 24*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))

	rec = env.do(t, http.MethodPost, "/api/admin/login", map[string]string{"email": "boss@test.io", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decode[any](t, rec).Message)

	rec = env.do(t, http.MethodPost, "/api/admin/login", map[string]string{"email": "plain@test.io", "password": "secret1"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Admin not found", decode[any](t, rec).Message)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}
