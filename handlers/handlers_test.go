package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"EstateHub/handlers"
	"EstateHub/logging"
	"EstateHub/middleware"
	"EstateHub/models"
	"EstateHub/repository"
	"EstateHub/repository/memstore"
	"EstateHub/routes"
	"EstateHub/services"
	"EstateHub/storage"
	"EstateHub/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *captureMailer) Send(_ context.Context, to, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+"\n"+body)
	return nil
}

type fakeMedia struct {
	mu        sync.Mutex
	uploaded  []string
	destroyed []string
}

func (m *fakeMedia) Upload(_ context.Context, name string, r io.Reader, resourceType string) (*storage.Asset, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploaded = append(m.uploaded, name)
	return &storage.Asset{URL: "https://cdn.test/" + name, PublicID: name, ResourceType: resourceType}, nil
}

func (m *fakeMedia) Destroy(_ context.Context, publicID, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyed = append(m.destroyed, publicID)
	return nil
}

func (m *fakeMedia) SignUpload(now time.Time) (*storage.Signature, error) {
	return nil, storage.ErrNotConfigured
}

type testEnv struct {
	e          *echo.Echo
	signer     *utils.TokenSigner
	lands      *memstore.Listings
	houses     *memstore.Listings
	apartments *memstore.Listings
	users      *memstore.Users
	favorites  *memstore.Favorites
	payments   *memstore.Payments
	mailer     *captureMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithMedia(t, nil)
}

func newTestEnvWithMedia(t *testing.T, media storage.MediaStore) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := utils.NewCache(utils.NewRedisClient(mr.Addr(), ""), time.Minute)

	signer, err := utils.NewTokenSigner("handler-secret", 24*time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		signer:     signer,
		lands:      memstore.NewListings(models.KindLand),
		houses:     memstore.NewListings(models.KindHouse),
		apartments: memstore.NewListings(models.KindApartment),
		users:      memstore.NewUsers(),
		favorites:  memstore.NewFavorites(),
		payments:   memstore.NewPayments(),
		mailer:     &captureMailer{},
	}
	listings := map[models.Kind]repository.ListingStore{
		models.KindLand:      env.lands,
		models.KindHouse:     env.houses,
		models.KindApartment: env.apartments,
	}

	admin := handlers.NewAdminController(listings, env.users, env.payments,
		services.NewUserRemover(env.users, env.favorites), signer, false)
	deps := handlers.ListingDeps{
		Favorites: env.favorites,
		Users:     env.users,
		Remover:   services.NewListingRemover(listings, env.favorites, env.users),
		Cache:     cache,
		Media:     media,
		OnChange:  admin.InvalidateDashboard,
	}
	var controllers []*handlers.ListingController
	for _, kind := range models.Kinds {
		controllers = append(controllers, handlers.NewListingController(listings[kind], deps))
	}

	e := echo.New()
	e.Validator = utils.NewRequestValidator()
	e.HTTPErrorHandler = middleware.ErrorHandler(logging.Nop())
	e.Use(middleware.RequestLogger(logging.Nop()))
	routes.RegisterRoutes(e, routes.Controllers{
		Auth: handlers.NewAuthController(env.users, signer, cache, env.mailer, handlers.AuthConfig{
			PublicBaseURL: "http://localhost:3000",
			ResetTokenTTL: 30 * time.Minute,
			OnRegister:    admin.InvalidateDashboard,
		}),
		Admin:         admin,
		Listings:      controllers,
		Payments:      handlers.NewPaymentController(services.NewPaymentService(listings, env.payments, env.users, admin.InvalidateDashboard)),
		Announcements: handlers.NewContentController[models.Announcement, *models.Announcement]("Announcement", memstore.NewAnnouncements()),
		Teams:         handlers.NewContentController[models.TeamMember, *models.TeamMember]("Team member", memstore.NewTeams()),
		Inspections:   handlers.NewContentController[models.Inspection, *models.Inspection]("Inspection", memstore.NewInspections()),
		Authenticator: middleware.NewAuthenticator(signer, env.users),
		Media:         media,
	})
	env.e = e
	return env
}

func (env *testEnv) user(t *testing.T, email, password, role string) (*models.User, string) {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{Name: "Test " + role, Email: email, Password: hash, Role: role}
	require.NoError(t, env.users.Create(context.Background(), u))
	token, _, err := env.signer.Generate(u.ID, u.Role)
	require.NoError(t, err)
	return u, token
}

func (env *testEnv) land(t *testing.T, title string, price float64, status models.Status) *models.Listing {
	t.Helper()
	l := &models.Listing{Title: title, Location: "Accra", Price: price, Size: "70x100", Status: status}
	require.NoError(t, env.lands.Insert(context.Background(), l))
	return l
}

func (env *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

// postMultipart sends a form with a JSON "data" field and one file per name.
func (env *testEnv) postMultipart(t *testing.T, path, data string, files map[string]string, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("data", data))
	for field, name := range files {
		part, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte("file-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

type envelope[T any] struct {
	Success    bool              `json:"success"`
	Data       T                 `json:"data"`
	Message    string            `json:"message"`
	Error      string            `json:"error"`
	Pagination *utils.Pagination `json:"pagination"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func resetTokenFrom(t *testing.T, mail string) string {
	t.Helper()
	i := strings.Index(mail, "token=")
	require.GreaterOrEqual(t, i, 0, mail)
	return strings.Fields(mail[i+len("token="):])[0]
}
