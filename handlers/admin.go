package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"EstateHub/models"
	"EstateHub/repository"
	"EstateHub/services"
	"EstateHub/utils"

	"github.com/jellydator/ttlcache/v3"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardKey      = "dashboard"
	dashboardCacheTTL = 30 * time.Second
	recentPayments    = 5
	revenueMonths     = 12
)

type DashboardStats struct {
	TotalLands      int64            `json:"totalLands"`
	TotalHouses     int64            `json:"totalHouses"`
	TotalApartments int64            `json:"totalApartments"`
	TotalUsers      int64            `json:"totalUsers"`
	TotalPayments   int64            `json:"totalPayments"`
	PendingPayments int64            `json:"pendingPayments"`
	TotalRevenue    float64          `json:"totalRevenue"`
	RecentPayments  []models.Payment `json:"recentPayments"`
}

type ListingStats struct {
	Listings       map[models.Kind]map[models.Status]int64 `json:"listings"`
	MonthlyRevenue []models.MonthlyRevenue                 `json:"monthlyRevenue"`
}

type AdminController struct {
	listings  map[models.Kind]repository.ListingStore
	users     repository.UserStore
	payments  repository.PaymentStore
	remover   *services.UserRemover
	signer    *utils.TokenSigner
	secure    bool
	dashboard *ttlcache.Cache[string, *DashboardStats]
	now       func() time.Time
}

func NewAdminController(listings map[models.Kind]repository.ListingStore, users repository.UserStore, payments repository.PaymentStore,
	remover *services.UserRemover, signer *utils.TokenSigner, cookieSecure bool) *AdminController {
	return &AdminController{
		listings: listings,
		users:    users,
		payments: payments,
		remover:  remover,
		signer:   signer,
		secure:   cookieSecure,
		dashboard: ttlcache.New(
			ttlcache.WithTTL[string, *DashboardStats](dashboardCacheTTL),
			ttlcache.WithDisableTouchOnHit[string, *DashboardStats](),
		),
		now: time.Now,
	}
}

// InvalidateDashboard drops the cached dashboard so the next read recomputes it.
func (ac *AdminController) InvalidateDashboard() {
	ac.dashboard.Delete(dashboardKey)
}

// Login only admits admin accounts: unknown or non-admin emails get 404.
func (ac *AdminController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := ac.users.GetByEmail(c.Request().Context(), req.Email)
	if errors.Is(err, models.ErrNotFound) || (err == nil && user.Role != models.RoleAdmin) {
		return utils.NotFound("Admin not found")
	}
	if err != nil {
		return utils.Internal("Failed to fetch admin", err)
	}
	if err := utils.CheckPassword(user.Password, req.Password); err != nil {
		return utils.Unauthorized("Invalid credentials", nil)
	}

	token, _, err := ac.signer.Generate(user.ID, user.Role)
	if err != nil {
		return utils.Internal("Failed to generate token", err)
	}
	utils.SetTokenCookie(c, token, ac.signer.TTL(), ac.secure)
	return utils.Success(c, http.StatusOK, models.LoginResponse{Token: token, User: user}, "Login successful")
}

func (ac *AdminController) Logout(c echo.Context) error {
	utils.ClearTokenCookie(c, ac.secure)
	return utils.Success(c, http.StatusOK, nil, "Logged out successfully")
}

func (ac *AdminController) computeDashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	g, ctx := errgroup.WithContext(ctx)

	count := func(dst *int64, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := fn(ctx)
			*dst = n
			return err
		})
	}
	count(&stats.TotalLands, ac.listings[models.KindLand].Count)
	count(&stats.TotalHouses, ac.listings[models.KindHouse].Count)
	count(&stats.TotalApartments, ac.listings[models.KindApartment].Count)
	count(&stats.TotalUsers, ac.users.Count)
	count(&stats.TotalPayments, ac.payments.Count)
	count(&stats.PendingPayments, func(ctx context.Context) (int64, error) {
		return ac.payments.CountByStatus(ctx, models.PaymentPending)
	})
	g.Go(func() error {
		total, err := ac.payments.TotalRevenue(ctx)
		stats.TotalRevenue = total
		return err
	})
	g.Go(func() error {
		recent, err := ac.payments.Recent(ctx, recentPayments)
		stats.RecentPayments = recent
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func (ac *AdminController) Dashboard(c echo.Context) error {
	if item := ac.dashboard.Get(dashboardKey); item != nil {
		return utils.Success(c, http.StatusOK, item.Value(), "")
	}
	stats, err := ac.computeDashboard(c.Request().Context())
	if err != nil {
		return utils.Internal("Failed to load dashboard", err)
	}
	ac.dashboard.Set(dashboardKey, stats, ttlcache.DefaultTTL)
	return utils.Success(c, http.StatusOK, stats, "")
}

// Stats returns the status breakdown per kind and revenue for the last twelve months.
func (ac *AdminController) Stats(c echo.Context) error {
	now := ac.now().UTC()
	since := time.Date(now.Year(), now.Month()-(revenueMonths-1), 1, 0, 0, 0, 0, time.UTC)

	result := ListingStats{Listings: make(map[models.Kind]map[models.Status]int64, len(models.Kinds))}
	counts := make([]map[models.Status]int64, len(models.Kinds))
	g, ctx := errgroup.WithContext(c.Request().Context())
	for i, kind := range models.Kinds {
		g.Go(func() error {
			byStatus, err := ac.listings[kind].CountByStatus(ctx)
			counts[i] = byStatus
			return err
		})
	}
	g.Go(func() error {
		monthly, err := ac.payments.MonthlyRevenue(ctx, since)
		result.MonthlyRevenue = monthly
		return err
	})
	if err := g.Wait(); err != nil {
		return utils.Internal("Failed to load stats", err)
	}
	for i, kind := range models.Kinds {
		result.Listings[kind] = counts[i]
	}
	return utils.Success(c, http.StatusOK, result, "")
}
