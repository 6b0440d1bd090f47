package routes

import (
	"context"

	"EstateHub/handlers"
	"EstateHub/middleware"
	"EstateHub/models"
	"EstateHub/storage"

	"github.com/labstack/echo/v4"
)

// Controllers is everything RegisterRoutes mounts.
type Controllers struct {
	Auth          *handlers.AuthController
	Admin         *handlers.AdminController
	Listings      []*handlers.ListingController
	Payments      *handlers.PaymentController
	Announcements *handlers.ContentController[models.Announcement, *models.Announcement]
	Teams         *handlers.ContentController[models.TeamMember, *models.TeamMember]
	Inspections   *handlers.ContentController[models.Inspection, *models.Inspection]

	Authenticator *middleware.Authenticator
	Media         storage.MediaStore
	Ping          func(context.Context) error
}

func RegisterRoutes(e *echo.Echo, ctl Controllers) {
	e.GET("/health", handlers.HealthCheck(ctl.Ping))

	requireAuth := ctl.Authenticator.RequireAuth()
	adminOnly := middleware.AdminOnly()
	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", ctl.Auth.Register)
	auth.POST("/login", ctl.Auth.Login)
	auth.POST("/logout", ctl.Auth.Logout)
	auth.POST("/forgot-password", ctl.Auth.ForgotPassword)
	auth.POST("/reset-password", ctl.Auth.ResetPassword)
	auth.GET("/me", ctl.Auth.Me, requireAuth)

	upload := storage.UploadMiddleware(ctl.Media)
	for _, lc := range ctl.Listings {
		plural := lc.Kind().Plural()
		g := api.Group("/" + plural)
		g.GET("", lc.ListAvailable)
		g.GET("/all", lc.ListAll, requireAuth, adminOnly)
		g.GET("/search", lc.Search)
		g.GET("/filter", lc.Filter)
		g.GET("/favorites", lc.ListFavorites, requireAuth)
		g.POST("/favorites/:id", lc.AddFavorite, requireAuth)
		g.DELETE("/favorites/:id", lc.RemoveFavorite, requireAuth)
		g.GET("/my-"+plural, lc.MyListings, requireAuth)
		g.GET("/cloudinary-signature", lc.UploadSignature, requireAuth, adminOnly)
		g.GET("/:id", lc.Get)
		g.POST("", lc.Create, requireAuth, adminOnly, upload)
		g.PUT("/:id", lc.Update, requireAuth, adminOnly, upload)
		g.DELETE("/:id", lc.Delete, requireAuth, adminOnly)
	}

	payments := api.Group("/payments", requireAuth)
	payments.GET("/history", ctl.Payments.History)
	payments.POST("", ctl.Payments.Create)
	payments.PATCH("/:id/complete", ctl.Payments.Complete)
	payments.PATCH("/:id/fail", ctl.Payments.Fail)

	api.POST("/admin/login", ctl.Admin.Login)
	admin := api.Group("/admin", requireAuth, adminOnly)
	admin.POST("/logout", ctl.Admin.Logout)
	admin.GET("/dashboard", ctl.Admin.Dashboard)
	admin.GET("/stats", ctl.Admin.Stats)
	admin.GET("/users", ctl.Admin.ListUsers)
	admin.GET("/users/:id", ctl.Admin.GetUser)
	admin.PUT("/users/:id/role", ctl.Admin.UpdateUserRole)
	admin.DELETE("/users/:id", ctl.Admin.DeleteUser)

	mountContent(admin.Group("/announcements"), ctl.Announcements)
	mountContent(admin.Group("/teams"), ctl.Teams)
	mountContent(admin.Group("/inspections"), ctl.Inspections)
}

type contentRoutes interface {
	List(echo.Context) error
	Create(echo.Context) error
	Update(echo.Context) error
	Delete(echo.Context) error
}

func mountContent(g *echo.Group, cc contentRoutes) {
	g.GET("", cc.List)
	g.POST("", cc.Create)
	g.PUT("/:id", cc.Update)
	g.DELETE("/:id", cc.Delete)
}
