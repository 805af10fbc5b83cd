package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/sweet_shop/internal/handlers"
	authmw "github.com/Skotchmaster/sweet_shop/internal/middleware/auth"
	"github.com/Skotchmaster/sweet_shop/internal/middleware/csrf"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
	loggingmw "github.com/Skotchmaster/sweet_shop/pkg/middleware/logging"
)

type Deps struct {
	Sweets   *handlers.SweetHandler
	Auth     *handlers.AuthHandler
	Accounts *handlers.AccountHandler
	Feeds    *handlers.FeedHandler
	AuthMW   *authmw.Middleware

	CSRF        csrf.Config
	CORSOrigins []string
	// Ready reports whether dependencies are reachable; nil means always ready.
	Ready func(ctx context.Context) error
}

// New builds the echo instance with the global middleware stack and all routes.
func New(log *slog.Logger, d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler
	e.Validator = transport.NewValidator()

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(log))
	e.Use(middleware.BodyLimit("1M"))
	if len(d.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     d.CORSOrigins,
			AllowCredentials: true,
			AllowHeaders: []string{
				echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
				echo.HeaderAuthorization, "X-CSRF-Token",
			},
		}))
	}

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, handlers.ErrorResponse{Error: err.Error()})
			}
		}
		return c.NoContent(http.StatusOK)
	})

	csrfCfg := d.CSRF
	csrfCfg.SkipPaths = append(csrfCfg.SkipPaths, "/api/auth/login", "/api/auth/register", "/api/auth/refresh")
	if csrfCfg.Skipper == nil {
		csrfCfg.Skipper = csrf.CookieAuthOnly(authmw.AccessCookie, authmw.RefreshCookie)
	}
	api := e.Group("/api", csrf.Middleware(csrfCfg))

	public := api.Group("/auth")
	public.POST("/register", d.Auth.Register)
	public.POST("/login", d.Auth.Login)
	public.POST("/refresh", d.Auth.Refresh)
	public.POST("/logout", d.Auth.Logout)

	secured := api.Group("", d.AuthMW.Handler())

	account := secured.Group("/auth")
	account.POST("/logout-all", d.Auth.LogoutAll)
	account.GET("/check", d.Auth.Check, authmw.RequireAuth)
	account.GET("/profile", d.Accounts.Profile)
	account.PATCH("/profile", d.Accounts.UpdateProfile)
	account.POST("/profile/change-password", d.Auth.ChangePassword)

	users := account.Group("/users")
	users.GET("", d.Accounts.List)
	users.POST("", d.Accounts.Create)
	users.GET("/stats", d.Accounts.Stats)
	users.GET("/:id", d.Accounts.Get)
	users.PATCH("/:id", d.Accounts.Update)
	users.DELETE("/:id", d.Accounts.Delete)
	users.POST("/:id/activate", d.Accounts.Activate)
	users.POST("/:id/deactivate", d.Accounts.Deactivate)

	sweets := secured.Group("/sweets")
	sweets.GET("", d.Sweets.List)
	sweets.POST("", d.Sweets.Create)
	sweets.GET("/featured", d.Sweets.Featured)
	sweets.GET("/low-stock", d.Sweets.LowStock)
	sweets.GET("/out-of-stock", d.Sweets.OutOfStock)
	sweets.GET("/search", d.Sweets.Search)
	sweets.GET("/search/text", d.Sweets.TextSearch)
	sweets.GET("/:id", d.Sweets.Get)
	sweets.PUT("/:id", d.Sweets.Replace)
	sweets.PATCH("/:id", d.Sweets.Patch)
	sweets.DELETE("/:id", d.Sweets.Delete)
	sweets.POST("/:id/purchase", d.Sweets.Purchase)
	sweets.POST("/:id/restock", d.Sweets.Restock)
	sweets.PUT("/:id/price", d.Sweets.UpdatePrice)
	sweets.GET("/:id/movements", d.Sweets.Movements)

	secured.GET("/categories", d.Sweets.Categories)
	secured.GET("/stats", d.Sweets.Stats)
	secured.GET("/dashboard", d.Sweets.Dashboard)
	secured.POST("/bulk-operations", d.Sweets.Bulk)

	ws := e.Group("/ws", d.AuthMW.Handler(), authmw.RequireAuth)
	ws.GET("/inventory", d.Feeds.Inventory)
	ws.GET("/notifications", d.Feeds.Notifications)
}
