package router // package router registers the host's HTTP routes

import (
	"github.com/labstack/echo/v4"

	"github.com/ghani250za/abdelghani-amrani/internal/handler"
)

// RegisterRoutes registers routes that need no client identity.  Currently
// it exposes only the health check used by load balancers and monitoring.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
}

// RegisterAuth registers the login screen routes under /v1.  identity must
// run before limiter so the limiter can key on the client id; the limiter
// is only applied to login, the one route that hits upstream
// authentication.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, identity, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1", identity)
	g.GET("/session", a.Session)
	g.POST("/auth/login", a.Login, limiter)
	g.POST("/auth/logout", a.Logout)
}

// RegisterPortal registers the dashboard, report and navigation routes.
// Handlers answer 401 themselves when the client has no session.
func RegisterPortal(e *echo.Echo, identity echo.MiddlewareFunc, d *handler.DashboardHandler, r *handler.ReportHandler, v *handler.ViewHandler) {
	g := e.Group("/v1", identity)

	// dashboard: profile, academic years, gated report buttons
	g.GET("/dashboard", d.Dashboard)
	g.PUT("/enrollments/selected", d.SelectEnrollment)
	g.POST("/enrollments/reload", d.Reload)

	// one report fragment per kind; ?semester=<id> for semester-scoped ones
	g.GET("/reports/:kind", r.Report)

	// navigation
	g.GET("/view", v.View)
	g.POST("/view/back", v.Back)
	g.POST("/view/swipe", v.Swipe)
	g.POST("/view/pages/:index", v.Page)
	g.GET("/menu", v.Menu)
}
