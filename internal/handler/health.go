package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports liveness plus the session backend in use.
type HealthHandler struct {
	Backend string
	Clients func() int
}

func (h *HealthHandler) Health(c echo.Context) error {
	body := echo.Map{"status": "ok", "backend": h.Backend}
	if h.Clients != nil {
		body["clients"] = h.Clients()
	}
	return c.JSON(http.StatusOK, body)
}
