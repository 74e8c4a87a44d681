package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ghani250za/abdelghani-amrani/internal/app"
	"github.com/ghani250za/abdelghani-amrani/internal/middleware"
)

// callTimeout bounds one handler's upstream work.  Login makes up to four
// sequential calls.
const callTimeout = 30 * time.Second

// AuthHandler serves the login screen: session restore, login and logout.
type AuthHandler struct {
	Apps *app.Registry
}

func NewAuthHandler(apps *app.Registry) *AuthHandler { return &AuthHandler{Apps: apps} }

type loginReq struct {
	Username string `json:"username" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=256"`
}

// Session restores a persisted login on the client's first request and
// reports the current screen.
func (h *AuthHandler) Session(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), callTimeout)
	defer cancel()
	return c.JSON(http.StatusOK, h.Apps.Get(middleware.ClientID(c)).Start(ctx))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), callTimeout)
	defer cancel()

	v, err := h.Apps.Get(middleware.ClientID(c)).Login(ctx, req.Username, req.Password)
	if err != nil {
		return c.JSON(statusFor(err), echo.Map{"error": err.Error(), "session": v})
	}
	return c.JSON(http.StatusOK, v)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), callTimeout)
	defer cancel()
	return c.JSON(http.StatusOK, h.Apps.Get(middleware.ClientID(c)).Logout(ctx))
}
