package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ghani250za/abdelghani-amrani/internal/app"
	"github.com/ghani250za/abdelghani-amrani/internal/middleware"
)

// ViewHandler serves navigation: the current screen, back, the swipe pager
// and the host menu.
type ViewHandler struct {
	Apps *app.Registry
}

func NewViewHandler(apps *app.Registry) *ViewHandler { return &ViewHandler{Apps: apps} }

type swipeReq struct {
	Phase string  `json:"phase" validate:"required,oneof=start move end settle"`
	X     float64 `json:"x"`
	Width int     `json:"width" validate:"gte=0"`
}

func widthParam(c echo.Context) int {
	w, err := strconv.Atoi(c.QueryParam("width"))
	if err != nil || w < 0 {
		return 0
	}
	return w
}

func (h *ViewHandler) View(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Apps.Get(middleware.ClientID(c)).View(widthParam(c)))
}

func (h *ViewHandler) Back(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Apps.Get(middleware.ClientID(c)).Back())
}

func (h *ViewHandler) Swipe(c echo.Context) error {
	var req swipeReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}
	v, err := h.Apps.Get(middleware.ClientID(c)).Swipe(app.SwipeEvent{Phase: req.Phase, X: req.X, Width: req.Width})
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, v)
}

// Page is an indicator dot click.
func (h *ViewHandler) Page(c echo.Context) error {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return badRequest(c, "invalid page index")
	}
	return c.JSON(http.StatusOK, h.Apps.Get(middleware.ClientID(c)).JumpTo(i))
}

// Menu lists host actions.  The query string is passed through so a side
// panel can identify itself with ?panel.
func (h *ViewHandler) Menu(c echo.Context) error {
	actions := h.Apps.Get(middleware.ClientID(c)).Menu(widthParam(c), c.QueryParams())
	return c.JSON(http.StatusOK, echo.Map{"actions": actions})
}
