package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ghani250za/abdelghani-amrani/internal/app"
	"github.com/ghani250za/abdelghani-amrani/internal/middleware"
	"github.com/ghani250za/abdelghani-amrani/internal/model"
)

// DashboardHandler serves the profile header, the academic year picker and
// the report buttons.
type DashboardHandler struct {
	Apps *app.Registry
}

func NewDashboardHandler(apps *app.Registry) *DashboardHandler {
	return &DashboardHandler{Apps: apps}
}

type selectReq struct {
	ID model.ID `json:"id" validate:"required"`
}

func (h *DashboardHandler) Dashboard(c echo.Context) error {
	d, err := h.Apps.Get(middleware.ClientID(c)).Dashboard()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// SelectEnrollment switches the academic year.  A semester load failure
// still answers 200: the dashboard carries the error and the closed gate.
func (h *DashboardHandler) SelectEnrollment(c echo.Context) error {
	var req selectReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), callTimeout)
	defer cancel()

	a := h.Apps.Get(middleware.ClientID(c))
	if err := a.SelectEnrollment(ctx, req.ID); err != nil && (errors.Is(err, app.ErrNotLoggedIn) || errors.Is(err, app.ErrStale)) {
		return fail(c, err)
	}
	d, err := a.Dashboard()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Reload refetches the enrollment list.
func (h *DashboardHandler) Reload(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), callTimeout)
	defer cancel()

	a := h.Apps.Get(middleware.ClientID(c))
	if err := a.Reload(ctx); errors.Is(err, app.ErrNotLoggedIn) {
		return fail(c, err)
	}
	d, err := a.Dashboard()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}
