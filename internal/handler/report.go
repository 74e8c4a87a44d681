package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ghani250za/abdelghani-amrani/internal/app"
	"github.com/ghani250za/abdelghani-amrani/internal/middleware"
	"github.com/ghani250za/abdelghani-amrani/internal/model"
	"github.com/ghani250za/abdelghani-amrani/internal/report"
)

type ReportHandler struct {
	Apps *app.Registry
}

func NewReportHandler(apps *app.Registry) *ReportHandler { return &ReportHandler{Apps: apps} }

// Report opens /v1/reports/:kind?semester=<id>.  Upstream failures come back
// as 200 with an error fragment; only a refused request is an HTTP error.
func (h *ReportHandler) Report(c echo.Context) error {
	kind, ok := report.ParseKind(c.Param("kind"))
	if !ok {
		return fail(c, report.ErrUnknownKind)
	}
	var semester model.ID
	if s := c.QueryParam("semester"); s != "" {
		id, err := model.ParseID(s)
		if err != nil {
			return badRequest(c, "invalid semester id")
		}
		semester = id
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), callTimeout)
	defer cancel()

	f, err := h.Apps.Get(middleware.ClientID(c)).Open(ctx, kind, semester)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, f)
}
