package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ghani250za/abdelghani-amrani/internal/app"
	"github.com/ghani250za/abdelghani-amrani/internal/auth"
	"github.com/ghani250za/abdelghani-amrani/internal/progres"
	"github.com/ghani250za/abdelghani-amrani/internal/report"
)

// statusFor maps a domain error to an HTTP status.  Messages of auth,
// selection and upstream errors are user-facing and returned as is.
func statusFor(err error) int {
	var ae *auth.AuthError
	if errors.As(err, &ae) {
		if ae.Kind == auth.NoEnrollmentData {
			// upstream failed after the credentials were accepted
			if _, ok := progres.AsAPIError(ae.Err); ok {
				return http.StatusBadGateway
			}
			return http.StatusUnprocessableEntity
		}
		return http.StatusUnauthorized
	}
	switch {
	case errors.Is(err, app.ErrNotLoggedIn):
		return http.StatusUnauthorized
	case errors.Is(err, report.ErrUnknownKind):
		return http.StatusNotFound
	case errors.Is(err, report.ErrNoEnrollment), errors.Is(err, report.ErrGateClosed), errors.Is(err, app.ErrStale):
		return http.StatusConflict
	}
	if _, ok := progres.AsAPIError(err); ok {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func fail(c echo.Context, err error) error {
	return c.JSON(statusFor(err), echo.Map{"error": err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
