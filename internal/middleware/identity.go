package middleware

// identity.go gives every browser a stable client id.  The id keys the
// per-client state in the app registry and the rate limiter; it carries no
// credentials of its own.

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ClientCookie is the cookie holding the client id.
const ClientCookie = "progres_client"

const clientKey = "client_id"

// Identity reads the client cookie or issues a new one.  A malformed value is
// replaced rather than trusted.
func Identity(secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(ClientCookie); err == nil {
				if u, err := uuid.Parse(ck.Value); err == nil {
					id = u.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     ClientCookie,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
					Expires:  time.Now().Add(365 * 24 * time.Hour),
				})
			}
			c.Set(clientKey, id)
			return next(c)
		}
	}
}

// ClientID returns the id set by Identity, or "anon" outside it.
func ClientID(c echo.Context) string {
	if v, ok := c.Get(clientKey).(string); ok && v != "" {
		return v
	}
	return "anon"
}
