package auth

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	apperrors "scholarchat/internal/errors"
	"scholarchat/internal/model"
	"scholarchat/internal/session"
)

// CookieName is the cookie carrying the signed session token.
const CookieName = "session"

// sessionContextKey is where the loaded session is stored on the echo context.
const sessionContextKey = "app_session"

// SessionMiddleware resolves the session record referenced by the validated
// token and attaches it to the request context. It runs after the JWT
// middleware, which leaves the parsed token under "user".
func SessionMiddleware(store session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session token")
			}
			claims, ok := token.Claims.(*Claims)
			if !ok || claims.SessionID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid session token")
			}

			sess, err := store.Get(c.Request().Context(), claims.SessionID)
			if err != nil {
				httpErr := apperrors.MapErrorToHTTP(err)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}

			c.Set(sessionContextKey, sess)
			return next(c)
		}
	}
}

// SessionFromContext returns the session attached by SessionMiddleware.
func SessionFromContext(c echo.Context) (*model.Session, bool) {
	sess, ok := c.Get(sessionContextKey).(*model.Session)
	return sess, ok
}

// SetSession attaches a session to the context directly. Used by handlers
// that create a session mid-request and by tests.
func SetSession(c echo.Context, sess *model.Session) {
	c.Set(sessionContextKey, sess)
}

// NewSessionCookie builds the session cookie for a signed token.
func NewSessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionTokenExpiry.Seconds()),
	}
}

// ExpiredSessionCookie builds a cookie that clears the session on the client.
func ExpiredSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}
