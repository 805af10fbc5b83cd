package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweet_shop/internal/domain"
	"github.com/Skotchmaster/sweet_shop/internal/logging"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/policy"
	"github.com/Skotchmaster/sweet_shop/internal/service"
	"github.com/Skotchmaster/sweet_shop/pkg/tokens"
)

const (
	claimsKey = "auth_claims"
	userKey   = "auth_user"
)

type Authenticator interface {
	Authenticate(ctx context.Context, claims *tokens.AccessClaims) (*models.User, error)
	Refresh(ctx context.Context, refreshToken string) (*service.Session, error)
}

// Middleware resolves the caller from a bearer header, the access cookie or
// a ?token= query parameter. Requests without a token continue anonymously.
type Middleware struct {
	Auth         Authenticator
	AccessSecret []byte
	Cookies      Cookies
}

func (m *Middleware) Handler() echo.MiddlewareFunc {
	parse := echojwt.WithConfig(echojwt.Config{
		ContextKey:             claimsKey,
		TokenLookup:            "header:Authorization:Bearer ,cookie:" + AccessCookie + ",query:token",
		ContinueOnIgnoredError: true,
		ParseTokenFunc: func(c echo.Context, auth string) (any, error) {
			return tokens.AccessClaimsFromToken(auth, m.AccessSecret)
		},
		ErrorHandler: m.onTokenError,
	})
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return parse(m.load(next))
	}
}

func (m *Middleware) onTokenError(c echo.Context, err error) error {
	if errors.Is(err, echojwt.ErrJWTMissing) {
		return nil
	}
	l := logging.FromContext(c.Request().Context()).With("middleware", "auth")

	if errors.Is(err, jwt.ErrTokenExpired) && fromCookie(c) {
		refresh, rErr := c.Cookie(RefreshCookie)
		if rErr == nil && refresh.Value != "" {
			sess, refErr := m.Auth.Refresh(c.Request().Context(), refresh.Value)
			if refErr == nil {
				m.Cookies.SetPair(c, sess.Tokens)
				c.Set(userKey, sess.User)
				l.Info("access_refreshed", "user_id", sess.User.ID)
				return nil
			}
			l.Warn("auto_refresh_error", "status", http.StatusUnauthorized, "reason", "refresh failed", "error", refErr)
		}
		m.Cookies.Clear(c)
		return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
	}

	if fromCookie(c) {
		m.Cookies.Clear(c)
	}
	return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
}

func (m *Middleware) load(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := c.Get(userKey).(*models.User); ok {
			return next(c)
		}
		claims, ok := c.Get(claimsKey).(*tokens.AccessClaims)
		if !ok {
			return next(c)
		}

		u, err := m.Auth.Authenticate(c.Request().Context(), claims)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidToken) {
				if fromCookie(c) {
					m.Cookies.Clear(c)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}
			return err
		}
		c.Set(userKey, u)
		return next(c)
	}
}

// fromCookie reports whether the access token was taken from the cookie,
// i.e. neither a bearer header nor a query token was sent.
func fromCookie(c echo.Context) bool {
	req := c.Request()
	return req.Header.Get(echo.HeaderAuthorization) == "" && c.QueryParam("token") == ""
}

func UserFrom(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}

func ActorFrom(c echo.Context) policy.Actor {
	return service.ActorOf(UserFrom(c))
}

// RequireAuth rejects anonymous requests. It must run after Handler.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if UserFrom(c) == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		return next(c)
	}
}
