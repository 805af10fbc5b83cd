package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEcho() *echo.Echo {
	e := echo.New()
	cfg := DefaultConfig()
	cfg.Skipper = CookieAuthOnly("accessToken")
	e.Use(Middleware(cfg))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.GET("/thing", ok)
	e.POST("/thing", ok)
	return e
}

func TestCSRF(t *testing.T) {
	e := newEcho()
	session := &http.Cookie{Name: "accessToken", Value: "jwt"}

	get := httptest.NewRequest(http.MethodGet, "/thing", nil)
	get.AddCookie(session)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, get)
	require.Equal(t, http.StatusNoContent, rec.Code)
	token := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)

	tests := []struct {
		name   string
		header string
		bearer bool
		cookie bool
		want   int
	}{
		{name: "cookie session without header", cookie: true, want: http.StatusForbidden},
		{name: "cookie session with wrong header", cookie: true, header: "nope", want: http.StatusForbidden},
		{name: "cookie session with matching header", cookie: true, header: token, want: http.StatusNoContent},
		{name: "bearer request", bearer: true, want: http.StatusNoContent},
		{name: "anonymous request", want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/thing", nil)
			req.Header.Set("Origin", "http://example.com")
			if tt.cookie {
				req.AddCookie(session)
				req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: token})
			}
			if tt.bearer {
				req.Header.Set(echo.HeaderAuthorization, "Bearer abc")
			}
			if tt.header != "" {
				req.Header.Set("X-CSRF-Token", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCSRF_CrossOrigin(t *testing.T) {
	e := newEcho()
	req := httptest.NewRequest(http.MethodPost, "/thing", nil)
	req.Header.Set("Origin", "http://evil.test")
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "jwt"})
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "t"})
	req.Header.Set("X-CSRF-Token", "t")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
