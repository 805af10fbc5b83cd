package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweet_shop/pkg/tokens"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

type Cookies struct {
	Secure bool
	Path   string
}

func (k Cookies) path() string {
	if k.Path == "" {
		return "/"
	}
	return k.Path
}

func (k Cookies) Create(name, value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     k.path(),
		Expires:  exp,
		HttpOnly: true,
		Secure:   k.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (k Cookies) Delete(name string) *http.Cookie {
	c := k.Create(name, "", time.Unix(0, 0))
	c.MaxAge = -1
	return c
}

// SetPair writes both tokens of a freshly issued pair.
func (k Cookies) SetPair(c echo.Context, p *tokens.Pair) {
	c.SetCookie(k.Create(AccessCookie, p.AccessToken, p.AccessExp))
	c.SetCookie(k.Create(RefreshCookie, p.RefreshToken, p.RefreshExp))
}

func (k Cookies) Clear(c echo.Context) {
	c.SetCookie(k.Delete(AccessCookie))
	c.SetCookie(k.Delete(RefreshCookie))
}
