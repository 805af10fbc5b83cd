package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweet_shop/internal/domain"
	"github.com/Skotchmaster/sweet_shop/internal/logging"
	authmw "github.com/Skotchmaster/sweet_shop/internal/middleware/auth"
	"github.com/Skotchmaster/sweet_shop/internal/service"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
	"github.com/Skotchmaster/sweet_shop/pkg/tokens"
)

type AuthHandler struct {
	Auth    *service.AuthService
	Cookies authmw.Cookies
}

type messageResponse struct {
	Message string `json:"message"`
}

func tokensResponse(p *tokens.Pair) transport.TokensResponse {
	return transport.TokensResponse{
		Access:     p.AccessToken,
		Refresh:    p.RefreshToken,
		AccessExp:  p.AccessExp,
		RefreshExp: p.RefreshExp,
	}
}

func (h *AuthHandler) session(c echo.Context, code int, s *service.Session) error {
	h.Cookies.SetPair(c, s.Tokens)
	return c.JSON(code, transport.AuthResponse{
		User:   transport.NewUserResponse(*s.User),
		Tokens: tokensResponse(s.Tokens),
	})
}

// refreshToken takes the token from the body and falls back to the cookie.
func refreshToken(c echo.Context) (string, error) {
	var req transport.RefreshRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return "", err
		}
	}
	if req.Refresh != "" {
		return req.Refresh, nil
	}
	if ck, err := c.Cookie(authmw.RefreshCookie); err == nil && ck.Value != "" {
		return ck.Value, nil
	}
	return "", nil
}

func (h *AuthHandler) Register(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "Register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "register_error", err)
	}

	s, err := h.Auth.Register(c.Request().Context(), req)
	if err != nil {
		return fail(l, "register_error", err)
	}

	l.Info("user_registered", "user_id", s.User.ID)
	return h.session(c, http.StatusCreated, s)
}

func (h *AuthHandler) Login(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "Login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "login_error", err)
	}

	s, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(l, "login_error", err)
	}

	l.Info("user_logged_in", "user_id", s.User.ID)
	return h.session(c, http.StatusOK, s)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "Refresh")

	raw, err := refreshToken(c)
	if err != nil {
		return badRequest(l, "refresh_error", err)
	}
	if raw == "" {
		return fail(l, "refresh_error", domain.NewValidationError("refresh", "this field is required"))
	}

	s, err := h.Auth.Refresh(c.Request().Context(), raw)
	if err != nil {
		h.Cookies.Clear(c)
		return fail(l, "refresh_error", err)
	}
	h.Cookies.SetPair(c, s.Tokens)
	return c.JSON(http.StatusOK, tokensResponse(s.Tokens))
}

func (h *AuthHandler) Logout(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "Logout")

	raw, err := refreshToken(c)
	if err != nil {
		return badRequest(l, "logout_error", err)
	}
	if raw != "" {
		if err := h.Auth.Logout(c.Request().Context(), raw); err != nil {
			return fail(l, "logout_error", err)
		}
	}

	h.Cookies.Clear(c)
	return c.JSON(http.StatusOK, messageResponse{Message: "Successfully logged out"})
}

func (h *AuthHandler) LogoutAll(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "LogoutAll")

	n, err := h.Auth.LogoutAll(c.Request().Context(), authmw.ActorFrom(c))
	if err != nil {
		return fail(l, "logout_all_error", err)
	}

	h.Cookies.Clear(c)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Successfully logged out from all devices",
		"revoked": n,
	})
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "ChangePassword")

	var req transport.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "change_password_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "change_password_error", err)
	}

	s, err := h.Auth.ChangePassword(c.Request().Context(), authmw.ActorFrom(c), req)
	if err != nil {
		return fail(l, "change_password_error", err)
	}

	h.Cookies.SetPair(c, s.Tokens)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Password changed successfully",
		"tokens":  tokensResponse(s.Tokens),
	})
}

func (h *AuthHandler) Check(c echo.Context) error {
	u := authmw.UserFrom(c)
	return c.JSON(http.StatusOK, echo.Map{
		"authenticated": true,
		"user": echo.Map{
			"id":       u.ID,
			"email":    u.Email,
			"username": u.Username,
			"is_admin": u.IsAdmin,
			"role":     u.Role(),
		},
	})
}
