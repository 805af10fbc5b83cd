package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweet_shop/internal/logging"
	authmw "github.com/Skotchmaster/sweet_shop/internal/middleware/auth"
	"github.com/Skotchmaster/sweet_shop/internal/query"
	"github.com/Skotchmaster/sweet_shop/internal/service"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
)

type AccountHandler struct {
	Accounts *service.AccountService
}

func (h *AccountHandler) Profile(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "Profile")

	actor := authmw.ActorFrom(c)
	u, err := h.Accounts.Profile(c.Request().Context(), actor)
	if err != nil {
		return fail(l, "profile_error", err)
	}
	return c.JSON(http.StatusOK, transport.ProfileResponse{
		UserResponse: transport.NewUserResponse(*u),
		Permissions:  service.Permissions(actor),
	})
}

func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "UpdateProfile")

	var req transport.ProfileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_profile_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "update_profile_error", err)
	}

	u, err := h.Accounts.UpdateProfile(c.Request().Context(), authmw.ActorFrom(c), req)
	if err != nil {
		return fail(l, "update_profile_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profile updated successfully",
		"user":    transport.NewUserResponse(*u),
	})
}

func (h *AccountHandler) List(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "ListUsers")

	res, err := h.Accounts.List(c.Request().Context(), authmw.ActorFrom(c), pageOf(c))
	if err != nil {
		return fail(l, "list_users_error", err)
	}
	return c.JSON(http.StatusOK, query.MapResult(res, transport.NewUserResponse))
}

func (h *AccountHandler) Create(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "CreateUser")

	var req transport.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_user_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "create_user_error", err)
	}

	u, err := h.Accounts.Create(c.Request().Context(), authmw.ActorFrom(c), req)
	if err != nil {
		return fail(l, "create_user_error", err)
	}

	l.Info("user_created", "user_id", u.ID, "role", u.Role())
	return c.JSON(http.StatusCreated, transport.NewUserResponse(*u))
}

func (h *AccountHandler) Get(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "GetUser")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "get_user_error", err)
	}
	u, err := h.Accounts.Get(c.Request().Context(), authmw.ActorFrom(c), id)
	if err != nil {
		return fail(l, "get_user_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(*u))
}

func (h *AccountHandler) Update(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "UpdateUser")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "update_user_error", err)
	}
	var req transport.ProfileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_user_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "update_user_error", err)
	}

	u, err := h.Accounts.UpdateUser(c.Request().Context(), authmw.ActorFrom(c), id, req)
	if err != nil {
		return fail(l, "update_user_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(*u))
}

func (h *AccountHandler) Delete(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "DeleteUser")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "delete_user_error", err)
	}
	if err := h.Accounts.Delete(c.Request().Context(), authmw.ActorFrom(c), id); err != nil {
		return fail(l, "delete_user_error", err)
	}

	l.Info("user_deleted", "user_id", id)
	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}

func (h *AccountHandler) setActive(c echo.Context, active bool) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "SetActive")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "set_active_error", err)
	}
	u, err := h.Accounts.SetActive(c.Request().Context(), authmw.ActorFrom(c), id, active)
	if err != nil {
		return fail(l, "set_active_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(*u))
}

func (h *AccountHandler) Activate(c echo.Context) error   { return h.setActive(c, true) }
func (h *AccountHandler) Deactivate(c echo.Context) error { return h.setActive(c, false) }

func (h *AccountHandler) Stats(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "UserStats")

	st, err := h.Accounts.Stats(c.Request().Context(), authmw.ActorFrom(c))
	if err != nil {
		return fail(l, "user_stats_error", err)
	}
	return c.JSON(http.StatusOK, st)
}
