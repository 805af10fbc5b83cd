package service

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/notify"
	"github.com/Skotchmaster/sweet_shop/internal/policy"
	"github.com/Skotchmaster/sweet_shop/internal/query"
	"github.com/Skotchmaster/sweet_shop/internal/repo"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
)

const recentUsersWindow = 7 * 24 * time.Hour

type AccountService struct {
	Repo   *repo.GormRepo
	Events notify.Emitter
	Now    func() time.Time
}

type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type UserStats struct {
	TotalUsers    int          `json:"total_users"`
	ActiveUsers   int          `json:"active_users"`
	InactiveUsers int          `json:"inactive_users"`
	AdminUsers    int          `json:"admin_users"`
	StaffUsers    int          `json:"staff_users"`
	RegularUsers  int          `json:"regular_users"`
	Recent7Days   int          `json:"recent_users_7_days"`
	ByMonth       []MonthCount `json:"users_by_month"`
}

func (s *AccountService) now() time.Time { return clock(s.Now).now() }

// Permissions reports every known action and whether actor may perform it.
func Permissions(actor policy.Actor) map[string]bool {
	return lo.SliceToMap(policy.Actions(), func(a policy.Action) (string, bool) {
		return string(a), policy.Resolve(a, actor).Allowed
	})
}

func applyProfile(u *models.User, req transport.ProfileUpdateRequest, privileged bool) {
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Username != nil {
		u.Username = *req.Username
	}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		u.PhoneNumber = *req.PhoneNumber
	}
	if !privileged {
		return
	}
	if req.IsAdmin != nil {
		u.IsAdmin = *req.IsAdmin
	}
	if req.IsStaff != nil {
		u.IsStaff = *req.IsStaff
	}
	if req.IsSuperuser != nil {
		u.IsSuperuser = *req.IsSuperuser
	}
}

func (s *AccountService) Profile(ctx context.Context, actor policy.Actor) (*models.User, error) {
	if err := authorizeObject(policy.AccountRead, actor, policy.AccountTarget{ID: actor.ID}); err != nil {
		return nil, err
	}
	return s.Repo.GetUser(ctx, actor.ID)
}

func (s *AccountService) UpdateProfile(ctx context.Context, actor policy.Actor, req transport.ProfileUpdateRequest) (*models.User, error) {
	return s.UpdateUser(ctx, actor, actor.ID, req)
}

func (s *AccountService) List(ctx context.Context, actor policy.Actor, p query.Page) (query.Result[models.User], error) {
	if err := authorize(policy.AccountList, actor); err != nil {
		return query.Result[models.User]{}, err
	}
	items, total, err := s.Repo.ListUsers(ctx, p)
	if err != nil {
		return query.Result[models.User]{}, err
	}
	return query.NewResult(items, total, p), nil
}

func (s *AccountService) Create(ctx context.Context, actor policy.Actor, req transport.CreateUserRequest) (*models.User, error) {
	if err := authorize(policy.AccountCreate, actor); err != nil {
		return nil, err
	}
	pwHash, err := hashPassword("password", req.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: pwHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		IsAdmin:      req.IsAdmin,
		IsStaff:      req.IsStaff,
		IsSuperuser:  req.IsSuperuser,
		IsActive:     req.IsActive == nil || *req.IsActive,
	}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.emit(notify.AccountCreated, u)
	return u, nil
}

func (s *AccountService) Get(ctx context.Context, actor policy.Actor, id uint) (*models.User, error) {
	if err := authorizeObject(policy.AccountRead, actor, policy.AccountTarget{ID: id}); err != nil {
		return nil, err
	}
	return s.Repo.GetUser(ctx, id)
}

// UpdateUser edits an account. Privilege flags are applied only when an
// admin edits somebody else.
func (s *AccountService) UpdateUser(ctx context.Context, actor policy.Actor, id uint, req transport.ProfileUpdateRequest) (*models.User, error) {
	target := policy.AccountTarget{ID: id, PrivilegeChange: req.TouchesPrivileges()}
	if err := authorizeObject(policy.AccountUpdate, actor, target); err != nil {
		return nil, err
	}

	u, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProfile(u, req, actor.ID != id)
	if err := s.Repo.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AccountService) Delete(ctx context.Context, actor policy.Actor, id uint) error {
	if err := authorizeObject(policy.AccountDelete, actor, policy.AccountTarget{ID: id}); err != nil {
		return err
	}
	return s.Repo.DeleteUser(ctx, id)
}

// SetActive activates or deactivates an account. Deactivation also revokes
// every refresh token of the account.
func (s *AccountService) SetActive(ctx context.Context, actor policy.Actor, id uint, active bool) (*models.User, error) {
	action, typ := policy.AccountActivate, notify.AccountActivated
	if !active {
		action, typ = policy.AccountDeactivate, notify.AccountDeactivated
	}
	if err := authorizeObject(action, actor, policy.AccountTarget{ID: id}); err != nil {
		return nil, err
	}

	u, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	changed := u.IsActive != active
	u.IsActive = active
	if err := s.Repo.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	if !active {
		if _, err := s.Repo.RevokeAllRefreshTokens(ctx, id); err != nil {
			return nil, err
		}
	}
	if changed {
		s.emit(typ, u)
	}
	return u, nil
}

func (s *AccountService) Stats(ctx context.Context, actor policy.Actor) (*UserStats, error) {
	if err := authorize(policy.AccountStats, actor); err != nil {
		return nil, err
	}
	users, err := s.Repo.AllUsers(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeUserStats(users, s.now()), nil
}

// ComputeUserStats counts accounts by their highest role, so the admin,
// staff and regular figures add up to the total.
func ComputeUserStats(users []models.User, now time.Time) *UserStats {
	st := &UserStats{TotalUsers: len(users)}
	st.ActiveUsers = lo.CountBy(users, func(u models.User) bool { return u.IsActive })
	st.InactiveUsers = st.TotalUsers - st.ActiveUsers
	st.AdminUsers = lo.CountBy(users, func(u models.User) bool { return u.IsAdmin || u.IsSuperuser })
	st.StaffUsers = lo.CountBy(users, func(u models.User) bool { return u.IsStaff && !u.IsAdmin && !u.IsSuperuser })
	st.RegularUsers = st.TotalUsers - st.AdminUsers - st.StaffUsers

	since := now.Add(-recentUsersWindow)
	st.Recent7Days = lo.CountBy(users, func(u models.User) bool { return !u.CreatedAt.Before(since) })

	months := lo.CountValuesBy(users, func(u models.User) string { return u.CreatedAt.UTC().Format("2006-01") })
	st.ByMonth = lo.MapToSlice(months, func(m string, n int) MonthCount { return MonthCount{Month: m, Count: n} })
	sort.Slice(st.ByMonth, func(i, j int) bool { return st.ByMonth[i].Month < st.ByMonth[j].Month })
	return st
}

func (s *AccountService) emit(typ notify.Type, u *models.User) {
	if s.Events == nil {
		return
	}
	s.Events.Emit(notify.Event{
		Type:       typ,
		UserID:     u.ID,
		Payload:    map[string]any{"email": u.Email, "is_active": u.IsActive},
		OccurredAt: s.now(),
	})
}
