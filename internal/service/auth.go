package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Skotchmaster/sweet_shop/internal/domain"
	"github.com/Skotchmaster/sweet_shop/internal/hash"
	"github.com/Skotchmaster/sweet_shop/internal/logging"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/notify"
	"github.com/Skotchmaster/sweet_shop/internal/policy"
	"github.com/Skotchmaster/sweet_shop/internal/repo"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
	"github.com/Skotchmaster/sweet_shop/pkg/tokens"
)

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *tokens.Issuer
	Events notify.Emitter
	Now    func() time.Time
}

// Session is an authenticated account together with its fresh token pair.
type Session struct {
	User   *models.User
	Tokens *tokens.Pair
}

func (a *AuthService) now() time.Time { return clock(a.Now).now() }

func subject(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func parseSubject(sub string) (uint, error) {
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad subject", domain.ErrInvalidToken)
	}
	return uint(id), nil
}

// hashPassword reports input bcrypt cannot take as a validation error on field.
func hashPassword(field, password string) (string, error) {
	h, err := hash.HashPassword(password)
	if errors.Is(err, hash.ErrPasswordTooLong) {
		return "", &domain.ValidationError{
			Fields: map[string]string{field: fmt.Sprintf("must be at most %d bytes long", hash.MaxPasswordBytes)},
			Cause:  err,
		}
	}
	return h, err
}

func (a *AuthService) issue(ctx context.Context, u *models.User) (*tokens.Pair, error) {
	pair, err := a.Tokens.NewPair(subject(u.ID), u.Role(), a.now())
	if err != nil {
		return nil, err
	}
	if err := a.Repo.AddRefreshToken(ctx, u.ID, pair.RefreshToken, pair.RefreshJTI, pair.RefreshExp); err != nil {
		return nil, err
	}
	return pair, nil
}

func (a *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	pwHash, err := hashPassword("password", req.Password)
	if errors.Is(err, domain.ErrValidation) {
		return nil, err
	}
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	u := &models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: pwHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		IsActive:     true,
	}
	if err := a.Repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	pair, err := a.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	if a.Events != nil {
		a.Events.Emit(notify.Event{Type: notify.AccountCreated, UserID: u.ID, Payload: map[string]any{"email": u.Email}, OccurredAt: a.now()})
	}
	return &Session{User: u, Tokens: pair}, nil
}

func (a *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := a.Repo.GetUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown email", domain.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !hash.CheckPassword(u.PasswordHash, password) {
		return nil, fmt.Errorf("%w: wrong password", domain.ErrInvalidCredentials)
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: account is disabled", domain.ErrInvalidCredentials)
	}

	now := a.now()
	if err := a.Repo.TouchLastLogin(ctx, u.ID, now); err != nil {
		return nil, err
	}
	u.LastLogin = &now

	pair, err := a.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Tokens: pair}, nil
}

// Refresh rotates the presented refresh token. A token can be rotated once.
func (a *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, a.Tokens.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	id, err := parseSubject(claims.Subject)
	if err != nil {
		return nil, err
	}
	u, err := a.Repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", domain.ErrInvalidToken)
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: account is disabled", domain.ErrInvalidToken)
	}

	pair, err := a.Tokens.NewPair(subject(u.ID), u.Role(), a.now())
	if err != nil {
		return nil, err
	}
	if err := a.Repo.RotateRefreshToken(ctx, claims.ID, refreshToken, u.ID, pair.RefreshToken, pair.RefreshJTI, pair.RefreshExp); err != nil {
		return nil, err
	}
	return &Session{User: u, Tokens: pair}, nil
}

// Logout revokes the given refresh token. Unparseable tokens are ignored.
func (a *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, a.Tokens.RefreshSecret)
	if err != nil {
		return nil
	}
	return a.Repo.RevokeRefreshToken(ctx, claims.ID)
}

func (a *AuthService) LogoutAll(ctx context.Context, actor policy.Actor) (int64, error) {
	if !actor.Authenticated() {
		return 0, domain.ErrUnauthenticated
	}
	return a.Repo.RevokeAllRefreshTokens(ctx, actor.ID)
}

func (a *AuthService) ChangePassword(ctx context.Context, actor policy.Actor, req transport.ChangePasswordRequest) (*Session, error) {
	if err := authorizeObject(policy.AccountChangePassword, actor, policy.AccountTarget{ID: actor.ID}); err != nil {
		return nil, err
	}
	u, err := a.Repo.GetUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if !hash.CheckPassword(u.PasswordHash, req.OldPassword) {
		return nil, domain.NewValidationError("old_password", "wrong password")
	}

	pwHash, err := hashPassword("new_password", req.NewPassword)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = pwHash
	if err := a.Repo.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	if _, err := a.Repo.RevokeAllRefreshTokens(ctx, u.ID); err != nil {
		return nil, err
	}

	pair, err := a.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Tokens: pair}, nil
}

// Authenticate resolves access token claims to the current state of the
// account, so deactivation and role changes apply immediately.
func (a *AuthService) Authenticate(ctx context.Context, claims *tokens.AccessClaims) (*models.User, error) {
	id, err := parseSubject(claims.Subject)
	if err != nil {
		return nil, err
	}
	u, err := a.Repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", domain.ErrInvalidToken)
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: account is disabled", domain.ErrInvalidToken)
	}
	return u, nil
}
