package transport

import (
	"time"

	"github.com/Skotchmaster/sweet_shop/internal/models"
)

type RegisterRequest struct {
	Email           string `json:"email"            validate:"required,email,max=254"`
	Username        string `json:"username"         validate:"required,min=3,max=30,username"`
	Password        string `json:"password"         validate:"required,min=8,max=72,bcrypt_len,not_numeric"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name"       validate:"max=30"`
	LastName        string `json:"last_name"        validate:"max=150"`
	PhoneNumber     string `json:"phone_number"     validate:"max=15"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type ChangePasswordRequest struct {
	OldPassword        string `json:"old_password"         validate:"required"`
	NewPassword        string `json:"new_password"         validate:"required,min=8,max=72,bcrypt_len,not_numeric,nefield=OldPassword"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required,eqfield=NewPassword"`
}

// ProfileUpdateRequest is used both for self service and by admins. The
// privilege fields are only honoured for admins editing someone else.
type ProfileUpdateRequest struct {
	Email       *string `json:"email"        validate:"omitempty,email,max=254"`
	Username    *string `json:"username"     validate:"omitempty,min=3,max=30,username"`
	FirstName   *string `json:"first_name"   validate:"omitempty,max=30"`
	LastName    *string `json:"last_name"    validate:"omitempty,max=150"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=15"`
	IsAdmin     *bool   `json:"is_admin"`
	IsStaff     *bool   `json:"is_staff"`
	IsSuperuser *bool   `json:"is_superuser"`
}

func (r ProfileUpdateRequest) TouchesPrivileges() bool {
	return r.IsAdmin != nil || r.IsStaff != nil || r.IsSuperuser != nil
}

type CreateUserRequest struct {
	Email       string `json:"email"        validate:"required,email,max=254"`
	Username    string `json:"username"     validate:"required,min=3,max=30,username"`
	Password    string `json:"password"     validate:"required,min=8,max=72,bcrypt_len,not_numeric"`
	FirstName   string `json:"first_name"   validate:"max=30"`
	LastName    string `json:"last_name"    validate:"max=150"`
	PhoneNumber string `json:"phone_number" validate:"max=15"`
	IsAdmin     bool   `json:"is_admin"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
	IsActive    *bool  `json:"is_active"`
}

type UserResponse struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	FullName    string     `json:"full_name"`
	PhoneNumber string     `json:"phone_number"`
	IsAdmin     bool       `json:"is_admin"`
	IsStaff     bool       `json:"is_staff"`
	IsSuperuser bool       `json:"is_superuser"`
	IsActive    bool       `json:"is_active"`
	Role        string     `json:"role"`
	LastLogin   *time.Time `json:"last_login"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func NewUserResponse(u models.User) UserResponse {
	full := u.FullName()
	if full == "" {
		full = u.Username
	}
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    full,
		PhoneNumber: u.PhoneNumber,
		IsAdmin:     u.IsAdmin,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		Role:        u.Role(),
		LastLogin:   u.LastLogin,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type TokensResponse struct {
	Access     string    `json:"access"`
	Refresh    string    `json:"refresh"`
	AccessExp  time.Time `json:"access_expires_at"`
	RefreshExp time.Time `json:"refresh_expires_at"`
}

type AuthResponse struct {
	User   UserResponse   `json:"user"`
	Tokens TokensResponse `json:"tokens"`
}

type ProfileResponse struct {
	UserResponse
	Permissions map[string]bool `json:"permissions"`
}
