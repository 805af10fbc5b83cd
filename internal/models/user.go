package models

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/sweet_shop/internal/policy"
)

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement"      json:"id"`
	Email        string     `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Username     string     `gorm:"size:30;uniqueIndex;not null"  json:"username"`
	PasswordHash string     `gorm:"not null"                     json:"-"`
	FirstName    string     `gorm:"size:30"                      json:"first_name"`
	LastName     string     `gorm:"size:150"                     json:"last_name"`
	PhoneNumber  string     `gorm:"size:15"                      json:"phone_number"`
	IsAdmin      bool       `gorm:"not null"                     json:"is_admin"`
	IsStaff      bool       `gorm:"not null"                     json:"is_staff"`
	IsSuperuser  bool       `gorm:"not null"                     json:"is_superuser"`
	IsActive     bool       `gorm:"not null;index"               json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `gorm:"index"                        json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalize lowercases the email and cascades privileges:
// superuser implies admin, admin implies staff.
func (u *User) Normalize() {
	u.Email = NormalizeEmail(u.Email)
	u.Username = strings.TrimSpace(u.Username)
	if u.IsSuperuser {
		u.IsAdmin = true
	}
	if u.IsAdmin {
		u.IsStaff = true
	}
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Normalize()
	return nil
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) Actor() policy.Actor {
	return policy.Actor{
		ID:        u.ID,
		Active:    u.IsActive,
		Staff:     u.IsStaff,
		Admin:     u.IsAdmin,
		Superuser: u.IsSuperuser,
	}
}

// Role names the highest privilege flag the account holds.
func (u *User) Role() string {
	switch {
	case u.IsSuperuser:
		return policy.RoleSuperuser.String()
	case u.IsAdmin:
		return policy.RoleAdmin.String()
	case u.IsStaff:
		return policy.RoleStaff.String()
	default:
		return policy.RoleUser.String()
	}
}
