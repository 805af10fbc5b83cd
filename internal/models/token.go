package models

import "time"

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	JTI       string    `gorm:"size:64;uniqueIndex"  json:"jti"`
	TokenHash string    `gorm:"size:64;uniqueIndex"  json:"-"`
	UserID    uint      `gorm:"index;not null"       json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"             json:"expires_at"`
	Revoked   bool      `gorm:"not null"             json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
