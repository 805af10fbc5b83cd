package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/sweet_shop/internal/domain"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/query"
	"github.com/Skotchmaster/sweet_shop/pkg/db"
)

const (
	emailTakenMsg    = "a user with this email already exists"
	usernameTakenMsg = "a user with this username already exists"
)

func fieldTaken(tx *gorm.DB, column, value string, excludeID uint) (bool, error) {
	var n int64
	err := tx.Model(&models.User{}).
		Where("LOWER("+column+") = LOWER(?) AND id <> ?", value, excludeID).
		Count(&n).Error
	return n > 0, err
}

// checkUnique reports taken email or username as field errors.
func checkUnique(tx *gorm.DB, u *models.User) error {
	verr := &domain.ValidationError{}
	taken, err := fieldTaken(tx, "email", u.Email, u.ID)
	if err != nil {
		return err
	}
	if taken {
		verr.Add("email", emailTakenMsg)
	}
	taken, err = fieldTaken(tx, "username", u.Username, u.ID)
	if err != nil {
		return err
	}
	if taken {
		verr.Add("username", usernameTakenMsg)
	}
	return verr.OrNil()
}

// duplicateUser maps a unique violation the pre-check missed onto the field
// whose index rejected the row.
func duplicateUser(err error) error {
	if strings.Contains(db.Constraint(err), "username") {
		return domain.NewValidationError("username", usernameTakenMsg)
	}
	return domain.NewValidationError("email", emailTakenMsg)
}

func (r *GormRepo) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	return fieldTaken(r.DB.WithContext(ctx), "email", models.NormalizeEmail(email), excludeID)
}

func (r *GormRepo) UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error) {
	return fieldTaken(r.DB.WithContext(ctx), "username", username, excludeID)
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	u.Normalize()
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx, u); err != nil {
			return err
		}
		return tx.Create(u).Error
	})
	if db.IsUniqueViolation(err) {
		return duplicateUser(err)
	}
	return err
}

func (r *GormRepo) SaveUser(ctx context.Context, u *models.User) error {
	u.Normalize()
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx, u); err != nil {
			return err
		}
		return tx.Save(u).Error
	})
	if db.IsUniqueViolation(err) {
		return duplicateUser(err)
	}
	return err
}

func (r *GormRepo) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, wrapNotFound(err, "user", id)
	}
	return &u, nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&u).Error
	if err != nil {
		return nil, wrapNotFound(err, "user", email)
	}
	return &u, nil
}

func (r *GormRepo) ListUsers(ctx context.Context, p query.Page) ([]models.User, int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []models.User
	err := r.DB.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Offset(p.Offset()).Limit(p.Size).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *GormRepo) AllUsers(ctx context.Context) ([]models.User, error) {
	var items []models.User
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error
	return items, err
}

// DeleteUser removes the account together with its refresh tokens.
func (r *GormRepo) DeleteUser(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return wrapNotFound(gorm.ErrRecordNotFound, "user", id)
		}
		return nil
	})
}

func (r *GormRepo) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login", at).Error
}
