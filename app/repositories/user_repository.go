package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/brewhouse/app/models"
	"github.com/shashiranjanraj/brewhouse/pkg/apperr"
)

const userNotFound = "User not found"

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, translate(err, userNotFound, "")
	}
	return &user, nil
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, userNotFound, "")
	}
	return &user, nil
}

// Taken reports whether username or email is already registered.
func (r *UserRepository) Taken(ctx context.Context, username, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&n).Error
	if err != nil {
		return false, storeErr(err)
	}
	return n > 0, nil
}

// Create persists a new user. A unique-index race surfaces as Conflict.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return translate(tx.Create(user).Error, "", "Username or email already exists.")
	})
}

// MarkVerified flips the verification flag and clears the OTP, but only
// while the stored hash still equals otpHash. A concurrent or replayed
// verification finds no row and gets an Auth error.
func (r *UserRepository) MarkVerified(ctx context.Context, id uint, otpHash string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND otp_hash = ?", id, otpHash).
			Updates(map[string]any{"is_verified": true, "otp_hash": gorm.Expr("NULL")})
		if res.Error != nil {
			return storeErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Auth("Invalid OTP.")
		}
		return nil
	})
}
