package models

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/brewhouse/pkg/auth"
)

// User is an account that can authenticate and place orders.
type User struct {
	gorm.Model
	Username   string    `gorm:"uniqueIndex;size:80;not null" json:"username"`
	Email      string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password   string    `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Role       auth.Role `gorm:"size:20;not null;default:User" json:"role"`
	IsVerified bool      `gorm:"not null;default:false" json:"is_verified"`
	OTPHash    *string   `gorm:"column:otp_hash;size:64" json:"-"` // nil once verified
}
