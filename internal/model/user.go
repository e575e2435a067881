package model

import (
	"strings"
	"time"

	"gorm.io/gorm/schema"
)

// User is an authenticated principal of the API.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"type:text;uniqueIndex;not null" validate:"required,max=150"`
	Email        string    `json:"email" gorm:"type:text" validate:"omitempty,email"`
	FirstName    string    `json:"first_name" gorm:"type:text"`
	LastName     string    `json:"last_name" gorm:"type:text"`
	PasswordHash string    `json:"-" gorm:"type:text;not null"`
	IsStaff      bool      `json:"is_staff" gorm:"default:false"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the User model, respecting the Namer.
func (User) TableName(namer schema.Namer) string {
	return namer.TableName("users")
}

// FullName returns "first last", falling back to the username.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
