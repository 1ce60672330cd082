// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a bulletin board user.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Username    string         `gorm:"unique;not null" json:"username"`
	Email       string         `gorm:"unique;not null" json:"email"`
	Password    string         `gorm:"not null" json:"-"`
	DisplayName string         `gorm:"size:120" json:"display_name"`
	IsAdmin     bool           `gorm:"not null;default:false" json:"is_admin"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Name returns the user's display name, falling back to the username.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// UserOption is the {id,name} projection used by owner and roster pickers.
type UserOption struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// OptionsFromUsers projects users into picker options.
func OptionsFromUsers(users []User) []UserOption {
	opts := make([]UserOption, 0, len(users))
	for i := range users {
		opts = append(opts, UserOption{ID: users[i].ID, Name: users[i].Name()})
	}
	return opts
}
