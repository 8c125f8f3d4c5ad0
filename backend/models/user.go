package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null" json:"username"`
	Email        string `gorm:"unique;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"default:user" json:"role"` // user, admin
	// FavoriteGenre is free-form and empty until the user picks one.
	FavoriteGenre string `json:"favorite_genre"`
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

type LoginHistory struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	LoginTime time.Time `json:"login_time"`
}
