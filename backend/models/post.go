package models

import (
	"time"

	"gorm.io/gorm"
)

// Post tags form a fixed enumeration; anything else is rejected at
// creation time.
var PostTags = map[string]bool{
	"general":    true,
	"news":       true,
	"review":     true,
	"discussion": true,
	"question":   true,
	"fanart":     true,
}

type Post struct {
	gorm.Model
	UserID   uint       `gorm:"not null" json:"user_id"`
	Username string     `json:"username"` // snapshot at creation, not re-synced
	Title    string     `gorm:"not null" json:"title"`
	Content  string     `gorm:"not null" json:"content"`
	Tag      string     `gorm:"default:general" json:"tag"`
	EditedAt *time.Time `json:"edited_at"`

	Votes    []Vote    `gorm:"polymorphic:Subject" json:"votes"`
	Comments []Comment `gorm:"polymorphic:Subject" json:"comments"`
	Reports  []Report  `gorm:"polymorphic:Subject" json:"-"`
}
