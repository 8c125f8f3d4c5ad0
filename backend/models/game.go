package models

import "gorm.io/gorm"

// Game is the minimal catalog row the backend needs: review creation only
// checks that the referenced game exists.
type Game struct {
	gorm.Model
	Title    string `gorm:"not null" json:"title"`
	CoverURL string `json:"cover_url"`
}
