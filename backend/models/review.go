package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is constrained to one per (author, game), and may only exist when
// the author already has a GameProgress record for that game.
type Review struct {
	gorm.Model
	UserID      uint       `gorm:"uniqueIndex:idx_reviews_user_game;not null" json:"user_id"`
	GameID      uint       `gorm:"uniqueIndex:idx_reviews_user_game;not null" json:"game_id"`
	Username    string     `json:"username"` // snapshot at creation
	Score       int        `gorm:"not null;check:score>=0 AND score<=5" json:"score"`
	Subject     string     `json:"subject"`
	Body        string     `json:"body"`
	HoursPlayed int        `gorm:"default:0" json:"hours_played"`
	Recommended bool       `gorm:"default:true" json:"recommended"`
	EditedAt    *time.Time `json:"edited_at"`

	Votes    []Vote    `gorm:"polymorphic:Subject" json:"votes"`
	Comments []Comment `gorm:"polymorphic:Subject" json:"comments"`
	Reports  []Report  `gorm:"polymorphic:Subject" json:"-"`
}
