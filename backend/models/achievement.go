package models

import (
	"time"

	"gorm.io/gorm"
)

// Achievement is a catalog row describing one unlockable badge.
type Achievement struct {
	gorm.Model
	Code        string `gorm:"uniqueIndex;not null" json:"code"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Trigger     string `gorm:"column:trigger_kind;index" json:"trigger"`
	Threshold   int    `gorm:"default:0" json:"threshold"`
}

// UserAchievement records an unlock. The unique index makes grants
// idempotent: a duplicate insert is a no-op, never an error.
type UserAchievement struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     uint      `gorm:"uniqueIndex:idx_user_achievement;not null" json:"user_id"`
	Code       string    `gorm:"uniqueIndex:idx_user_achievement;not null" json:"code"`
	UnlockedAt time.Time `json:"unlocked_at"`
}
