package models

import "gorm.io/gorm"

// GameProgress is the per-user-per-game record, created lazily on first
// write. CompletedGames is a running counter that moves only on a
// false -> true transition of Completed.
type GameProgress struct {
	gorm.Model
	UserID         uint `gorm:"uniqueIndex:idx_progress_user_game;not null" json:"user_id"`
	GameID         uint `gorm:"uniqueIndex:idx_progress_user_game;not null" json:"game_id"`
	Owned          bool `gorm:"default:false" json:"owned"`
	Wishlisted     bool `gorm:"default:false" json:"wishlisted"`
	Completed      bool `gorm:"default:false" json:"completed"`
	HoursPlayed    int  `gorm:"default:0" json:"hours_played"`
	CompletedGames int  `gorm:"default:0" json:"completed_games"`
}

// UserStats is the aggregate shape returned by the stats endpoint, computed
// from the user's progress rows, reviews and unlocked achievements.
type UserStats struct {
	TotalHoursPlayed     int   `json:"total_hours_played"`
	GamesOwned           int64 `json:"games_owned"`
	GamesWishlisted      int64 `json:"games_wishlisted"`
	GamesCompleted       int64 `json:"games_completed"`
	ReviewsWritten       int64 `json:"reviews_written"`
	AchievementsUnlocked int64 `json:"achievements_unlocked"`
	Level                int64 `json:"level"`
}
