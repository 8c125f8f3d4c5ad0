package controllers

import (
	"github.com/KevinT25/GameTracker-Backend/backend/achievements"
	"github.com/KevinT25/GameTracker-Backend/backend/apperrors"
	"github.com/KevinT25/GameTracker-Backend/backend/middleware"
	"github.com/KevinT25/GameTracker-Backend/backend/models"
	"github.com/KevinT25/GameTracker-Backend/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AchievementController struct {
	DB     *gorm.DB
	Engine *achievements.Engine
}

func NewAchievementController(db *gorm.DB, engine *achievements.Engine) *AchievementController {
	return &AchievementController{DB: db, Engine: engine}
}

type unlockedView struct {
	models.Achievement
	UnlockedAt string `json:"unlocked_at"`
}

// ListCatalog returns every achievement that can be earned.
func (ac *AchievementController) ListCatalog(c *fiber.Ctx) error {
	var rows []models.Achievement
	if err := ac.DB.Order("trigger_kind, threshold").Find(&rows).Error; err != nil {
		return utils.Fail(c, apperrors.Internal("could not fetch achievements", err))
	}
	return c.JSON(rows)
}

// ListUnlocked returns the caller's unlocked achievements with catalog
// details, oldest unlock first.
func (ac *AchievementController) ListUnlocked(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	unlocks, err := ac.Engine.Unlocked(actor.ID)
	if err != nil {
		return utils.Fail(c, apperrors.Internal("could not fetch unlocks", err))
	}

	codes := make([]string, 0, len(unlocks))
	for _, u := range unlocks {
		codes = append(codes, u.Code)
	}

	details := map[string]models.Achievement{}
	if len(codes) > 0 {
		var catalogRows []models.Achievement
		if err := ac.DB.Where("code IN ?", codes).Find(&catalogRows).Error; err != nil {
			return utils.Fail(c, apperrors.Internal("could not fetch achievements", err))
		}
		for _, a := range catalogRows {
			details[a.Code] = a
		}
	}

	views := make([]unlockedView, 0, len(unlocks))
	for _, u := range unlocks {
		views = append(views, unlockedView{
			Achievement: details[u.Code],
			UnlockedAt:  u.UnlockedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return c.JSON(views)
}
