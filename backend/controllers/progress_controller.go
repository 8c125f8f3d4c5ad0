package controllers

import (
	"errors"

	"github.com/KevinT25/GameTracker-Backend/backend/achievements"
	"github.com/KevinT25/GameTracker-Backend/backend/apperrors"
	"github.com/KevinT25/GameTracker-Backend/backend/catalog"
	"github.com/KevinT25/GameTracker-Backend/backend/middleware"
	"github.com/KevinT25/GameTracker-Backend/backend/models"
	"github.com/KevinT25/GameTracker-Backend/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB      *gorm.DB
	Catalog catalog.Catalog
	Engine  *achievements.Engine
	Log     *logrus.Logger
}

func NewProgressController(db *gorm.DB, cat catalog.Catalog, engine *achievements.Engine, log *logrus.Logger) *ProgressController {
	return &ProgressController{DB: db, Catalog: cat, Engine: engine, Log: log}
}

// Upsert creates the progress record lazily on first write and applies only
// the provided fields. The completed-games counter moves exclusively on a
// false -> true transition of the completed flag.
func (pc *ProgressController) Upsert(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	gameID, err := parseIDParam(c, "gameId")
	if err != nil {
		return utils.Fail(c, err)
	}

	exists, err := pc.Catalog.Exists(gameID)
	if err != nil {
		return utils.Fail(c, apperrors.Internal("could not check game catalog", err))
	}
	if !exists {
		return utils.Fail(c, apperrors.NotFound("game not found"))
	}

	var input struct {
		Owned       *bool `json:"owned"`
		Wishlisted  *bool `json:"wishlisted"`
		Completed   *bool `json:"completed"`
		HoursPlayed *int  `json:"hours_played"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var progress models.GameProgress
	var ownedTurnedOn, wishlistedTurnedOn, completedTurnedOn bool

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND game_id = ?", actor.ID, gameID).First(&progress).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			progress = models.GameProgress{UserID: actor.ID, GameID: gameID}
		} else if err != nil {
			return err
		}

		if input.Owned != nil {
			ownedTurnedOn = *input.Owned && !progress.Owned
			progress.Owned = *input.Owned
		}
		if input.Wishlisted != nil {
			wishlistedTurnedOn = *input.Wishlisted && !progress.Wishlisted
			progress.Wishlisted = *input.Wishlisted
		}
		if input.Completed != nil {
			completedTurnedOn = *input.Completed && !progress.Completed
			progress.Completed = *input.Completed
			if completedTurnedOn {
				progress.CompletedGames++
			}
		}
		if input.HoursPlayed != nil {
			if *input.HoursPlayed < 0 {
				return apperrors.Validation("hours_played cannot be negative")
			}
			progress.HoursPlayed = *input.HoursPlayed
		}

		return tx.Save(&progress).Error
	})
	if err != nil {
		if apperrors.KindOf(err) != apperrors.KindInternal {
			return utils.Fail(c, err)
		}
		return utils.Fail(c, apperrors.Internal("could not save progress", err))
	}

	// Triggers fire only on flag transitions, mirroring the counter rule.
	if ownedTurnedOn {
		dispatchTrigger(pc.Log, pc.Engine, actor.ID, achievements.TriggerGameAdded, nil)
	}
	if wishlistedTurnedOn {
		dispatchTrigger(pc.Log, pc.Engine, actor.ID, achievements.TriggerGameWishlisted, nil)
	}
	if completedTurnedOn {
		dispatchTrigger(pc.Log, pc.Engine, actor.ID, achievements.TriggerGameCompleted, nil)
	}

	return c.JSON(progress)
}

// List returns all progress rows for the authenticated user.
func (pc *ProgressController) List(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	var rows []models.GameProgress
	if err := pc.DB.Where("user_id = ?", actor.ID).Find(&rows).Error; err != nil {
		return utils.Fail(c, apperrors.Internal("could not fetch progress", err))
	}
	return c.JSON(rows)
}

// Get returns the progress row for one game.
func (pc *ProgressController) Get(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	gameID, err := parseIDParam(c, "gameId")
	if err != nil {
		return utils.Fail(c, err)
	}

	var progress models.GameProgress
	err = pc.DB.Where("user_id = ? AND game_id = ?", actor.ID, gameID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.Fail(c, apperrors.NotFound("no progress for this game"))
	}
	if err != nil {
		return utils.Fail(c, apperrors.Internal("could not fetch progress", err))
	}
	return c.JSON(progress)
}

// Delete removes the user-game relation.
func (pc *ProgressController) Delete(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	gameID, err := parseIDParam(c, "gameId")
	if err != nil {
		return utils.Fail(c, err)
	}

	res := pc.DB.Unscoped().
		Where("user_id = ? AND game_id = ?", actor.ID, gameID).
		Delete(&models.GameProgress{})
	if res.Error != nil {
		return utils.Fail(c, apperrors.Internal("could not delete progress", res.Error))
	}
	if res.RowsAffected == 0 {
		return utils.Fail(c, apperrors.NotFound("no progress for this game"))
	}
	return c.JSON(fiber.Map{"message": "progress deleted"})
}

// Stats aggregates the user's activity across all progress rows.
func (pc *ProgressController) Stats(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	var stats models.UserStats

	err := pc.DB.Model(&models.GameProgress{}).
		Where("user_id = ?", actor.ID).
		Select("COALESCE(SUM(hours_played), 0)").
		Scan(&stats.TotalHoursPlayed).Error
	if err != nil {
		return utils.Fail(c, apperrors.Internal("could not compute stats", err))
	}

	counts := []struct {
		dst   *int64
		model interface{}
		where string
		args  []interface{}
	}{
		{&stats.GamesOwned, &models.GameProgress{}, "user_id = ? AND owned = ?", []interface{}{actor.ID, true}},
		{&stats.GamesWishlisted, &models.GameProgress{}, "user_id = ? AND wishlisted = ?", []interface{}{actor.ID, true}},
		{&stats.GamesCompleted, &models.GameProgress{}, "user_id = ? AND completed = ?", []interface{}{actor.ID, true}},
		{&stats.ReviewsWritten, &models.Review{}, "user_id = ?", []interface{}{actor.ID}},
		{&stats.AchievementsUnlocked, &models.UserAchievement{}, "user_id = ?", []interface{}{actor.ID}},
	}
	for _, q := range counts {
		if err := pc.DB.Model(q.model).Where(q.where, q.args...).Count(q.dst).Error; err != nil {
			return utils.Fail(c, apperrors.Internal("could not compute stats", err))
		}
	}

	stats.Level = stats.GamesOwned + stats.GamesCompleted + stats.ReviewsWritten + stats.AchievementsUnlocked

	return c.JSON(stats)
}
