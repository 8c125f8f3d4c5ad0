package controllers

import (
	"errors"
	"time"

	"github.com/KevinT25/GameTracker-Backend/backend/achievements"
	"github.com/KevinT25/GameTracker-Backend/backend/apperrors"
	"github.com/KevinT25/GameTracker-Backend/backend/catalog"
	"github.com/KevinT25/GameTracker-Backend/backend/middleware"
	"github.com/KevinT25/GameTracker-Backend/backend/models"
	"github.com/KevinT25/GameTracker-Backend/backend/ratelimit"
	"github.com/KevinT25/GameTracker-Backend/backend/services"
	"github.com/KevinT25/GameTracker-Backend/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ReviewController struct {
	DB      *gorm.DB
	Service *services.Interactions
	Catalog catalog.Catalog
	Engine  *achievements.Engine
	Limiter *ratelimit.Limiter
	Log     *logrus.Logger
}

func NewReviewController(db *gorm.DB, service *services.Interactions, cat catalog.Catalog,
	engine *achievements.Engine, limiter *ratelimit.Limiter, log *logrus.Logger) *ReviewController {
	return &ReviewController{DB: db, Service: service, Catalog: cat, Engine: engine, Limiter: limiter, Log: log}
}

type reviewView struct {
	models.Review
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

func newReviewView(review models.Review) reviewView {
	likes, dislikes := models.CountVotes(review.Votes)
	return reviewView{Review: review, Likes: likes, Dislikes: dislikes}
}

func (rc *ReviewController) LoadSubject(c *fiber.Ctx) (services.Subject, error) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return services.Subject{}, err
	}

	var review models.Review
	if err := rc.DB.First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.Subject{}, apperrors.NotFound("review not found")
		}
		return services.Subject{}, apperrors.Internal("could not load review", err)
	}
	return services.Subject{Type: models.SubjectTypeReview, ID: review.ID, AuthorID: review.UserID}, nil
}

// Create validates the play-relationship precondition: the author must
// already have a progress record for the game, and no earlier review of it.
func (rc *ReviewController) Create(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if !rc.Limiter.Allow(actor.ID, ratelimit.ActionCreateReview) {
		return utils.Fail(c, apperrors.TooManyRequests("you are posting too fast, try again shortly"))
	}

	var input struct {
		GameID      uint   `json:"game_id"`
		Score       *int   `json:"score"`
		Subject     string `json:"subject"`
		Body        string `json:"body"`
		HoursPlayed int    `json:"hours_played"`
		Recommended *bool  `json:"recommended"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.GameID == 0 {
		return utils.BadRequest(c, "game_id is required")
	}
	if input.Score == nil || *input.Score < 0 || *input.Score > 5 {
		return utils.BadRequest(c, "score must be between 0 and 5")
	}

	exists, err := rc.Catalog.Exists(input.GameID)
	if err != nil {
		return utils.Fail(c, apperrors.Internal("could not check game catalog", err))
	}
	if !exists {
		return utils.Fail(c, apperrors.NotFound("game not found"))
	}

	var progressCount int64
	err = rc.DB.Model(&models.GameProgress{}).
		Where("user_id = ? AND game_id = ?", actor.ID, input.GameID).
		Count(&progressCount).Error
	if err != nil {
		return utils.Fail(c, apperrors.Internal("could not check game progress", err))
	}
	if progressCount == 0 {
		return utils.Fail(c, apperrors.PreconditionFailed("you can only review a game you have played"))
	}

	var reviewCount int64
	err = rc.DB.Model(&models.Review{}).
		Where("user_id = ? AND game_id = ?", actor.ID, input.GameID).
		Count(&reviewCount).Error
	if err != nil {
		return utils.Fail(c, apperrors.Internal("could not check existing reviews", err))
	}
	if reviewCount > 0 {
		return utils.Fail(c, apperrors.Conflict("you have already reviewed this game"))
	}

	recommended := true
	if input.Recommended != nil {
		recommended = *input.Recommended
	}

	review := models.Review{
		UserID:      actor.ID,
		GameID:      input.GameID,
		Username:    actor.Username,
		Score:       *input.Score,
		Subject:     input.Subject,
		Body:        input.Body,
		HoursPlayed: input.HoursPlayed,
		Recommended: recommended,
	}
	if err := rc.DB.Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.Fail(c, apperrors.Conflict("you have already reviewed this game"))
		}
		return utils.Fail(c, apperrors.Internal("could not create review", err))
	}

	// The original fires both kinds with overlapping counts; the engine
	// recomputes, so the duplication is harmless.
	dispatchTrigger(rc.Log, rc.Engine, actor.ID, achievements.TriggerReviewCreated, nil)
	dispatchTrigger(rc.Log, rc.Engine, actor.ID, achievements.TriggerReviewMilestone, nil)

	return utils.Created(c, newReviewView(review))
}

// List returns reviews newest first, optionally filtered by game or user.
func (rc *ReviewController) List(c *fiber.Ctx) error {
	query := rc.DB.Preload("Votes").Preload("Comments.Replies").Order("created_at DESC")
	if game := c.Query("game"); game != "" {
		query = query.Where("game_id = ?", game)
	}
	if user := c.Query("user"); user != "" {
		query = query.Where("user_id = ?", user)
	}

	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		return utils.Fail(c, apperrors.Internal("could not fetch reviews", err))
	}

	views := make([]reviewView, 0, len(reviews))
	for _, r := range reviews {
		views = append(views, newReviewView(r))
	}
	return c.JSON(views)
}

// ListByGame returns the reviews for one game, newest first.
func (rc *ReviewController) ListByGame(c *fiber.Ctx) error {
	gameID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}

	var reviews []models.Review
	err = rc.DB.Preload("Votes").Preload("Comments.Replies").
		Where("game_id = ?", gameID).Order("created_at DESC").Find(&reviews).Error
	if err != nil {
		return utils.Fail(c, apperrors.Internal("could not fetch reviews", err))
	}

	views := make([]reviewView, 0, len(reviews))
	for _, r := range reviews {
		views = append(views, newReviewView(r))
	}
	return c.JSON(views)
}

// Edit overwrites only the provided fields and stamps the edit timestamp.
func (rc *ReviewController) Edit(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}

	var review models.Review
	if err := rc.DB.First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Fail(c, apperrors.NotFound("review not found"))
		}
		return utils.Fail(c, apperrors.Internal("could not load review", err))
	}

	actor := middleware.ActorFromCtx(c)
	if review.UserID != actor.ID {
		return utils.Fail(c, apperrors.Forbidden("only the author can edit this review"))
	}

	var input struct {
		Score       *int    `json:"score"`
		Subject     *string `json:"subject"`
		Body        *string `json:"body"`
		HoursPlayed *int    `json:"hours_played"`
		Recommended *bool   `json:"recommended"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Score != nil {
		if *input.Score < 0 || *input.Score > 5 {
			return utils.BadRequest(c, "score must be between 0 and 5")
		}
		review.Score = *input.Score
	}
	if input.Subject != nil {
		review.Subject = *input.Subject
	}
	if input.Body != nil {
		review.Body = *input.Body
	}
	if input.HoursPlayed != nil {
		review.HoursPlayed = *input.HoursPlayed
	}
	if input.Recommended != nil {
		review.Recommended = *input.Recommended
	}

	now := time.Now()
	review.EditedAt = &now
	if err := rc.DB.Save(&review).Error; err != nil {
		return utils.Fail(c, apperrors.Internal("could not update review", err))
	}
	return c.JSON(newReviewView(review))
}

// Delete removes the review and its interactions in one transaction. With
// reviews keyed by (user, game) the progress back-reference disappears with
// the row itself; no separate pruning step can be forgotten.
func (rc *ReviewController) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}

	var review models.Review
	if err := rc.DB.First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Fail(c, apperrors.NotFound("review not found"))
		}
		return utils.Fail(c, apperrors.Internal("could not load review", err))
	}

	actor := middleware.ActorFromCtx(c)
	if review.UserID != actor.ID && !actor.Admin {
		return utils.Fail(c, apperrors.Forbidden("only the author or an administrator can delete this review"))
	}

	sub := services.Subject{Type: models.SubjectTypeReview, ID: review.ID, AuthorID: review.UserID}
	err = rc.DB.Transaction(func(tx *gorm.DB) error {
		if err := rc.Service.DeleteInteractions(tx, sub); err != nil {
			return err
		}
		return tx.Unscoped().Delete(&review).Error
	})
	if err != nil {
		return utils.Fail(c, apperrors.Internal("could not delete review", err))
	}
	return c.JSON(fiber.Map{"message": "review deleted"})
}
