// Package achievements evaluates unlock rules against user activity.
// Grants are idempotent: call sites are known to deliver duplicate and
// overlapping triggers, and a satisfied rule that is already unlocked is a
// silent no-op.
package achievements

import (
	"time"

	"github.com/KevinT25/GameTracker-Backend/backend/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Trigger is a named category of user action.
type Trigger string

const (
	TriggerLogin           Trigger = "login"
	TriggerGameAdded       Trigger = "game_added"
	TriggerGameWishlisted  Trigger = "game_wishlisted"
	TriggerGameCompleted   Trigger = "game_completed"
	TriggerReviewCreated   Trigger = "review_created"
	TriggerReviewMilestone Trigger = "review_milestone"
	TriggerReplyPosted     Trigger = "reply_posted"
)

// Context carries trigger-specific values into rule predicates. The shape
// is free-form so new trigger kinds only need a new rule, not engine
// changes.
type Context map[string]interface{}

// Int reads a numeric context value regardless of how it was produced
// (literal, DB count, or decoded JSON).
func (c Context) Int(key string) int {
	switch v := c[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Rule binds a trigger kind to a predicate and an achievement code.
type Rule struct {
	Code      string
	Trigger   Trigger
	Condition func(ctx Context) bool
}

// AtLeast builds the common threshold predicate.
func AtLeast(key string, n int) func(Context) bool {
	return func(ctx Context) bool { return ctx.Int(key) >= n }
}

type Engine struct {
	db    *gorm.DB
	log   *logrus.Logger
	rules []Rule
}

func NewEngine(db *gorm.DB, log *logrus.Logger) *Engine {
	return &Engine{db: db, log: log, rules: DefaultRules()}
}

// AddRule registers an extra rule. Not safe to call concurrently with
// Evaluate; register rules during startup.
func (e *Engine) AddRule(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Evaluate runs every rule bound to the trigger and returns the codes newly
// unlocked. Counters the engine knows how to derive are recomputed from the
// database, never trusted from the caller.
func (e *Engine) Evaluate(userID uint, trigger Trigger, ctx Context) ([]string, error) {
	if ctx == nil {
		ctx = Context{}
	}
	e.recompute(userID, trigger, ctx)

	newly := []string{}
	for _, rule := range e.rules {
		if rule.Trigger != trigger {
			continue
		}
		if rule.Condition != nil && !rule.Condition(ctx) {
			continue
		}
		granted, err := e.grant(userID, rule.Code)
		if err != nil {
			return newly, err
		}
		if granted {
			newly = append(newly, rule.Code)
		}
	}
	return newly, nil
}

// grant inserts the unlock row, relying on the unique index to swallow
// duplicates. Reports whether the row was actually created.
func (e *Engine) grant(userID uint, code string) (bool, error) {
	res := e.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.UserAchievement{
		UserID:     userID,
		Code:       code,
		UnlockedAt: time.Now(),
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// recompute overwrites the context counters with authoritative values. A
// failed count is logged and skipped so evaluation can still proceed on
// whatever the caller supplied.
func (e *Engine) recompute(userID uint, trigger Trigger, ctx Context) {
	set := func(key string, value int64, err error) {
		if err != nil {
			e.log.WithError(err).WithField("counter", key).Warn("achievement counter recompute failed")
			return
		}
		ctx[key] = value
	}

	var n int64
	switch trigger {
	case TriggerLogin:
		err := e.db.Model(&models.LoginHistory{}).Where("user_id = ?", userID).Count(&n).Error
		set("totalLogins", n, err)
	case TriggerGameAdded:
		err := e.db.Model(&models.GameProgress{}).Where("user_id = ? AND owned = ?", userID, true).Count(&n).Error
		set("totalOwned", n, err)
	case TriggerGameWishlisted:
		err := e.db.Model(&models.GameProgress{}).Where("user_id = ? AND wishlisted = ?", userID, true).Count(&n).Error
		set("totalWishlisted", n, err)
	case TriggerGameCompleted:
		err := e.db.Model(&models.GameProgress{}).Where("user_id = ? AND completed = ?", userID, true).Count(&n).Error
		set("totalCompleted", n, err)
	case TriggerReviewCreated, TriggerReviewMilestone:
		err := e.db.Model(&models.Review{}).Where("user_id = ?", userID).Count(&n).Error
		set("totalReviews", n, err)
	case TriggerReplyPosted:
		err := e.db.Model(&models.Reply{}).Where("user_id = ?", userID).Count(&n).Error
		set("totalReplies", n, err)
	}
}

// Unlocked returns all achievement codes the user has earned, oldest first.
func (e *Engine) Unlocked(userID uint) ([]models.UserAchievement, error) {
	var rows []models.UserAchievement
	err := e.db.Where("user_id = ?", userID).Order("unlocked_at").Find(&rows).Error
	return rows, err
}
