package achievements

import (
	"github.com/KevinT25/GameTracker-Backend/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultRules is the built-in rule table. Predicates read the counters the
// engine recomputes in Evaluate.
func DefaultRules() []Rule {
	return []Rule{
		{Code: "first-login", Trigger: TriggerLogin, Condition: AtLeast("totalLogins", 1)},
		{Code: "regular", Trigger: TriggerLogin, Condition: AtLeast("totalLogins", 10)},

		{Code: "collector-first", Trigger: TriggerGameAdded, Condition: AtLeast("totalOwned", 1)},
		{Code: "collector-10", Trigger: TriggerGameAdded, Condition: AtLeast("totalOwned", 10)},

		{Code: "wishful", Trigger: TriggerGameWishlisted, Condition: AtLeast("totalWishlisted", 1)},

		{Code: "finisher", Trigger: TriggerGameCompleted, Condition: AtLeast("totalCompleted", 1)},
		{Code: "completionist-5", Trigger: TriggerGameCompleted, Condition: AtLeast("totalCompleted", 5)},

		{Code: "first-review", Trigger: TriggerReviewCreated, Condition: AtLeast("totalReviews", 1)},
		{Code: "critic-5", Trigger: TriggerReviewMilestone, Condition: AtLeast("totalReviews", 5)},
		{Code: "critic-10", Trigger: TriggerReviewMilestone, Condition: AtLeast("totalReviews", 10)},

		{Code: "conversationalist", Trigger: TriggerReplyPosted, Condition: AtLeast("totalReplies", 10)},
	}
}

// SeedDefaultAchievements inserts the badge catalog rows matching
// DefaultRules. Existing rows are left untouched.
func SeedDefaultAchievements(db *gorm.DB) error {
	achievements := []models.Achievement{
		{Code: "first-login", Icon: "👋", Title: "Welcome Aboard", Description: "Log in for the first time", Trigger: string(TriggerLogin), Threshold: 1},
		{Code: "regular", Icon: "📅", Title: "Regular", Description: "Log in 10 times", Trigger: string(TriggerLogin), Threshold: 10},
		{Code: "collector-first", Icon: "🎮", Title: "Collector", Description: "Add your first game to the library", Trigger: string(TriggerGameAdded), Threshold: 1},
		{Code: "collector-10", Icon: "🗄️", Title: "Shelf Full", Description: "Own 10 games", Trigger: string(TriggerGameAdded), Threshold: 10},
		{Code: "wishful", Icon: "⭐", Title: "Wishful Thinking", Description: "Wishlist a game", Trigger: string(TriggerGameWishlisted), Threshold: 1},
		{Code: "finisher", Icon: "🏁", Title: "Finisher", Description: "Complete your first game", Trigger: string(TriggerGameCompleted), Threshold: 1},
		{Code: "completionist-5", Icon: "🏆", Title: "Completionist", Description: "Complete 5 games", Trigger: string(TriggerGameCompleted), Threshold: 5},
		{Code: "first-review", Icon: "✍️", Title: "First Impressions", Description: "Write your first review", Trigger: string(TriggerReviewCreated), Threshold: 1},
		{Code: "critic-5", Icon: "🧐", Title: "Critic", Description: "Write 5 reviews", Trigger: string(TriggerReviewMilestone), Threshold: 5},
		{Code: "critic-10", Icon: "🎩", Title: "Resident Critic", Description: "Write 10 reviews", Trigger: string(TriggerReviewMilestone), Threshold: 10},
		{Code: "conversationalist", Icon: "💬", Title: "Conversationalist", Description: "Post 10 replies", Trigger: string(TriggerReplyPosted), Threshold: 10},
	}

	for _, a := range achievements {
		err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&a).Error
		if err != nil {
			return err
		}
	}
	return nil
}
