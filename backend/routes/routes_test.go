package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KevinT25/GameTracker-Backend/backend/achievements"
	"github.com/KevinT25/GameTracker-Backend/backend/catalog"
	"github.com/KevinT25/GameTracker-Backend/backend/config"
	"github.com/KevinT25/GameTracker-Backend/backend/models"
	"github.com/KevinT25/GameTracker-Backend/backend/ratelimit"
	"github.com/KevinT25/GameTracker-Backend/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBSeq int64

func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:routes_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))
	require.NoError(t, achievements.SeedDefaultAchievements(db))

	cfg := &config.Config{JWTSecret: "testsecret", JWTTTL: time.Hour}

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	// Zero interval keeps the anti-spam throttle out of the way here; the
	// limiter has its own tests.
	limiter := ratelimit.NewLimiter(0)
	t.Cleanup(limiter.Close)

	app := fiber.New()
	SetupRoutes(app, db, cfg, Deps{
		Logger:  logger,
		Limiter: limiter,
		Engine:  achievements.NewEngine(db, logger),
		Catalog: catalog.NewGormCatalog(db),
	})
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp, result
}

func registerUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	resp, result := doJSON(t, app, "POST", "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	token, _ := result["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestPostInteractionScenario(t *testing.T) {
	app, db := setupTestApp(t)

	tokenA := registerUser(t, app, "alice")
	tokenB := registerUser(t, app, "bob")
	tokenAdmin := registerUser(t, app, "mod")
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "mod").
		Update("role", "admin").Error)

	// Alice publishes a post.
	resp, post := doJSON(t, app, "POST", "/api/posts", tokenA, map[string]string{
		"title":   "Hello",
		"content": "First post",
		"tag":     "general",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	postID := int(post["ID"].(float64))
	postPath := fmt.Sprintf("/api/posts/%d", postID)

	// Bob likes it.
	resp, vote := doJSON(t, app, "POST", postPath+"/vote", tokenB, map[string]int{"value": 1})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "added", vote["outcome"])
	assert.EqualValues(t, 1, vote["likes"])
	assert.EqualValues(t, 0, vote["dislikes"])

	// Liking again toggles the vote off.
	resp, vote = doJSON(t, app, "POST", postPath+"/vote", tokenB, map[string]int{"value": 1})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "retracted", vote["outcome"])
	assert.EqualValues(t, 0, vote["likes"])

	// Alice cannot vote on her own post.
	resp, _ = doJSON(t, app, "POST", postPath+"/vote", tokenA, map[string]int{"value": 1})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Bob comments.
	resp, comment := doJSON(t, app, "POST", postPath+"/comments", tokenB, map[string]string{"text": "hello"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	commentID := int(comment["id"].(float64))
	commentPath := fmt.Sprintf("%s/comments/%d", postPath, commentID)

	// Alice owns the post but not the comment: delete is forbidden.
	resp, _ = doJSON(t, app, "DELETE", commentPath, tokenA, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// An administrator may remove it.
	resp, _ = doJSON(t, app, "DELETE", commentPath, tokenAdmin, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, fetched := doJSON(t, app, "GET", postPath, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	comments, _ := fetched["comments"].([]interface{})
	assert.Empty(t, comments)
}

func TestReportedOnce(t *testing.T) {
	app, db := setupTestApp(t)

	tokenA := registerUser(t, app, "author")
	tokenB := registerUser(t, app, "reporter")
	tokenMod := registerUser(t, app, "janitor")
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "janitor").
		Update("role", "admin").Error)

	resp, post := doJSON(t, app, "POST", "/api/posts", tokenA, map[string]string{
		"title": "Spam?", "content": "maybe",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	postID := int(post["ID"].(float64))
	path := fmt.Sprintf("/api/posts/%d/report", postID)

	resp, _ = doJSON(t, app, "POST", path, tokenB, map[string]string{"reason": "spam"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", path, tokenB, map[string]string{"reason": "spam again"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Report listing is admin only.
	listPath := fmt.Sprintf("/api/posts/%d/reports", postID)
	resp, _ = doJSON(t, app, "GET", listPath, tokenB, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req := httptest.NewRequest("GET", listPath, nil)
	req.Header.Set("Authorization", tokenMod)
	listResp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, listResp.StatusCode)

	var reports []map[string]interface{}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "spam", reports[0]["reason"])
}

func TestReviewPreconditions(t *testing.T) {
	app, db := setupTestApp(t)

	token := registerUser(t, app, "critic")
	require.NoError(t, db.Create(&models.Game{Title: "Night Drive"}).Error)

	review := map[string]interface{}{"game_id": 1, "score": 4, "body": "great"}

	// No play relationship yet.
	resp, _ := doJSON(t, app, "POST", "/api/reviews", token, review)
	assert.Equal(t, fiber.StatusPreconditionFailed, resp.StatusCode)

	// Unknown game.
	resp, _ = doJSON(t, app, "POST", "/api/reviews", token,
		map[string]interface{}{"game_id": 99, "score": 4})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// Record some progress, then the review goes through.
	resp, _ = doJSON(t, app, "PUT", "/api/progress/games/1", token,
		map[string]interface{}{"owned": true, "hours_played": 12})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/api/reviews", token, review)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// One review per (author, game).
	resp, _ = doJSON(t, app, "POST", "/api/reviews", token, review)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestCompletedCounterTransitions(t *testing.T) {
	app, db := setupTestApp(t)

	token := registerUser(t, app, "finisher")
	require.NoError(t, db.Create(&models.Game{Title: "Short Hike"}).Error)

	resp, progress := doJSON(t, app, "PUT", "/api/progress/games/1", token,
		map[string]interface{}{"completed": true})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, progress["completed_games"])

	// Writing true again must not increment.
	resp, progress = doJSON(t, app, "PUT", "/api/progress/games/1", token,
		map[string]interface{}{"completed": true})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, progress["completed_games"])

	// Un-complete, complete again: counts the new transition.
	resp, _ = doJSON(t, app, "PUT", "/api/progress/games/1", token,
		map[string]interface{}{"completed": false})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, progress = doJSON(t, app, "PUT", "/api/progress/games/1", token,
		map[string]interface{}{"completed": true})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, progress["completed_games"])
}

func TestReviewDeletePrunesBackReference(t *testing.T) {
	app, db := setupTestApp(t)

	token := registerUser(t, app, "writer")
	require.NoError(t, db.Create(&models.Game{Title: "Outer Loop"}).Error)

	resp, _ := doJSON(t, app, "PUT", "/api/progress/games/1", token,
		map[string]interface{}{"owned": true})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, review := doJSON(t, app, "POST", "/api/reviews", token,
		map[string]interface{}{"game_id": 1, "score": 5})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	reviewID := int(review["ID"].(float64))

	resp, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/api/reviews/%d", reviewID), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Review{}).Where("id = ?", reviewID).Count(&count).Error)
	assert.Zero(t, count)

	// Deleting the review frees the (author, game) slot again.
	resp, _ = doJSON(t, app, "POST", "/api/reviews", token,
		map[string]interface{}{"game_id": 1, "score": 3})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestGenrePreference(t *testing.T) {
	app, _ := setupTestApp(t)
	token := registerUser(t, app, "collector")

	// Unset genre reads as null.
	resp, result := doJSON(t, app, "GET", "/api/user/genre", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Nil(t, result["genre"])

	resp, _ = doJSON(t, app, "PUT", "/api/user/genre", token, map[string]string{"genre": "  "})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, "PUT", "/api/user/genre", token, map[string]string{"genre": "rpg"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, result = doJSON(t, app, "GET", "/api/user/genre", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "rpg", result["genre"])
}

func TestUserDirectory(t *testing.T) {
	app, _ := setupTestApp(t)
	token := registerUser(t, app, "first")
	registerUser(t, app, "second")

	resp, _ := doJSON(t, app, "PUT", "/api/user/genre", token, map[string]string{"genre": "roguelike"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	req := httptest.NewRequest("GET", "/api/users", nil)
	req.Header.Set("Authorization", token)
	listResp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, listResp.StatusCode)

	var users []map[string]interface{}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&users))
	require.Len(t, users, 2)
	assert.Equal(t, "first", users[0]["username"])
	assert.Equal(t, "roguelike", users[0]["favorite_genre"])
	assert.NotContains(t, users[0], "password_hash")

	resp, user := doJSON(t, app, "GET", "/api/users/1", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "first", user["username"])

	resp, _ = doJSON(t, app, "GET", "/api/users/999", token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUnlockedListing(t *testing.T) {
	app, db := setupTestApp(t)
	token := registerUser(t, app, "earner")

	require.NoError(t, db.Create(&models.UserAchievement{
		UserID:     1,
		Code:       "first-review",
		UnlockedAt: time.Now(),
	}).Error)

	req := httptest.NewRequest("GET", "/api/user/achievements", nil)
	req.Header.Set("Authorization", token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var unlocked []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&unlocked))
	require.Len(t, unlocked, 1)
	assert.Equal(t, "first-review", unlocked[0]["code"])
}

func TestUnknownTagRejected(t *testing.T) {
	app, _ := setupTestApp(t)
	token := registerUser(t, app, "poster")

	resp, _ := doJSON(t, app, "POST", "/api/posts", token, map[string]string{
		"title": "x", "content": "y", "tag": "clickbait",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, "POST", "/api/posts", "", map[string]string{
		"title": "x", "content": "y",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
