package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/KevinT25/GameTracker-Backend/backend/apperrors"
	"github.com/KevinT25/GameTracker-Backend/backend/middleware"
	"github.com/KevinT25/GameTracker-Backend/backend/models"
	"github.com/KevinT25/GameTracker-Backend/backend/ratelimit"
	"github.com/KevinT25/GameTracker-Backend/backend/services"
	"github.com/KevinT25/GameTracker-Backend/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PostController struct {
	DB      *gorm.DB
	Service *services.Interactions
	Limiter *ratelimit.Limiter
	Log     *logrus.Logger
}

func NewPostController(db *gorm.DB, service *services.Interactions, limiter *ratelimit.Limiter, log *logrus.Logger) *PostController {
	return &PostController{DB: db, Service: service, Limiter: limiter, Log: log}
}

// postView pairs the entity with vote totals derived on the way out.
type postView struct {
	models.Post
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

func newPostView(post models.Post) postView {
	likes, dislikes := models.CountVotes(post.Votes)
	return postView{Post: post, Likes: likes, Dislikes: dislikes}
}

// LoadSubject resolves the ":id" param into an interaction subject. Used by
// the shared interaction endpoints.
func (pc *PostController) LoadSubject(c *fiber.Ctx) (services.Subject, error) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return services.Subject{}, err
	}

	var post models.Post
	if err := pc.DB.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.Subject{}, apperrors.NotFound("post not found")
		}
		return services.Subject{}, apperrors.Internal("could not load post", err)
	}
	return services.Subject{Type: models.SubjectTypePost, ID: post.ID, AuthorID: post.UserID}, nil
}

func (pc *PostController) Create(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if !pc.Limiter.Allow(actor.ID, ratelimit.ActionCreatePost) {
		return utils.Fail(c, apperrors.TooManyRequests("you are posting too fast, try again shortly"))
	}

	var input struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Tag     string `json:"tag"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)
	if input.Title == "" || input.Content == "" {
		return utils.BadRequest(c, "title and content are required")
	}
	if input.Tag == "" {
		input.Tag = "general"
	}
	if !models.PostTags[input.Tag] {
		return utils.BadRequest(c, "unknown tag")
	}

	post := models.Post{
		UserID:   actor.ID,
		Username: actor.Username,
		Title:    input.Title,
		Content:  input.Content,
		Tag:      input.Tag,
	}
	if err := pc.DB.Create(&post).Error; err != nil {
		return utils.Fail(c, apperrors.Internal("could not create post", err))
	}
	return utils.Created(c, newPostView(post))
}

// List returns posts newest first, optionally filtered by tag.
func (pc *PostController) List(c *fiber.Ctx) error {
	query := pc.DB.Preload("Votes").Preload("Comments.Replies").Order("created_at DESC")
	if tag := c.Query("tag"); tag != "" {
		query = query.Where("tag = ?", tag)
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return utils.Fail(c, apperrors.Internal("could not fetch posts", err))
	}

	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		views = append(views, newPostView(p))
	}
	return c.JSON(views)
}

func (pc *PostController) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}

	var post models.Post
	err = pc.DB.Preload("Votes").Preload("Comments.Replies").First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.Fail(c, apperrors.NotFound("post not found"))
	}
	if err != nil {
		return utils.Fail(c, apperrors.Internal("could not load post", err))
	}
	return c.JSON(newPostView(post))
}

// Edit overwrites only the provided fields. Restricted to the author.
func (pc *PostController) Edit(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}

	var post models.Post
	if err := pc.DB.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Fail(c, apperrors.NotFound("post not found"))
		}
		return utils.Fail(c, apperrors.Internal("could not load post", err))
	}

	actor := middleware.ActorFromCtx(c)
	if post.UserID != actor.ID {
		return utils.Fail(c, apperrors.Forbidden("only the author can edit this post"))
	}

	var input struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
		Tag     *string `json:"tag"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return utils.BadRequest(c, "title cannot be empty")
		}
		post.Title = title
	}
	if input.Content != nil {
		content := strings.TrimSpace(*input.Content)
		if content == "" {
			return utils.BadRequest(c, "content cannot be empty")
		}
		post.Content = content
	}
	if input.Tag != nil {
		if !models.PostTags[*input.Tag] {
			return utils.BadRequest(c, "unknown tag")
		}
		post.Tag = *input.Tag
	}

	now := time.Now()
	post.EditedAt = &now
	if err := pc.DB.Save(&post).Error; err != nil {
		return utils.Fail(c, apperrors.Internal("could not update post", err))
	}
	return c.JSON(newPostView(post))
}

// Delete removes the post and every attached vote, comment, reply and
// report. Allowed for the author or an administrator.
func (pc *PostController) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}

	var post models.Post
	if err := pc.DB.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Fail(c, apperrors.NotFound("post not found"))
		}
		return utils.Fail(c, apperrors.Internal("could not load post", err))
	}

	actor := middleware.ActorFromCtx(c)
	if post.UserID != actor.ID && !actor.Admin {
		return utils.Fail(c, apperrors.Forbidden("only the author or an administrator can delete this post"))
	}

	sub := services.Subject{Type: models.SubjectTypePost, ID: post.ID, AuthorID: post.UserID}
	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := pc.Service.DeleteInteractions(tx, sub); err != nil {
			return err
		}
		return tx.Unscoped().Delete(&post).Error
	})
	if err != nil {
		return utils.Fail(c, apperrors.Internal("could not delete post", err))
	}
	return c.JSON(fiber.Map{"message": "post deleted"})
}
