package controllers

import (
	"strconv"

	"github.com/KevinT25/GameTracker-Backend/backend/achievements"
	"github.com/KevinT25/GameTracker-Backend/backend/apperrors"
	"github.com/KevinT25/GameTracker-Backend/backend/middleware"
	"github.com/KevinT25/GameTracker-Backend/backend/ratelimit"
	"github.com/KevinT25/GameTracker-Backend/backend/services"
	"github.com/KevinT25/GameTracker-Backend/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// SubjectLoader resolves the ":id" route param into the target entity.
// Posts and reviews provide their own loaders; everything below is shared.
type SubjectLoader func(c *fiber.Ctx) (services.Subject, error)

// InteractionController serves the vote/comment/reply/report endpoints for
// one parent entity kind.
type InteractionController struct {
	Service *services.Interactions
	Engine  *achievements.Engine
	Limiter *ratelimit.Limiter
	Log     *logrus.Logger
	Load    SubjectLoader
}

func NewInteractionController(service *services.Interactions, engine *achievements.Engine,
	limiter *ratelimit.Limiter, log *logrus.Logger, load SubjectLoader) *InteractionController {
	return &InteractionController{Service: service, Engine: engine, Limiter: limiter, Log: log, Load: load}
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.Atoi(c.Params(name))
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("invalid " + name)
	}
	return uint(id), nil
}

// Vote toggles the caller's vote on the entity.
func (ic *InteractionController) Vote(c *fiber.Ctx) error {
	sub, err := ic.Load(c)
	if err != nil {
		return utils.Fail(c, err)
	}

	var input struct {
		Value int `json:"value"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	actor := middleware.ActorFromCtx(c)
	outcome, err := ic.Service.CastVote(sub, actor, input.Value)
	if err != nil {
		return utils.Fail(c, err)
	}

	likes, dislikes, err := ic.Service.VoteCounts(sub)
	if err != nil {
		return utils.Fail(c, err)
	}

	return c.JSON(fiber.Map{
		"outcome":  outcome,
		"likes":    likes,
		"dislikes": dislikes,
	})
}

func (ic *InteractionController) AddComment(c *fiber.Ctx) error {
	sub, err := ic.Load(c)
	if err != nil {
		return utils.Fail(c, err)
	}

	var input struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	comment, err := ic.Service.AddComment(sub, middleware.ActorFromCtx(c), input.Text)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Created(c, comment)
}

func (ic *InteractionController) AddReply(c *fiber.Ctx) error {
	sub, err := ic.Load(c)
	if err != nil {
		return utils.Fail(c, err)
	}
	commentID, err := parseIDParam(c, "commentId")
	if err != nil {
		return utils.Fail(c, err)
	}

	var input struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	actor := middleware.ActorFromCtx(c)
	reply, err := ic.Service.AddReply(sub, commentID, actor, input.Text)
	if err != nil {
		return utils.Fail(c, err)
	}

	dispatchTrigger(ic.Log, ic.Engine, actor.ID, achievements.TriggerReplyPosted, nil)

	return utils.Created(c, reply)
}

func (ic *InteractionController) EditComment(c *fiber.Ctx) error {
	sub, err := ic.Load(c)
	if err != nil {
		return utils.Fail(c, err)
	}
	commentID, err := parseIDParam(c, "commentId")
	if err != nil {
		return utils.Fail(c, err)
	}

	var input struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	comment, err := ic.Service.EditComment(sub, commentID, middleware.ActorFromCtx(c), input.Text)
	if err != nil {
		return utils.Fail(c, err)
	}
	return c.JSON(comment)
}

func (ic *InteractionController) DeleteComment(c *fiber.Ctx) error {
	sub, err := ic.Load(c)
	if err != nil {
		return utils.Fail(c, err)
	}
	commentID, err := parseIDParam(c, "commentId")
	if err != nil {
		return utils.Fail(c, err)
	}

	if err := ic.Service.DeleteComment(sub, commentID, middleware.ActorFromCtx(c)); err != nil {
		return utils.Fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "comment deleted"})
}

func (ic *InteractionController) EditReply(c *fiber.Ctx) error {
	sub, err := ic.Load(c)
	if err != nil {
		return utils.Fail(c, err)
	}
	commentID, err := parseIDParam(c, "commentId")
	if err != nil {
		return utils.Fail(c, err)
	}
	replyID, err := parseIDParam(c, "replyId")
	if err != nil {
		return utils.Fail(c, err)
	}

	var input struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	reply, err := ic.Service.EditReply(sub, commentID, replyID, middleware.ActorFromCtx(c), input.Text)
	if err != nil {
		return utils.Fail(c, err)
	}
	return c.JSON(reply)
}

func (ic *InteractionController) DeleteReply(c *fiber.Ctx) error {
	sub, err := ic.Load(c)
	if err != nil {
		return utils.Fail(c, err)
	}
	commentID, err := parseIDParam(c, "commentId")
	if err != nil {
		return utils.Fail(c, err)
	}
	replyID, err := parseIDParam(c, "replyId")
	if err != nil {
		return utils.Fail(c, err)
	}

	if err := ic.Service.DeleteReply(sub, commentID, replyID, middleware.ActorFromCtx(c)); err != nil {
		return utils.Fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "reply deleted"})
}

// Report files a moderation report. Throttled per user.
func (ic *InteractionController) Report(c *fiber.Ctx) error {
	sub, err := ic.Load(c)
	if err != nil {
		return utils.Fail(c, err)
	}

	actor := middleware.ActorFromCtx(c)
	if !ic.Limiter.Allow(actor.ID, ratelimit.ActionReport) {
		return utils.Fail(c, apperrors.TooManyRequests("you are reporting too fast, try again shortly"))
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if err := ic.Service.FileReport(sub, actor, input.Reason); err != nil {
		return utils.Fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "report submitted"})
}

// ListReports exposes the filed reports to moderators. The reports are
// stripped from the public entity JSON, so this is the only way to read them.
func (ic *InteractionController) ListReports(c *fiber.Ctx) error {
	sub, err := ic.Load(c)
	if err != nil {
		return utils.Fail(c, err)
	}

	reports, err := ic.Service.Reports(sub)
	if err != nil {
		return utils.Fail(c, err)
	}
	return c.JSON(reports)
}
