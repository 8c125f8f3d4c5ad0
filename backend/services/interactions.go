// Package services implements the interaction core shared by posts and
// reviews: votes, threaded comments and moderation reports. Both parent
// kinds go through the same code paths, parameterized by a Subject.
package services

import (
	"errors"
	"strings"
	"time"

	"github.com/KevinT25/GameTracker-Backend/backend/apperrors"
	"github.com/KevinT25/GameTracker-Backend/backend/models"

	"gorm.io/gorm"
)

// Subject identifies the entity an interaction targets.
type Subject struct {
	Type     string // models.SubjectTypePost or models.SubjectTypeReview
	ID       uint
	AuthorID uint
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID       uint
	Username string
	Admin    bool
}

type VoteOutcome string

const (
	VoteAdded     VoteOutcome = "added"
	VoteRetracted VoteOutcome = "retracted"
	VoteChanged   VoteOutcome = "changed"
)

type Interactions struct {
	DB *gorm.DB
}

func NewInteractions(db *gorm.DB) *Interactions {
	return &Interactions{DB: db}
}

// CastVote applies toggle semantics: no existing vote records one, an
// identical vote removes it, an opposite vote flips it.
func (s *Interactions) CastVote(sub Subject, voter Actor, value int) (VoteOutcome, error) {
	if value != 1 && value != -1 {
		return "", apperrors.Validation("vote must be 1 or -1")
	}
	if sub.AuthorID == voter.ID {
		return "", apperrors.Forbidden("you cannot vote on your own content")
	}

	var outcome VoteOutcome
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Vote
		err := tx.Where("subject_type = ? AND subject_id = ? AND user_id = ?",
			sub.Type, sub.ID, voter.ID).First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			outcome = VoteAdded
			return tx.Create(&models.Vote{
				SubjectType: sub.Type,
				SubjectID:   sub.ID,
				UserID:      voter.ID,
				Value:       value,
			}).Error
		case err != nil:
			return err
		case existing.Value == value:
			outcome = VoteRetracted
			return tx.Delete(&existing).Error
		default:
			outcome = VoteChanged
			return tx.Model(&existing).Update("value", value).Error
		}
	})
	if err != nil {
		return "", apperrors.Internal("could not record vote", err)
	}
	return outcome, nil
}

// VoteCounts recomputes like/dislike totals from the vote rows.
func (s *Interactions) VoteCounts(sub Subject) (likes, dislikes int64, err error) {
	err = s.DB.Model(&models.Vote{}).
		Where("subject_type = ? AND subject_id = ? AND value > 0", sub.Type, sub.ID).
		Count(&likes).Error
	if err != nil {
		return 0, 0, apperrors.Internal("could not count votes", err)
	}
	err = s.DB.Model(&models.Vote{}).
		Where("subject_type = ? AND subject_id = ? AND value < 0", sub.Type, sub.ID).
		Count(&dislikes).Error
	if err != nil {
		return 0, 0, apperrors.Internal("could not count votes", err)
	}
	return likes, dislikes, nil
}

func (s *Interactions) AddComment(sub Subject, author Actor, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("comment text is required")
	}

	comment := &models.Comment{
		SubjectType: sub.Type,
		SubjectID:   sub.ID,
		UserID:      author.ID,
		Username:    author.Username,
		Text:        text,
	}
	if err := s.DB.Create(comment).Error; err != nil {
		return nil, apperrors.Internal("could not create comment", err)
	}
	return comment, nil
}

func (s *Interactions) AddReply(sub Subject, commentID uint, author Actor, text string) (*models.Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("reply text is required")
	}

	comment, err := s.findComment(sub, commentID)
	if err != nil {
		return nil, err
	}

	reply := &models.Reply{
		CommentID: comment.ID,
		UserID:    author.ID,
		Username:  author.Username,
		Text:      text,
	}
	if err := s.DB.Create(reply).Error; err != nil {
		return nil, apperrors.Internal("could not create reply", err)
	}
	return reply, nil
}

// EditComment overwrites the text and stamps an edit timestamp. Only the
// original author may edit.
func (s *Interactions) EditComment(sub Subject, commentID uint, requester Actor, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("comment text is required")
	}

	comment, err := s.findComment(sub, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != requester.ID {
		return nil, apperrors.Forbidden("only the author can edit this comment")
	}

	now := time.Now()
	comment.Text = text
	comment.EditedAt = &now
	if err := s.DB.Save(comment).Error; err != nil {
		return nil, apperrors.Internal("could not update comment", err)
	}
	return comment, nil
}

func (s *Interactions) EditReply(sub Subject, commentID, replyID uint, requester Actor, text string) (*models.Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("reply text is required")
	}

	reply, err := s.findReply(sub, commentID, replyID)
	if err != nil {
		return nil, err
	}
	if reply.UserID != requester.ID {
		return nil, apperrors.Forbidden("only the author can edit this reply")
	}

	now := time.Now()
	reply.Text = text
	reply.EditedAt = &now
	if err := s.DB.Save(reply).Error; err != nil {
		return nil, apperrors.Internal("could not update reply", err)
	}
	return reply, nil
}

// DeleteComment removes the comment and all its replies in one
// transaction. Allowed for the author or an administrator.
func (s *Interactions) DeleteComment(sub Subject, commentID uint, requester Actor) error {
	comment, err := s.findComment(sub, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != requester.ID && !requester.Admin {
		return apperrors.Forbidden("only the author or an administrator can delete this comment")
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", comment.ID).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		return tx.Delete(comment).Error
	})
	if err != nil {
		return apperrors.Internal("could not delete comment", err)
	}
	return nil
}

func (s *Interactions) DeleteReply(sub Subject, commentID, replyID uint, requester Actor) error {
	reply, err := s.findReply(sub, commentID, replyID)
	if err != nil {
		return err
	}
	if reply.UserID != requester.ID && !requester.Admin {
		return apperrors.Forbidden("only the author or an administrator can delete this reply")
	}

	if err := s.DB.Delete(reply).Error; err != nil {
		return apperrors.Internal("could not delete reply", err)
	}
	return nil
}

// FileReport records a moderation report. A second report by the same user
// on the same entity is a conflict, not a replacement.
func (s *Interactions) FileReport(sub Subject, reporter Actor, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperrors.Validation("report reason is required")
	}

	var count int64
	err := s.DB.Model(&models.Report{}).
		Where("subject_type = ? AND subject_id = ? AND user_id = ?", sub.Type, sub.ID, reporter.ID).
		Count(&count).Error
	if err != nil {
		return apperrors.Internal("could not check existing reports", err)
	}
	if count > 0 {
		return apperrors.Conflict("already reported")
	}

	report := &models.Report{
		SubjectType: sub.Type,
		SubjectID:   sub.ID,
		UserID:      reporter.ID,
		Reason:      reason,
	}
	if err := s.DB.Create(report).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("already reported")
		}
		return apperrors.Internal("could not create report", err)
	}
	return nil
}

// Reports returns every report filed against an entity, newest first.
func (s *Interactions) Reports(sub Subject) ([]models.Report, error) {
	var reports []models.Report
	err := s.DB.Where("subject_type = ? AND subject_id = ?", sub.Type, sub.ID).
		Order("created_at DESC").Find(&reports).Error
	if err != nil {
		return nil, apperrors.Internal("could not load reports", err)
	}
	return reports, nil
}

// DeleteInteractions removes every child row of an entity. Called when the
// parent post or review is hard-deleted.
func (s *Interactions) DeleteInteractions(tx *gorm.DB, sub Subject) error {
	var commentIDs []uint
	if err := tx.Model(&models.Comment{}).
		Where("subject_type = ? AND subject_id = ?", sub.Type, sub.ID).
		Pluck("id", &commentIDs).Error; err != nil {
		return err
	}
	if len(commentIDs) > 0 {
		if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
	}
	for _, m := range []interface{}{&models.Comment{}, &models.Vote{}, &models.Report{}} {
		if err := tx.Where("subject_type = ? AND subject_id = ?", sub.Type, sub.ID).Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Interactions) findComment(sub Subject, commentID uint) (*models.Comment, error) {
	var comment models.Comment
	err := s.DB.Where("id = ? AND subject_type = ? AND subject_id = ?",
		commentID, sub.Type, sub.ID).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("comment not found")
	}
	if err != nil {
		return nil, apperrors.Internal("could not load comment", err)
	}
	return &comment, nil
}

func (s *Interactions) findReply(sub Subject, commentID, replyID uint) (*models.Reply, error) {
	if _, err := s.findComment(sub, commentID); err != nil {
		return nil, err
	}
	var reply models.Reply
	err := s.DB.Where("id = ? AND comment_id = ?", replyID, commentID).First(&reply).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("reply not found")
	}
	if err != nil {
		return nil, apperrors.Internal("could not load reply", err)
	}
	return &reply, nil
}
