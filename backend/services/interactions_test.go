package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/KevinT25/GameTracker-Backend/backend/apperrors"
	"github.com/KevinT25/GameTracker-Backend/backend/models"
	"github.com/KevinT25/GameTracker-Backend/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:interactions_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))
	return db
}

func testSubject() Subject {
	return Subject{Type: models.SubjectTypePost, ID: 1, AuthorID: 42}
}

func TestCastVoteToggleOff(t *testing.T) {
	s := NewInteractions(newTestDB(t))
	sub := testSubject()
	voter := Actor{ID: 7, Username: "bob"}

	outcome, err := s.CastVote(sub, voter, 1)
	require.NoError(t, err)
	assert.Equal(t, VoteAdded, outcome)

	// The same direction again removes the vote instead of being a no-op.
	outcome, err = s.CastVote(sub, voter, 1)
	require.NoError(t, err)
	assert.Equal(t, VoteRetracted, outcome)

	likes, dislikes, err := s.VoteCounts(sub)
	require.NoError(t, err)
	assert.Zero(t, likes)
	assert.Zero(t, dislikes)
}

func TestCastVoteChangeDirection(t *testing.T) {
	s := NewInteractions(newTestDB(t))
	sub := testSubject()
	voter := Actor{ID: 7, Username: "bob"}

	_, err := s.CastVote(sub, voter, 1)
	require.NoError(t, err)

	outcome, err := s.CastVote(sub, voter, -1)
	require.NoError(t, err)
	assert.Equal(t, VoteChanged, outcome)

	likes, dislikes, err := s.VoteCounts(sub)
	require.NoError(t, err)
	assert.EqualValues(t, 0, likes)
	assert.EqualValues(t, 1, dislikes)

	var votes []models.Vote
	require.NoError(t, s.DB.Find(&votes).Error)
	require.Len(t, votes, 1)
	assert.Equal(t, -1, votes[0].Value)
}

func TestCastVoteSelfForbidden(t *testing.T) {
	s := NewInteractions(newTestDB(t))
	sub := testSubject()
	author := Actor{ID: sub.AuthorID, Username: "alice"}

	_, err := s.CastVote(sub, author, 1)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	likes, dislikes, err := s.VoteCounts(sub)
	require.NoError(t, err)
	assert.Zero(t, likes+dislikes)
}

func TestCastVoteInvalidValue(t *testing.T) {
	s := NewInteractions(newTestDB(t))

	_, err := s.CastVote(testSubject(), Actor{ID: 7}, 2)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestAddCommentTrimsAndValidates(t *testing.T) {
	s := NewInteractions(newTestDB(t))
	sub := testSubject()

	_, err := s.AddComment(sub, Actor{ID: 7, Username: "bob"}, "   ")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	comment, err := s.AddComment(sub, Actor{ID: 7, Username: "bob"}, "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", comment.Text)
	assert.Equal(t, "bob", comment.Username)
}

func TestAddReplyUnknownComment(t *testing.T) {
	s := NewInteractions(newTestDB(t))

	_, err := s.AddReply(testSubject(), 999, Actor{ID: 7, Username: "bob"}, "hi")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestDeleteCommentCascadesReplies(t *testing.T) {
	s := NewInteractions(newTestDB(t))
	sub := testSubject()
	author := Actor{ID: 7, Username: "bob"}

	comment, err := s.AddComment(sub, author, "thread root")
	require.NoError(t, err)

	reply1, err := s.AddReply(sub, comment.ID, Actor{ID: 8, Username: "carol"}, "first")
	require.NoError(t, err)
	_, err = s.AddReply(sub, comment.ID, Actor{ID: 9, Username: "dave"}, "second")
	require.NoError(t, err)

	require.NoError(t, s.DeleteComment(sub, comment.ID, author))

	var count int64
	require.NoError(t, s.DB.Model(&models.Reply{}).Where("comment_id = ?", comment.ID).Count(&count).Error)
	assert.Zero(t, count)

	// Addressing the deleted thread fails with not-found.
	err = s.DeleteReply(sub, comment.ID, reply1.ID, Actor{ID: 8, Username: "carol"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestDeleteCommentPermissions(t *testing.T) {
	s := NewInteractions(newTestDB(t))
	sub := testSubject()

	comment, err := s.AddComment(sub, Actor{ID: 7, Username: "bob"}, "mine")
	require.NoError(t, err)

	// The entity author is not the comment author and not an admin.
	err = s.DeleteComment(sub, comment.ID, Actor{ID: sub.AuthorID, Username: "alice"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	require.NoError(t, s.DeleteComment(sub, comment.ID, Actor{ID: 1, Username: "mod", Admin: true}))
}

func TestEditCommentAuthorOnly(t *testing.T) {
	s := NewInteractions(newTestDB(t))
	sub := testSubject()

	comment, err := s.AddComment(sub, Actor{ID: 7, Username: "bob"}, "original")
	require.NoError(t, err)
	assert.Nil(t, comment.EditedAt)

	_, err = s.EditComment(sub, comment.ID, Actor{ID: 8, Username: "carol"}, "hijacked")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	edited, err := s.EditComment(sub, comment.ID, Actor{ID: 7, Username: "bob"}, "updated")
	require.NoError(t, err)
	assert.Equal(t, "updated", edited.Text)
	assert.NotNil(t, edited.EditedAt)
}

func TestFileReportDuplicate(t *testing.T) {
	s := NewInteractions(newTestDB(t))
	sub := testSubject()
	reporter := Actor{ID: 7, Username: "bob"}

	require.NoError(t, s.FileReport(sub, reporter, "spam"))

	err := s.FileReport(sub, reporter, "still spam")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	var count int64
	require.NoError(t, s.DB.Model(&models.Report{}).
		Where("subject_type = ? AND subject_id = ? AND user_id = ?", sub.Type, sub.ID, reporter.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// A different user can still report.
	require.NoError(t, s.FileReport(sub, Actor{ID: 8, Username: "carol"}, "agreed"))
}

func TestFileReportEmptyReason(t *testing.T) {
	s := NewInteractions(newTestDB(t))

	err := s.FileReport(testSubject(), Actor{ID: 7}, "  ")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestInteractionsIsolatedPerSubject(t *testing.T) {
	s := NewInteractions(newTestDB(t))
	post := Subject{Type: models.SubjectTypePost, ID: 1, AuthorID: 42}
	review := Subject{Type: models.SubjectTypeReview, ID: 1, AuthorID: 42}
	voter := Actor{ID: 7, Username: "bob"}

	_, err := s.CastVote(post, voter, 1)
	require.NoError(t, err)
	_, err = s.CastVote(review, voter, 1)
	require.NoError(t, err)

	likes, _, err := s.VoteCounts(post)
	require.NoError(t, err)
	assert.EqualValues(t, 1, likes)

	likes, _, err = s.VoteCounts(review)
	require.NoError(t, err)
	assert.EqualValues(t, 1, likes)
}
