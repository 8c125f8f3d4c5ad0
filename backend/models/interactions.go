package models

import "time"

// Subject type discriminators for the polymorphic vote/comment/report
// tables. Values match the parent table names so GORM preloads line up.
const (
	SubjectTypePost   = "posts"
	SubjectTypeReview = "reviews"
)

// Vote is a single like (+1) or dislike (-1). At most one row per
// (subject, user); casting the same direction again removes the row.
type Vote struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	SubjectType string    `gorm:"uniqueIndex:idx_votes_subject_user;not null" json:"-"`
	SubjectID   uint      `gorm:"uniqueIndex:idx_votes_subject_user;not null" json:"-"`
	UserID      uint      `gorm:"uniqueIndex:idx_votes_subject_user;not null" json:"user_id"`
	Value       int       `gorm:"not null" json:"value"` // 1 or -1
	CreatedAt   time.Time `json:"created_at"`
}

type Comment struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	SubjectType string     `gorm:"index:idx_comments_subject;not null" json:"-"`
	SubjectID   uint       `gorm:"index:idx_comments_subject;not null" json:"-"`
	UserID      uint       `json:"user_id"`
	Username    string     `json:"username"`
	Text        string     `gorm:"not null" json:"text"`
	CreatedAt   time.Time  `json:"created_at"`
	EditedAt    *time.Time `json:"edited_at"`
	Replies     []Reply    `gorm:"constraint:OnDelete:CASCADE" json:"replies"`
}

// Reply mirrors Comment but cannot be nested further: the thread depth is
// fixed at entity -> comment -> reply.
type Reply struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	CommentID uint       `gorm:"index;not null" json:"comment_id"`
	UserID    uint       `json:"user_id"`
	Username  string     `json:"username"`
	Text      string     `gorm:"not null" json:"text"`
	CreatedAt time.Time  `json:"created_at"`
	EditedAt  *time.Time `json:"edited_at"`
}

// Report is a moderation flag. At most one row per (subject, reporter).
type Report struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	SubjectType string    `gorm:"uniqueIndex:idx_reports_subject_user;not null" json:"-"`
	SubjectID   uint      `gorm:"uniqueIndex:idx_reports_subject_user;not null" json:"-"`
	UserID      uint      `gorm:"uniqueIndex:idx_reports_subject_user;not null" json:"user_id"`
	Reason      string    `gorm:"not null" json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
}

// CountVotes derives like/dislike totals from the vote rows. Totals are
// never stored, so they cannot drift.
func CountVotes(votes []Vote) (likes, dislikes int) {
	for _, v := range votes {
		if v.Value > 0 {
			likes++
		} else {
			dislikes++
		}
	}
	return likes, dislikes
}
