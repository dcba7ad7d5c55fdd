package models

import "time"

// QuizSession is written once when a quiz is submitted and never updated.
type QuizSession struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	UserID         string    `gorm:"size:36;index;not null;uniqueIndex:idx_quiz_submission" json:"user_id"`
	SubmissionID   *string   `gorm:"size:64;uniqueIndex:idx_quiz_submission" json:"submission_id,omitempty"`
	Score          int       `gorm:"not null" json:"score"`
	TotalQuestions int       `gorm:"not null" json:"total_questions"`
	XPEarned       int64     `gorm:"not null" json:"xp_earned"`
	CoinsEarned    int64     `gorm:"not null" json:"coins_earned"`
	CompletedAt    time.Time `gorm:"index;not null" json:"completed_at"`
}
