package models

import "time"

// Flashcard is one user's Leitner-box progress on one fact.
type Flashcard struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"size:36;not null;uniqueIndex:idx_flashcard_user_fact" json:"user_id"`
	FactID string `gorm:"size:36;not null;uniqueIndex:idx_flashcard_user_fact" json:"fact_id"`
	Fact   *Fact  `gorm:"foreignKey:FactID" json:"fact,omitempty"`

	ConfidenceLevel int        `gorm:"not null" json:"confidence_level"` // box 0..5
	NextReviewAt    time.Time  `gorm:"index;not null" json:"next_review_at"`
	LastReviewedAt  *time.Time `json:"last_reviewed_at,omitempty"`
	ReviewCount     int        `gorm:"not null" json:"review_count"`
	CorrectCount    int        `gorm:"not null" json:"correct_count"`

	Timestamps
}
