package models

// User is the learner plus their denormalized progression snapshot.
// Level is derived from XP and must be recomputed whenever XP changes.
type User struct {
	ID             string  `gorm:"primaryKey;size:36" json:"id"`
	ExternalUserID string  `gorm:"uniqueIndex;not null" json:"external_user_id"` // identity from the gateway
	Username       string  `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName    *string `json:"display_name,omitempty"`

	// Core progression
	XP                 int64  `gorm:"not null" json:"xp"`
	Level              int    `gorm:"not null" json:"level"`
	Coins              int64  `gorm:"not null" json:"coins"`
	TotalFactsMastered int64  `gorm:"not null" json:"total_facts_mastered"`
	CurrentStreak      int    `gorm:"not null" json:"current_streak"`
	LongestStreak      int    `gorm:"not null" json:"longest_streak"`
	LastActiveDate     string `gorm:"size:10" json:"last_active_date"` // YYYY-MM-DD

	// Activity counters
	TotalReviews     int64 `gorm:"not null" json:"total_reviews"`
	QuizzesCompleted int64 `gorm:"not null" json:"quizzes_completed"`
	PerfectQuizzes   int64 `gorm:"not null" json:"perfect_quizzes"`
	MinigamesPlayed  int64 `gorm:"not null" json:"minigames_played"`
	CreatureFeeds    int64 `gorm:"not null" json:"creature_feeds"`

	// Settings
	DailyFactTime     string `gorm:"size:5;not null" json:"daily_fact_time"`
	NotificationTime  string `gorm:"size:5;not null" json:"notification_time"`
	ShowOnLeaderboard bool   `gorm:"not null" json:"show_on_leaderboard"`

	Timestamps
}
