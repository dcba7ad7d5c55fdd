package models

import (
	"time"
)

// Achievement is static catalogue config, seeded on startup.
type Achievement struct {
	ID          string           `gorm:"primaryKey;size:36" json:"id"`
	Code        string           `gorm:"uniqueIndex;not null" json:"code"` // e.g., "FACTS_10", "STREAK_7"
	Name        string           `gorm:"not null" json:"name"`
	Description string           `json:"description"`
	Icon        string           `gorm:"type:varchar(32)" json:"icon"`
	Category    string           `gorm:"type:varchar(16);default:'learning'" json:"category"` // learning, mastery, consistency, evolution, care
	Threshold   map[string]int64 `gorm:"serializer:json" json:"threshold"`                     // e.g., {"total_facts_mastered": 10}
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

// UserAchievement: unlocked instance
type UserAchievement struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	UserID        string    `gorm:"size:36;not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID string    `gorm:"size:36;not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	UnlockedAt    time.Time `gorm:"autoCreateTime" json:"unlocked_at"`
}

// Threshold metric keys understood by the achievement evaluator.
const (
	MetricFactsMastered  = "total_facts_mastered"
	MetricLevel          = "level"
	MetricCurrentStreak  = "current_streak"
	MetricTotalReviews   = "total_reviews"
	MetricPerfectQuizzes = "perfect_quizzes"
	MetricMinigames      = "minigames_played"
	MetricCreatureFeeds  = "creature_feeds"
	MetricCreatureStage  = "creature_stage"
)

// AchievementCatalogue is the default set of achievements.
var AchievementCatalogue = []Achievement{
	{
		Code:        "FIRST_REVIEW",
		Name:        "First Steps",
		Description: "Reviewed your first flashcard",
		Icon:        "star",
		Category:    "learning",
		Threshold:   map[string]int64{MetricTotalReviews: 1},
	},
	{
		Code:        "FACTS_10",
		Name:        "Quick Learner",
		Description: "Mastered 10 facts",
		Icon:        "book-open",
		Category:    "mastery",
		Threshold:   map[string]int64{MetricFactsMastered: 10},
	},
	{
		Code:        "FACTS_100",
		Name:        "Walking Encyclopedia",
		Description: "Mastered 100 facts",
		Icon:        "library",
		Category:    "mastery",
		Threshold:   map[string]int64{MetricFactsMastered: 100},
	},
	{
		Code:        "STREAK_3",
		Name:        "On Fire",
		Description: "Kept a 3 day streak",
		Icon:        "flame",
		Category:    "consistency",
		Threshold:   map[string]int64{MetricCurrentStreak: 3},
	},
	{
		Code:        "STREAK_7",
		Name:        "Week Warrior",
		Description: "Kept a 7 day streak",
		Icon:        "fire",
		Category:    "consistency",
		Threshold:   map[string]int64{MetricCurrentStreak: 7},
	},
	{
		Code:        "LEVEL_5",
		Name:        "Rising Star",
		Description: "Reached level 5",
		Icon:        "zap",
		Category:    "learning",
		Threshold:   map[string]int64{MetricLevel: 5},
	},
	{
		Code:        "LEVEL_10",
		Name:        "Retail Pro",
		Description: "Reached level 10",
		Icon:        "crown",
		Category:    "learning",
		Threshold:   map[string]int64{MetricLevel: 10},
	},
	{
		Code:        "PERFECT_QUIZ",
		Name:        "Flawless",
		Description: "Answered every quiz question correctly",
		Icon:        "trophy",
		Category:    "mastery",
		Threshold:   map[string]int64{MetricPerfectQuizzes: 1},
	},
	{
		Code:        "FIRST_MINIGAME",
		Name:        "Game On",
		Description: "Finished a mini-game",
		Icon:        "gamepad",
		Category:    "learning",
		Threshold:   map[string]int64{MetricMinigames: 1},
	},
	{
		Code:        "CARETAKER",
		Name:        "Caretaker",
		Description: "Fed your creature 10 times",
		Icon:        "heart",
		Category:    "care",
		Threshold:   map[string]int64{MetricCreatureFeeds: 10},
	},
	{
		Code:        "STAGE_2",
		Name:        "Growing Up",
		Description: "Your creature evolved for the first time",
		Icon:        "sprout",
		Category:    "evolution",
		Threshold:   map[string]int64{MetricCreatureStage: 2},
	},
	{
		Code:        "STAGE_5",
		Name:        "Final Form",
		Description: "Your creature reached its final stage",
		Icon:        "sparkles",
		Category:    "evolution",
		Threshold:   map[string]int64{MetricCreatureStage: 5},
	},
}
