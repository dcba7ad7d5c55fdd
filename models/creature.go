package models

import (
	"time"

	"gorm.io/datatypes"
)

type CreatureHealth string

const (
	HealthHappy     CreatureHealth = "happy"
	HealthNeutral   CreatureHealth = "neutral"
	HealthSad       CreatureHealth = "sad"
	HealthNeglected CreatureHealth = "neglected"
)

// Creature belongs to exactly one owner: a user (UserID) or a team (TeamID).
type Creature struct {
	ID     string  `gorm:"primaryKey;size:36" json:"id"`
	UserID *string `gorm:"size:36;uniqueIndex" json:"user_id,omitempty"`
	TeamID *string `gorm:"size:36;uniqueIndex" json:"team_id,omitempty"`

	Name        string         `gorm:"not null" json:"name"`
	Stage       int            `gorm:"not null" json:"stage"`     // 1..5, never decreases
	Happiness   int            `gorm:"not null" json:"happiness"` // 0..100
	Health      CreatureHealth `gorm:"type:varchar(16);not null" json:"health"`
	Personality string         `gorm:"type:varchar(32)" json:"personality"`

	// DecayTier is the idle-penalty tier already charged since the last interaction.
	DecayTier         int       `gorm:"not null" json:"-"`
	LastFedAt         *time.Time `json:"last_fed_at,omitempty"`
	LastInteractionAt time.Time  `gorm:"not null" json:"last_interaction_at"`

	Accessories datatypes.JSONSlice[string] `json:"accessories"`

	Timestamps
}
