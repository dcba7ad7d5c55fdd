package models

import "time"

type TeamRole string

const (
	TeamRoleCreator TeamRole = "creator"
	TeamRoleMember  TeamRole = "member"
)

// Team shares a creature that grows from its members' combined progress.
type Team struct {
	ID                 string    `gorm:"primaryKey;size:36" json:"id"`
	Name               string    `gorm:"not null" json:"name"`
	Code               string    `gorm:"uniqueIndex;not null" json:"code"` // join code
	CreatorID          string    `gorm:"size:36;not null" json:"creator_id"`
	TotalXP            int64     `gorm:"not null" json:"total_xp"`
	TotalFactsMastered int64     `gorm:"not null" json:"total_facts_mastered"`
	Creature           *Creature `gorm:"foreignKey:TeamID" json:"creature,omitempty"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type TeamMember struct {
	ID       string    `gorm:"primaryKey;size:36" json:"id"`
	TeamID   string    `gorm:"size:36;not null;uniqueIndex:idx_team_member" json:"team_id"`
	UserID   string    `gorm:"size:36;not null;uniqueIndex:idx_team_member;index" json:"user_id"`
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role     TeamRole  `gorm:"type:varchar(16);not null" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// TeamContribution attributes XP earned by one member to the team's creature.
type TeamContribution struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	TeamID        string    `gorm:"size:36;index;not null" json:"team_id"`
	UserID        string    `gorm:"size:36;index;not null" json:"user_id"`
	XPContributed int64     `gorm:"not null" json:"xp_contributed"`
	Source        string    `gorm:"type:varchar(16);not null" json:"source"`
	ContributedAt time.Time `gorm:"index;not null" json:"contributed_at"`
}
