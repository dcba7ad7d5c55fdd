package services

import (
	"context"

	"creature-training-system/models"
)

type TeamStore interface {
	CreateTeam(ctx context.Context, t *models.Team) error
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	GetTeamByCode(ctx context.Context, code string) (*models.Team, error)
	UpdateTeam(ctx context.Context, t *models.Team) error
	ListUserTeams(ctx context.Context, userID string) ([]models.Team, error)
	AddTeamMember(ctx context.Context, m *models.TeamMember) error
	RemoveTeamMember(ctx context.Context, teamID, userID string) (bool, error)
	IsTeamMember(ctx context.Context, teamID, userID string) (bool, error)
	ListTeamMembers(ctx context.Context, teamID string) ([]models.TeamMember, error)
	AddTeamContribution(ctx context.Context, c *models.TeamContribution) error
	TeamLeaderboard(ctx context.Context, teamID string) ([]TeamLeaderboardEntry, error)
}

type TeamLeaderboardEntry struct {
	Rank             int     `json:"rank" gorm:"-"`
	UserID           string  `json:"user_id"`
	Username         string  `json:"username"`
	DisplayName      *string `json:"display_name,omitempty"`
	TotalContributed int64   `json:"total_contributed"`
}

func (s *GormStore) CreateTeam(ctx context.Context, t *models.Team) error {
	return s.q(ctx).Omit("Creature").Create(t).Error
}

func (s *GormStore) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	var t models.Team
	if err := s.locked(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, wrapNotFound(err, "team_not_found", "Team not found")
	}
	return &t, nil
}

func (s *GormStore) GetTeamByCode(ctx context.Context, code string) (*models.Team, error) {
	var t models.Team
	if err := s.q(ctx).Where("code = ?", code).First(&t).Error; err != nil {
		return nil, wrapNotFound(err, "team_not_found", "No team with that code")
	}
	return &t, nil
}

func (s *GormStore) UpdateTeam(ctx context.Context, t *models.Team) error {
	return s.q(ctx).Omit("Creature").Save(t).Error
}

func (s *GormStore) ListUserTeams(ctx context.Context, userID string) ([]models.Team, error) {
	var teams []models.Team
	err := s.q(ctx).
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID).
		Preload("Creature").
		Order("teams.created_at ASC").
		Find(&teams).Error
	return teams, err
}

func (s *GormStore) AddTeamMember(ctx context.Context, m *models.TeamMember) error {
	return s.q(ctx).Omit("User").Create(m).Error
}

func (s *GormStore) RemoveTeamMember(ctx context.Context, teamID, userID string) (bool, error) {
	res := s.q(ctx).Where("team_id = ? AND user_id = ?", teamID, userID).Delete(&models.TeamMember{})
	return res.RowsAffected > 0, res.Error
}

func (s *GormStore) IsTeamMember(ctx context.Context, teamID, userID string) (bool, error) {
	var n int64
	err := s.q(ctx).Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&n).Error
	return n > 0, err
}

func (s *GormStore) ListTeamMembers(ctx context.Context, teamID string) ([]models.TeamMember, error) {
	var members []models.TeamMember
	err := s.q(ctx).Preload("User").
		Where("team_id = ?", teamID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}

func (s *GormStore) AddTeamContribution(ctx context.Context, c *models.TeamContribution) error {
	return s.q(ctx).Create(c).Error
}

func (s *GormStore) TeamLeaderboard(ctx context.Context, teamID string) ([]TeamLeaderboardEntry, error) {
	var rows []TeamLeaderboardEntry
	err := s.q(ctx).Table("team_contributions").
		Select("team_contributions.user_id, users.username, users.display_name, CAST(SUM(team_contributions.xp_contributed) AS BIGINT) AS total_contributed").
		Joins("JOIN users ON users.id = team_contributions.user_id").
		Where("team_contributions.team_id = ?", teamID).
		Group("team_contributions.user_id, users.username, users.display_name").
		Order("total_contributed DESC").
		Scan(&rows).Error
	return rows, err
}
