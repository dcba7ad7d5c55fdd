package services

import (
	"context"
	"strings"

	"creature-training-system/models"
)

// UserSummary is the public view of another user.
type UserSummary struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name,omitempty"`
	Level       int     `json:"level"`
}

const maxSearchResults = 10

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// SearchUsers finds other users by username substring, e.g. to pick a gift
// recipient or share a team code.
func (s *LearningService) SearchUsers(ctx context.Context, userID, query string, limit int) ([]UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []UserSummary{}, nil
	}
	if limit <= 0 || limit > maxSearchResults {
		limit = maxSearchResults
	}
	users, err := s.store.SearchUsers(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	res := make([]UserSummary, len(users))
	for i, u := range users {
		res[i] = UserSummary{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName, Level: u.Level}
	}
	return res, nil
}

func (s *GormStore) SearchUsers(ctx context.Context, query, excludeUserID string, limit int) ([]models.User, error) {
	var users []models.User
	term := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	err := s.q(ctx).
		Where(`LOWER(username) LIKE ? ESCAPE '\' AND id <> ?`, term, excludeUserID).
		Order("username ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
