package services

import (
	"context"

	"creature-training-system/models"
)

type LeaderboardEntry struct {
	Rank               int     `json:"rank"`
	UserID             string  `json:"user_id"`
	Username           string  `json:"username"`
	DisplayName        *string `json:"display_name,omitempty"`
	Level              int     `json:"level"`
	XP                 int64   `json:"xp"`
	TotalFactsMastered int64   `json:"total_facts_mastered"`
	CurrentStreak      int     `json:"current_streak"`
}

type LeaderboardService struct {
	store Store
	limit int
}

func NewLeaderboardService(store Store, limit int) *LeaderboardService {
	if limit <= 0 {
		limit = 50
	}
	return &LeaderboardService{store: store, limit: limit}
}

// Top returns opted-in users by XP, ranked from 1.
func (s *LeaderboardService) Top(ctx context.Context) ([]LeaderboardEntry, error) {
	users, err := s.store.TopUsers(ctx, s.limit)
	if err != nil {
		return nil, err
	}
	out := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		out = append(out, toLeaderboardEntry(i+1, u))
	}
	return out, nil
}

func toLeaderboardEntry(rank int, u models.User) LeaderboardEntry {
	name := u.Username
	if name == "" {
		name = "Anonymous"
	}
	return LeaderboardEntry{
		Rank:               rank,
		UserID:             u.ID,
		Username:           name,
		DisplayName:        u.DisplayName,
		Level:              u.Level,
		XP:                 u.XP,
		TotalFactsMastered: u.TotalFactsMastered,
		CurrentStreak:      u.CurrentStreak,
	}
}
