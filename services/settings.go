package services

import (
	"context"
	"time"

	"creature-training-system/models"
)

type Settings struct {
	DailyFactTime     string `json:"daily_fact_time"`
	NotificationTime  string `json:"notification_time"`
	ShowOnLeaderboard bool   `json:"show_on_leaderboard"`
}

// SettingsUpdate changes only the fields that are set.
type SettingsUpdate struct {
	DailyFactTime     *string
	NotificationTime  *string
	ShowOnLeaderboard *bool
}

func settingsOf(u *models.User) *Settings {
	return &Settings{
		DailyFactTime:     u.DailyFactTime,
		NotificationTime:  u.NotificationTime,
		ShowOnLeaderboard: u.ShowOnLeaderboard,
	}
}

func validClock(v string) bool {
	_, err := time.Parse("15:04", v)
	return err == nil && len(v) == 5
}

func (s *LearningService) GetSettings(ctx context.Context, userID string) (*Settings, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return settingsOf(u), nil
}

func (s *LearningService) UpdateSettings(ctx context.Context, userID string, in SettingsUpdate) (*Settings, error) {
	if in.DailyFactTime != nil && !validClock(*in.DailyFactTime) {
		return nil, invalid("invalid_settings", "dailyFactTime must be HH:MM")
	}
	if in.NotificationTime != nil && !validClock(*in.NotificationTime) {
		return nil, invalid("invalid_settings", "notificationTime must be HH:MM")
	}
	var out *Settings
	err := s.mutate(ctx, userID, func(tx Store) error {
		u, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if in.DailyFactTime != nil {
			u.DailyFactTime = *in.DailyFactTime
		}
		if in.NotificationTime != nil {
			u.NotificationTime = *in.NotificationTime
		}
		if in.ShowOnLeaderboard != nil {
			u.ShowOnLeaderboard = *in.ShowOnLeaderboard
		}
		if err := tx.UpdateUser(ctx, u); err != nil {
			return err
		}
		out = settingsOf(u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
