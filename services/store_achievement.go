package services

import (
	"context"

	"creature-training-system/models"

	"gorm.io/gorm/clause"
)

type AchievementStore interface {
	SeedAchievements(ctx context.Context, catalogue []models.Achievement) error
	ListAchievements(ctx context.Context) ([]models.Achievement, error)
	ListUserAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error)
	UnlockAchievement(ctx context.Context, userID, achievementID string) (bool, error)
}

// SeedAchievements inserts catalogue entries whose code does not exist yet.
func (s *GormStore) SeedAchievements(ctx context.Context, catalogue []models.Achievement) error {
	for _, a := range catalogue {
		a := a
		err := s.q(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).Create(&a).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *GormStore) ListAchievements(ctx context.Context) ([]models.Achievement, error) {
	var list []models.Achievement
	err := s.q(ctx).Order("created_at ASC, code ASC").Find(&list).Error
	return list, err
}

func (s *GormStore) ListUserAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error) {
	var list []models.UserAchievement
	err := s.q(ctx).Where("user_id = ?", userID).Find(&list).Error
	return list, err
}

// UnlockAchievement reports whether a new row was written.
func (s *GormStore) UnlockAchievement(ctx context.Context, userID, achievementID string) (bool, error) {
	ua := models.UserAchievement{UserID: userID, AchievementID: achievementID}
	res := s.q(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&ua)
	return res.RowsAffected > 0, res.Error
}
