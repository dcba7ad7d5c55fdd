package services

import (
	"context"
	"time"

	"creature-training-system/logger"
	"creature-training-system/models"
)

type AchievementService struct {
	store Store
	log   *logger.Logger
}

func NewAchievementService(store Store, log *logger.Logger) *AchievementService {
	return &AchievementService{store: store, log: log.With("service", "AchievementService")}
}

// Seed makes sure every catalogue entry exists. Safe to run on every start.
func (s *AchievementService) Seed(ctx context.Context) error {
	return s.store.SeedAchievements(ctx, models.AchievementCatalogue)
}

// Evaluate unlocks every achievement whose thresholds the user now meets and
// returns the newly unlocked ones.
func (s *AchievementService) Evaluate(ctx context.Context, tx Store, u *models.User, c *models.Creature) ([]models.Achievement, error) {
	all, err := tx.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}
	have, err := tx.ListUserAchievements(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	owned := make(map[string]bool, len(have))
	for _, ua := range have {
		owned[ua.AchievementID] = true
	}

	var awarded []models.Achievement
	for _, a := range all {
		if owned[a.ID] || !meetsThreshold(u, c, a.Threshold) {
			continue
		}
		created, err := tx.UnlockAchievement(ctx, u.ID, a.ID)
		if err != nil {
			return nil, err
		}
		if created {
			awarded = append(awarded, a)
			s.log.Info("🎖️ [ACHIEVEMENT] unlocked", "code", a.Code, "user_id", u.ID)
		}
	}
	return awarded, nil
}

type AchievementStatus struct {
	models.Achievement
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
	Progress    int64      `json:"progress"`
	MaxProgress int64      `json:"max_progress"`
}

func (s *AchievementService) List(ctx context.Context, userID string) ([]AchievementStatus, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	c, err := s.store.GetCreature(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := s.store.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}
	have, err := s.store.ListUserAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlockedAt := make(map[string]time.Time, len(have))
	for _, ua := range have {
		unlockedAt[ua.AchievementID] = ua.UnlockedAt
	}

	out := make([]AchievementStatus, 0, len(all))
	for _, a := range all {
		st := AchievementStatus{Achievement: a}
		for key, required := range a.Threshold {
			// single-metric thresholds in the catalogue; take the first
			v, _ := metricValue(u, c, key)
			st.Progress = min(v, required)
			st.MaxProgress = required
			break
		}
		if at, ok := unlockedAt[a.ID]; ok {
			at := at
			st.Unlocked = true
			st.UnlockedAt = &at
			st.Progress = st.MaxProgress
		}
		out = append(out, st)
	}
	return out, nil
}

func meetsThreshold(u *models.User, c *models.Creature, req map[string]int64) bool {
	if len(req) == 0 {
		return false
	}
	for key, required := range req {
		v, ok := metricValue(u, c, key)
		if !ok || v < required {
			return false
		}
	}
	return true
}

func metricValue(u *models.User, c *models.Creature, key string) (int64, bool) {
	switch key {
	case models.MetricFactsMastered:
		return u.TotalFactsMastered, true
	case models.MetricLevel:
		return int64(u.Level), true
	case models.MetricCurrentStreak:
		return int64(u.CurrentStreak), true
	case models.MetricTotalReviews:
		return u.TotalReviews, true
	case models.MetricPerfectQuizzes:
		return u.PerfectQuizzes, true
	case models.MetricMinigames:
		return u.MinigamesPlayed, true
	case models.MetricCreatureFeeds:
		return u.CreatureFeeds, true
	case models.MetricCreatureStage:
		if c == nil {
			return 0, false
		}
		return int64(c.Stage), true
	}
	return 0, false
}
