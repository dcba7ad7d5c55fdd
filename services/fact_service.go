package services

import (
	"context"
	"sync"
	"time"

	"creature-training-system/logger"
	"creature-training-system/models"
)

// FactService serves learning content and the fact of the day.
type FactService struct {
	store Store
	loc   *time.Location
	log   *logger.Logger

	mu        sync.RWMutex
	daily     *models.Fact
	dailyDate string
}

func NewFactService(store Store, loc *time.Location, log *logger.Logger) *FactService {
	if loc == nil {
		loc = time.UTC
	}
	return &FactService{store: store, loc: loc, log: log.With("service", "FactService")}
}

func (s *FactService) ListFacts(ctx context.Context, category string) ([]models.Fact, error) {
	return s.store.ListFacts(ctx, category, 0)
}

// dayIndex counts calendar days since 1970-01-01 in loc.
func dayIndex(now time.Time, loc *time.Location) int64 {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// DailyFact returns the cached fact of the day, computing it when the cache
// is stale.
func (s *FactService) DailyFact(ctx context.Context, now time.Time) (*models.Fact, error) {
	day := DayString(now.In(s.loc))
	s.mu.RLock()
	f, cachedDay := s.daily, s.dailyDate
	s.mu.RUnlock()
	if f != nil && cachedDay == day {
		return f, nil
	}
	return s.Rotate(ctx, now)
}

// Rotate picks the fact for now's day (day index mod fact count) and caches it.
func (s *FactService) Rotate(ctx context.Context, now time.Time) (*models.Fact, error) {
	count, err := s.store.CountFacts(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, notFound("fact_not_found", "No facts available")
	}
	idx := dayIndex(now, s.loc) % count
	f, err := s.store.GetFactAt(ctx, int(idx))
	if err != nil {
		return nil, err
	}

	day := DayString(now.In(s.loc))
	s.mu.Lock()
	s.daily, s.dailyDate = f, day
	s.mu.Unlock()
	s.log.Debug("[FACTS] daily fact", "date", day, "fact_id", f.ID)
	return f, nil
}
