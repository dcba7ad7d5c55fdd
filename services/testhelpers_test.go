package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"creature-training-system/logger"
	"creature-training-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testEpoch = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// newTestDB opens a private in-memory sqlite database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := models.OpenDB("sqlite", dsn, gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	db           *gorm.DB
	store        *GormStore
	locker       *LocalLocker
	clock        *testClock
	learning     *LearningService
	teams        *TeamService
	achievements *AchievementService
	shop         *ShopService
	facts        *FactService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	db := newTestDB(t)
	store := NewGormStore(db)
	locker := NewLocalLocker(5 * time.Second)
	clock := &testClock{now: testEpoch}
	log := logger.NewNop()

	teams := NewTeamService(store, locker, log)
	teams.Now = clock.Now
	achievements := NewAchievementService(store, log)
	require.NoError(t, achievements.Seed(ctx))

	learning := NewLearningService(store, locker, teams, achievements, LearningConfig{
		FlashcardSeedCount: 3,
		QuizQuestionCount:  2,
		StreakPolicy:       StreakLegacy,
		Location:           time.UTC,
	}, log)
	learning.Now = clock.Now
	shop := NewShopService(store, locker, nil, log)
	shop.Now = clock.Now

	return &testEnv{
		db:           db,
		store:        store,
		locker:       locker,
		clock:        clock,
		learning:     learning,
		teams:        teams,
		achievements: achievements,
		shop:         shop,
		facts:        NewFactService(store, time.UTC, log),
	}
}

// seedFacts inserts n facts with increasing creation times.
func (e *testEnv) seedFacts(t *testing.T, n int) []models.Fact {
	t.Helper()
	facts := make([]models.Fact, 0, n)
	for i := 0; i < n; i++ {
		f := models.Fact{
			Category:   models.CategoryPolicies,
			Title:      fmt.Sprintf("Fact %02d", i),
			Content:    fmt.Sprintf("Content of fact %d", i),
			Difficulty: 1,
		}
		f.CreatedAt = testEpoch.Add(time.Duration(i) * time.Second)
		require.NoError(t, e.db.Create(&f).Error)
		facts = append(facts, f)
	}
	return facts
}

func (e *testEnv) newUser(t *testing.T, externalID string) *models.User {
	t.Helper()
	u, err := e.learning.EnsureUser(context.Background(), externalID, externalID)
	require.NoError(t, err)
	return u
}

func (e *testEnv) reloadUser(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := e.store.GetUser(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (e *testEnv) reloadCreature(t *testing.T, userID string) *models.Creature {
	t.Helper()
	c, err := e.store.GetCreature(context.Background(), userID)
	require.NoError(t, err)
	return c
}

func (e *testEnv) addAccessory(t *testing.T, code, category string, price int64) *models.Accessory {
	t.Helper()
	a := &models.Accessory{Code: code, Name: code, Category: category, Price: price, Rarity: models.RarityCommon}
	require.NoError(t, e.store.CreateAccessory(context.Background(), a))
	return a
}

func intPtr(v int) *int { return &v }
