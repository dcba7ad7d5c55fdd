package services

import (
	"context"
	"testing"
	"time"

	"creature-training-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayIndex(t *testing.T) {
	assert.Equal(t, int64(0), dayIndex(time.Date(1970, 1, 1, 23, 59, 0, 0, time.UTC), time.UTC))
	assert.Equal(t, int64(1), dayIndex(time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC), time.UTC))

	tokyo := time.FixedZone("JST", 9*60*60)
	late := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, dayIndex(late, time.UTC)+1, dayIndex(late, tokyo))
}

func TestDailyFact_RotatesByDay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	facts := env.seedFacts(t, 3)

	day := dayIndex(testEpoch, time.UTC)
	f, err := env.facts.DailyFact(ctx, testEpoch)
	require.NoError(t, err)
	assert.Equal(t, facts[day%3].ID, f.ID)

	next, err := env.facts.DailyFact(ctx, testEpoch.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, facts[(day+1)%3].ID, next.ID)
}

func TestDailyFact_CachedForTheDay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedFacts(t, 2)

	first, err := env.facts.DailyFact(ctx, testEpoch)
	require.NoError(t, err)

	require.NoError(t, env.db.Create(&models.Fact{Category: "policies", Title: "Late", Content: "added later", Difficulty: 1}).Error)

	again, err := env.facts.DailyFact(ctx, testEpoch.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestDailyFact_NoFacts(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.facts.DailyFact(context.Background(), testEpoch)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFacts_ByCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedFacts(t, 2)
	require.NoError(t, env.db.Create(&models.Fact{Category: models.CategorySalesTechniques, Title: "Upsell", Content: "Offer the bundle", Difficulty: 2}).Error)

	all, err := env.facts.ListFacts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	sales, err := env.facts.ListFacts(ctx, models.CategorySalesTechniques)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "Upsell", sales[0].Title)
}

func TestSeedContent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seeded, err := SeedContent(ctx, db)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = SeedContent(ctx, db)
	require.NoError(t, err)
	assert.False(t, seeded)

	var facts, questions, accessories int64
	require.NoError(t, db.Model(&models.Fact{}).Count(&facts).Error)
	require.NoError(t, db.Model(&models.QuizQuestion{}).Count(&questions).Error)
	require.NoError(t, db.Model(&models.Accessory{}).Count(&accessories).Error)
	assert.Equal(t, int64(len(starterFacts)), facts)
	assert.Equal(t, int64(len(starterQuestions)), questions)
	assert.Equal(t, int64(len(starterAccessories)), accessories)

	store := NewGormStore(db)
	qs, err := store.ListQuizQuestions(ctx, 3)
	require.NoError(t, err)
	require.Len(t, qs, 3)
	assert.Len(t, qs[0].Options, 4)
}
