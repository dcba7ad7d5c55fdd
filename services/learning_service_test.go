package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"creature-training-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureUser_CreatesOnceWithCreature(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u1, err := env.learning.EnsureUser(ctx, "ext-1", "alice")
	require.NoError(t, err)
	u2, err := env.learning.EnsureUser(ctx, "ext-1", "alice")
	require.NoError(t, err)

	assert.Equal(t, u1.ID, u2.ID)
	assert.Equal(t, "alice", u1.Username)
	assert.Equal(t, int64(StartingCoins), u1.Coins)
	assert.Equal(t, 1, u1.Level)
	assert.True(t, u1.ShowOnLeaderboard)

	c := env.reloadCreature(t, u1.ID)
	assert.Equal(t, DefaultCreatureName, c.Name)
	assert.Equal(t, 1, c.Stage)
	assert.Equal(t, MaxHappiness, c.Happiness)
	assert.Equal(t, models.HealthHappy, c.Health)

	var n int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestEnsureUser_UsernameTaken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.learning.EnsureUser(ctx, "ext-1", "alice")
	require.NoError(t, err)
	u, err := env.learning.EnsureUser(ctx, "ext-2", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice-2", u.Username)

	// a name someone picked by hand is skipped too
	_, err = env.learning.EnsureUser(ctx, "ext-3", "alice-3")
	require.NoError(t, err)
	u, err = env.learning.EnsureUser(ctx, "ext-4", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice-4", u.Username)

	_, err = env.learning.EnsureUser(ctx, "   ", "bob")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEnsureUser_ConcurrentFirstSight(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]string, 5)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := env.learning.EnsureUser(ctx, "ext-race", "racer")
			if assert.NoError(t, err) {
				ids[i] = u.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	var n int64
	require.NoError(t, env.db.Model(&models.Creature{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestListFlashcards_SeedsOnFirstVisit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	facts := env.seedFacts(t, 5)
	u := env.newUser(t, "ext-1")

	cards, err := env.learning.ListFlashcards(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cards, 3)
	for i, c := range cards {
		assert.Equal(t, facts[i].ID, c.FactID)
		assert.Equal(t, 0, c.ConfidenceLevel)
		if assert.NotNil(t, c.Fact) {
			assert.Equal(t, facts[i].Title, c.Fact.Title)
		}
	}

	again, err := env.learning.ListFlashcards(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, again, 3)

	due, err := env.learning.DueFlashcards(ctx, u.ID, testEpoch)
	require.NoError(t, err)
	assert.Len(t, due, 3)
}

func TestListFlashcards_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	env.seedFacts(t, 2)

	_, err := env.learning.ListFlashcards(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReviewFlashcard_AwardsAndReschedules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedFacts(t, 3)
	u := env.newUser(t, "ext-1")
	cards, err := env.learning.ListFlashcards(ctx, u.ID)
	require.NoError(t, err)

	res, err := env.learning.ReviewFlashcard(ctx, u.ID, cards[0].ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(ReviewCorrectXP), res.XPEarned)
	assert.Equal(t, int64(ReviewCorrectCoins), res.CoinsEarned)
	assert.Equal(t, 1, res.NewConfidence)
	assert.Equal(t, testEpoch.AddDate(0, 0, 2), res.NextReviewAt.UTC())
	assert.False(t, res.Mastered)
	assert.Contains(t, res.Achievements, "FIRST_REVIEW")

	got := env.reloadUser(t, u.ID)
	assert.Equal(t, int64(10), got.XP)
	assert.Equal(t, int64(StartingCoins+ReviewCorrectCoins), got.Coins)
	assert.Equal(t, int64(1), got.TotalReviews)

	due, err := env.learning.DueFlashcards(ctx, u.ID, testEpoch)
	require.NoError(t, err)
	assert.Len(t, due, 2)

	res, err = env.learning.ReviewFlashcard(ctx, u.ID, cards[1].ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(ReviewWrongXP), res.XPEarned)
	assert.Equal(t, int64(0), res.CoinsEarned)
	assert.Equal(t, 0, res.NewConfidence)
	assert.Empty(t, res.Achievements)
}

func TestReviewFlashcard_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedFacts(t, 2)
	alice := env.newUser(t, "alice")
	bob := env.newUser(t, "bob")
	cards, err := env.learning.ListFlashcards(ctx, alice.ID)
	require.NoError(t, err)

	_, err = env.learning.ReviewFlashcard(ctx, alice.ID, "", true)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.learning.ReviewFlashcard(ctx, alice.ID, "nope", true)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.learning.ReviewFlashcard(ctx, bob.ID, cards[0].ID, true)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, int64(0), env.reloadUser(t, alice.ID).XP)
}

func TestReviewFlashcard_ConcurrentReviewsAreSerialized(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedFacts(t, 1)
	u := env.newUser(t, "ext-1")
	cards, err := env.learning.ListFlashcards(ctx, u.ID)
	require.NoError(t, err)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.learning.ReviewFlashcard(ctx, u.ID, cards[0].ID, true)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got := env.reloadUser(t, u.ID)
	assert.Equal(t, int64(n*ReviewCorrectXP), got.XP)
	assert.Equal(t, LevelForXP(got.XP), got.Level)
	assert.Equal(t, int64(n), got.TotalReviews)
	// boxes 1,2 are not mastered; 3,4,5 and the five capped reviews are
	assert.Equal(t, int64(8), got.TotalFactsMastered)

	card, err := env.store.GetFlashcard(ctx, u.ID, cards[0].ID)
	require.NoError(t, err)
	assert.Equal(t, n, card.ReviewCount)
	assert.Equal(t, MaxConfidence, card.ConfidenceLevel)
	assert.Zero(t, env.locker.held())
}

func TestSubmitQuiz(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.newUser(t, "ext-1")

	res, err := env.learning.SubmitQuiz(ctx, u.ID, QuizSubmission{Score: 5, TotalQuestions: 5, SubmissionID: "q-1"})
	require.NoError(t, err)
	assert.True(t, res.Perfect)
	assert.False(t, res.Duplicate)
	assert.Equal(t, int64(75), res.XPEarned)
	assert.Equal(t, int64(35), res.CoinsEarned)
	assert.Contains(t, res.Achievements, "PERFECT_QUIZ")
	require.NotNil(t, res.Session)
	assert.Equal(t, int64(75), res.Session.XPEarned)

	got := env.reloadUser(t, u.ID)
	assert.Equal(t, int64(75), got.XP)
	assert.Equal(t, int64(StartingCoins+35), got.Coins)
	assert.Equal(t, int64(5), got.TotalFactsMastered)
	assert.Equal(t, 1, got.CurrentStreak)
	assert.Equal(t, int64(1), got.QuizzesCompleted)
	assert.Equal(t, int64(1), got.PerfectQuizzes)
}

func TestSubmitQuiz_DuplicateSubmissionAwardsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.newUser(t, "ext-1")
	sub := QuizSubmission{Score: 3, TotalQuestions: 5, SubmissionID: "q-1"}

	first, err := env.learning.SubmitQuiz(ctx, u.ID, sub)
	require.NoError(t, err)
	second, err := env.learning.SubmitQuiz(ctx, u.ID, sub)
	require.NoError(t, err)

	assert.True(t, second.Duplicate)
	assert.Equal(t, first.Session.ID, second.Session.ID)
	assert.Equal(t, int64(30), second.XPEarned)

	got := env.reloadUser(t, u.ID)
	assert.Equal(t, int64(30), got.XP)
	assert.Equal(t, int64(1), got.QuizzesCompleted)

	// without an id every submission counts
	_, err = env.learning.SubmitQuiz(ctx, u.ID, QuizSubmission{Score: 3, TotalQuestions: 5})
	require.NoError(t, err)
	_, err = env.learning.SubmitQuiz(ctx, u.ID, QuizSubmission{Score: 3, TotalQuestions: 5})
	require.NoError(t, err)
	got = env.reloadUser(t, u.ID)
	assert.Equal(t, int64(90), got.XP)
	assert.Equal(t, 3, got.CurrentStreak)
}

func TestSubmitQuiz_Validation(t *testing.T) {
	env := newTestEnv(t)
	u := env.newUser(t, "ext-1")

	tests := []struct {
		name string
		sub  QuizSubmission
	}{
		{name: "no questions", sub: QuizSubmission{Score: 0, TotalQuestions: 0}},
		{name: "score above total", sub: QuizSubmission{Score: 6, TotalQuestions: 5}},
		{name: "negative score", sub: QuizSubmission{Score: -1, TotalQuestions: 5}},
		{name: "long submission id", sub: QuizSubmission{Score: 1, TotalQuestions: 5, SubmissionID: strings.Repeat("x", 65)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.learning.SubmitQuiz(context.Background(), u.ID, tt.sub)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Equal(t, int64(0), env.reloadUser(t, u.ID).XP)
}

func TestSubmitQuiz_DailyStreakPolicy(t *testing.T) {
	env := newTestEnv(t)
	env.learning.cfg.StreakPolicy = StreakDaily
	ctx := context.Background()
	u := env.newUser(t, "ext-1")

	for i := 0; i < 3; i++ {
		_, err := env.learning.SubmitQuiz(ctx, u.ID, QuizSubmission{Score: 1, TotalQuestions: 2})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, env.reloadUser(t, u.ID).CurrentStreak)

	env.clock.Advance(24 * time.Hour)
	_, err := env.learning.SubmitQuiz(ctx, u.ID, QuizSubmission{Score: 1, TotalQuestions: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, env.reloadUser(t, u.ID).CurrentStreak)
}

func TestSubmitQuiz_EvolvesCreature(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.newUser(t, "ext-1")
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", u.ID).Update("total_facts_mastered", 98).Error)

	res, err := env.learning.SubmitQuiz(ctx, u.ID, QuizSubmission{Score: 5, TotalQuestions: 5})
	require.NoError(t, err)
	assert.True(t, res.Evolved)
	assert.Equal(t, 2, res.Stage)
	assert.Contains(t, res.Achievements, "STAGE_2")
	assert.Equal(t, 2, env.reloadCreature(t, u.ID).Stage)
}

func TestCompleteMinigame(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.newUser(t, "ext-1")

	res, err := env.learning.CompleteMinigame(ctx, u.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(50), res.XPEarned)
	assert.Equal(t, int64(10), res.CoinsEarned)
	assert.Contains(t, res.Achievements, "FIRST_MINIGAME")

	res, err = env.learning.CompleteMinigame(ctx, u.ID, intPtr(1000))
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.XPEarned)
	assert.Equal(t, int64(150), res.XP)
	assert.Equal(t, 2, res.Level)
	assert.True(t, res.LeveledUp)

	got := env.reloadUser(t, u.ID)
	assert.Equal(t, int64(2), got.MinigamesPlayed)
	assert.Equal(t, int64(StartingCoins+30), got.Coins)

	_, err = env.learning.CompleteMinigame(ctx, "missing", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDailyLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.newUser(t, "ext-1")

	res, err := env.learning.DailyLogin(ctx, u.ID, testEpoch)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, int64(DailyLoginXP), res.XPEarned)
	assert.Equal(t, 1, res.CurrentStreak)

	res, err = env.learning.DailyLogin(ctx, u.ID, testEpoch.Add(6*time.Hour))
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, int64(DailyLoginXP), res.XP)

	res, err = env.learning.DailyLogin(ctx, u.ID, testEpoch.Add(24*time.Hour))
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, 2, res.CurrentStreak)

	res, err = env.learning.DailyLogin(ctx, u.ID, testEpoch.Add(96*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, res.CurrentStreak)
	assert.Equal(t, 2, res.LongestStreak)

	got := env.reloadUser(t, u.ID)
	assert.Equal(t, int64(3*DailyLoginXP), got.XP)
	assert.Equal(t, "2025-03-14", got.LastActiveDate)
}

func TestDailyLogin_UsesConfiguredZone(t *testing.T) {
	env := newTestEnv(t)
	tokyo := time.FixedZone("JST", 9*60*60)
	env.learning.cfg.Location = tokyo
	ctx := context.Background()
	u := env.newUser(t, "ext-1")

	// 2025-03-10 20:00 UTC is already 2025-03-11 in Tokyo
	_, err := env.learning.DailyLogin(ctx, u.ID, time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-11", env.reloadUser(t, u.ID).LastActiveDate)
}

func TestGetCreature_LazyDecayIsPersisted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.newUser(t, "ext-1")

	c, err := env.learning.GetCreature(ctx, u.ID, testEpoch.Add(30*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 90, c.Happiness)
	assert.Equal(t, models.HealthNeutral, c.Health)
	assert.Equal(t, 90, env.reloadCreature(t, u.ID).Happiness)

	c, err = env.learning.GetCreature(ctx, u.ID, testEpoch.Add(31*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 90, c.Happiness)

	c, err = env.learning.GetCreature(ctx, u.ID, testEpoch.Add(73*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 40, c.Happiness)
	assert.Equal(t, models.HealthNeglected, c.Health)
}

func TestGetCreature_CreatesMissing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.newUser(t, "ext-1")
	require.NoError(t, env.db.Unscoped().Where("user_id = ?", u.ID).Delete(&models.Creature{}).Error)

	c, err := env.learning.GetCreature(ctx, u.ID, testEpoch)
	require.NoError(t, err)
	assert.Equal(t, DefaultCreatureName, c.Name)
	assert.Equal(t, MaxHappiness, c.Happiness)
}

func TestFeedCreature(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.newUser(t, "ext-1")

	env.clock.Advance(50 * time.Hour)
	_, err := env.learning.GetCreature(ctx, u.ID, env.clock.Now())
	require.NoError(t, err)

	res, err := env.learning.FeedCreature(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 85, res.Creature.Happiness)
	assert.Equal(t, models.HealthHappy, res.Creature.Health)
	assert.Equal(t, int64(FeedXP), res.XPEarned)
	require.NotNil(t, res.Creature.LastFedAt)

	// fed creatures restart the idle clock
	c, err := env.learning.GetCreature(ctx, u.ID, env.clock.Now().Add(12*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 85, c.Happiness)

	got := env.reloadUser(t, u.ID)
	assert.Equal(t, int64(1), got.CreatureFeeds)
	assert.Equal(t, int64(FeedXP), got.XP)
}

func TestRenameCreature(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.newUser(t, "ext-1")

	c, err := env.learning.RenameCreature(ctx, u.ID, "  Sparky  ")
	require.NoError(t, err)
	assert.Equal(t, "Sparky", c.Name)
	assert.Equal(t, "Sparky", env.reloadCreature(t, u.ID).Name)

	for _, bad := range []string{"", "   ", strings.Repeat("a", MaxCreatureNameLen+1)} {
		_, err := env.learning.RenameCreature(ctx, u.ID, bad)
		assert.ErrorIs(t, err, ErrInvalidInput, "name %q", bad)
	}
}

func TestNormalizeCreatureName(t *testing.T) {
	name, err := NormalizeCreatureName("Rémy")
	require.NoError(t, err)
	assert.Equal(t, "Rémy", name)

	name, err = NormalizeCreatureName(strings.Repeat("é", MaxCreatureNameLen))
	require.NoError(t, err)
	assert.Equal(t, MaxCreatureNameLen, len([]rune(name)))
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedFacts(t, 2)
	u := env.newUser(t, "ext-1")
	cards, err := env.learning.ListFlashcards(ctx, u.ID)
	require.NoError(t, err)

	_, err = env.learning.ReviewFlashcard(ctx, u.ID, cards[0].ID, true)
	require.NoError(t, err)
	_, err = env.learning.SubmitQuiz(ctx, u.ID, QuizSubmission{Score: 3, TotalQuestions: 5})
	require.NoError(t, err)

	stats, err := env.learning.Stats(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), stats.XP)
	assert.Equal(t, int64(60), stats.XPToNextLevel)
	assert.Equal(t, int64(1), stats.TotalReviews)
	assert.Equal(t, int64(1), stats.QuizzesCompleted)
	assert.InDelta(t, 60.0, stats.QuizAccuracy, 0.001)
	assert.Equal(t, 1, stats.CreatureStage)
	assert.Equal(t, 1, stats.AchievementsUnlocked)

	_, err = env.learning.Stats(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSettings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.newUser(t, "ext-1")

	s, err := env.learning.GetSettings(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, DefaultReminderTime, s.DailyFactTime)
	assert.True(t, s.ShowOnLeaderboard)

	at, hidden := "18:30", false
	s, err = env.learning.UpdateSettings(ctx, u.ID, SettingsUpdate{NotificationTime: &at, ShowOnLeaderboard: &hidden})
	require.NoError(t, err)
	assert.Equal(t, "18:30", s.NotificationTime)
	assert.Equal(t, DefaultReminderTime, s.DailyFactTime)
	assert.False(t, s.ShowOnLeaderboard)

	bad := "25:00"
	_, err = env.learning.UpdateSettings(ctx, u.ID, SettingsUpdate{DailyFactTime: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	got := env.reloadUser(t, u.ID)
	assert.Equal(t, "18:30", got.NotificationTime)
	assert.False(t, got.ShowOnLeaderboard)
}

func TestSearchUsersAndLeaderboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, "alice")
	bob := env.newUser(t, "bob")
	carol := env.newUser(t, "carol")

	found, err := env.learning.SearchUsers(ctx, alice.ID, "O", 0)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "bob", found[0].Username)
	assert.Equal(t, "carol", found[1].Username)

	found, err = env.learning.SearchUsers(ctx, alice.ID, "  ", 0)
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = env.learning.CompleteMinigame(ctx, bob.ID, intPtr(80))
	require.NoError(t, err)
	_, err = env.learning.CompleteMinigame(ctx, carol.ID, intPtr(30))
	require.NoError(t, err)
	hidden := false
	_, err = env.learning.UpdateSettings(ctx, alice.ID, SettingsUpdate{ShowOnLeaderboard: &hidden})
	require.NoError(t, err)

	board, err := NewLeaderboardService(env.store, 10).Top(ctx)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, bob.ID, board[0].UserID)
	assert.Equal(t, int64(80), board[0].XP)
	assert.Equal(t, carol.ID, board[1].UserID)
}

func TestSubmitQuiz_ZeroScoreStillCountsAsInteraction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.newUser(t, "ext-1")

	env.clock.Advance(60 * time.Hour)
	quizAt := env.clock.Now()
	res, err := env.learning.SubmitQuiz(ctx, u.ID, QuizSubmission{Score: 0, TotalQuestions: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.XPEarned)
	assert.Equal(t, 70, res.Happiness)

	c := env.reloadCreature(t, u.ID)
	assert.Equal(t, models.HealthHappy, c.Health)
	assert.True(t, quizAt.Equal(c.LastInteractionAt))
	assert.Equal(t, 0, c.DecayTier)

	// the idle clock restarted at the quiz, so an hour later nothing is due
	c, err = env.learning.GetCreature(ctx, u.ID, quizAt.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 70, c.Happiness)
	assert.Equal(t, models.HealthHappy, c.Health)
}

func TestDailyLogin_AfterQuizByStreakPolicy(t *testing.T) {
	tests := []struct {
		policy         StreakPolicy
		streakAfterDay []int
	}{
		{policy: StreakLegacy, streakAfterDay: []int{3, 4}},
		{policy: StreakDaily, streakAfterDay: []int{1, 2}},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			env := newTestEnv(t)
			env.learning.cfg.StreakPolicy = tt.policy
			ctx := context.Background()
			u := env.newUser(t, "ext-1")

			// a quiz before the first login of the day records the day itself
			_, err := env.learning.SubmitQuiz(ctx, u.ID, QuizSubmission{Score: 1, TotalQuestions: 2})
			require.NoError(t, err)
			res, err := env.learning.DailyLogin(ctx, u.ID, env.clock.Now())
			require.NoError(t, err)
			assert.False(t, res.Applied)
			assert.Equal(t, int64(0), res.XPEarned)
			assert.Equal(t, 1, res.CurrentStreak)

			_, err = env.learning.SubmitQuiz(ctx, u.ID, QuizSubmission{Score: 1, TotalQuestions: 2})
			require.NoError(t, err)
			_, err = env.learning.SubmitQuiz(ctx, u.ID, QuizSubmission{Score: 1, TotalQuestions: 2})
			require.NoError(t, err)
			assert.Equal(t, tt.streakAfterDay[0], env.reloadUser(t, u.ID).CurrentStreak)

			env.clock.Advance(24 * time.Hour)
			_, err = env.learning.SubmitQuiz(ctx, u.ID, QuizSubmission{Score: 1, TotalQuestions: 2})
			require.NoError(t, err)
			res, err = env.learning.DailyLogin(ctx, u.ID, env.clock.Now())
			require.NoError(t, err)
			assert.False(t, res.Applied)
			assert.Equal(t, tt.streakAfterDay[1], res.CurrentStreak)

			got := env.reloadUser(t, u.ID)
			assert.Equal(t, "2025-03-11", got.LastActiveDate)
			assert.Equal(t, tt.streakAfterDay[1], got.LongestStreak)
		})
	}
}

func TestReviewFlashcard_ChargesDecayBeforeCheer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedFacts(t, 1)
	u := env.newUser(t, "ext-1")
	cards, err := env.learning.ListFlashcards(ctx, u.ID)
	require.NoError(t, err)

	env.clock.Advance(100 * time.Hour)
	res, err := env.learning.ReviewFlashcard(ctx, u.ID, cards[0].ID, true)
	require.NoError(t, err)
	assert.Equal(t, 50+ReviewCorrectCheer, res.Happiness)

	c := env.reloadCreature(t, u.ID)
	assert.Equal(t, 50+ReviewCorrectCheer, c.Happiness)
	assert.Equal(t, models.HealthHappy, c.Health)
}

func TestStats_ChargesPendingDecay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.newUser(t, "ext-1")

	env.clock.Advance(100 * time.Hour)
	stats, err := env.learning.Stats(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, stats.CreatureHappiness)
	assert.Equal(t, models.HealthNeglected, stats.CreatureHealth)

	c := env.reloadCreature(t, u.ID)
	assert.Equal(t, 50, c.Happiness)
	assert.Equal(t, 3, c.DecayTier)
}

func TestSearchUsers_WildcardsMatchLiterally(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, "alice")
	env.newUser(t, "bob")
	env.newUser(t, "team_lead")

	tests := []struct {
		query string
		want  []string
	}{
		{query: "_", want: []string{"team_lead"}},
		{query: "%", want: nil},
		{query: "m_l", want: []string{"team_lead"}},
		{query: "b%b", want: nil},
		{query: `\`, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			found, err := env.learning.SearchUsers(ctx, alice.ID, tt.query, 0)
			require.NoError(t, err)
			var names []string
			for _, f := range found {
				names = append(names, f.Username)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}
