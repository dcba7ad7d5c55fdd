package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"creature-training-system/logger"
	"creature-training-system/models"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"
)

const (
	StartingCoins       = 50
	DefaultCreatureName = "Buddy"
	DefaultPersonality  = "curious"
	DefaultReminderTime = "09:00"
	MaxCreatureNameLen  = 20

	maxUsernameAttempts = 50
)

type LearningConfig struct {
	FlashcardSeedCount int
	QuizQuestionCount  int
	StreakPolicy       StreakPolicy
	Location           *time.Location
}

// LearningService runs every learning action through the progression engine.
// Each mutation holds the user's lock and runs in one transaction.
type LearningService struct {
	store        Store
	locker       UserLocker
	teams        *TeamService
	achievements *AchievementService
	cfg          LearningConfig
	log          *logger.Logger

	// Now is the clock; tests replace it.
	Now func() time.Time
}

func NewLearningService(store Store, locker UserLocker, teams *TeamService, achievements *AchievementService, cfg LearningConfig, log *logger.Logger) *LearningService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.StreakPolicy == "" {
		cfg.StreakPolicy = StreakLegacy
	}
	return &LearningService{
		store:        store,
		locker:       locker,
		teams:        teams,
		achievements: achievements,
		cfg:          cfg,
		log:          log.With("service", "LearningService"),
		Now:          time.Now,
	}
}

// Outcome is what every rewarded action reports back.
type Outcome struct {
	XPEarned     int64    `json:"xp_earned"`
	CoinsEarned  int64    `json:"coins_earned"`
	XP           int64    `json:"xp"`
	Level        int      `json:"level"`
	LeveledUp    bool     `json:"leveled_up"`
	Stage        int      `json:"stage"`
	Evolved      bool     `json:"evolved"`
	Happiness    int      `json:"happiness"`
	Achievements []string `json:"achievements_unlocked"`
}

type ReviewResult struct {
	Outcome
	NewConfidence int       `json:"new_confidence"`
	NextReviewAt  time.Time `json:"next_review_at"`
	Mastered      bool      `json:"mastered"`
}

type QuizSubmission struct {
	Score          int
	TotalQuestions int
	SubmissionID   string
}

type QuizResult struct {
	Outcome
	Session   *models.QuizSession `json:"session"`
	Perfect   bool                `json:"perfect"`
	Duplicate bool                `json:"duplicate"`
}

type DailyLoginResult struct {
	Outcome
	Applied       bool `json:"applied"`
	CurrentStreak int  `json:"current_streak"`
	LongestStreak int  `json:"longest_streak"`
}

type FeedResult struct {
	Outcome
	Creature *models.Creature `json:"creature"`
}

type UserStats struct {
	Level                int                   `json:"level"`
	XP                   int64                 `json:"xp"`
	XPToNextLevel        int64                 `json:"xp_to_next_level"`
	Coins                int64                 `json:"coins"`
	TotalFactsMastered   int64                 `json:"total_facts_mastered"`
	CurrentStreak        int                   `json:"current_streak"`
	LongestStreak        int                   `json:"longest_streak"`
	TotalReviews         int64                 `json:"total_reviews"`
	QuizzesCompleted     int64                 `json:"quizzes_completed"`
	QuizAccuracy         float64               `json:"quiz_accuracy"`
	MinigamesPlayed      int64                 `json:"minigames_played"`
	CreatureStage        int                   `json:"creature_stage"`
	CreatureHappiness    int                   `json:"creature_happiness"`
	CreatureHealth       models.CreatureHealth `json:"creature_health"`
	AchievementsUnlocked int                   `json:"achievements_unlocked"`
}

func (s *LearningService) today(now time.Time) time.Time {
	return now.In(s.cfg.Location)
}

// mutate serializes fn per user and runs it in a transaction.
func (s *LearningService) mutate(ctx context.Context, lockKey string, fn func(tx Store) error) error {
	unlock, err := s.locker.Lock(ctx, lockKey)
	if err != nil {
		return err
	}
	defer unlock()
	return s.store.Tx(ctx, fn)
}

// award applies r to the user and creature, evolves, persists both, then
// propagates to teams and achievements inside the same transaction.
func (s *LearningService) award(ctx context.Context, tx Store, u *models.User, c *models.Creature, r Reward, now time.Time) (Outcome, error) {
	p := progressOf(u)
	leveled := p.Apply(r)
	setProgress(u, p)

	cs := creatureStateOf(c)
	if r.Interaction {
		cs.Cheer(r.Cheer, now)
	}
	evolved := cs.Evolve(u.TotalFactsMastered)
	setCreatureState(c, cs)

	if err := tx.UpdateUser(ctx, u); err != nil {
		return Outcome{}, err
	}
	if err := tx.UpdateCreature(ctx, c); err != nil {
		return Outcome{}, err
	}

	if s.teams != nil {
		if err := s.teams.Contribute(ctx, tx, u.ID, r, now); err != nil {
			return Outcome{}, err
		}
	}

	var unlocked []string
	if s.achievements != nil {
		got, err := s.achievements.Evaluate(ctx, tx, u, c)
		if err != nil {
			return Outcome{}, err
		}
		for _, a := range got {
			unlocked = append(unlocked, a.Code)
		}
	}

	if leveled {
		s.log.Info("[PROGRESSION] level up", "user_id", u.ID, "level", u.Level, "xp", u.XP)
	}
	if evolved {
		s.log.Info("[PROGRESSION] creature evolved", "user_id", u.ID, "stage", c.Stage)
	}

	return Outcome{
		XPEarned:     r.XP,
		CoinsEarned:  r.Coins,
		XP:           u.XP,
		Level:        u.Level,
		LeveledUp:    leveled,
		Stage:        c.Stage,
		Evolved:      evolved,
		Happiness:    c.Happiness,
		Achievements: unlocked,
	}, nil
}

// EnsureUser returns the user for a gateway identity, creating the user and
// their creature on first sight.
func (s *LearningService) EnsureUser(ctx context.Context, externalID, username string) (*models.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, invalid("missing_user", "Missing user identity")
	}
	u, err := s.store.GetUserByExternalID(ctx, externalID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	err = s.mutate(ctx, "ext:"+externalID, func(tx Store) error {
		existing, err := tx.GetUserByExternalID(ctx, externalID)
		if err == nil {
			u = existing
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		name, err := s.freeUsername(ctx, tx, username, externalID)
		if err != nil {
			return err
		}
		u = &models.User{
			ExternalUserID:    externalID,
			Username:          name,
			XP:                0,
			Level:             LevelForXP(0),
			Coins:             StartingCoins,
			DailyFactTime:     DefaultReminderTime,
			NotificationTime:  DefaultReminderTime,
			ShowOnLeaderboard: true,
		}
		if err := tx.CreateUser(ctx, u); err != nil {
			return err
		}
		return tx.CreateCreature(ctx, newCreature(&u.ID, nil, DefaultCreatureName, s.Now()))
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("[USER] ensured", "external_user_id", externalID, "user_id", u.ID)
	return u, nil
}

func (s *LearningService) freeUsername(ctx context.Context, tx Store, want, externalID string) (string, error) {
	want = strings.TrimSpace(want)
	if want == "" {
		want = externalID
	}
	_, err := tx.GetUserByUsername(ctx, want)
	if errors.Is(err, ErrNotFound) {
		return want, nil
	}
	if err != nil {
		return "", err
	}
	for n := 2; n < maxUsernameAttempts+2; n++ {
		candidate := fmt.Sprintf("%s-%d", want, n)
		_, err := tx.GetUserByUsername(ctx, candidate)
		if errors.Is(err, ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", conflict("username_taken", "Could not find a free username")
}

func newCreature(userID, teamID *string, name string, now time.Time) *models.Creature {
	return &models.Creature{
		UserID:            userID,
		TeamID:            teamID,
		Name:              name,
		Stage:             1,
		Happiness:         MaxHappiness,
		Health:            models.HealthHappy,
		Personality:       DefaultPersonality,
		LastInteractionAt: now,
		Accessories:       []string{},
	}
}

func (s *LearningService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.store.GetUser(ctx, userID)
}

// GetCreature applies idle decay lazily and persists it when it changed.
func (s *LearningService) GetCreature(ctx context.Context, userID string, now time.Time) (*models.Creature, error) {
	var c *models.Creature
	err := s.mutate(ctx, userID, func(tx Store) error {
		var err error
		c, err = tx.GetCreature(ctx, userID)
		if errors.Is(err, ErrNotFound) {
			// legacy rows without a creature get one on first read
			c = newCreature(&userID, nil, DefaultCreatureName, now)
			return tx.CreateCreature(ctx, c)
		}
		if err != nil {
			return err
		}
		changed, err := applyDecay(ctx, tx, c, now)
		if changed {
			s.log.Debug("[CREATURE] decayed", "user_id", userID, "tier", c.DecayTier, "happiness", c.Happiness)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// loadCreature reads the user's creature inside tx and charges any idle decay
// still pending before the caller changes it.
func loadCreature(ctx context.Context, tx Store, userID string, now time.Time) (*models.Creature, error) {
	c, err := tx.GetCreature(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := applyDecay(ctx, tx, c, now); err != nil {
		return nil, err
	}
	return c, nil
}

// applyDecay persists the idle penalty due at now. The caller holds the
// owner's lock.
func applyDecay(ctx context.Context, tx Store, c *models.Creature, now time.Time) (bool, error) {
	next, changed := DecayCreature(creatureStateOf(c), now)
	if !changed {
		return false, nil
	}
	setCreatureState(c, next)
	return true, tx.UpdateCreature(ctx, c)
}

func (s *LearningService) FeedCreature(ctx context.Context, userID string) (*FeedResult, error) {
	now := s.Now()
	var res FeedResult
	err := s.mutate(ctx, userID, func(tx Store) error {
		u, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		c, err := loadCreature(ctx, tx, userID, now)
		if err != nil {
			return err
		}
		cs := creatureStateOf(c)
		cs.Feed(now)
		setCreatureState(c, cs)
		u.CreatureFeeds++

		out, err := s.award(ctx, tx, u, c, Reward{Source: SourceFeed, XP: FeedXP}, now)
		if err != nil {
			return err
		}
		res = FeedResult{Outcome: out, Creature: c}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// NormalizeCreatureName trims and NFC-normalizes a name and checks its length in runes.
func NormalizeCreatureName(name string) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	n := utf8.RuneCountInString(name)
	if n < 1 || n > MaxCreatureNameLen {
		return "", invalid("invalid_name", fmt.Sprintf("Name must be 1-%d characters", MaxCreatureNameLen))
	}
	return name, nil
}

func (s *LearningService) RenameCreature(ctx context.Context, userID, name string) (*models.Creature, error) {
	clean, err := NormalizeCreatureName(name)
	if err != nil {
		return nil, err
	}
	var c *models.Creature
	err = s.mutate(ctx, userID, func(tx Store) error {
		var err error
		c, err = loadCreature(ctx, tx, userID, s.Now())
		if err != nil {
			return err
		}
		c.Name = clean
		return tx.UpdateCreature(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListFlashcards seeds the deck from the first facts on the first visit.
func (s *LearningService) ListFlashcards(ctx context.Context, userID string) ([]models.Flashcard, error) {
	cards, err := s.store.GetFlashcardsForUser(ctx, userID)
	if err != nil || len(cards) > 0 {
		return cards, err
	}

	err = s.mutate(ctx, userID, func(tx Store) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return err
		}
		existing, err := tx.GetFlashcardsForUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}
		facts, err := tx.ListFacts(ctx, "", s.cfg.FlashcardSeedCount)
		if err != nil {
			return err
		}
		now := s.Now()
		seed := make([]models.Flashcard, 0, len(facts))
		for _, f := range facts {
			seed = append(seed, models.Flashcard{
				UserID:       userID,
				FactID:       f.ID,
				NextReviewAt: now,
			})
		}
		s.log.Info("[FLASHCARDS] seeded deck", "user_id", userID, "count", len(seed))
		return tx.CreateFlashcards(ctx, seed)
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetFlashcardsForUser(ctx, userID)
}

func (s *LearningService) DueFlashcards(ctx context.Context, userID string, now time.Time) ([]models.Flashcard, error) {
	return s.store.GetDueFlashcards(ctx, userID, now)
}

func (s *LearningService) ReviewFlashcard(ctx context.Context, userID, flashcardID string, correct bool) (*ReviewResult, error) {
	if strings.TrimSpace(flashcardID) == "" {
		return nil, invalid("missing_flashcard", "flashcardId is required")
	}
	now := s.Now()
	var res ReviewResult
	err := s.mutate(ctx, userID, func(tx Store) error {
		card, err := tx.GetFlashcard(ctx, userID, flashcardID)
		if err != nil {
			return err
		}
		u, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		c, err := loadCreature(ctx, tx, userID, now)
		if err != nil {
			return err
		}

		next, reward := ReviewFlashcard(cardStateOf(card), correct, now)
		setCardState(card, next)
		if err := tx.UpdateFlashcard(ctx, card); err != nil {
			return err
		}

		u.TotalReviews++
		out, err := s.award(ctx, tx, u, c, reward, now)
		if err != nil {
			return err
		}
		res = ReviewResult{
			Outcome:       out,
			NewConfidence: next.Confidence,
			NextReviewAt:  next.NextReviewAt,
			Mastered:      reward.FactsMastered > 0,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *LearningService) QuizQuestions(ctx context.Context, n int) ([]models.QuizQuestion, error) {
	if n <= 0 {
		n = s.cfg.QuizQuestionCount
	}
	return s.store.ListQuizQuestions(ctx, n)
}

func validateQuiz(sub QuizSubmission) error {
	if sub.TotalQuestions <= 0 {
		return invalid("invalid_quiz", "totalQuestions must be positive")
	}
	if sub.Score < 0 || sub.Score > sub.TotalQuestions {
		return invalid("invalid_quiz", "score must be between 0 and totalQuestions")
	}
	if len(sub.SubmissionID) > 64 {
		return invalid("invalid_quiz", "submissionId is too long")
	}
	return nil
}

// SubmitQuiz records a finished quiz. A repeated SubmissionID returns the
// stored session and awards nothing.
func (s *LearningService) SubmitQuiz(ctx context.Context, userID string, sub QuizSubmission) (*QuizResult, error) {
	sub.SubmissionID = strings.TrimSpace(sub.SubmissionID)
	if err := validateQuiz(sub); err != nil {
		return nil, err
	}
	now := s.Now()
	var res QuizResult
	err := s.mutate(ctx, userID, func(tx Store) error {
		if sub.SubmissionID != "" {
			prev, err := tx.FindQuizSessionBySubmission(ctx, userID, sub.SubmissionID)
			if err == nil {
				res = QuizResult{
					Outcome:   Outcome{XPEarned: prev.XPEarned, CoinsEarned: prev.CoinsEarned},
					Session:   prev,
					Perfect:   prev.Score == prev.TotalQuestions,
					Duplicate: true,
				}
				return nil
			}
			if !errors.Is(err, ErrNotFound) {
				return err
			}
		}

		u, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		c, err := loadCreature(ctx, tx, userID, now)
		if err != nil {
			return err
		}

		reward := QuizReward(sub.Score, sub.TotalQuestions)
		p := ApplyQuizStreak(progressOf(u), s.today(now), s.cfg.StreakPolicy)
		u.CurrentStreak, u.LongestStreak, u.LastActiveDate = p.CurrentStreak, p.LongestStreak, p.LastActiveDate
		u.QuizzesCompleted++
		if reward.Perfect {
			u.PerfectQuizzes++
		}

		out, err := s.award(ctx, tx, u, c, reward, now)
		if err != nil {
			return err
		}

		session := &models.QuizSession{
			UserID:         userID,
			Score:          sub.Score,
			TotalQuestions: sub.TotalQuestions,
			XPEarned:       reward.XP,
			CoinsEarned:    reward.Coins,
			CompletedAt:    now,
		}
		if sub.SubmissionID != "" {
			session.SubmissionID = &sub.SubmissionID
		}
		if err := tx.CreateQuizSession(ctx, session); err != nil {
			return err
		}
		res = QuizResult{Outcome: out, Session: session, Perfect: reward.Perfect}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *LearningService) CompleteMinigame(ctx context.Context, userID string, rawScore *int) (*Outcome, error) {
	now := s.Now()
	var res Outcome
	err := s.mutate(ctx, userID, func(tx Store) error {
		u, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		c, err := loadCreature(ctx, tx, userID, now)
		if err != nil {
			return err
		}
		u.MinigamesPlayed++
		res, err = s.award(ctx, tx, u, c, MinigameReward(rawScore), now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// DailyLogin is idempotent per calendar day in the configured zone.
func (s *LearningService) DailyLogin(ctx context.Context, userID string, now time.Time) (*DailyLoginResult, error) {
	var res DailyLoginResult
	err := s.mutate(ctx, userID, func(tx Store) error {
		u, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		p, changed := ApplyDailyLogin(progressOf(u), s.today(now))
		if !changed {
			res = DailyLoginResult{
				Outcome:       Outcome{XP: u.XP, Level: u.Level},
				CurrentStreak: u.CurrentStreak,
				LongestStreak: u.LongestStreak,
			}
			return nil
		}
		c, err := loadCreature(ctx, tx, userID, now)
		if err != nil {
			return err
		}
		// streak fields from the engine; the XP bonus goes through award
		u.CurrentStreak, u.LongestStreak, u.LastActiveDate = p.CurrentStreak, p.LongestStreak, p.LastActiveDate
		out, err := s.award(ctx, tx, u, c, Reward{Source: SourceDailyLogin, XP: DailyLoginXP}, now)
		if err != nil {
			return err
		}
		res = DailyLoginResult{
			Outcome:       out,
			Applied:       true,
			CurrentStreak: u.CurrentStreak,
			LongestStreak: u.LongestStreak,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Stats aggregates the dashboard numbers with parallel reads.
func (s *LearningService) Stats(ctx context.Context, userID string) (*UserStats, error) {
	var (
		u        *models.User
		totals   QuizTotals
		unlocked []models.UserAchievement
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		u, err = s.store.GetUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		totals, err = s.store.QuizTotals(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		unlocked, err = s.store.ListUserAchievements(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// after the user is known to exist; this path charges pending decay
	c, err := s.GetCreature(ctx, userID, s.Now())
	if err != nil {
		return nil, err
	}

	var accuracy float64
	if totals.TotalQuestions > 0 {
		accuracy = float64(totals.Correct) / float64(totals.TotalQuestions) * 100
	}
	return &UserStats{
		Level:                u.Level,
		XP:                   u.XP,
		XPToNextLevel:        XPToNextLevel(u.XP),
		Coins:                u.Coins,
		TotalFactsMastered:   u.TotalFactsMastered,
		CurrentStreak:        u.CurrentStreak,
		LongestStreak:        u.LongestStreak,
		TotalReviews:         u.TotalReviews,
		QuizzesCompleted:     totals.Sessions,
		QuizAccuracy:         accuracy,
		MinigamesPlayed:      u.MinigamesPlayed,
		CreatureStage:        c.Stage,
		CreatureHappiness:    c.Happiness,
		CreatureHealth:       c.Health,
		AchievementsUnlocked: len(unlocked),
	}, nil
}

func progressOf(u *models.User) Progress {
	return Progress{
		XP:             u.XP,
		Level:          u.Level,
		Coins:          u.Coins,
		FactsMastered:  u.TotalFactsMastered,
		CurrentStreak:  u.CurrentStreak,
		LongestStreak:  u.LongestStreak,
		LastActiveDate: u.LastActiveDate,
	}
}

func setProgress(u *models.User, p Progress) {
	u.XP = p.XP
	u.Level = p.Level
	u.Coins = p.Coins
	u.TotalFactsMastered = p.FactsMastered
	u.CurrentStreak = p.CurrentStreak
	u.LongestStreak = p.LongestStreak
	u.LastActiveDate = p.LastActiveDate
}

func creatureStateOf(c *models.Creature) CreatureState {
	return CreatureState{
		Stage:             c.Stage,
		Happiness:         c.Happiness,
		Health:            c.Health,
		DecayTier:         c.DecayTier,
		LastFedAt:         c.LastFedAt,
		LastInteractionAt: c.LastInteractionAt,
	}
}

func setCreatureState(c *models.Creature, s CreatureState) {
	c.Stage = s.Stage
	c.Happiness = s.Happiness
	c.Health = s.Health
	c.DecayTier = s.DecayTier
	c.LastFedAt = s.LastFedAt
	c.LastInteractionAt = s.LastInteractionAt
}

func cardStateOf(f *models.Flashcard) CardState {
	return CardState{
		Confidence:     f.ConfidenceLevel,
		NextReviewAt:   f.NextReviewAt,
		LastReviewedAt: f.LastReviewedAt,
		ReviewCount:    f.ReviewCount,
		CorrectCount:   f.CorrectCount,
	}
}

func setCardState(f *models.Flashcard, s CardState) {
	f.ConfidenceLevel = s.Confidence
	f.NextReviewAt = s.NextReviewAt
	f.LastReviewedAt = s.LastReviewedAt
	f.ReviewCount = s.ReviewCount
	f.CorrectCount = s.CorrectCount
}
