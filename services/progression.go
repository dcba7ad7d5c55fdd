package services

import (
	"time"

	"creature-training-system/models"
)

// XPPerLevel: level = floor(xp / XPPerLevel) + 1
const XPPerLevel = 100

// StageThresholds: facts mastered needed for stage i+1
var StageThresholds = []int64{0, 101, 301, 601, 1001}

// ReviewIntervals: days until the next review, indexed by confidence box
var ReviewIntervals = []int{1, 2, 4, 8, 16, 32}

const (
	MaxConfidence = 5
	MaxHappiness  = 100

	DailyLoginXP = 5
	FeedXP       = 5
	FeedCheer    = 15

	ReviewCorrectXP     = 10
	ReviewWrongXP       = 2
	ReviewCorrectCoins  = 2
	ReviewCorrectCheer  = 5
	ReviewWrongCheer    = 1
	MasteredConfidence  = 3
	QuizXPPerAnswer     = 10
	QuizPerfectXP       = 25
	QuizCoinsPerAnswer  = 5
	QuizPerfectCoins    = 10
	QuizMaxCheer        = 20
	QuizCheerPerAnswer  = 3
	MinigameDefaultXP   = 50
	MinigameMinXP       = 10
	MinigameMaxXP       = 100
	MinigameCoinDivisor = 5
	MinigameCheer       = 10
)

// Reward sources, also stored on team contributions.
const (
	SourceReview     = "review"
	SourceQuiz       = "quiz"
	SourceMinigame   = "minigame"
	SourceDailyLogin = "daily_login"
	SourceFeed       = "feed"
)

type StreakPolicy string

const (
	// StreakLegacy bumps the streak on every quiz submission.
	StreakLegacy StreakPolicy = "legacy"
	// StreakDaily bumps it at most once per calendar day, like daily login.
	StreakDaily StreakPolicy = "daily"
)

const dateLayout = "2006-01-02"

// Progress is the slice of User state the engine mutates.
type Progress struct {
	XP             int64
	Level          int
	Coins          int64
	FactsMastered  int64
	CurrentStreak  int
	LongestStreak  int
	LastActiveDate string
}

// Reward is what one learning action earns.
type Reward struct {
	Source        string
	XP            int64
	Coins         int64
	FactsMastered int64
	Cheer         int
	Perfect       bool
	// Interaction marks actions that count as playing with the creature,
	// whatever the score.
	Interaction bool
}

type CardState struct {
	Confidence     int
	NextReviewAt   time.Time
	LastReviewedAt *time.Time
	ReviewCount    int
	CorrectCount   int
}

type CreatureState struct {
	Stage             int
	Happiness         int
	Health            models.CreatureHealth
	DecayTier         int
	LastFedAt         *time.Time
	LastInteractionAt time.Time
}

func LevelForXP(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	return int(xp/XPPerLevel) + 1
}

// XPToNextLevel returns how much XP is missing before the next level.
func XPToNextLevel(xp int64) int64 {
	return int64(LevelForXP(xp))*XPPerLevel - xp
}

func StageForFactsMastered(total int64) int {
	for i := len(StageThresholds) - 1; i >= 0; i-- {
		if total >= StageThresholds[i] {
			return i + 1
		}
	}
	return 1
}

// EvolveStage never lowers the stage.
func EvolveStage(current int, total int64) (int, bool) {
	next := StageForFactsMastered(total)
	if next > current {
		return next, true
	}
	return current, false
}

// Apply adds a reward and recomputes the level. Returns true on level-up.
func (p *Progress) Apply(r Reward) bool {
	before := p.Level
	p.XP += r.XP
	if p.XP < 0 {
		p.XP = 0
	}
	p.Coins += r.Coins
	if p.Coins < 0 {
		p.Coins = 0
	}
	p.FactsMastered += r.FactsMastered
	p.Level = LevelForXP(p.XP)
	return p.Level > before
}

func (p *Progress) bumpStreak(next int, today string) {
	p.CurrentStreak = next
	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	p.LastActiveDate = today
}

// DayString formats t as a calendar date in t's location.
func DayString(t time.Time) string {
	return t.Format(dateLayout)
}

func yesterday(today time.Time) string {
	return DayString(today.AddDate(0, 0, -1))
}

// ApplyDailyLogin is idempotent per calendar day. The bool reports whether
// anything changed.
func ApplyDailyLogin(p Progress, today time.Time) (Progress, bool) {
	day := DayString(today)
	if p.LastActiveDate == day {
		return p, false
	}
	next := 1
	if p.LastActiveDate == yesterday(today) {
		next = p.CurrentStreak + 1
	}
	p.bumpStreak(next, day)
	p.Apply(Reward{Source: SourceDailyLogin, XP: DailyLoginXP})
	return p, true
}

// ApplyQuizStreak updates the streak after a quiz according to policy.
func ApplyQuizStreak(p Progress, today time.Time, policy StreakPolicy) Progress {
	day := DayString(today)
	if policy == StreakDaily {
		switch p.LastActiveDate {
		case day:
			return p
		case yesterday(today):
			p.bumpStreak(p.CurrentStreak+1, day)
		default:
			p.bumpStreak(1, day)
		}
		return p
	}
	p.bumpStreak(p.CurrentStreak+1, day)
	return p
}

// ReviewFlashcard moves the card one Leitner box and returns what the review earns.
func ReviewFlashcard(card CardState, correct bool, now time.Time) (CardState, Reward) {
	r := Reward{Source: SourceReview, Interaction: true}
	if correct {
		card.Confidence = clamp(card.Confidence+1, 0, MaxConfidence)
		card.CorrectCount++
		r.XP = ReviewCorrectXP
		r.Coins = ReviewCorrectCoins
		r.Cheer = ReviewCorrectCheer
		if card.Confidence >= MasteredConfidence {
			r.FactsMastered = 1
		}
	} else {
		card.Confidence = clamp(card.Confidence-1, 0, MaxConfidence)
		r.XP = ReviewWrongXP
		r.Cheer = ReviewWrongCheer
	}
	card.ReviewCount++
	card.NextReviewAt = now.AddDate(0, 0, reviewInterval(card.Confidence))
	reviewed := now
	card.LastReviewedAt = &reviewed
	return card, r
}

func reviewInterval(confidence int) int {
	if confidence < 0 || confidence >= len(ReviewIntervals) {
		return 1
	}
	return ReviewIntervals[confidence]
}

// QuizReward assumes 0 <= score <= total; callers validate.
func QuizReward(score, total int) Reward {
	perfect := score == total
	r := Reward{
		Source:        SourceQuiz,
		XP:            int64(score * QuizXPPerAnswer),
		Coins:         int64(score * QuizCoinsPerAnswer),
		FactsMastered: int64(score),
		Cheer:         min(QuizMaxCheer, score*QuizCheerPerAnswer),
		Perfect:       perfect,
		Interaction:   true,
	}
	if perfect {
		r.XP += QuizPerfectXP
		r.Coins += QuizPerfectCoins
	}
	return r
}

// MinigameReward uses MinigameDefaultXP when the client sent no score.
func MinigameReward(raw *int) Reward {
	score := MinigameDefaultXP
	if raw != nil {
		score = *raw
	}
	xp := clamp(score, MinigameMinXP, MinigameMaxXP)
	return Reward{
		Source:      SourceMinigame,
		XP:          int64(xp),
		Coins:       int64(xp / MinigameCoinDivisor),
		Cheer:       MinigameCheer,
		Interaction: true,
	}
}

type decayTier struct {
	hours   float64
	penalty int
	health  models.CreatureHealth
}

// decayTiers ordered from mildest; index+1 is the tier number
var decayTiers = []decayTier{
	{hours: 24, penalty: 10, health: models.HealthNeutral},
	{hours: 48, penalty: 30, health: models.HealthSad},
	{hours: 72, penalty: 50, health: models.HealthNeglected},
}

// DecayCreature applies the idle penalty for the tier reached since the last
// interaction. Each tier is charged once per idle period.
func DecayCreature(c CreatureState, now time.Time) (CreatureState, bool) {
	idle := now.Sub(c.LastInteractionAt).Hours()
	tier := 0
	for i, t := range decayTiers {
		if idle > t.hours {
			tier = i + 1
		}
	}
	if tier == 0 || tier <= c.DecayTier {
		return c, false
	}
	t := decayTiers[tier-1]
	c.Happiness = clamp(c.Happiness-t.penalty, 0, MaxHappiness)
	c.Health = t.health
	c.DecayTier = tier
	return c, true
}

// Cheer raises happiness after a learning action and marks the creature as
// just interacted with.
func (c *CreatureState) Cheer(delta int, now time.Time) {
	c.Happiness = clamp(c.Happiness+delta, 0, MaxHappiness)
	c.Health = models.HealthHappy
	c.touch(now)
}

// Feed raises happiness and derives health from the new value.
func (c *CreatureState) Feed(now time.Time) {
	c.Happiness = clamp(c.Happiness+FeedCheer, 0, MaxHappiness)
	c.Health = HealthForHappiness(c.Happiness)
	fed := now
	c.LastFedAt = &fed
	c.touch(now)
}

func (c *CreatureState) touch(now time.Time) {
	c.LastInteractionAt = now
	c.DecayTier = 0
}

// Evolve applies EvolveStage to the creature.
func (c *CreatureState) Evolve(totalFacts int64) bool {
	var evolved bool
	c.Stage, evolved = EvolveStage(c.Stage, totalFacts)
	return evolved
}

func HealthForHappiness(h int) models.CreatureHealth {
	switch {
	case h >= 70:
		return models.HealthHappy
	case h >= 40:
		return models.HealthNeutral
	default:
		return models.HealthSad
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
