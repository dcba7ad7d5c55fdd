package services

import (
	"context"
	"time"

	"creature-training-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence boundary used by the services. Inside Tx the
// acting rows are locked FOR UPDATE where the database supports it.
type Store interface {
	Tx(ctx context.Context, fn func(Store) error) error

	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User) error

	GetCreature(ctx context.Context, userID string) (*models.Creature, error)
	GetTeamCreature(ctx context.Context, teamID string) (*models.Creature, error)
	CreateCreature(ctx context.Context, c *models.Creature) error
	UpdateCreature(ctx context.Context, c *models.Creature) error

	GetFlashcardsForUser(ctx context.Context, userID string) ([]models.Flashcard, error)
	GetDueFlashcards(ctx context.Context, userID string, now time.Time) ([]models.Flashcard, error)
	GetFlashcard(ctx context.Context, userID, id string) (*models.Flashcard, error)
	CreateFlashcards(ctx context.Context, cards []models.Flashcard) error
	UpdateFlashcard(ctx context.Context, f *models.Flashcard) error

	ListFacts(ctx context.Context, category string, limit int) ([]models.Fact, error)
	CountFacts(ctx context.Context) (int64, error)
	GetFactAt(ctx context.Context, offset int) (*models.Fact, error)
	ListQuizQuestions(ctx context.Context, n int) ([]models.QuizQuestion, error)

	CreateQuizSession(ctx context.Context, s *models.QuizSession) error
	FindQuizSessionBySubmission(ctx context.Context, userID, submissionID string) (*models.QuizSession, error)
	QuizTotals(ctx context.Context, userID string) (QuizTotals, error)

	TopUsers(ctx context.Context, limit int) ([]models.User, error)
	SearchUsers(ctx context.Context, query, excludeUserID string, limit int) ([]models.User, error)

	TeamStore
	AchievementStore
	ShopStore
	OfferStore
}

// QuizTotals aggregates a user's quiz history.
type QuizTotals struct {
	Sessions       int64
	Correct        int64
	TotalQuestions int64
}

type GormStore struct {
	db   *gorm.DB
	inTx bool
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB exposes the underlying handle for callers outside the store (importer, health check).
func (s *GormStore) DB() *gorm.DB { return s.db }

func (s *GormStore) Tx(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, inTx: true})
	})
}

func (s *GormStore) q(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// locked adds FOR UPDATE inside a transaction on Postgres. SQLite serializes
// writers on its own and rejects the clause.
func (s *GormStore) locked(ctx context.Context) *gorm.DB {
	db := s.q(ctx)
	if s.inTx && s.db.Dialector.Name() == "postgres" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func (s *GormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.locked(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, wrapNotFound(err, "user_not_found", "User not found")
	}
	return &u, nil
}

func (s *GormStore) GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var u models.User
	if err := s.q(ctx).Where("external_user_id = ?", externalID).First(&u).Error; err != nil {
		return nil, wrapNotFound(err, "user_not_found", "User not found")
	}
	return &u, nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.q(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, wrapNotFound(err, "user_not_found", "User not found")
	}
	return &u, nil
}

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	return s.q(ctx).Create(u).Error
}

func (s *GormStore) UpdateUser(ctx context.Context, u *models.User) error {
	return s.q(ctx).Save(u).Error
}

func (s *GormStore) GetCreature(ctx context.Context, userID string) (*models.Creature, error) {
	var c models.Creature
	if err := s.locked(ctx).Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, wrapNotFound(err, "creature_not_found", "Creature not found")
	}
	return &c, nil
}

func (s *GormStore) GetTeamCreature(ctx context.Context, teamID string) (*models.Creature, error) {
	var c models.Creature
	if err := s.locked(ctx).Where("team_id = ?", teamID).First(&c).Error; err != nil {
		return nil, wrapNotFound(err, "creature_not_found", "Team creature not found")
	}
	return &c, nil
}

func (s *GormStore) CreateCreature(ctx context.Context, c *models.Creature) error {
	return s.q(ctx).Create(c).Error
}

func (s *GormStore) UpdateCreature(ctx context.Context, c *models.Creature) error {
	return s.q(ctx).Save(c).Error
}

func (s *GormStore) GetFlashcardsForUser(ctx context.Context, userID string) ([]models.Flashcard, error) {
	var cards []models.Flashcard
	err := s.q(ctx).Preload("Fact").
		Where("user_id = ?", userID).
		Order("next_review_at ASC, id ASC").
		Find(&cards).Error
	return cards, err
}

func (s *GormStore) GetDueFlashcards(ctx context.Context, userID string, now time.Time) ([]models.Flashcard, error) {
	var cards []models.Flashcard
	err := s.q(ctx).Preload("Fact").
		Where("user_id = ? AND next_review_at <= ?", userID, now).
		Order("next_review_at ASC, id ASC").
		Find(&cards).Error
	return cards, err
}

func (s *GormStore) GetFlashcard(ctx context.Context, userID, id string) (*models.Flashcard, error) {
	var f models.Flashcard
	if err := s.locked(ctx).Where("id = ? AND user_id = ?", id, userID).First(&f).Error; err != nil {
		return nil, wrapNotFound(err, "flashcard_not_found", "Flashcard not found")
	}
	return &f, nil
}

// CreateFlashcards skips cards the user already has.
func (s *GormStore) CreateFlashcards(ctx context.Context, cards []models.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}
	return s.q(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&cards).Error
}

func (s *GormStore) UpdateFlashcard(ctx context.Context, f *models.Flashcard) error {
	return s.q(ctx).Omit("Fact").Save(f).Error
}

func (s *GormStore) ListFacts(ctx context.Context, category string, limit int) ([]models.Fact, error) {
	var facts []models.Fact
	db := s.q(ctx).Order("created_at ASC, id ASC")
	if category != "" {
		db = db.Where("category = ?", category)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	err := db.Find(&facts).Error
	return facts, err
}

func (s *GormStore) CountFacts(ctx context.Context) (int64, error) {
	var n int64
	err := s.q(ctx).Model(&models.Fact{}).Count(&n).Error
	return n, err
}

// GetFactAt returns the fact at a stable position in creation order.
func (s *GormStore) GetFactAt(ctx context.Context, offset int) (*models.Fact, error) {
	var f models.Fact
	err := s.q(ctx).Order("created_at ASC, id ASC").Offset(offset).Limit(1).Take(&f).Error
	if err != nil {
		return nil, wrapNotFound(err, "fact_not_found", "No facts available")
	}
	return &f, nil
}

func (s *GormStore) ListQuizQuestions(ctx context.Context, n int) ([]models.QuizQuestion, error) {
	var qs []models.QuizQuestion
	err := s.q(ctx).Order("RANDOM()").Limit(n).Find(&qs).Error
	return qs, err
}

func (s *GormStore) CreateQuizSession(ctx context.Context, qs *models.QuizSession) error {
	return s.q(ctx).Create(qs).Error
}

func (s *GormStore) FindQuizSessionBySubmission(ctx context.Context, userID, submissionID string) (*models.QuizSession, error) {
	var qs models.QuizSession
	err := s.q(ctx).Where("user_id = ? AND submission_id = ?", userID, submissionID).First(&qs).Error
	if err != nil {
		return nil, wrapNotFound(err, "quiz_session_not_found", "Quiz session not found")
	}
	return &qs, nil
}

func (s *GormStore) QuizTotals(ctx context.Context, userID string) (QuizTotals, error) {
	var t QuizTotals
	err := s.q(ctx).Model(&models.QuizSession{}).
		Select("COUNT(*) AS sessions, CAST(COALESCE(SUM(score), 0) AS BIGINT) AS correct, CAST(COALESCE(SUM(total_questions), 0) AS BIGINT) AS total_questions").
		Where("user_id = ?", userID).
		Scan(&t).Error
	return t, err
}

func (s *GormStore) TopUsers(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	err := s.q(ctx).
		Where("show_on_leaderboard = ?", true).
		Order("xp DESC, created_at ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
