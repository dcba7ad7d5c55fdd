package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error             { ensureID(&u.ID); return nil }
func (c *Creature) BeforeCreate(*gorm.DB) error         { ensureID(&c.ID); return nil }
func (f *Fact) BeforeCreate(*gorm.DB) error             { ensureID(&f.ID); return nil }
func (q *QuizQuestion) BeforeCreate(*gorm.DB) error     { ensureID(&q.ID); return nil }
func (f *Flashcard) BeforeCreate(*gorm.DB) error        { ensureID(&f.ID); return nil }
func (s *QuizSession) BeforeCreate(*gorm.DB) error      { ensureID(&s.ID); return nil }
func (a *Achievement) BeforeCreate(*gorm.DB) error      { ensureID(&a.ID); return nil }
func (a *UserAchievement) BeforeCreate(*gorm.DB) error  { ensureID(&a.ID); return nil }
func (a *Accessory) BeforeCreate(*gorm.DB) error        { ensureID(&a.ID); return nil }
func (a *UserAccessory) BeforeCreate(*gorm.DB) error    { ensureID(&a.ID); return nil }
func (t *Team) BeforeCreate(*gorm.DB) error             { ensureID(&t.ID); return nil }
func (m *TeamMember) BeforeCreate(*gorm.DB) error       { ensureID(&m.ID); return nil }
func (c *TeamContribution) BeforeCreate(*gorm.DB) error { ensureID(&c.ID); return nil }
func (g *AccessoryGift) BeforeCreate(*gorm.DB) error    { ensureID(&g.ID); return nil }
func (t *AccessoryTrade) BeforeCreate(*gorm.DB) error   { ensureID(&t.ID); return nil }

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Creature{},
		&Fact{},
		&QuizQuestion{},
		&Flashcard{},
		&QuizSession{},
		&Achievement{},
		&UserAchievement{},
		&Accessory{},
		&UserAccessory{},
		&Team{},
		&TeamMember{},
		&TeamContribution{},
		&AccessoryGift{},
		&AccessoryTrade{},
	}
}
