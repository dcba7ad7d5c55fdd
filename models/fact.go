package models

import "gorm.io/datatypes"

// Fact categories used by the seed content.
const (
	CategoryProductFeatures = "product_features"
	CategorySalesTechniques = "sales_techniques"
	CategoryPolicies        = "policies"
	CategoryCustomerService = "customer_service"
)

// Fact is a piece of canonical learning content.
type Fact struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	Category   string `gorm:"index;not null" json:"category"`
	Title      string `gorm:"not null" json:"title"`
	Content    string `gorm:"type:text;not null" json:"content"`
	Difficulty int    `gorm:"not null" json:"difficulty"` // 1-3

	Timestamps
}

type QuizQuestion struct {
	ID            string                      `gorm:"primaryKey;size:36" json:"id"`
	FactID        *string                     `gorm:"size:36;index" json:"fact_id,omitempty"`
	Question      string                      `gorm:"type:text;not null" json:"question"`
	Options       datatypes.JSONSlice[string] `gorm:"not null" json:"options"`
	CorrectAnswer int                         `gorm:"not null" json:"correct_answer"`
	Explanation   string                      `gorm:"type:text" json:"explanation"`
	Category      string                      `gorm:"index;not null" json:"category"`

	Timestamps
}
