package services

import (
	"context"

	"creature-training-system/models"

	"gorm.io/gorm"
)

var starterFacts = []models.Fact{
	{Category: models.CategoryProductFeatures, Title: "Product Warranty Coverage", Content: "All electronics come with a standard 1-year manufacturer warranty covering defects in materials and workmanship.", Difficulty: 1},
	{Category: models.CategoryProductFeatures, Title: "Water Resistance Ratings", Content: "IP67 means dust-tight and can withstand immersion up to 1 meter. IP68 offers greater depth protection.", Difficulty: 2},
	{Category: models.CategoryProductFeatures, Title: "Storage Types", Content: "SSD storage is 5-10x faster than HDD, more durable, and uses less power, but costs more per GB.", Difficulty: 2},
	{Category: models.CategoryProductFeatures, Title: "Display Technology", Content: "OLED displays offer perfect blacks and vibrant colors, while LED/LCD provides better brightness for outdoor use.", Difficulty: 2},
	{Category: models.CategorySalesTechniques, Title: "Active Listening", Content: "Repeat back customer needs to confirm understanding before recommending a product.", Difficulty: 1},
	{Category: models.CategorySalesTechniques, Title: "Feature-Benefit Selling", Content: "Always connect features to benefits: 16GB RAM means apps run smoothly without slowing down.", Difficulty: 2},
	{Category: models.CategorySalesTechniques, Title: "Handling Price Objections", Content: "Acknowledge the concern, then redirect to value.", Difficulty: 2},
	{Category: models.CategorySalesTechniques, Title: "Assumptive Close", Content: "Guide the customer toward purchase by assuming the sale: 'Would you like me to check if we have this in stock?'", Difficulty: 3},
	{Category: models.CategoryPolicies, Title: "Standard Return Window", Content: "Most products can be returned within 30 days of purchase with original receipt and packaging for a full refund.", Difficulty: 1},
	{Category: models.CategoryPolicies, Title: "Layaway Terms", Content: "Layaway requires 20% down payment with remaining balance due within 8 weeks.", Difficulty: 3},
	{Category: models.CategoryPolicies, Title: "Rain Check Policy", Content: "If an advertised item is out of stock, we issue rain checks valid for 30 days at the sale price.", Difficulty: 1},
	{Category: models.CategoryCustomerService, Title: "Greeting Customers", Content: "Greet every customer within 10 seconds of entering your area with eye contact, a smile, and a welcoming phrase.", Difficulty: 1},
	{Category: models.CategoryCustomerService, Title: "LAST Method", Content: "Listen, Apologize, Solve, Thank: the four steps to handle any customer complaint.", Difficulty: 2},
	{Category: models.CategoryCustomerService, Title: "Positive Language", Content: "Replace 'I can't' with 'What I can do is...' to focus on solutions rather than limitations.", Difficulty: 1},
}

var starterQuestions = []models.QuizQuestion{
	{Category: models.CategoryPolicies, Question: "What is the standard return window for most products?", Options: []string{"14 days", "30 days", "60 days", "90 days"}, CorrectAnswer: 1, Explanation: "Most products can be returned within 30 days with receipt and packaging."},
	{Category: models.CategoryProductFeatures, Question: "What does an IP67 rating mean?", Options: []string{"Splash resistant only", "Can be submerged up to 1 meter", "Completely waterproof", "Rain resistant"}, CorrectAnswer: 1, Explanation: "IP67 is dust-tight and survives immersion up to 1 meter."},
	{Category: models.CategoryCustomerService, Question: "What is the LAST method?", Options: []string{"Lead, Assist, Sell, Transfer", "Listen, Apologize, Solve, Thank", "Look, Ask, Suggest, Tell", "Learn, Apply, Share, Train"}, CorrectAnswer: 1, Explanation: "Listen, Apologize, Solve, Thank."},
	{Category: models.CategorySalesTechniques, Question: "When handling a price objection, you should first:", Options: []string{"Offer a discount immediately", "Explain the price is non-negotiable", "Acknowledge the concern and redirect to value", "Suggest a cheaper alternative"}, CorrectAnswer: 2, Explanation: "Acknowledge first, then talk about value."},
	{Category: models.CategoryCustomerService, Question: "How quickly should you greet a customer entering your area?", Options: []string{"Within 30 seconds", "Within 10 seconds", "When they ask for help", "Within 1 minute"}, CorrectAnswer: 1, Explanation: "Within 10 seconds, with eye contact and a smile."},
	{Category: models.CategoryPolicies, Question: "What down payment does layaway require?", Options: []string{"10%", "15%", "20%", "25%"}, CorrectAnswer: 2, Explanation: "20% down, balance within 8 weeks."},
	{Category: models.CategoryProductFeatures, Question: "Which storage type is faster and more durable?", Options: []string{"HDD", "SSD", "USB Flash Drive", "SD Card"}, CorrectAnswer: 1, Explanation: "SSDs are 5-10x faster than HDDs."},
}

var starterAccessories = []models.Accessory{
	{Code: "party-hat", Name: "Party Hat", Description: "Every day is a celebration.", Category: "hat", Price: 30, Icon: "party-popper", Rarity: models.RarityCommon},
	{Code: "top-hat", Name: "Top Hat", Description: "Very distinguished.", Category: "hat", Price: 120, Icon: "crown", Rarity: models.RarityRare},
	{Code: "reading-glasses", Name: "Reading Glasses", Description: "For serious studying.", Category: "glasses", Price: 40, Icon: "glasses", Rarity: models.RarityCommon},
	{Code: "star-shades", Name: "Star Shades", Description: "Too cool for flashcards.", Category: "glasses", Price: 200, Icon: "sun", Rarity: models.RarityEpic},
	{Code: "gold-chain", Name: "Gold Chain", Description: "Top seller energy.", Category: "necklace", Price: 350, Icon: "gem", Rarity: models.RarityLegendary},
	{Code: "store-floor", Name: "Store Floor", Description: "Home turf.", Category: "background", Price: 60, Icon: "store", Rarity: models.RarityCommon},
}

// SeedContent fills an empty database with starter facts, questions and shop
// items. It does nothing once any fact exists.
func SeedContent(ctx context.Context, db *gorm.DB) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&models.Fact{}).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, f := range starterFacts {
			f := f
			if err := tx.Create(&f).Error; err != nil {
				return err
			}
		}
		for _, q := range starterQuestions {
			q := q
			if err := tx.Create(&q).Error; err != nil {
				return err
			}
		}
		for _, a := range starterAccessories {
			a := a
			if err := tx.Where("code = ?", a.Code).FirstOrCreate(&a).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return err == nil, err
}
