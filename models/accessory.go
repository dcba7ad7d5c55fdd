package models

import "time"

type AccessoryRarity string

const (
	RarityCommon    AccessoryRarity = "common"
	RarityRare      AccessoryRarity = "rare"
	RarityEpic      AccessoryRarity = "epic"
	RarityLegendary AccessoryRarity = "legendary"
)

// Accessory is a shop item that can dress up a creature.
type Accessory struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	Code        string          `gorm:"uniqueIndex;not null" json:"code"` // slug of the name
	Name        string          `gorm:"not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Category    string          `gorm:"type:varchar(16);index;not null" json:"category"` // hat, glasses, necklace, background
	Price       int64           `gorm:"not null" json:"price"`
	Icon        string          `gorm:"type:varchar(32)" json:"icon"`
	IconURL     string          `gorm:"type:text" json:"icon_url,omitempty"` // R2 URL when uploaded
	Rarity      AccessoryRarity `gorm:"type:varchar(16);not null" json:"rarity"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type UserAccessory struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	UserID      string     `gorm:"size:36;not null;uniqueIndex:idx_user_accessory" json:"user_id"`
	AccessoryID string     `gorm:"size:36;not null;uniqueIndex:idx_user_accessory" json:"accessory_id"`
	Accessory   *Accessory `gorm:"foreignKey:AccessoryID" json:"accessory,omitempty"`
	Equipped    bool       `gorm:"not null" json:"equipped"`
	PurchasedAt time.Time  `gorm:"autoCreateTime" json:"purchased_at"`
}
