package models

import "time"

type OfferStatus string

const (
	OfferPending   OfferStatus = "pending"
	OfferAccepted  OfferStatus = "accepted"
	OfferDeclined  OfferStatus = "declined"
	OfferCancelled OfferStatus = "cancelled"
)

// AccessoryGift hands one owned accessory to another user once they accept.
type AccessoryGift struct {
	ID              string         `gorm:"primaryKey;size:36" json:"id"`
	SenderUserID    string         `gorm:"size:36;index;not null" json:"sender_user_id"`
	Sender          *User          `gorm:"foreignKey:SenderUserID" json:"sender,omitempty"`
	RecipientUserID string         `gorm:"size:36;index;not null" json:"recipient_user_id"`
	Recipient       *User          `gorm:"foreignKey:RecipientUserID" json:"recipient,omitempty"`
	ItemID          string         `gorm:"size:36;index;not null" json:"item_id"` // UserAccessory.ID
	Item            *UserAccessory `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Message         string         `gorm:"type:text" json:"message,omitempty"`
	Status          OfferStatus    `gorm:"type:varchar(16);index;not null" json:"status"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	ResolvedAt      *time.Time     `json:"resolved_at,omitempty"`
}

// AccessoryTrade swaps one accessory of each side once the recipient accepts.
type AccessoryTrade struct {
	ID              string         `gorm:"primaryKey;size:36" json:"id"`
	ProposerUserID  string         `gorm:"size:36;index;not null" json:"proposer_user_id"`
	Proposer        *User          `gorm:"foreignKey:ProposerUserID" json:"proposer,omitempty"`
	RecipientUserID string         `gorm:"size:36;index;not null" json:"recipient_user_id"`
	Recipient       *User          `gorm:"foreignKey:RecipientUserID" json:"recipient,omitempty"`
	OfferedItemID   string         `gorm:"size:36;index;not null" json:"offered_item_id"`
	OfferedItem     *UserAccessory `gorm:"foreignKey:OfferedItemID" json:"offered_item,omitempty"`
	WantedItemID    string         `gorm:"size:36;index;not null" json:"wanted_item_id"`
	WantedItem      *UserAccessory `gorm:"foreignKey:WantedItemID" json:"wanted_item,omitempty"`
	Status          OfferStatus    `gorm:"type:varchar(16);index;not null" json:"status"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	ResolvedAt      *time.Time     `json:"resolved_at,omitempty"`
}
