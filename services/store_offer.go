package services

import (
	"context"

	"creature-training-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OfferStore interface {
	CreateGift(ctx context.Context, g *models.AccessoryGift) error
	GetGift(ctx context.Context, id string) (*models.AccessoryGift, error)
	UpdateGift(ctx context.Context, g *models.AccessoryGift) error
	// ListGifts returns pending gifts addressed to the user when incoming,
	// otherwise every gift the user sent.
	ListGifts(ctx context.Context, userID string, incoming bool) ([]models.AccessoryGift, error)

	CreateTrade(ctx context.Context, t *models.AccessoryTrade) error
	GetTrade(ctx context.Context, id string) (*models.AccessoryTrade, error)
	UpdateTrade(ctx context.Context, t *models.AccessoryTrade) error
	ListTrades(ctx context.Context, userID string, incoming bool) ([]models.AccessoryTrade, error)

	// HasPendingOffer reports whether a pending gift or trade already names the item.
	HasPendingOffer(ctx context.Context, itemID string) (bool, error)
}

func (s *GormStore) CreateGift(ctx context.Context, g *models.AccessoryGift) error {
	return s.q(ctx).Omit(clause.Associations).Create(g).Error
}

func (s *GormStore) GetGift(ctx context.Context, id string) (*models.AccessoryGift, error) {
	var g models.AccessoryGift
	if err := s.locked(ctx).Where("id = ?", id).First(&g).Error; err != nil {
		return nil, wrapNotFound(err, "gift_not_found", "Gift not found")
	}
	return &g, nil
}

func (s *GormStore) UpdateGift(ctx context.Context, g *models.AccessoryGift) error {
	return s.q(ctx).Omit(clause.Associations).Save(g).Error
}

func (s *GormStore) ListGifts(ctx context.Context, userID string, incoming bool) ([]models.AccessoryGift, error) {
	var list []models.AccessoryGift
	db := s.offerQuery(ctx, "Item").Preload("Sender").Preload("Recipient")
	if incoming {
		db = db.Where("recipient_user_id = ? AND status = ?", userID, models.OfferPending)
	} else {
		db = db.Where("sender_user_id = ?", userID)
	}
	err := db.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (s *GormStore) CreateTrade(ctx context.Context, t *models.AccessoryTrade) error {
	return s.q(ctx).Omit(clause.Associations).Create(t).Error
}

func (s *GormStore) GetTrade(ctx context.Context, id string) (*models.AccessoryTrade, error) {
	var t models.AccessoryTrade
	if err := s.locked(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, wrapNotFound(err, "trade_not_found", "Trade not found")
	}
	return &t, nil
}

func (s *GormStore) UpdateTrade(ctx context.Context, t *models.AccessoryTrade) error {
	return s.q(ctx).Omit(clause.Associations).Save(t).Error
}

func (s *GormStore) ListTrades(ctx context.Context, userID string, incoming bool) ([]models.AccessoryTrade, error) {
	var list []models.AccessoryTrade
	db := s.offerQuery(ctx, "OfferedItem", "WantedItem").Preload("Proposer").Preload("Recipient")
	if incoming {
		db = db.Where("recipient_user_id = ? AND status = ?", userID, models.OfferPending)
	} else {
		db = db.Where("proposer_user_id = ?", userID)
	}
	err := db.Order("created_at DESC").Find(&list).Error
	return list, err
}

// offerQuery preloads each named item together with its catalogue entry.
func (s *GormStore) offerQuery(ctx context.Context, items ...string) *gorm.DB {
	db := s.q(ctx)
	for _, name := range items {
		db = db.Preload(name).Preload(name + ".Accessory")
	}
	return db
}

func (s *GormStore) HasPendingOffer(ctx context.Context, itemID string) (bool, error) {
	var gifts, trades int64
	err := s.q(ctx).Model(&models.AccessoryGift{}).
		Where("item_id = ? AND status = ?", itemID, models.OfferPending).
		Count(&gifts).Error
	if err != nil {
		return false, err
	}
	err = s.q(ctx).Model(&models.AccessoryTrade{}).
		Where("(offered_item_id = ? OR wanted_item_id = ?) AND status = ?", itemID, itemID, models.OfferPending).
		Count(&trades).Error
	return gifts+trades > 0, err
}
