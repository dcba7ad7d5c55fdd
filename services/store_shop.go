package services

import (
	"context"

	"creature-training-system/models"

	"gorm.io/gorm/clause"
)

type ShopStore interface {
	CreateAccessory(ctx context.Context, a *models.Accessory) error
	ListAccessories(ctx context.Context) ([]models.Accessory, error)
	GetAccessory(ctx context.Context, id string) (*models.Accessory, error)
	ListUserAccessories(ctx context.Context, userID string, equippedOnly bool) ([]models.UserAccessory, error)
	GetUserAccessory(ctx context.Context, userID, id string) (*models.UserAccessory, error)
	OwnsAccessory(ctx context.Context, userID, accessoryID string) (bool, error)
	AddUserAccessory(ctx context.Context, ua *models.UserAccessory) error
	UpdateUserAccessory(ctx context.Context, ua *models.UserAccessory) error
	UnequipCategory(ctx context.Context, userID, category string) error
}

func (s *GormStore) CreateAccessory(ctx context.Context, a *models.Accessory) error {
	return s.q(ctx).Create(a).Error
}

func (s *GormStore) ListAccessories(ctx context.Context) ([]models.Accessory, error) {
	var list []models.Accessory
	err := s.q(ctx).Order("price ASC, name ASC").Find(&list).Error
	return list, err
}

func (s *GormStore) GetAccessory(ctx context.Context, id string) (*models.Accessory, error) {
	var a models.Accessory
	if err := s.q(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, wrapNotFound(err, "accessory_not_found", "Accessory not found")
	}
	return &a, nil
}

func (s *GormStore) ListUserAccessories(ctx context.Context, userID string, equippedOnly bool) ([]models.UserAccessory, error) {
	var list []models.UserAccessory
	db := s.q(ctx).Preload("Accessory").Where("user_id = ?", userID)
	if equippedOnly {
		db = db.Where("equipped = ?", true)
	}
	err := db.Order("purchased_at ASC").Find(&list).Error
	return list, err
}

func (s *GormStore) GetUserAccessory(ctx context.Context, userID, id string) (*models.UserAccessory, error) {
	var ua models.UserAccessory
	err := s.locked(ctx).Preload("Accessory").Where("id = ? AND user_id = ?", id, userID).First(&ua).Error
	if err != nil {
		return nil, wrapNotFound(err, "accessory_not_owned", "You do not own this accessory")
	}
	return &ua, nil
}

func (s *GormStore) OwnsAccessory(ctx context.Context, userID, accessoryID string) (bool, error) {
	var n int64
	err := s.q(ctx).Model(&models.UserAccessory{}).
		Where("user_id = ? AND accessory_id = ?", userID, accessoryID).
		Count(&n).Error
	return n > 0, err
}

func (s *GormStore) AddUserAccessory(ctx context.Context, ua *models.UserAccessory) error {
	return s.q(ctx).Omit(clause.Associations).Create(ua).Error
}

func (s *GormStore) UpdateUserAccessory(ctx context.Context, ua *models.UserAccessory) error {
	return s.q(ctx).Omit(clause.Associations).Save(ua).Error
}

// UnequipCategory clears every equipped accessory of one category for the user.
func (s *GormStore) UnequipCategory(ctx context.Context, userID, category string) error {
	sub := s.q(ctx).Model(&models.Accessory{}).Select("id").Where("category = ?", category)
	return s.q(ctx).Model(&models.UserAccessory{}).
		Where("user_id = ? AND equipped = ? AND accessory_id IN (?)", userID, true, sub).
		Update("equipped", false).Error
}
