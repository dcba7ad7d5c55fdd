package services

import (
	"context"
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"creature-training-system/logger"
	"creature-training-system/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// IconStore persists an uploaded icon and returns its public URL.
type IconStore interface {
	Save(ctx context.Context, key string, fileHeader *multipart.FileHeader) (string, error)
}

var accessoryCategories = map[string]bool{
	"hat":        true,
	"glasses":    true,
	"necklace":   true,
	"background": true,
}

type ShopService struct {
	store  Store
	locker UserLocker
	icons  IconStore
	log    *logger.Logger

	Now func() time.Time
}

func NewShopService(store Store, locker UserLocker, icons IconStore, log *logger.Logger) *ShopService {
	return &ShopService{
		store:  store,
		locker: locker,
		icons:  icons,
		log:    log.With("service", "ShopService"),
		Now:    time.Now,
	}
}

func (s *ShopService) withUser(ctx context.Context, userID string, fn func(tx Store) error) error {
	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()
	return s.store.Tx(ctx, fn)
}

// withUsers holds every listed user's lock, taken in id order, around one transaction.
func (s *ShopService) withUsers(ctx context.Context, fn func(tx Store) error, userIDs ...string) error {
	unlock, err := LockUsers(ctx, s.locker, userIDs...)
	if err != nil {
		return err
	}
	defer unlock()
	return s.store.Tx(ctx, fn)
}

func (s *ShopService) Catalogue(ctx context.Context) ([]models.Accessory, error) {
	return s.store.ListAccessories(ctx)
}

func (s *ShopService) Owned(ctx context.Context, userID string) ([]models.UserAccessory, error) {
	return s.store.ListUserAccessories(ctx, userID, false)
}

func (s *ShopService) Equipped(ctx context.Context, userID string) ([]models.UserAccessory, error) {
	return s.store.ListUserAccessories(ctx, userID, true)
}

type PurchaseResult struct {
	Item           *models.UserAccessory `json:"item"`
	CoinsSpent     int64                 `json:"coins_spent"`
	CoinsRemaining int64                 `json:"coins_remaining"`
}

// Purchase debits the price and grants the accessory in one transaction.
func (s *ShopService) Purchase(ctx context.Context, userID, accessoryID string) (*PurchaseResult, error) {
	if strings.TrimSpace(accessoryID) == "" {
		return nil, invalid("missing_accessory", "accessoryId is required")
	}
	var res PurchaseResult
	err := s.withUser(ctx, userID, func(tx Store) error {
		acc, err := tx.GetAccessory(ctx, accessoryID)
		if err != nil {
			return err
		}
		owned, err := tx.OwnsAccessory(ctx, userID, accessoryID)
		if err != nil {
			return err
		}
		if owned {
			return conflict("already_owned", "You already own this accessory")
		}
		u, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if u.Coins < acc.Price {
			return invalid("insufficient_coins", "Not enough coins")
		}
		u.Coins -= acc.Price
		if err := tx.UpdateUser(ctx, u); err != nil {
			return err
		}
		item := &models.UserAccessory{UserID: userID, AccessoryID: acc.ID}
		if err := tx.AddUserAccessory(ctx, item); err != nil {
			return err
		}
		item.Accessory = acc
		res = PurchaseResult{Item: item, CoinsSpent: acc.Price, CoinsRemaining: u.Coins}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("🛍️ [SHOP] purchase", "user_id", userID, "accessory_id", accessoryID, "price", res.CoinsSpent)
	return &res, nil
}

// Equip toggles an owned accessory. Only one accessory per category can be
// equipped; the creature's accessory list mirrors the equipped set.
func (s *ShopService) Equip(ctx context.Context, userID, userAccessoryID string, equipped bool) (*models.UserAccessory, error) {
	var item *models.UserAccessory
	err := s.withUser(ctx, userID, func(tx Store) error {
		var err error
		item, err = tx.GetUserAccessory(ctx, userID, userAccessoryID)
		if err != nil {
			return err
		}
		if equipped && item.Accessory != nil {
			if err := tx.UnequipCategory(ctx, userID, item.Accessory.Category); err != nil {
				return err
			}
		}
		item.Equipped = equipped
		if err := tx.UpdateUserAccessory(ctx, item); err != nil {
			return err
		}
		return syncWorn(ctx, tx, userID)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// syncWorn copies the user's equipped set onto their creature.
func syncWorn(ctx context.Context, tx Store, userID string) error {
	worn, err := tx.ListUserAccessories(ctx, userID, true)
	if err != nil {
		return err
	}
	c, err := tx.GetCreature(ctx, userID)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(worn))
	for _, w := range worn {
		ids = append(ids, w.AccessoryID)
	}
	c.Accessories = ids
	return tx.UpdateCreature(ctx, c)
}

type NewAccessory struct {
	Name        string
	Description string
	Category    string
	Price       int64
	Icon        string
	Rarity      models.AccessoryRarity
}

// CreateAccessory adds a shop item; icon, when given, is uploaded first.
func (s *ShopService) CreateAccessory(ctx context.Context, in NewAccessory, icon *multipart.FileHeader) (*models.Accessory, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	if in.Name == "" {
		return nil, invalid("invalid_accessory", "name is required")
	}
	if !accessoryCategories[in.Category] {
		return nil, invalid("invalid_accessory", "category must be hat, glasses, necklace or background")
	}
	if in.Price < 0 {
		return nil, invalid("invalid_accessory", "price must not be negative")
	}
	switch in.Rarity {
	case "":
		in.Rarity = models.RarityCommon
	case models.RarityCommon, models.RarityRare, models.RarityEpic, models.RarityLegendary:
	default:
		return nil, invalid("invalid_accessory", "unknown rarity")
	}

	acc := &models.Accessory{
		Code:        slug.Make(in.Name),
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Icon:        in.Icon,
		Rarity:      in.Rarity,
	}

	if icon != nil && s.icons != nil {
		key := "accessories/" + acc.Code + strings.ToLower(filepath.Ext(icon.Filename))
		url, err := s.icons.Save(ctx, key, icon)
		if err != nil {
			return nil, err
		}
		acc.IconURL = url
	}

	if err := s.store.CreateAccessory(ctx, acc); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict("duplicate_accessory", "An accessory with this name already exists")
		}
		return nil, err
	}
	s.log.Info("[SHOP] accessory created", "code", acc.Code, "icon_url", acc.IconURL)
	return acc, nil
}
