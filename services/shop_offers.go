package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"creature-training-system/models"
)

const maxGiftMessageLen = 200

type GiftRequest struct {
	RecipientID string
	ItemID      string
	Message     string
}

type TradeRequest struct {
	RecipientID   string
	OfferedItemID string
	WantedItemID  string
}

type GiftList struct {
	Incoming []models.AccessoryGift `json:"incoming"`
	Sent     []models.AccessoryGift `json:"sent"`
}

type TradeList struct {
	Incoming []models.AccessoryTrade `json:"incoming"`
	Sent     []models.AccessoryTrade `json:"sent"`
}

func checkCounterpart(fromID, toID string) error {
	if strings.TrimSpace(toID) == "" {
		return invalid("missing_recipient", "recipientId is required")
	}
	if fromID == toID {
		return invalid("self_offer", "You cannot send an offer to yourself")
	}
	return nil
}

// offerable loads an item the owner still holds and that no pending offer names.
func offerable(ctx context.Context, tx Store, ownerID, itemID string) (*models.UserAccessory, error) {
	item, err := tx.GetUserAccessory(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}
	busy, err := tx.HasPendingOffer(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, conflict("item_on_offer", "This accessory already has a pending gift or trade")
	}
	return item, nil
}

// transferItem hands item to newOwner unequipped and refreshes the previous
// owner's creature when the item was worn.
func transferItem(ctx context.Context, tx Store, item *models.UserAccessory, newOwner string) error {
	owned, err := tx.OwnsAccessory(ctx, newOwner, item.AccessoryID)
	if err != nil {
		return err
	}
	if owned {
		return conflict("already_owned", "The receiving user already owns this accessory")
	}
	prevOwner, worn := item.UserID, item.Equipped
	item.UserID = newOwner
	item.Equipped = false
	if err := tx.UpdateUserAccessory(ctx, item); err != nil {
		return err
	}
	if worn {
		return syncWorn(ctx, tx, prevOwner)
	}
	return nil
}

// resolveAs picks the closing status for an offer answered by userID, who is
// already known to take part: the recipient declines, the sender cancels.
func resolveAs(userID, recipientID string) models.OfferStatus {
	if userID == recipientID {
		return models.OfferDeclined
	}
	return models.OfferCancelled
}

// SendGift offers one of the sender's accessories to another user. Nothing
// moves until the recipient accepts.
func (s *ShopService) SendGift(ctx context.Context, senderID string, in GiftRequest) (*models.AccessoryGift, error) {
	in.RecipientID = strings.TrimSpace(in.RecipientID)
	in.Message = strings.TrimSpace(in.Message)
	if err := checkCounterpart(senderID, in.RecipientID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ItemID) == "" {
		return nil, invalid("missing_item", "itemId is required")
	}
	if utf8.RuneCountInString(in.Message) > maxGiftMessageLen {
		return nil, invalid("invalid_gift", "Message is too long")
	}

	var gift *models.AccessoryGift
	err := s.withUsers(ctx, func(tx Store) error {
		if _, err := tx.GetUser(ctx, in.RecipientID); err != nil {
			return err
		}
		item, err := offerable(ctx, tx, senderID, in.ItemID)
		if err != nil {
			return err
		}
		gift = &models.AccessoryGift{
			SenderUserID:    senderID,
			RecipientUserID: in.RecipientID,
			ItemID:          item.ID,
			Message:         in.Message,
			Status:          models.OfferPending,
		}
		return tx.CreateGift(ctx, gift)
	}, senderID, in.RecipientID)
	if err != nil {
		return nil, err
	}
	s.log.Info("🎁 [GIFT] sent", "gift_id", gift.ID, "from", senderID, "to", in.RecipientID)
	return gift, nil
}

// peekGift finds a gift the user takes part in. Others get NotFound.
func (s *ShopService) peekGift(ctx context.Context, userID, giftID string) (*models.AccessoryGift, error) {
	g, err := s.store.GetGift(ctx, giftID)
	if err != nil {
		return nil, err
	}
	if g.SenderUserID != userID && g.RecipientUserID != userID {
		return nil, notFound("gift_not_found", "Gift not found")
	}
	return g, nil
}

// AcceptGift moves the item to the recipient.
func (s *ShopService) AcceptGift(ctx context.Context, userID, giftID string) (*models.AccessoryGift, error) {
	peek, err := s.peekGift(ctx, userID, giftID)
	if err != nil {
		return nil, err
	}
	if peek.RecipientUserID != userID {
		return nil, notFound("gift_not_found", "Gift not found")
	}

	now := s.Now()
	var gift *models.AccessoryGift
	err = s.withUsers(ctx, func(tx Store) error {
		var err error
		gift, err = tx.GetGift(ctx, giftID)
		if err != nil {
			return err
		}
		if gift.Status != models.OfferPending {
			return conflict("offer_closed", "This gift was already answered")
		}
		item, err := tx.GetUserAccessory(ctx, gift.SenderUserID, gift.ItemID)
		if errors.Is(err, ErrNotFound) {
			return conflict("item_gone", "The sender no longer owns this accessory")
		}
		if err != nil {
			return err
		}
		if err := transferItem(ctx, tx, item, userID); err != nil {
			return err
		}
		gift.Status = models.OfferAccepted
		gift.ResolvedAt = &now
		return tx.UpdateGift(ctx, gift)
	}, peek.SenderUserID, userID)
	if err != nil {
		return nil, err
	}
	s.log.Info("🎁 [GIFT] accepted", "gift_id", gift.ID, "from", gift.SenderUserID, "to", userID)
	return gift, nil
}

// DeclineGift closes a pending gift: declined by the recipient, cancelled by
// the sender.
func (s *ShopService) DeclineGift(ctx context.Context, userID, giftID string) (*models.AccessoryGift, error) {
	peek, err := s.peekGift(ctx, userID, giftID)
	if err != nil {
		return nil, err
	}
	status := resolveAs(userID, peek.RecipientUserID)

	now := s.Now()
	var gift *models.AccessoryGift
	err = s.withUsers(ctx, func(tx Store) error {
		var err error
		gift, err = tx.GetGift(ctx, giftID)
		if err != nil {
			return err
		}
		if gift.Status != models.OfferPending {
			return conflict("offer_closed", "This gift was already answered")
		}
		gift.Status = status
		gift.ResolvedAt = &now
		return tx.UpdateGift(ctx, gift)
	}, peek.SenderUserID, peek.RecipientUserID)
	if err != nil {
		return nil, err
	}
	return gift, nil
}

func (s *ShopService) Gifts(ctx context.Context, userID string) (*GiftList, error) {
	incoming, err := s.store.ListGifts(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	sent, err := s.store.ListGifts(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	return &GiftList{Incoming: incoming, Sent: sent}, nil
}

// ProposeTrade offers one of the proposer's accessories for one of the
// recipient's.
func (s *ShopService) ProposeTrade(ctx context.Context, proposerID string, in TradeRequest) (*models.AccessoryTrade, error) {
	in.RecipientID = strings.TrimSpace(in.RecipientID)
	if err := checkCounterpart(proposerID, in.RecipientID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.OfferedItemID) == "" || strings.TrimSpace(in.WantedItemID) == "" {
		return nil, invalid("missing_item", "offeredItemId and wantedItemId are required")
	}

	var trade *models.AccessoryTrade
	err := s.withUsers(ctx, func(tx Store) error {
		if _, err := tx.GetUser(ctx, in.RecipientID); err != nil {
			return err
		}
		offered, err := offerable(ctx, tx, proposerID, in.OfferedItemID)
		if err != nil {
			return err
		}
		wanted, err := offerable(ctx, tx, in.RecipientID, in.WantedItemID)
		if errors.Is(err, ErrNotFound) {
			return notFound("wanted_not_owned", "The other user does not own that accessory")
		}
		if err != nil {
			return err
		}
		if offered.AccessoryID == wanted.AccessoryID {
			return invalid("same_accessory", "Both sides offer the same accessory")
		}
		trade = &models.AccessoryTrade{
			ProposerUserID:  proposerID,
			RecipientUserID: in.RecipientID,
			OfferedItemID:   offered.ID,
			WantedItemID:    wanted.ID,
			Status:          models.OfferPending,
		}
		return tx.CreateTrade(ctx, trade)
	}, proposerID, in.RecipientID)
	if err != nil {
		return nil, err
	}
	s.log.Info("🔁 [TRADE] proposed", "trade_id", trade.ID, "from", proposerID, "to", in.RecipientID)
	return trade, nil
}

func (s *ShopService) peekTrade(ctx context.Context, userID, tradeID string) (*models.AccessoryTrade, error) {
	t, err := s.store.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if t.ProposerUserID != userID && t.RecipientUserID != userID {
		return nil, notFound("trade_not_found", "Trade not found")
	}
	return t, nil
}

// AcceptTrade swaps both items in one transaction.
func (s *ShopService) AcceptTrade(ctx context.Context, userID, tradeID string) (*models.AccessoryTrade, error) {
	peek, err := s.peekTrade(ctx, userID, tradeID)
	if err != nil {
		return nil, err
	}
	if peek.RecipientUserID != userID {
		return nil, notFound("trade_not_found", "Trade not found")
	}

	now := s.Now()
	var trade *models.AccessoryTrade
	err = s.withUsers(ctx, func(tx Store) error {
		var err error
		trade, err = tx.GetTrade(ctx, tradeID)
		if err != nil {
			return err
		}
		if trade.Status != models.OfferPending {
			return conflict("offer_closed", "This trade was already answered")
		}
		offered, err := tx.GetUserAccessory(ctx, trade.ProposerUserID, trade.OfferedItemID)
		if errors.Is(err, ErrNotFound) {
			return conflict("item_gone", "The proposer no longer owns the offered accessory")
		}
		if err != nil {
			return err
		}
		wanted, err := tx.GetUserAccessory(ctx, userID, trade.WantedItemID)
		if errors.Is(err, ErrNotFound) {
			return conflict("item_gone", "You no longer own the wanted accessory")
		}
		if err != nil {
			return err
		}
		if err := transferItem(ctx, tx, offered, userID); err != nil {
			return err
		}
		if err := transferItem(ctx, tx, wanted, trade.ProposerUserID); err != nil {
			return err
		}
		trade.Status = models.OfferAccepted
		trade.ResolvedAt = &now
		return tx.UpdateTrade(ctx, trade)
	}, peek.ProposerUserID, userID)
	if err != nil {
		return nil, err
	}
	s.log.Info("🔁 [TRADE] accepted", "trade_id", trade.ID, "proposer", trade.ProposerUserID, "recipient", userID)
	return trade, nil
}

// DeclineTrade closes a pending trade: declined by the recipient, cancelled
// by the proposer.
func (s *ShopService) DeclineTrade(ctx context.Context, userID, tradeID string) (*models.AccessoryTrade, error) {
	peek, err := s.peekTrade(ctx, userID, tradeID)
	if err != nil {
		return nil, err
	}
	status := resolveAs(userID, peek.RecipientUserID)

	now := s.Now()
	var trade *models.AccessoryTrade
	err = s.withUsers(ctx, func(tx Store) error {
		var err error
		trade, err = tx.GetTrade(ctx, tradeID)
		if err != nil {
			return err
		}
		if trade.Status != models.OfferPending {
			return conflict("offer_closed", "This trade was already answered")
		}
		trade.Status = status
		trade.ResolvedAt = &now
		return tx.UpdateTrade(ctx, trade)
	}, peek.ProposerUserID, peek.RecipientUserID)
	if err != nil {
		return nil, err
	}
	return trade, nil
}

func (s *ShopService) Trades(ctx context.Context, userID string) (*TradeList, error) {
	incoming, err := s.store.ListTrades(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	sent, err := s.store.ListTrades(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	return &TradeList{Incoming: incoming, Sent: sent}, nil
}
