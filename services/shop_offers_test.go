package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"creature-training-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireCode(t *testing.T, err error, sentinel error, code string) {
	t.Helper()
	require.ErrorIs(t, err, sentinel)
	var appErr *AppError
	require.True(t, errors.As(err, &appErr), "%v", err)
	assert.Equal(t, code, appErr.Code)
}

func (e *testEnv) buy(t *testing.T, userID string, a *models.Accessory) *models.UserAccessory {
	t.Helper()
	res, err := e.shop.Purchase(context.Background(), userID, a.ID)
	require.NoError(t, err)
	return res.Item
}

func (e *testEnv) ownedCodes(t *testing.T, userID string) []string {
	t.Helper()
	owned, err := e.shop.Owned(context.Background(), userID)
	require.NoError(t, err)
	codes := []string{}
	for _, o := range owned {
		codes = append(codes, o.Accessory.Code)
		assert.False(t, o.Equipped, "%s arrived equipped", o.Accessory.Code)
	}
	return codes
}

func TestGiftFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, "alice")
	bob := env.newUser(t, "bob")
	carol := env.newUser(t, "carol")
	hat := env.addAccessory(t, "party-hat", "hat", 20)

	item := env.buy(t, alice.ID, hat)
	_, err := env.shop.Equip(ctx, alice.ID, item.ID, true)
	require.NoError(t, err)
	require.Equal(t, []string{hat.ID}, []string(env.reloadCreature(t, alice.ID).Accessories))

	gift, err := env.shop.SendGift(ctx, alice.ID, GiftRequest{RecipientID: bob.ID, ItemID: item.ID, Message: " enjoy "})
	require.NoError(t, err)
	assert.Equal(t, models.OfferPending, gift.Status)
	assert.Equal(t, "enjoy", gift.Message)

	_, err = env.shop.SendGift(ctx, alice.ID, GiftRequest{RecipientID: carol.ID, ItemID: item.ID})
	requireCode(t, err, ErrConflict, "item_on_offer")

	inbox, err := env.shop.Gifts(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, inbox.Incoming, 1)
	assert.Empty(t, inbox.Sent)
	if assert.NotNil(t, inbox.Incoming[0].Item) && assert.NotNil(t, inbox.Incoming[0].Item.Accessory) {
		assert.Equal(t, "party-hat", inbox.Incoming[0].Item.Accessory.Code)
	}

	// only the recipient can accept; others do not learn the gift exists
	_, err = env.shop.AcceptGift(ctx, carol.ID, gift.ID)
	requireCode(t, err, ErrNotFound, "gift_not_found")
	_, err = env.shop.AcceptGift(ctx, alice.ID, gift.ID)
	requireCode(t, err, ErrNotFound, "gift_not_found")

	env.clock.Advance(time.Minute)
	accepted, err := env.shop.AcceptGift(ctx, bob.ID, gift.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferAccepted, accepted.Status)
	require.NotNil(t, accepted.ResolvedAt)
	assert.True(t, env.clock.Now().Equal(*accepted.ResolvedAt))

	assert.Empty(t, env.ownedCodes(t, alice.ID))
	assert.Equal(t, []string{"party-hat"}, env.ownedCodes(t, bob.ID))
	assert.Empty(t, env.reloadCreature(t, alice.ID).Accessories)

	_, err = env.shop.AcceptGift(ctx, bob.ID, gift.ID)
	requireCode(t, err, ErrConflict, "offer_closed")
	_, err = env.shop.DeclineGift(ctx, bob.ID, gift.ID)
	requireCode(t, err, ErrConflict, "offer_closed")

	inbox, err = env.shop.Gifts(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, inbox.Incoming)
	sent, err := env.shop.Gifts(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, sent.Sent, 1)
	assert.Equal(t, models.OfferAccepted, sent.Sent[0].Status)

	// the received item can be passed on
	_, err = env.shop.SendGift(ctx, bob.ID, GiftRequest{RecipientID: carol.ID, ItemID: item.ID})
	require.NoError(t, err)
}

func TestDeclineGift(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, "alice")
	bob := env.newUser(t, "bob")
	carol := env.newUser(t, "carol")
	item := env.buy(t, alice.ID, env.addAccessory(t, "party-hat", "hat", 20))

	gift, err := env.shop.SendGift(ctx, alice.ID, GiftRequest{RecipientID: bob.ID, ItemID: item.ID})
	require.NoError(t, err)
	_, err = env.shop.DeclineGift(ctx, carol.ID, gift.ID)
	requireCode(t, err, ErrNotFound, "gift_not_found")

	declined, err := env.shop.DeclineGift(ctx, bob.ID, gift.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferDeclined, declined.Status)
	assert.NotNil(t, declined.ResolvedAt)
	assert.Equal(t, []string{"party-hat"}, env.ownedCodes(t, alice.ID))

	// a closed gift frees the item for a new offer, which the sender withdraws
	again, err := env.shop.SendGift(ctx, alice.ID, GiftRequest{RecipientID: bob.ID, ItemID: item.ID})
	require.NoError(t, err)
	cancelled, err := env.shop.DeclineGift(ctx, alice.ID, again.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferCancelled, cancelled.Status)
	assert.Equal(t, []string{"party-hat"}, env.ownedCodes(t, alice.ID))
	assert.Empty(t, env.ownedCodes(t, bob.ID))

	_, err = env.shop.DeclineGift(ctx, bob.ID, "missing")
	requireCode(t, err, ErrNotFound, "gift_not_found")
}

func TestSendGift_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, "alice")
	bob := env.newUser(t, "bob")
	item := env.buy(t, alice.ID, env.addAccessory(t, "party-hat", "hat", 20))
	bobItem := env.buy(t, bob.ID, env.addAccessory(t, "star-shades", "glasses", 20))

	tests := []struct {
		name     string
		req      GiftRequest
		sentinel error
		code     string
	}{
		{name: "no recipient", req: GiftRequest{ItemID: item.ID}, sentinel: ErrInvalidInput, code: "missing_recipient"},
		{name: "to self", req: GiftRequest{RecipientID: alice.ID, ItemID: item.ID}, sentinel: ErrInvalidInput, code: "self_offer"},
		{name: "no item", req: GiftRequest{RecipientID: bob.ID}, sentinel: ErrInvalidInput, code: "missing_item"},
		{name: "long message", req: GiftRequest{RecipientID: bob.ID, ItemID: item.ID, Message: strings.Repeat("é", maxGiftMessageLen+1)}, sentinel: ErrInvalidInput, code: "invalid_gift"},
		{name: "unknown recipient", req: GiftRequest{RecipientID: "missing", ItemID: item.ID}, sentinel: ErrNotFound, code: "user_not_found"},
		{name: "item of someone else", req: GiftRequest{RecipientID: bob.ID, ItemID: bobItem.ID}, sentinel: ErrNotFound, code: "accessory_not_owned"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.shop.SendGift(ctx, alice.ID, tt.req)
			requireCode(t, err, tt.sentinel, tt.code)
		})
	}

	gifts, err := env.shop.Gifts(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, gifts.Sent)
}

func TestAcceptGift_RecipientAlreadyOwnsAccessory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, "alice")
	bob := env.newUser(t, "bob")
	hat := env.addAccessory(t, "party-hat", "hat", 20)
	item := env.buy(t, alice.ID, hat)
	env.buy(t, bob.ID, hat)

	gift, err := env.shop.SendGift(ctx, alice.ID, GiftRequest{RecipientID: bob.ID, ItemID: item.ID})
	require.NoError(t, err)
	_, err = env.shop.AcceptGift(ctx, bob.ID, gift.ID)
	requireCode(t, err, ErrConflict, "already_owned")

	// nothing moved and the gift can still be declined
	assert.Equal(t, []string{"party-hat"}, env.ownedCodes(t, alice.ID))
	got, err := env.store.GetGift(ctx, gift.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferPending, got.Status)
	_, err = env.shop.DeclineGift(ctx, bob.ID, gift.ID)
	require.NoError(t, err)
}

func TestTradeFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, "alice")
	bob := env.newUser(t, "bob")
	carol := env.newUser(t, "carol")
	hat := env.addAccessory(t, "party-hat", "hat", 20)
	shades := env.addAccessory(t, "star-shades", "glasses", 20)

	hatItem := env.buy(t, alice.ID, hat)
	shadesItem := env.buy(t, bob.ID, shades)
	_, err := env.shop.Equip(ctx, alice.ID, hatItem.ID, true)
	require.NoError(t, err)
	_, err = env.shop.Equip(ctx, bob.ID, shadesItem.ID, true)
	require.NoError(t, err)

	trade, err := env.shop.ProposeTrade(ctx, alice.ID, TradeRequest{RecipientID: bob.ID, OfferedItemID: hatItem.ID, WantedItemID: shadesItem.ID})
	require.NoError(t, err)
	assert.Equal(t, models.OfferPending, trade.Status)

	// both items are now spoken for
	_, err = env.shop.SendGift(ctx, bob.ID, GiftRequest{RecipientID: carol.ID, ItemID: shadesItem.ID})
	requireCode(t, err, ErrConflict, "item_on_offer")
	_, err = env.shop.SendGift(ctx, alice.ID, GiftRequest{RecipientID: carol.ID, ItemID: hatItem.ID})
	requireCode(t, err, ErrConflict, "item_on_offer")

	inbox, err := env.shop.Trades(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, inbox.Incoming, 1)
	if assert.NotNil(t, inbox.Incoming[0].OfferedItem) && assert.NotNil(t, inbox.Incoming[0].WantedItem) {
		assert.Equal(t, "party-hat", inbox.Incoming[0].OfferedItem.Accessory.Code)
		assert.Equal(t, "star-shades", inbox.Incoming[0].WantedItem.Accessory.Code)
	}

	_, err = env.shop.AcceptTrade(ctx, alice.ID, trade.ID)
	requireCode(t, err, ErrNotFound, "trade_not_found")
	_, err = env.shop.AcceptTrade(ctx, carol.ID, trade.ID)
	requireCode(t, err, ErrNotFound, "trade_not_found")

	accepted, err := env.shop.AcceptTrade(ctx, bob.ID, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferAccepted, accepted.Status)
	assert.NotNil(t, accepted.ResolvedAt)

	assert.Equal(t, []string{"star-shades"}, env.ownedCodes(t, alice.ID))
	assert.Equal(t, []string{"party-hat"}, env.ownedCodes(t, bob.ID))
	assert.Empty(t, env.reloadCreature(t, alice.ID).Accessories)
	assert.Empty(t, env.reloadCreature(t, bob.ID).Accessories)

	_, err = env.shop.AcceptTrade(ctx, bob.ID, trade.ID)
	requireCode(t, err, ErrConflict, "offer_closed")

	sent, err := env.shop.Trades(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, sent.Sent, 1)
	assert.Equal(t, models.OfferAccepted, sent.Sent[0].Status)
	assert.Empty(t, sent.Incoming)
}

func TestDeclineTrade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, "alice")
	bob := env.newUser(t, "bob")
	hatItem := env.buy(t, alice.ID, env.addAccessory(t, "party-hat", "hat", 20))
	shadesItem := env.buy(t, bob.ID, env.addAccessory(t, "star-shades", "glasses", 20))
	req := TradeRequest{RecipientID: bob.ID, OfferedItemID: hatItem.ID, WantedItemID: shadesItem.ID}

	trade, err := env.shop.ProposeTrade(ctx, alice.ID, req)
	require.NoError(t, err)
	declined, err := env.shop.DeclineTrade(ctx, bob.ID, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferDeclined, declined.Status)

	trade, err = env.shop.ProposeTrade(ctx, alice.ID, req)
	require.NoError(t, err)
	cancelled, err := env.shop.DeclineTrade(ctx, alice.ID, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferCancelled, cancelled.Status)

	_, err = env.shop.DeclineTrade(ctx, alice.ID, trade.ID)
	requireCode(t, err, ErrConflict, "offer_closed")

	assert.Equal(t, []string{"party-hat"}, env.ownedCodes(t, alice.ID))
	assert.Equal(t, []string{"star-shades"}, env.ownedCodes(t, bob.ID))
}

func TestProposeTrade_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, "alice")
	bob := env.newUser(t, "bob")
	hat := env.addAccessory(t, "party-hat", "hat", 20)
	aliceHat := env.buy(t, alice.ID, hat)
	bobHat := env.buy(t, bob.ID, hat)
	bobShades := env.buy(t, bob.ID, env.addAccessory(t, "star-shades", "glasses", 20))

	tests := []struct {
		name     string
		req      TradeRequest
		sentinel error
		code     string
	}{
		{name: "to self", req: TradeRequest{RecipientID: alice.ID, OfferedItemID: aliceHat.ID, WantedItemID: aliceHat.ID}, sentinel: ErrInvalidInput, code: "self_offer"},
		{name: "missing wanted", req: TradeRequest{RecipientID: bob.ID, OfferedItemID: aliceHat.ID}, sentinel: ErrInvalidInput, code: "missing_item"},
		{name: "same accessory", req: TradeRequest{RecipientID: bob.ID, OfferedItemID: aliceHat.ID, WantedItemID: bobHat.ID}, sentinel: ErrInvalidInput, code: "same_accessory"},
		{name: "wanted not theirs", req: TradeRequest{RecipientID: bob.ID, OfferedItemID: aliceHat.ID, WantedItemID: aliceHat.ID}, sentinel: ErrNotFound, code: "wanted_not_owned"},
		{name: "offered not mine", req: TradeRequest{RecipientID: bob.ID, OfferedItemID: bobShades.ID, WantedItemID: bobHat.ID}, sentinel: ErrNotFound, code: "accessory_not_owned"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.shop.ProposeTrade(ctx, alice.ID, tt.req)
			requireCode(t, err, tt.sentinel, tt.code)
		})
	}
}
