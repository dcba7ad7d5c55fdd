// handlers/offer_routes.go
package handlers

import (
	"creature-training-system/logger"
	"creature-training-system/services"

	"github.com/gofiber/fiber/v2"
)

type sendGiftRequest struct {
	RecipientID string `json:"recipientId" validate:"required"`
	ItemID      string `json:"itemId" validate:"required"`
	Message     string `json:"message" validate:"max=200"`
}

type proposeTradeRequest struct {
	RecipientID   string `json:"recipientId" validate:"required"`
	OfferedItemID string `json:"offeredItemId" validate:"required"`
	WantedItemID  string `json:"wantedItemId" validate:"required"`
}

// SetupOfferRoutes mounts accessory gifts and trades between users.
func SetupOfferRoutes(api fiber.Router, learning *services.LearningService, shop *services.ShopService, log *logger.Logger) {
	api.Get("/gifts", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		list, err := shop.Gifts(c.UserContext(), u.ID)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(list)
	})

	api.Post("/gifts", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		var req sendGiftRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, log, err)
		}
		gift, err := shop.SendGift(c.UserContext(), u.ID, services.GiftRequest{
			RecipientID: req.RecipientID,
			ItemID:      req.ItemID,
			Message:     req.Message,
		})
		if err != nil {
			return respondError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(gift)
	})

	api.Post("/gifts/:id/accept", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		gift, err := shop.AcceptGift(c.UserContext(), u.ID, c.Params("id"))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(gift)
	})

	api.Post("/gifts/:id/decline", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		gift, err := shop.DeclineGift(c.UserContext(), u.ID, c.Params("id"))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(gift)
	})

	api.Get("/trades", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		list, err := shop.Trades(c.UserContext(), u.ID)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(list)
	})

	api.Post("/trades", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		var req proposeTradeRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, log, err)
		}
		trade, err := shop.ProposeTrade(c.UserContext(), u.ID, services.TradeRequest{
			RecipientID:   req.RecipientID,
			OfferedItemID: req.OfferedItemID,
			WantedItemID:  req.WantedItemID,
		})
		if err != nil {
			return respondError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(trade)
	})

	api.Post("/trades/:id/accept", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		trade, err := shop.AcceptTrade(c.UserContext(), u.ID, c.Params("id"))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(trade)
	})

	api.Post("/trades/:id/decline", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		trade, err := shop.DeclineTrade(c.UserContext(), u.ID, c.Params("id"))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(trade)
	})
}
