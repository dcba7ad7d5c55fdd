// handlers/shop_routes.go
package handlers

import (
	"strconv"

	"creature-training-system/logger"
	"creature-training-system/middleware"
	"creature-training-system/models"
	"creature-training-system/services"

	"github.com/gofiber/fiber/v2"
)

type purchaseRequest struct {
	AccessoryID string `json:"accessoryId" validate:"required"`
}

type equipRequest struct {
	UserAccessoryID string `json:"userAccessoryId" validate:"required"`
	Equipped        *bool  `json:"equipped" validate:"required"`
}

func SetupShopRoutes(api fiber.Router, learning *services.LearningService, shop *services.ShopService, log *logger.Logger) {
	api.Get("/shop/accessories", func(c *fiber.Ctx) error {
		list, err := shop.Catalogue(c.UserContext())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(list)
	})

	api.Get("/shop/owned", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		list, err := shop.Owned(c.UserContext(), u.ID)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(list)
	})

	api.Get("/shop/equipped", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		list, err := shop.Equipped(c.UserContext(), u.ID)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(list)
	})

	api.Post("/shop/purchase", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		var req purchaseRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, log, err)
		}
		res, err := shop.Purchase(c.UserContext(), u.ID, req.AccessoryID)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	})

	api.Post("/shop/equip", func(c *fiber.Ctx) error {
		u, err := currentUser(c, learning)
		if err != nil {
			return respondError(c, log, err)
		}
		var req equipRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, log, err)
		}
		item, err := shop.Equip(c.UserContext(), u.ID, req.UserAccessoryID, *req.Equipped)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(item)
	})

	// 🔐 admin: multipart form with optional "icon" file
	api.Post("/admin/accessories", middleware.RequireRole("admin"), func(c *fiber.Ctx) error {
		price, err := strconv.ParseInt(c.FormValue("price"), 10, 64)
		if err != nil {
			return respondError(c, log, &services.AppError{Code: "invalid_accessory", Message: "price must be a number", Err: services.ErrInvalidInput})
		}
		icon, err := c.FormFile("icon")
		if err != nil {
			icon = nil
		}
		acc, err := shop.CreateAccessory(c.UserContext(), services.NewAccessory{
			Name:        c.FormValue("name"),
			Description: c.FormValue("description"),
			Category:    c.FormValue("category"),
			Price:       price,
			Icon:        c.FormValue("icon_name"),
			Rarity:      models.AccessoryRarity(c.FormValue("rarity")),
		}, icon)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(acc)
	})
}
