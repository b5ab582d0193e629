package server

import (
	"github.com/cpbyrne/ostaa/app/models"
	"github.com/cpbyrne/ostaa/app/services"
	"github.com/cpbyrne/ostaa/pkg/event"
	"github.com/cpbyrne/ostaa/pkg/logger"
)

// registerListeners wires the domain event listeners. For now they only
// produce structured audit logs.
func registerListeners() {
	event.Listen(services.EventUserRegistered, func(payload interface{}) {
		if u, ok := payload.(models.User); ok {
			logger.Info("user registered", "username", u.Username)
		}
	})

	event.Listen(services.EventItemListed, func(payload interface{}) {
		if e, ok := payload.(services.ItemEvent); ok {
			logger.Info("item listed", "item_id", e.Item.ID.Hex(), "seller", e.Username, "price", e.Item.Price)
		}
	})

	event.Listen(services.EventItemSold, func(payload interface{}) {
		if e, ok := payload.(services.ItemEvent); ok {
			logger.Info("item sold", "item_id", e.Item.ID.Hex(), "buyer", e.Username)
		}
	})
}
