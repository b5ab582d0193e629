package controllers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cpbyrne/ostaa/app/services"
	"github.com/cpbyrne/ostaa/pkg/bind"
	"github.com/cpbyrne/ostaa/pkg/logger"
	"github.com/cpbyrne/ostaa/pkg/response"
)

// PurchaseController executes the buy transition.
type PurchaseController struct {
	market *services.MarketService
}

func NewPurchaseController() *PurchaseController {
	return &PurchaseController{market: services.NewMarketService()}
}

// NewPurchaseControllerWith injects a pre-built service (tests).
func NewPurchaseControllerWith(market *services.MarketService) *PurchaseController {
	return &PurchaseController{market: market}
}

type buyInput struct {
	ItemID   string `json:"item_id" validate:"required"`
	Username string `json:"username" validate:"required"`
}

// Create buys an item for a user. 200 when the transition succeeds, 404
// when the item or buyer does not exist, 409 when the item was already
// sold — including when this request lost the race to a concurrent buyer.
func (c *PurchaseController) Create(w http.ResponseWriter, r *http.Request) {
	var in buyInput
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	itemID, err := primitive.ObjectIDFromHex(in.ItemID)
	if err != nil {
		response.ValidationError(w, map[string]string{"item_id": "The item_id is not a valid id."})
		return
	}

	if err := c.market.Buy(r.Context(), itemID, in.Username); err != nil {
		respondError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info("item sold",
		"item_id", in.ItemID, "buyer", in.Username)
	response.Success(w, map[string]bool{"ok": true})
}
