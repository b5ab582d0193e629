package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cpbyrne/ostaa/app/services"
	"github.com/cpbyrne/ostaa/pkg/response"
)

// UserController serves user browsing: the full user list, a user's
// resolved listings/purchases, and username search.
type UserController struct {
	market *services.MarketService
}

func NewUserController() *UserController {
	return &UserController{market: services.NewMarketService()}
}

// NewUserControllerWith injects a pre-built service (tests).
func NewUserControllerWith(market *services.MarketService) *UserController {
	return &UserController{market: market}
}

// Index returns every registered user.
func (c *UserController) Index(w http.ResponseWriter, r *http.Request) {
	users, err := c.market.ListUsers(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, users)
}

// Listings resolves the items the user has put up for sale, in creation
// order. 404 when the user does not exist.
func (c *UserController) Listings(w http.ResponseWriter, r *http.Request) {
	items, err := c.market.Listings(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, items)
}

// Purchases resolves the items the user has bought, in purchase order.
func (c *UserController) Purchases(w http.ResponseWriter, r *http.Request) {
	items, err := c.market.Purchases(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, items)
}

// Search returns users whose username contains the keyword,
// case-insensitive. Mounted both with and without a keyword segment; no
// keyword means every user matches.
func (c *UserController) Search(w http.ResponseWriter, r *http.Request) {
	users, err := c.market.SearchUsers(r.Context(), chi.URLParam(r, "keyword"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, users)
}
