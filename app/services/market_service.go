package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cpbyrne/ostaa/app/models"
	"github.com/cpbyrne/ostaa/app/repositories"
	"github.com/cpbyrne/ostaa/pkg/cache"
	"github.com/cpbyrne/ostaa/pkg/collection"
	"github.com/cpbyrne/ostaa/pkg/event"
	"github.com/cpbyrne/ostaa/pkg/logger"
	"github.com/cpbyrne/ostaa/pkg/metrics"
)

// Event names fired by this service.
const (
	EventItemListed = "item.listed"
	EventItemSold   = "item.sold"
)

const (
	itemsCacheKey = "items:all"
	itemsCacheTTL = 30 * time.Second
)

// MarketService implements the marketplace flows: listing items for sale,
// buying, browsing, and search.
type MarketService struct {
	users UserStore
	items ItemStore
}

func NewMarketService() *MarketService {
	return &MarketService{
		users: repositories.NewUserRepository(),
		items: repositories.NewItemRepository(),
	}
}

// NewMarketServiceWith injects alternative stores (tests).
func NewMarketServiceWith(users UserStore, items ItemStore) *MarketService {
	return &MarketService{users: users, items: items}
}

// ItemEvent is the payload for item.listed and item.sold events.
type ItemEvent struct {
	Item     models.Item
	Username string
}

// CreateItemInput carries the fields of a new listing. Image is the stored
// filename of an already-uploaded picture, or empty for none.
type CreateItemInput struct {
	Title       string
	Description string
	Price       float64
	Image       string
}

// CreateItem inserts a new for_sale item and appends its id to the owner's
// listings. The owner must exist up front; if they vanish between that
// check and the listings push, the inserted item is deleted again so the
// store never holds an orphaned listing.
func (s *MarketService) CreateItem(ctx context.Context, in CreateItemInput, owner string) (models.Item, error) {
	if _, err := s.users.FindByUsername(ctx, owner); err != nil {
		return models.Item{}, err
	}

	item := models.Item{
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
		Price:       in.Price,
		Status:      models.StatusForSale,
	}
	if err := s.items.Create(ctx, &item); err != nil {
		return models.Item{}, err
	}

	if err := s.users.AppendListing(ctx, owner, item.ID); err != nil {
		if delErr := s.items.Delete(ctx, item.ID); delErr != nil {
			logger.Error("orphaned item rollback failed",
				"item_id", item.ID.Hex(), "error", delErr)
		}
		return models.Item{}, err
	}

	metrics.ItemsListed.Inc()
	cache.Del(itemsCacheKey)
	event.Fire(EventItemListed, ItemEvent{Item: item, Username: owner})
	return item, nil
}

// Buy executes the purchase transition. The status flip is a single
// conditional update, so of two racing buyers exactly one wins and the
// other gets repositories.ErrAlreadySold. If the buyer's purchases update
// fails afterwards, the item is relisted rather than left sold with no
// recorded buyer.
func (s *MarketService) Buy(ctx context.Context, itemID primitive.ObjectID, buyer string) error {
	if err := s.items.MarkSold(ctx, itemID); err != nil {
		return err
	}

	if err := s.users.AppendPurchase(ctx, buyer, itemID); err != nil {
		if relistErr := s.items.Relist(ctx, itemID); relistErr != nil {
			logger.Error("relist after failed purchase append failed",
				"item_id", itemID.Hex(), "buyer", buyer, "error", relistErr)
		}
		return err
	}

	metrics.ItemsSold.Inc()
	cache.Del(itemsCacheKey)
	event.Fire(EventItemSold, ItemEvent{Item: models.Item{ID: itemID}, Username: buyer})
	return nil
}

// ListItems returns every item, served from the redis cache when warm.
// The cache only smooths repeated full scans; correctness never depends on
// it (create and buy invalidate the key).
func (s *MarketService) ListItems(ctx context.Context) ([]models.Item, error) {
	var cached []models.Item
	if cache.Get(itemsCacheKey, &cached) {
		return cached, nil
	}

	items, err := s.items.All(ctx)
	if err != nil {
		return nil, err
	}

	if err := cache.Set(itemsCacheKey, items, itemsCacheTTL); err != nil {
		logger.Warn("items cache set failed", "error", err)
	}
	return items, nil
}

// ListUsers returns every user.
func (s *MarketService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.All(ctx)
}

// Listings resolves the items a user has put up for sale, in creation order.
func (s *MarketService) Listings(ctx context.Context, username string) ([]models.Item, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.items.FindByIDs(ctx, user.Listings)
}

// Purchases resolves the items a user has bought, in purchase order.
func (s *MarketService) Purchases(ctx context.Context, username string) ([]models.Item, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.items.FindByIDs(ctx, user.Purchases)
}

// SearchUsers returns users whose username contains keyword
// (case-insensitive). An empty keyword matches everyone. Linear scan over
// the full collection; fine at the scale this service targets.
func (s *MarketService) SearchUsers(ctx context.Context, keyword string) ([]models.User, error) {
	users, err := s.users.All(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(keyword)
	matched := collection.Filter(users, func(u models.User) bool {
		return strings.Contains(strings.ToLower(u.Username), needle)
	})
	if matched == nil {
		matched = []models.User{}
	}
	return matched, nil
}

// SearchItems returns items whose description contains keyword
// (case-insensitive). An empty keyword matches every item.
func (s *MarketService) SearchItems(ctx context.Context, keyword string) ([]models.Item, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(keyword)
	matched := collection.Filter(items, func(it models.Item) bool {
		return strings.Contains(strings.ToLower(it.Description), needle)
	})
	if matched == nil {
		matched = []models.Item{}
	}
	return matched, nil
}

// FetchItem returns a single item by id.
func (s *MarketService) FetchItem(ctx context.Context, id primitive.ObjectID) (models.Item, error) {
	return s.items.FindByID(ctx, id)
}
