package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cpbyrne/ostaa/app/models"
	"github.com/cpbyrne/ostaa/app/repositories"
	"github.com/cpbyrne/ostaa/pkg/database"
)

func newMarket(t *testing.T) (*MarketService, *fakeUserStore, *fakeItemStore) {
	t.Helper()
	users := newFakeUserStore()
	items := newFakeItemStore()
	return NewMarketServiceWith(users, items), users, items
}

func register(t *testing.T, users *fakeUserStore, username string) {
	t.Helper()
	u := models.User{Username: username, PasswordHash: "x"}
	require.NoError(t, users.Create(context.Background(), &u))
}

func TestCreateItemAppendsListing(t *testing.T) {
	svc, users, _ := newMarket(t)
	register(t, users, "chris")

	item, err := svc.CreateItem(context.Background(), CreateItemInput{
		Title:       "Amp",
		Description: "Tube amp, 15W",
		Price:       120,
	}, "chris")
	require.NoError(t, err)

	assert.Equal(t, models.StatusForSale, item.Status)
	assert.False(t, item.ID.IsZero())

	owner, err := users.FindByUsername(context.Background(), "chris")
	require.NoError(t, err)
	require.Len(t, owner.Listings, 1)
	assert.Equal(t, item.ID, owner.Listings[0])
}

func TestCreateItemUnknownOwner(t *testing.T) {
	svc, _, items := newMarket(t)

	_, err := svc.CreateItem(context.Background(), CreateItemInput{Title: "Amp", Description: "d", Price: 1}, "ghost")
	assert.True(t, database.IsNotFound(err))
	assert.Equal(t, 0, items.count())
}

func TestCreateItemRollsBackOnListingFailure(t *testing.T) {
	svc, users, items := newMarket(t)
	register(t, users, "chris")
	users.failAppendListing = true

	_, err := svc.CreateItem(context.Background(), CreateItemInput{Title: "Amp", Description: "d", Price: 1}, "chris")
	require.Error(t, err)

	// The inserted item was deleted again, no orphan remains.
	assert.Equal(t, 0, items.count())
}

func TestCreateItemWithoutImage(t *testing.T) {
	svc, users, _ := newMarket(t)
	register(t, users, "chris")

	item, err := svc.CreateItem(context.Background(), CreateItemInput{Title: "Amp", Description: "d", Price: 1}, "chris")
	require.NoError(t, err)
	assert.Empty(t, item.Image)

	got, err := svc.FetchItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Image)
}

func TestBuyMarksSoldAndRecordsPurchase(t *testing.T) {
	svc, users, items := newMarket(t)
	register(t, users, "seller")
	register(t, users, "buyer")

	item, err := svc.CreateItem(context.Background(), CreateItemInput{Title: "Bike", Description: "d", Price: 50}, "seller")
	require.NoError(t, err)

	require.NoError(t, svc.Buy(context.Background(), item.ID, "buyer"))

	got, err := items.FindByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSold, got.Status)

	buyer, err := users.FindByUsername(context.Background(), "buyer")
	require.NoError(t, err)
	require.Len(t, buyer.Purchases, 1)
	assert.Equal(t, item.ID, buyer.Purchases[0])

	// The seller's listings still reference the item.
	seller, err := users.FindByUsername(context.Background(), "seller")
	require.NoError(t, err)
	assert.Len(t, seller.Listings, 1)
}

func TestBuySecondBuyerGetsAlreadySold(t *testing.T) {
	svc, users, _ := newMarket(t)
	register(t, users, "seller")
	register(t, users, "first")
	register(t, users, "second")

	item, err := svc.CreateItem(context.Background(), CreateItemInput{Title: "Bike", Description: "d", Price: 50}, "seller")
	require.NoError(t, err)

	require.NoError(t, svc.Buy(context.Background(), item.ID, "first"))

	err = svc.Buy(context.Background(), item.ID, "second")
	assert.ErrorIs(t, err, repositories.ErrAlreadySold)

	second, err := users.FindByUsername(context.Background(), "second")
	require.NoError(t, err)
	assert.Empty(t, second.Purchases)
}

func TestBuyMissingItem(t *testing.T) {
	svc, users, _ := newMarket(t)
	register(t, users, "buyer")

	err := svc.Buy(context.Background(), primitive.NewObjectID(), "buyer")
	assert.True(t, database.IsNotFound(err))
}

func TestBuyRelistsWhenPurchaseAppendFails(t *testing.T) {
	svc, users, items := newMarket(t)
	register(t, users, "seller")
	register(t, users, "buyer")

	item, err := svc.CreateItem(context.Background(), CreateItemInput{Title: "Bike", Description: "d", Price: 50}, "seller")
	require.NoError(t, err)

	users.failAppendPurchase = true
	err = svc.Buy(context.Background(), item.ID, "buyer")
	require.Error(t, err)

	// The item went back on sale instead of staying sold with no buyer.
	got, err := items.FindByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusForSale, got.Status)
}

func TestConcurrentBuyExactlyOneWinner(t *testing.T) {
	svc, users, _ := newMarket(t)
	register(t, users, "seller")

	const buyers = 16
	for i := 0; i < buyers; i++ {
		register(t, users, "buyer"+string(rune('a'+i)))
	}

	item, err := svc.CreateItem(context.Background(), CreateItemInput{Title: "Bike", Description: "d", Price: 50}, "seller")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Buy(context.Background(), item.ID, "buyer"+string(rune('a'+i)))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, repositories.ErrAlreadySold)
		}
	}
	assert.Equal(t, 1, wins)

	// Exactly one buyer recorded the purchase.
	all, err := users.All(context.Background())
	require.NoError(t, err)
	recorded := 0
	for _, u := range all {
		recorded += len(u.Purchases)
	}
	assert.Equal(t, 1, recorded)
}

func TestListingsAndPurchasesResolveInOrder(t *testing.T) {
	svc, users, _ := newMarket(t)
	register(t, users, "seller")
	register(t, users, "buyer")

	first, err := svc.CreateItem(context.Background(), CreateItemInput{Title: "One", Description: "d", Price: 1}, "seller")
	require.NoError(t, err)
	second, err := svc.CreateItem(context.Background(), CreateItemInput{Title: "Two", Description: "d", Price: 2}, "seller")
	require.NoError(t, err)

	listings, err := svc.Listings(context.Background(), "seller")
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, first.ID, listings[0].ID)
	assert.Equal(t, second.ID, listings[1].ID)

	require.NoError(t, svc.Buy(context.Background(), second.ID, "buyer"))
	require.NoError(t, svc.Buy(context.Background(), first.ID, "buyer"))

	purchases, err := svc.Purchases(context.Background(), "buyer")
	require.NoError(t, err)
	require.Len(t, purchases, 2)
	assert.Equal(t, second.ID, purchases[0].ID)
	assert.Equal(t, first.ID, purchases[1].ID)
}

func TestListingsUnknownUser(t *testing.T) {
	svc, _, _ := newMarket(t)

	_, err := svc.Listings(context.Background(), "ghost")
	assert.True(t, database.IsNotFound(err))
}

func TestSearchUsers(t *testing.T) {
	svc, users, _ := newMarket(t)
	register(t, users, "chris")
	register(t, users, "christine")
	register(t, users, "ben")

	matched, err := svc.SearchUsers(context.Background(), "CHRIS")
	require.NoError(t, err)
	require.Len(t, matched, 2)

	matched, err = svc.SearchUsers(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, matched, 3)

	matched, err = svc.SearchUsers(context.Background(), "zzz")
	require.NoError(t, err)
	assert.NotNil(t, matched)
	assert.Empty(t, matched)
}

func TestSearchItemsMatchesDescription(t *testing.T) {
	svc, users, _ := newMarket(t)
	register(t, users, "seller")

	_, err := svc.CreateItem(context.Background(), CreateItemInput{Title: "Guitar", Description: "Sunburst Stratocaster", Price: 450}, "seller")
	require.NoError(t, err)
	_, err = svc.CreateItem(context.Background(), CreateItemInput{Title: "Bike", Description: "Road bike, 54cm", Price: 220}, "seller")
	require.NoError(t, err)

	matched, err := svc.SearchItems(context.Background(), "strat")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "Guitar", matched[0].Title)

	// Title matches do not count, only descriptions are searched.
	matched, err = svc.SearchItems(context.Background(), "guitar")
	require.NoError(t, err)
	assert.Empty(t, matched)

	matched, err = svc.SearchItems(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, matched, 2)
}
