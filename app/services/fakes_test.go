package services

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cpbyrne/ostaa/app/models"
	"github.com/cpbyrne/ostaa/app/repositories"
	"github.com/cpbyrne/ostaa/pkg/database"
)

// fakeUserStore is a mutex-guarded in-memory UserStore with the same
// contract as the Mongo-backed repository, including the unique-username
// guarantee.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User

	failAppendPurchase bool
	failAppendListing  bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[user.Username]; ok {
		return database.ErrDuplicateKey
	}
	if user.Listings == nil {
		user.Listings = []primitive.ObjectID{}
	}
	if user.Purchases == nil {
		user.Purchases = []primitive.ObjectID{}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.ID = primitive.NewObjectID()

	stored := *user
	f.users[user.Username] = &stored
	return nil
}

func (f *fakeUserStore) FindByUsername(ctx context.Context, username string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[username]
	if !ok {
		return models.User{}, database.ErrNotFound
	}
	return *u, nil
}

func (f *fakeUserStore) All(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) AppendListing(ctx context.Context, username string, itemID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAppendListing {
		return database.ErrUnavailable
	}
	u, ok := f.users[username]
	if !ok {
		return database.ErrNotFound
	}
	u.Listings = append(u.Listings, itemID)
	return nil
}

func (f *fakeUserStore) AppendPurchase(ctx context.Context, username string, itemID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAppendPurchase {
		return database.ErrUnavailable
	}
	u, ok := f.users[username]
	if !ok {
		return database.ErrNotFound
	}
	u.Purchases = append(u.Purchases, itemID)
	return nil
}

func (f *fakeUserStore) UpdatePasswordHash(ctx context.Context, username, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[username]
	if !ok {
		return database.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUserStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

// fakeItemStore mirrors ItemRepository, with MarkSold implemented as the
// same atomic compare-and-set under the store lock.
type fakeItemStore struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Item
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{items: map[primitive.ObjectID]*models.Item{}}
}

func (f *fakeItemStore) Create(ctx context.Context, item *models.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if item.Status == "" {
		item.Status = models.StatusForSale
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	item.ID = primitive.NewObjectID()

	stored := *item
	f.items[item.ID] = &stored
	return nil
}

func (f *fakeItemStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.items, id)
	return nil
}

func (f *fakeItemStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	it, ok := f.items[id]
	if !ok {
		return models.Item{}, database.ErrNotFound
	}
	return *it, nil
}

func (f *fakeItemStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.Item{}
	for _, id := range ids {
		if it, ok := f.items[id]; ok {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (f *fakeItemStore) All(ctx context.Context) ([]models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.Item{}
	for _, it := range f.items {
		out = append(out, *it)
	}
	return out, nil
}

func (f *fakeItemStore) MarkSold(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	it, ok := f.items[id]
	if !ok {
		return database.ErrNotFound
	}
	if it.Status != models.StatusForSale {
		return repositories.ErrAlreadySold
	}
	it.Status = models.StatusSold
	return nil
}

func (f *fakeItemStore) Relist(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if it, ok := f.items[id]; ok && it.Status == models.StatusSold {
		it.Status = models.StatusForSale
	}
	return nil
}

func (f *fakeItemStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}
