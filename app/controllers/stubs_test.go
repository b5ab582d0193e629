package controllers

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cpbyrne/ostaa/app/models"
	"github.com/cpbyrne/ostaa/app/repositories"
	"github.com/cpbyrne/ostaa/pkg/database"
)

// stubUserStore / stubItemStore are in-memory stand-ins for the Mongo
// repositories, preserving their error contract.
type stubUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: map[string]*models.User{}}
}

func (s *stubUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Username]; ok {
		return database.ErrDuplicateKey
	}
	if user.Listings == nil {
		user.Listings = []primitive.ObjectID{}
	}
	if user.Purchases == nil {
		user.Purchases = []primitive.ObjectID{}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()

	stored := *user
	s.users[user.Username] = &stored
	return nil
}

func (s *stubUserStore) FindByUsername(ctx context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return models.User{}, database.ErrNotFound
	}
	return *u, nil
}

func (s *stubUserStore) All(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.User{}
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *stubUserStore) AppendListing(ctx context.Context, username string, itemID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return database.ErrNotFound
	}
	u.Listings = append(u.Listings, itemID)
	return nil
}

func (s *stubUserStore) AppendPurchase(ctx context.Context, username string, itemID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return database.ErrNotFound
	}
	u.Purchases = append(u.Purchases, itemID)
	return nil
}

func (s *stubUserStore) UpdatePasswordHash(ctx context.Context, username, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return database.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

type stubItemStore struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Item
}

func newStubItemStore() *stubItemStore {
	return &stubItemStore{items: map[primitive.ObjectID]*models.Item{}}
}

func (s *stubItemStore) Create(ctx context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.Status == "" {
		item.Status = models.StatusForSale
	}
	item.ID = primitive.NewObjectID()
	item.CreatedAt = time.Now().UTC()

	stored := *item
	s.items[item.ID] = &stored
	return nil
}

func (s *stubItemStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, id)
	return nil
}

func (s *stubItemStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return models.Item{}, database.ErrNotFound
	}
	return *it, nil
}

func (s *stubItemStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Item{}
	for _, id := range ids {
		if it, ok := s.items[id]; ok {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (s *stubItemStore) All(ctx context.Context) ([]models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Item{}
	for _, it := range s.items {
		out = append(out, *it)
	}
	return out, nil
}

func (s *stubItemStore) MarkSold(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return database.ErrNotFound
	}
	if it.Status != models.StatusForSale {
		return repositories.ErrAlreadySold
	}
	it.Status = models.StatusSold
	return nil
}

func (s *stubItemStore) Relist(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if it, ok := s.items[id]; ok && it.Status == models.StatusSold {
		it.Status = models.StatusForSale
	}
	return nil
}
