package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cpbyrne/ostaa/app/models"
)

// UserStore is the slice of UserRepository the services depend on.
// Tests substitute an in-memory implementation.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (models.User, error)
	All(ctx context.Context) ([]models.User, error)
	AppendListing(ctx context.Context, username string, itemID primitive.ObjectID) error
	AppendPurchase(ctx context.Context, username string, itemID primitive.ObjectID) error
	UpdatePasswordHash(ctx context.Context, username, hash string) error
}

// ItemStore is the slice of ItemRepository the services depend on.
type ItemStore interface {
	Create(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Item, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Item, error)
	All(ctx context.Context) ([]models.Item, error)
	MarkSold(ctx context.Context, id primitive.ObjectID) error
	Relist(ctx context.Context, id primitive.ObjectID) error
}
