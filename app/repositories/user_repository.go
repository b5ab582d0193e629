package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cpbyrne/ostaa/app/models"
	"github.com/cpbyrne/ostaa/pkg/database"
	"github.com/cpbyrne/ostaa/pkg/metrics"
)

// UserRepository handles store operations for User documents.
type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// col is resolved per call so constructing a repository (route
// registration, CLI) never requires a live connection.
func (r *UserRepository) col() *mongo.Collection {
	return database.Collection("users")
}

// Create inserts a new user with empty listings and purchases. A taken
// username fails atomically with database.ErrDuplicateKey via the unique
// index — there is no read-then-write window, and the store is left
// unchanged on failure.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	defer metrics.ObserveStoreOp("users.insert", time.Now())

	ctx, cancel := database.OpContext(ctx)
	defer cancel()

	if user.Listings == nil {
		user.Listings = []primitive.ObjectID{}
	}
	if user.Purchases == nil {
		user.Purchases = []primitive.ObjectID{}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	res, err := r.col().InsertOne(ctx, user)
	if err != nil {
		return database.MapError(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

// FindByUsername looks up a user by exact username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	defer metrics.ObserveStoreOp("users.find", time.Now())

	ctx, cancel := database.OpContext(ctx)
	defer cancel()

	var user models.User
	err := r.col().FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return models.User{}, database.MapError(err)
	}
	return user, nil
}

// All returns every user. Unbounded scan — fine at demo scale, and the
// search endpoints that filter over it share the same limit.
func (r *UserRepository) All(ctx context.Context) ([]models.User, error) {
	defer metrics.ObserveStoreOp("users.scan", time.Now())

	ctx, cancel := database.OpContext(ctx)
	defer cancel()

	cur, err := r.col().Find(ctx, bson.M{})
	if err != nil {
		return nil, database.MapError(err)
	}

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, database.MapError(err)
	}
	return users, nil
}

// AppendListing appends itemID to the user's listings.
// Fails with database.ErrNotFound when the user does not exist.
func (r *UserRepository) AppendListing(ctx context.Context, username string, itemID primitive.ObjectID) error {
	defer metrics.ObserveStoreOp("users.push_listing", time.Now())

	return r.push(ctx, username, "listings", itemID)
}

// AppendPurchase appends itemID to the user's purchases.
func (r *UserRepository) AppendPurchase(ctx context.Context, username string, itemID primitive.ObjectID) error {
	defer metrics.ObserveStoreOp("users.push_purchase", time.Now())

	return r.push(ctx, username, "purchases", itemID)
}

func (r *UserRepository) push(ctx context.Context, username, field string, itemID primitive.ObjectID) error {
	ctx, cancel := database.OpContext(ctx)
	defer cancel()

	res, err := r.col().UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$push": bson.M{field: itemID}},
	)
	if err != nil {
		return database.MapError(err)
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

// UpdatePasswordHash replaces the stored credential hash for username.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, username, hash string) error {
	defer metrics.ObserveStoreOp("users.update_password", time.Now())

	ctx, cancel := database.OpContext(ctx)
	defer cancel()

	res, err := r.col().UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"password_hash": hash}},
	)
	if err != nil {
		return database.MapError(err)
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Count returns the number of registered users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	defer metrics.ObserveStoreOp("users.count", time.Now())

	ctx, cancel := database.OpContext(ctx)
	defer cancel()

	n, err := r.col().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, database.MapError(err)
	}
	return n, nil
}
