// Package database manages the MongoDB connection for the Ostaa store.
//
// Connect once at startup, then reach collections through Collection():
//
//	if err := database.Connect(); err != nil { ... }
//	users := database.Collection("users")
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cpbyrne/ostaa/config"
)

var (
	client *mongo.Client
	db     *mongo.Database
)

// Connect opens the Mongo client, verifies the connection with a ping, and
// ensures the indexes the mutation layer relies on.
// Returns an error instead of calling log.Fatal so the caller can shut down
// gracefully.
func Connect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(config.MongoURI()).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(25)

	c, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return fmt.Errorf("database: connect: %w", err)
	}

	if err := c.Ping(ctx, nil); err != nil {
		_ = c.Disconnect(context.Background())
		return fmt.Errorf("database: ping: %w", err)
	}

	client = c
	db = c.Database(config.MongoDatabase())

	if err := ensureIndexes(ctx); err != nil {
		return err
	}

	return nil
}

// ensureIndexes creates the indexes the store invariants depend on. The
// unique username index is what makes duplicate registration an atomic
// failure rather than a read-then-write race.
func ensureIndexes(ctx context.Context) error {
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("database: ensure username index: %w", err)
	}

	_, err = db.Collection("items").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("database: ensure item status index: %w", err)
	}

	return nil
}

// Collection returns a handle on the named collection.
// Panics if Connect has not been called; that is a programming error.
func Collection(name string) *mongo.Collection {
	if db == nil {
		panic("database: Collection called before Connect")
	}
	return db.Collection(name)
}

// Client exposes the raw client for components that need it (log shipping).
func Client() *mongo.Client {
	return client
}

// Disconnect closes the client. Safe to call when Connect never succeeded.
func Disconnect(ctx context.Context) error {
	if client == nil {
		return nil
	}
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("database: disconnect: %w", err)
	}
	client = nil
	db = nil
	return nil
}

// OpContext derives a context bounded by the configured store timeout.
// Every repository operation runs under one of these so a hung store
// surfaces as ErrTimeout instead of a stuck request.
func OpContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, config.StoreTimeout())
}
