package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a marketplace account. Listings and Purchases hold item ids in
// insertion order; both are append-only — no operation removes an entry and
// no user is ever deleted.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username     string               `bson:"username" json:"username"`
	PasswordHash string               `bson:"password_hash" json:"-"` // bcrypt, never serialised
	Listings     []primitive.ObjectID `bson:"listings" json:"listings"`
	Purchases    []primitive.ObjectID `bson:"purchases" json:"purchases"`
	CreatedAt    time.Time            `bson:"created_at" json:"created_at"`
}
