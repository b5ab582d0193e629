package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item sale states. An item moves for_sale → sold exactly once, via the buy
// transition; items are never deleted.
const (
	StatusForSale = "for_sale"
	StatusSold    = "sold"
)

// Item is a single listing. Image holds only the stored filename of an
// uploaded picture and is absent when none was provided — substituting a
// placeholder is a display concern, not stored data. Description is the
// sole search key for items.
type Item struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// ForSale reports whether the item can still be bought.
func (i *Item) ForSale() bool {
	return i.Status == StatusForSale
}
