package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cpbyrne/ostaa/app/models"
	"github.com/cpbyrne/ostaa/pkg/collection"
	"github.com/cpbyrne/ostaa/pkg/database"
	"github.com/cpbyrne/ostaa/pkg/metrics"
)

// ErrAlreadySold is returned when a buy transition loses the race: the item
// exists but its status is no longer for_sale. Distinct from
// database.ErrNotFound so the route layer can answer 409 vs 404.
var ErrAlreadySold = errors.New("item already sold")

// ItemRepository handles store operations for Item documents.
type ItemRepository struct{}

func NewItemRepository() *ItemRepository {
	return &ItemRepository{}
}

func (r *ItemRepository) col() *mongo.Collection {
	return database.Collection("items")
}

// Create inserts a new item. Status defaults to for_sale; an empty Image
// stays absent in the stored document (bson omitempty), never a placeholder.
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	defer metrics.ObserveStoreOp("items.insert", time.Now())

	ctx, cancel := database.OpContext(ctx)
	defer cancel()

	if item.Status == "" {
		item.Status = models.StatusForSale
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	res, err := r.col().InsertOne(ctx, item)
	if err != nil {
		return database.MapError(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		item.ID = id
	}
	return nil
}

// Delete removes an item by id. Item documents are never deleted by any
// user-facing operation; this exists solely so item creation can roll back
// when the owner vanished between the existence check and the listings push.
func (r *ItemRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveStoreOp("items.delete", time.Now())

	ctx, cancel := database.OpContext(ctx)
	defer cancel()

	if _, err := r.col().DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return database.MapError(err)
	}
	return nil
}

// FindByID returns a single item.
func (r *ItemRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Item, error) {
	defer metrics.ObserveStoreOp("items.find", time.Now())

	ctx, cancel := database.OpContext(ctx)
	defer cancel()

	var item models.Item
	err := r.col().FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		return models.Item{}, database.MapError(err)
	}
	return item, nil
}

// FindByIDs resolves a batch of item ids in one query and returns the items
// in the order the ids were given (listings/purchases preserve insertion
// order; the $in result does not).
func (r *ItemRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Item, error) {
	defer metrics.ObserveStoreOp("items.find_batch", time.Now())

	if len(ids) == 0 {
		return []models.Item{}, nil
	}

	ctx, cancel := database.OpContext(ctx)
	defer cancel()

	cur, err := r.col().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, database.MapError(err)
	}

	var found []models.Item
	if err := cur.All(ctx, &found); err != nil {
		return nil, database.MapError(err)
	}

	byID := collection.KeyBy(found, func(it models.Item) primitive.ObjectID { return it.ID })

	ordered := make([]models.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			ordered = append(ordered, item)
		}
	}
	return ordered, nil
}

// All returns every item. Same unbounded-scan caveat as UserRepository.All.
func (r *ItemRepository) All(ctx context.Context) ([]models.Item, error) {
	defer metrics.ObserveStoreOp("items.scan", time.Now())

	ctx, cancel := database.OpContext(ctx)
	defer cancel()

	cur, err := r.col().Find(ctx, bson.M{})
	if err != nil {
		return nil, database.MapError(err)
	}

	items := []models.Item{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, database.MapError(err)
	}
	return items, nil
}

// MarkSold performs the buy transition as one conditional update: the item
// flips for_sale → sold only if it is still for_sale. Two concurrent buyers
// cannot both match; the loser gets ErrAlreadySold, a missing item gets
// database.ErrNotFound.
func (r *ItemRepository) MarkSold(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveStoreOp("items.mark_sold", time.Now())

	opCtx, cancel := database.OpContext(ctx)
	defer cancel()

	res, err := r.col().UpdateOne(opCtx,
		bson.M{"_id": id, "status": models.StatusForSale},
		bson.M{"$set": bson.M{"status": models.StatusSold}},
	)
	if err != nil {
		return database.MapError(err)
	}
	if res.ModifiedCount == 1 {
		return nil
	}

	// Zero matches: either the item never existed or someone else won.
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return ErrAlreadySold
}

// Relist reverts a sold item to for_sale. Compensation only: used when the
// buyer's purchases update failed after MarkSold succeeded, so a sold item
// never lingers without a recorded buyer.
func (r *ItemRepository) Relist(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveStoreOp("items.relist", time.Now())

	ctx, cancel := database.OpContext(ctx)
	defer cancel()

	_, err := r.col().UpdateOne(ctx,
		bson.M{"_id": id, "status": models.StatusSold},
		bson.M{"$set": bson.M{"status": models.StatusForSale}},
	)
	if err != nil {
		return database.MapError(err)
	}
	return nil
}

// Count returns the number of stored items.
func (r *ItemRepository) Count(ctx context.Context) (int64, error) {
	defer metrics.ObserveStoreOp("items.count", time.Now())

	ctx, cancel := database.OpContext(ctx)
	defer cancel()

	n, err := r.col().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, database.MapError(err)
	}
	return n, nil
}
