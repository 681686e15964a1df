package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"outfitorbit/db"
	"outfitorbit/models"
	"outfitorbit/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrItemNotFound is returned when a cart line does not exist for the user.
var ErrItemNotFound = errors.New("cart item not found")

// Store persists cart lines per user.
type Store interface {
	Items(ctx context.Context, userID string) ([]models.CartItem, error)
	// Add merges the line into an existing line of the same variant, or inserts it.
	Add(ctx context.Context, item models.CartItem) (models.CartItem, error)
	SetQuantity(ctx context.Context, userID, itemID string, qty int) error
	Remove(ctx context.Context, userID, itemID string) error
	// RemoveMany deletes the given lines and leaves the rest of the cart alone.
	RemoveMany(ctx context.Context, userID string, itemIDs []string) error
}

// MongoStore keeps the cart in db.CartCollection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore() *MongoStore {
	return &MongoStore{coll: db.CartCollection}
}

func (m *MongoStore) Items(ctx context.Context, userID string) ([]models.CartItem, error) {
	opts := options.Find().SetSort(bson.M{"addedAt": 1})
	cursor, err := m.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find cart: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.CartItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	return items, nil
}

func (m *MongoStore) Add(ctx context.Context, item models.CartItem) (models.CartItem, error) {
	filter := bson.M{
		"userId":            item.UserID,
		"product.productid": item.Product.ID,
		"size":              item.Size,
		"color.name":        item.Color.Name,
	}
	update := bson.M{
		"$inc": bson.M{"quantity": item.Quantity},
		"$set": bson.M{"price": item.Price},
		"$setOnInsert": bson.M{
			"itemid":           utils.GetUUID(),
			"product.name":     item.Product.Name,
			"product.image":    item.Product.Image,
			"product.category": item.Product.Category,
			"color.value":      item.Color.Value,
			"addedAt":          time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var out models.CartItem
	if err := m.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return models.CartItem{}, fmt.Errorf("upsert cart item: %w", err)
	}
	return out, nil
}

func (m *MongoStore) SetQuantity(ctx context.Context, userID, itemID string, qty int) error {
	res, err := m.coll.UpdateOne(ctx,
		bson.M{"userId": userID, "itemid": itemID},
		bson.M{"$set": bson.M{"quantity": qty}})
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (m *MongoStore) Remove(ctx context.Context, userID, itemID string) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"userId": userID, "itemid": itemID})
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (m *MongoStore) RemoveMany(ctx context.Context, userID string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	filter := bson.M{"userId": userID, "itemid": bson.M{"$in": itemIDs}}
	if _, err := m.coll.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("remove ordered lines: %w", err)
	}
	return nil
}
