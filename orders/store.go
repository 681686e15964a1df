package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"outfitorbit/db"
	"outfitorbit/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("order not found")

// Store persists orders.
type Store interface {
	Insert(ctx context.Context, o models.Order) error
	Get(ctx context.Context, orderID string) (models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	// Update applies set to the order and returns the updated document.
	Update(ctx context.Context, orderID string, set bson.M) (models.Order, error)
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore() *MongoStore {
	return &MongoStore{coll: db.OrderCollection}
}

func (m *MongoStore) Insert(ctx context.Context, o models.Order) error {
	if _, err := m.coll.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (m *MongoStore) Get(ctx context.Context, orderID string) (models.Order, error) {
	var o models.Order
	err := m.coll.FindOne(ctx, bson.M{"orderid": orderID}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return o, ErrNotFound
	}
	if err != nil {
		return o, fmt.Errorf("find order: %w", err)
	}
	return o, nil
}

func (m *MongoStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(100)
	cursor, err := m.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.Order{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("read orders: %w", err)
	}
	return out, nil
}

func (m *MongoStore) Update(ctx context.Context, orderID string, set bson.M) (models.Order, error) {
	set["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o models.Order
	err := m.coll.FindOneAndUpdate(ctx, bson.M{"orderid": orderID}, bson.M{"$set": set}, opts).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return o, ErrNotFound
	}
	if err != nil {
		return o, fmt.Errorf("update order: %w", err)
	}
	return o, nil
}
