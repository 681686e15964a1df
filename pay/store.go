package pay

import (
	"context"
	"fmt"
	"time"

	"outfitorbit/db"
	"outfitorbit/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TxnStore records gateway payment attempts.
type TxnStore interface {
	Insert(ctx context.Context, t models.Transaction) error
	// Settle moves the attempt for gatewayOrderID out of the initiated state.
	Settle(ctx context.Context, gatewayOrderID, state string, set bson.M) error
	ListByOrder(ctx context.Context, orderID string) ([]models.Transaction, error)
}

// IdempotencyStore keeps the first response given for an Idempotency-Key.
type IdempotencyStore interface {
	// Reserve claims rec.Key. When the key is already taken it returns the
	// existing record instead.
	Reserve(ctx context.Context, rec models.IdempotencyRecord) (*models.IdempotencyRecord, error)
	Complete(ctx context.Context, key string, status int, body []byte) error
}

type MongoTxnStore struct {
	coll *mongo.Collection
}

func NewMongoTxnStore() *MongoTxnStore {
	return &MongoTxnStore{coll: db.TransactionCollection}
}

func (m *MongoTxnStore) Insert(ctx context.Context, t models.Transaction) error {
	if _, err := m.coll.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (m *MongoTxnStore) Settle(ctx context.Context, gatewayOrderID, state string, set bson.M) error {
	upd := bson.M{"state": state, "updated_at": time.Now()}
	for k, v := range set {
		upd[k] = v
	}
	_, err := m.coll.UpdateOne(ctx,
		bson.M{"gateway_order_id": gatewayOrderID, "state": models.TxnInitiated},
		bson.M{"$set": upd},
	)
	if err != nil {
		return fmt.Errorf("settle transaction %s: %w", gatewayOrderID, err)
	}
	return nil
}

func (m *MongoTxnStore) ListByOrder(ctx context.Context, orderID string) ([]models.Transaction, error) {
	cur, err := m.coll.Find(ctx, bson.M{"orderid": orderID}, options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(50))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	txns := []models.Transaction{}
	if err := cur.All(ctx, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

type MongoIdempotencyStore struct {
	coll *mongo.Collection
}

func NewMongoIdempotencyStore() *MongoIdempotencyStore {
	return &MongoIdempotencyStore{coll: db.IdempotencyCollection}
}

func (m *MongoIdempotencyStore) Reserve(ctx context.Context, rec models.IdempotencyRecord) (*models.IdempotencyRecord, error) {
	_, err := m.coll.InsertOne(ctx, rec)
	if err == nil {
		return nil, nil
	}
	if !db.IsDuplicateKey(err) {
		return nil, fmt.Errorf("reserve idempotency key: %w", err)
	}
	var existing models.IdempotencyRecord
	if err := m.coll.FindOne(ctx, bson.M{"key": rec.Key}).Decode(&existing); err != nil {
		return nil, fmt.Errorf("load idempotency key: %w", err)
	}
	return &existing, nil
}

func (m *MongoIdempotencyStore) Complete(ctx context.Context, key string, status int, body []byte) error {
	_, err := m.coll.UpdateOne(ctx,
		bson.M{"key": key},
		bson.M{"$set": bson.M{"status_code": status, "body": body}},
	)
	return err
}
