package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	CartCollection        *mongo.Collection
	AddressCollection     *mongo.Collection
	ProductCollection     *mongo.Collection
	OrderCollection       *mongo.Collection
	TransactionCollection *mongo.Collection
	IdempotencyCollection *mongo.Collection
	Client                *mongo.Client
)

// Connect opens the MongoDB client and binds the collections.
func Connect(ctx context.Context, uri, database string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var err error
	Client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := Client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping MongoDB: %w", err)
	}

	d := Client.Database(database)
	CartCollection = d.Collection("cart")
	AddressCollection = d.Collection("addresses")
	ProductCollection = d.Collection("products")
	OrderCollection = d.Collection("orders")
	TransactionCollection = d.Collection("transactions")
	IdempotencyCollection = d.Collection("idempotency")
	return nil
}

// CreateIndexes sets up the lookup indexes the handlers rely on.
func CreateIndexes(ctx context.Context) error {
	specs := map[*mongo.Collection][]mongo.IndexModel{
		CartCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "itemid", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		AddressCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "addressid", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ProductCollection: {
			{Keys: bson.M{"productid": 1}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		OrderCollection: {
			{Keys: bson.M{"orderid": 1}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		TransactionCollection: {
			{Keys: bson.M{"orderid": 1}},
		},
		IdempotencyCollection: {
			{Keys: bson.M{"key": 1}, Options: options.Index().SetUnique(true).SetName("unique_key")},
			{Keys: bson.M{"expires_at": 1}, Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires_at")},
		},
	}
	for coll, idxs := range specs {
		if _, err := coll.Indexes().CreateMany(ctx, idxs); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

// Disconnect closes the client.
func Disconnect(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	return Client.Disconnect(ctx)
}

// IsDuplicateKey detects duplicate key errors from Mongo writes.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
