package products

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"outfitorbit/db"
	"outfitorbit/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a product id is unknown.
var ErrNotFound = errors.New("product not found")

// Sort is a resolved sort field and direction.
type Sort struct {
	Field string
	Desc  bool
}

// sortFields maps the accepted sortBy values to document fields.
var sortFields = map[string]string{
	"createdAt": "createdAt",
	"price":     "price",
	"rating":    "rating",
	"name":      "name",
}

// ResolveSort turns sortBy/sortOrder into a Sort. A leading "-" on sortBy means
// descending. Without a prefix, createdAt follows sortOrder and every other field
// sorts ascending, so "price" is low to high and "-price" high to low.
func ResolveSort(sortBy, sortOrder string) (Sort, error) {
	desc := strings.HasPrefix(sortBy, "-")
	key := strings.TrimPrefix(sortBy, "-")
	field, ok := sortFields[key]
	if !ok {
		return Sort{}, fmt.Errorf("unsupported sortBy %q", sortBy)
	}
	if !desc && field == "createdAt" {
		desc = sortOrder != "asc"
	}
	return Sort{Field: field, Desc: desc}, nil
}

// Page selects one slice of a listing.
type Page struct {
	Skip  int64
	Limit int64
	Sort  Sort
}

// Store reads the catalogue.
type Store interface {
	ListByCategory(ctx context.Context, category string, p Page) ([]models.Product, int64, error)
	Product(ctx context.Context, productID string) (models.Product, error)
}

// MongoStore reads products from db.ProductCollection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore() *MongoStore {
	return &MongoStore{coll: db.ProductCollection}
}

func (m *MongoStore) ListByCategory(ctx context.Context, category string, p Page) ([]models.Product, int64, error) {
	// categories are stored lower case; match the URL segment case-insensitively
	filter := bson.M{"category": bson.M{"$regex": "^" + regexp.QuoteMeta(category) + "$", "$options": "i"}}

	total, err := m.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	dir := 1
	if p.Sort.Desc {
		dir = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: p.Sort.Field, Value: dir}, {Key: "productid", Value: 1}}).
		SetSkip(p.Skip).
		SetLimit(p.Limit)

	cursor, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	list := []models.Product{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, 0, fmt.Errorf("read products: %w", err)
	}
	return list, total, nil
}

func (m *MongoStore) Product(ctx context.Context, productID string) (models.Product, error) {
	var p models.Product
	err := m.coll.FindOne(ctx, bson.M{"productid": productID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, fmt.Errorf("find product %s: %w", productID, err)
	}
	return p, nil
}
