// Package addresses exposes the buyer's saved delivery addresses. Checkout only reads them.
package addresses

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"outfitorbit/db"
	"outfitorbit/globals"
	"outfitorbit/models"
	"outfitorbit/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("address not found")

type Store interface {
	// List returns the user's addresses, default first.
	List(ctx context.Context, userID string) ([]models.Address, error)
	Get(ctx context.Context, userID, addressID string) (models.Address, error)
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore() *MongoStore {
	return &MongoStore{coll: db.AddressCollection}
}

func (m *MongoStore) List(ctx context.Context, userID string) ([]models.Address, error) {
	opts := options.Find().SetSort(bson.D{{Key: "isDefault", Value: -1}, {Key: "addressid", Value: 1}})
	cursor, err := m.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find addresses: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.Address{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("read addresses: %w", err)
	}
	return out, nil
}

func (m *MongoStore) Get(ctx context.Context, userID, addressID string) (models.Address, error) {
	var a models.Address
	err := m.coll.FindOne(ctx, bson.M{"userId": userID, "addressid": addressID}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return a, ErrNotFound
	}
	if err != nil {
		return a, fmt.Errorf("find address: %w", err)
	}
	return a, nil
}

// AddressService serves the address endpoints.
type AddressService struct {
	Store Store
}

func (s *AddressService) ListAddresses(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	list, err := s.Store.List(ctx, userID)
	if err != nil {
		globals.Log.Error("ListAddresses", zap.String("user", userID), zap.Error(err))
		http.Error(w, "Could not retrieve addresses", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

func (s *AddressService) GetAddress(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	a, err := s.Store.Get(ctx, userID, ps.ByName("id"))
	if errors.Is(err, ErrNotFound) {
		utils.RespondWithError(w, http.StatusNotFound, "Address not found")
		return
	}
	if err != nil {
		globals.Log.Error("GetAddress", zap.String("user", userID), zap.Error(err))
		http.Error(w, "Could not retrieve address", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, a)
}
