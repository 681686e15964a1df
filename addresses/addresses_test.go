package addresses

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"outfitorbit/models"
	"outfitorbit/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore []models.Address

func (m memStore) List(_ context.Context, userID string) ([]models.Address, error) {
	out := []models.Address{}
	for _, a := range m {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m memStore) Get(_ context.Context, userID, id string) (models.Address, error) {
	for _, a := range m {
		if a.UserID == userID && a.ID == id {
			return a, nil
		}
	}
	return models.Address{}, ErrNotFound
}

func TestAddressHandlers(t *testing.T) {
	s := &AddressService{Store: memStore{
		{ID: "addr1", UserID: "u1", FullName: "Rahul Sharma", City: "Mumbai", Type: models.AddressHome, IsDefault: true},
		{ID: "addr2", UserID: "u1", FullName: "Rahul Sharma", City: "Bangalore", Type: models.AddressWork},
		{ID: "addr3", UserID: "u2"},
	}}
	router := httprouter.New()
	router.GET("/addresses", s.ListAddresses)
	router.GET("/addresses/:id", s.GetAddress)

	get := func(target, user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if user != "" {
			req = req.WithContext(utils.WithUserID(req.Context(), user))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := get("/addresses", "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Address
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	rec = get("/addresses/addr2", "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bangalore")

	assert.Equal(t, http.StatusNotFound, get("/addresses/addr3", "u1").Code)
	assert.Equal(t, http.StatusUnauthorized, get("/addresses", "").Code)
}
