package products

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"outfitorbit/models"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	products []models.Product
	total    int64
	err      error
	gotCat   string
	gotPage  Page
}

func (f *fakeStore) ListByCategory(_ context.Context, category string, p Page) ([]models.Product, int64, error) {
	f.gotCat, f.gotPage = category, p
	return f.products, f.total, f.err
}

func (f *fakeStore) Product(_ context.Context, id string) (models.Product, error) {
	for _, p := range f.products {
		if p.ProductID == id {
			return p, nil
		}
	}
	return models.Product{}, ErrNotFound
}

func serve(s *ProductService, target string) *httptest.ResponseRecorder {
	router := httprouter.New()
	router.GET("/api/products/:category", s.ListByCategory)
	router.GET("/api/product/:productid", s.GetProduct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestResolveSort(t *testing.T) {
	tests := []struct {
		sortBy, order string
		want          Sort
	}{
		{"createdAt", "desc", Sort{"createdAt", true}},
		{"createdAt", "asc", Sort{"createdAt", false}},
		{"price", "desc", Sort{"price", false}},
		{"-price", "desc", Sort{"price", true}},
		{"-rating", "asc", Sort{"rating", true}},
		{"name", "desc", Sort{"name", false}},
	}
	for _, tt := range tests {
		got, err := ResolveSort(tt.sortBy, tt.order)
		require.NoError(t, err, tt.sortBy)
		assert.Equal(t, tt.want, got, tt.sortBy)
	}

	_, err := ResolveSort("password", "desc")
	assert.Error(t, err)
}

func TestPaginate(t *testing.T) {
	p := Paginate(2, 12, 30)
	assert.Equal(t, models.Pagination{CurrentPage: 2, TotalPages: 3, TotalProducts: 30, HasNextPage: true, HasPrevPage: true}, p)

	p = Paginate(1, 12, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNextPage)
	assert.False(t, p.HasPrevPage)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Electronics", DisplayName("electronics"))
	assert.Equal(t, "Formal Wear", DisplayName("formal_wear"))
}

func TestListByCategory(t *testing.T) {
	store := &fakeStore{
		products: []models.Product{{ProductID: "p1", Name: "Premium Linen Shirt", Price: 1899}},
		total:    13,
	}
	rec := serve(NewProductService(store), "/api/products/shirts?page=2&limit=12&sortBy=-price&sortOrder=desc")
	require.Equal(t, http.StatusOK, rec.Code)

	var env models.ListingEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	require.NotNil(t, env.Data)
	assert.Equal(t, "Shirts", env.Data.Category)
	assert.Len(t, env.Data.Products, 1)
	assert.Equal(t, models.Pagination{CurrentPage: 2, TotalPages: 2, TotalProducts: 13, HasPrevPage: true}, env.Data.Pagination)

	assert.Equal(t, "shirts", store.gotCat)
	assert.Equal(t, Page{Skip: 12, Limit: 12, Sort: Sort{"price", true}}, store.gotPage)
}

func TestListByCategoryDefaults(t *testing.T) {
	store := &fakeStore{}
	rec := serve(NewProductService(store), "/api/products/electronics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Page{Skip: 0, Limit: 12, Sort: Sort{"createdAt", true}}, store.gotPage)
	assert.JSONEq(t, `{"success":true,"data":{"products":[],"pagination":{"currentPage":1,"totalPages":0,"totalProducts":0,"hasNextPage":false,"hasPrevPage":false},"category":"Electronics"}}`, rec.Body.String())
}

func TestListByCategoryFailure(t *testing.T) {
	rec := serve(NewProductService(&fakeStore{err: errors.New("boom")}), "/api/products/shirts")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Failed to fetch products"}`, rec.Body.String())

	rec = serve(NewProductService(&fakeStore{}), "/api/products/shirts?sortBy=secret")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProduct(t *testing.T) {
	s := NewProductService(&fakeStore{products: []models.Product{{ProductID: "p1", Name: "Shirt"}}})

	rec := serve(s, "/api/product/p1")
	require.Equal(t, http.StatusOK, rec.Code)
	var p models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "Shirt", p.Name)

	rec = serve(s, "/api/product/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
