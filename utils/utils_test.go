package utils

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQueryOptions(t *testing.T) {
	tests := []struct {
		query string
		want  QueryOptions
	}{
		{"", QueryOptions{Page: 1, Limit: 12, SortBy: "createdAt", SortOrder: "desc"}},
		{"?page=3&limit=24&sortBy=-price&sortOrder=ASC", QueryOptions{Page: 3, Limit: 24, SortBy: "-price", SortOrder: "asc"}},
		{"?page=-2&limit=500", QueryOptions{Page: 1, Limit: MaxPageSize, SortBy: "createdAt", SortOrder: "desc"}},
		{"?page=x&limit=0&sortOrder=sideways", QueryOptions{Page: 1, Limit: 12, SortBy: "createdAt", SortOrder: "desc"}},
	}
	for _, tt := range tests {
		got := ParseQueryOptions(httptest.NewRequest("GET", "/api/products/shirts"+tt.query, nil))
		assert.Equal(t, tt.want, got, tt.query)
	}
}

func TestSkip(t *testing.T) {
	assert.Equal(t, int64(0), QueryOptions{Page: 1, Limit: 12}.Skip())
	assert.Equal(t, int64(24), QueryOptions{Page: 3, Limit: 12}.Skip())
}

func TestNewOrderID(t *testing.T) {
	re := regexp.MustCompile(`^OD\d{6}-[0-9a-f]{6}$`)
	a, b := NewOrderID(), NewOrderID()
	assert.Regexp(t, re, a)
	assert.NotEqual(t, a, b)
}

func TestRespondWithJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithJSON(rec, http.StatusCreated, M{"orderId": "OD123456"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, ContentTypeJSON, rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"orderId":"OD123456"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	RespondWithError(rec, http.StatusBadRequest, "address not found")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"address not found"}`, rec.Body.String())
}

func TestRespondWithJSONUnencodable(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithJSON(rec, http.StatusOK, M{"bad": make(chan int)})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to encode response"}`, rec.Body.String())
}
