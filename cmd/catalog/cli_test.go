package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestQuote(t *testing.T) {
	out, err := run(t, "quote", "1899x2", "899x1", "--delivery", "standard")
	require.NoError(t, err)
	assert.Contains(t, out, "4697")
	assert.Contains(t, out, "845")
	assert.Contains(t, out, "5542")

	out, err = run(t, "quote", "1899x2", "899", "--delivery", "express")
	require.NoError(t, err)
	assert.Contains(t, out, "199")
	assert.Contains(t, out, "5741")
}

func TestQuoteRejectsBadInput(t *testing.T) {
	_, err := run(t, "quote", "abcx2", "--delivery", "standard")
	assert.Error(t, err)
	_, err = run(t, "quote", "100x0", "--delivery", "standard")
	assert.Error(t, err)
	_, err = run(t, "quote", "100x1", "--delivery", "drone")
	assert.Error(t, err)
}

func TestParseItems(t *testing.T) {
	items, err := parseItems([]string{"1899x2", "899"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(1899), items[0].Price)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/shirts", r.URL.Path)
		assert.Equal(t, "-price", r.URL.Query().Get("sortBy"))
		io.WriteString(w, `{"success":true,"data":{"products":[
			{"_id":"p1","name":"Premium Linen Shirt","price":1899,"rating":4.5,"inStock":true}],
			"pagination":{"currentPage":1,"totalPages":1,"totalProducts":1,"hasNextPage":false,"hasPrevPage":false},
			"category":"Shirts"}}`)
	}))
	defer srv.Close()

	out, err := run(t, "list", "shirts", "--base-url", srv.URL, "--sort-by", "-price")
	require.NoError(t, err)
	assert.Contains(t, out, "Premium Linen Shirt")
	assert.Contains(t, out, "1899")
	assert.Contains(t, out, "Shirts: page 1 of 1 (1 products)")
}

func TestListFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"success":false,"message":"Failed to fetch products"}`)
	}))
	defer srv.Close()

	_, err := run(t, "list", "shirts", "--base-url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to fetch products")
}
