// Package storefront is a Go client for the public catalogue listing.
package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"outfitorbit/models"
)

// ErrListingFailed means the server answered but reported success=false.
// The caller shows a full page error; retrying is calling ListProducts again.
var ErrListingFailed = errors.New("failed to fetch products")

// Query selects one page of a category.
type Query struct {
	Category  string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		v.Set("sortOrder", q.SortOrder)
	}
	return v
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// ListProducts fetches GET /api/products/:category.
func (c *Client) ListProducts(ctx context.Context, q Query) (models.ProductListing, error) {
	if q.Category == "" {
		return models.ProductListing{}, errors.New("category is required")
	}
	u := c.BaseURL + "/api/products/" + url.PathEscape(q.Category)
	if qs := q.values().Encode(); qs != "" {
		u += "?" + qs
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.ProductListing{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return models.ProductListing{}, fmt.Errorf("list %s: %w", q.Category, err)
	}
	defer resp.Body.Close()

	var env models.ListingEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&env); err != nil {
		return models.ProductListing{}, fmt.Errorf("%w: status %d: %v", ErrListingFailed, resp.StatusCode, err)
	}
	if !env.Success || env.Data == nil {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return models.ProductListing{}, fmt.Errorf("%w: %s", ErrListingFailed, msg)
	}
	return *env.Data, nil
}
