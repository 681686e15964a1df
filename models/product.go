package models

import "time"

// Product is a catalogue entry as returned by the listing endpoint.
type Product struct {
	ProductID     string    `json:"_id" bson:"productid"`
	Name          string    `json:"name" bson:"name"`
	Description   string    `json:"description,omitempty" bson:"description,omitempty"`
	Category      string    `json:"category" bson:"category"`
	Price         int64     `json:"price" bson:"price"`
	OriginalPrice int64     `json:"originalPrice,omitempty" bson:"originalPrice,omitempty"`
	Images        []string  `json:"images" bson:"images"`
	Sizes         []string  `json:"sizes,omitempty" bson:"sizes,omitempty"`
	Colors        []Color   `json:"colors,omitempty" bson:"colors,omitempty"`
	Rating        float64   `json:"rating" bson:"rating"`
	Reviews       int       `json:"reviews" bson:"reviews"`
	Badge         string    `json:"badge,omitempty" bson:"badge,omitempty"` // bestseller, new, sale, premium
	InStock       bool      `json:"inStock" bson:"inStock"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

// Ref trims a product down to what a cart line keeps.
func (p Product) Ref() ProductRef {
	ref := ProductRef{ID: p.ProductID, Name: p.Name, Category: p.Category}
	if len(p.Images) > 0 {
		ref.Image = p.Images[0]
	}
	return ref
}

// Pagination describes one page of a listing.
type Pagination struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalProducts int64 `json:"totalProducts"`
	HasNextPage   bool  `json:"hasNextPage"`
	HasPrevPage   bool  `json:"hasPrevPage"`
}

// ProductListing is the data part of the listing envelope.
type ProductListing struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
	Category   string     `json:"category"`
}

// ListingEnvelope is the wire shape of GET /api/products/:category.
type ListingEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    *ProductListing `json:"data,omitempty"`
}
