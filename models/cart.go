package models

import "time"

// Color is the variant colour picked for a cart line.
type Color struct {
	Name  string `json:"name" bson:"name"`
	Value string `json:"value" bson:"value"` // hex, e.g. "#FFFFFF"
}

// ProductRef is the slice of a product that a cart line carries around.
type ProductRef struct {
	ID       string `json:"_id" bson:"productid"`
	Name     string `json:"name" bson:"name"`
	Image    string `json:"image,omitempty" bson:"image,omitempty"`
	Category string `json:"category,omitempty" bson:"category,omitempty"`
}

// CartItem represents a single line in the user's cart.
type CartItem struct {
	ID       string     `json:"_id" bson:"itemid"`
	UserID   string     `json:"userId,omitempty" bson:"userId"`
	Product  ProductRef `json:"product" bson:"product"`
	Quantity int        `json:"quantity" bson:"quantity"`
	Size     string     `json:"size" bson:"size"`
	Color    Color      `json:"color" bson:"color"`
	Price    int64      `json:"price" bson:"price"` // unit price, whole rupees
	AddedAt  time.Time  `json:"addedAt" bson:"addedAt"`
}

// LineTotal is the unit price times the quantity.
func (c CartItem) LineTotal() int64 {
	return c.Price * int64(c.Quantity)
}

// SameVariant reports whether two lines describe the same purchasable variant.
func (c CartItem) SameVariant(o CartItem) bool {
	return c.Product.ID == o.Product.ID && c.Size == o.Size && c.Color.Name == o.Color.Name
}
