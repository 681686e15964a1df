package models

// AddressType tags an address as home, work or other.
type AddressType string

const (
	AddressHome  AddressType = "home"
	AddressWork  AddressType = "work"
	AddressOther AddressType = "other"
)

// Address is a saved delivery address. Checkout only reads these.
type Address struct {
	ID        string      `json:"id" bson:"addressid"`
	UserID    string      `json:"userId,omitempty" bson:"userId"`
	FullName  string      `json:"fullName" bson:"fullName"`
	Phone     string      `json:"phoneNumber" bson:"phoneNumber"`
	Line1     string      `json:"addressLine1" bson:"addressLine1"`
	Line2     string      `json:"addressLine2,omitempty" bson:"addressLine2,omitempty"`
	City      string      `json:"city" bson:"city"`
	State     string      `json:"state" bson:"state"`
	Pincode   string      `json:"pincode" bson:"pincode"`
	Country   string      `json:"country" bson:"country"`
	Type      AddressType `json:"addressType" bson:"addressType"`
	IsDefault bool        `json:"isDefault" bson:"isDefault"`
}
