package pay

import (
	"outfitorbit/models"
	"outfitorbit/pricing"
)

// Currency is the only currency the storefront sells in.
const Currency = "INR"

// Settings is the merchant side of the widget configuration.
type Settings struct {
	KeyID      string
	KeySecret  string
	StoreName  string
	ThemeColor string
	UPIPayee   string
}

type Prefill struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type Theme struct {
	Color string `json:"color"`
}

// CheckoutOptions is what the browser hands to the gateway widget. The widget
// posts its result back to the verify or failure endpoint.
type CheckoutOptions struct {
	Key         string            `json:"key"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	OrderID     string            `json:"order_id"`
	Prefill     Prefill           `json:"prefill"`
	Notes       map[string]string `json:"notes"`
	Theme       Theme             `json:"theme"`
	CallbackURL string            `json:"callback_url,omitempty"`
}

// BuildOptions fills the widget config for o. o.GatewayOrderID must be set.
func BuildOptions(s Settings, o models.Order) CheckoutOptions {
	return CheckoutOptions{
		Key:         s.KeyID,
		Amount:      pricing.MinorUnits(o.Pricing.Total),
		Currency:    Currency,
		Name:        s.StoreName,
		Description: "Payment for order " + o.OrderID,
		OrderID:     o.GatewayOrderID,
		Prefill: Prefill{
			Name:    o.Address.FullName,
			Contact: o.Address.Phone,
		},
		Notes:       orderNotes(o),
		Theme:       Theme{Color: s.ThemeColor},
		CallbackURL: "/api/v1/pay/" + o.OrderID + "/verify",
	}
}

func orderNotes(o models.Order) map[string]string {
	return map[string]string{
		"order_id": o.OrderID,
		"user_id":  o.UserID,
	}
}
