package models

import "time"

// DeliveryMethod is the shipping tier chosen by the buyer.
type DeliveryMethod string

const (
	DeliveryStandard DeliveryMethod = "standard"
	DeliveryExpress  DeliveryMethod = "express"
)

// Valid reports whether d is a known delivery method.
func (d DeliveryMethod) Valid() bool {
	return d == DeliveryStandard || d == DeliveryExpress
}

// PaymentMethod is how the buyer settles the order.
type PaymentMethod string

const (
	PaymentGateway PaymentMethod = "razorpay" // card or UPI through the hosted widget
	PaymentCOD     PaymentMethod = "cod"
)

// Valid reports whether p is a known payment method.
func (p PaymentMethod) Valid() bool {
	return p == PaymentGateway || p == PaymentCOD
}

// PriceBreakdown is the derived price of a set of cart lines.
type PriceBreakdown struct {
	Subtotal  int64 `json:"subtotal" bson:"subtotal"`
	Shipping  int64 `json:"shipping" bson:"shipping"`
	Tax       int64 `json:"tax" bson:"tax"`
	Total     int64 `json:"total" bson:"total"`
	ItemCount int   `json:"itemCount" bson:"itemCount"`
}

// Order statuses.
const (
	OrderPlaced    = "placed"    // waiting for the gateway payment
	OrderConfirmed = "confirmed" // paid, or cash on delivery
	OrderCancelled = "cancelled"
)

// Payment statuses on an order.
const (
	PaymentAwaiting   = "awaiting_payment"
	PaymentPendingCOD = "pending_cod"
	PaymentPaid       = "paid"
	PaymentFailed     = "failed"
)

// Order represents a submitted checkout.
type Order struct {
	OrderID        string         `json:"orderId" bson:"orderid"`
	UserID         string         `json:"userId" bson:"userId"`
	Items          []CartItem     `json:"items" bson:"items"`
	Address        Address        `json:"address" bson:"address"`
	Delivery       DeliveryMethod `json:"deliveryMethod" bson:"deliveryMethod"`
	PaymentMethod  PaymentMethod  `json:"paymentMethod" bson:"paymentMethod"`
	Pricing        PriceBreakdown `json:"pricing" bson:"pricing"`
	Status         string         `json:"status" bson:"status"`
	PaymentStatus  string         `json:"paymentStatus" bson:"paymentStatus"`
	GatewayOrderID string         `json:"gatewayOrderId,omitempty" bson:"gatewayOrderId,omitempty"`
	PaymentID      string         `json:"paymentId,omitempty" bson:"paymentId,omitempty"`
	Attempts       int            `json:"attempts" bson:"attempts"`
	CreatedAt      time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// AwaitingPayment reports whether the gateway still owes us a result.
func (o *Order) AwaitingPayment() bool {
	return o.PaymentMethod == PaymentGateway &&
		(o.PaymentStatus == PaymentAwaiting || o.PaymentStatus == PaymentFailed)
}

// OrderEvent is published on the order events channel.
type OrderEvent struct {
	Type    string   `json:"type"` // order.placed, order.paid, order.payment_failed
	OrderID string   `json:"order_id"`
	UserID  string   `json:"user_id"`
	Status  string   `json:"status"`
	Total   int64    `json:"total"`
	ItemIDs []string `json:"item_ids,omitempty"` // cart lines the order was built from
}

// ItemIDs lists the cart line ids an order was placed with.
func (o Order) ItemIDs() []string {
	ids := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.ID)
	}
	return ids
}
