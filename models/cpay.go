package models

import (
	"time"
)

// Meta is a generic key-value map for transaction metadata
type Meta map[string]interface{}

// Transaction records one gateway payment attempt for an order
type Transaction struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	UserID         string    `bson:"userid,omitempty" json:"userid,omitempty"`
	OrderID        string    `bson:"orderid" json:"orderid"`
	GatewayOrderID string    `bson:"gateway_order_id,omitempty" json:"gateway_order_id,omitempty"`
	PaymentID      string    `bson:"payment_id,omitempty" json:"payment_id,omitempty"`
	Method         string    `bson:"method" json:"method"` // razorpay, cod
	Amount         int64     `bson:"amount" json:"amount"` // minor units
	Currency       string    `bson:"currency" json:"currency"`
	Status         string    `bson:"state" json:"state"` // initiated, success, failed
	Reason         string    `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
	IdempotencyKey string    `bson:"external_ref,omitempty" json:"external_ref,omitempty"`
	Meta           Meta      `bson:"meta,omitempty" json:"meta,omitempty"`
}

// Transaction states.
const (
	TxnInitiated = "initiated"
	TxnSuccess   = "success"
	TxnFailed    = "failed"
)

// IdempotencyRecord represents an idempotency key record stored in Mongo.
type IdempotencyRecord struct {
	Key         string    `bson:"key" json:"key"`
	Method      string    `bson:"method" json:"method"`
	Path        string    `bson:"path" json:"path"`
	UserID      string    `bson:"userid" json:"userid"`
	RequestHash string    `bson:"request_hash" json:"request_hash"`
	StatusCode  int       `bson:"status_code" json:"status_code"`
	Body        []byte    `bson:"body,omitempty" json:"body,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	ExpiresAt   time.Time `bson:"expires_at" json:"expires_at"`
}
