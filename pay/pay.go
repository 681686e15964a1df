// Package pay connects gateway orders to storefront orders: widget options,
// callback verification, failed attempts and UPI QR codes.
package pay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"outfitorbit/globals"
	"outfitorbit/models"
	"outfitorbit/mq"
	"outfitorbit/orders"
	"outfitorbit/pricing"
	"outfitorbit/rdx"
	"outfitorbit/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// lockTTL bounds how long one order is held while a payment is being recorded.
const lockTTL = 5 * time.Second

var (
	ErrNotPayable   = errors.New("order is not awaiting payment")
	ErrOrderMissing = errors.New("order not found")
)

// PaymentService handles gateway payments for orders.
type PaymentService struct {
	orders   orders.Store
	gateway  Gateway
	txns     TxnStore
	locker   rdx.Locker
	events   mq.Emitter
	settings Settings
	now      func() time.Time
}

func NewPaymentService(store orders.Store, gateway Gateway, txns TxnStore, locker rdx.Locker, events mq.Emitter, settings Settings) *PaymentService {
	return &PaymentService{
		orders:   store,
		gateway:  gateway,
		txns:     txns,
		locker:   locker,
		events:   events,
		settings: settings,
		now:      time.Now,
	}
}

// StartPayment returns widget options for orderID. A fresh gateway order is
// created on the first call and after a failed attempt; otherwise the current
// one is reused.
func (p *PaymentService) StartPayment(ctx context.Context, userID, orderID string) (CheckoutOptions, error) {
	unlock, err := p.locker.Lock(ctx, "pay:lock:"+orderID, lockTTL)
	if err != nil {
		return CheckoutOptions{}, err
	}
	defer unlock()

	o, err := p.owned(ctx, userID, orderID)
	if err != nil {
		return CheckoutOptions{}, err
	}
	if !o.AwaitingPayment() {
		return CheckoutOptions{}, ErrNotPayable
	}
	if o.GatewayOrderID != "" && o.PaymentStatus == models.PaymentAwaiting {
		return BuildOptions(p.settings, o), nil
	}

	amount := pricing.MinorUnits(o.Pricing.Total)
	gid, err := p.gateway.CreateOrder(ctx, amount, Currency, o.OrderID, orderNotes(o))
	if err != nil {
		return CheckoutOptions{}, err
	}

	now := p.now()
	if err := p.txns.Insert(ctx, models.Transaction{
		ID:             utils.GetUUID(),
		UserID:         userID,
		OrderID:        o.OrderID,
		GatewayOrderID: gid,
		Method:         string(o.PaymentMethod),
		Amount:         amount,
		Currency:       Currency,
		Status:         models.TxnInitiated,
		CreatedAt:      now,
		UpdatedAt:      now,
		Meta:           models.Meta{"attempt": o.Attempts + 1},
	}); err != nil {
		return CheckoutOptions{}, err
	}

	o, err = p.orders.Update(ctx, o.OrderID, bson.M{
		"gatewayOrderId": gid,
		"paymentStatus":  models.PaymentAwaiting,
		"attempts":       o.Attempts + 1,
	})
	if err != nil {
		return CheckoutOptions{}, err
	}
	globals.Log.Info("gateway order created",
		zap.String("order", o.OrderID), zap.String("gateway_order", gid), zap.Int("attempt", o.Attempts))
	return BuildOptions(p.settings, o), nil
}

// Callback is what the widget reports on success.
type Callback struct {
	GatewayOrderID string `json:"razorpay_order_id"`
	PaymentID      string `json:"razorpay_payment_id"`
	Signature      string `json:"razorpay_signature"`
}

// ErrBadSignature means the callback was not signed by the gateway.
var ErrBadSignature = errors.New("payment verification failed")

// Verify records a successful payment once its signature checks out. Verifying
// an already paid order with the same payment id returns it unchanged.
func (p *PaymentService) Verify(ctx context.Context, userID, orderID string, cb Callback) (models.Order, error) {
	unlock, err := p.locker.Lock(ctx, "pay:lock:"+orderID, lockTTL)
	if err != nil {
		return models.Order{}, err
	}
	defer unlock()

	o, err := p.owned(ctx, userID, orderID)
	if err != nil {
		return o, err
	}
	if o.PaymentStatus == models.PaymentPaid {
		if o.PaymentID == cb.PaymentID {
			return o, nil
		}
		return o, ErrNotPayable
	}
	if !o.AwaitingPayment() || o.GatewayOrderID == "" {
		return o, ErrNotPayable
	}
	if cb.GatewayOrderID != o.GatewayOrderID || cb.PaymentID == "" {
		return o, fmt.Errorf("%w: callback does not match order", ErrBadSignature)
	}

	if !VerifySignature(p.settings.KeySecret, cb.GatewayOrderID, cb.PaymentID, cb.Signature) {
		failed, ferr := p.markFailed(ctx, o, "signature mismatch")
		if ferr != nil {
			return o, ferr
		}
		return failed, ErrBadSignature
	}

	if err := p.txns.Settle(ctx, o.GatewayOrderID, models.TxnSuccess, bson.M{"payment_id": cb.PaymentID}); err != nil {
		return o, err
	}
	o, err = p.orders.Update(ctx, o.OrderID, bson.M{
		"status":        models.OrderConfirmed,
		"paymentStatus": models.PaymentPaid,
		"paymentId":     cb.PaymentID,
	})
	if err != nil {
		return o, err
	}

	p.events.Emit(ctx, models.OrderEvent{
		Type:    mq.OrderPaid,
		OrderID: o.OrderID,
		UserID:  o.UserID,
		Status:  o.Status,
		Total:   o.Pricing.Total,
		ItemIDs: o.ItemIDs(),
	})
	globals.Log.Info("payment verified", zap.String("order", o.OrderID), zap.String("payment", cb.PaymentID))
	return o, nil
}

// Fail records a failed attempt reported by the widget. The order stays payable.
func (p *PaymentService) Fail(ctx context.Context, userID, orderID, reason string) (models.Order, error) {
	unlock, err := p.locker.Lock(ctx, "pay:lock:"+orderID, lockTTL)
	if err != nil {
		return models.Order{}, err
	}
	defer unlock()

	o, err := p.owned(ctx, userID, orderID)
	if err != nil {
		return o, err
	}
	if !o.AwaitingPayment() {
		return o, ErrNotPayable
	}
	if o.PaymentStatus == models.PaymentFailed {
		return o, nil
	}
	return p.markFailed(ctx, o, reason)
}

func (p *PaymentService) markFailed(ctx context.Context, o models.Order, reason string) (models.Order, error) {
	if o.GatewayOrderID != "" {
		if err := p.txns.Settle(ctx, o.GatewayOrderID, models.TxnFailed, bson.M{"reason": reason}); err != nil {
			return o, err
		}
	}
	o, err := p.orders.Update(ctx, o.OrderID, bson.M{"paymentStatus": models.PaymentFailed})
	if err != nil {
		return o, err
	}
	p.events.Emit(ctx, models.OrderEvent{
		Type:    mq.OrderPaymentFailed,
		OrderID: o.OrderID,
		UserID:  o.UserID,
		Status:  o.Status,
		Total:   o.Pricing.Total,
		ItemIDs: o.ItemIDs(),
	})
	globals.Log.Warn("payment failed", zap.String("order", o.OrderID), zap.String("reason", reason))
	return o, nil
}

// Transactions lists the gateway attempts for an order, newest first.
func (p *PaymentService) Transactions(ctx context.Context, userID, orderID string) ([]models.Transaction, error) {
	if _, err := p.owned(ctx, userID, orderID); err != nil {
		return nil, err
	}
	return p.txns.ListByOrder(ctx, orderID)
}

func (p *PaymentService) owned(ctx context.Context, userID, orderID string) (models.Order, error) {
	o, err := p.orders.Get(ctx, orderID)
	if errors.Is(err, orders.ErrNotFound) || (err == nil && o.UserID != userID) {
		return models.Order{}, ErrOrderMissing
	}
	return o, err
}

// statusFor maps service errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrOrderMissing):
		return http.StatusNotFound
	case errors.Is(err, ErrNotPayable):
		return http.StatusConflict
	case errors.Is(err, ErrBadSignature):
		return http.StatusBadRequest
	case errors.Is(err, rdx.ErrLocked):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrGateway):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
