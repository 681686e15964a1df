// Package orders turns a checkout submission into a stored order.
package orders

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"outfitorbit/addresses"
	"outfitorbit/checkout"
	"outfitorbit/globals"
	"outfitorbit/models"
	"outfitorbit/mq"
	"outfitorbit/pricing"
	"outfitorbit/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// AddressBook looks up a user's saved address.
type AddressBook interface {
	Get(ctx context.Context, userID, addressID string) (models.Address, error)
}

// OrderService places and serves orders.
type OrderService struct {
	store     Store
	addresses AddressBook
	events    mq.Emitter
	storeName string
	now       func() time.Time
}

func NewOrderService(store Store, addresses AddressBook, events mq.Emitter, storeName string) *OrderService {
	return &OrderService{
		store:     store,
		addresses: addresses,
		events:    events,
		storeName: storeName,
		now:       time.Now,
	}
}

func reject(format string, args ...any) error {
	return fmt.Errorf("%w: %s", checkout.ErrOrderRejected, fmt.Sprintf(format, args...))
}

// SubmitOrder satisfies checkout.OrderSubmitter. Prices are recomputed here; whatever
// the buyer saw is only a preview.
func (s *OrderService) SubmitOrder(ctx context.Context, sub checkout.Submission) (string, error) {
	if len(sub.Items) == 0 {
		return "", fmt.Errorf("%w: %w", checkout.ErrOrderRejected, checkout.ErrEmptyCart)
	}
	for _, it := range sub.Items {
		if it.Quantity < 1 || it.Price < 0 {
			return "", reject("invalid quantity or price for %s", it.Product.Name)
		}
	}
	if !sub.Delivery.Valid() {
		return "", reject("unknown delivery method %q", sub.Delivery)
	}
	if !sub.Payment.Valid() {
		return "", reject("unknown payment method %q", sub.Payment)
	}

	addr, err := s.addresses.Get(ctx, sub.UserID, sub.AddressID)
	if errors.Is(err, addresses.ErrNotFound) {
		return "", reject("the selected address is no longer available")
	}
	if err != nil {
		return "", fmt.Errorf("load address: %w", err)
	}

	now := s.now()
	order := models.Order{
		OrderID:       utils.NewOrderID(),
		UserID:        sub.UserID,
		Items:         sub.Items,
		Address:       addr,
		Delivery:      sub.Delivery,
		PaymentMethod: sub.Payment,
		Pricing:       pricing.Calculate(sub.Items, sub.Delivery),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if sub.Payment == models.PaymentCOD {
		order.Status = models.OrderConfirmed
		order.PaymentStatus = models.PaymentPendingCOD
	} else {
		order.Status = models.OrderPlaced
		order.PaymentStatus = models.PaymentAwaiting
	}

	if err := s.store.Insert(ctx, order); err != nil {
		return "", err
	}

	s.events.Emit(ctx, models.OrderEvent{
		Type:    mq.OrderPlaced,
		OrderID: order.OrderID,
		UserID:  order.UserID,
		Status:  order.Status,
		Total:   order.Pricing.Total,
		ItemIDs: order.ItemIDs(),
	})
	globals.Log.Info("order stored",
		zap.String("order", order.OrderID),
		zap.String("payment", string(order.PaymentMethod)),
		zap.Int64("total", order.Pricing.Total))
	return order.OrderID, nil
}

// ownedOrder loads an order and checks it belongs to the requester. It writes the
// error response itself and reports whether the caller should continue.
func (s *OrderService) ownedOrder(w http.ResponseWriter, r *http.Request, orderID string) (models.Order, bool) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return models.Order{}, false
	}
	o, err := s.store.Get(r.Context(), orderID)
	if errors.Is(err, ErrNotFound) || (err == nil && o.UserID != userID) {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return models.Order{}, false
	}
	if err != nil {
		globals.Log.Error("load order", zap.String("order", orderID), zap.Error(err))
		http.Error(w, "Could not retrieve order", http.StatusInternalServerError)
		return models.Order{}, false
	}
	return o, true
}

// GetOrder serves GET /api/v1/orders/:orderid.
func (s *OrderService) GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	o, ok := s.ownedOrder(w, r, ps.ByName("orderid"))
	if !ok {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, o)
}

// ListOrders serves GET /api/v1/orders, newest first.
func (s *OrderService) ListOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		globals.Log.Error("ListOrders", zap.String("user", userID), zap.Error(err))
		http.Error(w, "Could not retrieve orders", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// Invoice serves GET /api/v1/orders/:orderid/invoice as a PDF.
func (s *OrderService) Invoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	o, ok := s.ownedOrder(w, r, ps.ByName("orderid"))
	if !ok {
		return
	}
	pdf, err := RenderInvoice(s.storeName, o)
	if err != nil {
		globals.Log.Error("render invoice", zap.String("order", o.OrderID), zap.Error(err))
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=invoice-"+o.OrderID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
