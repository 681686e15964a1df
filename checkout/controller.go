package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"outfitorbit/globals"
	"outfitorbit/models"
	"outfitorbit/rdx"

	"go.uber.org/zap"
)

// Submission is what the controller sends to the order backend.
type Submission struct {
	UserID    string                `json:"userId"`
	AddressID string                `json:"addressId"`
	Delivery  models.DeliveryMethod `json:"deliveryMethod"`
	Payment   models.PaymentMethod  `json:"paymentMethod"`
	Items     []models.CartItem     `json:"items"`
}

// OrderSubmitter places an order and returns its id.
// Errors wrapping ErrOrderRejected carry a message meant for the buyer.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, sub Submission) (string, error)
}

// CartSource supplies the lines being checked out.
type CartSource interface {
	Items(ctx context.Context, userID string) ([]models.CartItem, error)
}

// Result is the outcome of an asynchronous submission.
type Result struct {
	OrderID string
	Err     error
}

// Submit starts the submission in the background. The channel yields exactly one Result.
func Submit(ctx context.Context, s OrderSubmitter, sub Submission) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		id, err := s.SubmitOrder(ctx, sub)
		ch <- Result{OrderID: id, Err: err}
	}()
	return ch
}

const (
	lockTTL        = 5 * time.Second
	lockRetries    = 40
	lockRetryDelay = 25 * time.Millisecond
)

// Controller applies actions to each user's persisted checkout state.
type Controller struct {
	sessions SessionStore
	locker   rdx.Locker
	orders   OrderSubmitter
	cart     CartSource

	// SubmitTimeout bounds one order submission.
	SubmitTimeout time.Duration
	// StaleAfter is how long a processing flag may stay set before it is
	// treated as an interrupted submission.
	StaleAfter time.Duration

	now func() time.Time
}

func NewController(sessions SessionStore, locker rdx.Locker, orders OrderSubmitter, cart CartSource) *Controller {
	return &Controller{
		sessions:      sessions,
		locker:        locker,
		orders:        orders,
		cart:          cart,
		SubmitTimeout: 20 * time.Second,
		StaleAfter:    2 * time.Minute,
		now:           time.Now,
	}
}

// State returns the user's current checkout state.
func (c *Controller) State(ctx context.Context, userID string) (State, error) {
	s, err := c.sessions.Load(ctx, userID)
	if err != nil {
		return State{}, err
	}
	return c.recoverStale(s), nil
}

// Dispatch applies one action. A rejected action returns the unchanged state and
// the rejection; nothing is saved in that case.
func (c *Controller) Dispatch(ctx context.Context, userID string, a Action) (State, error) {
	var out State
	err := c.withLock(ctx, userID, func() error {
		s, err := c.sessions.Load(ctx, userID)
		if err != nil {
			return err
		}
		s = c.recoverStale(s)
		next, rerr := Reduce(s, a)
		out = next
		if rerr != nil {
			return rerr
		}
		return c.sessions.Save(ctx, userID, next)
	})
	return out, err
}

// PlaceOrder runs Payment → Confirmation. It marks the state as processing, submits
// the order and records the outcome. On failure the state stays on Payment with
// LastError set and the returned error wraps ErrOrderFailed.
func (c *Controller) PlaceOrder(ctx context.Context, userID string) (State, error) {
	started, err := c.Dispatch(ctx, userID, BeginOrder{At: c.now()})
	if err != nil {
		return started, err
	}

	orderID, subErr := c.submit(ctx, userID, started)

	// the outcome is recorded even when the caller has gone away
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	var outcome Action = OrderSucceeded{OrderID: orderID}
	if subErr != nil {
		outcome = OrderFailed{Reason: buyerReason(subErr)}
		globals.Log.Warn("order submission failed",
			zap.String("user", userID), zap.Error(subErr))
	} else {
		globals.Log.Info("order placed",
			zap.String("user", userID), zap.String("order", orderID))
	}

	final, err := c.Dispatch(finishCtx, userID, outcome)
	if err != nil {
		return final, fmt.Errorf("record order outcome: %w", err)
	}
	if subErr != nil {
		return final, fmt.Errorf("%w: %w", ErrOrderFailed, subErr)
	}
	return final, nil
}

func (c *Controller) submit(ctx context.Context, userID string, s State) (string, error) {
	items, err := c.cart.Items(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return "", fmt.Errorf("%w: %w", ErrOrderRejected, ErrEmptyCart)
	}

	// a buyer closing the tab does not abandon an order mid-write; only the timeout does
	subCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.SubmitTimeout)
	defer cancel()

	pending := Submit(subCtx, c.orders, Submission{
		UserID:    userID,
		AddressID: s.AddressID,
		Delivery:  s.Delivery,
		Payment:   s.Payment,
		Items:     items,
	})
	select {
	case res := <-pending:
		return res.OrderID, res.Err
	case <-subCtx.Done():
		return "", subCtx.Err()
	}
}

func (c *Controller) recoverStale(s State) State {
	if !s.Processing || s.Since == nil || c.now().Sub(*s.Since) < c.StaleAfter {
		return s
	}
	next, _ := Reduce(s, OrderFailed{Reason: "order submission was interrupted, please try again"})
	return next
}

func (c *Controller) withLock(ctx context.Context, userID string, fn func() error) error {
	key := "checkout:lock:" + userID
	for i := 0; ; i++ {
		unlock, err := c.locker.Lock(ctx, key, lockTTL)
		if err == nil {
			defer unlock()
			return fn()
		}
		if !errors.Is(err, rdx.ErrLocked) || i >= lockRetries {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}
}

func buyerReason(err error) string {
	switch {
	case errors.Is(err, ErrOrderRejected):
		return unwrapReason(err)
	case errors.Is(err, context.DeadlineExceeded):
		return "placing the order took too long, please try again"
	case errors.Is(err, context.Canceled):
		return "order submission was cancelled"
	}
	return "we could not place your order, please try again"
}

// unwrapReason drops the ErrOrderRejected prefix from the message.
func unwrapReason(err error) string {
	return strings.TrimPrefix(err.Error(), ErrOrderRejected.Error()+": ")
}
