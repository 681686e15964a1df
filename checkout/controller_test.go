package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"outfitorbit/models"
	"outfitorbit/rdx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeCart struct {
	items []models.CartItem
	err   error
}

func (f fakeCart) Items(context.Context, string) ([]models.CartItem, error) {
	return f.items, f.err
}

type fakeSubmitter struct {
	mu      sync.Mutex
	got     []Submission
	orderID string
	err     error
	block   chan struct{}
}

func (f *fakeSubmitter) SubmitOrder(ctx context.Context, sub Submission) (string, error) {
	f.mu.Lock()
	f.got = append(f.got, sub)
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.orderID, f.err
}

var cartLines = []models.CartItem{
	{ID: "1", Product: models.ProductRef{ID: "p1"}, Quantity: 2, Price: 1899},
	{ID: "2", Product: models.ProductRef{ID: "p2"}, Quantity: 1, Price: 899},
}

func newTestController(sub *fakeSubmitter, cart fakeCart) (*Controller, *MemorySessions) {
	sessions := NewMemorySessions()
	return NewController(sessions, rdx.NewLocalLocker(), sub, cart), sessions
}

func readyForPayment(t *testing.T, c *Controller, user string) {
	t.Helper()
	ctx := context.Background()
	_, err := c.Dispatch(ctx, user, SelectAddress{ID: "addr1"})
	require.NoError(t, err)
	_, err = c.Dispatch(ctx, user, SelectDelivery{Method: models.DeliveryExpress})
	require.NoError(t, err)
	_, err = c.Dispatch(ctx, user, ContinueToPayment{})
	require.NoError(t, err)
}

func TestDispatchPersists(t *testing.T) {
	c, sessions := newTestController(&fakeSubmitter{}, fakeCart{})
	ctx := context.Background()

	s, err := c.Dispatch(ctx, "u1", SelectAddress{ID: "addr1"})
	require.NoError(t, err)
	assert.Equal(t, "addr1", s.AddressID)

	saved, _ := sessions.Load(ctx, "u1")
	assert.Equal(t, s, saved)

	other, _ := c.State(ctx, "u2")
	assert.Equal(t, NewState(), other)
}

func TestDispatchRejectionIsNotSaved(t *testing.T) {
	c, sessions := newTestController(&fakeSubmitter{}, fakeCart{})
	ctx := context.Background()

	s, err := c.Dispatch(ctx, "u1", ContinueToPayment{})
	require.ErrorIs(t, err, ErrAddressRequired)
	assert.Equal(t, StepAddress, s.Step)

	saved, _ := sessions.Load(ctx, "u1")
	assert.Equal(t, StepAddress, saved.Step)
}

func TestPlaceOrderSuccess(t *testing.T) {
	sub := &fakeSubmitter{orderID: "OD100001"}
	c, _ := newTestController(sub, fakeCart{items: cartLines})
	readyForPayment(t, c, "u1")

	s, err := c.PlaceOrder(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, StepConfirmation, s.Step)
	assert.Equal(t, "OD100001", s.OrderID)
	assert.False(t, s.Processing)

	require.Len(t, sub.got, 1)
	assert.Equal(t, Submission{
		UserID:    "u1",
		AddressID: "addr1",
		Delivery:  models.DeliveryExpress,
		Payment:   models.PaymentGateway,
		Items:     cartLines,
	}, sub.got[0])
}

func TestPlaceOrderRejected(t *testing.T) {
	sub := &fakeSubmitter{err: fmt.Errorf("%w: item p2 is out of stock", ErrOrderRejected)}
	c, _ := newTestController(sub, fakeCart{items: cartLines})
	readyForPayment(t, c, "u1")

	s, err := c.PlaceOrder(context.Background(), "u1")
	require.ErrorIs(t, err, ErrOrderFailed)
	assert.Equal(t, StepPayment, s.Step)
	assert.False(t, s.Processing)
	assert.Equal(t, "item p2 is out of stock", s.LastError)

	// the buyer can go back after a failure
	s, err = c.Dispatch(context.Background(), "u1", BackToAddress{})
	require.NoError(t, err)
	assert.Equal(t, StepAddress, s.Step)
}

func TestPlaceOrderInternalErrorIsHidden(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("mongo: connection reset")}
	c, _ := newTestController(sub, fakeCart{items: cartLines})
	readyForPayment(t, c, "u1")

	s, err := c.PlaceOrder(context.Background(), "u1")
	require.ErrorIs(t, err, ErrOrderFailed)
	assert.NotContains(t, s.LastError, "mongo")
	assert.NotEmpty(t, s.LastError)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	sub := &fakeSubmitter{orderID: "never"}
	c, _ := newTestController(sub, fakeCart{})
	readyForPayment(t, c, "u1")

	s, err := c.PlaceOrder(context.Background(), "u1")
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, StepPayment, s.Step)
	assert.Equal(t, ErrEmptyCart.Error(), s.LastError)
	assert.Empty(t, sub.got)
}

func TestPlaceOrderTimeout(t *testing.T) {
	sub := &fakeSubmitter{block: make(chan struct{})}
	defer close(sub.block)
	c, _ := newTestController(sub, fakeCart{items: cartLines})
	c.SubmitTimeout = 20 * time.Millisecond
	readyForPayment(t, c, "u1")

	s, err := c.PlaceOrder(context.Background(), "u1")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StepPayment, s.Step)
	assert.False(t, s.Processing)
}

func TestPlaceOrderOnlyOnce(t *testing.T) {
	sub := &fakeSubmitter{orderID: "OD1", block: make(chan struct{})}
	c, _ := newTestController(sub, fakeCart{items: cartLines})
	readyForPayment(t, c, "u1")

	done := make(chan error, 1)
	go func() {
		_, err := c.PlaceOrder(context.Background(), "u1")
		done <- err
	}()

	require.Eventually(t, func() bool {
		s, _ := c.State(context.Background(), "u1")
		return s.Processing
	}, time.Second, 5*time.Millisecond)

	_, err := c.PlaceOrder(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrOrderInFlight)

	close(sub.block)
	require.NoError(t, <-done)
	assert.Len(t, sub.got, 1)
}

func TestStaleProcessingIsRecovered(t *testing.T) {
	c, sessions := newTestController(&fakeSubmitter{}, fakeCart{})
	ctx := context.Background()
	s := atPayment()
	s.Processing = true
	since := time.Now().Add(-time.Hour)
	s.Since = &since
	require.NoError(t, sessions.Save(ctx, "u1", s))

	got, err := c.State(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, got.Processing)
	assert.NotEmpty(t, got.LastError)

	got, err = c.Dispatch(ctx, "u1", BackToAddress{})
	require.NoError(t, err)
	assert.Equal(t, StepAddress, got.Step)
}

func TestSubmitFuture(t *testing.T) {
	res := <-Submit(context.Background(), &fakeSubmitter{orderID: "OD9"}, Submission{})
	assert.Equal(t, Result{OrderID: "OD9"}, res)
}
