package checkout

import (
	"encoding/json"
	"testing"
	"time"

	"outfitorbit/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func atPayment() State {
	s := NewState()
	s.AddressID = "addr1"
	s.Step = StepPayment
	return s
}

func TestNewState(t *testing.T) {
	s := NewState()
	assert.Equal(t, StepAddress, s.Step)
	assert.Equal(t, models.DeliveryStandard, s.Delivery)
	assert.Equal(t, models.PaymentGateway, s.Payment)
	assert.False(t, s.Processing)
	assert.False(t, s.HasAddress())
}

func TestContinueWithoutAddressKeepsStep(t *testing.T) {
	s := NewState()
	next, err := Reduce(s, ContinueToPayment{})
	require.ErrorIs(t, err, ErrAddressRequired)
	assert.Equal(t, s, next)
	assert.Equal(t, StepAddress, next.Step)
}

func TestContinueWithAddress(t *testing.T) {
	s, err := Reduce(NewState(), SelectAddress{ID: "addr2"})
	require.NoError(t, err)
	s, err = Reduce(s, ContinueToPayment{})
	require.NoError(t, err)
	assert.Equal(t, StepPayment, s.Step)
	assert.Equal(t, "addr2", s.AddressID)
}

func TestBackToAddressIsUnconditional(t *testing.T) {
	s := atPayment()
	s.AddressID = ""
	next, err := Reduce(s, BackToAddress{})
	require.NoError(t, err)
	assert.Equal(t, StepAddress, next.Step)
}

func TestBackFromAddressIsRejected(t *testing.T) {
	_, err := Reduce(NewState(), BackToAddress{})
	assert.ErrorIs(t, err, ErrWrongStep)
}

func TestSelections(t *testing.T) {
	s, err := Reduce(NewState(), SelectDelivery{Method: models.DeliveryExpress})
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryExpress, s.Delivery)

	s, err = Reduce(s, SelectPayment{Method: models.PaymentCOD})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCOD, s.Payment)

	_, err = Reduce(s, SelectDelivery{Method: "drone"})
	assert.ErrorIs(t, err, ErrUnknownDelivery)
	_, err = Reduce(s, SelectPayment{Method: "barter"})
	assert.ErrorIs(t, err, ErrUnknownPayment)
}

func TestPlaceOrderTransitions(t *testing.T) {
	at := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	s, err := Reduce(atPayment(), BeginOrder{At: at})
	require.NoError(t, err)
	assert.True(t, s.Processing)
	require.NotNil(t, s.Since)
	assert.Equal(t, at, *s.Since)

	t.Run("second begin is rejected", func(t *testing.T) {
		again, err := Reduce(s, BeginOrder{At: at})
		assert.ErrorIs(t, err, ErrOrderInFlight)
		assert.Equal(t, s, again)
	})

	t.Run("selections are frozen while processing", func(t *testing.T) {
		_, err := Reduce(s, SelectAddress{ID: "other"})
		assert.ErrorIs(t, err, ErrOrderInFlight)
		_, err = Reduce(s, BackToAddress{})
		assert.ErrorIs(t, err, ErrOrderInFlight)
		_, err = Reduce(s, Restart{})
		assert.ErrorIs(t, err, ErrOrderInFlight)
	})

	t.Run("success confirms", func(t *testing.T) {
		done, err := Reduce(s, OrderSucceeded{OrderID: "OD123456"})
		require.NoError(t, err)
		assert.Equal(t, StepConfirmation, done.Step)
		assert.Equal(t, "OD123456", done.OrderID)
		assert.False(t, done.Processing)
		assert.Nil(t, done.Since)

		_, err = Reduce(done, SelectPayment{Method: models.PaymentCOD})
		assert.ErrorIs(t, err, ErrCheckoutDone)

		fresh, err := Reduce(done, Restart{})
		require.NoError(t, err)
		assert.Equal(t, NewState(), fresh)
	})

	t.Run("failure stays on payment", func(t *testing.T) {
		failed, err := Reduce(s, OrderFailed{Reason: "card declined"})
		require.NoError(t, err)
		assert.Equal(t, StepPayment, failed.Step)
		assert.False(t, failed.Processing)
		assert.Equal(t, "card declined", failed.LastError)
	})
}

func TestBeginOrderNeedsPaymentStep(t *testing.T) {
	s := NewState()
	s.AddressID = "addr1"
	_, err := Reduce(s, BeginOrder{})
	assert.ErrorIs(t, err, ErrWrongStep)
}

func TestOutcomeWithoutBegin(t *testing.T) {
	_, err := Reduce(atPayment(), OrderSucceeded{OrderID: "x"})
	assert.ErrorIs(t, err, ErrWrongStep)
	_, err = Reduce(atPayment(), OrderFailed{})
	assert.ErrorIs(t, err, ErrWrongStep)
}

func TestIsRejection(t *testing.T) {
	assert.True(t, IsRejection(ErrAddressRequired))
	assert.True(t, IsRejection(ErrOrderInFlight))
	assert.False(t, IsRejection(assert.AnError))
}

func TestProcessingSinceOnlyWhileProcessing(t *testing.T) {
	idle, err := json.Marshal(NewState())
	require.NoError(t, err)
	assert.NotContains(t, string(idle), "processingSince")

	at := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	s, err := Reduce(atPayment(), BeginOrder{At: at})
	require.NoError(t, err)
	busy, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(busy), `"processingSince":"2025-01-01T10:00:00Z"`)

	var back State
	require.NoError(t, json.Unmarshal(busy, &back))
	require.NotNil(t, back.Since)
	assert.True(t, at.Equal(*back.Since))

	failed, err := Reduce(s, OrderFailed{Reason: "card declined"})
	require.NoError(t, err)
	out, err := json.Marshal(failed)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "processingSince")
}
