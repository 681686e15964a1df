package checkout

import (
	"fmt"
	"time"

	"outfitorbit/models"
)

// Action is a user or system event applied to a State.
type Action interface {
	apply(State) (State, error)
}

type (
	// SelectAddress picks the delivery address.
	SelectAddress struct{ ID string }
	// SelectDelivery picks the shipping tier.
	SelectDelivery struct{ Method models.DeliveryMethod }
	// SelectPayment picks how the order will be paid.
	SelectPayment struct{ Method models.PaymentMethod }
	// ContinueToPayment moves Address → Payment.
	ContinueToPayment struct{}
	// BackToAddress moves Payment → Address.
	BackToAddress struct{}
	// BeginOrder marks the order as being submitted at At.
	BeginOrder struct{ At time.Time }
	// OrderSucceeded completes the submission and moves to Confirmation.
	OrderSucceeded struct{ OrderID string }
	// OrderFailed ends the submission and keeps the buyer on Payment.
	OrderFailed struct{ Reason string }
	// Restart throws the wizard away and begins again.
	Restart struct{}
)

// Reduce applies a to s. When the action is rejected the returned state equals s.
func Reduce(s State, a Action) (State, error) {
	next, err := a.apply(s)
	if err != nil {
		return s, err
	}
	return next, nil
}

func guardEditable(s State) error {
	if s.Processing {
		return ErrOrderInFlight
	}
	if s.Done() {
		return ErrCheckoutDone
	}
	return nil
}

func (a SelectAddress) apply(s State) (State, error) {
	if err := guardEditable(s); err != nil {
		return s, err
	}
	s.AddressID = a.ID
	s.LastError = ""
	return s, nil
}

func (a SelectDelivery) apply(s State) (State, error) {
	if err := guardEditable(s); err != nil {
		return s, err
	}
	if !a.Method.Valid() {
		return s, fmt.Errorf("%w: %q", ErrUnknownDelivery, a.Method)
	}
	s.Delivery = a.Method
	return s, nil
}

func (a SelectPayment) apply(s State) (State, error) {
	if err := guardEditable(s); err != nil {
		return s, err
	}
	if !a.Method.Valid() {
		return s, fmt.Errorf("%w: %q", ErrUnknownPayment, a.Method)
	}
	s.Payment = a.Method
	return s, nil
}

func (ContinueToPayment) apply(s State) (State, error) {
	if s.Step != StepAddress {
		return s, ErrWrongStep
	}
	if !s.HasAddress() {
		return s, ErrAddressRequired
	}
	s.Step = StepPayment
	s.LastError = ""
	return s, nil
}

func (BackToAddress) apply(s State) (State, error) {
	if s.Step != StepPayment {
		return s, ErrWrongStep
	}
	if s.Processing {
		return s, ErrOrderInFlight
	}
	s.Step = StepAddress
	return s, nil
}

func (a BeginOrder) apply(s State) (State, error) {
	if s.Processing {
		return s, ErrOrderInFlight
	}
	if s.Step != StepPayment {
		return s, ErrWrongStep
	}
	// the address may have been cleared after continuing
	if !s.HasAddress() {
		return s, ErrAddressRequired
	}
	s.Processing = true
	at := a.At
	s.Since = &at
	s.LastError = ""
	return s, nil
}

func (a OrderSucceeded) apply(s State) (State, error) {
	if !s.Processing {
		return s, ErrWrongStep
	}
	s.Processing = false
	s.Since = nil
	s.Step = StepConfirmation
	s.OrderID = a.OrderID
	return s, nil
}

func (a OrderFailed) apply(s State) (State, error) {
	if !s.Processing {
		return s, ErrWrongStep
	}
	s.Processing = false
	s.Since = nil
	s.LastError = a.Reason
	return s, nil
}

func (Restart) apply(s State) (State, error) {
	if s.Processing {
		return s, ErrOrderInFlight
	}
	return NewState(), nil
}
