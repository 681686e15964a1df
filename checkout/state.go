// Package checkout drives the three step checkout wizard.
//
// All wizard state sits in a State value. Reduce is the only function that changes it;
// the Controller loads, reduces and saves that value per user and talks to the order
// submitter when the buyer places the order.
package checkout

import (
	"errors"
	"time"

	"outfitorbit/models"
)

// Step is a wizard stage.
type Step int

const (
	StepAddress      Step = 1
	StepPayment      Step = 2
	StepConfirmation Step = 3
)

func (s Step) String() string {
	switch s {
	case StepAddress:
		return "address"
	case StepPayment:
		return "payment"
	case StepConfirmation:
		return "confirmation"
	}
	return "unknown"
}

// State is one buyer's checkout progress.
type State struct {
	Step       Step                  `json:"step"`
	AddressID  string                `json:"selectedAddressId"`
	Delivery   models.DeliveryMethod `json:"deliveryMethod"`
	Payment    models.PaymentMethod  `json:"paymentMethod"`
	Processing bool                  `json:"processingOrder"`
	Since      *time.Time            `json:"processingSince,omitempty"`
	OrderID    string                `json:"orderId,omitempty"`
	LastError  string                `json:"lastError,omitempty"`
}

// NewState is the state a fresh checkout starts from.
func NewState() State {
	return State{
		Step:     StepAddress,
		Delivery: models.DeliveryStandard,
		Payment:  models.PaymentGateway,
	}
}

// HasAddress reports whether a delivery address is selected.
func (s State) HasAddress() bool {
	return s.AddressID != ""
}

// Done reports whether the wizard reached the confirmation step.
func (s State) Done() bool {
	return s.Step == StepConfirmation
}

// Editable reports whether selections may still change.
func (s State) Editable() bool {
	return !s.Done() && !s.Processing
}

// User-facing rejections. Reduce returns one of these and leaves the state as it was.
var (
	ErrAddressRequired = errors.New("please select a delivery address")
	ErrUnknownDelivery = errors.New("unknown delivery method")
	ErrUnknownPayment  = errors.New("unknown payment method")
	ErrWrongStep       = errors.New("action not allowed at this step")
	ErrOrderInFlight   = errors.New("order is already being placed")
	ErrCheckoutDone    = errors.New("order already placed; start a new checkout")
	ErrEmptyCart       = errors.New("your cart is empty")
)

// Submission outcomes.
var (
	// ErrOrderFailed wraps any failed submission returned by Controller.PlaceOrder.
	ErrOrderFailed = errors.New("order was not placed")
	// ErrOrderRejected marks submitter errors whose text is safe to show the buyer.
	ErrOrderRejected = errors.New("order rejected")
)

// IsRejection reports whether err is a user-facing refusal rather than a failure of
// the service itself.
func IsRejection(err error) bool {
	for _, target := range []error{
		ErrAddressRequired, ErrUnknownDelivery, ErrUnknownPayment, ErrWrongStep,
		ErrOrderInFlight, ErrCheckoutDone, ErrEmptyCart,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
