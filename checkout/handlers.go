package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"outfitorbit/addresses"
	"outfitorbit/globals"
	"outfitorbit/models"
	"outfitorbit/pricing"
	"outfitorbit/rdx"
	"outfitorbit/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AddressBook is the read side of the user's saved addresses.
type AddressBook interface {
	List(ctx context.Context, userID string) ([]models.Address, error)
	Get(ctx context.Context, userID, addressID string) (models.Address, error)
}

// CheckoutService exposes the controller over HTTP.
type CheckoutService struct {
	ctl       *Controller
	cart      CartSource
	addresses AddressBook
}

func NewCheckoutService(ctl *Controller, cart CartSource, addresses AddressBook) *CheckoutService {
	return &CheckoutService{ctl: ctl, cart: cart, addresses: addresses}
}

// Overview is everything the checkout page renders.
type Overview struct {
	State     State                 `json:"state"`
	Items     []models.CartItem     `json:"items"`
	Addresses []models.Address      `json:"addresses"`
	Pricing   models.PriceBreakdown `json:"pricing"`
}

// Load reads the state, the cart and the address book concurrently.
func (c *CheckoutService) Load(ctx context.Context, userID string) (Overview, error) {
	var ov Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ov.State, err = c.ctl.State(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		ov.Items, err = c.cart.Items(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		ov.Addresses, err = c.addresses.List(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	if ov.Items == nil {
		ov.Items = []models.CartItem{}
	}
	if ov.Addresses == nil {
		ov.Addresses = []models.Address{}
	}
	ov.Pricing = pricing.Calculate(ov.Items, ov.State.Delivery)
	return ov, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrOrderFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrAddressRequired), errors.Is(err, ErrUnknownDelivery), errors.Is(err, ErrUnknownPayment):
		return http.StatusBadRequest
	case errors.Is(err, ErrWrongStep), errors.Is(err, ErrOrderInFlight), errors.Is(err, ErrCheckoutDone):
		return http.StatusConflict
	case errors.Is(err, rdx.ErrLocked):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func (c *CheckoutService) respond(w http.ResponseWriter, userID string, s State, err error) {
	if err == nil {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"state": s})
		return
	}
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		globals.Log.Error("checkout", zap.String("user", userID), zap.Error(err))
		utils.RespondWithError(w, code, "checkout is unavailable, please try again")
		return
	}
	msg := err.Error()
	if errors.Is(err, ErrOrderFailed) {
		msg = s.LastError
	}
	utils.RespondWithJSON(w, code, utils.M{"error": msg, "state": s})
}

// GetCheckout serves GET /api/v1/checkout.
func (c *CheckoutService) GetCheckout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	ov, err := c.Load(ctx, userID)
	if err != nil {
		globals.Log.Error("load checkout", zap.String("user", userID), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "could not load checkout")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, ov)
}

// action adapts a request decoder into a handler that dispatches one Action.
func (c *CheckoutService) action(decode func(r *http.Request) (Action, error)) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		userID := utils.GetUserIDFromRequest(r)
		if userID == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		a, err := decode(r)
		if errors.Is(err, errBadBody) || errors.Is(err, addresses.ErrNotFound) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			globals.Log.Error("checkout request", zap.String("user", userID), zap.Error(err))
			utils.RespondWithError(w, http.StatusInternalServerError, "checkout is unavailable, please try again")
			return
		}
		s, err := c.ctl.Dispatch(r.Context(), userID, a)
		c.respond(w, userID, s, err)
	}
}

var errBadBody = errors.New("invalid request body")

func decodeInto(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadBody
	}
	return nil
}

// SelectAddress serves POST /api/v1/checkout/address.
func (c *CheckoutService) SelectAddress(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	c.action(func(r *http.Request) (Action, error) {
		var body struct {
			AddressID string `json:"addressId"`
		}
		if err := decodeInto(r, &body); err != nil {
			return nil, err
		}
		// ids the user does not own are refused; an empty id clears the selection
		if body.AddressID != "" {
			_, err := c.addresses.Get(r.Context(), utils.GetUserIDFromRequest(r), body.AddressID)
			if errors.Is(err, addresses.ErrNotFound) {
				return nil, err
			}
			if err != nil {
				return nil, fmt.Errorf("look up address %s: %w", body.AddressID, err)
			}
		}
		return SelectAddress{ID: body.AddressID}, nil
	})(w, r, ps)
}

// SelectDelivery serves POST /api/v1/checkout/delivery.
func (c *CheckoutService) SelectDelivery(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	c.action(func(r *http.Request) (Action, error) {
		var body struct {
			Method models.DeliveryMethod `json:"deliveryMethod"`
		}
		if err := decodeInto(r, &body); err != nil {
			return nil, err
		}
		return SelectDelivery{Method: body.Method}, nil
	})(w, r, ps)
}

// SelectPayment serves POST /api/v1/checkout/payment.
func (c *CheckoutService) SelectPayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	c.action(func(r *http.Request) (Action, error) {
		var body struct {
			Method models.PaymentMethod `json:"paymentMethod"`
		}
		if err := decodeInto(r, &body); err != nil {
			return nil, err
		}
		return SelectPayment{Method: body.Method}, nil
	})(w, r, ps)
}

func fixed(a Action) func(*http.Request) (Action, error) {
	return func(*http.Request) (Action, error) { return a, nil }
}

// Continue serves POST /api/v1/checkout/continue.
func (c *CheckoutService) Continue(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	c.action(fixed(ContinueToPayment{}))(w, r, ps)
}

// Back serves POST /api/v1/checkout/back.
func (c *CheckoutService) Back(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	c.action(fixed(BackToAddress{}))(w, r, ps)
}

// Restart serves POST /api/v1/checkout/restart.
func (c *CheckoutService) Restart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	c.action(fixed(Restart{}))(w, r, ps)
}

// PlaceOrder serves POST /api/v1/checkout/place-order. A failed submission
// answers 422 with the state left on Payment.
func (c *CheckoutService) PlaceOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	s, err := c.ctl.PlaceOrder(r.Context(), userID)
	if err == nil {
		utils.RespondWithJSON(w, http.StatusCreated, utils.M{"state": s, "orderId": s.OrderID})
		return
	}
	c.respond(w, userID, s, err)
}
