package pay

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"outfitorbit/globals"
	"outfitorbit/models"
	"outfitorbit/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

func (p *PaymentService) fail(w http.ResponseWriter, op string, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		globals.Log.Error(op, zap.Error(err))
		utils.RespondWithJSON(w, code, utils.M{"success": false, "message": "payment service unavailable"})
		return
	}
	utils.RespondWithJSON(w, code, utils.M{"success": false, "message": err.Error()})
}

// Options serves GET /api/v1/pay/:orderid/options.
func (p *PaymentService) Options(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	opts, err := p.StartPayment(r.Context(), userID, ps.ByName("orderid"))
	if err != nil {
		p.fail(w, "StartPayment", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, opts)
}

// VerifyPayment serves POST /api/v1/pay/:orderid/verify.
func (p *PaymentService) VerifyPayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var cb Callback
	if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	o, err := p.Verify(r.Context(), userID, ps.ByName("orderid"), cb)
	if err != nil {
		p.fail(w, "Verify", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "order": o})
}

// PaymentFailed serves POST /api/v1/pay/:orderid/failure.
func (p *PaymentService) PaymentFailed(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var body struct {
		Error struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	}
	// an empty body still records the failure
	_ = json.NewDecoder(r.Body).Decode(&body)
	reason := body.Error.Description
	if reason == "" {
		reason = "payment was not completed"
	}

	o, err := p.Fail(r.Context(), userID, ps.ByName("orderid"), reason)
	if err != nil {
		p.fail(w, "Fail", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "order": o})
}

// ListTransactions serves GET /api/v1/pay/:orderid/transactions.
func (p *PaymentService) ListTransactions(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	txns, err := p.Transactions(r.Context(), userID, ps.ByName("orderid"))
	if err != nil {
		p.fail(w, "Transactions", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"transactions": txns})
}

// UPIQR serves GET /api/v1/pay/:orderid/upi-qr as a PNG for the amount due.
func (p *PaymentService) UPIQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	o, err := p.owned(r.Context(), userID, ps.ByName("orderid"))
	if err != nil {
		p.fail(w, "UPIQR", err)
		return
	}
	if !o.AwaitingPayment() && o.PaymentStatus != models.PaymentPendingCOD {
		p.fail(w, "UPIQR", ErrNotPayable)
		return
	}

	png, err := qrcode.Encode(UPIIntent(p.settings, o), qrcode.Medium, 256)
	if err != nil {
		globals.Log.Error("encode upi qr", zap.String("order", o.OrderID), zap.Error(err))
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// UPIIntent is the upi://pay link encoded in the QR code.
func UPIIntent(s Settings, o models.Order) string {
	q := url.Values{}
	q.Set("pa", s.UPIPayee)
	q.Set("pn", s.StoreName)
	q.Set("am", fmt.Sprintf("%d.00", o.Pricing.Total))
	q.Set("cu", Currency)
	q.Set("tr", o.OrderID)
	q.Set("tn", "Order "+o.OrderID)
	return (&url.URL{Scheme: "upi", Host: "pay", RawQuery: q.Encode()}).String()
}
