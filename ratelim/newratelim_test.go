package ratelim

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func ok(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusNoContent)
}

func hit(h httprouter.Handle, addr string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/place-order", nil)
	req.RemoteAddr = addr
	rec := httptest.NewRecorder()
	h(rec, req, nil)
	return rec.Code
}

func TestLimitPerIP(t *testing.T) {
	rl := NewRateLimiter(6, 2)
	h := rl.Limit(ok)

	assert.Equal(t, http.StatusNoContent, hit(h, "10.0.0.1:5000"))
	assert.Equal(t, http.StatusNoContent, hit(h, "10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:5002"))

	// other clients have their own bucket
	assert.Equal(t, http.StatusNoContent, hit(h, "10.0.0.2:5000"))
}

func TestIdleVisitorsAreDropped(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.getLimiter("10.0.0.1")
	rl.getLimiter("10.0.0.2")
	assert.Len(t, rl.visitors, 2)

	now = now.Add(idleAfter + time.Minute)
	rl.getLimiter("10.0.0.3")
	assert.Len(t, rl.visitors, 1)
	assert.Contains(t, rl.visitors, "10.0.0.3")
}
