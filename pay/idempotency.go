package pay

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"outfitorbit/globals"
	"outfitorbit/models"
	"outfitorbit/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// IdempotencyTTL is how long a stored response can be replayed.
const IdempotencyTTL = 24 * time.Hour

func computeRequestHash(r *http.Request, bodyBytes []byte, userID string) string {
	h := sha256.New()
	h.Write([]byte(r.Method + ":" + r.URL.Path + ":" + userID + ":"))
	h.Write(bodyBytes)
	return hex.EncodeToString(h.Sum(nil))
}

// CaptureResponseWriter wraps http.ResponseWriter to capture status and body.
type CaptureResponseWriter struct {
	w           http.ResponseWriter
	statusCode  int
	buf         bytes.Buffer
	wroteHeader bool
}

func NewCaptureResponseWriter(w http.ResponseWriter) *CaptureResponseWriter {
	return &CaptureResponseWriter{w: w, statusCode: http.StatusOK}
}

func (c *CaptureResponseWriter) Header() http.Header {
	return c.w.Header()
}

func (c *CaptureResponseWriter) WriteHeader(statusCode int) {
	if !c.wroteHeader {
		c.statusCode = statusCode
		c.w.WriteHeader(statusCode)
		c.wroteHeader = true
	}
}

func (c *CaptureResponseWriter) Write(b []byte) (int, error) {
	c.buf.Write(b)
	return c.w.Write(b)
}

func (c *CaptureResponseWriter) Status() int {
	return c.statusCode
}

func (c *CaptureResponseWriter) BodyBytes() []byte {
	return c.buf.Bytes()
}

// Idempotent makes a mutating handler safe to retry when the client sends an
// Idempotency-Key header.
//   - no header: pass-through.
//   - new key: run the handler and store its status and body.
//   - known key, same request, response stored: replay it.
//   - known key, same request, still running: 409.
//   - known key, different request: 409.
func Idempotent(store IdempotencyStore, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		key := r.Header.Get("Idempotency-Key")
		if key == "" {
			next(w, r, ps)
			return
		}

		userID := utils.GetUserIDFromRequest(r)

		bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		reqHash := computeRequestHash(r, bodyBytes, userID)
		now := time.Now()
		rec := models.IdempotencyRecord{
			Key:         key,
			Method:      r.Method,
			Path:        r.URL.Path,
			UserID:      userID,
			RequestHash: reqHash,
			CreatedAt:   now,
			ExpiresAt:   now.Add(IdempotencyTTL),
		}

		ctx := r.Context()
		existing, err := store.Reserve(ctx, rec)
		if err != nil {
			globals.Log.Error("idempotency reserve", zap.String("key", key), zap.Error(err))
			http.Error(w, "idempotency lookup error", http.StatusInternalServerError)
			return
		}

		if existing == nil {
			crw := NewCaptureResponseWriter(w)
			next(crw, r, ps)
			if err := store.Complete(ctx, key, crw.Status(), crw.BodyBytes()); err != nil {
				globals.Log.Warn("idempotency complete", zap.String("key", key), zap.Error(err))
			}
			return
		}

		if existing.RequestHash != reqHash {
			http.Error(w, "idempotency-key conflict", http.StatusConflict)
			return
		}
		if existing.StatusCode == 0 {
			http.Error(w, "request with this idempotency-key is still in progress", http.StatusConflict)
			return
		}

		w.Header().Set("Content-Type", utils.ContentTypeJSON)
		w.Header().Set("Idempotent-Replayed", "true")
		w.WriteHeader(existing.StatusCode)
		w.Write(existing.Body)
	}
}
