package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"outfitorbit/globals"
	"outfitorbit/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, userID string, exp time.Time, key []byte) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Role:   []string{"user"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func whoami(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Write([]byte(utils.GetUserIDFromRequest(r)))
}

func TestAuthenticate(t *testing.T) {
	globals.JwtSecret = []byte("test-secret")
	good := sign(t, "u1", time.Now().Add(time.Hour), globals.JwtSecret)

	tests := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"valid", "Bearer " + good, http.StatusOK, "u1"},
		{"missing", "", http.StatusUnauthorized, ""},
		{"no scheme", good, http.StatusUnauthorized, ""},
		{"expired", "Bearer " + sign(t, "u1", time.Now().Add(-time.Minute), globals.JwtSecret), http.StatusUnauthorized, ""},
		{"wrong key", "Bearer " + sign(t, "u1", time.Now().Add(time.Hour), []byte("other")), http.StatusUnauthorized, ""},
		{"no user", "Bearer " + sign(t, "", time.Now().Add(time.Hour), globals.JwtSecret), http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			Authenticate(whoami)(rec, req, nil)
			assert.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	globals.JwtSecret = []byte("test-secret")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	OptionalAuth(whoami)(rec, req, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, "u7", time.Now().Add(time.Hour), globals.JwtSecret))
	rec = httptest.NewRecorder()
	OptionalAuth(whoami)(rec, req, nil)
	assert.Equal(t, "u7", rec.Body.String())
}

func TestValidateJWT(t *testing.T) {
	globals.JwtSecret = []byte("test-secret")
	claims, err := ValidateJWT("Bearer " + sign(t, "u1", time.Now().Add(time.Hour), globals.JwtSecret))
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, []string{"user"}, claims.Role)

	_, err = ValidateJWT("short")
	assert.Error(t, err)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next httprouter.Handle) httprouter.Handle {
			return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
				order = append(order, name)
				next(w, r, ps)
			}
		}
	}
	h := Chain(mark("a"), mark("b"), mark("c"))(func(http.ResponseWriter, *http.Request, httprouter.Params) {
		order = append(order, "handler")
	})
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, []string{"a", "b", "c", "handler"}, order)
}
