package globals

import (
	"go.uber.org/zap"
)

var (
	// JwtSecret verifies bearer tokens. Overwritten from JWT_SECRET by LoadConfig.
	JwtSecret = []byte("your_secret_key")

	// Log is the process logger. main replaces it once config is loaded.
	Log = zap.NewNop()
)

// Context keys
type ContextKey string

const RoleKey ContextKey = "role"
const UserIDKey ContextKey = "userId"
