package utils

import (
	"context"
	"net/http"

	"outfitorbit/globals"
)

func GetUserIDFromRequest(r *http.Request) string {
	requestingUserID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok || requestingUserID == "" {
		return ""
	}
	return requestingUserID
}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, globals.UserIDKey, userID)
}
