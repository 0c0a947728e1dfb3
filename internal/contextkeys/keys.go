package contextkeys

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// Caller is the context key for the authenticated domain.Caller.
	Caller contextKey = "caller"
	// UserID is the context key for the authenticated user's ID.
	UserID contextKey = "userID"
	// RequestID is the context key for the per-request correlation ID.
	RequestID contextKey = "requestID"
)
