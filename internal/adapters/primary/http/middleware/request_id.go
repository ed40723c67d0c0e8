package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	// RequestIDKey is the context key the logging middleware and handlers
	// read the request id from.
	RequestIDKey contextKey = "request_id"

	// RequestIDHeader carries the id between services. The CRUD service
	// forwards its own id when publishing events, so one user action can be
	// traced from its REST call through to the websocket frames it caused.
	RequestIDHeader = "X-Request-ID"
)

// RequestID assigns every request an id, honoring one supplied by the
// caller. The id is echoed on the response and attached to the request
// context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request id from the context, or "" when the
// middleware did not run.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
