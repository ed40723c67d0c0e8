package http

import (
	"context"

	"github.com/waxhands/workshop-backend/internal/adapters/primary/http/middleware"
)

// GetRequestID retrieves the request ID set by the RequestID middleware.
func GetRequestID(ctx context.Context) string {
	return middleware.GetRequestID(ctx)
}
