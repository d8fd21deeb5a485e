package middleware

import (
	"log/slog"
	"net/http"

	"github.com/openshelf/storefront/pkg/logger"
)

// SessionUserID reports the authenticated shopper's user ID for request-scoped
// logging. Satisfied by the session store; may be nil when no session exists.
type SessionUserID interface {
	UserID() string
}

// RequestLogger builds a request-scoped logger enriched with correlation_id,
// user_id, trace_id, and span_id, and stores it in context via
// logger.NewContext. Downstream handlers retrieve it with logger.FromContext.
//
// Mount AFTER RequestLogging, which sets the correlation ID.
func RequestLogger(base *slog.Logger, session SessionUserID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if session != nil {
				if id := session.UserID(); id != "" {
					ctx = logger.WithUserID(ctx, id)
				}
			}

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
