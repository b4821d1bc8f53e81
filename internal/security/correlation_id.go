package security

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const CorrelationIDHeader = "X-Correlation-ID"

// maxCorrelationIDLen bounds ids accepted from callers so they are safe to log.
const maxCorrelationIDLen = 128

type correlationIDKey struct{}

// CorrelationID propagates the caller's correlation id or mints a new one,
// echoing it on the response.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := NormalizeCorrelationID(r.Header.Get(CorrelationIDHeader))
		w.Header().Set(CorrelationIDHeader, cid)
		next.ServeHTTP(w, r.WithContext(WithCorrelationID(r.Context(), cid)))
	})
}

// NormalizeCorrelationID returns raw when it is a usable id, otherwise a new uuid.
func NormalizeCorrelationID(raw string) string {
	if raw == "" || len(raw) > maxCorrelationIDLen {
		return uuid.NewString()
	}
	for _, c := range raw {
		if c < 0x21 || c > 0x7e {
			return uuid.NewString()
		}
	}
	return raw
}

func WithCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, cid)
}

func CorrelationIDFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return s
	}
	return ""
}
