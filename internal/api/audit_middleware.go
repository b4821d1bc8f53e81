package api

import (
	"net/http"
	"time"

	"github.com/example/retail-ledger/internal/security"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

type requestRecord struct {
	CorrelationID string `json:"cid"`
	Method        string `json:"method"`
	Path          string `json:"path"`
	Status        int    `json:"status"`
	DurationMS    int64  `json:"duration_ms"`
}

// AuditMiddleware chains every mutating request into the audit log. Reads
// are left to the request logger.
func AuditMiddleware(a Auditor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			start := time.Now()
			next.ServeHTTP(sw, r)

			_, _ = a.AppendEvent("http.request", requestRecord{
				CorrelationID: security.CorrelationIDFromContext(r.Context()),
				Method:        r.Method,
				Path:          r.URL.Path,
				Status:        sw.status,
				DurationMS:    time.Since(start).Milliseconds(),
			})
		})
	}
}
