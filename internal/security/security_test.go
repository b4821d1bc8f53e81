package security

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestCorrelationID(t *testing.T) {
	var seen string
	h := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CorrelationIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(CorrelationIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIDHeader, "bad id\n")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "bad id\n", seen)
	assert.Len(t, seen, 36)

	assert.Equal(t, "x", NormalizeCorrelationID("x"))
	assert.Len(t, NormalizeCorrelationID(strings.Repeat("a", 200)), 36)
}

func TestBodySizeLimit(t *testing.T) {
	h := BodySizeLimit(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`)))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

const amountSchema = `{
  "type": "object",
  "required": ["amount"],
  "properties": {"amount": {"type": "string", "pattern": "^[0-9]+(\\.[0-9]{1,2})?$"}},
  "additionalProperties": false
}`

func TestJSONSchemaValidator(t *testing.T) {
	v, err := NewJSONSchemaValidator("amount", amountSchema)
	require.NoError(t, err)
	h := CorrelationID(v.Middleware(okHandler))

	cases := []struct {
		body string
		code int
		err  string
	}{
		{`{"amount":"10.50"}`, http.StatusNoContent, ""},
		{`{"amount":10}`, http.StatusBadRequest, "validation_error"},
		{`{"amount":"1.234"}`, http.StatusBadRequest, "validation_error"},
		{`{"amount":"1","extra":true}`, http.StatusBadRequest, "validation_error"},
		{`{"amount":`, http.StatusBadRequest, "invalid_json"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body)))
		require.Equal(t, tc.code, rec.Code, tc.body)
		if tc.err != "" {
			body := decodeError(t, rec)
			assert.Equal(t, tc.err, body.Error)
			assert.NotEmpty(t, body.CorrelationID)
		}
	}

	_, err = NewJSONSchemaValidator("broken", `{"type": 12}`)
	assert.Error(t, err)
}

func TestRateLimitMiddleware(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	bucket := NewRedisTokenBucket(client, "test", 2, 0.001)
	h := RateLimitMiddleware(bucket, KeyByIP)(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	mr.Close()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.3:5555"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDisabledRateLimiterAllows(t *testing.T) {
	var bucket *RedisTokenBucket
	d, err := bucket.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestIPAllowlist(t *testing.T) {
	allow, err := ParseCIDRAllowlist("10.0.0.0/8, 192.168.1.7")
	require.NoError(t, err)
	require.Len(t, allow, 2)

	h := IPAllowlist(allow)(okHandler)
	for addr, want := range map[string]int{
		"10.1.2.3:80":    http.StatusNoContent,
		"192.168.1.7:80": http.StatusNoContent,
		"192.168.1.8:80": http.StatusForbidden,
		"[::1]:80":       http.StatusForbidden,
		"garbage":        http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, addr)
	}

	_, err = ParseCIDRAllowlist("10.0.0.0/33")
	assert.Error(t, err)

	open := IPAllowlist(nil)(okHandler)
	rec := httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
