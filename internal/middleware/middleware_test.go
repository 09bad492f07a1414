package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"example.com/clyqfeed/internal/logger"
	"example.com/clyqfeed/internal/metrics"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

// generate JWT token for test user
func makeTestJWT(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString(secret)
	require.NoError(t, err)
	return tokenStr
}

// echoAuthor writes the resolved author or "-" when none was set.
var echoAuthor = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	author, ok := AuthorFromContext(r.Context())
	if !ok {
		author = "-"
	}
	w.Write([]byte(author))
})

func serveIdentity(secret []byte, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	Identity(secret)(echoAuthor).ServeHTTP(rec, req)
	return rec
}

func TestIdentity(t *testing.T) {
	valid := makeTestJWT(t, testSecret, jwt.MapClaims{
		"username": "alex",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	expired := makeTestJWT(t, testSecret, jwt.MapClaims{
		"username": "alex",
		"exp":      time.Now().Add(-time.Hour).Unix(),
	})
	wrongSecret := makeTestJWT(t, []byte("other"), jwt.MapClaims{"username": "alex"})
	noUsername := makeTestJWT(t, testSecret, jwt.MapClaims{"user_id": "42"})

	tests := []struct {
		name       string
		secret     []byte
		header     string
		wantAuthor string
	}{
		{"valid token", testSecret, "Bearer " + valid, "alex"},
		{"lowercase scheme", testSecret, "bearer " + valid, "alex"},
		{"no header", testSecret, "", "-"},
		{"malformed header", testSecret, "Token " + valid, "-"},
		{"expired token", testSecret, "Bearer " + expired, "-"},
		{"wrong secret", testSecret, "Bearer " + wrongSecret, "-"},
		{"missing username claim", testSecret, "Bearer " + noUsername, "-"},
		{"disabled without secret", nil, "Bearer " + valid, "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveIdentity(tt.secret, tt.header)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantAuthor, rec.Body.String())
		})
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	CORS(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
	req.Header.Set("Origin", "http://10.0.2.2:8081")
	CORS(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	})

	rec := httptest.NewRecorder()
	RequestID(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	RequestID(next).ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithOutput(&buf, "info")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	h := Chain(next, RequestID, Logging(l))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/posts", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "POST /api/posts", entry["message"])
	assert.EqualValues(t, 201, entry["status"])
	assert.NotEmpty(t, entry["request_id"])
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	m := metrics.New()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/posts", func(w http.ResponseWriter, r *http.Request) {})

	h := Metrics(m)(mux)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("GET /api/posts", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("unmatched", "GET", "404")))
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), mw("a"), mw("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b"}, order)
}
