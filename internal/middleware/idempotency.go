package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	apperrors "github.com/aditya/bakshish/internal/errors"
	"github.com/aditya/bakshish/pkg/utils"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

// IdempotencyMiddleware replays the stored response when a POST, PUT or
// PATCH arrives again with the same Idempotency-Key and body. Entries are
// scoped per Authorization header so two users never share a key space.
type IdempotencyMiddleware struct {
	mu       sync.Mutex
	entries  map[string]*cachedResponse
	inFlight map[string]bool
	now      func() time.Time
}

type cachedResponse struct {
	statusCode  int
	contentType string
	body        []byte
	bodyHash    string
	expiresAt   time.Time
}

func NewIdempotencyMiddleware(now func() time.Time) *IdempotencyMiddleware {
	if now == nil {
		now = time.Now
	}
	return &IdempotencyMiddleware{
		entries:  make(map[string]*cachedResponse),
		inFlight: make(map[string]bool),
		now:      now,
	}
}

// responseWriter captures the response for caching
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

func (m *IdempotencyMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
			next.ServeHTTP(w, r)
			return
		}

		idempotencyKey := r.Header.Get(IdempotencyHeader)
		if idempotencyKey == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !utils.IsValidUUID(idempotencyKey) {
			utils.BadRequest(w, "Idempotency-Key must be a UUID.")
			return
		}

		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			utils.BadRequest(w, "failed to read request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		bodyHash := hashBody(bodyBytes)
		cacheKey := r.Header.Get("Authorization") + "|" + r.URL.Path + "|" + idempotencyKey

		cached, busy := m.acquire(cacheKey)
		if cached != nil {
			if cached.bodyHash != bodyHash {
				utils.Error(w, apperrors.IdempotencyConflict())
				return
			}
			w.Header().Set("Content-Type", cached.contentType)
			w.WriteHeader(cached.statusCode)
			w.Write(cached.body)
			return
		}
		if busy {
			utils.Error(w, apperrors.Conflict("a request with this idempotency key is already being processed"))
			return
		}
		defer m.release(cacheKey)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		// Cache successful responses (2xx)
		if rw.statusCode >= 200 && rw.statusCode < 300 {
			m.store(cacheKey, &cachedResponse{
				statusCode:  rw.statusCode,
				contentType: rw.Header().Get("Content-Type"),
				body:        rw.body.Bytes(),
				bodyHash:    bodyHash,
				expiresAt:   m.now().Add(idempotencyTTL),
			})
		}
	})
}

// acquire returns the cached response for key, or marks key as in flight.
// busy is true when another request holds the key.
func (m *IdempotencyMiddleware) acquire(key string) (cached *cachedResponse, busy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.entries[key]; ok {
		if m.now().Before(entry.expiresAt) {
			return entry, false
		}
		delete(m.entries, key)
	}
	if m.inFlight[key] {
		return nil, true
	}
	m.inFlight[key] = true
	return nil, false
}

func (m *IdempotencyMiddleware) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inFlight, key)
}

func (m *IdempotencyMiddleware) store(key string, entry *cachedResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry
}

func hashBody(body []byte) string {
	hash := sha256.Sum256(body)
	return hex.EncodeToString(hash[:])
}
