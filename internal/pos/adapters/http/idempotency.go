package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/dejobratic/snackbar/internal/pos/ports"
)

const idempotencyHeader = "Idempotency-Key"

// idempotencyKey scopes the client supplied key to one endpoint. It returns "" when the header is absent.
func idempotencyKey(r *http.Request, scope string) string {
	key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
	if key == "" {
		return ""
	}
	return scope + ":" + key
}

// keyLocks serialises requests carrying the same idempotency key, so the replay check and the stored
// response of one request cannot interleave with another's.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*keyLock)}
}

// lock blocks until no other request holds key and returns the matching unlock. An empty key is not
// locked.
func (k *keyLocks) lock(key string) func() {
	if key == "" {
		return func() {}
	}

	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// replay writes the response stored under key and reports whether there was one.
func (h *Handler) replay(w http.ResponseWriter, r *http.Request, key string) bool {
	if key == "" {
		return false
	}
	stored, err := h.service.GetIdempotentResponse(r.Context(), key)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to read idempotency key", "error", err)
		writeError(w, http.StatusServiceUnavailable, "idempotency store unavailable")
		return true
	}
	if stored == nil {
		return false
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(stored.StatusCode)
	_, _ = w.Write(stored.Body)
	return true
}

// respondIdempotent writes payload and, when key is set, remembers the response for replays. The
// state change has already been committed, so a failure to remember it is only logged.
func (h *Handler) respondIdempotent(w http.ResponseWriter, r *http.Request, key string, status int, resourceID string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if key != "" {
		stored := ports.StoredResponse{StatusCode: status, Body: body, ResourceID: resourceID}
		if err := h.service.SaveIdempotentResponse(r.Context(), key, stored); err != nil {
			h.logger.WarnContext(r.Context(), "failed to store idempotency key", "error", err, "resource_id", resourceID)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
