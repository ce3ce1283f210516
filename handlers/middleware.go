package handlers

import (
	"context"
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"simmarket/models"

	"github.com/google/uuid"
)

type ctxKey int

const (
	userKey ctxKey = iota
	requestIDKey
)

const requestIDHeader = "X-Request-ID"

// AuthMiddleware resolves the bearer token to a stored user and hands it to
// next through the request context.
func (h Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.svc.ResolveUser(r.Context(), bearerToken(r))
		if err != nil {
			h.respondWithServiceError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// currentUser is only valid behind AuthMiddleware.
func currentUser(r *http.Request) models.User {
	user, _ := r.Context().Value(userKey).(models.User)
	return user
}

// RequestID returns the id assigned by RequestLogger, or "-" outside a request.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return "-"
}

// CORS opens the API to every origin and answers all preflight requests itself.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		hdr.Set("Access-Control-Allow-Origin", "*")
		hdr.Set("Access-Control-Allow-Methods", "GET, HEAD, POST, PUT, DELETE, OPTIONS")
		hdr.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		hdr.Set("Access-Control-Max-Age", "86400")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger tags each request with an id and logs one line when it finishes.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(rec, r.WithContext(ctx))

		log.Printf("[%s] %s %s %d %s", id, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// Recoverer turns a panic in next into a logged stack trace and a JSON 500.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[%s] panic: %v\n%s", RequestID(r.Context()), rec, debug.Stack())
				respondWithError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
