package idempotency

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"recruit/tracker/app/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const Header = "Idempotency-Key"

// Middleware replays the stored response for a repeated Idempotency-Key.
// Keys are namespaced by the caller (userHeader) and the request path, so two
// users cannot collide. A nil client disables it.
func Middleware(rdb *redis.Client, ttl time.Duration, userHeader string) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return func(next http.Handler) http.Handler {
		if rdb == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(Header)
			if key == "" || r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			cacheKey := "idem:" + r.Header.Get(userHeader) + ":" + r.Method + ":" + r.URL.Path + ":" + key

			cached, err := rdb.HGetAll(ctx, cacheKey).Result()
			if err == nil && cached["status"] != "" {
				if status, err := strconv.Atoi(cached["status"]); err == nil {
					metrics.IdempotencyHitsTotal.Inc()
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set("X-Idempotency", "hit")
					w.WriteHeader(status)
					_, _ = w.Write([]byte(cached["body"]))
					return
				}
			}

			rec := newRecorder(w)
			next.ServeHTTP(rec, r)

			// only successful outcomes are replayed
			if rec.status >= 200 && rec.status < 400 {
				pipe := rdb.TxPipeline()
				pipe.HSet(ctx, cacheKey, "status", strconv.Itoa(rec.status), "body", rec.buf.String())
				pipe.Expire(ctx, cacheKey, ttl)
				_, _ = pipe.Exec(ctx)
			}
		})
	}
}

type recorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func newRecorder(w http.ResponseWriter) *recorder {
	return &recorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(p []byte) (int, error) {
	_, _ = r.buf.Write(p)
	return r.ResponseWriter.Write(p)
}
