package dedupe

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"time"

	"recruit/tracker/app/internal/metrics"

	"github.com/redis/go-redis/v9"
)

type responseRecorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (rr *responseRecorder) WriteHeader(code int) {
	rr.status = code
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(p []byte) (int, error) {
	_, _ = rr.buf.Write(p)
	return rr.ResponseWriter.Write(p)
}

// keyFromRequest hashes method, path, caller and body.
func keyFromRequest(r *http.Request, user string, body []byte) string {
	h := sha256.New()
	for _, part := range [][]byte{[]byte(r.Method), []byte(r.URL.Path), []byte(user), body} {
		h.Write(part)
		h.Write([]byte{0})
	}
	return "dedupe:" + hex.EncodeToString(h.Sum(nil))
}

// Middleware collapses identical write requests from the same caller within
// ttl into one: the first response is stored and replayed to the others.
// A nil client disables it.
func Middleware(rdb *redis.Client, ttl time.Duration, userHeader string) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return func(next http.Handler) http.Handler {
		if rdb == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch && r.Method != http.MethodDelete {
				next.ServeHTTP(w, r)
				return
			}
			var body []byte
			if r.Body != nil {
				body, _ = io.ReadAll(r.Body)
				r.Body.Close()
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			ctx := r.Context()
			key := keyFromRequest(r, r.Header.Get(userHeader), body)

			if replay(w, rdb.HGetAll(ctx, key).Val(), "hit") {
				return
			}

			// concurrent duplicates wait briefly for the winner's response
			ok, err := rdb.SetNX(ctx, key+":lock", "1", ttl).Result()
			if err == nil && !ok {
				t := time.NewTimer(50 * time.Millisecond)
				select {
				case <-ctx.Done():
					t.Stop()
					return
				case <-t.C:
				}
				if replay(w, rdb.HGetAll(ctx, key).Val(), "wait-hit") {
					return
				}
			}

			rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rr, r)

			pipe := rdb.TxPipeline()
			pipe.HSet(ctx, key, "status", strconv.Itoa(rr.status), "body", rr.buf.String())
			pipe.Expire(ctx, key, ttl)
			pipe.Del(ctx, key+":lock")
			_, _ = pipe.Exec(ctx)
		})
	}
}

func replay(w http.ResponseWriter, cached map[string]string, mark string) bool {
	status, err := strconv.Atoi(cached["status"])
	if err != nil {
		return false
	}
	metrics.DedupeHitsTotal.Inc()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Dedupe", mark)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(cached["body"]))
	return true
}
