package idempotency

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestReplaysSuccessfulResponses(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	var calls atomic.Int32
	status := http.StatusCreated
	h := Middleware(rdb, time.Minute, "X-User")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"id":1}`))
	}))

	send := func(user, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/hr/applications/1/accept", strings.NewReader(`{}`))
		req.Header.Set("X-User", user)
		req.Header.Set(Header, key)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := send("1", "k")
	second := send("1", "k")
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "hit", second.Header().Get("X-Idempotency"))

	send("2", "k")
	assert.Equal(t, int32(2), calls.Load(), "other user, same key")

	status = http.StatusConflict
	send("1", "k2")
	send("1", "k2")
	assert.Equal(t, int32(4), calls.Load(), "failures are not stored")

	mr.FastForward(2 * time.Minute)
	status = http.StatusCreated
	send("1", "k")
	assert.Equal(t, int32(5), calls.Load(), "expired")
}

func TestDisabledWithoutRedis(t *testing.T) {
	var calls int
	h := Middleware(nil, time.Minute, "X-User")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set(Header, "k")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 2, calls)
}
