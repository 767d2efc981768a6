package ratelimit

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter decides whether key may make another request now. When it may not,
// retryAfter says how long until it can.
type Limiter interface {
	Allow(ctx context.Context, key string) (ok bool, retryAfter time.Duration)
}

// Memory is a sliding-window limiter with a bounded key table. Keys idle for a
// whole window are swept; when the table is full the least recently seen key
// is evicted.
type Memory struct {
	limit   int
	window  time.Duration
	maxKeys int
	now     func() time.Time

	mu        sync.Mutex
	keys      map[string]*list.Element
	lru       *list.List // front is most recently seen
	lastSweep time.Time
}

type bucket struct {
	key  string
	hits []time.Time // ascending, at most limit entries
	last time.Time
}

func NewMemory(limit int, window time.Duration, maxKeys int) *Memory {
	if maxKeys <= 0 {
		maxKeys = 10000
	}
	return &Memory{
		limit:   limit,
		window:  window,
		maxKeys: maxKeys,
		now:     time.Now,
		keys:    make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) >= m.window {
		m.sweep(now)
		m.lastSweep = now
	}

	var b *bucket
	if el, ok := m.keys[key]; ok {
		b = el.Value.(*bucket)
		m.lru.MoveToFront(el)
	} else {
		if len(m.keys) >= m.maxKeys {
			m.evict(m.lru.Back())
		}
		b = &bucket{key: key, hits: make([]time.Time, 0, m.limit)}
		m.keys[key] = m.lru.PushFront(b)
	}
	b.last = now

	cutoff := now.Add(-m.window)
	drop := 0
	for drop < len(b.hits) && !b.hits[drop].After(cutoff) {
		drop++
	}
	b.hits = append(b.hits[:0], b.hits[drop:]...)

	if len(b.hits) >= m.limit {
		return false, b.hits[0].Add(m.window).Sub(now)
	}
	b.hits = append(b.hits, now)
	return true, 0
}

// Len reports how many keys are tracked.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys)
}

func (m *Memory) sweep(now time.Time) {
	cutoff := now.Add(-m.window)
	for el := m.lru.Back(); el != nil; {
		b := el.Value.(*bucket)
		if b.last.After(cutoff) {
			return
		}
		prev := el.Prev()
		m.evict(el)
		el = prev
	}
}

func (m *Memory) evict(el *list.Element) {
	if el == nil {
		return
	}
	delete(m.keys, el.Value.(*bucket).key)
	m.lru.Remove(el)
}

// fixedWindow counts hits per key in a window that starts at the first hit.
var fixedWindow = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {n, redis.call('PTTL', KEYS[1])}
`)

// Redis is a fixed-window limiter shared by every instance. It fails open.
type Redis struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	log    *zap.Logger
}

func NewRedis(rdb *redis.Client, limit int, window time.Duration, log *zap.Logger) *Redis {
	if log == nil {
		log = zap.NewNop()
	}
	return &Redis{rdb: rdb, limit: limit, window: window, log: log}
}

func (l *Redis) Allow(ctx context.Context, key string) (bool, time.Duration) {
	res, err := fixedWindow.Run(ctx, l.rdb, []string{"rl:" + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil || len(res) != 2 {
		l.log.Warn("rate limiter unavailable, allowing", zap.String("key", key), zap.Error(err))
		return true, 0
	}
	if int(res[0]) > l.limit {
		return false, time.Duration(res[1]) * time.Millisecond
	}
	return true, 0
}
