package service

import (
	"context"
	"fmt"
	"time"

	"recruit/tracker/app/internal/cache"
	"recruit/tracker/app/internal/domain"
	"recruit/tracker/app/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TabCounts are the numbers shown on an HR's filter tabs.
type TabCounts struct {
	Inbox  int                        `json:"inbox"`
	All    int                        `json:"all"`
	Groups map[domain.StatusGroup]int `json:"groups"`
}

// CountsService computes tab counts, caching them in Redis when available.
type CountsService struct {
	Env
	rdb *redis.Client
	ttl time.Duration
}

// NewCountsService works without Redis when rdb is nil.
func NewCountsService(env Env, rdb *redis.Client, ttl time.Duration) *CountsService {
	return &CountsService{Env: env, rdb: rdb, ttl: ttl}
}

func countsKey(hrID int64) string { return fmt.Sprintf("counts:hr:%d", hrID) }

// ForHR returns hr's counts. The group counts are cached per HR; the inbox is
// shared by every HR and changes with each submission and claim, so it is
// always counted fresh.
func (s *CountsService) ForHR(ctx context.Context, hr domain.User) (TabCounts, error) {
	inbox, err := s.Apps.CountByStatus(ctx, nil, repository.Filter{
		Statuses:    []domain.Status{domain.StatusScreeningPending},
		UnclaimedHR: true,
	})
	if err != nil {
		return TabCounts{}, err
	}

	key := countsKey(hr.ID)
	var out TabCounts
	if !cache.GetJSON(ctx, s.rdb, key, &out) {
		if out, err = s.owned(ctx, hr); err != nil {
			return TabCounts{}, err
		}
		if err := cache.SetJSON(ctx, s.rdb, key, out, s.ttl); err != nil {
			s.Log.Warn("cache tab counts", zap.Int64("hr_id", hr.ID), zap.Error(err))
		}
	}
	out.Inbox = inbox[domain.StatusScreeningPending]
	return out, nil
}

// owned counts the applications hr owns, by group.
func (s *CountsService) owned(ctx context.Context, hr domain.User) (TabCounts, error) {
	byStatus, err := s.Apps.CountByStatus(ctx, nil, repository.Filter{HRID: &hr.ID})
	if err != nil {
		return TabCounts{}, err
	}
	out := TabCounts{Groups: make(map[domain.StatusGroup]int, len(domain.Groups))}
	for _, n := range byStatus {
		out.All += n
	}
	for _, g := range domain.Groups {
		sts, _ := domain.StatusesOf(string(g))
		for _, st := range sts {
			out.Groups[g] += byStatus[st]
		}
	}
	return out, nil
}

// Invalidate drops cached counts after hr changed something.
func (s *CountsService) Invalidate(ctx context.Context, hrID int64) {
	if err := cache.Delete(ctx, s.rdb, countsKey(hrID)); err != nil {
		s.Log.Warn("invalidate tab counts", zap.Int64("hr_id", hrID), zap.Error(err))
	}
}

// InvalidateFor drops the counts of the HR owning application id, if any.
func (s *CountsService) InvalidateFor(ctx context.Context, id int64) {
	if s.rdb == nil {
		return
	}
	a, err := s.Apps.Get(ctx, nil, id)
	if err != nil {
		s.Log.Warn("invalidate tab counts", zap.Int64("application_id", id), zap.Error(err))
		return
	}
	if a.HRID != nil {
		s.Invalidate(ctx, *a.HRID)
	}
}
