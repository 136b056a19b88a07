package services

import (
	"context"
	"sync"
	"time"

	"referral-rewards/internal/logger"
	"referral-rewards/internal/models"
	"referral-rewards/internal/utils"
)

// LeaderboardStore is the read path the leaderboard needs from the ledger
type LeaderboardStore interface {
	ListUsersByPoints(ctx context.Context, limit int) ([]models.User, error)
}

// LeaderboardEntry is one ranked row of the leaderboard
type LeaderboardEntry struct {
	Position  int    `json:"position"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Points    int    `json:"points"`
	Milestone string `json:"milestone,omitempty"`
}

// LeaderboardService serves accounts ordered by points, cached in memory.
// The cache is dropped on every accepted referral and expires after ttl.
type LeaderboardService struct {
	store LeaderboardStore
	log   *logger.Logger
	ttl   time.Duration
	now   func() time.Time

	mu       sync.RWMutex
	entries  []LeaderboardEntry
	loadedAt time.Time
	valid    bool
	gen      uint64
}

func NewLeaderboardService(store LeaderboardStore, log *logger.Logger, ttl time.Duration) *LeaderboardService {
	return &LeaderboardService{
		store: store,
		log:   log.With("component", "leaderboard"),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Leaderboard returns every account ordered by points descending
func (s *LeaderboardService) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	s.mu.RLock()
	if s.fresh() {
		entries := append([]LeaderboardEntry(nil), s.entries...)
		s.mu.RUnlock()
		return entries, nil
	}
	s.mu.RUnlock()

	return s.load(ctx)
}

// Top returns the first n entries of the leaderboard
func (s *LeaderboardService) Top(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	entries, err := s.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	if n >= 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries, nil
}

// Refresh reloads the cached leaderboard from the store
func (s *LeaderboardService) Refresh(ctx context.Context) error {
	_, err := s.load(ctx)
	return err
}

// Invalidate drops the cached leaderboard
func (s *LeaderboardService) Invalidate() {
	s.mu.Lock()
	s.valid = false
	s.gen++
	s.mu.Unlock()
}

func (s *LeaderboardService) fresh() bool {
	return s.valid && (s.ttl <= 0 || s.now().Sub(s.loadedAt) < s.ttl)
}

// load only caches its result when no invalidation happened while reading,
// so a referral accepted mid-load is never hidden behind a stale snapshot.
func (s *LeaderboardService) load(ctx context.Context) ([]LeaderboardEntry, error) {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	users, err := s.store.ListUsersByPoints(ctx, 0)
	if err != nil {
		s.log.Error("leaderboard load failed", "error", err)
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = LeaderboardEntry{
			Position:  i + 1,
			UserID:    u.ID,
			Email:     utils.MaskEmail(u.Email),
			Points:    u.Points,
			Milestone: u.MilestoneLabel(),
		}
	}

	s.mu.Lock()
	if s.gen == gen {
		s.entries = entries
		s.loadedAt = s.now()
		s.valid = true
	}
	s.mu.Unlock()

	return append([]LeaderboardEntry(nil), entries...), nil
}
