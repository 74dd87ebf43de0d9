package service

import (
	"context"
	"time"

	"telegram-casino-bot/internal/model"
)

// RankingService handles ranking and leaderboard operations.
type RankingService struct {
	store    Store
	timezone *time.Location
	now      func() time.Time
}

// NewRankingService creates a new RankingService instance.
func NewRankingService(store Store, timezone *time.Location) *RankingService {
	if timezone == nil {
		timezone = time.UTC
	}
	return &RankingService{store: store, timezone: timezone, now: time.Now}
}

// TopBalances retrieves the richest users of a server.
func (s *RankingService) TopBalances(ctx context.Context, serverID int64, limit int) ([]*model.RankEntry, error) {
	return s.store.TopBalances(ctx, serverID, limit)
}

// DailyWinners retrieves today's top winners (users with most profit).
func (s *RankingService) DailyWinners(ctx context.Context, serverID int64, limit int) ([]*model.DailyRank, error) {
	return s.store.DailyWinners(ctx, serverID, s.today(), limit)
}

// DailyLosers retrieves today's top losers (users with most loss).
func (s *RankingService) DailyLosers(ctx context.Context, serverID int64, limit int) ([]*model.DailyRank, error) {
	return s.store.DailyLosers(ctx, serverID, s.today(), limit)
}

func (s *RankingService) today() time.Time {
	return s.now().In(s.timezone)
}
