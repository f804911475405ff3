package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/learnquest/gamification-system/internal/core/ports"
)

const (
	defaultLeaderboardLimit = 20
	maxLeaderboardLimit     = 100
)

// RankingService derives standings from account XP at query time. It never
// writes and holds no state of its own.
type RankingService struct {
	accounts ports.AccountRepository
	logger   zerolog.Logger
}

func NewRankingService(accounts ports.AccountRepository, logger zerolog.Logger) *RankingService {
	return &RankingService{accounts: accounts, logger: logger}
}

// Rank returns 1 plus the number of accounts with strictly more XP. Ties
// share the same rank; there is no secondary tie-break for rank itself.
func (s *RankingService) Rank(ctx context.Context, userID string) (*ports.RankResult, error) {
	account, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}

	higher, err := s.accounts.CountWithMoreXP(ctx, account.XP)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	total, err := s.accounts.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}

	return &ports.RankResult{Rank: higher + 1, TotalUsers: total}, nil
}

// Leaderboard returns the top accounts by XP descending, ties broken by id
// ascending for a deterministic ordering. The limit defaults to 20 and is
// capped at 100.
func (s *RankingService) Leaderboard(ctx context.Context, limit int) ([]*ports.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	accounts, err := s.accounts.TopByXP(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}

	entries := make([]*ports.LeaderboardEntry, 0, len(accounts))
	for i, a := range accounts {
		entries = append(entries, &ports.LeaderboardEntry{
			Rank:   i + 1,
			UserID: a.ID,
			Name:   a.Name,
			Avatar: a.Avatar,
			Level:  a.Level,
			XP:     a.XP,
		})
	}
	return entries, nil
}
