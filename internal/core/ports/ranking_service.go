package ports

import "context"

// LeaderboardEntry is one row of the XP leaderboard.
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Level  int    `json:"level"`
	XP     int64  `json:"xp"`
}

// RankResult is a single user's standing.
type RankResult struct {
	Rank       int `json:"rank"`
	TotalUsers int `json:"total_users"`
}

// RankingService computes relative standing from account state on demand.
// Read-only, no caching, safe to call at arbitrary frequency.
type RankingService interface {
	// Rank returns 1 + count(accounts with strictly greater xp); ties share
	// the same rank.
	Rank(ctx context.Context, userID string) (*RankResult, error)
	// Leaderboard returns up to limit entries ordered by xp descending,
	// ties broken by id ascending.
	Leaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error)
}
