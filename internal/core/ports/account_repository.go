package ports

import (
	"context"
	"time"

	"github.com/learnquest/gamification-system/internal/core/domain"
)

// AccountRepository defines persistence operations for ledger accounts.
//
// AdjustBalance is the only balance mutation path used by settlement: it
// must apply both deltas as a single conditional update so that coins can
// never be driven negative by concurrent callers (lost-update free).
type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	// AdjustBalance atomically applies coinsDelta and xpDelta and recomputes
	// the level. Returns domain.ErrInsufficientFunds (and leaves the row
	// untouched) when the resulting coin balance would be negative.
	AdjustBalance(ctx context.Context, id string, coinsDelta, xpDelta int64) (*domain.Account, error)
	// RecordLogin stores the new streak and last-login timestamp and credits
	// the daily bonus in one update.
	RecordLogin(ctx context.Context, id string, streak int, bonusCoins int64, at time.Time) error
	// Delete removes the account; owned entitlements cascade. Admin-only op.
	Delete(ctx context.Context, id string) error

	// Ranking reads (derived, no stored state).
	CountWithMoreXP(ctx context.Context, xp int64) (int, error)
	CountAll(ctx context.Context) (int, error)
	// TopByXP returns accounts ordered by xp descending, ties broken by id
	// ascending for determinism.
	TopByXP(ctx context.Context, limit int) ([]*domain.Account, error)
}
