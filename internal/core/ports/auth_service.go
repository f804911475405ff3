package ports

import (
	"context"

	"github.com/learnquest/gamification-system/internal/core/domain"
)

// LoginResult carries the token plus the daily-streak settlement applied on
// first login of the day.
type LoginResult struct {
	Token      string
	Account    *domain.Account
	LoginBonus int64 // coins credited for the streak, 0 on repeat logins
}

type AuthService interface {
	Register(ctx context.Context, username, password, name, role string) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// DeleteAccount removes an account and cascades its entitlements.
	// Explicit admin action; never invoked implicitly.
	DeleteAccount(ctx context.Context, userID string) error
}
