package ports

import (
	"context"

	"github.com/learnquest/gamification-system/internal/core/domain"
)

// GrantOutcome reports what a grant actually did, so the service can answer
// idempotent replays without a second charge.
type GrantOutcome struct {
	// AlreadyGranted is true when the entitlement existed and no coins moved.
	AlreadyGranted bool
	// NewBalance is the account's coin balance after the grant.
	NewBalance int64
}

// EntitlementRepository owns the entitlement tables and the atomic
// debit-plus-insert units. Duplicate prevention is enforced by uniqueness
// constraints in the store, never by check-then-insert in application code.
type EntitlementRepository interface {
	// GrantItem debits price coins and records ownership in one transaction.
	// For non-repeatable items an existing ownership makes the call a no-op
	// (AlreadyGranted, no debit); repeatable items stack quantity and are
	// charged every time. Returns domain.ErrInsufficientFunds with no
	// mutation when the balance cannot cover the price.
	GrantItem(ctx context.Context, userID, itemID string, price int64, repeatable bool) (*GrantOutcome, error)

	// GrantEnrollment debits price coins and records the enrollment in one
	// transaction. Re-enrollment is a silent no-op.
	GrantEnrollment(ctx context.Context, userID, courseID string, price int64) (*GrantOutcome, error)

	// RecordProgress upserts a completion attempt, keeping the highest score
	// per (user, course).
	RecordProgress(ctx context.Context, p *domain.Progress) error

	// IssueCertificate inserts cert unless one already exists for the
	// (user, course title) pair, in which case the existing certificate is
	// returned unchanged.
	IssueCertificate(ctx context.Context, cert *domain.Certificate) (*domain.Certificate, error)

	ListOwnedItems(ctx context.Context, userID string) ([]*domain.OwnedItem, error)
	ListProgress(ctx context.Context, userID string) ([]*domain.Progress, error)
	ListCertificates(ctx context.Context, userID string) ([]*domain.Certificate, error)
}
