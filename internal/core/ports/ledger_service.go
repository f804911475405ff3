package ports

import (
	"context"
	"time"

	"github.com/learnquest/gamification-system/internal/core/domain"
)

// PurchaseResult is returned after a shop purchase settles.
type PurchaseResult struct {
	ItemID     string
	ItemName   string
	Price      int64
	NewBalance int64
	// AlreadyOwned is true when the purchase was an idempotent replay of an
	// existing cosmetic ownership; no coins were charged.
	AlreadyOwned bool
	AcquiredAt   time.Time
}

// EnrollResult is returned after a course enrollment settles.
type EnrollResult struct {
	CourseID        string
	CourseTitle     string
	Price           int64
	NewBalance      int64
	AlreadyEnrolled bool
	EnrolledAt      time.Time
}

// CompletionInput carries a completion attempt into settlement.
type CompletionInput struct {
	UserID   string
	CourseID string
	Score    int
	Status   string // "completed" or "failed"
	// AttemptedAt identifies the attempt for deduplication. Zero means "now".
	AttemptedAt time.Time
}

// CompletionResult reports what a settlement granted.
type CompletionResult struct {
	CourseID        string
	CourseTitle     string
	Status          string
	XPGained        int64
	CoinsGained     int64
	NewBalance      int64
	NewLevel        int
	CertificateCode string
	// CertificateNew is false when the certificate already existed and was
	// returned unchanged.
	CertificateNew bool
}

// InventoryEntry is an owned item joined with its catalog data.
type InventoryEntry struct {
	Item       *domain.Item
	Quantity   int
	AcquiredAt time.Time
}

// ProgressSummary is the per-user analytics view over the ledger.
type ProgressSummary struct {
	Account        *domain.Account
	Progress       []*domain.Progress
	Certificates   []*domain.Certificate
	TotalScore     int
	CompletedCount int
	Rank           int
	TotalUsers     int
}

// LedgerService is the only component permitted to move coins and XP in
// exchange for entitlements.
type LedgerService interface {
	PurchaseItem(ctx context.Context, userID, itemID string) (*PurchaseResult, error)
	EnrollCourse(ctx context.Context, userID, courseID string) (*EnrollResult, error)
	SettleCompletion(ctx context.Context, in CompletionInput) (*CompletionResult, error)
	Inventory(ctx context.Context, userID string) ([]*InventoryEntry, error)
	Summary(ctx context.Context, userID string) (*ProgressSummary, error)
}
