package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/learnquest/gamification-system/internal/api/metrics"
	"github.com/learnquest/gamification-system/internal/core/domain"
	"github.com/learnquest/gamification-system/internal/core/ports"
)

// LedgerService is the entitlement engine: the only component permitted to
// move coins and XP in exchange for granting access.
type LedgerService struct {
	accounts     ports.AccountRepository
	catalog      ports.CatalogRepository
	entitlements ports.EntitlementRepository
	logger       zerolog.Logger
}

func NewLedgerService(
	accounts ports.AccountRepository,
	catalog ports.CatalogRepository,
	entitlements ports.EntitlementRepository,
	logger zerolog.Logger,
) *LedgerService {
	return &LedgerService{
		accounts:     accounts,
		catalog:      catalog,
		entitlements: entitlements,
		logger:       logger,
	}
}

// PurchaseItem settles a shop purchase. Cosmetics are idempotent: buying an
// owned cosmetic again returns the existing ownership without a second
// debit. Consumables stack and are charged on every call.
func (s *LedgerService) PurchaseItem(ctx context.Context, userID, itemID string) (*ports.PurchaseResult, error) {
	item, err := s.catalog.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("purchase item: %w", err)
	}
	if _, err := s.accounts.FindByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("purchase item: %w", err)
	}

	outcome, err := s.entitlements.GrantItem(ctx, userID, itemID, item.Price, item.Category.Repeatable())
	if err != nil {
		if err == domain.ErrInsufficientFunds {
			metrics.InsufficientFundsTotal.WithLabelValues("purchase").Inc()
			s.logger.Info().
				Str("user_id", userID).
				Str("item_id", itemID).
				Int64("price", item.Price).
				Msg("purchase rejected: insufficient funds")
		}
		return nil, fmt.Errorf("purchase item: %w", err)
	}

	result := "charged"
	if outcome.AlreadyGranted {
		result = "replay"
	}
	metrics.PurchasesTotal.WithLabelValues(string(item.Category), result).Inc()

	s.logger.Info().
		Str("user_id", userID).
		Str("item_id", itemID).
		Str("item_name", item.Name).
		Int64("new_balance", outcome.NewBalance).
		Bool("replay", outcome.AlreadyGranted).
		Msg("purchase settled")

	return &ports.PurchaseResult{
		ItemID:       item.ID,
		ItemName:     item.Name,
		Price:        item.Price,
		NewBalance:   outcome.NewBalance,
		AlreadyOwned: outcome.AlreadyGranted,
		AcquiredAt:   time.Now().UTC(),
	}, nil
}

// EnrollCourse settles a course enrollment. Free courses skip the balance
// check but still record the enrollment; re-enrolling is a silent no-op.
func (s *LedgerService) EnrollCourse(ctx context.Context, userID, courseID string) (*ports.EnrollResult, error) {
	course, err := s.catalog.GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("enroll course: %w", err)
	}
	if _, err := s.accounts.FindByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("enroll course: %w", err)
	}

	outcome, err := s.entitlements.GrantEnrollment(ctx, userID, courseID, course.Price)
	if err != nil {
		if err == domain.ErrInsufficientFunds {
			metrics.InsufficientFundsTotal.WithLabelValues("enroll").Inc()
		}
		return nil, fmt.Errorf("enroll course: %w", err)
	}

	result := "charged"
	switch {
	case outcome.AlreadyGranted:
		result = "replay"
	case course.Price == 0:
		result = "free"
	}
	metrics.EnrollmentsTotal.WithLabelValues(result).Inc()

	s.logger.Info().
		Str("user_id", userID).
		Str("course_id", courseID).
		Str("course_title", course.Title).
		Int64("new_balance", outcome.NewBalance).
		Bool("replay", outcome.AlreadyGranted).
		Msg("enrollment settled")

	return &ports.EnrollResult{
		CourseID:        course.ID,
		CourseTitle:     course.Title,
		Price:           course.Price,
		NewBalance:      outcome.NewBalance,
		AlreadyEnrolled: outcome.AlreadyGranted,
		EnrolledAt:      time.Now().UTC(),
	}, nil
}

// SettleCompletion converts a finished course into balance changes and an
// idempotent certificate.
//
// Progress recording is the fatal step: if it fails, nothing else happens.
// A reward or certificate failure after progress is recorded is counted for
// reconciliation and returned to the caller; both follow-up steps are
// idempotent, so retrying the whole settlement is safe.
func (s *LedgerService) SettleCompletion(ctx context.Context, in ports.CompletionInput) (*ports.CompletionResult, error) {
	course, err := s.catalog.GetCourse(ctx, in.CourseID)
	if err != nil {
		return nil, fmt.Errorf("settle completion: %w", err)
	}
	account, err := s.accounts.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("settle completion: %w", err)
	}

	now := in.AttemptedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	progress := &domain.Progress{
		UserID:      in.UserID,
		CourseID:    in.CourseID,
		Score:       in.Score,
		Status:      in.Status,
		CompletedAt: now,
	}
	if err := s.entitlements.RecordProgress(ctx, progress); err != nil {
		return nil, fmt.Errorf("settle completion: record progress: %w", err)
	}
	metrics.CompletionsSettledTotal.WithLabelValues(in.Status).Inc()

	result := &ports.CompletionResult{
		CourseID:    course.ID,
		CourseTitle: course.Title,
		Status:      in.Status,
		NewBalance:  account.Coins,
		NewLevel:    account.Level,
	}
	if in.Status != domain.ProgressCompleted {
		return result, nil
	}

	xpGain, coinGain := domain.CompletionReward(course.Credits)
	updated, err := s.accounts.AdjustBalance(ctx, in.UserID, coinGain, xpGain)
	if err != nil {
		metrics.RewardReconciliationTotal.Inc()
		s.logger.Error().Err(err).
			Str("user_id", in.UserID).
			Str("course_id", in.CourseID).
			Int64("xp_gain", xpGain).
			Int64("coin_gain", coinGain).
			Msg("progress recorded but reward grant failed; settlement must be retried")
		return nil, fmt.Errorf("settle completion: grant reward: %w", err)
	}
	result.XPGained = xpGain
	result.CoinsGained = coinGain
	result.NewBalance = updated.Coins
	result.NewLevel = updated.Level

	cert := &domain.Certificate{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		CourseTitle: course.Title,
		Code:        domain.NewCertificateCode(),
		IssuedOn:    now,
	}
	issued, err := s.entitlements.IssueCertificate(ctx, cert)
	if err != nil {
		metrics.RewardReconciliationTotal.Inc()
		s.logger.Error().Err(err).
			Str("user_id", in.UserID).
			Str("course_title", course.Title).
			Msg("reward granted but certificate issuance failed; settlement must be retried")
		return nil, fmt.Errorf("settle completion: issue certificate: %w", err)
	}
	result.CertificateCode = issued.Code
	result.CertificateNew = issued.Code == cert.Code
	if result.CertificateNew {
		metrics.CertificatesIssuedTotal.Inc()
	}

	s.logger.Info().
		Str("user_id", in.UserID).
		Str("course_title", course.Title).
		Int64("xp_gain", xpGain).
		Int64("coin_gain", coinGain).
		Str("certificate_code", issued.Code).
		Bool("certificate_new", result.CertificateNew).
		Msg("completion settled")

	return result, nil
}

// Inventory returns the account's owned items joined with catalog data.
func (s *LedgerService) Inventory(ctx context.Context, userID string) ([]*ports.InventoryEntry, error) {
	if _, err := s.accounts.FindByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("inventory: %w", err)
	}
	owned, err := s.entitlements.ListOwnedItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("inventory: %w", err)
	}

	entries := make([]*ports.InventoryEntry, 0, len(owned))
	for _, o := range owned {
		item, err := s.catalog.GetItem(ctx, o.ItemID)
		if err != nil {
			// catalog row gone while entitlements still reference it;
			// skip rather than fail the whole listing
			s.logger.Warn().Str("item_id", o.ItemID).Msg("owned item missing from catalog")
			continue
		}
		entries = append(entries, &ports.InventoryEntry{
			Item:       item,
			Quantity:   o.Quantity,
			AcquiredAt: o.AcquiredAt,
		})
	}
	return entries, nil
}

// Summary assembles the per-user analytics view: progress, certificates,
// aggregate score, and rank.
func (s *LedgerService) Summary(ctx context.Context, userID string) (*ports.ProgressSummary, error) {
	account, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	progress, err := s.entitlements.ListProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	certs, err := s.entitlements.ListCertificates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}

	higher, err := s.accounts.CountWithMoreXP(ctx, account.XP)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	total, err := s.accounts.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}

	summary := &ports.ProgressSummary{
		Account:      account,
		Progress:     progress,
		Certificates: certs,
		Rank:         higher + 1,
		TotalUsers:   total,
	}
	for _, p := range progress {
		summary.TotalScore += p.Score
		if p.Status == domain.ProgressCompleted {
			summary.CompletedCount++
		}
	}
	return summary, nil
}
