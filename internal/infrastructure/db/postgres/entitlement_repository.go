package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/learnquest/gamification-system/internal/core/domain"
	"github.com/learnquest/gamification-system/internal/core/ports"
)

// EntitlementRepository owns the entitlement tables and the debit-plus-insert
// transactions. Duplicates are caught by the store's uniqueness constraints,
// never by a check-then-insert round trip.
type EntitlementRepository struct {
	db *sql.DB
}

func NewEntitlementRepository(db *sql.DB) *EntitlementRepository {
	return &EntitlementRepository{db: db}
}

func (r *EntitlementRepository) GrantItem(ctx context.Context, userID, itemID string, price int64, repeatable bool) (*ports.GrantOutcome, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapStoreErr(fmt.Errorf("grant item: begin: %w", err))
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	// Ownership first. For cosmetics the conflict clause makes a replay visible
	// as zero affected rows before any coins move.
	var result sql.Result
	if repeatable {
		result, err = tx.ExecContext(ctx, `
			INSERT INTO owned_items (user_id, item_id, quantity, acquired_at)
			VALUES ($1, $2, 1, $3)
			ON CONFLICT (user_id, item_id)
			DO UPDATE SET quantity = owned_items.quantity + 1
		`, userID, itemID, now)
	} else {
		result, err = tx.ExecContext(ctx, `
			INSERT INTO owned_items (user_id, item_id, quantity, acquired_at)
			VALUES ($1, $2, 1, $3)
			ON CONFLICT (user_id, item_id) DO NOTHING
		`, userID, itemID, now)
	}
	if err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, mapStoreErr(fmt.Errorf("grant item: insert ownership: %w", err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, mapStoreErr(fmt.Errorf("grant item: %w", err))
	}
	if rows == 0 {
		// Cosmetic replay. No debit; report the untouched balance.
		var balance int64
		err := tx.QueryRowContext(ctx, `SELECT coins FROM accounts WHERE id = $1`, userID).Scan(&balance)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, domain.ErrAccountNotFound
			}
			return nil, mapStoreErr(fmt.Errorf("grant item: balance: %w", err))
		}
		return &ports.GrantOutcome{AlreadyGranted: true, NewBalance: balance}, nil
	}

	balance, err := debitCoins(ctx, tx, userID, price)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, mapStoreErr(fmt.Errorf("grant item: commit: %w", err))
	}
	return &ports.GrantOutcome{NewBalance: balance}, nil
}

func (r *EntitlementRepository) GrantEnrollment(ctx context.Context, userID, courseID string, price int64) (*ports.GrantOutcome, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapStoreErr(fmt.Errorf("grant enrollment: begin: %w", err))
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO enrollments (user_id, course_id, enrolled_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, course_id) DO NOTHING
	`, userID, courseID, time.Now().UTC())
	if err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, mapStoreErr(fmt.Errorf("grant enrollment: insert: %w", err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, mapStoreErr(fmt.Errorf("grant enrollment: %w", err))
	}
	if rows == 0 {
		var balance int64
		err := tx.QueryRowContext(ctx, `SELECT coins FROM accounts WHERE id = $1`, userID).Scan(&balance)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, domain.ErrAccountNotFound
			}
			return nil, mapStoreErr(fmt.Errorf("grant enrollment: balance: %w", err))
		}
		return &ports.GrantOutcome{AlreadyGranted: true, NewBalance: balance}, nil
	}

	balance, err := debitCoins(ctx, tx, userID, price)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, mapStoreErr(fmt.Errorf("grant enrollment: commit: %w", err))
	}
	return &ports.GrantOutcome{NewBalance: balance}, nil
}

// debitCoins applies a conditional debit within tx. The WHERE clause is the
// whole funds check, so two racing debits can never both pass on the same
// balance.
func debitCoins(ctx context.Context, tx *sql.Tx, userID string, price int64) (int64, error) {
	var balance int64
	err := tx.QueryRowContext(ctx, `
		UPDATE accounts
		SET coins = coins - $2, updated_at = $3
		WHERE id = $1 AND coins >= $2
		RETURNING coins
	`, userID, price, time.Now().UTC()).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, mapStoreErr(fmt.Errorf("debit coins: %w", err))
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return 0, mapStoreErr(fmt.Errorf("debit coins: exists: %w", err))
	}
	if !exists {
		return 0, domain.ErrAccountNotFound
	}
	return 0, domain.ErrInsufficientFunds
}

func (r *EntitlementRepository) RecordProgress(ctx context.Context, p *domain.Progress) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO progress (user_id, course_id, score, status, completed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, course_id)
		DO UPDATE SET score = EXCLUDED.score, status = EXCLUDED.status, completed_at = EXCLUDED.completed_at
		WHERE progress.score < EXCLUDED.score
	`, p.UserID, p.CourseID, p.Score, p.Status, p.CompletedAt)
	if err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			return domain.ErrAccountNotFound
		}
		return mapStoreErr(fmt.Errorf("record progress: %w", err))
	}
	return nil
}

func (r *EntitlementRepository) IssueCertificate(ctx context.Context, cert *domain.Certificate) (*domain.Certificate, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO certificates (id, user_id, course_title, code, issued_on)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, course_title) DO NOTHING
	`, cert.ID, cert.UserID, cert.CourseTitle, cert.Code, cert.IssuedOn)
	if err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, mapStoreErr(fmt.Errorf("issue certificate: %w", err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, mapStoreErr(fmt.Errorf("issue certificate: %w", err))
	}
	if rows > 0 {
		return cert, nil
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, course_title, code, issued_on
		FROM certificates WHERE user_id = $1 AND course_title = $2
	`, cert.UserID, cert.CourseTitle)

	var existing domain.Certificate
	if err := row.Scan(&existing.ID, &existing.UserID, &existing.CourseTitle, &existing.Code, &existing.IssuedOn); err != nil {
		return nil, mapStoreErr(fmt.Errorf("issue certificate: fetch existing: %w", err))
	}
	return &existing, nil
}

func (r *EntitlementRepository) ListOwnedItems(ctx context.Context, userID string) ([]*domain.OwnedItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, item_id, quantity, acquired_at
		FROM owned_items WHERE user_id = $1 ORDER BY acquired_at ASC, item_id ASC
	`, userID)
	if err != nil {
		return nil, mapStoreErr(fmt.Errorf("list owned items: %w", err))
	}
	defer rows.Close()

	var out []*domain.OwnedItem
	for rows.Next() {
		var o domain.OwnedItem
		if err := rows.Scan(&o.UserID, &o.ItemID, &o.Quantity, &o.AcquiredAt); err != nil {
			return nil, mapStoreErr(fmt.Errorf("list owned items: %w", err))
		}
		out = append(out, &o)
	}
	return out, mapStoreErr(rows.Err())
}

func (r *EntitlementRepository) ListProgress(ctx context.Context, userID string) ([]*domain.Progress, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, course_id, score, status, completed_at
		FROM progress WHERE user_id = $1 ORDER BY completed_at DESC
	`, userID)
	if err != nil {
		return nil, mapStoreErr(fmt.Errorf("list progress: %w", err))
	}
	defer rows.Close()

	var out []*domain.Progress
	for rows.Next() {
		var p domain.Progress
		if err := rows.Scan(&p.UserID, &p.CourseID, &p.Score, &p.Status, &p.CompletedAt); err != nil {
			return nil, mapStoreErr(fmt.Errorf("list progress: %w", err))
		}
		out = append(out, &p)
	}
	return out, mapStoreErr(rows.Err())
}

func (r *EntitlementRepository) ListCertificates(ctx context.Context, userID string) ([]*domain.Certificate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, course_title, code, issued_on
		FROM certificates WHERE user_id = $1 ORDER BY issued_on DESC
	`, userID)
	if err != nil {
		return nil, mapStoreErr(fmt.Errorf("list certificates: %w", err))
	}
	defer rows.Close()

	var out []*domain.Certificate
	for rows.Next() {
		var c domain.Certificate
		if err := rows.Scan(&c.ID, &c.UserID, &c.CourseTitle, &c.Code, &c.IssuedOn); err != nil {
			return nil, mapStoreErr(fmt.Errorf("list certificates: %w", err))
		}
		out = append(out, &c)
	}
	return out, mapStoreErr(rows.Err())
}
