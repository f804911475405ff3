package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/learnquest/gamification-system/internal/core/domain"
)

const accountColumns = `id, username, password_hash, name, avatar, role,
	coins, xp, level, streak, last_login_at, created_at, updated_at`

// AccountRepository persists ledger accounts.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, username, password_hash, name, avatar, role,
			coins, xp, level, streak, last_login_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, a.ID, a.Username, a.PasswordHash, a.Name, a.Avatar, a.Role,
		a.Coins, a.XP, a.Level, a.Streak, a.LastLoginAt, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return nil, domain.ErrUserExists
		}
		return nil, mapStoreErr(fmt.Errorf("insert account: %w", err))
	}
	return a, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
	return scanAccount(row)
}

// AdjustBalance is the conditional-update settlement path: the coins guard
// lives in the WHERE clause so two concurrent adjustments can never drive
// the balance negative (no read-check-then-write window).
func (r *AccountRepository) AdjustBalance(ctx context.Context, id string, coinsDelta, xpDelta int64) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE accounts
		SET coins = coins + $2,
			xp = xp + $3,
			level = (xp + $3) / $4 + 1,
			updated_at = now()
		WHERE id = $1 AND coins + $2 >= 0
		RETURNING `+accountColumns,
		id, coinsDelta, xpDelta, int64(domain.XPPerLevel))

	account, err := scanAccount(row)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	// no row matched: missing account or the guard rejected the debit
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, mapStoreErr(fmt.Errorf("adjust balance: %w", err))
	}
	if !exists {
		return nil, domain.ErrAccountNotFound
	}
	return nil, domain.ErrInsufficientFunds
}

func (r *AccountRepository) RecordLogin(ctx context.Context, id string, streak int, bonusCoins int64, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET streak = $2, coins = coins + $3, last_login_at = $4, updated_at = $4
		WHERE id = $1
	`, id, streak, bonusCoins, at)
	if err != nil {
		return mapStoreErr(fmt.Errorf("record login: %w", err))
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// Delete removes the account row; entitlement rows cascade via FK.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return mapStoreErr(fmt.Errorf("delete account: %w", err))
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) CountWithMoreXP(ctx context.Context, xp int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM accounts WHERE xp > $1`, xp).Scan(&n)
	if err != nil {
		return 0, mapStoreErr(fmt.Errorf("count accounts: %w", err))
	}
	return n, nil
}

func (r *AccountRepository) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM accounts`).Scan(&n); err != nil {
		return 0, mapStoreErr(fmt.Errorf("count accounts: %w", err))
	}
	return n, nil
}

func (r *AccountRepository) TopByXP(ctx context.Context, limit int) ([]*domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY xp DESC, id ASC LIMIT $1`, limit)
	if err != nil {
		return nil, mapStoreErr(fmt.Errorf("top accounts: %w", err))
	}
	defer rows.Close()

	var out []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, mapStoreErr(rows.Err())
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		a         domain.Account
		lastLogin sql.NullTime
	)
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Name, &a.Avatar, &a.Role,
		&a.Coins, &a.XP, &a.Level, &a.Streak, &lastLogin, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, mapStoreErr(fmt.Errorf("scan account: %w", err))
	}
	if lastLogin.Valid {
		t := lastLogin.Time.UTC()
		a.LastLoginAt = &t
	}
	return &a, nil
}
