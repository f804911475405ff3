package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/learnquest/gamification-system/internal/core/domain"
	"github.com/learnquest/gamification-system/internal/core/ports"
)

const (
	// Daily login bonus: base coins plus a per-streak-day increment,
	// preserved from observed behaviour.
	loginBonusBase      = 10
	loginBonusPerStreak = 5
)

// AuthService implements registration, login with daily streak settlement,
// and explicit account deletion.
type AuthService struct {
	accounts  ports.AccountRepository
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
	// now is swappable in tests
	now func() time.Time
}

func NewAuthService(accounts ports.AccountRepository, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		accounts:  accounts,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuthService) Register(ctx context.Context, username, password, name, role string) (*domain.Account, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if role == "" {
		role = domain.RoleStudent
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	account := &domain.Account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		Coins:        0,
		XP:           0,
		Level:        1,
		Streak:       0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.accounts.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("role", created.Role).Msg("account registered")
	return created, nil
}

// Login verifies credentials and settles the daily streak bonus: on the
// first login of a UTC day the streak advances (or resets when a day was
// missed) and 10 + 5*streak coins are credited. Repeat logins on the same
// day change nothing.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	bonus := int64(0)
	if firstLoginOfDay(account.LastLoginAt, now) {
		streak := 1
		if account.LastLoginAt != nil && sameDay(account.LastLoginAt.AddDate(0, 0, 1), now) {
			streak = account.Streak + 1
		}
		bonus = int64(loginBonusBase + loginBonusPerStreak*streak)

		if err := s.accounts.RecordLogin(ctx, account.ID, streak, bonus, now); err != nil {
			return nil, fmt.Errorf("login: record streak: %w", err)
		}
		account.Streak = streak
		account.Coins += bonus
		account.LastLoginAt = &now

		s.logger.Info().
			Str("user_id", account.ID).
			Int("streak", streak).
			Int64("bonus", bonus).
			Msg("daily streak settled")
	}

	token, err := s.generateToken(account)
	if err != nil {
		return nil, err
	}

	return &ports.LoginResult{Token: token, Account: account, LoginBonus: bonus}, nil
}

// DeleteAccount removes the account row; entitlements cascade in the store.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.accounts.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Msg("account deleted")
	return nil
}

func (s *AuthService) generateToken(account *domain.Account) (string, error) {
	claims := jwt.MapClaims{
		"sub":      account.ID,
		"username": account.Username,
		"role":     account.Role,
		"exp":      s.now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func firstLoginOfDay(last *time.Time, now time.Time) bool {
	return last == nil || !sameDay(*last, now)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
