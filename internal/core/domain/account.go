package domain

import "time"

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// XPPerLevel is the amount of experience required per level step.
// Preserved from the observed reward behaviour; tune with care.
const XPPerLevel = 1000

// Account is the per-user ledger record. Coins are the spendable currency
// and must never go negative; XP only ever grows through settlement.
type Account struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Avatar       string     `json:"avatar,omitempty"`
	Role         string     `json:"role"`
	Coins        int64      `json:"coins"`
	XP           int64      `json:"xp"`
	Level        int        `json:"level"`
	Streak       int        `json:"streak"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// LevelForXP derives the level from an XP total: one level per XPPerLevel,
// starting at level 1. The stored level must never drift from this value
// outside the mutating transaction.
func LevelForXP(xp int64) int {
	if xp < 0 {
		return 1
	}
	return int(xp/XPPerLevel) + 1
}

// ValidRole reports whether role is one of the known account roles.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}
