package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	// Reward multipliers per course credit, preserved from observed behaviour.
	XPPerCredit    = 50
	CoinsPerCredit = 20
)

const (
	ProgressCompleted = "completed"
	ProgressFailed    = "failed"
)

// OwnedItem records that an account owns a shop item. Quantity is always 1
// for cosmetics; consumables accumulate.
type OwnedItem struct {
	UserID     string    `json:"user_id"`
	ItemID     string    `json:"item_id"`
	Quantity   int       `json:"quantity"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// Enrollment records that an account has access to a course. At most one
// per (user, course) pair.
type Enrollment struct {
	UserID     string    `json:"user_id"`
	CourseID   string    `json:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// Certificate is issued exactly once per (user, course title). Never mutated
// after creation.
type Certificate struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	CourseTitle string    `json:"course_title"`
	Code        string    `json:"code"`
	IssuedOn    time.Time `json:"issued_on"`
}

// Progress is the append-style record of a completion attempt. The stored
// score only ever increases (best attempt wins).
type Progress struct {
	UserID      string    `json:"user_id"`
	CourseID    string    `json:"course_id"`
	Score       int       `json:"score"`
	Status      string    `json:"status"`
	CompletedAt time.Time `json:"completed_at"`
}

const certCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewCertificateCode returns a fresh certificate code in the format
// CERT-XXXXXXXXX (9 random base36 uppercase characters).
func NewCertificateCode() string {
	buf := make([]byte, 9)
	max := big.NewInt(int64(len(certCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// fallback: nanosecond clock, still base36
			buf[i] = certCodeAlphabet[time.Now().UnixNano()%int64(len(certCodeAlphabet))]
			continue
		}
		buf[i] = certCodeAlphabet[n.Int64()]
	}
	return fmt.Sprintf("CERT-%s", buf)
}

// CompletionReward computes the XP and coin reward for completing a course
// with the given credit weight.
func CompletionReward(credits int) (xp, coins int64) {
	if credits < 0 {
		return 0, 0
	}
	return int64(credits) * XPPerCredit, int64(credits) * CoinsPerCredit
}
