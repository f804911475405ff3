package handler

import (
	"time"

	"github.com/learnquest/gamification-system/internal/core/ports"
)

type completionRequest struct {
	UserID      string    `json:"user_id"`
	CourseID    string    `json:"course_id" validate:"required"`
	Score       int       `json:"score"     validate:"gte=0,lte=100"`
	Status      string    `json:"status"    validate:"required,oneof=completed failed"`
	AttemptedAt time.Time `json:"attempted_at"`
}

type completionResponse struct {
	CourseID        string `json:"course_id"`
	CourseTitle     string `json:"course_title"`
	Status          string `json:"status"`
	XPGained        int64  `json:"xp_gained"`
	CoinsGained     int64  `json:"coins_gained"`
	NewBalance      int64  `json:"new_balance"`
	NewLevel        int    `json:"new_level"`
	CertificateCode string `json:"certificate_code,omitempty"`
	CertificateNew  bool   `json:"certificate_new,omitempty"`
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

func toCompletionInput(r completionRequest, userID string) ports.CompletionInput {
	return ports.CompletionInput{
		UserID:      userID,
		CourseID:    r.CourseID,
		Score:       r.Score,
		Status:      r.Status,
		AttemptedAt: r.AttemptedAt,
	}
}
