package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/learnquest/gamification-system/internal/core/domain"
	"github.com/learnquest/gamification-system/internal/core/ports"
)

// RankingHandler serves the leaderboard, per-user rank, and the progress
// summary view.
type RankingHandler struct {
	ranking ports.RankingService
	ledger  ports.LedgerService
}

func NewRankingHandler(ranking ports.RankingService, ledger ports.LedgerService) *RankingHandler {
	return &RankingHandler{ranking: ranking, ledger: ledger}
}

type summaryResponse struct {
	User           *domain.Account       `json:"user"`
	Progress       []*domain.Progress    `json:"progress"`
	Certificates   []*domain.Certificate `json:"certificates"`
	TotalScore     int                   `json:"total_score"`
	CompletedCount int                   `json:"completed_count"`
	Rank           int                   `json:"rank"`
	TotalUsers     int                   `json:"total_users"`
}

// Leaderboard handles GET /v1/leaderboard?limit=N.
//
// @Summary      XP leaderboard
// @Tags         ranking
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Max entries (default 20, cap 100)"
// @Success      200    {array}   ports.LeaderboardEntry
// @Failure      401    {object}  errorResponse
// @Router       /v1/leaderboard [get]
func (h *RankingHandler) Leaderboard(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	entries, err := h.ranking.Leaderboard(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []*ports.LeaderboardEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}

// Rank handles GET /v1/users/:id/rank.
//
// @Summary      A user's leaderboard standing
// @Tags         ranking
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  ports.RankResult
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id}/rank [get]
func (h *RankingHandler) Rank(c echo.Context) error {
	result, err := h.ranking.Rank(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Summary handles GET /v1/users/:id/summary. Students may only read their
// own; teachers and admins may read anyone's.
//
// @Summary      Per-user progress summary
// @Tags         ranking
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  summaryResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id}/summary [get]
func (h *RankingHandler) Summary(c echo.Context) error {
	userID, role, err := ctxClaims(c)
	if err != nil {
		return err
	}
	target := c.Param("id")
	if target != userID && role != domain.RoleTeacher && role != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	summary, err := h.ledger.Summary(c.Request().Context(), target)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, summaryResponse{
		User:           summary.Account,
		Progress:       summary.Progress,
		Certificates:   summary.Certificates,
		TotalScore:     summary.TotalScore,
		CompletedCount: summary.CompletedCount,
		Rank:           summary.Rank,
		TotalUsers:     summary.TotalUsers,
	})
}
