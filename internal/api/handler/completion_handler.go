package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/learnquest/gamification-system/internal/core/domain"
	"github.com/learnquest/gamification-system/internal/core/ports"
)

// CompletionDispatcher is the interface the handler uses to enqueue
// completion attempts for async settlement.
type CompletionDispatcher interface {
	Enqueue(in ports.CompletionInput)
	EnqueueBatch(ins []ports.CompletionInput)
}

// CompletionHandler handles completion attempt ingestion. Single attempts
// settle synchronously so the caller sees the reward; batches are queued.
type CompletionHandler struct {
	ledger     ports.LedgerService
	dispatcher CompletionDispatcher
}

func NewCompletionHandler(ledger ports.LedgerService, dispatcher CompletionDispatcher) *CompletionHandler {
	return &CompletionHandler{ledger: ledger, dispatcher: dispatcher}
}

// Submit handles POST /v1/completions. Settles inline and returns the full
// reward breakdown.
//
// @Summary      Submit a completion attempt
// @Tags         completions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      completionRequest  true  "Completion attempt"
// @Success      200   {object}  completionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/completions [post]
func (h *CompletionHandler) Submit(c echo.Context) error {
	var req completionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	target, err := h.resolveTarget(c, req.UserID)
	if err != nil {
		return err
	}

	result, err := h.ledger.SettleCompletion(c.Request().Context(), toCompletionInput(req, target))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, completionResponse{
		CourseID:        result.CourseID,
		CourseTitle:     result.CourseTitle,
		Status:          result.Status,
		XPGained:        result.XPGained,
		CoinsGained:     result.CoinsGained,
		NewBalance:      result.NewBalance,
		NewLevel:        result.NewLevel,
		CertificateCode: result.CertificateCode,
		CertificateNew:  result.CertificateNew,
	})
}

// SubmitBatch handles POST /v1/completions/batch. Enqueues the attempts for
// async settlement and returns 202; per-user ordering is preserved by the
// dispatcher.
//
// @Summary      Submit a batch of completion attempts
// @Tags         completions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      []completionRequest  true  "Array of completion attempts"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/completions/batch [post]
func (h *CompletionHandler) SubmitBatch(c echo.Context) error {
	var reqs []completionRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(reqs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "batch cannot be empty")
	}

	inputs := make([]ports.CompletionInput, 0, len(reqs))
	for i, req := range reqs {
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				fmt.Sprintf("completion[%d]: %s", i, err.Error()))
		}
		target, err := h.resolveTarget(c, req.UserID)
		if err != nil {
			return err
		}
		inputs = append(inputs, toCompletionInput(req, target))
	}

	h.dispatcher.EnqueueBatch(inputs)
	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message: "completions accepted",
		Count:   len(inputs),
	})
}

// resolveTarget decides whose ledger the attempt settles against. Students
// may only submit for themselves; teachers and admins may name any user.
func (h *CompletionHandler) resolveTarget(c echo.Context, requested string) (string, error) {
	userID, role, err := ctxClaims(c)
	if err != nil {
		return "", err
	}
	if requested == "" || requested == userID {
		return userID, nil
	}
	if role != domain.RoleTeacher && role != domain.RoleAdmin {
		return "", domain.ErrForbidden
	}
	return requested, nil
}
