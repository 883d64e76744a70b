package handler

import (
	"net/http"

	"github.com/cuongbtq/email-verifier-be/internal/api/dto"
	"github.com/gin-gonic/gin"
)

// Balance handles GET /api/v1/credits/balance
func (h *CreditHandler) Balance(c *gin.Context) {
	summary, err := h.credits.Summary(c.Request.Context(), userIDFrom(c))
	if err != nil {
		h.fail(c, "Balance", err)
		return
	}

	respondOK(c, "Balance fetched", dto.CreditBalanceDTO{
		Balance:  summary.Balance,
		Consumed: summary.Consumed,
		Added:    summary.Added,
	})
}

// History handles GET /api/v1/credits/history
func (h *CreditHandler) History(c *gin.Context) {
	var req dto.CreditHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}

	if req.Limit <= 0 {
		req.Limit = 20
	}

	if req.Limit > 100 {
		req.Limit = 100
	}

	entries, total, err := h.credits.History(c.Request.Context(), userIDFrom(c), req.Page, req.Limit)
	if err != nil {
		h.fail(c, "History", err)
		return
	}

	resp := dto.CreditHistoryResponse{
		Entries: make([]dto.CreditEntryDTO, len(entries)),
		Page:    req.Page,
		Limit:   req.Limit,
		Total:   total,
	}
	for i, e := range entries {
		resp.Entries[i] = dto.NewCreditEntryDTO(e)
	}

	respondOK(c, "Credit history fetched", resp)
}
