package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type grantCreditsRequest struct {
	Amount int    `json:"amount" binding:"required"`
	Reason string `json:"reason"`
}

// GetCreditBalance handles GET /api/credits.
func (h *AdventureHandler) GetCreditBalance(c *gin.Context) {
	userID, ok := h.requestIdentity(c)
	if !ok {
		return
	}
	balance, err := h.creditService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"credits": balance})
}

// GrantCredits handles POST /api/credits/grant. The amount comes from the
// payment flow; the endpoint only records the top-up.
func (h *AdventureHandler) GrantCredits(c *gin.Context) {
	userID, ok := h.requestIdentity(c)
	if !ok {
		return
	}
	var req grantCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount is required"})
		return
	}
	reason := req.Reason
	if reason == "" {
		reason = "credit purchase"
	}
	balance, err := h.creditService.Grant(c.Request.Context(), userID, req.Amount, reason)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"credits": balance})
}
