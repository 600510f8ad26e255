package handler

import (
	"errors"
	"net/http"

	"daggergm/internal/interfaces"
	"daggergm/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleServiceError maps service sentinels to HTTP statuses in one place.
// Unrecognized errors become 500 with a generic body.
func (h *AdventureHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrMovementNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, models.ErrInsufficientCredits):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient credits"})
	case errors.Is(err, models.ErrRegenerationLimitExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "regeneration limit exceeded"})
	case errors.Is(err, models.ErrSceneConfirmed):
		c.JSON(http.StatusConflict, gin.H{"error": "scene is confirmed"})
	case errors.Is(err, models.ErrNotAllScenesConfirmed):
		c.JSON(http.StatusConflict, gin.H{"error": "not all scenes are confirmed"})
	case errors.Is(err, models.ErrInvalidStatus):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid adventure status"})
	case errors.Is(err, models.ErrGenerationFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "generation failed"})
	case errors.Is(err, models.ErrBadRequest), errors.Is(err, models.ErrInvalidInput), errors.Is(err, interfaces.ErrInvalidCursor):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Unhandled service error", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
