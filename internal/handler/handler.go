package handler

import (
	"net/http"

	"daggergm/internal/models"
	"daggergm/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdventureHandler wires the adventure and credit services to gin routes.
type AdventureHandler struct {
	adventureService service.AdventureService
	creditService    service.CreditService
	logger           *zap.Logger
}

// NewAdventureHandler creates the HTTP handler.
func NewAdventureHandler(adventureService service.AdventureService, creditService service.CreditService, logger *zap.Logger) *AdventureHandler {
	return &AdventureHandler{
		adventureService: adventureService,
		creditService:    creditService,
		logger:           logger.Named("AdventureHandler"),
	}
}

// RegisterRoutes mounts all authenticated API routes onto the group.
func (h *AdventureHandler) RegisterRoutes(api *gin.RouterGroup) {
	adventures := api.Group("/adventures")
	{
		adventures.POST("", h.CreateAdventure)
		adventures.GET("", h.ListAdventures)
		adventures.GET("/:id", h.GetAdventure)
		adventures.GET("/:id/regenerations", h.GetRegenerationCounts)
		adventures.POST("/:id/ready", h.TransitionToReady)
		adventures.POST("/:id/archive", h.ArchiveAdventure)

		movements := adventures.Group("/:id/movements/:sceneID")
		{
			movements.POST("/regenerate", h.RegenerateMovement)
			movements.POST("/expand", h.ExpandMovement)
			movements.POST("/regenerate-expansion", h.RegenerateExpansion)
			movements.POST("/refine", h.RefineMovement)
			movements.POST("/confirm", h.ConfirmMovement)
			movements.POST("/unconfirm", h.UnconfirmMovement)
			movements.POST("/lock", h.LockMovement)
			movements.POST("/unlock", h.UnlockMovement)
		}
	}

	credits := api.Group("/credits")
	{
		credits.GET("", h.GetCreditBalance)
		credits.POST("/grant", h.GrantCredits)
	}
}

// getUserIDFromContext reads the requester id set by the auth middleware.
func getUserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(models.ContextUserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// requestIdentity pulls the requester id or aborts with 401.
func (h *AdventureHandler) requestIdentity(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		h.logger.Error("User ID missing from authenticated request", zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}
	return userID, true
}

// pathUUID parses one path parameter as a UUID or aborts with 400.
func (h *AdventureHandler) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
