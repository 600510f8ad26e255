package handler

import (
	"net/http"
	"strconv"

	"daggergm/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type createAdventureRequest struct {
	Frame      string `json:"frame"`
	Focus      string `json:"focus"`
	PartySize  int    `json:"party_size"`
	PartyLevel int    `json:"party_level"`
	Difficulty string `json:"difficulty"`
	Stakes     string `json:"stakes"`
}

type movementResponse struct {
	Movement  *models.Movement `json:"movement"`
	Remaining int              `json:"remaining_regenerations"`
}

// CreateAdventure handles POST /api/adventures.
func (h *AdventureHandler) CreateAdventure(c *gin.Context) {
	userID, ok := h.requestIdentity(c)
	if !ok {
		return
	}
	var req createAdventureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	adventure, err := h.adventureService.CreateAdventure(c.Request.Context(), userID, models.AdventureConfig{
		Frame:      req.Frame,
		Focus:      req.Focus,
		PartySize:  req.PartySize,
		PartyLevel: req.PartyLevel,
		Difficulty: req.Difficulty,
		Stakes:     req.Stakes,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, adventure)
}

// GetAdventure handles GET /api/adventures/:id.
func (h *AdventureHandler) GetAdventure(c *gin.Context) {
	userID, ok := h.requestIdentity(c)
	if !ok {
		return
	}
	adventureID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	adventure, err := h.adventureService.GetAdventure(c.Request.Context(), userID, adventureID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, adventure)
}

// ListAdventures handles GET /api/adventures.
func (h *AdventureHandler) ListAdventures(c *gin.Context) {
	userID, ok := h.requestIdentity(c)
	if !ok {
		return
	}
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	adventures, nextCursor, err := h.adventureService.ListAdventures(c.Request.Context(), userID, c.Query("cursor"), limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"adventures":  adventures,
		"next_cursor": nextCursor,
	})
}

// movementOp parses the identity and both path ids shared by all
// movement-level routes.
func (h *AdventureHandler) movementOp(c *gin.Context) (userID, adventureID, movementID uuid.UUID, ok bool) {
	userID, ok = h.requestIdentity(c)
	if !ok {
		return
	}
	adventureID, ok = h.pathUUID(c, "id")
	if !ok {
		return
	}
	movementID, ok = h.pathUUID(c, "sceneID")
	return
}

// RegenerateMovement handles POST .../movements/:sceneID/regenerate.
func (h *AdventureHandler) RegenerateMovement(c *gin.Context) {
	userID, adventureID, movementID, ok := h.movementOp(c)
	if !ok {
		return
	}
	movement, remaining, err := h.adventureService.RegenerateScaffoldMovement(c.Request.Context(), userID, adventureID, movementID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, movementResponse{Movement: movement, Remaining: remaining})
}

// ExpandMovement handles POST .../movements/:sceneID/expand.
func (h *AdventureHandler) ExpandMovement(c *gin.Context) {
	userID, adventureID, movementID, ok := h.movementOp(c)
	if !ok {
		return
	}
	movement, remaining, err := h.adventureService.ExpandMovement(c.Request.Context(), userID, adventureID, movementID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, movementResponse{Movement: movement, Remaining: remaining})
}

// RegenerateExpansion handles POST .../movements/:sceneID/regenerate-expansion.
func (h *AdventureHandler) RegenerateExpansion(c *gin.Context) {
	userID, adventureID, movementID, ok := h.movementOp(c)
	if !ok {
		return
	}
	movement, remaining, err := h.adventureService.RegenerateExpansion(c.Request.Context(), userID, adventureID, movementID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, movementResponse{Movement: movement, Remaining: remaining})
}

type refineRequest struct {
	Instruction string `json:"instruction" binding:"required"`
}

// RefineMovement handles POST .../movements/:sceneID/refine.
func (h *AdventureHandler) RefineMovement(c *gin.Context) {
	userID, adventureID, movementID, ok := h.movementOp(c)
	if !ok {
		return
	}
	var req refineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "instruction is required"})
		return
	}
	movement, remaining, err := h.adventureService.RefineMovementContent(c.Request.Context(), userID, adventureID, movementID, req.Instruction)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, movementResponse{Movement: movement, Remaining: remaining})
}

// ConfirmMovement handles POST .../movements/:sceneID/confirm.
func (h *AdventureHandler) ConfirmMovement(c *gin.Context) {
	userID, adventureID, movementID, ok := h.movementOp(c)
	if !ok {
		return
	}
	if err := h.adventureService.ConfirmMovement(c.Request.Context(), userID, adventureID, movementID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"confirmed": true})
}

// UnconfirmMovement handles POST .../movements/:sceneID/unconfirm.
func (h *AdventureHandler) UnconfirmMovement(c *gin.Context) {
	userID, adventureID, movementID, ok := h.movementOp(c)
	if !ok {
		return
	}
	if err := h.adventureService.UnconfirmMovement(c.Request.Context(), userID, adventureID, movementID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"confirmed": false})
}

// LockMovement handles POST .../movements/:sceneID/lock.
func (h *AdventureHandler) LockMovement(c *gin.Context) {
	h.setMovementLock(c, true)
}

// UnlockMovement handles POST .../movements/:sceneID/unlock.
func (h *AdventureHandler) UnlockMovement(c *gin.Context) {
	h.setMovementLock(c, false)
}

func (h *AdventureHandler) setMovementLock(c *gin.Context, locked bool) {
	userID, adventureID, movementID, ok := h.movementOp(c)
	if !ok {
		return
	}
	if err := h.adventureService.SetMovementLock(c.Request.Context(), userID, adventureID, movementID, locked); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locked": locked})
}

// TransitionToReady handles POST /api/adventures/:id/ready.
func (h *AdventureHandler) TransitionToReady(c *gin.Context) {
	userID, ok := h.requestIdentity(c)
	if !ok {
		return
	}
	adventureID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.adventureService.TransitionToReady(c.Request.Context(), userID, adventureID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.StatusReady})
}

// ArchiveAdventure handles POST /api/adventures/:id/archive.
func (h *AdventureHandler) ArchiveAdventure(c *gin.Context) {
	userID, ok := h.requestIdentity(c)
	if !ok {
		return
	}
	adventureID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.adventureService.ArchiveAdventure(c.Request.Context(), userID, adventureID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.StatusArchived})
}

// GetRegenerationCounts handles GET /api/adventures/:id/regenerations.
func (h *AdventureHandler) GetRegenerationCounts(c *gin.Context) {
	userID, ok := h.requestIdentity(c)
	if !ok {
		return
	}
	adventureID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	counts, err := h.adventureService.GetRegenerationCounts(c.Request.Context(), userID, adventureID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}
