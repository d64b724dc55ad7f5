package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"regbot/internal/entities"
	"regbot/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type AdminHandler struct {
	dashboard *usecases.DashboardUsecase
	broadcast *usecases.BroadcastUsecase
	log       zerolog.Logger
}

func NewAdminHandler(dashboard *usecases.DashboardUsecase, broadcast *usecases.BroadcastUsecase, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		dashboard: dashboard,
		broadcast: broadcast,
		log:       log.With().Str("component", "admin_api").Logger(),
	}
}

// GetUsers returns registrants newest first, optionally filtered by batch and capped by limit.
func (h *AdminHandler) GetUsers(c *gin.Context) {
	batch, err := ParseBatch(c.Query("batch"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit, err := ParseLimit(c.Query("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	users, err := h.dashboard.ListUsers(c.Request.Context(), entities.UserFilter{Batch: batch, Limit: limit})
	if err != nil {
		h.log.Error().Err(err).Msg("list users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	if users == nil {
		users = []entities.User{}
	}
	c.JSON(http.StatusOK, users)
}

type broadcastRequest struct {
	Batch   any             `json:"batch"`
	Message json.RawMessage `json:"message"`
}

// Broadcast sends a message to every registrant or to one batch.
func (h *AdminHandler) Broadcast(c *gin.Context) {
	var req broadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var message string
	if err := json.Unmarshal(req.Message, &message); err != nil || strings.TrimSpace(message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message required"})
		return
	}

	// a client that hangs up must not cut the broadcast short
	ctx := context.WithoutCancel(c.Request.Context())
	result, err := h.broadcast.Broadcast(ctx, BroadcastBatch(req.Batch), message)
	if err != nil {
		if errors.Is(err, usecases.ErrMessageRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message required"})
			return
		}
		h.log.Error().Err(err).Msg("broadcast failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Broadcast failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}
