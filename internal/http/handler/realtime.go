package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"crewdesk.app/core/internal/authz"
	"crewdesk.app/core/internal/event"
)

// RealtimeHandler authorizes live channel subscriptions. The gateway that
// terminates the socket calls this endpoint before binding a client to a
// channel; the decision is re-derived from the channel name and current
// membership, never from anything the client asserts.
type RealtimeHandler struct {
	authz *authz.Engine
}

func NewRealtimeHandler(authzEngine *authz.Engine) *RealtimeHandler {
	return &RealtimeHandler{authz: authzEngine}
}

type realtimeAuthRequest struct {
	Channel string `json:"channel" binding:"required"`
}

func (h *RealtimeHandler) Authorize(c *gin.Context) {
	ctx := c.Request.Context()

	actorID, err := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64)
	if err != nil || actorID <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid user identity"})
		return
	}

	var req realtimeAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, _, err := event.ParseChannel(req.Channel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed channel name"})
		return
	}

	ok, err := h.authz.CanSubscribe(ctx, actorID, req.Channel)
	if err != nil {
		slog.ErrorContext(ctx, "channel authorization failed", "error", err, "channel", req.Channel)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "authorization check failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"granted": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"granted": true, "channel": req.Channel})
}
