package notifications

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mikepea/chitfund/pkg/chitfund/apierr"
	"github.com/mikepea/chitfund/pkg/chitfund/auth"
	"github.com/mikepea/chitfund/pkg/chitfund/ledger"
)

// Handler serves the session user's notifications
type Handler struct {
	ledger *ledger.Ledger
}

// NewHandler creates a new notifications handler
func NewHandler(l *ledger.Ledger) *Handler {
	return &Handler{ledger: l}
}

// List returns the session user's notifications, newest first
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	c.JSON(http.StatusOK, h.ledger.NotificationsFor(userID))
}

// MarkRead marks one of the session user's notifications as read
func (h *Handler) MarkRead(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	id := c.Param("id")

	owned := false
	for _, n := range h.ledger.NotificationsFor(userID) {
		if n.ID == id {
			owned = true
			break
		}
	}
	if !owned {
		apierr.Respond(c, ledger.ErrNotificationNotFound)
		return
	}

	if err := h.ledger.MarkNotificationAsRead(c.Request.Context(), id); err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// RegisterRoutes registers notification routes on an authenticated group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("/:id/read", h.MarkRead)
}
