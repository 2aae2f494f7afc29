package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mikepea/chitfund/pkg/chitfund/apierr"
	"github.com/mikepea/chitfund/pkg/chitfund/ledger"
)

// Handler serves the UI preferences
type Handler struct {
	ledger *ledger.Ledger
}

// NewHandler creates a new settings handler
func NewHandler(l *ledger.Ledger) *Handler {
	return &Handler{ledger: l}
}

// UpdateSettingsRequest holds the preferences to change. Nil fields are kept.
type UpdateSettingsRequest struct {
	PageAnimation        *string `json:"pageAnimation"`
	DarkModeEnabled      *bool   `json:"darkModeEnabled"`
	NotificationsEnabled *bool   `json:"notificationsEnabled"`
}

func (h *Handler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Preferences())
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if req.PageAnimation != nil {
		if err := h.ledger.SetPageAnimation(ctx, *req.PageAnimation); err != nil {
			apierr.Respond(c, err)
			return
		}
	}
	if req.DarkModeEnabled != nil {
		h.ledger.SetDarkMode(ctx, *req.DarkModeEnabled)
	}
	if req.NotificationsEnabled != nil {
		h.ledger.SetNotificationsEnabled(ctx, *req.NotificationsEnabled)
	}

	c.JSON(http.StatusOK, h.ledger.Preferences())
}

// RegisterRoutes registers settings routes on an authenticated group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Get)
	rg.PUT("", h.Update)
}
