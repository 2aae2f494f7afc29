package backup

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mikepea/chitfund/pkg/chitfund/apierr"
	"github.com/mikepea/chitfund/pkg/chitfund/ledger"
)

// Handler handles state export and import
type Handler struct {
	ledger *ledger.Ledger
}

// NewHandler creates a new backup handler
func NewHandler(l *ledger.Ledger) *Handler {
	return &Handler{ledger: l}
}

// ImportResult summarizes a restored snapshot
type ImportResult struct {
	Groups        int `json:"groups"`
	Members       int `json:"members"`
	Owners        int `json:"owners"`
	Auctions      int `json:"auctions"`
	Payments      int `json:"payments"`
	Accounts      int `json:"accounts"`
	Notifications int `json:"notifications"`
}

// Export returns the full state as one JSON document
func (h *Handler) Export(c *gin.Context) {
	snapshot := h.ledger.Snapshot()

	if c.Query("download") == "true" {
		c.Header("Content-Disposition", "attachment; filename=chitfund-backup.json")
	}

	c.JSON(http.StatusOK, snapshot)
}

// Import replaces the full state and rewrites every slot
func (h *Handler) Import(c *gin.Context) {
	var snapshot ledger.State
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.ledger.Restore(c.Request.Context(), snapshot); err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, ImportResult{
		Groups:        len(snapshot.Groups),
		Members:       len(snapshot.Members),
		Owners:        len(snapshot.Owners),
		Auctions:      len(snapshot.Auctions),
		Payments:      len(snapshot.Payments),
		Accounts:      len(snapshot.AuthAccounts),
		Notifications: len(snapshot.Notifications),
	})
}

// RegisterRoutes registers backup routes on an owner-only router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/export", h.Export)
	rg.POST("/import", h.Import)
}
