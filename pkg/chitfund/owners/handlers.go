package owners

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mikepea/chitfund/pkg/chitfund/apierr"
	"github.com/mikepea/chitfund/pkg/chitfund/ledger"
	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

// Handler handles owner record requests. Owner records are bookkeeping
// entries and are not tied to login accounts.
type Handler struct {
	ledger *ledger.Ledger
}

// NewHandler creates a new owners handler
func NewHandler(l *ledger.Ledger) *Handler {
	return &Handler{ledger: l}
}

// CreateOwnerRequest represents the request to create an owner
type CreateOwnerRequest struct {
	Name        string `json:"name" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	CompanyName string `json:"companyName"`
}

func (h *Handler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Owners())
}

func (h *Handler) Get(c *gin.Context) {
	owner, err := h.ledger.Owner(c.Param("id"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, owner)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	owner, err := h.ledger.AddOwner(c.Request.Context(), models.Owner{
		Name:        req.Name,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, owner)
}

func (h *Handler) Update(c *gin.Context) {
	var patch ledger.OwnerPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	owner, err := h.ledger.UpdateOwner(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, owner)
}

func (h *Handler) Delete(c *gin.Context) {
	if !apierr.Confirmed(c) {
		return
	}

	if err := h.ledger.DeleteOwner(c.Request.Context(), c.Param("id")); err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Owner deleted"})
}

// RegisterRoutes registers owner routes. The router group must already
// require the owner role.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("", h.Create)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
