package accounts

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mikepea/chitfund/pkg/chitfund/apierr"
	"github.com/mikepea/chitfund/pkg/chitfund/auth"
	"github.com/mikepea/chitfund/pkg/chitfund/ledger"
	"github.com/mikepea/chitfund/pkg/chitfund/models"
)

// Handler handles sign-up, login and session requests
type Handler struct {
	ledger *ledger.Ledger
}

// NewHandler creates a new accounts handler
func NewHandler(l *ledger.Ledger) *Handler {
	return &Handler{ledger: l}
}

// SignUpRequest represents the sign-up request body
type SignUpRequest struct {
	Name       string      `json:"name" binding:"required"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone" binding:"required"`
	Username   string      `json:"username" binding:"required"`
	Password   string      `json:"password" binding:"required"`
	Role       models.Role `json:"role" binding:"required,oneof=owner member"`
	SecretCode string      `json:"secretCode"`
}

// LoginRequest represents the login request body. Password may be empty
// for the seed admin and phone logins.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password"`
}

// ResetPasswordRequest represents the password reset body
type ResetPasswordRequest struct {
	Phone       string `json:"phone" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// AccountResponse is an AuthAccount without its password hash
type AccountResponse struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone"`
	Username   string      `json:"username"`
	Role       models.Role `json:"role"`
	IsApproved bool        `json:"isApproved"`
}

// NewAccountResponse strips the password hash from an account
func NewAccountResponse(a models.AuthAccount) AccountResponse {
	return AccountResponse{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		Phone:      a.Phone,
		Username:   a.Username,
		Role:       a.Role,
		IsApproved: a.IsApproved,
	}
}

// AuthResponse represents the login response
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// SignUp registers an owner or member account.
// Owners need the secret code and are approved at once; members wait for
// an owner to approve them.
func (h *Handler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	acc, err := h.ledger.SignUp(c.Request.Context(), ledger.SignUpRequest{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Username: req.Username,
		Password: req.Password,
	}, req.Role, req.SecretCode)
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewAccountResponse(acc))
}

// Login authenticates and returns a JWT for the session user.
// Unapproved members get 403 with status "pending".
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, result := h.ledger.Login(c.Request.Context(), req.Username, req.Password)
	switch result {
	case ledger.LoginPending:
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is awaiting approval", "status": result})
		return
	case ledger.LoginInvalid:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password", "status": result})
		return
	}

	token, err := auth.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}

// Logout clears the stored session (tokens expire on their own)
func (h *Handler) Logout(c *gin.Context) {
	h.ledger.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// ResetPassword sets a new password for the account registered to a phone
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.ledger.ResetPassword(c.Request.Context(), req.Phone, req.NewPassword); err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// Me returns the current authenticated user
func (h *Handler) Me(c *gin.Context) {
	user, exists := auth.GetUser(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// RegisterRoutes registers auth routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/signup", h.SignUp)
	rg.POST("/login", h.Login)
	rg.POST("/logout", h.Logout)
	rg.POST("/reset-password", h.ResetPassword)
	rg.GET("/me", auth.AuthMiddleware(), h.Me)
}
