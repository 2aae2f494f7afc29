// Package apierr maps ledger errors onto HTTP responses.
package apierr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mikepea/chitfund/pkg/chitfund/ledger"
)

// Status returns the HTTP status for a ledger error
func Status(err error) int {
	switch {
	case errors.Is(err, ledger.ErrGroupNotFound),
		errors.Is(err, ledger.ErrMemberNotFound),
		errors.Is(err, ledger.ErrOwnerNotFound),
		errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrAuctionNotFound),
		errors.Is(err, ledger.ErrPaymentNotFound),
		errors.Is(err, ledger.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrCapacityExceeded),
		errors.Is(err, ledger.ErrAlreadyEnrolled),
		errors.Is(err, ledger.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrInvalidSecret):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrInvalidInput),
		errors.Is(err, ledger.ErrNegativeInstallment):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err as {"error": msg}. Internal errors are logged and
// replaced by a generic message.
func Respond(c *gin.Context, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// Confirmed reports whether the request carries ?confirm=true. If not it
// answers 428 and the caller must return without mutating anything.
func Confirmed(c *gin.Context) bool {
	if c.Query("confirm") == "true" {
		return true
	}
	c.JSON(http.StatusPreconditionRequired, gin.H{"error": "Confirmation required: repeat the request with ?confirm=true"})
	return false
}
