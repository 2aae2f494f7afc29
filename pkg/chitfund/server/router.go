package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mikepea/chitfund/pkg/chitfund/accounts"
	"github.com/mikepea/chitfund/pkg/chitfund/admin"
	"github.com/mikepea/chitfund/pkg/chitfund/auctions"
	"github.com/mikepea/chitfund/pkg/chitfund/auth"
	"github.com/mikepea/chitfund/pkg/chitfund/backup"
	"github.com/mikepea/chitfund/pkg/chitfund/groups"
	"github.com/mikepea/chitfund/pkg/chitfund/ledger"
	"github.com/mikepea/chitfund/pkg/chitfund/logging"
	"github.com/mikepea/chitfund/pkg/chitfund/members"
	"github.com/mikepea/chitfund/pkg/chitfund/metrics"
	"github.com/mikepea/chitfund/pkg/chitfund/notifications"
	"github.com/mikepea/chitfund/pkg/chitfund/owners"
	"github.com/mikepea/chitfund/pkg/chitfund/reports"
	"github.com/mikepea/chitfund/pkg/chitfund/settings"
)

// NewRouter builds the gin engine with every API route
func NewRouter(l *ledger.Ledger, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(logger), metrics.Middleware())

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "chitfund",
		})
	}
	r.GET("/health", health)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	{
		api.GET("/health", health)

		// Auth routes (public, except /me)
		accounts.NewHandler(l).RegisterRoutes(api.Group("/auth"))

		authed := api.Group("", auth.AuthMiddleware())

		groups.NewHandler(l).RegisterRoutes(authed.Group("/groups"))
		members.NewHandler(l).RegisterRoutes(authed.Group("/members"))
		auctions.NewHandler(l).RegisterRoutes(authed.Group("/auctions"))
		notifications.NewHandler(l).RegisterRoutes(authed.Group("/notifications"))
		settings.NewHandler(l).RegisterRoutes(authed.Group("/settings"))
		reports.NewHandler(l).RegisterRoutes(authed.Group("/reports"))

		// Owner-only routes
		ownerOnly := authed.Group("", auth.RequireOwner())
		owners.NewHandler(l).RegisterRoutes(ownerOnly.Group("/owners"))

		adminGroup := ownerOnly.Group("/admin")
		admin.NewHandler(l).RegisterRoutes(adminGroup)
		backup.NewHandler(l).RegisterRoutes(adminGroup)
	}

	return r
}
