// Package web provides API routes for the web server.
package web

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/PancyStudios/PancyModGo/internal/ledger"
	"github.com/PancyStudios/PancyModGo/pkg/config"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	maxHistoryLimit = 100
	requestTimeout  = 5 * time.Second
)

// Moderation is the read side of the warning ledger exposed over HTTP
type Moderation interface {
	Warnings(ctx context.Context, subjectID string) ([]models.Warning, error)
	Recent(ctx context.Context, limit int) ([]models.Warning, error)
	Ping(ctx context.Context) error
}

// Bot reports the Discord gateway state
type Bot interface {
	IsReady() bool
	GuildCount() int
}

// Broker reports the MQTT connection state
type Broker interface {
	IsConnected() bool
}

// APIDeps groups what the API handlers read from. Bot, Broker and Gatherer may be nil.
type APIDeps struct {
	Moderation Moderation
	Bot        Bot
	Broker     Broker
	Gatherer   prometheus.Gatherer
}

// SetupAPIRoutes sets up the API routes
func SetupAPIRoutes(s *Server, deps APIDeps) {
	api := s.Group("/api")
	{
		api.GET("/health", healthHandler)
		api.GET("/status", statusHandler(deps))
		api.GET("/warnings/:subject", warningsHandler(deps))
		api.GET("/history", historyHandler(deps))
	}

	if deps.Gatherer != nil {
		s.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
}

// healthHandler returns a simple health check response
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "PancyMod Go is running",
	})
}

// statusHandler returns the bot, ledger and broker status
func statusHandler(deps APIDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		ledgerStatus := gin.H{"isOnline": true}
		if err := deps.Moderation.Ping(ctx); err != nil {
			ledgerStatus = gin.H{"isOnline": false, "error": err.Error()}
		}

		botStatus := gin.H{"isOnline": false}
		if deps.Bot != nil {
			botStatus = gin.H{"isOnline": deps.Bot.IsReady(), "guilds": deps.Bot.GuildCount()}
		}

		brokerOnline := deps.Broker != nil && deps.Broker.IsConnected()

		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": config.Version,
			"ledger":  ledgerStatus,
			"bot":     botStatus,
			"mqtt":    gin.H{"isOnline": brokerOnline},
		})
	}
}

// warningsHandler returns every warning of one user in insertion order
func warningsHandler(deps APIDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.Param("subject")

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		list, err := deps.Moderation.Warnings(ctx, subject)
		if err != nil {
			ledgerError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"subjectId": subject,
			"count":     len(list),
			"warnings":  nonNil(list),
		})
	}
}

// historyHandler returns the newest warnings across all users
func historyHandler(deps APIDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := ledger.DefaultHistoryLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":   "Bad Request",
					"message": "El parámetro limit debe ser un entero positivo.",
					"status":  400,
				})
				return
			}
			limit = min(n, maxHistoryLimit)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		list, err := deps.Moderation.Recent(ctx, limit)
		if err != nil {
			ledgerError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"count":    len(list),
			"warnings": nonNil(list),
		})
	}
}

func ledgerError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if stderrors.Is(err, ledger.ErrStoreUnavailable) {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"error":   http.StatusText(status),
		"message": "El registro de advertencias no está disponible en este momento.",
		"status":  status,
	})
}

// nonNil keeps empty lists serialized as [] instead of null
func nonNil(list []models.Warning) []models.Warning {
	if list == nil {
		return []models.Warning{}
	}
	return list
}
