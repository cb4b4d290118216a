package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/imobia/backend/internal/infrastructure/persistence"
)

// SystemHandler exposes liveness and runtime information endpoints
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	appName   string
	env       string
	startedAt time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *persistence.Database, appName, env string) *SystemHandler {
	return &SystemHandler{
		db:        db,
		appName:   appName,
		env:       env,
		startedAt: time.Now(),
	}
}

// Ping answers a plain liveness probe
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, gin.H{"message": "pong"})
}

// Info reports application identity and uptime
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, gin.H{
		"app":    h.appName,
		"env":    h.env,
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// Stats reports database connection pool statistics
func (h *SystemHandler) Stats(c *gin.Context) {
	stats, err := h.db.Stats()
	if err != nil {
		h.InternalError(c, "Failed to read database statistics")
		return
	}
	h.Success(c, stats)
}
