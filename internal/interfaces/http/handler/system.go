package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/fieldops/backend/internal/infrastructure/persistence"
	"github.com/fieldops/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// SystemHandler handles health and system information endpoints
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	redis     *redis.Client
	appName   string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. The redis client may be nil
// when flag caching runs without a shared cache.
func NewSystemHandler(db *persistence.Database, redisClient *redis.Client, appName string) *SystemHandler {
	return &SystemHandler{
		db:        db,
		redis:     redisClient,
		appName:   appName,
		startTime: time.Now(),
	}
}

// RegisterRoutes registers system routes on the given group
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/health", h.Health)
		system.GET("/info", h.Info)
	}
}

// HealthResponse reports per-dependency health
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health pings the backing services. Degraded cache still reports healthy
// because module flags fall back to storage reads.
func (h *SystemHandler) Health(c *gin.Context) {
	checks := map[string]string{}
	healthy := true

	if err := h.db.Ping(); err != nil {
		checks["database"] = "unreachable"
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			checks["cache"] = "unreachable"
		} else {
			checks["cache"] = "ok"
		}
	}

	resp := HealthResponse{Status: "ok", Checks: checks}
	status := http.StatusOK
	if !healthy {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, dto.NewSuccessResponse(resp))
}

// InfoResponse reports basic process information
type InfoResponse struct {
	Name      string `json:"name"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Info returns basic system information
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, InfoResponse{
		Name:      h.appName,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}
