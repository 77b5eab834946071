package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tillnow2/hrms-lite-be/internal/config"
	"github.com/tillnow2/hrms-lite-be/internal/server/handlers"
)

const requestIDHeader = "X-Request-ID"

// Handlers groups the HTTP adapters mounted by New.
type Handlers struct {
	Employees  *handlers.EmployeeHandler
	Attendance *handlers.AttendanceHandler
	Dashboard  *handlers.DashboardHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, cfg config.ServerConfig, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	handlers.SetupValidator()

	r := gin.New()
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(recoveryMiddleware(logger))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.NewErrorResponse("Not Found", nil))
	})

	r.GET("/", handlers.Root)
	r.GET("/health", handlers.Health)

	api := r.Group(cfg.APIPrefix)

	employees := api.Group("/employees")
	employees.GET("", h.Employees.List)
	employees.POST("", h.Employees.Create)
	employees.GET("/:employeeId", h.Employees.Get)
	employees.PUT("/:employeeId", h.Employees.Update)
	employees.DELETE("/:employeeId", h.Employees.Delete)

	attendance := api.Group("/attendance")
	attendance.POST("", h.Attendance.Mark)
	attendance.GET("", h.Attendance.List)
	attendance.GET("/export", h.Attendance.Export)
	attendance.GET("/employee/:employeeId", h.Attendance.ListByEmployee)
	attendance.GET("/summary/:employeeId", h.Attendance.Summary)
	attendance.GET("/:attendanceId", h.Attendance.Get)
	attendance.PUT("/:attendanceId", h.Attendance.Update)
	attendance.DELETE("/:attendanceId", h.Attendance.Delete)

	api.GET("/dashboard/stats", h.Dashboard.Stats)

	logger.Info("router initialized", zap.String("api_prefix", cfg.APIPrefix))

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", requestIDHeader},
		MaxAge:           12 * time.Hour,
	}

	// Browsers reject credentials alongside a wildcard origin.
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(handlers.RequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func recoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(handlers.RequestIDKey)),
			zap.Stack("stack"))
		c.AbortWithStatusJSON(http.StatusInternalServerError, handlers.NewErrorResponse("An unexpected error occurred", nil))
	})
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(handlers.RequestIDKey)))
	}
}
