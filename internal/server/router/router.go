package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.AccountingHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	farms := r.Group("/farms/:farmID")
	{
		farms.GET("/costs", handler.Costs)
		farms.GET("/growth", handler.Growth)
		farms.GET("/projections", handler.Projections)
		farms.GET("/animals/:animalID", handler.Animal)
		farms.GET("/feeds/stock", handler.FeedStock)
		farms.POST("/feeds/recalculate", handler.RecalculateStock)
		farms.GET("/weighings/:date", handler.WeighingDay)
		farms.GET("/veterinary/:date", handler.VeterinaryDay)
		farms.POST("/digest", handler.SendDigest)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("farm_id", c.Param("farmID")),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
