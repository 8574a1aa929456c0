package api

import (
	"net/http"

	"api_sales/internal/sales"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds a gin engine with the logging middleware and all routes.
func NewRouter(salesService *sales.Service, logger *zap.Logger) *gin.Engine {
	e := gin.New()
	e.Use(requestLogger(logger), recovery(logger))
	InitRoutes(e, salesService, logger)
	return e
}

// InitRoutes registers all sale CRUD endpoints on the given Gin engine.
func InitRoutes(e *gin.Engine, salesService *sales.Service, logger *zap.Logger) {
	salesHandler := NewSalesHandler(salesService, logger)
	salesHandler.RegisterRoutes(e)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
