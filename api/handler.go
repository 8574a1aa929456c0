package api

import (
	"errors"
	"net/http"

	"api_sales/internal/sales"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// saleRequest is the JSON body of POST /sales and PUT /sales/:id.
type saleRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

func (r saleRequest) toDomain() sales.SaleRequest {
	return sales.SaleRequest{
		UserID:    r.UserID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
	}
}

// SalesHandler holds the sales service and implements HTTP handlers for sales operations.
type SalesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger) *SalesHandler {
	return &SalesHandler{
		salesService: salesService,
		logger:       logger,
	}
}

// RegisterRoutes binds the sales endpoints to r.
func (h *SalesHandler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/sales")
	g.POST("", h.handleCreateSale)
	g.GET("/:id", h.handleGetSale)
	g.PUT("/:id", h.handleUpdateSale)
	g.DELETE("/:id", h.handleDeleteSale)
}

// handleCreateSale handles the POST /sales endpoint.
func (h *SalesHandler) handleCreateSale(ctx *gin.Context) {
	var req saleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	sale, err := h.salesService.CreateSale(ctx.Request.Context(), req.toDomain())
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, sale)
}

func (h *SalesHandler) handleGetSale(ctx *gin.Context) {
	sale, err := h.salesService.GetSale(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, sale)
}

func (h *SalesHandler) handleUpdateSale(ctx *gin.Context) {
	var req saleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	sale, err := h.salesService.UpdateSale(ctx.Request.Context(), ctx.Param("id"), req.toDomain())
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, sale)
}

func (h *SalesHandler) handleDeleteSale(ctx *gin.Context) {
	if err := h.salesService.DeleteSale(ctx.Request.Context(), ctx.Param("id")); err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// writeError maps service errors to status codes.
func (h *SalesHandler) writeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, sales.ErrInvalidQuantity):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, sales.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, sales.ErrInsufficientStock):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("unexpected sales error",
			zap.String("path", ctx.FullPath()),
			zap.Error(err),
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
