package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/peterkyalo/stock-inventory-sub002/internal/application"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/auth"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/errors"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/logging"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/middleware"
)

// SalesService is the application surface the sales handlers depend on
type SalesService interface {
	CreateSale(ctx context.Context, cmd application.CreateSaleCommand) (*application.SaleDTO, error)
	GetSale(ctx context.Context, saleID string) (*application.SaleDTO, error)
	ListSales(ctx context.Context, query application.ListSalesQuery) ([]application.SaleDTO, error)
	UpdateSale(ctx context.Context, cmd application.UpdateSaleCommand) (*application.SaleDTO, error)
	ChangeStatus(ctx context.Context, cmd application.SaleStatusCommand) (*application.SaleDTO, error)
	UpdatePayment(ctx context.Context, cmd application.SalePaymentCommand) (*application.SaleDTO, error)
	CheckOverdue(ctx context.Context, operatorID string) (*application.OverdueSweepDTO, error)
}

// SalesHandlers contains handlers for sales order operations
type SalesHandlers struct {
	service SalesService
	logger  *logging.Logger
}

// NewSalesHandlers creates a new SalesHandlers
func NewSalesHandlers(service SalesService, logger *logging.Logger) *SalesHandlers {
	return &SalesHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers sales routes on the router with their required
// capabilities. The overdue sweep mutates payment state, so it carries the
// write capability despite being a GET.
func (h *SalesHandlers) RegisterRoutes(router *gin.RouterGroup) {
	read := middleware.RequireCapability(auth.Cap(auth.ResourceSales, auth.ActionRead))
	write := middleware.RequireCapability(auth.Cap(auth.ResourceSales, auth.ActionWrite))

	sales := router.Group("/sales")
	{
		sales.POST("", write, h.CreateSale)
		sales.GET("", read, h.ListSales)
		sales.GET("/check-overdue", write, h.CheckOverdue)
		sales.GET("/:saleId", read, h.GetSale)
		sales.PUT("/:saleId", write, h.UpdateSale)
		sales.PATCH("/:saleId/status", write, h.ChangeStatus)
		sales.PATCH("/:saleId/payment", write, h.UpdatePayment)
	}
}

type saleItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
	UnitPrice float64 `json:"unitPrice" binding:"gte=0"`
	Discount  float64 `json:"discount" binding:"gte=0"`
	Tax       float64 `json:"tax" binding:"gte=0"`
}

func toSaleItemInputs(items []saleItemRequest) []application.SaleItemInput {
	inputs := make([]application.SaleItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, application.SaleItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			Tax:       item.Tax,
		})
	}
	return inputs
}

// CreateSale handles draft sale creation
func (h *SalesHandlers) CreateSale(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		CustomerID         string            `json:"customerId" binding:"required"`
		Items              []saleItemRequest `json:"items" binding:"required,min=1,dive"`
		ShippingCost       float64           `json:"shippingCost" binding:"gte=0"`
		ShippingLocationID string            `json:"shippingLocationId"`
		SalesPersonID      string            `json:"salesPersonId"`
		Notes              string            `json:"notes"`
	}
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	cmd := application.CreateSaleCommand{
		CustomerID:         req.CustomerID,
		Items:              toSaleItemInputs(req.Items),
		ShippingCost:       req.ShippingCost,
		ShippingLocationID: req.ShippingLocationID,
		SalesPersonID:      req.SalesPersonID,
		Notes:              req.Notes,
		OperatorID:         middleware.GetOperatorID(c),
	}

	sale, err := h.service.CreateSale(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusCreated, sale)
}

// GetSale handles getting a sale by ID
func (h *SalesHandlers) GetSale(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	sale, err := h.service.GetSale(c.Request.Context(), c.Param("saleId"))
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, sale)
}

// ListSales handles listing sales
func (h *SalesHandlers) ListSales(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	query := application.ListSalesQuery{
		CustomerID:    c.Query("customerId"),
		Status:        c.Query("status"),
		PaymentStatus: c.Query("paymentStatus"),
		Page:          parseInt64(c.Query("page"), 1),
		PageSize:      parseInt64(c.Query("pageSize"), 50),
	}

	sales, err := h.service.ListSales(c.Request.Context(), query)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

// UpdateSale handles replacing the lines of a draft sale
func (h *SalesHandlers) UpdateSale(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		Items        []saleItemRequest `json:"items" binding:"required,min=1,dive"`
		ShippingCost float64           `json:"shippingCost" binding:"gte=0"`
	}
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	cmd := application.UpdateSaleCommand{
		SaleID:       c.Param("saleId"),
		Items:        toSaleItemInputs(req.Items),
		ShippingCost: req.ShippingCost,
		OperatorID:   middleware.GetOperatorID(c),
	}

	sale, err := h.service.UpdateSale(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, sale)
}

// ChangeStatus handles sale state machine transitions
func (h *SalesHandlers) ChangeStatus(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		Status         string `json:"status" binding:"required"`
		CreditOverride bool   `json:"creditOverride"`
	}
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	cmd := application.SaleStatusCommand{
		SaleID:         c.Param("saleId"),
		Status:         req.Status,
		CreditOverride: req.CreditOverride,
		OperatorID:     middleware.GetOperatorID(c),
	}

	sale, err := h.service.ChangeStatus(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, sale)
}

// UpdatePayment handles sale payment bookkeeping
func (h *SalesHandlers) UpdatePayment(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		PaymentStatus string  `json:"paymentStatus" binding:"required"`
		PaymentMethod string  `json:"paymentMethod"`
		PaidAmount    float64 `json:"paidAmount" binding:"gte=0"`
	}
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	cmd := application.SalePaymentCommand{
		SaleID:        c.Param("saleId"),
		PaymentStatus: req.PaymentStatus,
		PaymentMethod: req.PaymentMethod,
		PaidAmount:    req.PaidAmount,
		OperatorID:    middleware.GetOperatorID(c),
	}

	sale, err := h.service.UpdatePayment(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, sale)
}

// CheckOverdue runs the overdue invoice sweep
func (h *SalesHandlers) CheckOverdue(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	result, err := h.service.CheckOverdue(c.Request.Context(), middleware.GetOperatorID(c))
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
