package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/peterkyalo/stock-inventory-sub002/internal/application"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/auth"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/errors"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/logging"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/middleware"
)

// PurchaseService is the application surface the purchase handlers depend on
type PurchaseService interface {
	CreatePurchase(ctx context.Context, cmd application.CreatePurchaseCommand) (*application.PurchaseDTO, error)
	GetPurchase(ctx context.Context, purchaseID string) (*application.PurchaseDTO, error)
	ListPurchases(ctx context.Context, query application.ListPurchasesQuery) ([]application.PurchaseDTO, error)
	UpdatePurchase(ctx context.Context, cmd application.UpdatePurchaseCommand) (*application.PurchaseDTO, error)
	ChangeStatus(ctx context.Context, cmd application.PurchaseStatusCommand) (*application.PurchaseDTO, error)
	Receive(ctx context.Context, cmd application.ReceivePurchaseCommand) (*application.PurchaseDTO, error)
	UpdatePayment(ctx context.Context, cmd application.PurchasePaymentCommand) (*application.PurchaseDTO, error)
	DeletePurchase(ctx context.Context, cmd application.DeletePurchaseCommand) error
}

// PurchaseHandlers contains handlers for purchase order operations
type PurchaseHandlers struct {
	service PurchaseService
	logger  *logging.Logger
}

// NewPurchaseHandlers creates a new PurchaseHandlers
func NewPurchaseHandlers(service PurchaseService, logger *logging.Logger) *PurchaseHandlers {
	return &PurchaseHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers purchase routes on the router with their
// required capabilities
func (h *PurchaseHandlers) RegisterRoutes(router *gin.RouterGroup) {
	read := middleware.RequireCapability(auth.Cap(auth.ResourcePurchases, auth.ActionRead))
	write := middleware.RequireCapability(auth.Cap(auth.ResourcePurchases, auth.ActionWrite))
	del := middleware.RequireCapability(auth.Cap(auth.ResourcePurchases, auth.ActionDelete))

	purchases := router.Group("/purchases")
	{
		purchases.POST("", write, h.CreatePurchase)
		purchases.GET("", read, h.ListPurchases)
		purchases.GET("/:purchaseId", read, h.GetPurchase)
		purchases.PUT("/:purchaseId", write, h.UpdatePurchase)
		purchases.PATCH("/:purchaseId/status", write, h.ChangeStatus)
		purchases.PATCH("/:purchaseId/receive", write, h.Receive)
		purchases.PATCH("/:purchaseId/payment", write, h.UpdatePayment)
		purchases.DELETE("/:purchaseId", del, h.DeletePurchase)
	}
}

type purchaseItemRequest struct {
	ProductID  string  `json:"productId" binding:"required"`
	OrderedQty int     `json:"orderedQty" binding:"required,gt=0"`
	UnitPrice  float64 `json:"unitPrice" binding:"gte=0"`
	Discount   float64 `json:"discount" binding:"gte=0"`
	Tax        float64 `json:"tax" binding:"gte=0"`
}

func toPurchaseItemInputs(items []purchaseItemRequest) []application.PurchaseItemInput {
	inputs := make([]application.PurchaseItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, application.PurchaseItemInput{
			ProductID:  item.ProductID,
			OrderedQty: item.OrderedQty,
			UnitPrice:  item.UnitPrice,
			Discount:   item.Discount,
			Tax:        item.Tax,
		})
	}
	return inputs
}

// CreatePurchase handles draft purchase creation
func (h *PurchaseHandlers) CreatePurchase(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		SupplierID          string                `json:"supplierId" binding:"required"`
		Items               []purchaseItemRequest `json:"items" binding:"required,min=1,dive"`
		ShippingCost        float64               `json:"shippingCost" binding:"gte=0"`
		ReceivingLocationID string                `json:"receivingLocationId"`
		ExpectedDate        *time.Time            `json:"expectedDate"`
		Notes               string                `json:"notes"`
	}
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	cmd := application.CreatePurchaseCommand{
		SupplierID:          req.SupplierID,
		Items:               toPurchaseItemInputs(req.Items),
		ShippingCost:        req.ShippingCost,
		ReceivingLocationID: req.ReceivingLocationID,
		ExpectedDate:        req.ExpectedDate,
		Notes:               req.Notes,
		OperatorID:          middleware.GetOperatorID(c),
	}

	purchase, err := h.service.CreatePurchase(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusCreated, purchase)
}

// GetPurchase handles getting a purchase by ID
func (h *PurchaseHandlers) GetPurchase(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	purchase, err := h.service.GetPurchase(c.Request.Context(), c.Param("purchaseId"))
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, purchase)
}

// ListPurchases handles listing purchases
func (h *PurchaseHandlers) ListPurchases(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	query := application.ListPurchasesQuery{
		SupplierID: c.Query("supplierId"),
		Status:     c.Query("status"),
		Page:       parseInt64(c.Query("page"), 1),
		PageSize:   parseInt64(c.Query("pageSize"), 50),
	}

	purchases, err := h.service.ListPurchases(c.Request.Context(), query)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

// UpdatePurchase handles replacing the lines of an editable purchase
func (h *PurchaseHandlers) UpdatePurchase(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		Items        []purchaseItemRequest `json:"items" binding:"required,min=1,dive"`
		ShippingCost float64               `json:"shippingCost" binding:"gte=0"`
	}
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	cmd := application.UpdatePurchaseCommand{
		PurchaseID:   c.Param("purchaseId"),
		Items:        toPurchaseItemInputs(req.Items),
		ShippingCost: req.ShippingCost,
		OperatorID:   middleware.GetOperatorID(c),
	}

	purchase, err := h.service.UpdatePurchase(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, purchase)
}

// ChangeStatus handles purchase state machine transitions
func (h *PurchaseHandlers) ChangeStatus(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	cmd := application.PurchaseStatusCommand{
		PurchaseID: c.Param("purchaseId"),
		Status:     req.Status,
		OperatorID: middleware.GetOperatorID(c),
	}

	purchase, err := h.service.ChangeStatus(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, purchase)
}

// Receive handles posting a receipt against an ordered purchase
func (h *PurchaseHandlers) Receive(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		Lines []struct {
			ItemID   string `json:"itemId" binding:"required"`
			Quantity int    `json:"quantity" binding:"required,gt=0"`
		} `json:"lines" binding:"required,min=1,dive"`
		LocationID string `json:"locationId"`
	}
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	lines := make([]application.ReceiptLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, application.ReceiptLineInput{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
		})
	}

	cmd := application.ReceivePurchaseCommand{
		PurchaseID: c.Param("purchaseId"),
		Lines:      lines,
		LocationID: req.LocationID,
		OperatorID: middleware.GetOperatorID(c),
	}

	purchase, err := h.service.Receive(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, purchase)
}

// UpdatePayment handles purchase payment bookkeeping
func (h *PurchaseHandlers) UpdatePayment(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		PaymentStatus string `json:"paymentStatus" binding:"required"`
		PaymentMethod string `json:"paymentMethod"`
	}
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	cmd := application.PurchasePaymentCommand{
		PurchaseID:    c.Param("purchaseId"),
		PaymentStatus: req.PaymentStatus,
		PaymentMethod: req.PaymentMethod,
		OperatorID:    middleware.GetOperatorID(c),
	}

	purchase, err := h.service.UpdatePayment(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, purchase)
}

// DeletePurchase handles deleting a draft purchase
func (h *PurchaseHandlers) DeletePurchase(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	cmd := application.DeletePurchaseCommand{
		PurchaseID: c.Param("purchaseId"),
		OperatorID: middleware.GetOperatorID(c),
	}

	if err := h.service.DeletePurchase(c.Request.Context(), cmd); err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
