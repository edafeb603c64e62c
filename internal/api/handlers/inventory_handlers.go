package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/peterkyalo/stock-inventory-sub002/internal/application"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/auth"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/errors"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/logging"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/middleware"
)

// LedgerService is the application surface the inventory handlers depend on
type LedgerService interface {
	AppendMovement(ctx context.Context, cmd application.AppendMovementCommand) (*application.MovementDTO, error)
	ListMovements(ctx context.Context, query application.ListMovementsQuery) (*application.MovementListDTO, error)
	MovementSummary(ctx context.Context, query application.MovementSummaryQuery) (*application.MovementSummaryDTO, error)
	Transfer(ctx context.Context, cmd application.TransferCommand) (*application.TransferDTO, error)
	ProductLocations(ctx context.Context, productID string) (*application.ProductLocationsDTO, error)
	LocationStock(ctx context.Context, locationID string) (*application.LocationInventoryDTO, error)
}

// InventoryHandlers contains handlers for stock ledger operations
type InventoryHandlers struct {
	service LedgerService
	logger  *logging.Logger
}

// NewInventoryHandlers creates a new InventoryHandlers
func NewInventoryHandlers(service LedgerService, logger *logging.Logger) *InventoryHandlers {
	return &InventoryHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers inventory routes on the router with their
// required capabilities
func (h *InventoryHandlers) RegisterRoutes(router *gin.RouterGroup) {
	read := middleware.RequireCapability(auth.Cap(auth.ResourceInventory, auth.ActionRead))
	write := middleware.RequireCapability(auth.Cap(auth.ResourceInventory, auth.ActionWrite))

	inventory := router.Group("/inventory")
	{
		inventory.POST("/movements", write, h.AppendMovement)
		inventory.GET("/movements", read, h.ListMovements)
		inventory.GET("/movements/summary", read, h.MovementSummary)
		inventory.POST("/transfer", write, h.Transfer)
		inventory.GET("/products/:productId/locations", read, h.ProductLocations)
		inventory.GET("/locations/:locationId/stock", read, h.LocationStock)
	}
}

// AppendMovement handles appending one ledger entry
func (h *InventoryHandlers) AppendMovement(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		ProductID    string  `json:"productId" binding:"required"`
		Type         string  `json:"type" binding:"required,movement_type"`
		Reason       string  `json:"reason" binding:"required,movement_reason"`
		Quantity     int     `json:"quantity" binding:"required,gt=0"`
		LocationFrom string  `json:"locationFrom"`
		LocationTo   string  `json:"locationTo"`
		SourceRef    string  `json:"sourceRef"`
		UnitCost     float64 `json:"unitCost" binding:"gte=0"`
		Notes        string  `json:"notes"`
	}
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	cmd := application.AppendMovementCommand{
		ProductID:    req.ProductID,
		Type:         req.Type,
		Reason:       req.Reason,
		Quantity:     req.Quantity,
		LocationFrom: req.LocationFrom,
		LocationTo:   req.LocationTo,
		SourceRef:    req.SourceRef,
		UnitCost:     req.UnitCost,
		Notes:        req.Notes,
		OperatorID:   middleware.GetOperatorID(c),
	}

	movement, err := h.service.AppendMovement(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusCreated, movement)
}

// ListMovements handles listing and filtering the ledger
func (h *InventoryHandlers) ListMovements(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	query := application.ListMovementsQuery{
		ProductID:  c.Query("productId"),
		LocationID: c.Query("locationId"),
		Type:       c.Query("type"),
		Reason:     c.Query("reason"),
		OperatorID: c.Query("operatorId"),
		SourceRef:  c.Query("sourceRef"),
		Page:       parseInt64(c.Query("page"), 1),
		PageSize:   parseInt64(c.Query("pageSize"), 50),
	}

	from, appErr := parseTimeParam(c.Query("from"), "from")
	if appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	to, appErr := parseTimeParam(c.Query("to"), "to")
	if appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	query.From = from
	query.To = to

	result, err := h.service.ListMovements(c.Request.Context(), query)
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

// MovementSummary handles the per-type/reason ledger aggregation
func (h *InventoryHandlers) MovementSummary(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	from, appErr := parseTimeParam(c.Query("from"), "from")
	if appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	to, appErr := parseTimeParam(c.Query("to"), "to")
	if appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	query := application.MovementSummaryQuery{From: from, To: to}

	summary, err := h.service.MovementSummary(c.Request.Context(), query)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Transfer handles an atomic two-leg stock transfer
func (h *InventoryHandlers) Transfer(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		ProductID    string `json:"productId" binding:"required"`
		FromLocation string `json:"fromLocation" binding:"required"`
		ToLocation   string `json:"toLocation" binding:"required"`
		Quantity     int    `json:"quantity" binding:"required,gt=0"`
		Notes        string `json:"notes"`
	}
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	cmd := application.TransferCommand{
		ProductID:    req.ProductID,
		FromLocation: req.FromLocation,
		ToLocation:   req.ToLocation,
		Quantity:     req.Quantity,
		Notes:        req.Notes,
		OperatorID:   middleware.GetOperatorID(c),
	}

	transfer, err := h.service.Transfer(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusCreated, transfer)
}

// ProductLocations handles the per-location stock breakdown of a product
func (h *InventoryHandlers) ProductLocations(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	productID := c.Param("productId")

	result, err := h.service.ProductLocations(c.Request.Context(), productID)
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

// LocationStock handles listing the stock held at a location
func (h *InventoryHandlers) LocationStock(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	locationID := c.Param("locationId")

	result, err := h.service.LocationStock(c.Request.Context(), locationID)
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

func parseInt64(s string, fallback int64) int64 {
	if s == "" {
		return fallback
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseTimeParam(s, name string) (*time.Time, *errors.AppError) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, errors.ErrBadRequest("invalid " + name + " timestamp, expected RFC3339")
	}
	return &t, nil
}
