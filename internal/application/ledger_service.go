package application

import (
	"context"
	"fmt"

	"github.com/peterkyalo/stock-inventory-sub002/internal/domain"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/errors"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/locks"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/logging"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/metrics"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/outbox"
)

// LedgerService is the stock ledger and transfer engine. Every mutating
// operation runs as one unit of work with the affected product locked.
type LedgerService struct {
	core      *ledgerCore
	movements domain.MovementRepository
	index     domain.StockIndexRepository
	products  domain.ProductRepository
	locations domain.LocationRepository
	transfers domain.TransferRepository
	audit     domain.AuditRepository
	tx        TxRunner
	locks     *locks.KeyedLocker
	logger    *logging.Logger
	metrics   *metrics.Metrics
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	movements domain.MovementRepository,
	index domain.StockIndexRepository,
	products domain.ProductRepository,
	locations domain.LocationRepository,
	transfers domain.TransferRepository,
	counters domain.CounterRepository,
	audit domain.AuditRepository,
	outboxRepo outbox.Repository,
	tx TxRunner,
	locker *locks.KeyedLocker,
	settings domain.InventorySettings,
	logger *logging.Logger,
	m *metrics.Metrics,
) *LedgerService {
	return &LedgerService{
		core:      newLedgerCore(movements, index, products, locations, counters, outboxRepo, settings, logger, m),
		movements: movements,
		index:     index,
		products:  products,
		locations: locations,
		transfers: transfers,
		audit:     audit,
		tx:        tx,
		locks:     locker,
		logger:    logger,
		metrics:   m,
	}
}

// AppendMovement records one ledger entry and applies its stock effect
func (s *LedgerService) AppendMovement(ctx context.Context, cmd AppendMovementCommand) (*MovementDTO, error) {
	movement, err := domain.NewStockMovement(
		cmd.ProductID,
		domain.MovementType(cmd.Type),
		domain.MovementReason(cmd.Reason),
		cmd.Quantity,
		cmd.LocationFrom,
		cmd.LocationTo,
		cmd.SourceRef,
		cmd.OperatorID,
		cmd.Notes,
	)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}
	movement.UnitCost = cmd.UnitCost

	release := s.locks.Acquire(cmd.ProductID)
	defer release()

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.core.post(txCtx, movement); err != nil {
			return err
		}
		return s.appendAudit(txCtx, "movement.recorded", "movement", movement.ID, cmd.OperatorID, map[string]interface{}{
			"type":     cmd.Type,
			"reason":   cmd.Reason,
			"quantity": cmd.Quantity,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordMovement(cmd.Type, cmd.Reason)
	}
	s.logger.WithContext(ctx).Info("Ledger entry recorded",
		"movementId", movement.ID,
		"sequence", movement.Sequence,
		"productId", movement.ProductID,
		"type", movement.Type,
		"quantity", movement.Quantity,
	)

	return ToMovementDTO(movement), nil
}

// ListMovements returns ledger entries newest-sequence first
func (s *LedgerService) ListMovements(ctx context.Context, query ListMovementsQuery) (*MovementListDTO, error) {
	pagination := domain.Pagination{Page: query.Page, PageSize: query.PageSize}
	if pagination.Page < 1 {
		pagination = domain.DefaultPagination()
	}

	filter := domain.MovementFilter{
		ProductID:  query.ProductID,
		LocationID: query.LocationID,
		Type:       domain.MovementType(query.Type),
		Reason:     domain.MovementReason(query.Reason),
		OperatorID: query.OperatorID,
		SourceRef:  query.SourceRef,
		From:       query.From,
		To:         query.To,
		Limit:      pagination.Limit(),
		Offset:     pagination.Skip(),
	}
	if query.Type != "" && !domain.MovementType(query.Type).IsValid() {
		return nil, errors.ErrValidation("invalid movement type filter")
	}
	if query.Reason != "" && !domain.MovementReason(query.Reason).IsValid() {
		return nil, errors.ErrValidation("invalid movement reason filter")
	}

	movements, err := s.movements.List(ctx, filter)
	if err != nil {
		return nil, errors.ErrTransientStorage(err)
	}
	total, err := s.movements.Count(ctx, filter)
	if err != nil {
		return nil, errors.ErrTransientStorage(err)
	}

	return &MovementListDTO{
		Movements: ToMovementDTOs(movements),
		Total:     total,
		Page:      pagination.Page,
		PageSize:  pagination.PageSize,
	}, nil
}

// MovementSummary aggregates in/out quantities per type and reason
func (s *LedgerService) MovementSummary(ctx context.Context, query MovementSummaryQuery) (*MovementSummaryDTO, error) {
	rows, err := s.movements.Summary(ctx, query.From, query.To)
	if err != nil {
		return nil, errors.ErrTransientStorage(err)
	}

	dto := &MovementSummaryDTO{Rows: make([]MovementSummaryRowDTO, len(rows))}
	for i, row := range rows {
		dto.Rows[i] = MovementSummaryRowDTO{
			Type:     string(row.Type),
			Reason:   string(row.Reason),
			Count:    row.Count,
			Quantity: row.Quantity,
		}
		switch row.Type {
		case domain.MovementTypeIn:
			dto.TotalIn += row.Quantity
		case domain.MovementTypeOut:
			dto.TotalOut += row.Quantity
		}
	}

	return dto, nil
}

// Transfer moves stock between two locations in one atomic step,
// producing exactly one transfer-typed ledger entry
func (s *LedgerService) Transfer(ctx context.Context, cmd TransferCommand) (*TransferDTO, error) {
	transfer, err := domain.NewTransfer(cmd.ProductID, cmd.FromLocation, cmd.ToLocation, cmd.Quantity, cmd.OperatorID, cmd.Notes)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	movement, err := domain.NewStockMovement(
		cmd.ProductID,
		domain.MovementTypeTransfer,
		domain.ReasonTransfer,
		cmd.Quantity,
		cmd.FromLocation,
		cmd.ToLocation,
		transfer.ID,
		cmd.OperatorID,
		cmd.Notes,
	)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	release := s.locks.Acquire(cmd.ProductID)
	defer release()

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.core.post(txCtx, movement); err != nil {
			return err
		}

		transfer.MovementID = movement.ID
		if err := s.transfers.Save(txCtx, transfer); err != nil {
			return errors.ErrTransientStorage(err)
		}

		if err := s.core.stageEvents(txCtx, []domain.DomainEvent{&domain.TransferExecutedEvent{
			TransferID:   transfer.ID,
			ProductID:    transfer.ProductID,
			FromLocation: transfer.FromLocation,
			ToLocation:   transfer.ToLocation,
			Quantity:     transfer.Quantity,
			ExecutedAt:   transfer.CreatedAt,
		}}); err != nil {
			return err
		}

		return s.appendAudit(txCtx, "transfer.executed", "transfer", transfer.ID, cmd.OperatorID, map[string]interface{}{
			"productId": cmd.ProductID,
			"from":      cmd.FromLocation,
			"to":        cmd.ToLocation,
			"quantity":  cmd.Quantity,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordTransfer()
		s.metrics.RecordMovement(string(domain.MovementTypeTransfer), string(domain.ReasonTransfer))
	}
	s.logger.WithContext(ctx).Info("Transfer executed",
		"transferId", transfer.ID,
		"productId", cmd.ProductID,
		"from", cmd.FromLocation,
		"to", cmd.ToLocation,
		"quantity", cmd.Quantity,
	)

	return ToTransferDTO(transfer), nil
}

// ProductLocations breaks a product's stock down across locations
func (s *LedgerService) ProductLocations(ctx context.Context, productID string) (*ProductLocationsDTO, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, errors.ErrTransientStorage(err)
	}
	if product == nil {
		return nil, errors.ErrNotFoundWithID("product", productID)
	}

	levels, err := s.index.ByProduct(ctx, productID)
	if err != nil {
		return nil, errors.ErrTransientStorage(err)
	}

	return &ProductLocationsDTO{
		ProductID:    productID,
		CurrentStock: product.CurrentStock,
		StockStatus:  string(product.StockStatus),
		Locations:    ToLocationStockDTOs(levels),
	}, nil
}

// LocationStock lists the stock held at one location
func (s *LedgerService) LocationStock(ctx context.Context, locationID string) (*LocationInventoryDTO, error) {
	location, err := s.locations.FindByID(ctx, locationID)
	if err != nil {
		return nil, errors.ErrTransientStorage(err)
	}
	if location == nil {
		return nil, errors.ErrNotFoundWithID("location", locationID)
	}

	levels, err := s.index.ByLocation(ctx, locationID)
	if err != nil {
		return nil, errors.ErrTransientStorage(err)
	}

	return &LocationInventoryDTO{
		LocationID:  locationID,
		Utilization: location.CurrentUtilization,
		Capacity:    location.Capacity,
		Stock:       ToLocationStockDTOs(levels),
	}, nil
}

func (s *LedgerService) appendAudit(ctx context.Context, action, resource, resourceID, operatorID string, details map[string]interface{}) error {
	entry := domain.NewAuditEntry(action, resource, resourceID, operatorID, details)
	if err := s.audit.Append(ctx, entry); err != nil {
		return errors.ErrTransientStorage(fmt.Errorf("failed to append audit entry: %w", err))
	}
	return nil
}
