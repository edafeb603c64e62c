package application

import (
	"context"
	"fmt"
	"time"

	"github.com/peterkyalo/stock-inventory-sub002/internal/domain"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/errors"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/kafka"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/logging"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/metrics"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/outbox"
)

const movementCounter = "movement_sequence"

// ledgerCore posts validated movements into the ledger and keeps the
// per-location index, location utilization and product aggregate in
// lockstep. It must be called inside an open unit of work, with the
// affected product locks held.
type ledgerCore struct {
	movements domain.MovementRepository
	index     domain.StockIndexRepository
	products  domain.ProductRepository
	locations domain.LocationRepository
	counters  domain.CounterRepository
	outbox    outbox.Repository
	settings  domain.InventorySettings
	logger    *logging.Logger
	metrics   *metrics.Metrics
}

func newLedgerCore(
	movements domain.MovementRepository,
	index domain.StockIndexRepository,
	products domain.ProductRepository,
	locations domain.LocationRepository,
	counters domain.CounterRepository,
	outboxRepo outbox.Repository,
	settings domain.InventorySettings,
	logger *logging.Logger,
	m *metrics.Metrics,
) *ledgerCore {
	return &ledgerCore{
		movements: movements,
		index:     index,
		products:  products,
		locations: locations,
		counters:  counters,
		outbox:    outboxRepo,
		settings:  settings,
		logger:    logger,
		metrics:   m,
	}
}

// post appends one movement and applies its deltas. The movement's shape
// has already been validated by the domain constructor.
func (c *ledgerCore) post(ctx context.Context, m *domain.StockMovement) (*domain.StockMovement, error) {
	product, err := c.products.FindByID(ctx, m.ProductID)
	if err != nil {
		return nil, errors.ErrTransientStorage(err)
	}
	if product == nil {
		return nil, errors.ErrNotFoundWithID("product", m.ProductID)
	}

	locationsByID, err := c.resolveLocations(ctx, m)
	if err != nil {
		return nil, err
	}

	deltas := m.Deltas()

	// Check outgoing legs against on-hand stock before writing anything
	if !c.settings.NegativeStock {
		for _, d := range deltas {
			if d.Delta >= 0 {
				continue
			}
			onHand, err := c.index.Quantity(ctx, d.ProductID, d.LocationID)
			if err != nil {
				return nil, errors.ErrTransientStorage(err)
			}
			if onHand+d.Delta < 0 {
				return nil, errors.ErrInsufficientStock(fmt.Sprintf(
					"product %s has %d on hand at location %s, %d required",
					product.SKU, onHand, d.LocationID, -d.Delta))
			}
		}
	}

	// Check incoming legs against location capacity
	for _, d := range deltas {
		if d.Delta <= 0 {
			continue
		}
		loc := locationsByID[d.LocationID]
		if !loc.HasCapacityFor(d.Delta) {
			return nil, errors.ErrCapacityExceeded(fmt.Sprintf(
				"location %s cannot hold %d more units", loc.Code, d.Delta))
		}
	}

	sequence, err := c.counters.Next(ctx, movementCounter)
	if err != nil {
		return nil, errors.ErrTransientStorage(err)
	}
	m.Sequence = sequence

	if err := c.movements.Append(ctx, m); err != nil {
		return nil, errors.ErrTransientStorage(err)
	}

	for _, d := range deltas {
		if _, err := c.index.ApplyDelta(ctx, d.ProductID, d.LocationID, d.Delta); err != nil {
			return nil, errors.ErrTransientStorage(err)
		}
		if err := c.locations.UpdateUtilization(ctx, d.LocationID, d.Delta); err != nil {
			return nil, errors.ErrTransientStorage(err)
		}
	}

	now := time.Now().UTC()

	// Received cost folds into the weighted average before the quantity moves
	if m.Type == domain.MovementTypeIn && m.UnitCost > 0 {
		product.ApplyReceivedCost(m.Quantity, m.UnitCost)
	}

	alerts := product.ApplyStockDelta(m.NetChange(), now)
	if err := c.products.UpdateStock(ctx, product.ID, product.CurrentStock, product.StockStatus, product.AverageCost); err != nil {
		return nil, errors.ErrTransientStorage(err)
	}

	events := []domain.DomainEvent{&domain.MovementRecordedEvent{
		MovementID:   m.ID,
		Sequence:     m.Sequence,
		ProductID:    m.ProductID,
		Type:         string(m.Type),
		Reason:       string(m.Reason),
		Quantity:     m.Quantity,
		LocationFrom: m.LocationFrom,
		LocationTo:   m.LocationTo,
		SourceRef:    m.SourceRef,
		OperatorID:   m.OperatorID,
		RecordedAt:   m.CreatedAt,
	}}
	if c.settings.LowStockAlert {
		events = append(events, alerts...)
		if c.metrics != nil && len(alerts) > 0 {
			c.metrics.RecordStockAlert(string(product.StockStatus))
		}
	}

	if err := c.stageEvents(ctx, events); err != nil {
		return nil, err
	}

	return m, nil
}

func (c *ledgerCore) resolveLocations(ctx context.Context, m *domain.StockMovement) (map[string]*domain.Location, error) {
	ids := make([]string, 0, 2)
	if m.LocationFrom != "" {
		ids = append(ids, m.LocationFrom)
	}
	if m.LocationTo != "" {
		ids = append(ids, m.LocationTo)
	}

	resolved := make(map[string]*domain.Location, len(ids))
	for _, id := range ids {
		loc, err := c.locations.FindByID(ctx, id)
		if err != nil {
			return nil, errors.ErrTransientStorage(err)
		}
		if loc == nil {
			return nil, errors.ErrNotFoundWithID("location", id)
		}
		if !loc.IsActive {
			return nil, errors.ErrConflict(fmt.Sprintf("location %s is not active", loc.Code))
		}
		resolved[id] = loc
	}
	return resolved, nil
}

// stageEvents writes domain events into the outbox inside the current
// transaction; the background publisher delivers them after commit.
func (c *ledgerCore) stageEvents(ctx context.Context, events []domain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	staged := make([]*outbox.Event, 0, len(events))
	for _, event := range events {
		entry, err := outbox.NewEvent(aggregateTypeFor(event), topicFor(event), logging.GetCorrelationID(ctx), event)
		if err != nil {
			return errors.ErrInternal("failed to stage event: " + err.Error())
		}
		staged = append(staged, entry)
	}

	if err := c.outbox.SaveAll(ctx, staged); err != nil {
		return errors.ErrTransientStorage(err)
	}
	return nil
}

func topicFor(event domain.DomainEvent) string {
	switch event.(type) {
	case *domain.LowStockEvent, *domain.OutOfStockEvent:
		return kafka.Topics.AlertEvents
	case *domain.SaleConfirmedEvent:
		return kafka.Topics.SalesEvents
	case *domain.PurchaseReceivedEvent:
		return kafka.Topics.PurchaseEvents
	default:
		return kafka.Topics.StockEvents
	}
}

func aggregateTypeFor(event domain.DomainEvent) string {
	switch event.(type) {
	case *domain.SaleConfirmedEvent:
		return "sale"
	case *domain.PurchaseReceivedEvent:
		return "purchase"
	default:
		return "product"
	}
}
