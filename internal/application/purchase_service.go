package application

import (
	"context"
	"fmt"

	"github.com/peterkyalo/stock-inventory-sub002/internal/domain"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/errors"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/locks"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/logging"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/metrics"
)

const purchaseOrderCounter = "purchase_order"

// PurchaseService is the purchase order engine
type PurchaseService struct {
	core      *ledgerCore
	purchases domain.PurchaseRepository
	products  domain.ProductRepository
	counters  domain.CounterRepository
	audit     domain.AuditRepository
	tx        TxRunner
	locks     *locks.KeyedLocker
	settings  domain.InventorySettings
	logger    *logging.Logger
	metrics   *metrics.Metrics
}

// NewPurchaseService creates a new PurchaseService posting receipts
// through the stock ledger
func NewPurchaseService(
	ledger *LedgerService,
	purchases domain.PurchaseRepository,
	products domain.ProductRepository,
	counters domain.CounterRepository,
	audit domain.AuditRepository,
	tx TxRunner,
	locker *locks.KeyedLocker,
	settings domain.InventorySettings,
	logger *logging.Logger,
	m *metrics.Metrics,
) *PurchaseService {
	return &PurchaseService{
		core:      ledger.core,
		purchases: purchases,
		products:  products,
		counters:  counters,
		audit:     audit,
		tx:        tx,
		locks:     locker,
		settings:  settings,
		logger:    logger,
		metrics:   m,
	}
}

// CreatePurchase creates a draft purchase order
func (s *PurchaseService) CreatePurchase(ctx context.Context, cmd CreatePurchaseCommand) (*PurchaseDTO, error) {
	items := make([]domain.PurchaseItem, len(cmd.Items))
	for i, input := range cmd.Items {
		items[i] = domain.PurchaseItem{
			ProductID:  input.ProductID,
			OrderedQty: input.OrderedQty,
			UnitPrice:  input.UnitPrice,
			Discount:   input.Discount,
			Tax:        input.Tax,
		}
	}

	if err := s.validateProducts(ctx, items); err != nil {
		return nil, err
	}

	purchase, err := domain.NewPurchase(cmd.SupplierID, items, cmd.ShippingCost, cmd.ReceivingLocationID, cmd.OperatorID, cmd.ExpectedDate)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}
	purchase.Notes = cmd.Notes

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.purchases.Save(txCtx, purchase); err != nil {
			return errors.ErrTransientStorage(err)
		}
		return s.appendAudit(txCtx, "purchase.created", purchase.ID, cmd.OperatorID, map[string]interface{}{
			"supplierId": cmd.SupplierID,
			"itemCount":  len(items),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).Info("Purchase created", "purchaseId", purchase.ID, "supplierId", cmd.SupplierID)
	return ToPurchaseDTO(purchase), nil
}

// GetPurchase retrieves a purchase by ID
func (s *PurchaseService) GetPurchase(ctx context.Context, purchaseID string) (*PurchaseDTO, error) {
	purchase, err := s.findPurchase(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	return ToPurchaseDTO(purchase), nil
}

// ListPurchases retrieves purchases matching the query
func (s *PurchaseService) ListPurchases(ctx context.Context, query ListPurchasesQuery) ([]PurchaseDTO, error) {
	pagination := domain.Pagination{Page: query.Page, PageSize: query.PageSize}
	if pagination.Page < 1 {
		pagination = domain.DefaultPagination()
	}

	purchases, err := s.purchases.List(ctx, domain.PurchaseFilter{
		SupplierID: query.SupplierID,
		Status:     domain.PurchaseStatus(query.Status),
		Pagination: pagination,
	})
	if err != nil {
		return nil, errors.ErrTransientStorage(err)
	}

	return ToPurchaseDTOs(purchases), nil
}

// UpdatePurchase replaces the lines of a draft or pending purchase
func (s *PurchaseService) UpdatePurchase(ctx context.Context, cmd UpdatePurchaseCommand) (*PurchaseDTO, error) {
	items := make([]domain.PurchaseItem, len(cmd.Items))
	for i, input := range cmd.Items {
		items[i] = domain.PurchaseItem{
			ProductID:  input.ProductID,
			OrderedQty: input.OrderedQty,
			UnitPrice:  input.UnitPrice,
			Discount:   input.Discount,
			Tax:        input.Tax,
		}
	}

	if err := s.validateProducts(ctx, items); err != nil {
		return nil, err
	}

	var purchase *domain.Purchase
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		purchase, err = s.findPurchase(txCtx, cmd.PurchaseID)
		if err != nil {
			return err
		}

		if err := purchase.UpdateItems(items, cmd.ShippingCost); err != nil {
			if err == domain.ErrPurchaseNotEditable {
				return errors.ErrConflict(err.Error())
			}
			return errors.ErrValidation(err.Error())
		}

		if err := s.purchases.Save(txCtx, purchase); err != nil {
			return errors.ErrTransientStorage(err)
		}
		return s.appendAudit(txCtx, "purchase.updated", purchase.ID, cmd.OperatorID, nil)
	})
	if err != nil {
		return nil, err
	}

	return ToPurchaseDTO(purchase), nil
}

// ChangeStatus drives the purchase state machine. Receiving is not a
// direct status change; it goes through Receive.
func (s *PurchaseService) ChangeStatus(ctx context.Context, cmd PurchaseStatusCommand) (*PurchaseDTO, error) {
	target := domain.PurchaseStatus(cmd.Status)
	if !target.IsValid() {
		return nil, errors.ErrValidation("invalid purchase status: " + cmd.Status)
	}

	var purchase *domain.Purchase
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		purchase, err = s.findPurchase(txCtx, cmd.PurchaseID)
		if err != nil {
			return err
		}

		switch target {
		case domain.PurchaseStatusPending:
			err = purchase.Submit()
		case domain.PurchaseStatusApproved:
			err = purchase.Approve()
		case domain.PurchaseStatusOrdered:
			var number int64
			number, err = s.counters.Next(txCtx, purchaseOrderCounter)
			if err != nil {
				return errors.ErrTransientStorage(err)
			}
			err = purchase.MarkOrdered(fmt.Sprintf("PO-%06d", number))
		case domain.PurchaseStatusCancelled:
			err = purchase.Cancel()
		default:
			return errors.ErrConflict(fmt.Sprintf("cannot transition directly to %s", target))
		}
		if err != nil {
			if err == domain.ErrPurchaseHasLedgerEntries {
				return errors.ErrConflict(err.Error())
			}
			return errors.ErrConflict(fmt.Sprintf("cannot transition from %s to %s", purchase.Status, target))
		}

		if err := s.purchases.Save(txCtx, purchase); err != nil {
			return errors.ErrTransientStorage(err)
		}
		return s.appendAudit(txCtx, "purchase.status_changed", purchase.ID, cmd.OperatorID, map[string]interface{}{
			"status": cmd.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	return ToPurchaseDTO(purchase), nil
}

// Receive posts receipt quantities: ledger in entries, index deltas and
// line bookkeeping commit together or not at all
func (s *PurchaseService) Receive(ctx context.Context, cmd ReceivePurchaseCommand) (*PurchaseDTO, error) {
	if len(cmd.Lines) == 0 {
		return nil, errors.ErrValidation("receipt must include at least one line")
	}

	// Lock every product on the order; line-to-product mapping is only
	// known after loading, and the order's product set covers it
	probe, err := s.findPurchase(ctx, cmd.PurchaseID)
	if err != nil {
		return nil, err
	}
	productIDs := make([]string, 0, len(probe.Items))
	for _, item := range probe.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	release := s.locks.Acquire(productIDs...)
	defer release()

	var purchase *domain.Purchase
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		purchase, err = s.findPurchase(txCtx, cmd.PurchaseID)
		if err != nil {
			return err
		}

		locationID := cmd.LocationID
		if locationID == "" {
			locationID = purchase.ReceivingLocationID
		}
		if locationID == "" {
			locationID = s.settings.DefaultReceivingLocation
		}
		if locationID == "" {
			return errors.ErrValidation("no receiving location configured for this purchase")
		}

		lines := make([]domain.ReceiptLine, len(cmd.Lines))
		for i, input := range cmd.Lines {
			lines[i] = domain.ReceiptLine{ItemID: input.ItemID, Quantity: input.Quantity}
		}

		received, err := purchase.Receive(lines)
		if err != nil {
			switch err {
			case domain.ErrPurchaseNotReceivable:
				return errors.ErrConflict(err.Error())
			case domain.ErrReceiveExceedsOrdered:
				return errors.ErrValidation(err.Error())
			case domain.ErrPurchaseItemNotFound:
				return errors.ErrNotFound("purchase item")
			default:
				return errors.ErrValidation(err.Error())
			}
		}

		for _, line := range received {
			movement, err := domain.NewStockMovement(
				line.ProductID,
				domain.MovementTypeIn,
				domain.ReasonPurchase,
				line.Quantity,
				"",
				locationID,
				purchase.ID,
				cmd.OperatorID,
				"",
			)
			if err != nil {
				return errors.ErrValidation(err.Error())
			}
			movement.UnitCost = line.UnitPrice

			if _, err := s.core.post(txCtx, movement); err != nil {
				return err
			}
		}

		if err := s.purchases.Save(txCtx, purchase); err != nil {
			return errors.ErrTransientStorage(err)
		}

		if err := s.core.stageEvents(txCtx, purchase.PullEvents()); err != nil {
			return err
		}

		return s.appendAudit(txCtx, "purchase.received", purchase.ID, cmd.OperatorID, map[string]interface{}{
			"lines":    len(cmd.Lines),
			"status":   string(purchase.Status),
			"location": locationID,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordPurchaseReceived(string(purchase.Status))
	}
	s.logger.WithContext(ctx).Info("Purchase receipt posted",
		"purchaseId", purchase.ID,
		"status", purchase.Status,
	)

	return ToPurchaseDTO(purchase), nil
}

// UpdatePayment changes purchase payment bookkeeping only
func (s *PurchaseService) UpdatePayment(ctx context.Context, cmd PurchasePaymentCommand) (*PurchaseDTO, error) {
	var purchase *domain.Purchase
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		purchase, err = s.findPurchase(txCtx, cmd.PurchaseID)
		if err != nil {
			return err
		}

		if err := purchase.UpdatePayment(domain.PaymentStatus(cmd.PaymentStatus), cmd.PaymentMethod); err != nil {
			return errors.ErrValidation(err.Error())
		}

		if err := s.purchases.Save(txCtx, purchase); err != nil {
			return errors.ErrTransientStorage(err)
		}
		return s.appendAudit(txCtx, "purchase.payment_updated", purchase.ID, cmd.OperatorID, map[string]interface{}{
			"paymentStatus": cmd.PaymentStatus,
		})
	})
	if err != nil {
		return nil, err
	}

	return ToPurchaseDTO(purchase), nil
}

// DeletePurchase hard-deletes a draft purchase
func (s *PurchaseService) DeletePurchase(ctx context.Context, cmd DeletePurchaseCommand) error {
	return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		purchase, err := s.findPurchase(txCtx, cmd.PurchaseID)
		if err != nil {
			return err
		}

		if !purchase.CanDelete() {
			return errors.ErrConflict("only draft purchases can be deleted")
		}

		if err := s.purchases.Delete(txCtx, cmd.PurchaseID); err != nil {
			return errors.ErrTransientStorage(err)
		}
		return s.appendAudit(txCtx, "purchase.deleted", cmd.PurchaseID, cmd.OperatorID, nil)
	})
}

func (s *PurchaseService) findPurchase(ctx context.Context, purchaseID string) (*domain.Purchase, error) {
	purchase, err := s.purchases.FindByID(ctx, purchaseID)
	if err != nil {
		return nil, errors.ErrTransientStorage(err)
	}
	if purchase == nil {
		return nil, errors.ErrNotFoundWithID("purchase", purchaseID)
	}
	return purchase, nil
}

func (s *PurchaseService) validateProducts(ctx context.Context, items []domain.PurchaseItem) error {
	for _, item := range items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return errors.ErrTransientStorage(err)
		}
		if product == nil {
			return errors.ErrNotFoundWithID("product", item.ProductID)
		}
	}
	return nil
}

func (s *PurchaseService) appendAudit(ctx context.Context, action, resourceID, operatorID string, details map[string]interface{}) error {
	entry := domain.NewAuditEntry(action, "purchase", resourceID, operatorID, details)
	if err := s.audit.Append(ctx, entry); err != nil {
		return errors.ErrTransientStorage(err)
	}
	return nil
}
