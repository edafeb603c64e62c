package application

import (
	"context"
	"fmt"
	"time"

	"github.com/peterkyalo/stock-inventory-sub002/internal/domain"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/errors"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/locks"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/logging"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/metrics"
)

const invoiceCounter = "invoice"

// SalesService is the sales order engine
type SalesService struct {
	core      *ledgerCore
	sales     domain.SaleRepository
	customers domain.CustomerRepository
	products  domain.ProductRepository
	counters  domain.CounterRepository
	audit     domain.AuditRepository
	tx        TxRunner
	locks     *locks.KeyedLocker
	settings  domain.InventorySettings
	logger    *logging.Logger
	metrics   *metrics.Metrics
}

// NewSalesService creates a new SalesService posting confirmations and
// compensations through the stock ledger
func NewSalesService(
	ledger *LedgerService,
	sales domain.SaleRepository,
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	counters domain.CounterRepository,
	audit domain.AuditRepository,
	tx TxRunner,
	locker *locks.KeyedLocker,
	settings domain.InventorySettings,
	logger *logging.Logger,
	m *metrics.Metrics,
) *SalesService {
	return &SalesService{
		core:      ledger.core,
		sales:     sales,
		customers: customers,
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

// CreateSale creates a draft sale. Drafts reserve nothing: no ledger
// entries, no balance movement.
func (s *SalesService) CreateSale(ctx context.Context, cmd CreateSaleCommand) (*SaleDTO, error) {
	customer, err := s.findCustomer(ctx, cmd.CustomerID)
	if err != nil {
		return nil, err
	}
	if !customer.IsActive {
		return nil, errors.ErrConflict("customer " + customer.ID + " is inactive")
	}

	items := make([]domain.SaleItem, len(cmd.Items))
	for i, input := range cmd.Items {
		items[i] = domain.SaleItem{
			ProductID: input.ProductID,
			Quantity:  input.Quantity,
			UnitPrice: input.UnitPrice,
			Discount:  input.Discount,
			Tax:       input.Tax,
		}
	}

	if err := s.validateProducts(ctx, items); err != nil {
		return nil, err
	}

	sale, err := domain.NewSale(cmd.CustomerID, items, cmd.ShippingCost, cmd.ShippingLocationID, cmd.OperatorID, cmd.SalesPersonID)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}
	sale.Notes = cmd.Notes

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.sales.Save(txCtx, sale); err != nil {
			return errors.ErrTransientStorage(err)
		}
		return s.appendAudit(txCtx, "sale.created", sale.ID, cmd.OperatorID, map[string]interface{}{
			"customerId": cmd.CustomerID,
			"grandTotal": sale.GrandTotal,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).Info("Sale created", "saleId", sale.ID, "customerId", cmd.CustomerID)
	return ToSaleDTO(sale), nil
}

// GetSale retrieves a sale by ID
func (s *SalesService) GetSale(ctx context.Context, saleID string) (*SaleDTO, error) {
	sale, err := s.findSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return ToSaleDTO(sale), nil
}

// ListSales retrieves sales matching the query
func (s *SalesService) ListSales(ctx context.Context, query ListSalesQuery) ([]SaleDTO, error) {
	pagination := domain.Pagination{Page: query.Page, PageSize: query.PageSize}
	if pagination.Page < 1 {
		pagination = domain.DefaultPagination()
	}

	sales, err := s.sales.List(ctx, domain.SaleFilter{
		CustomerID:    query.CustomerID,
		Status:        domain.SaleStatus(query.Status),
		PaymentStatus: domain.PaymentStatus(query.PaymentStatus),
		Pagination:    pagination,
	})
	if err != nil {
		return nil, errors.ErrTransientStorage(err)
	}

	return ToSaleDTOs(sales), nil
}

// UpdateSale replaces the lines of a draft sale
func (s *SalesService) UpdateSale(ctx context.Context, cmd UpdateSaleCommand) (*SaleDTO, error) {
	items := make([]domain.SaleItem, len(cmd.Items))
	for i, input := range cmd.Items {
		items[i] = domain.SaleItem{
			ProductID: input.ProductID,
			Quantity:  input.Quantity,
			UnitPrice: input.UnitPrice,
			Discount:  input.Discount,
			Tax:       input.Tax,
		}
	}

	if err := s.validateProducts(ctx, items); err != nil {
		return nil, err
	}

	var sale *domain.Sale
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		sale, err = s.findSale(txCtx, cmd.SaleID)
		if err != nil {
			return err
		}

		if err := sale.UpdateItems(items, cmd.ShippingCost); err != nil {
			if err == domain.ErrSaleNotDraft {
				return errors.ErrConflict(err.Error())
			}
			return errors.ErrValidation(err.Error())
		}

		if err := s.sales.Save(txCtx, sale); err != nil {
			return errors.ErrTransientStorage(err)
		}
		return s.appendAudit(txCtx, "sale.updated", sale.ID, cmd.OperatorID, nil)
	})
	if err != nil {
		return nil, err
	}

	return ToSaleDTO(sale), nil
}

// ChangeStatus drives the sale state machine
func (s *SalesService) ChangeStatus(ctx context.Context, cmd SaleStatusCommand) (*SaleDTO, error) {
	target := domain.SaleStatus(cmd.Status)
	if !target.IsValid() {
		return nil, errors.ErrValidation("invalid sale status: " + cmd.Status)
	}

	switch target {
	case domain.SaleStatusConfirmed:
		return s.confirm(ctx, cmd)
	case domain.SaleStatusCancelled, domain.SaleStatusReturned:
		return s.compensate(ctx, cmd, target)
	}

	var sale *domain.Sale
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		sale, err = s.findSale(txCtx, cmd.SaleID)
		if err != nil {
			return err
		}

		switch target {
		case domain.SaleStatusShipped:
			err = sale.Ship()
		case domain.SaleStatusDelivered:
			err = sale.Deliver()
		default:
			return errors.ErrConflict(fmt.Sprintf("cannot transition directly to %s", target))
		}
		if err != nil {
			return errors.ErrConflict(fmt.Sprintf("cannot transition from %s to %s", sale.Status, target))
		}

		if err := s.sales.Save(txCtx, sale); err != nil {
			return errors.ErrTransientStorage(err)
		}
		return s.appendAudit(txCtx, "sale.status_changed", sale.ID, cmd.OperatorID, map[string]interface{}{
			"status": cmd.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	return ToSaleDTO(sale), nil
}

// confirm posts the sale: stock check, credit check, invoice number,
// ledger out entries and customer balance commit atomically
func (s *SalesService) confirm(ctx context.Context, cmd SaleStatusCommand) (*SaleDTO, error) {
	probe, err := s.findSale(ctx, cmd.SaleID)
	if err != nil {
		return nil, err
	}
	required := probe.RequiredQuantities()
	productIDs := make([]string, 0, len(required))
	for productID := range required {
		productIDs = append(productIDs, productID)
	}
	release := s.locks.Acquire(productIDs...)
	defer release()

	var sale *domain.Sale
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		sale, err = s.findSale(txCtx, cmd.SaleID)
		if err != nil {
			return err
		}
		if sale.Status != domain.SaleStatusDraft {
			return errors.ErrConflict(fmt.Sprintf("cannot confirm sale in status %s", sale.Status))
		}

		customer, err := s.findCustomer(txCtx, sale.CustomerID)
		if err != nil {
			return err
		}

		// Every line must be coverable; a sale of the same product on two
		// lines needs the summed quantity
		if !s.settings.NegativeStock {
			for productID, quantity := range sale.RequiredQuantities() {
				product, err := s.products.FindByID(txCtx, productID)
				if err != nil {
					return errors.ErrTransientStorage(err)
				}
				if product == nil {
					return errors.ErrNotFoundWithID("product", productID)
				}
				if product.CurrentStock < quantity {
					return errors.ErrInsufficientStock(fmt.Sprintf(
						"product %s has %d on hand, sale needs %d",
						productID, product.CurrentStock, quantity,
					))
				}
			}
		}

		if !cmd.CreditOverride {
			if err := customer.CheckCredit(sale.UnpaidPortion()); err != nil {
				return errors.ErrCreditLimitExceeded(fmt.Sprintf(
					"customer %s balance %.2f plus %.2f exceeds limit %.2f",
					customer.ID, customer.CurrentBalance, sale.UnpaidPortion(), customer.CreditLimit,
				))
			}
		}

		shippingLocationID := sale.ShippingLocationID
		if shippingLocationID == "" {
			shippingLocationID = s.settings.DefaultShippingLocation
		}
		if shippingLocationID == "" {
			return errors.ErrValidation("no shipping location configured for this sale")
		}

		number, err := s.counters.Next(txCtx, invoiceCounter)
		if err != nil {
			return errors.ErrTransientStorage(err)
		}

		dueDate := customer.DueDateFrom(sale.SaleDate)
		if err := sale.Confirm(fmt.Sprintf("INV-%06d", number), dueDate); err != nil {
			return errors.ErrConflict(err.Error())
		}

		for _, item := range sale.Items {
			movement, err := domain.NewStockMovement(
				item.ProductID,
				domain.MovementTypeOut,
				domain.ReasonSale,
				item.Quantity,
				shippingLocationID,
				"",
				sale.ID,
				cmd.OperatorID,
				"",
			)
			if err != nil {
				return errors.ErrValidation(err.Error())
			}
			if _, err := s.core.post(txCtx, movement); err != nil {
				return err
			}
		}

		if unpaid := sale.UnpaidPortion(); unpaid > 0 {
			if err := s.customers.ApplyBalanceDelta(txCtx, customer.ID, unpaid); err != nil {
				return errors.ErrTransientStorage(err)
			}
		}
		if err := s.customers.RecordSale(txCtx, customer.ID, sale.GrandTotal); err != nil {
			return errors.ErrTransientStorage(err)
		}

		if err := s.sales.Save(txCtx, sale); err != nil {
			return errors.ErrTransientStorage(err)
		}

		if err := s.core.stageEvents(txCtx, sale.PullEvents()); err != nil {
			return err
		}

		return s.appendAudit(txCtx, "sale.confirmed", sale.ID, cmd.OperatorID, map[string]interface{}{
			"invoiceNumber":  sale.InvoiceNumber,
			"grandTotal":     sale.GrandTotal,
			"creditOverride": cmd.CreditOverride,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordSaleConfirmed(string(sale.PaymentStatus))
	}
	s.logger.WithContext(ctx).Info("Sale confirmed",
		"saleId", sale.ID,
		"invoiceNumber", sale.InvoiceNumber,
	)

	return ToSaleDTO(sale), nil
}

// compensate cancels or returns a sale. Posted stock flows back in as
// return entries and the unpaid portion is released from the customer
// balance; a draft cancel touches nothing.
func (s *SalesService) compensate(ctx context.Context, cmd SaleStatusCommand, target domain.SaleStatus) (*SaleDTO, error) {
	probe, err := s.findSale(ctx, cmd.SaleID)
	if err != nil {
		return nil, err
	}
	required := probe.RequiredQuantities()
	productIDs := make([]string, 0, len(required))
	for productID := range required {
		productIDs = append(productIDs, productID)
	}
	release := s.locks.Acquire(productIDs...)
	defer release()

	var sale *domain.Sale
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		sale, err = s.findSale(txCtx, cmd.SaleID)
		if err != nil {
			return err
		}

		var lines []domain.CompensationLine
		var released float64
		switch target {
		case domain.SaleStatusCancelled:
			lines, released, err = sale.Cancel()
		case domain.SaleStatusReturned:
			lines, released, err = sale.Return()
		}
		if err != nil {
			return errors.ErrConflict(fmt.Sprintf("cannot transition from %s to %s", sale.Status, target))
		}

		shippingLocationID := sale.ShippingLocationID
		if shippingLocationID == "" {
			shippingLocationID = s.settings.DefaultShippingLocation
		}

		for _, line := range lines {
			movement, err := domain.NewStockMovement(
				line.ProductID,
				domain.MovementTypeIn,
				domain.ReasonReturn,
				line.Quantity,
				"",
				shippingLocationID,
				sale.ID,
				cmd.OperatorID,
				"",
			)
			if err != nil {
				return errors.ErrValidation(err.Error())
			}
			if _, err := s.core.post(txCtx, movement); err != nil {
				return err
			}
		}

		if released > 0 {
			if err := s.customers.ApplyBalanceDelta(txCtx, sale.CustomerID, -released); err != nil {
				return errors.ErrTransientStorage(err)
			}
		}

		if err := s.sales.Save(txCtx, sale); err != nil {
			return errors.ErrTransientStorage(err)
		}
		return s.appendAudit(txCtx, "sale."+string(target), sale.ID, cmd.OperatorID, map[string]interface{}{
			"compensated": len(lines),
			"released":    released,
		})
	})
	if err != nil {
		return nil, err
	}

	return ToSaleDTO(sale), nil
}

// UpdatePayment updates sale payment bookkeeping. For posted sales the
// customer balance tracks the change in the unpaid portion.
func (s *SalesService) UpdatePayment(ctx context.Context, cmd SalePaymentCommand) (*SaleDTO, error) {
	var sale *domain.Sale
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		sale, err = s.findSale(txCtx, cmd.SaleID)
		if err != nil {
			return err
		}

		delta, err := sale.UpdatePayment(domain.PaymentStatus(cmd.PaymentStatus), cmd.PaymentMethod, cmd.PaidAmount)
		if err != nil {
			return errors.ErrValidation(err.Error())
		}

		if delta != 0 {
			if err := s.customers.ApplyBalanceDelta(txCtx, sale.CustomerID, delta); err != nil {
				return errors.ErrTransientStorage(err)
			}
		}

		if err := s.sales.Save(txCtx, sale); err != nil {
			return errors.ErrTransientStorage(err)
		}
		return s.appendAudit(txCtx, "sale.payment_updated", sale.ID, cmd.OperatorID, map[string]interface{}{
			"paymentStatus": cmd.PaymentStatus,
			"paidAmount":    cmd.PaidAmount,
			"balanceDelta":  delta,
		})
	})
	if err != nil {
		return nil, err
	}

	return ToSaleDTO(sale), nil
}

// CheckOverdue sweeps posted unpaid sales past their due date and marks
// them overdue. Safe to run repeatedly.
func (s *SalesService) CheckOverdue(ctx context.Context, operatorID string) (*OverdueSweepDTO, error) {
	now := time.Now().UTC()

	candidates, err := s.sales.FindDueForOverdue(ctx, now, 500)
	if err != nil {
		return nil, errors.ErrTransientStorage(err)
	}

	result := &OverdueSweepDTO{Scanned: len(candidates), RanAt: now}
	for _, candidate := range candidates {
		saleID := candidate.ID
		err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
			sale, err := s.findSale(txCtx, saleID)
			if err != nil {
				return err
			}
			if !sale.MarkOverdue(now) {
				return nil
			}
			if err := s.sales.Save(txCtx, sale); err != nil {
				return errors.ErrTransientStorage(err)
			}
			result.MarkedOverdue++
			return s.appendAudit(txCtx, "sale.marked_overdue", sale.ID, operatorID, map[string]interface{}{
				"dueDate": sale.DueDate,
			})
		})
		if err != nil {
			return nil, err
		}
	}

	s.logger.WithContext(ctx).Info("Overdue sweep finished",
		"scanned", result.Scanned,
		"markedOverdue", result.MarkedOverdue,
	)

	return result, nil
}

func (s *SalesService) findSale(ctx context.Context, saleID string) (*domain.Sale, error) {
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		return nil, errors.ErrTransientStorage(err)
	}
	if sale == nil {
		return nil, errors.ErrNotFoundWithID("sale", saleID)
	}
	return sale, nil
}

func (s *SalesService) findCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, errors.ErrTransientStorage(err)
	}
	if customer == nil {
		return nil, errors.ErrNotFoundWithID("customer", customerID)
	}
	return customer, nil
}

func (s *SalesService) validateProducts(ctx context.Context, items []domain.SaleItem) error {
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

func (s *SalesService) appendAudit(ctx context.Context, action, resourceID, operatorID string, details map[string]interface{}) error {
	entry := domain.NewAuditEntry(action, "sale", resourceID, operatorID, details)
	if err := s.audit.Append(ctx, entry); err != nil {
		return errors.ErrTransientStorage(err)
	}
	return nil
}
