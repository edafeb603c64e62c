package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkyalo/stock-inventory-sub002/internal/domain"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/errors"
)

func draftSale(t *testing.T, svc *SalesService, cmd CreateSaleCommand) *SaleDTO {
	t.Helper()
	dto, err := svc.CreateSale(context.Background(), cmd)
	require.NoError(t, err)
	return dto
}

func TestConfirmSalePostsStockAndBalance(t *testing.T) {
	w := newWorld()
	w.addProduct("p1", "WIDGET-1", 10, 2)
	w.addLocation("loc1", "WH-A")
	w.index.set("p1", "loc1", 10)
	w.addCustomer("c1", 0, 0, domain.TermsNet30)
	svc := w.salesService()

	dto := draftSale(t, svc, CreateSaleCommand{
		CustomerID:         "c1",
		Items:              []SaleItemInput{{ProductID: "p1", Quantity: 3, UnitPrice: 100}},
		ShippingLocationID: "loc1",
		OperatorID:         "op1",
	})
	assert.Equal(t, "draft", dto.Status)
	assert.Equal(t, 300.0, dto.GrandTotal)
	assert.Empty(t, w.movements.entries)

	confirmed, err := svc.ChangeStatus(context.Background(), SaleStatusCommand{
		SaleID: dto.ID, Status: "confirmed", OperatorID: "op1",
	})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", confirmed.Status)
	assert.Equal(t, "INV-000001", confirmed.InvoiceNumber)
	require.NotNil(t, confirmed.DueDate)
	assert.Equal(t, confirmed.SaleDate.AddDate(0, 0, 30), *confirmed.DueDate)

	product, _ := w.products.FindByID(context.Background(), "p1")
	assert.Equal(t, 7, product.CurrentStock)
	qty, _ := w.index.Quantity(context.Background(), "p1", "loc1")
	assert.Equal(t, 7, qty)

	customer, _ := w.customers.FindByID(context.Background(), "c1")
	assert.Equal(t, 300.0, customer.CurrentBalance)
	assert.Equal(t, 1, customer.TotalOrders)
	assert.Equal(t, 300.0, customer.TotalSalesAmount)

	assert.Len(t, w.movements.entries, 1)
	assert.Equal(t, domain.ReasonSale, w.movements.entries[0].Reason)
	assert.Contains(t, w.outbox.eventTypes(), "sales.sale.confirmed")
}

func TestConfirmSaleCreditBlockedWithoutStateChange(t *testing.T) {
	w := newWorld()
	w.addProduct("p1", "WIDGET-1", 10, 0)
	w.addLocation("loc1", "WH-A")
	w.index.set("p1", "loc1", 10)
	w.addCustomer("c1", 200, 0, domain.TermsNet30)
	svc := w.salesService()

	dto := draftSale(t, svc, CreateSaleCommand{
		CustomerID:         "c1",
		Items:              []SaleItemInput{{ProductID: "p1", Quantity: 3, UnitPrice: 100}},
		ShippingLocationID: "loc1",
		OperatorID:         "op1",
	})

	_, err := svc.ChangeStatus(context.Background(), SaleStatusCommand{
		SaleID: dto.ID, Status: "confirmed", OperatorID: "op1",
	})
	require.Error(t, err)
	appErr, _ := errors.AsAppError(err)
	assert.Equal(t, errors.CodeCreditLimitExceeded, appErr.Code)

	sale, _ := w.sales.FindByID(context.Background(), dto.ID)
	assert.Equal(t, domain.SaleStatusDraft, sale.Status)
	assert.Empty(t, sale.InvoiceNumber)
	product, _ := w.products.FindByID(context.Background(), "p1")
	assert.Equal(t, 10, product.CurrentStock)
	customer, _ := w.customers.FindByID(context.Background(), "c1")
	assert.Equal(t, 0.0, customer.CurrentBalance)
	assert.Empty(t, w.movements.entries)
}

func TestConfirmSaleCreditOverride(t *testing.T) {
	w := newWorld()
	w.addProduct("p1", "WIDGET-1", 10, 0)
	w.addLocation("loc1", "WH-A")
	w.index.set("p1", "loc1", 10)
	w.addCustomer("c1", 200, 0, domain.TermsNet30)
	svc := w.salesService()

	dto := draftSale(t, svc, CreateSaleCommand{
		CustomerID:         "c1",
		Items:              []SaleItemInput{{ProductID: "p1", Quantity: 3, UnitPrice: 100}},
		ShippingLocationID: "loc1",
		OperatorID:         "op1",
	})

	confirmed, err := svc.ChangeStatus(context.Background(), SaleStatusCommand{
		SaleID: dto.ID, Status: "confirmed", CreditOverride: true, OperatorID: "op1",
	})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", confirmed.Status)
}

func TestConfirmSaleInsufficientStock(t *testing.T) {
	w := newWorld()
	w.addProduct("p1", "WIDGET-1", 2, 0)
	w.addLocation("loc1", "WH-A")
	w.index.set("p1", "loc1", 2)
	w.addCustomer("c1", 0, 0, domain.TermsCash)
	svc := w.salesService()

	dto := draftSale(t, svc, CreateSaleCommand{
		CustomerID:         "c1",
		Items:              []SaleItemInput{{ProductID: "p1", Quantity: 3, UnitPrice: 100}},
		ShippingLocationID: "loc1",
		OperatorID:         "op1",
	})

	_, err := svc.ChangeStatus(context.Background(), SaleStatusCommand{
		SaleID: dto.ID, Status: "confirmed", OperatorID: "op1",
	})
	require.Error(t, err)
	appErr, _ := errors.AsAppError(err)
	assert.Equal(t, errors.CodeInsufficientStock, appErr.Code)
}

func TestConfirmSaleSumsDuplicateProductLines(t *testing.T) {
	w := newWorld()
	w.addProduct("p1", "WIDGET-1", 5, 0)
	w.addLocation("loc1", "WH-A")
	w.index.set("p1", "loc1", 5)
	w.addCustomer("c1", 0, 0, domain.TermsCash)
	svc := w.salesService()

	dto := draftSale(t, svc, CreateSaleCommand{
		CustomerID: "c1",
		Items: []SaleItemInput{
			{ProductID: "p1", Quantity: 3, UnitPrice: 100},
			{ProductID: "p1", Quantity: 3, UnitPrice: 100},
		},
		ShippingLocationID: "loc1",
		OperatorID:         "op1",
	})

	_, err := svc.ChangeStatus(context.Background(), SaleStatusCommand{
		SaleID: dto.ID, Status: "confirmed", OperatorID: "op1",
	})
	require.Error(t, err)
	appErr, _ := errors.AsAppError(err)
	assert.Equal(t, errors.CodeInsufficientStock, appErr.Code)
}

func TestConfirmSaleExactStockBoundary(t *testing.T) {
	w := newWorld()
	w.addProduct("p1", "WIDGET-1", 3, 0)
	w.addLocation("loc1", "WH-A")
	w.index.set("p1", "loc1", 3)
	w.addCustomer("c1", 0, 0, domain.TermsCash)
	svc := w.salesService()

	dto := draftSale(t, svc, CreateSaleCommand{
		CustomerID:         "c1",
		Items:              []SaleItemInput{{ProductID: "p1", Quantity: 3, UnitPrice: 100}},
		ShippingLocationID: "loc1",
		OperatorID:         "op1",
	})

	_, err := svc.ChangeStatus(context.Background(), SaleStatusCommand{
		SaleID: dto.ID, Status: "confirmed", OperatorID: "op1",
	})
	require.NoError(t, err)

	product, _ := w.products.FindByID(context.Background(), "p1")
	assert.Equal(t, 0, product.CurrentStock)
	assert.Equal(t, domain.StockStatusOutOfStock, product.StockStatus)
}

func TestConfirmSaleFallsBackToDefaultShippingLocation(t *testing.T) {
	w := newWorld()
	w.addProduct("p1", "WIDGET-1", 5, 0)
	w.addLocation("loc-ship", "WH-SHIP")
	w.index.set("p1", "loc-ship", 5)
	w.settings.DefaultShippingLocation = "loc-ship"
	w.addCustomer("c1", 0, 0, domain.TermsCash)
	svc := w.salesService()

	dto := draftSale(t, svc, CreateSaleCommand{
		CustomerID: "c1",
		Items:      []SaleItemInput{{ProductID: "p1", Quantity: 2, UnitPrice: 50}},
		OperatorID: "op1",
	})

	_, err := svc.ChangeStatus(context.Background(), SaleStatusCommand{
		SaleID: dto.ID, Status: "confirmed", OperatorID: "op1",
	})
	require.NoError(t, err)

	qty, _ := w.index.Quantity(context.Background(), "p1", "loc-ship")
	assert.Equal(t, 3, qty)
}

func TestCancelDraftSaleTouchesNothing(t *testing.T) {
	w := newWorld()
	w.addProduct("p1", "WIDGET-1", 10, 0)
	w.addCustomer("c1", 0, 0, domain.TermsCash)
	svc := w.salesService()

	dto := draftSale(t, svc, CreateSaleCommand{
		CustomerID: "c1",
		Items:      []SaleItemInput{{ProductID: "p1", Quantity: 3, UnitPrice: 100}},
		OperatorID: "op1",
	})

	cancelled, err := svc.ChangeStatus(context.Background(), SaleStatusCommand{
		SaleID: dto.ID, Status: "cancelled", OperatorID: "op1",
	})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Empty(t, w.movements.entries)

	customer, _ := w.customers.FindByID(context.Background(), "c1")
	assert.Equal(t, 0.0, customer.CurrentBalance)
}

func TestReturnDeliveredSaleCompensates(t *testing.T) {
	w := newWorld()
	w.addProduct("p1", "WIDGET-1", 10, 0)
	w.addLocation("loc1", "WH-A")
	w.index.set("p1", "loc1", 10)
	w.addCustomer("c1", 0, 0, domain.TermsNet30)
	svc := w.salesService()

	dto := draftSale(t, svc, CreateSaleCommand{
		CustomerID:         "c1",
		Items:              []SaleItemInput{{ProductID: "p1", Quantity: 3, UnitPrice: 100}},
		ShippingLocationID: "loc1",
		OperatorID:         "op1",
	})

	for _, status := range []string{"confirmed", "shipped", "delivered"} {
		var err error
		dto, err = svc.ChangeStatus(context.Background(), SaleStatusCommand{
			SaleID: dto.ID, Status: status, OperatorID: "op1",
		})
		require.NoError(t, err)
	}

	customer, _ := w.customers.FindByID(context.Background(), "c1")
	require.Equal(t, 300.0, customer.CurrentBalance)

	returned, err := svc.ChangeStatus(context.Background(), SaleStatusCommand{
		SaleID: dto.ID, Status: "returned", OperatorID: "op1",
	})
	require.NoError(t, err)
	assert.Equal(t, "returned", returned.Status)

	product, _ := w.products.FindByID(context.Background(), "p1")
	assert.Equal(t, 10, product.CurrentStock)
	qty, _ := w.index.Quantity(context.Background(), "p1", "loc1")
	assert.Equal(t, 10, qty)

	customer, _ = w.customers.FindByID(context.Background(), "c1")
	assert.Equal(t, 0.0, customer.CurrentBalance)

	// the return is a new ledger entry, the sale entry is untouched
	require.Len(t, w.movements.entries, 2)
	assert.Equal(t, domain.ReasonReturn, w.movements.entries[1].Reason)
}

func TestCancelConfirmedSaleRestoresStock(t *testing.T) {
	w := newWorld()
	w.addProduct("p1", "WIDGET-1", 10, 0)
	w.addLocation("loc1", "WH-A")
	w.index.set("p1", "loc1", 10)
	w.addCustomer("c1", 0, 0, domain.TermsNet30)
	svc := w.salesService()

	dto := draftSale(t, svc, CreateSaleCommand{
		CustomerID:         "c1",
		Items:              []SaleItemInput{{ProductID: "p1", Quantity: 4, UnitPrice: 100}},
		ShippingLocationID: "loc1",
		OperatorID:         "op1",
	})
	dto, err := svc.ChangeStatus(context.Background(), SaleStatusCommand{
		SaleID: dto.ID, Status: "confirmed", OperatorID: "op1",
	})
	require.NoError(t, err)

	_, err = svc.ChangeStatus(context.Background(), SaleStatusCommand{
		SaleID: dto.ID, Status: "cancelled", OperatorID: "op1",
	})
	require.NoError(t, err)

	product, _ := w.products.FindByID(context.Background(), "p1")
	assert.Equal(t, 10, product.CurrentStock)
	customer, _ := w.customers.FindByID(context.Background(), "c1")
	assert.Equal(t, 0.0, customer.CurrentBalance)
}

func TestSalePaymentMovesBalance(t *testing.T) {
	w := newWorld()
	w.addProduct("p1", "WIDGET-1", 10, 0)
	w.addLocation("loc1", "WH-A")
	w.index.set("p1", "loc1", 10)
	w.addCustomer("c1", 0, 0, domain.TermsNet30)
	svc := w.salesService()

	dto := draftSale(t, svc, CreateSaleCommand{
		CustomerID:         "c1",
		Items:              []SaleItemInput{{ProductID: "p1", Quantity: 3, UnitPrice: 100}},
		ShippingLocationID: "loc1",
		OperatorID:         "op1",
	})
	dto, err := svc.ChangeStatus(context.Background(), SaleStatusCommand{
		SaleID: dto.ID, Status: "confirmed", OperatorID: "op1",
	})
	require.NoError(t, err)

	paid, err := svc.UpdatePayment(context.Background(), SalePaymentCommand{
		SaleID: dto.ID, PaymentStatus: "paid", PaymentMethod: "cash", OperatorID: "op1",
	})
	require.NoError(t, err)
	assert.Equal(t, "paid", paid.PaymentStatus)
	assert.Equal(t, 300.0, paid.PaidAmount)

	customer, _ := w.customers.FindByID(context.Background(), "c1")
	assert.Equal(t, 0.0, customer.CurrentBalance)

	partial, err := svc.UpdatePayment(context.Background(), SalePaymentCommand{
		SaleID: dto.ID, PaymentStatus: "partially_paid", PaidAmount: 180, PaymentMethod: "cash", OperatorID: "op1",
	})
	require.NoError(t, err)
	assert.Equal(t, 180.0, partial.PaidAmount)

	customer, _ = w.customers.FindByID(context.Background(), "c1")
	assert.Equal(t, 120.0, customer.CurrentBalance)
}

func TestSalePaymentOnDraftMovesNoBalance(t *testing.T) {
	w := newWorld()
	w.addProduct("p1", "WIDGET-1", 10, 0)
	w.addCustomer("c1", 0, 0, domain.TermsNet30)
	svc := w.salesService()

	dto := draftSale(t, svc, CreateSaleCommand{
		CustomerID: "c1",
		Items:      []SaleItemInput{{ProductID: "p1", Quantity: 3, UnitPrice: 100}},
		OperatorID: "op1",
	})

	_, err := svc.UpdatePayment(context.Background(), SalePaymentCommand{
		SaleID: dto.ID, PaymentStatus: "paid", PaymentMethod: "cash", OperatorID: "op1",
	})
	require.NoError(t, err)

	customer, _ := w.customers.FindByID(context.Background(), "c1")
	assert.Equal(t, 0.0, customer.CurrentBalance)
}

func TestOverdueSweepIsIdempotent(t *testing.T) {
	w := newWorld()
	w.addProduct("p1", "WIDGET-1", 10, 0)
	w.addLocation("loc1", "WH-A")
	w.index.set("p1", "loc1", 10)
	w.addCustomer("c1", 0, 0, domain.TermsNet15)
	svc := w.salesService()

	dto := draftSale(t, svc, CreateSaleCommand{
		CustomerID:         "c1",
		Items:              []SaleItemInput{{ProductID: "p1", Quantity: 1, UnitPrice: 100}},
		ShippingLocationID: "loc1",
		OperatorID:         "op1",
	})
	_, err := svc.ChangeStatus(context.Background(), SaleStatusCommand{
		SaleID: dto.ID, Status: "confirmed", OperatorID: "op1",
	})
	require.NoError(t, err)

	// push the due date into the past
	sale, _ := w.sales.FindByID(context.Background(), dto.ID)
	past := time.Now().UTC().AddDate(0, 0, -1)
	sale.DueDate = &past

	first, err := svc.CheckOverdue(context.Background(), "sweeper")
	require.NoError(t, err)
	assert.Equal(t, 1, first.MarkedOverdue)

	updated, _ := w.sales.FindByID(context.Background(), dto.ID)
	assert.Equal(t, domain.PaymentStatusOverdue, updated.PaymentStatus)

	second, err := svc.CheckOverdue(context.Background(), "sweeper")
	require.NoError(t, err)
	assert.Equal(t, 0, second.MarkedOverdue)
	assert.Equal(t, 0, second.Scanned)
}

func TestUpdateSaleDraftOnly(t *testing.T) {
	w := newWorld()
	w.addProduct("p1", "WIDGET-1", 10, 0)
	w.addLocation("loc1", "WH-A")
	w.index.set("p1", "loc1", 10)
	w.addCustomer("c1", 0, 0, domain.TermsCash)
	svc := w.salesService()

	dto := draftSale(t, svc, CreateSaleCommand{
		CustomerID:         "c1",
		Items:              []SaleItemInput{{ProductID: "p1", Quantity: 3, UnitPrice: 100}},
		ShippingLocationID: "loc1",
		OperatorID:         "op1",
	})

	updated, err := svc.UpdateSale(context.Background(), UpdateSaleCommand{
		SaleID:     dto.ID,
		Items:      []SaleItemInput{{ProductID: "p1", Quantity: 2, UnitPrice: 100}},
		OperatorID: "op1",
	})
	require.NoError(t, err)
	assert.Equal(t, 200.0, updated.GrandTotal)

	_, err = svc.ChangeStatus(context.Background(), SaleStatusCommand{
		SaleID: dto.ID, Status: "confirmed", OperatorID: "op1",
	})
	require.NoError(t, err)

	_, err = svc.UpdateSale(context.Background(), UpdateSaleCommand{
		SaleID:     dto.ID,
		Items:      []SaleItemInput{{ProductID: "p1", Quantity: 1, UnitPrice: 100}},
		OperatorID: "op1",
	})
	require.Error(t, err)
	appErr, _ := errors.AsAppError(err)
	assert.Equal(t, errors.CodeConflict, appErr.Code)
}

func TestCreateSaleInactiveCustomerRejected(t *testing.T) {
	w := newWorld()
	w.addProduct("p1", "WIDGET-1", 10, 0)
	c := w.addCustomer("c1", 0, 0, domain.TermsCash)
	c.IsActive = false
	svc := w.salesService()

	_, err := svc.CreateSale(context.Background(), CreateSaleCommand{
		CustomerID: "c1",
		Items:      []SaleItemInput{{ProductID: "p1", Quantity: 1, UnitPrice: 100}},
		OperatorID: "op1",
	})
	require.Error(t, err)
	appErr, _ := errors.AsAppError(err)
	assert.Equal(t, errors.CodeConflict, appErr.Code)
}
