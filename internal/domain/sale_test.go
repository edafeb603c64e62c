package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSaleItems() []SaleItem {
	return []SaleItem{
		{ProductID: "prod-1", Quantity: 3, UnitPrice: 100.0},
	}
}

func confirmedSale(t *testing.T) *Sale {
	t.Helper()
	s, err := NewSale("cust-1", createTestSaleItems(), 0, "loc-store", "op-1", "")
	require.NoError(t, err)
	require.NoError(t, s.Confirm("INV-000001", s.SaleDate.AddDate(0, 0, 30)))
	return s
}

func TestNewSale(t *testing.T) {
	s, err := NewSale("cust-1", []SaleItem{
		{ProductID: "prod-1", Quantity: 3, UnitPrice: 100.0, Discount: 20.0, Tax: 14.0},
	}, 10.0, "loc-store", "op-1", "sp-1")
	require.NoError(t, err)

	assert.Equal(t, SaleStatusDraft, s.Status)
	assert.Equal(t, PaymentStatusUnpaid, s.PaymentStatus)
	assert.InDelta(t, 300.0, s.Subtotal, 0.001)
	assert.InDelta(t, 20.0, s.DiscountTotal, 0.001)
	assert.InDelta(t, 14.0, s.TaxTotal, 0.001)
	assert.InDelta(t, 304.0, s.GrandTotal, 0.001)
	assert.Empty(t, s.InvoiceNumber)
	assert.Nil(t, s.DueDate)

	_, err = NewSale("", createTestSaleItems(), 0, "loc-store", "op-1", "")
	assert.ErrorIs(t, err, ErrUnknownCustomer)

	_, err = NewSale("cust-1", nil, 0, "loc-store", "op-1", "")
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestSaleRequiredQuantities_SumsPerProduct(t *testing.T) {
	s, err := NewSale("cust-1", []SaleItem{
		{ProductID: "prod-1", Quantity: 3, UnitPrice: 10},
		{ProductID: "prod-2", Quantity: 1, UnitPrice: 20},
		{ProductID: "prod-1", Quantity: 2, UnitPrice: 10},
	}, 0, "loc-store", "op-1", "")
	require.NoError(t, err)

	required := s.RequiredQuantities()
	assert.Equal(t, 5, required["prod-1"])
	assert.Equal(t, 1, required["prod-2"])
}

func TestSaleConfirm(t *testing.T) {
	s, err := NewSale("cust-1", createTestSaleItems(), 0, "loc-store", "op-1", "")
	require.NoError(t, err)

	due := s.SaleDate.AddDate(0, 0, 30)
	require.NoError(t, s.Confirm("INV-000001", due))

	assert.Equal(t, SaleStatusConfirmed, s.Status)
	assert.Equal(t, "INV-000001", s.InvoiceNumber)
	require.NotNil(t, s.DueDate)
	assert.True(t, s.DueDate.Equal(due))

	events := s.PullEvents()
	require.Len(t, events, 1)
	confirmed, ok := events[0].(*SaleConfirmedEvent)
	require.True(t, ok)
	assert.Equal(t, s.ID, confirmed.SaleID)

	assert.ErrorIs(t, s.Confirm("INV-000002", due), ErrInvalidStatusTransition)
	assert.Equal(t, "INV-000001", s.InvoiceNumber)
}

func TestSaleShipDeliver(t *testing.T) {
	s := confirmedSale(t)

	require.NoError(t, s.Ship())
	assert.Equal(t, SaleStatusShipped, s.Status)

	require.NoError(t, s.Deliver())
	assert.Equal(t, SaleStatusDelivered, s.Status)

	assert.ErrorIs(t, s.Ship(), ErrInvalidStatusTransition)
}

func TestSaleCancel_DraftHasNoCompensation(t *testing.T) {
	s, err := NewSale("cust-1", createTestSaleItems(), 0, "loc-store", "op-1", "")
	require.NoError(t, err)

	lines, released, err := s.Cancel()
	require.NoError(t, err)
	assert.Nil(t, lines)
	assert.Zero(t, released)
	assert.Equal(t, SaleStatusCancelled, s.Status)
}

func TestSaleCancel_PostedCompensates(t *testing.T) {
	s := confirmedSale(t)

	lines, released, err := s.Cancel()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "prod-1", lines[0].ProductID)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.InDelta(t, 300.0, released, 0.001)
}

func TestSaleReturn(t *testing.T) {
	s := confirmedSale(t)
	require.NoError(t, s.Ship())
	require.NoError(t, s.Deliver())

	lines, released, err := s.Return()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.InDelta(t, 300.0, released, 0.001)
	assert.Equal(t, SaleStatusReturned, s.Status)

	// Returned is terminal
	_, _, err = s.Cancel()
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestSaleReturn_NotFromConfirmed(t *testing.T) {
	s := confirmedSale(t)
	_, _, err := s.Return()
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestSaleUpdatePayment_BalanceDeltas(t *testing.T) {
	s := confirmedSale(t)

	// unpaid -> paid releases the full amount
	delta, err := s.UpdatePayment(PaymentStatusPaid, "cash", 0)
	require.NoError(t, err)
	assert.InDelta(t, -300.0, delta, 0.001)
	assert.InDelta(t, 0.0, s.UnpaidPortion(), 0.001)

	// paid -> unpaid restores it
	delta, err = s.UpdatePayment(PaymentStatusUnpaid, "", 0)
	require.NoError(t, err)
	assert.InDelta(t, 300.0, delta, 0.001)

	// partial payment releases only the paid share
	delta, err = s.UpdatePayment(PaymentStatusPartiallyPaid, "cash", 120)
	require.NoError(t, err)
	assert.InDelta(t, -120.0, delta, 0.001)
	assert.InDelta(t, 180.0, s.UnpaidPortion(), 0.001)

	// overdue cannot be set manually
	_, err = s.UpdatePayment(PaymentStatusOverdue, "", 0)
	assert.ErrorIs(t, err, ErrInvalidPaymentStatus)
}

func TestSaleUpdatePayment_DraftMovesNoBalance(t *testing.T) {
	s, err := NewSale("cust-1", createTestSaleItems(), 0, "loc-store", "op-1", "")
	require.NoError(t, err)

	delta, err := s.UpdatePayment(PaymentStatusPaid, "cash", 0)
	require.NoError(t, err)
	assert.Zero(t, delta)
}

func TestSaleMarkOverdue(t *testing.T) {
	s := confirmedSale(t)
	now := time.Now().UTC()

	// Not yet due
	future := now.AddDate(0, 0, 5)
	s.DueDate = &future
	assert.False(t, s.MarkOverdue(now))

	// Past due flips once
	past := now.AddDate(0, 0, -1)
	s.DueDate = &past
	assert.True(t, s.MarkOverdue(now))
	assert.Equal(t, PaymentStatusOverdue, s.PaymentStatus)

	// Second sweep is a no-op
	assert.False(t, s.MarkOverdue(now))

	// Paid sales are never demoted
	s2 := confirmedSale(t)
	_, err := s2.UpdatePayment(PaymentStatusPaid, "cash", 0)
	require.NoError(t, err)
	s2.DueDate = &past
	assert.False(t, s2.MarkOverdue(now))
}

func TestSaleUpdateItems_DraftOnly(t *testing.T) {
	s, err := NewSale("cust-1", createTestSaleItems(), 0, "loc-store", "op-1", "")
	require.NoError(t, err)

	err = s.UpdateItems([]SaleItem{{ProductID: "prod-2", Quantity: 1, UnitPrice: 40}}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, s.GrandTotal, 0.001)

	require.NoError(t, s.Confirm("INV-000001", s.SaleDate))
	assert.ErrorIs(t, s.UpdateItems(createTestSaleItems(), 0), ErrSaleNotDraft)
}
