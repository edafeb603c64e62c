package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPurchaseItems() []PurchaseItem {
	return []PurchaseItem{
		{ProductID: "prod-1", OrderedQty: 10, UnitPrice: 5.0, Tax: 2.5},
		{ProductID: "prod-2", OrderedQty: 4, UnitPrice: 12.0, Discount: 8.0, Tax: 2.0},
	}
}

func orderedPurchase(t *testing.T) *Purchase {
	t.Helper()
	p, err := NewPurchase("sup-1", createTestPurchaseItems(), 10.0, "loc-main", "op-1", nil)
	require.NoError(t, err)
	require.NoError(t, p.Submit())
	require.NoError(t, p.Approve())
	require.NoError(t, p.MarkOrdered("PO-000001"))
	return p
}

func TestNewPurchase(t *testing.T) {
	p, err := NewPurchase("sup-1", createTestPurchaseItems(), 10.0, "loc-main", "op-1", nil)
	require.NoError(t, err)

	assert.Equal(t, PurchaseStatusDraft, p.Status)
	assert.Equal(t, PaymentStatusUnpaid, p.PaymentStatus)
	// (10*5) + (4*12 - 8) = 90
	assert.InDelta(t, 90.0, p.Subtotal, 0.001)
	assert.InDelta(t, 4.5, p.TaxTotal, 0.001)
	assert.InDelta(t, 104.5, p.GrandTotal, 0.001)
	assert.Empty(t, p.PurchaseOrderNumber)

	_, err = NewPurchase("sup-1", nil, 0, "loc-main", "op-1", nil)
	assert.ErrorIs(t, err, ErrNoItems)

	_, err = NewPurchase("sup-1", []PurchaseItem{{ProductID: "prod-1", OrderedQty: 0}}, 0, "loc-main", "op-1", nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestPurchaseStatusTransitions(t *testing.T) {
	tests := []struct {
		from    PurchaseStatus
		to      PurchaseStatus
		allowed bool
	}{
		{PurchaseStatusDraft, PurchaseStatusPending, true},
		{PurchaseStatusDraft, PurchaseStatusApproved, false},
		{PurchaseStatusPending, PurchaseStatusApproved, true},
		{PurchaseStatusApproved, PurchaseStatusOrdered, true},
		{PurchaseStatusOrdered, PurchaseStatusPartiallyReceived, true},
		{PurchaseStatusOrdered, PurchaseStatusReceived, true},
		{PurchaseStatusOrdered, PurchaseStatusCancelled, true},
		{PurchaseStatusPartiallyReceived, PurchaseStatusReceived, true},
		{PurchaseStatusPartiallyReceived, PurchaseStatusCancelled, false},
		{PurchaseStatusReceived, PurchaseStatusOrdered, false},
		{PurchaseStatusCancelled, PurchaseStatusDraft, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestPurchaseMarkOrdered_AssignsNumberOnce(t *testing.T) {
	p, err := NewPurchase("sup-1", createTestPurchaseItems(), 0, "loc-main", "op-1", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, p.MarkOrdered("PO-000001"), ErrInvalidStatusTransition)

	require.NoError(t, p.Submit())
	require.NoError(t, p.Approve())
	require.NoError(t, p.MarkOrdered("PO-000001"))
	assert.Equal(t, "PO-000001", p.PurchaseOrderNumber)
	assert.Equal(t, PurchaseStatusOrdered, p.Status)
}

func TestPurchaseReceive_Partial(t *testing.T) {
	p := orderedPurchase(t)

	received, err := p.Receive([]ReceiptLine{{ItemID: p.Items[0].ID, Quantity: 4}})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "prod-1", received[0].ProductID)
	assert.Equal(t, 4, received[0].Quantity)
	assert.InDelta(t, 5.0, received[0].UnitPrice, 0.001)

	assert.Equal(t, PurchaseStatusPartiallyReceived, p.Status)
	assert.Equal(t, 4, p.Items[0].ReceivedQty)
	assert.Nil(t, p.ReceivedDate)

	// Receive the remainder of both lines
	received, err = p.Receive([]ReceiptLine{
		{ItemID: p.Items[0].ID, Quantity: 6},
		{ItemID: p.Items[1].ID, Quantity: 4},
	})
	require.NoError(t, err)
	assert.Len(t, received, 2)
	assert.Equal(t, PurchaseStatusReceived, p.Status)
	assert.NotNil(t, p.ReceivedDate)

	events := p.PullEvents()
	assert.Len(t, events, 2)
}

func TestPurchaseReceive_ExceedsOrdered(t *testing.T) {
	p := orderedPurchase(t)

	_, err := p.Receive([]ReceiptLine{{ItemID: p.Items[0].ID, Quantity: 11}})
	assert.ErrorIs(t, err, ErrReceiveExceedsOrdered)
	assert.Equal(t, 0, p.Items[0].ReceivedQty, "rejected receipt must not mutate lines")
	assert.Equal(t, PurchaseStatusOrdered, p.Status)

	// Duplicate item lines in one receipt are summed before the check
	_, err = p.Receive([]ReceiptLine{
		{ItemID: p.Items[0].ID, Quantity: 6},
		{ItemID: p.Items[0].ID, Quantity: 6},
	})
	assert.ErrorIs(t, err, ErrReceiveExceedsOrdered)
	assert.Equal(t, 0, p.Items[0].ReceivedQty)
}

func TestPurchaseReceive_UnknownItem(t *testing.T) {
	p := orderedPurchase(t)

	_, err := p.Receive([]ReceiptLine{{ItemID: "missing", Quantity: 1}})
	assert.ErrorIs(t, err, ErrPurchaseItemNotFound)
}

func TestPurchaseCancel(t *testing.T) {
	p := orderedPurchase(t)
	require.NoError(t, p.Cancel())
	assert.Equal(t, PurchaseStatusCancelled, p.Status)

	p2 := orderedPurchase(t)
	_, err := p2.Receive([]ReceiptLine{{ItemID: p2.Items[0].ID, Quantity: 1}})
	require.NoError(t, err)
	assert.ErrorIs(t, p2.Cancel(), ErrPurchaseHasLedgerEntries)
}

func TestPurchaseDelete_OnlyDraft(t *testing.T) {
	p, err := NewPurchase("sup-1", createTestPurchaseItems(), 0, "loc-main", "op-1", nil)
	require.NoError(t, err)
	assert.True(t, p.CanDelete())

	require.NoError(t, p.Submit())
	assert.False(t, p.CanDelete())
}

func TestPurchaseUpdatePayment(t *testing.T) {
	p := orderedPurchase(t)

	require.NoError(t, p.UpdatePayment(PaymentStatusPaid, "bank_transfer"))
	assert.Equal(t, PaymentStatusPaid, p.PaymentStatus)
	assert.Equal(t, "bank_transfer", p.PaymentMethod)

	assert.ErrorIs(t, p.UpdatePayment(PaymentStatusOverdue, ""), ErrInvalidPaymentStatus)
}

func TestPurchaseUpdateItems(t *testing.T) {
	p, err := NewPurchase("sup-1", createTestPurchaseItems(), 0, "loc-main", "op-1", nil)
	require.NoError(t, err)

	err = p.UpdateItems([]PurchaseItem{{ProductID: "prod-3", OrderedQty: 2, UnitPrice: 50}}, 5)
	require.NoError(t, err)
	assert.InDelta(t, 105.0, p.GrandTotal, 0.001)

	require.NoError(t, p.Submit())
	require.NoError(t, p.Approve())
	assert.ErrorIs(t, p.UpdateItems(createTestPurchaseItems(), 0), ErrPurchaseNotEditable)
}
