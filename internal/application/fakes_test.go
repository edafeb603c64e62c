package application

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/peterkyalo/stock-inventory-sub002/internal/domain"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/locks"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/logging"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/outbox"
)

// In-memory repositories for engine tests. They implement the domain
// interfaces faithfully enough to exercise the services end to end
// without a running database. No transactional rollback: the tests rely
// on the engines validating before mutating.

type fakeTxRunner struct{}

func (f *fakeTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeMovementRepo struct {
	entries []*domain.StockMovement
}

func (r *fakeMovementRepo) Append(ctx context.Context, m *domain.StockMovement) error {
	r.entries = append(r.entries, m)
	return nil
}

func (r *fakeMovementRepo) FindByID(ctx context.Context, id string) (*domain.StockMovement, error) {
	for _, m := range r.entries {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (r *fakeMovementRepo) matches(m *domain.StockMovement, f domain.MovementFilter) bool {
	if f.ProductID != "" && m.ProductID != f.ProductID {
		return false
	}
	if f.LocationID != "" && m.LocationFrom != f.LocationID && m.LocationTo != f.LocationID {
		return false
	}
	if f.Type != "" && m.Type != f.Type {
		return false
	}
	if f.Reason != "" && m.Reason != f.Reason {
		return false
	}
	if f.OperatorID != "" && m.OperatorID != f.OperatorID {
		return false
	}
	if f.SourceRef != "" && m.SourceRef != f.SourceRef {
		return false
	}
	return true
}

func (r *fakeMovementRepo) List(ctx context.Context, f domain.MovementFilter) ([]*domain.StockMovement, error) {
	var out []*domain.StockMovement
	for _, m := range r.entries {
		if r.matches(m, f) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence > out[j].Sequence })
	if f.Offset > 0 {
		if f.Offset >= int64(len(out)) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *fakeMovementRepo) Count(ctx context.Context, f domain.MovementFilter) (int64, error) {
	var n int64
	for _, m := range r.entries {
		if r.matches(m, f) {
			n++
		}
	}
	return n, nil
}

func (r *fakeMovementRepo) Summary(ctx context.Context, from, to *time.Time) ([]domain.MovementSummaryRow, error) {
	type key struct {
		t domain.MovementType
		r domain.MovementReason
	}
	agg := map[key]*domain.MovementSummaryRow{}
	for _, m := range r.entries {
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		k := key{m.Type, m.Reason}
		row, ok := agg[k]
		if !ok {
			row = &domain.MovementSummaryRow{Type: m.Type, Reason: m.Reason}
			agg[k] = row
		}
		row.Count++
		row.Quantity += int64(m.Quantity)
	}
	var rows []domain.MovementSummaryRow
	for _, row := range agg {
		rows = append(rows, *row)
	}
	return rows, nil
}

func (r *fakeMovementRepo) ListAllOrdered(ctx context.Context, afterSequence int64, limit int64) ([]*domain.StockMovement, error) {
	var out []*domain.StockMovement
	for _, m := range r.entries {
		if m.Sequence > afterSequence {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeStockIndex struct {
	levels map[string]map[string]int // productID -> locationID -> qty
}

func newFakeStockIndex() *fakeStockIndex {
	return &fakeStockIndex{levels: map[string]map[string]int{}}
}

func (r *fakeStockIndex) set(productID, locationID string, qty int) {
	if r.levels[productID] == nil {
		r.levels[productID] = map[string]int{}
	}
	r.levels[productID][locationID] = qty
}

func (r *fakeStockIndex) ApplyDelta(ctx context.Context, productID, locationID string, delta int) (int, error) {
	if r.levels[productID] == nil {
		r.levels[productID] = map[string]int{}
	}
	r.levels[productID][locationID] += delta
	return r.levels[productID][locationID], nil
}

func (r *fakeStockIndex) Quantity(ctx context.Context, productID, locationID string) (int, error) {
	return r.levels[productID][locationID], nil
}

func (r *fakeStockIndex) ByLocation(ctx context.Context, locationID string) ([]*domain.StockLevel, error) {
	var out []*domain.StockLevel
	for productID, byLoc := range r.levels {
		if qty, ok := byLoc[locationID]; ok {
			out = append(out, &domain.StockLevel{ProductID: productID, LocationID: locationID, Quantity: qty})
		}
	}
	return out, nil
}

func (r *fakeStockIndex) ByProduct(ctx context.Context, productID string) ([]*domain.StockLevel, error) {
	var out []*domain.StockLevel
	for locationID, qty := range r.levels[productID] {
		out = append(out, &domain.StockLevel{ProductID: productID, LocationID: locationID, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LocationID < out[j].LocationID })
	return out, nil
}

func (r *fakeStockIndex) Reset(ctx context.Context) error {
	r.levels = map[string]map[string]int{}
	return nil
}

type fakeProductRepo struct {
	products map[string]*domain.Product
}

func newFakeProductRepo(products ...*domain.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: map[string]*domain.Product{}}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.products[id], nil
}

func (r *fakeProductRepo) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) Save(ctx context.Context, p *domain.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) UpdateStock(ctx context.Context, id string, currentStock int, status domain.StockStatus, averageCost float64) error {
	p := r.products[id]
	p.CurrentStock = currentStock
	p.StockStatus = status
	p.AverageCost = averageCost
	return nil
}

type fakeLocationRepo struct {
	locations map[string]*domain.Location
}

func newFakeLocationRepo(locations ...*domain.Location) *fakeLocationRepo {
	r := &fakeLocationRepo{locations: map[string]*domain.Location{}}
	for _, l := range locations {
		r.locations[l.ID] = l
	}
	return r
}

func (r *fakeLocationRepo) FindByID(ctx context.Context, id string) (*domain.Location, error) {
	return r.locations[id], nil
}

func (r *fakeLocationRepo) FindByCode(ctx context.Context, code string) (*domain.Location, error) {
	for _, l := range r.locations {
		if l.Code == code {
			return l, nil
		}
	}
	return nil, nil
}

func (r *fakeLocationRepo) Save(ctx context.Context, l *domain.Location) error {
	r.locations[l.ID] = l
	return nil
}

func (r *fakeLocationRepo) UpdateUtilization(ctx context.Context, id string, delta int) error {
	r.locations[id].CurrentUtilization += delta
	return nil
}

type fakeCustomerRepo struct {
	customers map[string]*domain.Customer
}

func newFakeCustomerRepo(customers ...*domain.Customer) *fakeCustomerRepo {
	r := &fakeCustomerRepo{customers: map[string]*domain.Customer{}}
	for _, c := range customers {
		r.customers[c.ID] = c
	}
	return r
}

func (r *fakeCustomerRepo) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	return r.customers[id], nil
}

func (r *fakeCustomerRepo) Save(ctx context.Context, c *domain.Customer) error {
	r.customers[c.ID] = c
	return nil
}

func (r *fakeCustomerRepo) ApplyBalanceDelta(ctx context.Context, id string, delta float64) error {
	r.customers[id].CurrentBalance += delta
	return nil
}

func (r *fakeCustomerRepo) RecordSale(ctx context.Context, id string, amount float64) error {
	c := r.customers[id]
	c.TotalOrders++
	c.TotalSalesAmount += amount
	return nil
}

type fakePurchaseRepo struct {
	purchases map[string]*domain.Purchase
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{purchases: map[string]*domain.Purchase{}}
}

func (r *fakePurchaseRepo) Save(ctx context.Context, p *domain.Purchase) error {
	r.purchases[p.ID] = p
	return nil
}

func (r *fakePurchaseRepo) FindByID(ctx context.Context, id string) (*domain.Purchase, error) {
	return r.purchases[id], nil
}

func (r *fakePurchaseRepo) FindByOrderNumber(ctx context.Context, orderNumber string) (*domain.Purchase, error) {
	for _, p := range r.purchases {
		if p.PurchaseOrderNumber == orderNumber {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePurchaseRepo) List(ctx context.Context, f domain.PurchaseFilter) ([]*domain.Purchase, error) {
	var out []*domain.Purchase
	for _, p := range r.purchases {
		if f.SupplierID != "" && p.SupplierID != f.SupplierID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePurchaseRepo) Delete(ctx context.Context, id string) error {
	delete(r.purchases, id)
	return nil
}

type fakeSaleRepo struct {
	sales map[string]*domain.Sale
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: map[string]*domain.Sale{}}
}

func (r *fakeSaleRepo) Save(ctx context.Context, s *domain.Sale) error {
	r.sales[s.ID] = s
	return nil
}

func (r *fakeSaleRepo) FindByID(ctx context.Context, id string) (*domain.Sale, error) {
	return r.sales[id], nil
}

func (r *fakeSaleRepo) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*domain.Sale, error) {
	for _, s := range r.sales {
		if s.InvoiceNumber == invoiceNumber {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSaleRepo) List(ctx context.Context, f domain.SaleFilter) ([]*domain.Sale, error) {
	var out []*domain.Sale
	for _, s := range r.sales {
		if f.CustomerID != "" && s.CustomerID != f.CustomerID {
			continue
		}
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if f.PaymentStatus != "" && s.PaymentStatus != f.PaymentStatus {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeSaleRepo) FindDueForOverdue(ctx context.Context, now time.Time, limit int64) ([]*domain.Sale, error) {
	var out []*domain.Sale
	for _, s := range r.sales {
		if !s.Status.HasPostedStock() || s.DueDate == nil || !s.DueDate.Before(now) {
			continue
		}
		if s.PaymentStatus != domain.PaymentStatusUnpaid && s.PaymentStatus != domain.PaymentStatusPartiallyPaid {
			continue
		}
		out = append(out, s)
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

type fakeCounterRepo struct {
	counters map[string]int64
}

func newFakeCounterRepo() *fakeCounterRepo {
	return &fakeCounterRepo{counters: map[string]int64{}}
}

func (r *fakeCounterRepo) Next(ctx context.Context, name string) (int64, error) {
	r.counters[name]++
	return r.counters[name], nil
}

type fakeAuditRepo struct {
	entries []*domain.AuditEntry
}

func (r *fakeAuditRepo) Append(ctx context.Context, entry *domain.AuditEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) List(ctx context.Context, resource, resourceID string, pagination domain.Pagination) ([]*domain.AuditEntry, error) {
	var out []*domain.AuditEntry
	for _, e := range r.entries {
		if resource != "" && e.Resource != resource {
			continue
		}
		if resourceID != "" && e.ResourceID != resourceID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type fakeOutboxRepo struct {
	events []*outbox.Event
}

func (r *fakeOutboxRepo) Save(ctx context.Context, event *outbox.Event) error {
	r.events = append(r.events, event)
	return nil
}

func (r *fakeOutboxRepo) SaveAll(ctx context.Context, events []*outbox.Event) error {
	r.events = append(r.events, events...)
	return nil
}

func (r *fakeOutboxRepo) FindUnpublished(ctx context.Context, limit int) ([]*outbox.Event, error) {
	var out []*outbox.Event
	for _, e := range r.events {
		if !e.IsPublished() {
			out = append(out, e)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeOutboxRepo) MarkPublished(ctx context.Context, eventID string) error {
	for _, e := range r.events {
		if e.ID == eventID {
			now := time.Now().UTC()
			e.PublishedAt = &now
		}
	}
	return nil
}

func (r *fakeOutboxRepo) IncrementRetry(ctx context.Context, eventID string, errorMsg string) error {
	for _, e := range r.events {
		if e.ID == eventID {
			e.RetryCount++
			e.LastError = errorMsg
		}
	}
	return nil
}

func (r *fakeOutboxRepo) eventTypes() []string {
	var types []string
	for _, e := range r.events {
		types = append(types, e.EventType)
	}
	return types
}

type fakeTransferRepo struct {
	transfers map[string]*domain.Transfer
}

func newFakeTransferRepo() *fakeTransferRepo {
	return &fakeTransferRepo{transfers: map[string]*domain.Transfer{}}
}

func (r *fakeTransferRepo) Save(ctx context.Context, t *domain.Transfer) error {
	r.transfers[t.ID] = t
	return nil
}

func (r *fakeTransferRepo) FindByID(ctx context.Context, id string) (*domain.Transfer, error) {
	return r.transfers[id], nil
}

type fakeOperatorRepo struct {
	operators map[string]*domain.Operator
}

func newFakeOperatorRepo(operators ...*domain.Operator) *fakeOperatorRepo {
	r := &fakeOperatorRepo{operators: map[string]*domain.Operator{}}
	for _, o := range operators {
		r.operators[o.ID] = o
	}
	return r
}

func (r *fakeOperatorRepo) FindByUsername(ctx context.Context, username string) (*domain.Operator, error) {
	for _, o := range r.operators {
		if o.Username == username {
			return o, nil
		}
	}
	return nil, nil
}

func (r *fakeOperatorRepo) FindByID(ctx context.Context, id string) (*domain.Operator, error) {
	return r.operators[id], nil
}

func (r *fakeOperatorRepo) Save(ctx context.Context, o *domain.Operator) error {
	r.operators[o.ID] = o
	return nil
}

func (r *fakeOperatorRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.operators)), nil
}

func testLogger() *logging.Logger {
	return logging.New(&logging.Config{
		Level:       logging.LevelError,
		ServiceName: "test",
		Output:      io.Discard,
	})
}

// world bundles the shared fixture state the engine tests operate on
type world struct {
	movements *fakeMovementRepo
	index     *fakeStockIndex
	products  *fakeProductRepo
	locations *fakeLocationRepo
	customers *fakeCustomerRepo
	purchases *fakePurchaseRepo
	sales     *fakeSaleRepo
	transfers *fakeTransferRepo
	counters  *fakeCounterRepo
	audit     *fakeAuditRepo
	outbox    *fakeOutboxRepo
	settings  domain.InventorySettings
	locker    *locks.KeyedLocker
}

func newWorld() *world {
	return &world{
		movements: &fakeMovementRepo{},
		index:     newFakeStockIndex(),
		products:  newFakeProductRepo(),
		locations: newFakeLocationRepo(),
		customers: newFakeCustomerRepo(),
		purchases: newFakePurchaseRepo(),
		sales:     newFakeSaleRepo(),
		transfers: newFakeTransferRepo(),
		counters:  newFakeCounterRepo(),
		audit:     &fakeAuditRepo{},
		outbox:    &fakeOutboxRepo{},
		settings:  domain.DefaultInventorySettings(),
		locker:    locks.NewKeyedLocker(),
	}
}

func (w *world) ledgerService() *LedgerService {
	return NewLedgerService(w.movements, w.index, w.products, w.locations, w.transfers, w.counters, w.audit, w.outbox,
		&fakeTxRunner{}, w.locker, w.settings, testLogger(), nil)
}

func (w *world) purchaseService() *PurchaseService {
	return NewPurchaseService(w.ledgerService(), w.purchases, w.products, w.counters, w.audit,
		&fakeTxRunner{}, w.locker, w.settings, testLogger(), nil)
}

func (w *world) salesService() *SalesService {
	return NewSalesService(w.ledgerService(), w.sales, w.customers, w.products, w.counters, w.audit,
		&fakeTxRunner{}, w.locker, w.settings, testLogger(), nil)
}

func (w *world) addProduct(id, sku string, currentStock, minimumStock int) *domain.Product {
	p := &domain.Product{
		ID:           id,
		SKU:          sku,
		Name:         "Product " + id,
		Unit:         "pcs",
		SellingPrice: 100,
		MinimumStock: minimumStock,
		CurrentStock: currentStock,
		StockStatus:  domain.ComputeStockStatus(currentStock, minimumStock),
		IsActive:     true,
	}
	w.products.products[id] = p
	return p
}

func (w *world) addLocation(id, code string) *domain.Location {
	l := &domain.Location{
		ID:       id,
		Code:     code,
		Name:     "Location " + id,
		Type:     domain.LocationTypeWarehouse,
		IsActive: true,
	}
	w.locations.locations[id] = l
	return l
}

func (w *world) addCustomer(id string, creditLimit, currentBalance float64, terms domain.PaymentTerms) *domain.Customer {
	c := &domain.Customer{
		ID:             id,
		Name:           "Customer " + id,
		PaymentTerms:   terms,
		CreditLimit:    creditLimit,
		CurrentBalance: currentBalance,
		IsActive:       true,
	}
	w.customers.customers[id] = c
	return c
}
