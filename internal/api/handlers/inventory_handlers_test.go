package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/peterkyalo/stock-inventory-sub002/internal/application"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/errors"
)

type mockLedgerService struct {
	appendMovementFn   func(ctx context.Context, cmd application.AppendMovementCommand) (*application.MovementDTO, error)
	listMovementsFn    func(ctx context.Context, query application.ListMovementsQuery) (*application.MovementListDTO, error)
	movementSummaryFn  func(ctx context.Context, query application.MovementSummaryQuery) (*application.MovementSummaryDTO, error)
	transferFn         func(ctx context.Context, cmd application.TransferCommand) (*application.TransferDTO, error)
	productLocationsFn func(ctx context.Context, productID string) (*application.ProductLocationsDTO, error)
	locationStockFn    func(ctx context.Context, locationID string) (*application.LocationInventoryDTO, error)
}

func (m *mockLedgerService) AppendMovement(ctx context.Context, cmd application.AppendMovementCommand) (*application.MovementDTO, error) {
	if m.appendMovementFn == nil {
		panic("AppendMovement not implemented")
	}
	return m.appendMovementFn(ctx, cmd)
}

func (m *mockLedgerService) ListMovements(ctx context.Context, query application.ListMovementsQuery) (*application.MovementListDTO, error) {
	if m.listMovementsFn == nil {
		panic("ListMovements not implemented")
	}
	return m.listMovementsFn(ctx, query)
}

func (m *mockLedgerService) MovementSummary(ctx context.Context, query application.MovementSummaryQuery) (*application.MovementSummaryDTO, error) {
	if m.movementSummaryFn == nil {
		panic("MovementSummary not implemented")
	}
	return m.movementSummaryFn(ctx, query)
}

func (m *mockLedgerService) Transfer(ctx context.Context, cmd application.TransferCommand) (*application.TransferDTO, error) {
	if m.transferFn == nil {
		panic("Transfer not implemented")
	}
	return m.transferFn(ctx, cmd)
}

func (m *mockLedgerService) ProductLocations(ctx context.Context, productID string) (*application.ProductLocationsDTO, error) {
	if m.productLocationsFn == nil {
		panic("ProductLocations not implemented")
	}
	return m.productLocationsFn(ctx, productID)
}

func (m *mockLedgerService) LocationStock(ctx context.Context, locationID string) (*application.LocationInventoryDTO, error) {
	if m.locationStockFn == nil {
		panic("LocationStock not implemented")
	}
	return m.locationStockFn(ctx, locationID)
}

func newInventoryRouter(service LedgerService) *gin.Engine {
	return newTestRouter(func(router *gin.RouterGroup) {
		NewInventoryHandlers(service, testLogger()).RegisterRoutes(router)
	})
}

func TestInventoryHandlers_AppendMovement(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service := &mockLedgerService{
			appendMovementFn: func(ctx context.Context, cmd application.AppendMovementCommand) (*application.MovementDTO, error) {
				if cmd.ProductID != "prod-1" || cmd.Type != "in" || cmd.Reason != "purchase" {
					t.Fatalf("unexpected command: %+v", cmd)
				}
				return &application.MovementDTO{ID: "mov-1", Sequence: 1, ProductID: cmd.ProductID}, nil
			},
		}
		router := newInventoryRouter(service)
		body := `{"productId":"prod-1","type":"in","reason":"purchase","quantity":5,"locationTo":"loc-1","unitCost":2.5}`
		rec := performRequest(t, router, http.MethodPost, "/api/v1/inventory/movements", body)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"id":"mov-1"`) {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("invalid movement type", func(t *testing.T) {
		service := &mockLedgerService{}
		router := newInventoryRouter(service)
		body := `{"productId":"prod-1","type":"sideways","reason":"purchase","quantity":5}`
		rec := performRequest(t, router, http.MethodPost, "/api/v1/inventory/movements", body)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		service := &mockLedgerService{}
		router := newInventoryRouter(service)
		body := `{"productId":"prod-1","type":"in","reason":"purchase","quantity":0}`
		rec := performRequest(t, router, http.MethodPost, "/api/v1/inventory/movements", body)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("insufficient stock maps to conflict", func(t *testing.T) {
		service := &mockLedgerService{
			appendMovementFn: func(ctx context.Context, cmd application.AppendMovementCommand) (*application.MovementDTO, error) {
				return nil, errors.ErrInsufficientStock("stock below requested quantity")
			},
		}
		router := newInventoryRouter(service)
		body := `{"productId":"prod-1","type":"out","reason":"sale","quantity":500,"locationFrom":"loc-1"}`
		rec := performRequest(t, router, http.MethodPost, "/api/v1/inventory/movements", body)

		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "INSUFFICIENT_STOCK") {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})
}

func TestInventoryHandlers_ListMovements(t *testing.T) {
	t.Run("passes filters and pagination", func(t *testing.T) {
		service := &mockLedgerService{
			listMovementsFn: func(ctx context.Context, query application.ListMovementsQuery) (*application.MovementListDTO, error) {
				if query.ProductID != "prod-1" || query.Type != "out" {
					t.Fatalf("unexpected query: %+v", query)
				}
				if query.Page != 2 || query.PageSize != 10 {
					t.Fatalf("pagination = %d/%d", query.Page, query.PageSize)
				}
				return &application.MovementListDTO{Movements: []application.MovementDTO{}, Total: 0, Page: 2, PageSize: 10}, nil
			},
		}
		router := newInventoryRouter(service)
		rec := performRequest(t, router, http.MethodGet, "/api/v1/inventory/movements?productId=prod-1&type=out&page=2&pageSize=10", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("bad from timestamp", func(t *testing.T) {
		service := &mockLedgerService{}
		router := newInventoryRouter(service)
		rec := performRequest(t, router, http.MethodGet, "/api/v1/inventory/movements?from=yesterday", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("defaults pagination", func(t *testing.T) {
		service := &mockLedgerService{
			listMovementsFn: func(ctx context.Context, query application.ListMovementsQuery) (*application.MovementListDTO, error) {
				if query.Page != 1 || query.PageSize != 50 {
					t.Fatalf("pagination = %d/%d", query.Page, query.PageSize)
				}
				return &application.MovementListDTO{}, nil
			},
		}
		router := newInventoryRouter(service)
		rec := performRequest(t, router, http.MethodGet, "/api/v1/inventory/movements", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestInventoryHandlers_MovementSummary(t *testing.T) {
	service := &mockLedgerService{
		movementSummaryFn: func(ctx context.Context, query application.MovementSummaryQuery) (*application.MovementSummaryDTO, error) {
			return &application.MovementSummaryDTO{TotalIn: 12, TotalOut: 4}, nil
		},
	}
	router := newInventoryRouter(service)
	rec := performRequest(t, router, http.MethodGet, "/api/v1/inventory/movements/summary", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"totalIn":12`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestInventoryHandlers_Transfer(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service := &mockLedgerService{
			transferFn: func(ctx context.Context, cmd application.TransferCommand) (*application.TransferDTO, error) {
				if cmd.FromLocation != "loc-1" || cmd.ToLocation != "loc-2" || cmd.Quantity != 3 {
					t.Fatalf("unexpected command: %+v", cmd)
				}
				return &application.TransferDTO{ID: "tr-1", ProductID: cmd.ProductID}, nil
			},
		}
		router := newInventoryRouter(service)
		body := `{"productId":"prod-1","fromLocation":"loc-1","toLocation":"loc-2","quantity":3}`
		rec := performRequest(t, router, http.MethodPost, "/api/v1/inventory/transfer", body)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("missing destination", func(t *testing.T) {
		service := &mockLedgerService{}
		router := newInventoryRouter(service)
		body := `{"productId":"prod-1","fromLocation":"loc-1","quantity":3}`
		rec := performRequest(t, router, http.MethodPost, "/api/v1/inventory/transfer", body)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestInventoryHandlers_ProductLocations(t *testing.T) {
	service := &mockLedgerService{
		productLocationsFn: func(ctx context.Context, productID string) (*application.ProductLocationsDTO, error) {
			if productID != "prod-9" {
				t.Fatalf("productID = %s", productID)
			}
			return &application.ProductLocationsDTO{ProductID: productID, CurrentStock: 7}, nil
		},
	}
	router := newInventoryRouter(service)
	rec := performRequest(t, router, http.MethodGet, "/api/v1/inventory/products/prod-9/locations", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"currentStock":7`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestInventoryHandlers_LocationStock(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		service := &mockLedgerService{
			locationStockFn: func(ctx context.Context, locationID string) (*application.LocationInventoryDTO, error) {
				return nil, errors.ErrNotFoundWithID("location", locationID)
			},
		}
		router := newInventoryRouter(service)
		rec := performRequest(t, router, http.MethodGet, "/api/v1/inventory/locations/nope/stock", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}
