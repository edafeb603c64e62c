package application

import (
	"github.com/peterkyalo/stock-inventory-sub002/internal/domain"
)

// ToMovementDTO converts a ledger entry to its DTO
func ToMovementDTO(m *domain.StockMovement) *MovementDTO {
	return &MovementDTO{
		ID:           m.ID,
		Sequence:     m.Sequence,
		ProductID:    m.ProductID,
		Type:         string(m.Type),
		Reason:       string(m.Reason),
		Quantity:     m.Quantity,
		LocationFrom: m.LocationFrom,
		LocationTo:   m.LocationTo,
		SourceRef:    m.SourceRef,
		UnitCost:     m.UnitCost,
		OperatorID:   m.OperatorID,
		Notes:        m.Notes,
		CreatedAt:    m.CreatedAt,
	}
}

// ToMovementDTOs converts a slice of ledger entries
func ToMovementDTOs(movements []*domain.StockMovement) []MovementDTO {
	dtos := make([]MovementDTO, len(movements))
	for i, m := range movements {
		dtos[i] = *ToMovementDTO(m)
	}
	return dtos
}

// ToTransferDTO converts a transfer record to its DTO
func ToTransferDTO(t *domain.Transfer) *TransferDTO {
	return &TransferDTO{
		ID:           t.ID,
		ProductID:    t.ProductID,
		FromLocation: t.FromLocation,
		ToLocation:   t.ToLocation,
		Quantity:     t.Quantity,
		MovementID:   t.MovementID,
		OperatorID:   t.OperatorID,
		CreatedAt:    t.CreatedAt,
	}
}

// ToPurchaseDTO converts a purchase aggregate to its DTO
func ToPurchaseDTO(p *domain.Purchase) *PurchaseDTO {
	items := make([]PurchaseItemDTO, len(p.Items))
	for i, item := range p.Items {
		items[i] = PurchaseItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			OrderedQty:  item.OrderedQty,
			ReceivedQty: item.ReceivedQty,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
			Tax:         item.Tax,
		}
	}

	return &PurchaseDTO{
		ID:                  p.ID,
		PurchaseOrderNumber: p.PurchaseOrderNumber,
		SupplierID:          p.SupplierID,
		Items:               items,
		Status:              string(p.Status),
		PaymentStatus:       string(p.PaymentStatus),
		PaymentMethod:       p.PaymentMethod,
		ShippingCost:        p.ShippingCost,
		Subtotal:            p.Subtotal,
		TaxTotal:            p.TaxTotal,
		GrandTotal:          p.GrandTotal,
		ReceivingLocationID: p.ReceivingLocationID,
		OrderDate:           p.OrderDate,
		ExpectedDate:        p.ExpectedDate,
		ReceivedDate:        p.ReceivedDate,
		OperatorID:          p.OperatorID,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

// ToPurchaseDTOs converts a slice of purchases
func ToPurchaseDTOs(purchases []*domain.Purchase) []PurchaseDTO {
	dtos := make([]PurchaseDTO, len(purchases))
	for i, p := range purchases {
		dtos[i] = *ToPurchaseDTO(p)
	}
	return dtos
}

// ToSaleDTO converts a sale aggregate to its DTO
func ToSaleDTO(s *domain.Sale) *SaleDTO {
	items := make([]SaleItemDTO, len(s.Items))
	for i, item := range s.Items {
		items[i] = SaleItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			Tax:       item.Tax,
		}
	}

	return &SaleDTO{
		ID:                 s.ID,
		InvoiceNumber:      s.InvoiceNumber,
		CustomerID:         s.CustomerID,
		Items:              items,
		Status:             string(s.Status),
		PaymentStatus:      string(s.PaymentStatus),
		PaymentMethod:      s.PaymentMethod,
		ShippingCost:       s.ShippingCost,
		Subtotal:           s.Subtotal,
		TaxTotal:           s.TaxTotal,
		DiscountTotal:      s.DiscountTotal,
		GrandTotal:         s.GrandTotal,
		PaidAmount:         s.PaidAmount,
		ShippingLocationID: s.ShippingLocationID,
		SaleDate:           s.SaleDate,
		DueDate:            s.DueDate,
		OperatorID:         s.OperatorID,
		SalesPersonID:      s.SalesPersonID,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

// ToSaleDTOs converts a slice of sales
func ToSaleDTOs(sales []*domain.Sale) []SaleDTO {
	dtos := make([]SaleDTO, len(sales))
	for i, s := range sales {
		dtos[i] = *ToSaleDTO(s)
	}
	return dtos
}

// ToLocationStockDTOs converts index entries for one location
func ToLocationStockDTOs(levels []*domain.StockLevel) []LocationStockDTO {
	dtos := make([]LocationStockDTO, len(levels))
	for i, level := range levels {
		dtos[i] = LocationStockDTO{
			LocationID: level.LocationID,
			ProductID:  level.ProductID,
			Quantity:   level.Quantity,
		}
	}
	return dtos
}
