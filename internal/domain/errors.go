package domain

import "errors"

// Stock ledger errors
var (
	ErrInvalidMovementType   = errors.New("invalid movement type")
	ErrInvalidMovementReason = errors.New("invalid movement reason")
	ErrInvalidMovementShape  = errors.New("movement locations do not match movement type")
	ErrInvalidQuantity       = errors.New("quantity must be at least 1")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrUnknownProduct        = errors.New("product not found")
	ErrUnknownLocation       = errors.New("location not found")
	ErrInactiveLocation      = errors.New("location is not active")
	ErrSameLocation          = errors.New("source and destination locations must differ")
	ErrCapacityExceeded      = errors.New("location capacity exceeded")
)

// Order errors
var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrPurchaseNotReceivable   = errors.New("purchase is not in a receivable status")
	ErrReceiveExceedsOrdered   = errors.New("received quantity exceeds ordered quantity")
	ErrPurchaseHasLedgerEntries = errors.New("purchase has posted ledger entries")
	ErrPurchaseItemNotFound    = errors.New("purchase item not found")
	ErrNoItems                 = errors.New("order must have at least one item")
	ErrSaleNotDraft            = errors.New("sale can only be updated in draft status")
	ErrPurchaseNotEditable     = errors.New("purchase can only be updated in draft or pending status")
	ErrCreditLimitExceeded     = errors.New("customer credit limit exceeded")
	ErrInvalidPaymentStatus    = errors.New("invalid payment status")
	ErrInvalidPaymentTerms     = errors.New("invalid payment terms")
	ErrUnknownCustomer         = errors.New("customer not found")
)

// Catalog errors
var (
	ErrInvalidSKU         = errors.New("sku must match [A-Za-z0-9_-]+")
	ErrInvalidPrice       = errors.New("price cannot be negative")
	ErrInvalidLocationCode = errors.New("location code must be uppercase alphanumeric with hyphens")
	ErrInvalidLocationType = errors.New("invalid location type")
)

// Operator errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOperatorInactive   = errors.New("operator account is inactive")
)
