package domain

import "time"

// PaymentTerms determines how many days after the sale date payment is due
type PaymentTerms string

const (
	TermsCash  PaymentTerms = "cash"
	TermsNet15 PaymentTerms = "net_15"
	TermsNet30 PaymentTerms = "net_30"
	TermsNet45 PaymentTerms = "net_45"
	TermsNet60 PaymentTerms = "net_60"
)

// IsValid checks if the payment terms value is valid
func (t PaymentTerms) IsValid() bool {
	switch t {
	case TermsCash, TermsNet15, TermsNet30, TermsNet45, TermsNet60:
		return true
	default:
		return false
	}
}

// DueDays returns the payment offset in days
func (t PaymentTerms) DueDays() int {
	switch t {
	case TermsNet15:
		return 15
	case TermsNet30:
		return 30
	case TermsNet45:
		return 45
	case TermsNet60:
		return 60
	default:
		return 0
	}
}

// CustomerGroup only affects default discounts, never posted sales
type CustomerGroup string

const (
	GroupRegular   CustomerGroup = "regular"
	GroupVIP       CustomerGroup = "vip"
	GroupWholesale CustomerGroup = "wholesale"
	GroupRetail    CustomerGroup = "retail"
)

// Customer carries the credit bookkeeping the sales engine maintains.
// CurrentBalance is the sum of unpaid portions over non-cancelled,
// non-returned sales.
type Customer struct {
	ID                 string        `bson:"_id" json:"id"`
	Name               string        `bson:"name" json:"name"`
	Email              string        `bson:"email,omitempty" json:"email,omitempty"`
	Phone              string        `bson:"phone,omitempty" json:"phone,omitempty"`
	PaymentTerms       PaymentTerms  `bson:"paymentTerms" json:"paymentTerms"`
	CreditLimit        float64       `bson:"creditLimit" json:"creditLimit"`
	CurrentBalance     float64       `bson:"currentBalance" json:"currentBalance"`
	DiscountPercentage float64       `bson:"discountPercentage" json:"discountPercentage"`
	CustomerGroup      CustomerGroup `bson:"customerGroup" json:"customerGroup"`
	TotalOrders        int           `bson:"totalOrders" json:"totalOrders"`
	TotalSalesAmount   float64       `bson:"totalSalesAmount" json:"totalSalesAmount"`
	IsActive           bool          `bson:"isActive" json:"isActive"`
	CreatedAt          time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// CheckCredit reports whether adding amount to the balance would breach
// the credit limit. A zero limit means unlimited credit.
func (c *Customer) CheckCredit(amount float64) error {
	if c.CreditLimit <= 0 {
		return nil
	}
	if c.CurrentBalance+amount > c.CreditLimit {
		return ErrCreditLimitExceeded
	}
	return nil
}

// DueDateFrom computes the payment due date for a sale date under the
// customer's terms
func (c *Customer) DueDateFrom(saleDate time.Time) time.Time {
	return saleDate.AddDate(0, 0, c.PaymentTerms.DueDays())
}
