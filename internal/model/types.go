// Package model defines domain types used by the service.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Good is a catalog entry. Name is the unique key; Quantity is never negative.
type Good struct {
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Employee is a payroll record carried in the snapshot. The service never
// interprets it beyond load and save.
type Employee struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Password string          `json:"password"`
	Salary   decimal.Decimal `json:"salary"`
}

// OrderRecord is one completed purchase belonging to a customer.
// Written once, never mutated.
type OrderRecord struct {
	OrderID     string          `json:"order_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Customer holds the loyalty accumulator and the order history.
// Invariant: LoyaltyPoints equals the sum of TotalAmount over Orders.
type Customer struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	LoyaltyPoints decimal.Decimal `json:"loyalty_points"`
	Orders        []OrderRecord   `json:"orders"`
}

// CartItem is a requested line item. Ephemeral; owned by the calling session.
type CartItem struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// Cart is the input to a purchase: a customer and the items they want.
type Cart struct {
	CustomerID string     `json:"customer_id"`
	Items      []CartItem `json:"items"`
}

// SaleItem is a cart line snapshotted with the catalog price charged for it.
type SaleItem struct {
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Sale is one committed purchase in the append-only sale log. Sequence is
// assigned by the ledger in append order and never reused.
type Sale struct {
	Sequence    uint64          `json:"sequence"`
	Date        Date            `json:"date"`
	OrderID     string          `json:"order_id"`
	CustomerID  string          `json:"customer_id"`
	Items       []SaleItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Snapshot is the full persisted state of the store.
type Snapshot struct {
	Goods     []Good     `json:"goods"`
	Employees []Employee `json:"employees"`
	Customers []Customer `json:"customers"`
	Sales     []Sale     `json:"sales"`
}

// Date serializes a calendar day as "YYYY-MM-DD", the only time format the
// snapshot schema carries.
type Date struct{ time.Time }

const dateLayout = "2006-01-02"

// NewDate truncates t to its calendar day in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		b = b[1 : len(b)-1]
	}
	t, err := time.Parse(dateLayout, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) String() string { return d.Format(dateLayout) }
