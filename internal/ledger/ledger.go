// Package ledger implements the aggregate owning customers and the
// append-only sale log.
package ledger

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/retail-checkout-service/internal/fault"
	"github.com/fairyhunter13/retail-checkout-service/internal/model"
)

// Ledger holds customers keyed by id plus the ordered sale log. Like the
// catalog it is lock-free; the transaction engine serializes access.
type Ledger struct {
	customers map[string]model.Customer
	sales     []model.Sale
	seq       *Sequencer
}

// New builds a Ledger from a snapshot's customers and sales.
func New(customers []model.Customer, sales []model.Sale) *Ledger {
	l := &Ledger{
		customers: make(map[string]model.Customer, len(customers)),
		sales:     append([]model.Sale(nil), sales...),
		seq:       &Sequencer{},
	}
	for _, c := range customers {
		l.customers[c.ID] = c
	}
	for _, s := range sales {
		l.seq.Seed(s.Sequence)
	}
	return l
}

// FindCustomer looks up a customer by id.
func (l *Ledger) FindCustomer(id string) (model.Customer, bool) {
	c, ok := l.customers[id]
	return c, ok
}

// HasOrder reports whether the customer already holds an order with the
// given id. Used to detect retried commits.
func (l *Ledger) HasOrder(customerID, orderID string) bool {
	c, ok := l.customers[customerID]
	if !ok {
		return false
	}
	for _, o := range c.Orders {
		if o.OrderID == orderID {
			return true
		}
	}
	return false
}

// Accrue appends an OrderRecord and adds amount to the customer's loyalty
// points. An orderID the customer already holds is a no-op, so a retried
// commit cannot double-apply.
func (l *Ledger) Accrue(customerID string, amount decimal.Decimal, orderID string) (model.Customer, error) {
	const op = "ledger.accrue"
	c, ok := l.customers[customerID]
	if !ok {
		return model.Customer{}, fault.NotFound(op, "customer", customerID)
	}
	if amount.IsNegative() {
		return model.Customer{}, fault.Validationf(op, "amount must be >= 0")
	}
	if l.HasOrder(customerID, orderID) {
		return c, nil
	}
	c.Orders = append(append([]model.OrderRecord(nil), c.Orders...), model.OrderRecord{OrderID: orderID, TotalAmount: amount})
	c.LoyaltyPoints = c.LoyaltyPoints.Add(amount)
	l.customers[customerID] = c
	return c, nil
}

// AppendSale stamps the sale with the next sequence number and appends it to
// the log. Sales are never mutated or removed.
func (l *Ledger) AppendSale(sale model.Sale) {
	sale.Sequence = l.seq.Next()
	l.sales = append(l.sales, sale)
}

// SaleByOrderID finds the committed sale for an order, for retry receipts.
func (l *Ledger) SaleByOrderID(orderID string) (model.Sale, bool) {
	for i := len(l.sales) - 1; i >= 0; i-- {
		if l.sales[i].OrderID == orderID {
			return l.sales[i], true
		}
	}
	return model.Sale{}, false
}

// NewOrderID issues a fresh order identifier for one transaction attempt.
func (l *Ledger) NewOrderID() string { return uuid.NewString() }

// Customers returns all customers sorted by id.
func (l *Ledger) Customers() []model.Customer {
	out := make([]model.Customer, 0, len(l.customers))
	for _, c := range l.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Sales returns the sale log in append order.
func (l *Ledger) Sales() []model.Sale {
	return append([]model.Sale(nil), l.sales...)
}

// SaleCount returns the number of recorded sales.
func (l *Ledger) SaleCount() uint64 { return uint64(len(l.sales)) }

// Clone returns an independent copy for all-or-nothing commits. Order slices
// are copied on write in Accrue, so a shallow customer copy is enough. The
// sequencer is copied too: a discarded clone must not advance the live
// counter, or committed sales would skip sequence numbers.
func (l *Ledger) Clone() *Ledger {
	seq := &Sequencer{}
	seq.Seed(l.seq.Current())
	cp := &Ledger{
		customers: make(map[string]model.Customer, len(l.customers)),
		sales:     append([]model.Sale(nil), l.sales...),
		seq:       seq,
	}
	for k, v := range l.customers {
		cp.customers[k] = v
	}
	return cp
}
