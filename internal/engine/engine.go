// Package engine implements the purchase transaction engine: the atomic
// state transition across catalog, customer ledger, and sale log.
package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/retail-checkout-service/internal/catalog"
	"github.com/fairyhunter13/retail-checkout-service/internal/fault"
	"github.com/fairyhunter13/retail-checkout-service/internal/ledger"
	"github.com/fairyhunter13/retail-checkout-service/internal/model"
	"github.com/fairyhunter13/retail-checkout-service/internal/obs"
	"github.com/fairyhunter13/retail-checkout-service/internal/snapshot"
)

// ErrShuttingDown is returned for purchases arriving after intake closed.
var ErrShuttingDown = errors.New("shutting down")

// Receipt is the outcome of a successful purchase.
type Receipt struct {
	OrderID        string          `json:"order_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	LoyaltyPoints  decimal.Decimal `json:"loyalty_points"`
	Date           model.Date      `json:"date"`
	AlreadyApplied bool            `json:"already_applied,omitempty"`
}

// Metrics are the engine counters exposed for observability.
type Metrics struct {
	Accepted   uint64
	Rejected   uint64
	Aborted    uint64
	InFlight   int64
	SaleCount  uint64
	StockValue decimal.Decimal
}

// Engine owns the live catalog and ledger and commits purchases against
// them. One engine-wide lock serializes every mutation; a commit runs
// against clones and swaps them in only after the snapshot is durable, so
// the live state never holds an unpersisted mutation.
type Engine struct {
	mu        sync.RWMutex
	cat       *catalog.Catalog
	led       *ledger.Ledger
	employees []model.Employee
	gw        snapshot.Gateway

	closing  atomic.Bool
	inFlight atomic.Int64
	accepted atomic.Uint64
	rejected atomic.Uint64
	aborted  atomic.Uint64

	now func() time.Time
}

// New builds an Engine over a loaded snapshot and the gateway it will
// persist through.
func New(gw snapshot.Gateway, snap model.Snapshot) *Engine {
	return &Engine{
		cat:       catalog.New(snap.Goods),
		led:       ledger.New(snap.Customers, snap.Sales),
		employees: append([]model.Employee(nil), snap.Employees...),
		gw:        gw,
		now:       time.Now,
	}
}

// Purchase validates, prices, commits, and persists one cart. orderID may be
// empty for a fresh purchase; a caller retrying after an abort passes the
// orderID from the failed attempt so the commit stays idempotent.
//
// State walk: Validating -> Pricing -> Committing -> Persisting -> Succeeded.
// Validation and pricing failures reject without mutation; a persist failure
// aborts and leaves the live state at the last durable snapshot.
func (e *Engine) Purchase(ctx context.Context, cart model.Cart, orderID string) (Receipt, error) {
	const op = "engine.purchase"
	if e.closing.Load() {
		return Receipt{}, ErrShuttingDown
	}
	e.inFlight.Add(1)
	defer e.inFlight.Add(-1)

	e.mu.Lock()
	defer e.mu.Unlock()

	// Validating. The customer is resolved before any catalog access.
	cust, ok := e.led.FindCustomer(cart.CustomerID)
	if !ok {
		e.rejected.Add(1)
		return Receipt{}, fault.NotFound(op, "customer", cart.CustomerID)
	}
	if len(cart.Items) == 0 {
		e.rejected.Add(1)
		return Receipt{}, fault.Validationf(op, "cart is empty")
	}
	for _, it := range cart.Items {
		if it.Quantity <= 0 {
			e.rejected.Add(1)
			return Receipt{}, fault.Validationf(op, "quantity for %q must be > 0", it.Name)
		}
	}
	if orderID != "" {
		if rec, found := orderRecord(cust, orderID); found {
			// Retry of a commit that already persisted. Nothing to apply;
			// the receipt carries the recorded sale's date, not today's.
			date := model.NewDate(e.now())
			if sale, ok := e.led.SaleByOrderID(orderID); ok {
				date = sale.Date
			}
			return Receipt{
				OrderID:        orderID,
				TotalAmount:    rec.TotalAmount,
				LoyaltyPoints:  cust.LoyaltyPoints,
				Date:           date,
				AlreadyApplied: true,
			}, nil
		}
	} else {
		orderID = e.led.NewOrderID()
	}

	// Pricing. Submitted prices are never trusted; the catalog re-prices.
	priced, err := e.cat.Reserve(cart.Items)
	if err != nil {
		e.rejected.Add(1)
		return Receipt{}, err
	}
	total := decimal.Zero
	for _, li := range priced {
		total = total.Add(li.Price.Mul(decimal.NewFromInt(li.Quantity)))
	}

	// Committing, against working copies so a failure discards everything.
	wcat := e.cat.Clone()
	wled := e.led.Clone()
	if err := wcat.CommitReserve(cart.Items); err != nil {
		obs.Logger.Error("commit_invariant_breach", "error", err)
		e.rejected.Add(1)
		return Receipt{}, err
	}
	updated, err := wled.Accrue(cart.CustomerID, total, orderID)
	if err != nil {
		e.rejected.Add(1)
		return Receipt{}, err
	}
	sale := model.Sale{
		Date:        model.NewDate(e.now()),
		OrderID:     orderID,
		CustomerID:  cart.CustomerID,
		Items:       priced,
		TotalAmount: total,
	}
	wled.AppendSale(sale)

	// Persisting, the one phase allowed to block on IO or cancellation.
	if err := e.gw.Save(ctx, assemble(wcat, wled, e.employees)); err != nil {
		e.aborted.Add(1)
		return Receipt{}, err
	}
	e.cat, e.led = wcat, wled
	e.accepted.Add(1)

	return Receipt{
		OrderID:       orderID,
		TotalAmount:   total,
		LoyaltyPoints: updated.LoyaltyPoints,
		Date:          sale.Date,
	}, nil
}

func orderRecord(c model.Customer, orderID string) (model.OrderRecord, bool) {
	for _, o := range c.Orders {
		if o.OrderID == orderID {
			return o, true
		}
	}
	return model.OrderRecord{}, false
}

// AddGood inserts or replaces a catalog entry and persists the result.
func (e *Engine) AddGood(ctx context.Context, g model.Good) error {
	return e.mutateCatalog(ctx, func(c *catalog.Catalog) error { return c.Add(g) })
}

// RemoveGood deletes a catalog entry and persists the result.
func (e *Engine) RemoveGood(ctx context.Context, name string) error {
	return e.mutateCatalog(ctx, func(c *catalog.Catalog) error { return c.Remove(name) })
}

func (e *Engine) mutateCatalog(ctx context.Context, fn func(*catalog.Catalog) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	wcat := e.cat.Clone()
	if err := fn(wcat); err != nil {
		return err
	}
	if err := e.gw.Save(ctx, assemble(wcat, e.led, e.employees)); err != nil {
		return err
	}
	e.cat = wcat
	return nil
}

func assemble(c *catalog.Catalog, l *ledger.Ledger, emps []model.Employee) model.Snapshot {
	return model.Snapshot{
		Goods:     c.Goods(),
		Employees: emps,
		Customers: l.Customers(),
		Sales:     l.Sales(),
	}
}

// Goods returns the current catalog contents.
func (e *Engine) Goods() []model.Good {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cat.Goods()
}

// FindGood looks up one catalog entry by name.
func (e *Engine) FindGood(name string) (model.Good, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cat.FindByName(name)
}

// Customers returns all customers.
func (e *Engine) Customers() []model.Customer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.led.Customers()
}

// FindCustomer looks up one customer by id.
func (e *Engine) FindCustomer(id string) (model.Customer, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.led.FindCustomer(id)
}

// Sales returns the sale log in append order.
func (e *Engine) Sales() []model.Sale {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.led.Sales()
}

// CloseIntake rejects purchases from now on. In-flight purchases finish.
func (e *Engine) CloseIntake() { e.closing.Store(true) }

// IsShuttingDown reports whether intake has been closed.
func (e *Engine) IsShuttingDown() bool { return e.closing.Load() }

// InFlight returns the number of purchases currently executing.
func (e *Engine) InFlight() int64 { return e.inFlight.Load() }

// DrainUntil blocks until no purchase is in flight or ctx is done.
func (e *Engine) DrainUntil(ctx context.Context) bool {
	for {
		if e.inFlight.Load() == 0 {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// Snapshot assembles the current live state.
func (e *Engine) Snapshot() model.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return assemble(e.cat, e.led, e.employees)
}

// EngineMetrics returns the counters for the metrics endpoint.
func (e *Engine) EngineMetrics() Metrics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Metrics{
		Accepted:   e.accepted.Load(),
		Rejected:   e.rejected.Load(),
		Aborted:    e.aborted.Load(),
		InFlight:   e.inFlight.Load(),
		SaleCount:  e.led.SaleCount(),
		StockValue: e.cat.TotalStockValue(),
	}
}
