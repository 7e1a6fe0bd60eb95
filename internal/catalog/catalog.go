// Package catalog implements the aggregate owning goods, their stock
// quantities, and their prices.
package catalog

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/retail-checkout-service/internal/fault"
	"github.com/fairyhunter13/retail-checkout-service/internal/model"
)

// Catalog holds goods keyed by name. It carries no lock of its own: the
// transaction engine serializes all access, including the gap between
// Reserve and CommitReserve.
type Catalog struct {
	goods map[string]model.Good
}

// New builds a Catalog from a snapshot's goods list. Later entries with a
// duplicate name replace earlier ones.
func New(goods []model.Good) *Catalog {
	c := &Catalog{goods: make(map[string]model.Good, len(goods))}
	for _, g := range goods {
		c.goods[g.Name] = g
	}
	return c
}

// FindByName looks up a good by its unique name.
func (c *Catalog) FindByName(name string) (model.Good, bool) {
	g, ok := c.goods[name]
	return g, ok
}

// mergeLines sums quantities of repeated names so a cart listing the same
// item twice cannot pass validation as two independent reservations.
func mergeLines(items []model.CartItem) []model.CartItem {
	idx := make(map[string]int, len(items))
	merged := make([]model.CartItem, 0, len(items))
	for _, it := range items {
		if i, ok := idx[it.Name]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		idx[it.Name] = len(merged)
		merged = append(merged, it)
	}
	return merged
}

// Reserve validates the entire cart against current stock and returns the
// priced line items. Nothing is mutated: either every line is satisfiable or
// the whole cart is rejected.
func (c *Catalog) Reserve(items []model.CartItem) ([]model.SaleItem, error) {
	const op = "catalog.reserve"
	merged := mergeLines(items)
	priced := make([]model.SaleItem, 0, len(merged))
	for _, it := range merged {
		g, ok := c.goods[it.Name]
		if !ok {
			return nil, fault.NotFound(op, "item", it.Name)
		}
		if g.Quantity < it.Quantity {
			return nil, fault.InsufficientStock(op, it.Name, it.Quantity, g.Quantity)
		}
		priced = append(priced, model.SaleItem{Name: it.Name, Quantity: it.Quantity, Price: g.Price})
	}
	return priced, nil
}

// CommitReserve deducts the reserved quantities. It must follow a successful
// Reserve with no interleaved commit; a shortfall here means that discipline
// was broken.
func (c *Catalog) CommitReserve(items []model.CartItem) error {
	const op = "catalog.commit_reserve"
	for _, it := range mergeLines(items) {
		g, ok := c.goods[it.Name]
		if !ok {
			return fault.Conflict(op, "item %q vanished between reserve and commit", it.Name)
		}
		if g.Quantity < it.Quantity {
			return fault.Conflict(op, "stock for %q moved between reserve and commit", it.Name)
		}
		g.Quantity -= it.Quantity
		c.goods[it.Name] = g
	}
	return nil
}

// Add inserts a good or replaces the entry with the same name.
func (c *Catalog) Add(g model.Good) error {
	const op = "catalog.add"
	if g.Name == "" {
		return fault.Validationf(op, "name is required")
	}
	if g.Quantity < 0 {
		return fault.Validationf(op, "quantity must be >= 0")
	}
	if g.Price.IsNegative() {
		return fault.Validationf(op, "price must be >= 0")
	}
	c.goods[g.Name] = g
	return nil
}

// Remove deletes a good by name.
func (c *Catalog) Remove(name string) error {
	if _, ok := c.goods[name]; !ok {
		return fault.NotFound("catalog.remove", "item", name)
	}
	delete(c.goods, name)
	return nil
}

// Goods returns all goods sorted by name.
func (c *Catalog) Goods() []model.Good {
	out := make([]model.Good, 0, len(c.goods))
	for _, g := range c.goods {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Clone returns an independent copy for all-or-nothing commits.
func (c *Catalog) Clone() *Catalog {
	cp := &Catalog{goods: make(map[string]model.Good, len(c.goods))}
	for k, v := range c.goods {
		cp.goods[k] = v
	}
	return cp
}

// TotalStockValue sums quantity times price over the catalog.
func (c *Catalog) TotalStockValue() decimal.Decimal {
	total := decimal.Zero
	for _, g := range c.goods {
		total = total.Add(g.Price.Mul(decimal.NewFromInt(g.Quantity)))
	}
	return total
}
