package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Product is a sellable menu entry and its stock level.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
	Stock     int             `json:"stock"`
	// Removed marks a tombstoned product kept only so historical orders resolve.
	Removed bool `json:"removed,omitempty"`
}

// ProductUpdate carries a partial product edit; nil fields are left untouched.
type ProductUpdate struct {
	Name  *string
	Price *decimal.Decimal
	Stock *int
}

// Catalog owns the set of products. It is not safe for concurrent use.
type Catalog struct {
	products map[string]*Product
	ids      []string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{products: make(map[string]*Product)}
}

// Add inserts a product. A tombstoned product with the same id is revived in place: historical line
// items keep pointing at the record, so they report the revived name, as they would after a rename.
func (c *Catalog) Add(p Product) error {
	if !ValidID(p.ID) {
		return ErrInvalidID
	}
	existing, ok := c.products[p.ID]
	if ok && !existing.Removed {
		return fmt.Errorf("%w: product %q", ErrDuplicateID, p.ID)
	}
	if blank(p.Name) {
		return ErrEmptyName
	}
	if err := ValidatePrice(p.Price); err != nil {
		return err
	}
	if p.Stock < 0 {
		return ErrInvalidStock
	}

	p.Removed = false
	if ok {
		*existing = p
		return nil
	}

	stored := p
	c.products[p.ID] = &stored
	c.ids = append(c.ids, p.ID)
	return nil
}

// Remove tombstones a product: it becomes unavailable with no stock and disappears from listings.
func (c *Catalog) Remove(id string) error {
	p, err := c.Lookup(id)
	if err != nil {
		return err
	}
	p.Removed = true
	p.Available = false
	p.Stock = 0
	return nil
}

// UpdateInfo applies a partial edit after validating every provided field.
func (c *Catalog) UpdateInfo(id string, update ProductUpdate) error {
	p, err := c.Lookup(id)
	if err != nil {
		return err
	}
	if update.Name != nil && blank(*update.Name) {
		return ErrEmptyName
	}
	if update.Price != nil {
		if err := ValidatePrice(*update.Price); err != nil {
			return err
		}
	}
	if update.Stock != nil && *update.Stock < 0 {
		return ErrInvalidStock
	}

	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Price != nil {
		p.Price = *update.Price
	}
	if update.Stock != nil {
		p.Stock = *update.Stock
	}
	return nil
}

// SetAvailability flips the availability flag without touching stock.
func (c *Catalog) SetAvailability(id string, available bool) error {
	p, err := c.Lookup(id)
	if err != nil {
		return err
	}
	p.Available = available
	return nil
}

// AdjustStock moves stock by delta and returns the new level. Negative results are rejected.
func (c *Catalog) AdjustStock(id string, delta int) (int, error) {
	p, err := c.Lookup(id)
	if err != nil {
		return 0, err
	}
	if p.Stock+delta < 0 {
		return p.Stock, &StockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Available:   p.Stock,
			Requested:   -delta,
		}
	}
	p.Stock += delta
	return p.Stock, nil
}

// Lookup returns the live product with the given id.
func (c *Catalog) Lookup(id string) (*Product, error) {
	p, ok := c.products[id]
	if !ok || p.Removed {
		return nil, fmt.Errorf("%w: %q", ErrProductNotFound, id)
	}
	return p, nil
}

// Resolve returns any product record, tombstoned or not.
func (c *Catalog) Resolve(id string) (*Product, bool) {
	p, ok := c.products[id]
	return p, ok
}

// Products returns copies of the live products in insertion order.
func (c *Catalog) Products() []Product {
	out := make([]Product, 0, len(c.ids))
	for _, id := range c.ids {
		if p := c.products[id]; !p.Removed {
			out = append(out, *p)
		}
	}
	return out
}

// Records returns copies of every product, tombstones included, in insertion order.
func (c *Catalog) Records() []Product {
	out := make([]Product, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, *c.products[id])
	}
	return out
}

// Restore inserts a persisted product record without the add-time checks on tombstones.
func (c *Catalog) Restore(p Product) error {
	if _, ok := c.products[p.ID]; ok {
		return fmt.Errorf("%w: product %q", ErrDuplicateID, p.ID)
	}
	if !ValidID(p.ID) {
		return ErrInvalidID
	}
	if p.Stock < 0 {
		return ErrInvalidStock
	}
	stored := p
	c.products[p.ID] = &stored
	c.ids = append(c.ids, p.ID)
	return nil
}
