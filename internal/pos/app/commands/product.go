package commands

import "github.com/dejobratic/snackbar/internal/pos/domain"

// AddProduct registers a new menu item. Price is carried as text so no precision is lost in transit.
type AddProduct struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Stock     int    `json:"stock"`
	Available *bool  `json:"available"`
}

func (c AddProduct) Validate() error {
	if err := required(c.ID, "id"); err != nil {
		return err
	}
	if err := required(c.Price, "price"); err != nil {
		return err
	}
	_, err := parsePrice(c.Price)
	return err
}

// Product converts the command into a domain product. Products are available unless stated otherwise.
func (c AddProduct) Product() (domain.Product, error) {
	price, err := parsePrice(c.Price)
	if err != nil {
		return domain.Product{}, err
	}
	available := true
	if c.Available != nil {
		available = *c.Available
	}
	return domain.Product{
		ID:        c.ID,
		Name:      c.Name,
		Price:     price,
		Available: available,
		Stock:     c.Stock,
	}, nil
}

// UpdateProduct edits a product; omitted fields are left untouched.
type UpdateProduct struct {
	ProductID string  `json:"-"`
	Name      *string `json:"name"`
	Price     *string `json:"price"`
	Stock     *int    `json:"stock"`
}

func (c UpdateProduct) Validate() error {
	if err := required(c.ProductID, "product_id"); err != nil {
		return err
	}
	if c.Price != nil {
		if _, err := parsePrice(*c.Price); err != nil {
			return err
		}
	}
	return nil
}

func (c UpdateProduct) Update() (domain.ProductUpdate, error) {
	update := domain.ProductUpdate{Name: c.Name, Stock: c.Stock}
	if c.Price != nil {
		price, err := parsePrice(*c.Price)
		if err != nil {
			return domain.ProductUpdate{}, err
		}
		update.Price = &price
	}
	return update, nil
}

type SetAvailability struct {
	ProductID string `json:"-"`
	Available bool   `json:"available"`
}

func (c SetAvailability) Validate() error {
	return required(c.ProductID, "product_id")
}

// AdjustStock moves a product's stock by Delta: positive to restock, negative to write off.
type AdjustStock struct {
	ProductID string `json:"-"`
	Delta     int    `json:"delta"`
}

func (c AdjustStock) Validate() error {
	if err := required(c.ProductID, "product_id"); err != nil {
		return err
	}
	if c.Delta == 0 {
		return invalid("delta must not be zero")
	}
	return nil
}
