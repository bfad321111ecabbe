package domain

import "fmt"

// Customer is a registered buyer.
type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

// CustomerUpdate carries a partial customer edit; nil fields are left untouched.
type CustomerUpdate struct {
	Name    *string
	Phone   *string
	Address *string
}

// Directory owns the registered customers. It is not safe for concurrent use.
type Directory struct {
	customers map[string]*Customer
	ids       []string
}

func NewDirectory() *Directory {
	return &Directory{customers: make(map[string]*Customer)}
}

// Register validates and inserts a new customer.
func (d *Directory) Register(c Customer) error {
	if !ValidID(c.ID) {
		return ErrInvalidID
	}
	if _, ok := d.customers[c.ID]; ok {
		return fmt.Errorf("%w: customer %q", ErrDuplicateID, c.ID)
	}
	if blank(c.Name) {
		return ErrEmptyName
	}
	if !ValidPhone(c.Phone) {
		return ErrInvalidPhone
	}

	stored := c
	d.customers[c.ID] = &stored
	d.ids = append(d.ids, c.ID)
	return nil
}

// UpdateInfo applies a partial edit. The id never changes.
func (d *Directory) UpdateInfo(id string, update CustomerUpdate) error {
	c, ok := d.customers[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrCustomerNotFound, id)
	}
	if update.Name != nil && blank(*update.Name) {
		return ErrEmptyName
	}
	if update.Phone != nil && !ValidPhone(*update.Phone) {
		return ErrInvalidPhone
	}

	if update.Name != nil {
		c.Name = *update.Name
	}
	if update.Phone != nil {
		c.Phone = *update.Phone
	}
	if update.Address != nil {
		c.Address = *update.Address
	}
	return nil
}

// Lookup returns a copy of the customer with the given id.
func (d *Directory) Lookup(id string) (Customer, error) {
	c, ok := d.customers[id]
	if !ok {
		return Customer{}, fmt.Errorf("%w: %q", ErrCustomerNotFound, id)
	}
	return *c, nil
}

// Exists reports whether a customer is registered under id.
func (d *Directory) Exists(id string) bool {
	_, ok := d.customers[id]
	return ok
}

// Customers returns copies of every customer in registration order.
func (d *Directory) Customers() []Customer {
	out := make([]Customer, 0, len(d.ids))
	for _, id := range d.ids {
		out = append(out, *d.customers[id])
	}
	return out
}
