package commands

import "github.com/dejobratic/snackbar/internal/pos/domain"

type RegisterCustomer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (c RegisterCustomer) Validate() error {
	if err := required(c.ID, "id"); err != nil {
		return err
	}
	return required(c.Phone, "phone")
}

func (c RegisterCustomer) Customer() domain.Customer {
	return domain.Customer{ID: c.ID, Name: c.Name, Phone: c.Phone, Address: c.Address}
}

type UpdateCustomer struct {
	CustomerID string  `json:"-"`
	Name       *string `json:"name"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
}

func (c UpdateCustomer) Validate() error {
	return required(c.CustomerID, "customer_id")
}

func (c UpdateCustomer) Update() domain.CustomerUpdate {
	return domain.CustomerUpdate{Name: c.Name, Phone: c.Phone, Address: c.Address}
}
