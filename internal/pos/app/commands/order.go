package commands

import "github.com/dejobratic/snackbar/internal/pos/domain"

type CreateOrder struct {
	CustomerID string `json:"customer_id"`
}

func (c CreateOrder) Validate() error {
	return required(c.CustomerID, "customer_id")
}

type AddOrderItem struct {
	OrderID   string `json:"-"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (c AddOrderItem) Validate() error {
	if err := required(c.OrderID, "order_id"); err != nil {
		return err
	}
	return required(c.ProductID, "product_id")
}

type RemoveOrderItem struct {
	OrderID   string
	ProductID string
}

func (c RemoveOrderItem) Validate() error {
	if err := required(c.OrderID, "order_id"); err != nil {
		return err
	}
	return required(c.ProductID, "product_id")
}

type SetOrderStatus struct {
	OrderID string `json:"-"`
	Status  string `json:"status"`
}

func (c SetOrderStatus) Validate() error {
	if err := required(c.OrderID, "order_id"); err != nil {
		return err
	}
	_, err := domain.ParseOrderStatus(c.Status)
	return err
}
