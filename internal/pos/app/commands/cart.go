package commands

type AddToCart struct {
	CartID    string `json:"-"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (c AddToCart) Validate() error {
	if err := required(c.CartID, "cart_id"); err != nil {
		return err
	}
	return required(c.ProductID, "product_id")
}

type RemoveFromCart struct {
	CartID    string
	ProductID string
}

func (c RemoveFromCart) Validate() error {
	if err := required(c.CartID, "cart_id"); err != nil {
		return err
	}
	return required(c.ProductID, "product_id")
}

type Checkout struct {
	CartID     string `json:"-"`
	CustomerID string `json:"customer_id"`
}

func (c Checkout) Validate() error {
	if err := required(c.CartID, "cart_id"); err != nil {
		return err
	}
	return required(c.CustomerID, "customer_id")
}
