package model

type CartProduct struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Price    int64  `json:"price"`
	ImageURL string `json:"image_url"`
}

type CartItem struct {
	ID        uint64      `json:"id"`
	Quantity  int         `json:"quantity"`
	ProductID uint64      `json:"product_id"`
	Product   CartProduct `json:"Product"`
}

type Cart struct {
	ID        uint64     `json:"id"`
	UserID    uint64     `json:"user_id"`
	CartItems []CartItem `json:"CartItems"`
}

type AddCartItemRequest struct {
	ProductID uint64 `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// Total is the sum of quantity times current product price.
func (c *Cart) Total() int64 {
	if c == nil {
		return 0
	}
	var total int64
	for _, item := range c.CartItems {
		total += int64(item.Quantity) * item.Product.Price
	}
	return total
}

func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	if c.CartItems != nil {
		out.CartItems = make([]CartItem, len(c.CartItems))
		copy(out.CartItems, c.CartItems)
	}
	return &out
}
