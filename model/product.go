package model

type Seller struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Category struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Product struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Stock       int64     `json:"stock"`
	ImageURL    string    `json:"image_url"`
	Category    *Category `json:"category,omitempty"`
	Seller      Seller    `json:"seller"`
}

type ProductRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" validate:"required,gt=0"`
	Stock       int64  `json:"stock" validate:"gte=0"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	CategoryID  uint64 `json:"category_id,omitempty"`
}

// ProductSort names the catalog orderings offered by the shop view.
type ProductSort string

const (
	SortNewest    ProductSort = "newest"
	SortPriceLow  ProductSort = "price_low"
	SortPriceHigh ProductSort = "price_high"
	SortNameAZ    ProductSort = "name_az"
)

type ProductFilter struct {
	Search   string
	Category string
	Sort     ProductSort
}

// StockUpdate is one message of the live stock stream.
type StockUpdate struct {
	ProductID uint64 `json:"product_id"`
	NewStock  int64  `json:"new_stock"`
}
