package models

// Product 代表目錄中的商品
type Product struct {
	ID          uint64  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Price       float64 `json:"price" yaml:"price"`
	Unit        string  `json:"unit" yaml:"unit"`
	Image       string  `json:"image" yaml:"image"`
	Category    string  `json:"category" yaml:"category"`
	Rating      float64 `json:"rating" yaml:"rating"`
	Stock       int     `json:"stock" yaml:"stock"`
}

// CartItem 代表購物車中的單個商品項目，商品欄位在加入時複製
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

func NewCartItem(product Product, quantity int) CartItem {
	return CartItem{Product: product, Quantity: quantity}
}

// Subtotal returns price × quantity for the line.
func (ci CartItem) Subtotal() float64 {
	return ci.Price * float64(ci.Quantity)
}

// CloneCartItems returns a copy that callers may keep or modify.
func CloneCartItems(items []CartItem) []CartItem {
	if items == nil {
		return []CartItem{}
	}
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}
