package posapi

import "time"

// Product mirrors the backend's product listing shape.
type Product struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	QuantityInStock int     `json:"quantity_in_stock"`
	CategoryID      string  `json:"category_id"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Customer struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

type Supplier struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

// OrderItem is the line shape the backend expects on submission.
type OrderItem struct {
	ProductID    string  `json:"product_id"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	Discount     float64 `json:"discount"`
	DiscountType string  `json:"discount_type"`
}

// CreateOrderRequest is the flat submission payload for POST /api/orders.
type CreateOrderRequest struct {
	CustomerID      string      `json:"customer_id"`
	Items           []OrderItem `json:"items"`
	Subtotal        float64     `json:"subtotal"`
	TotalDiscount   float64     `json:"total_discount"`
	Tax             float64     `json:"tax"`
	DeliveryEnabled bool        `json:"delivery_enabled"`
	DeliveryAmount  float64     `json:"delivery_amount"`
	Total           float64     `json:"total"`
	Status          string      `json:"status"`
	PaymentStatus   string      `json:"payment_status"`
	PaymentMethod   string      `json:"payment_method"`
	Notes           string      `json:"notes"`
}

// CreatePurchaseRequest mirrors the order payload for supplier purchases.
type CreatePurchaseRequest struct {
	SupplierID      string      `json:"supplier_id"`
	Items           []OrderItem `json:"items"`
	Subtotal        float64     `json:"subtotal"`
	TotalDiscount   float64     `json:"total_discount"`
	Tax             float64     `json:"tax"`
	DeliveryEnabled bool        `json:"delivery_enabled"`
	DeliveryAmount  float64     `json:"delivery_amount"`
	Total           float64     `json:"total"`
	Status          string      `json:"status"`
	PaymentStatus   string      `json:"payment_status"`
	PaymentMethod   string      `json:"payment_method"`
	Notes           string      `json:"notes"`
}

// Order is the backend's representation of a created order.
type Order struct {
	ID              string      `json:"id"`
	CustomerID      string      `json:"customer_id"`
	SupplierID      string      `json:"supplier_id,omitempty"`
	Items           []OrderItem `json:"items"`
	Subtotal        float64     `json:"subtotal"`
	TotalDiscount   float64     `json:"total_discount"`
	Tax             float64     `json:"tax"`
	DeliveryEnabled bool        `json:"delivery_enabled"`
	DeliveryAmount  float64     `json:"delivery_amount"`
	Total           float64     `json:"total"`
	Status          string      `json:"status"`
	PaymentStatus   string      `json:"payment_status"`
	PaymentMethod   string      `json:"payment_method"`
	Notes           string      `json:"notes"`
	CreatedAt       time.Time   `json:"created_at"`
}
