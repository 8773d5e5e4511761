package models

import "time"

// Sale is an append-only point-of-sale transaction produced by cart checkout.
// Entered prices are VAT-inclusive: VATAmount is backed out of the subtotal
// and TotalAmount equals the subtotal.
type Sale struct {
	ID            int64      `json:"id" db:"id"`
	ReceiptNumber string     `json:"receipt_number" db:"receipt_number"`
	CashierID     int64      `json:"cashier_id" db:"cashier_id"`
	PaymentMethod string     `json:"payment_method" db:"payment_method"`
	Subtotal      float64    `json:"subtotal" db:"subtotal"`
	VATAmount     float64    `json:"vat_amount" db:"vat_amount"`
	NetAmount     float64    `json:"net_amount" db:"net_amount"`
	TotalAmount   float64    `json:"total_amount" db:"total_amount"`
	SaleTime      time.Time  `json:"sale_time" db:"sale_time"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	Cashier       *User      `json:"cashier,omitempty"`
	Items         []SaleItem `json:"items,omitempty"`
}

// SaleItem is a single line on a sale receipt.
type SaleItem struct {
	ID          int64    `json:"id" db:"id"`
	SaleID      int64    `json:"sale_id" db:"sale_id"`
	ProductID   int64    `json:"product_id" db:"product_id"`
	ProductName string   `json:"product_name" db:"product_name"`
	Quantity    int      `json:"quantity" db:"quantity"`
	UnitPrice   float64  `json:"unit_price" db:"unit_price"`
	Subtotal    float64  `json:"subtotal" db:"subtotal"`
	VATAmount   float64  `json:"vat_amount" db:"vat_amount"`
	TotalPrice  float64  `json:"total_price" db:"total_price"`
	Product     *Product `json:"product,omitempty"`
}
