package models

import "time"

// Invoice is a formal billing document with exclusive VAT: VAT is added on
// top of entered line prices. Aggregate amounts are sums of per-line values.
type Invoice struct {
	ID              int64            `json:"id" db:"id"`
	InvoiceNumber   *string          `json:"invoice_number,omitempty" db:"invoice_number"` // assigned at finalization
	CustomerName    string           `json:"customer_name" db:"customer_name"`
	CustomerEmail   *string          `json:"customer_email,omitempty" db:"customer_email"`
	CustomerPhone   *string          `json:"customer_phone,omitempty" db:"customer_phone"`
	CustomerAddress *string          `json:"customer_address,omitempty" db:"customer_address"`
	IssueDate       time.Time        `json:"issue_date" db:"issue_date"`
	DueDate         time.Time        `json:"due_date" db:"due_date"`
	Status          string           `json:"status" db:"status"` // draft, sent, paid, overdue, cancelled
	Subtotal        float64          `json:"subtotal" db:"subtotal"`
	VATAmount       float64          `json:"vat_amount" db:"vat_amount"`
	TotalAmount     float64          `json:"total_amount" db:"total_amount"`
	AmountPaid      float64          `json:"amount_paid" db:"amount_paid"`
	BalanceDue      float64          `json:"balance_due" db:"balance_due"`
	Notes           *string          `json:"notes,omitempty" db:"notes"`
	CreatedBy       int64            `json:"created_by" db:"created_by"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" db:"updated_at"`
	Items           []InvoiceItem    `json:"items,omitempty"`
	Payments        []InvoicePayment `json:"payments,omitempty"`
}

// InvoiceItem is a single line on an invoice. Immutable once the invoice is
// finalized except via a full draft edit before finalization.
type InvoiceItem struct {
	ID          int64   `json:"id" db:"id"`
	InvoiceID   int64   `json:"invoice_id" db:"invoice_id"`
	Description string  `json:"description" db:"description"`
	Quantity    int     `json:"quantity" db:"quantity"`
	UnitPrice   float64 `json:"unit_price" db:"unit_price"`
	Subtotal    float64 `json:"subtotal" db:"subtotal"`
	VATAmount   float64 `json:"vat_amount" db:"vat_amount"`
	TotalPrice  float64 `json:"total_price" db:"total_price"`
}

// InvoicePayment is an append-only payment record against an invoice.
// Payments are never edited or deleted.
type InvoicePayment struct {
	ID          int64     `json:"id" db:"id"`
	InvoiceID   int64     `json:"invoice_id" db:"invoice_id"`
	Amount      float64   `json:"amount" db:"amount"`
	Method      string    `json:"method" db:"method"`
	Reference   string    `json:"reference" db:"reference"`
	PaymentDate time.Time `json:"payment_date" db:"payment_date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
