package models

import "time"

// SalesReportRow is one sale line item in the sales report export.
type SalesReportRow struct {
	ReceiptNumber string    `json:"receipt_number"`
	SaleTime      time.Time `json:"sale_time"`
	ProductName   string    `json:"product_name"`
	Quantity      int       `json:"quantity"`
	UnitPrice     float64   `json:"unit_price"`
	Subtotal      float64   `json:"subtotal"`
	VATAmount     float64   `json:"vat_amount"`
	NetAmount     float64   `json:"net_amount"`
	PaymentMethod string    `json:"payment_method"`
	Cashier       string    `json:"cashier"`
	SaleTotal     float64   `json:"sale_total"`
}

// ProductSummaryRow is one product in the product sales summary export,
// ranked by gross revenue.
type ProductSummaryRow struct {
	ProductName  string  `json:"product_name"`
	QuantitySold int     `json:"quantity_sold"`
	TimesSold    int     `json:"times_sold"`
	GrossRevenue float64 `json:"gross_revenue"`
	VATAmount    float64 `json:"vat_amount"`
	NetRevenue   float64 `json:"net_revenue"`
	BuyingPrice  float64 `json:"buying_price"`
}

// ReportFilters carries the optional date window applied to report queries.
type ReportFilters struct {
	StartDate *time.Time
	EndDate   *time.Time
}
