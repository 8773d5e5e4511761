package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"pos_backend/internal/models"
)

// ReportRepository defines the read-only queries behind the report exports.
type ReportRepository interface {
	// GetSalesReportRows returns one row per sale line item in the window.
	GetSalesReportRows(filters models.ReportFilters) ([]models.SalesReportRow, error)
	// GetProductSummary aggregates line items per product, ordered by gross
	// revenue descending.
	GetProductSummary(filters models.ReportFilters) ([]models.ProductSummaryRow, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

func dateConditions(filters models.ReportFilters, column string, argOffset int) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argCount := argOffset
	if filters.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("%s >= $%d", column, argCount))
		args = append(args, *filters.StartDate)
		argCount++
	}
	if filters.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("%s <= $%d", column, argCount))
		args = append(args, *filters.EndDate)
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *reportRepository) GetSalesReportRows(filters models.ReportFilters) ([]models.SalesReportRow, error) {
	reportRows := []models.SalesReportRow{}

	where, args := dateConditions(filters, "s.sale_time", 1)
	query := `SELECT s.receipt_number, s.sale_time, si.product_name, si.quantity, si.unit_price,
	                 si.subtotal, si.vat_amount, si.subtotal - si.vat_amount AS net_amount,
	                 s.payment_method, COALESCE(u.username, ''), s.total_amount
	          FROM sale_items si
	          JOIN sales s ON si.sale_id = s.id
	          LEFT JOIN users u ON s.cashier_id = u.id` + where + `
	          ORDER BY s.sale_time, s.id, si.id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getting sales report rows: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var row models.SalesReportRow
		if err := rows.Scan(
			&row.ReceiptNumber, &row.SaleTime, &row.ProductName, &row.Quantity, &row.UnitPrice,
			&row.Subtotal, &row.VATAmount, &row.NetAmount, &row.PaymentMethod, &row.Cashier, &row.SaleTotal,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning sales report row: %v", ErrDatabaseError, err)
		}
		reportRows = append(reportRows, row)
	}
	return reportRows, rows.Err()
}

func (r *reportRepository) GetProductSummary(filters models.ReportFilters) ([]models.ProductSummaryRow, error) {
	summaryRows := []models.ProductSummaryRow{}

	where, args := dateConditions(filters, "s.sale_time", 1)
	// LEFT JOIN on products: a product deleted after the sale still appears
	// in the summary under the name captured on the line item.
	query := `SELECT si.product_name,
	                 SUM(si.quantity) AS quantity_sold,
	                 COUNT(DISTINCT si.sale_id) AS times_sold,
	                 SUM(si.total_price) AS gross_revenue,
	                 SUM(si.vat_amount) AS vat_amount,
	                 SUM(si.subtotal - si.vat_amount) AS net_revenue,
	                 COALESCE(MAX(p.buying_price), 0) AS buying_price
	          FROM sale_items si
	          JOIN sales s ON si.sale_id = s.id
	          LEFT JOIN products p ON si.product_id = p.id` + where + `
	          GROUP BY si.product_name
	          ORDER BY gross_revenue DESC, si.product_name`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getting product summary: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var row models.ProductSummaryRow
		if err := rows.Scan(
			&row.ProductName, &row.QuantitySold, &row.TimesSold,
			&row.GrossRevenue, &row.VATAmount, &row.NetRevenue, &row.BuyingPrice,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning product summary row: %v", ErrDatabaseError, err)
		}
		summaryRows = append(summaryRows, row)
	}
	return summaryRows, rows.Err()
}
