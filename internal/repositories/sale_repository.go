package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pos_backend/internal/models"
)

// SaleFilters narrows GetSales results.
type SaleFilters struct {
	CashierID *int64
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

// SaleRepository defines the interface for sale database operations.
// Sales and sale items are append-only; there are no update or delete methods.
type SaleRepository interface {
	CreateSale(executor SQLExecutor, sale *models.Sale) (int64, error)
	CreateSaleItem(executor SQLExecutor, item *models.SaleItem) (int64, error)
	GetSaleByID(id int64) (*models.Sale, error)
	GetSales(filters SaleFilters) ([]models.Sale, int, error)
	GetSaleItemsBySaleID(saleID int64) ([]models.SaleItem, error)
}

type saleRepository struct {
	db *sql.DB
}

// NewSaleRepository creates a new instance of SaleRepository.
func NewSaleRepository(db *sql.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) CreateSale(executor SQLExecutor, sale *models.Sale) (int64, error) {
	query := `INSERT INTO sales
	          (receipt_number, cashier_id, payment_method, subtotal, vat_amount, net_amount, total_amount, sale_time, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`
	err := executor.QueryRow(query,
		sale.ReceiptNumber, sale.CashierID, sale.PaymentMethod,
		sale.Subtotal, sale.VATAmount, sale.NetAmount, sale.TotalAmount,
		sale.SaleTime, time.Now(),
	).Scan(&sale.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating sale: %v", ErrDatabaseError, err)
	}
	return sale.ID, nil
}

func (r *saleRepository) CreateSaleItem(executor SQLExecutor, item *models.SaleItem) (int64, error) {
	query := `INSERT INTO sale_items
	          (sale_id, product_id, product_name, quantity, unit_price, subtotal, vat_amount, total_price)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`
	err := executor.QueryRow(query,
		item.SaleID, item.ProductID, item.ProductName, item.Quantity,
		item.UnitPrice, item.Subtotal, item.VATAmount, item.TotalPrice,
	).Scan(&item.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating sale item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func (r *saleRepository) GetSaleByID(id int64) (*models.Sale, error) {
	sale := &models.Sale{}
	var cashierName sql.NullString
	query := `SELECT s.id, s.receipt_number, s.cashier_id, s.payment_method,
	                 s.subtotal, s.vat_amount, s.net_amount, s.total_amount, s.sale_time, s.created_at,
	                 u.username
	          FROM sales s
	          LEFT JOIN users u ON s.cashier_id = u.id
	          WHERE s.id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&sale.ID, &sale.ReceiptNumber, &sale.CashierID, &sale.PaymentMethod,
		&sale.Subtotal, &sale.VATAmount, &sale.NetAmount, &sale.TotalAmount,
		&sale.SaleTime, &sale.CreatedAt, &cashierName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting sale by ID %d: %v", ErrDatabaseError, id, err)
	}
	if cashierName.Valid {
		sale.Cashier = &models.User{ID: sale.CashierID, Username: cashierName.String}
	}
	return sale, nil
}

func (r *saleRepository) GetSales(filters SaleFilters) ([]models.Sale, int, error) {
	sales := []models.Sale{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT s.id, s.receipt_number, s.cashier_id, s.payment_method,
	    s.subtotal, s.vat_amount, s.net_amount, s.total_amount, s.sale_time, s.created_at,
	    u.username, COUNT(*) OVER() AS total_count
	  FROM sales s
	  LEFT JOIN users u ON s.cashier_id = u.id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.CashierID != nil {
		conditions = append(conditions, fmt.Sprintf("s.cashier_id = $%d", argCount))
		args = append(args, *filters.CashierID)
		argCount++
	}
	if filters.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("s.sale_time >= $%d", argCount))
		args = append(args, *filters.StartDate)
		argCount++
	}
	if filters.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("s.sale_time <= $%d", argCount))
		args = append(args, *filters.EndDate)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY s.sale_time DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting sales: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var sale models.Sale
		var cashierName sql.NullString
		if err := rows.Scan(
			&sale.ID, &sale.ReceiptNumber, &sale.CashierID, &sale.PaymentMethod,
			&sale.Subtotal, &sale.VATAmount, &sale.NetAmount, &sale.TotalAmount,
			&sale.SaleTime, &sale.CreatedAt, &cashierName, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning sale: %v", ErrDatabaseError, err)
		}
		if cashierName.Valid {
			sale.Cashier = &models.User{ID: sale.CashierID, Username: cashierName.String}
		}
		sales = append(sales, sale)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating sales: %v", ErrDatabaseError, err)
	}
	return sales, totalCount, nil
}

func (r *saleRepository) GetSaleItemsBySaleID(saleID int64) ([]models.SaleItem, error) {
	items := []models.SaleItem{}
	query := `SELECT id, sale_id, product_id, product_name, quantity, unit_price, subtotal, vat_amount, total_price
	          FROM sale_items
	          WHERE sale_id = $1
	          ORDER BY id`
	rows, err := r.db.Query(query, saleID)
	if err != nil {
		return nil, fmt.Errorf("%w: getting sale items for sale %d: %v", ErrDatabaseError, saleID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.SaleItem
		if err := rows.Scan(
			&item.ID, &item.SaleID, &item.ProductID, &item.ProductName, &item.Quantity,
			&item.UnitPrice, &item.Subtotal, &item.VATAmount, &item.TotalPrice,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning sale item: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating sale items: %v", ErrDatabaseError, err)
	}
	return items, nil
}
