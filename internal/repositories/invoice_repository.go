package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pos_backend/internal/models"

	"github.com/lib/pq"
)

// InvoiceFilters narrows GetInvoices results.
type InvoiceFilters struct {
	Status    *string
	CreatedBy *int64
	Page      int
	PageSize  int
}

// InvoiceRepository defines the interface for invoice database operations.
type InvoiceRepository interface {
	CreateInvoice(executor SQLExecutor, invoice *models.Invoice) (int64, error)
	CreateInvoiceItem(executor SQLExecutor, item *models.InvoiceItem) (int64, error)
	DeleteInvoiceItemsByInvoiceID(executor SQLExecutor, invoiceID int64) error
	GetInvoiceByID(id int64) (*models.Invoice, error)
	GetInvoices(filters InvoiceFilters) ([]models.Invoice, int, error)
	GetInvoiceItemsByInvoiceID(invoiceID int64) ([]models.InvoiceItem, error)
	GetInvoicePaymentsByInvoiceID(invoiceID int64) ([]models.InvoicePayment, error)
	// UpdateInvoice rewrites all editable fields and the computed totals.
	UpdateInvoice(executor SQLExecutor, invoice *models.Invoice) error
	UpdateInvoiceStatus(executor SQLExecutor, invoiceID int64, status string, updatedAt time.Time) error
	// SetInvoiceNumber assigns the document number and moves the invoice to the given status.
	SetInvoiceNumber(executor SQLExecutor, invoiceID int64, number string, status string, updatedAt time.Time) error
	CreatePayment(executor SQLExecutor, payment *models.InvoicePayment) (int64, error)
	// UpdateInvoiceAmounts rewrites the payment-derived fields after a payment is recorded.
	UpdateInvoiceAmounts(executor SQLExecutor, invoiceID int64, amountPaid, balanceDue float64, status string, updatedAt time.Time) error
	DeleteInvoice(executor SQLExecutor, invoiceID int64) error
}

type invoiceRepository struct {
	db *sql.DB
}

// NewInvoiceRepository creates a new instance of InvoiceRepository.
func NewInvoiceRepository(db *sql.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

const invoiceColumns = `id, invoice_number, customer_name, customer_email, customer_phone, customer_address,
	    issue_date, due_date, status, subtotal, vat_amount, total_amount, amount_paid, balance_due,
	    notes, created_by, created_at, updated_at`

func scanInvoice(row interface{ Scan(...interface{}) error }, extra ...interface{}) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	dest := []interface{}{
		&invoice.ID, &invoice.InvoiceNumber, &invoice.CustomerName, &invoice.CustomerEmail,
		&invoice.CustomerPhone, &invoice.CustomerAddress, &invoice.IssueDate, &invoice.DueDate,
		&invoice.Status, &invoice.Subtotal, &invoice.VATAmount, &invoice.TotalAmount,
		&invoice.AmountPaid, &invoice.BalanceDue, &invoice.Notes, &invoice.CreatedBy,
		&invoice.CreatedAt, &invoice.UpdatedAt,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *invoiceRepository) CreateInvoice(executor SQLExecutor, invoice *models.Invoice) (int64, error) {
	query := `INSERT INTO invoices
	          (invoice_number, customer_name, customer_email, customer_phone, customer_address,
	           issue_date, due_date, status, subtotal, vat_amount, total_amount, amount_paid, balance_due,
	           notes, created_by, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		invoice.InvoiceNumber, invoice.CustomerName, invoice.CustomerEmail, invoice.CustomerPhone,
		invoice.CustomerAddress, invoice.IssueDate, invoice.DueDate, invoice.Status,
		invoice.Subtotal, invoice.VATAmount, invoice.TotalAmount, invoice.AmountPaid, invoice.BalanceDue,
		invoice.Notes, invoice.CreatedBy, currentTime, currentTime,
	).Scan(&invoice.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: creating invoice (constraint: %s): %v", ErrDuplicateKey, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating invoice: %v", ErrDatabaseError, err)
	}
	return invoice.ID, nil
}

func (r *invoiceRepository) CreateInvoiceItem(executor SQLExecutor, item *models.InvoiceItem) (int64, error) {
	query := `INSERT INTO invoice_items
	          (invoice_id, description, quantity, unit_price, subtotal, vat_amount, total_price)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	err := executor.QueryRow(query,
		item.InvoiceID, item.Description, item.Quantity, item.UnitPrice,
		item.Subtotal, item.VATAmount, item.TotalPrice,
	).Scan(&item.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating invoice item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func (r *invoiceRepository) DeleteInvoiceItemsByInvoiceID(executor SQLExecutor, invoiceID int64) error {
	_, err := executor.Exec(`DELETE FROM invoice_items WHERE invoice_id = $1`, invoiceID)
	if err != nil {
		return fmt.Errorf("%w: deleting invoice items for invoice %d: %v", ErrDatabaseError, invoiceID, err)
	}
	return nil
}

func (r *invoiceRepository) GetInvoiceByID(id int64) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	invoice, err := scanInvoice(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting invoice by ID %d: %v", ErrDatabaseError, id, err)
	}
	return invoice, nil
}

func (r *invoiceRepository) GetInvoices(filters InvoiceFilters) ([]models.Invoice, int, error) {
	invoices := []models.Invoice{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + invoiceColumns + `, COUNT(*) OVER() AS total_count FROM invoices`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.CreatedBy != nil {
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", argCount))
		args = append(args, *filters.CreatedBy)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY issue_date DESC, id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting invoices: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		invoice, err := scanInvoice(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning invoice: %v", ErrDatabaseError, err)
		}
		invoices = append(invoices, *invoice)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating invoices: %v", ErrDatabaseError, err)
	}
	return invoices, totalCount, nil
}

func (r *invoiceRepository) GetInvoiceItemsByInvoiceID(invoiceID int64) ([]models.InvoiceItem, error) {
	items := []models.InvoiceItem{}
	query := `SELECT id, invoice_id, description, quantity, unit_price, subtotal, vat_amount, total_price
	          FROM invoice_items
	          WHERE invoice_id = $1
	          ORDER BY id`
	rows, err := r.db.Query(query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("%w: getting invoice items for invoice %d: %v", ErrDatabaseError, invoiceID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.InvoiceItem
		if err := rows.Scan(
			&item.ID, &item.InvoiceID, &item.Description, &item.Quantity,
			&item.UnitPrice, &item.Subtotal, &item.VATAmount, &item.TotalPrice,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning invoice item: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating invoice items: %v", ErrDatabaseError, err)
	}
	return items, nil
}

func (r *invoiceRepository) GetInvoicePaymentsByInvoiceID(invoiceID int64) ([]models.InvoicePayment, error) {
	payments := []models.InvoicePayment{}
	query := `SELECT id, invoice_id, amount, method, reference, payment_date, created_at
	          FROM invoice_payments
	          WHERE invoice_id = $1
	          ORDER BY payment_date, id`
	rows, err := r.db.Query(query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("%w: getting payments for invoice %d: %v", ErrDatabaseError, invoiceID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var payment models.InvoicePayment
		if err := rows.Scan(
			&payment.ID, &payment.InvoiceID, &payment.Amount, &payment.Method,
			&payment.Reference, &payment.PaymentDate, &payment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning invoice payment: %v", ErrDatabaseError, err)
		}
		payments = append(payments, payment)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating invoice payments: %v", ErrDatabaseError, err)
	}
	return payments, nil
}

func (r *invoiceRepository) UpdateInvoice(executor SQLExecutor, invoice *models.Invoice) error {
	query := `UPDATE invoices SET
	            customer_name = $1, customer_email = $2, customer_phone = $3, customer_address = $4,
	            issue_date = $5, due_date = $6, subtotal = $7, vat_amount = $8, total_amount = $9,
	            balance_due = $10, notes = $11, updated_at = $12
	          WHERE id = $13`
	result, err := executor.Exec(query,
		invoice.CustomerName, invoice.CustomerEmail, invoice.CustomerPhone, invoice.CustomerAddress,
		invoice.IssueDate, invoice.DueDate, invoice.Subtotal, invoice.VATAmount, invoice.TotalAmount,
		invoice.BalanceDue, invoice.Notes, time.Now(), invoice.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating invoice ID %d: %v", ErrDatabaseError, invoice.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *invoiceRepository) UpdateInvoiceStatus(executor SQLExecutor, invoiceID int64, status string, updatedAt time.Time) error {
	result, err := executor.Exec(`UPDATE invoices SET status = $1, updated_at = $2 WHERE id = $3`, status, updatedAt, invoiceID)
	if err != nil {
		return fmt.Errorf("%w: updating status of invoice %d: %v", ErrDatabaseError, invoiceID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *invoiceRepository) SetInvoiceNumber(executor SQLExecutor, invoiceID int64, number string, status string, updatedAt time.Time) error {
	result, err := executor.Exec(
		`UPDATE invoices SET invoice_number = $1, status = $2, updated_at = $3 WHERE id = $4`,
		number, status, updatedAt, invoiceID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: invoice number '%s' already assigned (constraint: %s)", ErrDuplicateKey, number, pqErr.Constraint)
		}
		return fmt.Errorf("%w: setting number of invoice %d: %v", ErrDatabaseError, invoiceID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *invoiceRepository) CreatePayment(executor SQLExecutor, payment *models.InvoicePayment) (int64, error) {
	query := `INSERT INTO invoice_payments (invoice_id, amount, method, reference, payment_date, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	err := executor.QueryRow(query,
		payment.InvoiceID, payment.Amount, payment.Method, payment.Reference,
		payment.PaymentDate, time.Now(),
	).Scan(&payment.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating invoice payment: %v", ErrDatabaseError, err)
	}
	return payment.ID, nil
}

func (r *invoiceRepository) UpdateInvoiceAmounts(executor SQLExecutor, invoiceID int64, amountPaid, balanceDue float64, status string, updatedAt time.Time) error {
	result, err := executor.Exec(
		`UPDATE invoices SET amount_paid = $1, balance_due = $2, status = $3, updated_at = $4 WHERE id = $5`,
		amountPaid, balanceDue, status, updatedAt, invoiceID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating amounts of invoice %d: %v", ErrDatabaseError, invoiceID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *invoiceRepository) DeleteInvoice(executor SQLExecutor, invoiceID int64) error {
	if err := r.DeleteInvoiceItemsByInvoiceID(executor, invoiceID); err != nil {
		return err
	}
	result, err := executor.Exec(`DELETE FROM invoices WHERE id = $1`, invoiceID)
	if err != nil {
		return fmt.Errorf("%w: deleting invoice ID %d: %v", ErrDatabaseError, invoiceID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
