package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"pos_backend/internal/models"

	"github.com/lib/pq"
)

// BackupRepository reads and writes whole entity collections for the
// backup/restore feature. Inserts preserve original IDs so foreign keys in
// the document stay intact; ResetSequences realigns the serial counters
// afterwards.
type BackupRepository interface {
	ListAllUsers() ([]models.BackupUser, error)
	ListAllCategories() ([]models.Category, error)
	ListAllProducts() ([]models.Product, error)
	ListAllSales() ([]models.Sale, error)
	ListAllSaleItems() ([]models.SaleItem, error)
	ListAllInvoices() ([]models.Invoice, error)
	ListAllInvoiceItems() ([]models.InvoiceItem, error)
	ListAllInvoicePayments() ([]models.InvoicePayment, error)

	ClearAll(executor SQLExecutor) error
	InsertUser(executor SQLExecutor, user *models.BackupUser) error
	InsertCategory(executor SQLExecutor, category *models.Category) error
	InsertProduct(executor SQLExecutor, product *models.Product) error
	InsertSale(executor SQLExecutor, sale *models.Sale) error
	InsertSaleItem(executor SQLExecutor, item *models.SaleItem) error
	InsertInvoice(executor SQLExecutor, invoice *models.Invoice) error
	InsertInvoiceItem(executor SQLExecutor, item *models.InvoiceItem) error
	InsertInvoicePayment(executor SQLExecutor, payment *models.InvoicePayment) error
	ResetSequences(executor SQLExecutor) error
}

type backupRepository struct {
	db *sql.DB
}

// NewBackupRepository creates a new instance of BackupRepository.
func NewBackupRepository(db *sql.DB) BackupRepository {
	return &backupRepository{db: db}
}

func (r *backupRepository) ListAllUsers() ([]models.BackupUser, error) {
	users := []models.BackupUser{}
	rows, err := r.db.Query(`SELECT id, username, password_hash, email, full_name, role_id, is_active, created_at, updated_at
	                         FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: exporting users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var user models.BackupUser
		var roleID sql.NullInt64
		if err := rows.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Email, &user.FullName,
			&roleID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning user for export: %v", ErrDatabaseError, err)
		}
		if roleID.Valid {
			user.RoleID = &roleID.Int64
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *backupRepository) ListAllCategories() ([]models.Category, error) {
	categories := []models.Category{}
	rows, err := r.db.Query(`SELECT id, name, created_at, updated_at FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: exporting categories: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning category for export: %v", ErrDatabaseError, err)
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *backupRepository) ListAllProducts() ([]models.Product, error) {
	products := []models.Product{}
	rows, err := r.db.Query(`SELECT id, name, brand, category_id, barcode, supplier, buying_price, selling_price,
	                                stock, reorder_level, created_at, updated_at
	                         FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: exporting products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var product models.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.Brand, &product.CategoryID, &product.Barcode,
			&product.Supplier, &product.BuyingPrice, &product.SellingPrice, &product.Stock,
			&product.ReorderLevel, &product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning product for export: %v", ErrDatabaseError, err)
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *backupRepository) ListAllSales() ([]models.Sale, error) {
	sales := []models.Sale{}
	rows, err := r.db.Query(`SELECT id, receipt_number, cashier_id, payment_method, subtotal, vat_amount,
	                                net_amount, total_amount, sale_time, created_at
	                         FROM sales ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: exporting sales: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var sale models.Sale
		if err := rows.Scan(&sale.ID, &sale.ReceiptNumber, &sale.CashierID, &sale.PaymentMethod,
			&sale.Subtotal, &sale.VATAmount, &sale.NetAmount, &sale.TotalAmount,
			&sale.SaleTime, &sale.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning sale for export: %v", ErrDatabaseError, err)
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

func (r *backupRepository) ListAllSaleItems() ([]models.SaleItem, error) {
	items := []models.SaleItem{}
	rows, err := r.db.Query(`SELECT id, sale_id, product_id, product_name, quantity, unit_price, subtotal, vat_amount, total_price
	                         FROM sale_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: exporting sale items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.ProductName, &item.Quantity,
			&item.UnitPrice, &item.Subtotal, &item.VATAmount, &item.TotalPrice); err != nil {
			return nil, fmt.Errorf("%w: scanning sale item for export: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *backupRepository) ListAllInvoices() ([]models.Invoice, error) {
	invoices := []models.Invoice{}
	rows, err := r.db.Query(`SELECT ` + invoiceColumns + ` FROM invoices ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: exporting invoices: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning invoice for export: %v", ErrDatabaseError, err)
		}
		invoices = append(invoices, *invoice)
	}
	return invoices, rows.Err()
}

func (r *backupRepository) ListAllInvoiceItems() ([]models.InvoiceItem, error) {
	items := []models.InvoiceItem{}
	rows, err := r.db.Query(`SELECT id, invoice_id, description, quantity, unit_price, subtotal, vat_amount, total_price
	                         FROM invoice_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: exporting invoice items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.InvoiceItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Description, &item.Quantity,
			&item.UnitPrice, &item.Subtotal, &item.VATAmount, &item.TotalPrice); err != nil {
			return nil, fmt.Errorf("%w: scanning invoice item for export: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *backupRepository) ListAllInvoicePayments() ([]models.InvoicePayment, error) {
	payments := []models.InvoicePayment{}
	rows, err := r.db.Query(`SELECT id, invoice_id, amount, method, reference, payment_date, created_at
	                         FROM invoice_payments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: exporting invoice payments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var payment models.InvoicePayment
		if err := rows.Scan(&payment.ID, &payment.InvoiceID, &payment.Amount, &payment.Method,
			&payment.Reference, &payment.PaymentDate, &payment.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning invoice payment for export: %v", ErrDatabaseError, err)
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

// insertError maps unique violations to ErrDuplicateKey so merge-mode
// restores can tell an ID collision from an infrastructure failure.
func insertError(entity string, id int64, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return fmt.Errorf("%w: restoring %s %d (constraint: %s)", ErrDuplicateKey, entity, id, pqErr.Constraint)
	}
	return fmt.Errorf("%w: restoring %s %d: %v", ErrDatabaseError, entity, id, err)
}

// ClearAll deletes every entity collection in FK-safe order. Roles are
// deliberately kept; they are seed data, not user data.
func (r *backupRepository) ClearAll(executor SQLExecutor) error {
	tables := []string{"invoice_payments", "invoice_items", "invoices", "sale_items", "sales", "products", "categories", "users"}
	for _, table := range tables {
		if _, err := executor.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("%w: clearing table %s: %v", ErrDatabaseError, table, err)
		}
	}
	return nil
}

func (r *backupRepository) InsertUser(executor SQLExecutor, user *models.BackupUser) error {
	_, err := executor.Exec(`INSERT INTO users (id, username, password_hash, email, full_name, role_id, is_active, created_at, updated_at)
	                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, user.Username, user.PasswordHash, user.Email, user.FullName, user.RoleID,
		user.IsActive, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return insertError("user", user.ID, err)
	}
	return nil
}

func (r *backupRepository) InsertCategory(executor SQLExecutor, category *models.Category) error {
	_, err := executor.Exec(`INSERT INTO categories (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		category.ID, category.Name, category.CreatedAt, category.UpdatedAt)
	if err != nil {
		return insertError("category", category.ID, err)
	}
	return nil
}

func (r *backupRepository) InsertProduct(executor SQLExecutor, product *models.Product) error {
	_, err := executor.Exec(`INSERT INTO products (id, name, brand, category_id, barcode, supplier, buying_price,
	                                               selling_price, stock, reorder_level, created_at, updated_at)
	                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		product.ID, product.Name, product.Brand, product.CategoryID, product.Barcode, product.Supplier,
		product.BuyingPrice, product.SellingPrice, product.Stock, product.ReorderLevel,
		product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return insertError("product", product.ID, err)
	}
	return nil
}

func (r *backupRepository) InsertSale(executor SQLExecutor, sale *models.Sale) error {
	_, err := executor.Exec(`INSERT INTO sales (id, receipt_number, cashier_id, payment_method, subtotal, vat_amount,
	                                            net_amount, total_amount, sale_time, created_at)
	                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		sale.ID, sale.ReceiptNumber, sale.CashierID, sale.PaymentMethod, sale.Subtotal, sale.VATAmount,
		sale.NetAmount, sale.TotalAmount, sale.SaleTime, sale.CreatedAt)
	if err != nil {
		return insertError("sale", sale.ID, err)
	}
	return nil
}

func (r *backupRepository) InsertSaleItem(executor SQLExecutor, item *models.SaleItem) error {
	_, err := executor.Exec(`INSERT INTO sale_items (id, sale_id, product_id, product_name, quantity, unit_price, subtotal, vat_amount, total_price)
	                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		item.ID, item.SaleID, item.ProductID, item.ProductName, item.Quantity,
		item.UnitPrice, item.Subtotal, item.VATAmount, item.TotalPrice)
	if err != nil {
		return insertError("sale item", item.ID, err)
	}
	return nil
}

func (r *backupRepository) InsertInvoice(executor SQLExecutor, invoice *models.Invoice) error {
	_, err := executor.Exec(`INSERT INTO invoices (id, invoice_number, customer_name, customer_email, customer_phone,
	                                               customer_address, issue_date, due_date, status, subtotal, vat_amount,
	                                               total_amount, amount_paid, balance_due, notes, created_by, created_at, updated_at)
	                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		invoice.ID, invoice.InvoiceNumber, invoice.CustomerName, invoice.CustomerEmail, invoice.CustomerPhone,
		invoice.CustomerAddress, invoice.IssueDate, invoice.DueDate, invoice.Status, invoice.Subtotal,
		invoice.VATAmount, invoice.TotalAmount, invoice.AmountPaid, invoice.BalanceDue, invoice.Notes,
		invoice.CreatedBy, invoice.CreatedAt, invoice.UpdatedAt)
	if err != nil {
		return insertError("invoice", invoice.ID, err)
	}
	return nil
}

func (r *backupRepository) InsertInvoiceItem(executor SQLExecutor, item *models.InvoiceItem) error {
	_, err := executor.Exec(`INSERT INTO invoice_items (id, invoice_id, description, quantity, unit_price, subtotal, vat_amount, total_price)
	                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		item.ID, item.InvoiceID, item.Description, item.Quantity,
		item.UnitPrice, item.Subtotal, item.VATAmount, item.TotalPrice)
	if err != nil {
		return insertError("invoice item", item.ID, err)
	}
	return nil
}

func (r *backupRepository) InsertInvoicePayment(executor SQLExecutor, payment *models.InvoicePayment) error {
	_, err := executor.Exec(`INSERT INTO invoice_payments (id, invoice_id, amount, method, reference, payment_date, created_at)
	                         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		payment.ID, payment.InvoiceID, payment.Amount, payment.Method, payment.Reference,
		payment.PaymentDate, payment.CreatedAt)
	if err != nil {
		return insertError("invoice payment", payment.ID, err)
	}
	return nil
}

// ResetSequences realigns serial counters after restoring rows with explicit IDs.
func (r *backupRepository) ResetSequences(executor SQLExecutor) error {
	tables := []string{"users", "categories", "products", "sales", "sale_items", "invoices", "invoice_items", "invoice_payments"}
	for _, table := range tables {
		query := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 1)) FROM %s`, table, table)
		if _, err := executor.Exec(query); err != nil {
			return fmt.Errorf("%w: resetting sequence for %s: %v", ErrDatabaseError, table, err)
		}
	}
	return nil
}
