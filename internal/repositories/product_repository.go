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

// ProductFilters narrows GetProducts results.
type ProductFilters struct {
	CategoryID *int64
	Search     *string // matches name, brand, or barcode
	Page       int
	PageSize   int
}

// ProductRepository defines the interface for product database operations.
type ProductRepository interface {
	CreateProduct(executor SQLExecutor, product *models.Product) (int64, error)
	GetProductByID(id int64) (*models.Product, error)
	GetProducts(filters ProductFilters) ([]models.Product, int, error)
	UpdateProduct(executor SQLExecutor, product *models.Product) error
	DeleteProduct(executor SQLExecutor, id int64) error
	// UpdateStock applies a signed quantity change and returns the new stock level.
	UpdateStock(executor SQLExecutor, productID int64, quantityChange int) (int, error)
	// GetPriceAndStock is used by the sale checkout flow.
	GetPriceAndStock(productID int64) (sellingPrice float64, stock int, name string, err error)
	GetLowStockProducts() ([]models.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `p.id, p.name, p.brand, p.category_id, p.barcode, p.supplier,
	    p.buying_price, p.selling_price, p.stock, p.reorder_level, p.created_at, p.updated_at,
	    c.id AS cat_id, c.name AS cat_name, c.created_at AS cat_created_at, c.updated_at AS cat_updated_at`

func scanProduct(rows interface{ Scan(...interface{}) error }, extra ...interface{}) (*models.Product, error) {
	product := &models.Product{}
	category := &models.Category{}
	dest := []interface{}{
		&product.ID, &product.Name, &product.Brand, &product.CategoryID, &product.Barcode, &product.Supplier,
		&product.BuyingPrice, &product.SellingPrice, &product.Stock, &product.ReorderLevel,
		&product.CreatedAt, &product.UpdatedAt,
		&category.ID, &category.Name, &category.CreatedAt, &category.UpdatedAt,
	}
	dest = append(dest, extra...)
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	product.Category = category
	return product, nil
}

func (r *productRepository) CreateProduct(executor SQLExecutor, product *models.Product) (int64, error) {
	query := `INSERT INTO products
	          (name, brand, category_id, barcode, supplier, buying_price, selling_price, stock, reorder_level, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		product.Name, product.Brand, product.CategoryID, product.Barcode, product.Supplier,
		product.BuyingPrice, product.SellingPrice, product.Stock, product.ReorderLevel,
		currentTime, currentTime,
	).Scan(&product.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return 0, fmt.Errorf("%w: creating product (constraint: %s): %v", ErrDuplicateKey, pqErr.Constraint, err)
			}
			if pqErr.Code.Name() == "foreign_key_violation" && pqErr.Constraint == "products_category_id_fkey" {
				return 0, fmt.Errorf("%w: invalid category_id %d (constraint: %s): %v", ErrDatabaseError, product.CategoryID, pqErr.Constraint, err)
			}
		}
		return 0, fmt.Errorf("%w: creating product: %v", ErrDatabaseError, err)
	}
	return product.ID, nil
}

func (r *productRepository) GetProductByID(id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + `
	          FROM products p
	          JOIN categories c ON p.category_id = c.id
	          WHERE p.id = $1`
	product, err := scanProduct(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting product by ID %d: %v", ErrDatabaseError, id, err)
	}
	return product, nil
}

func (r *productRepository) GetProducts(filters ProductFilters) ([]models.Product, int, error) {
	products := []models.Product{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + productColumns + `, COUNT(*) OVER() AS total_count
	  FROM products p
	  JOIN categories c ON p.category_id = c.id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", argCount))
		args = append(args, *filters.CategoryID)
		argCount++
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR p.brand ILIKE $%d OR p.barcode = $%d)", argCount, argCount, argCount+1))
		args = append(args, "%"+*filters.Search+"%", *filters.Search)
		argCount += 2
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY p.name")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		product, err := scanProduct(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning product: %v", ErrDatabaseError, err)
		}
		products = append(products, *product)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating products: %v", ErrDatabaseError, err)
	}
	return products, totalCount, nil
}

func (r *productRepository) UpdateProduct(executor SQLExecutor, product *models.Product) error {
	query := `UPDATE products SET
	            name = $1, brand = $2, category_id = $3, barcode = $4, supplier = $5,
	            buying_price = $6, selling_price = $7, stock = $8, reorder_level = $9, updated_at = $10
	          WHERE id = $11`
	result, err := executor.Exec(query,
		product.Name, product.Brand, product.CategoryID, product.Barcode, product.Supplier,
		product.BuyingPrice, product.SellingPrice, product.Stock, product.ReorderLevel,
		time.Now(), product.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return fmt.Errorf("%w: updating product (constraint: %s): %v", ErrDuplicateKey, pqErr.Constraint, err)
			}
			if pqErr.Code.Name() == "foreign_key_violation" && pqErr.Constraint == "products_category_id_fkey" {
				return fmt.Errorf("%w: invalid category_id %d (constraint: %s): %v", ErrDatabaseError, product.CategoryID, pqErr.Constraint, err)
			}
		}
		return fmt.Errorf("%w: updating product ID %d: %v", ErrDatabaseError, product.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) DeleteProduct(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return fmt.Errorf("%w: product ID %d is referenced by sale records (constraint: %s)", ErrInUse, id, pqErr.Constraint)
		}
		return fmt.Errorf("%w: deleting product ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) UpdateStock(executor SQLExecutor, productID int64, quantityChange int) (int, error) {
	var newStock int
	query := `UPDATE products
	          SET stock = stock + $1, updated_at = $2
	          WHERE id = $3
	          RETURNING stock`
	err := executor.QueryRow(query, quantityChange, time.Now(), productID).Scan(&newStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "check_violation" {
			return 0, fmt.Errorf("%w: stock for product ID %d cannot go negative", ErrDatabaseError, productID)
		}
		return 0, fmt.Errorf("%w: updating stock for product ID %d: %v", ErrDatabaseError, productID, err)
	}
	return newStock, nil
}

func (r *productRepository) GetPriceAndStock(productID int64) (float64, int, string, error) {
	var price float64
	var stock int
	var name string
	query := `SELECT name, selling_price, stock FROM products WHERE id = $1`
	err := r.db.QueryRow(query, productID).Scan(&name, &price, &stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, "", ErrNotFound
		}
		return 0, 0, "", fmt.Errorf("%w: getting price and stock for product ID %d: %v", ErrDatabaseError, productID, err)
	}
	return price, stock, name, nil
}

func (r *productRepository) GetLowStockProducts() ([]models.Product, error) {
	products := []models.Product{}
	query := `SELECT ` + productColumns + `
	          FROM products p
	          JOIN categories c ON p.category_id = c.id
	          WHERE p.stock <= p.reorder_level
	          ORDER BY p.stock ASC, p.name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: getting low stock products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning low stock product: %v", ErrDatabaseError, err)
		}
		products = append(products, *product)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating low stock products: %v", ErrDatabaseError, err)
	}
	return products, nil
}
