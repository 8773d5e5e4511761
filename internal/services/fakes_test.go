package services

import (
	"fmt"
	"strings"

	"pos_backend/internal/models"
	"pos_backend/internal/repositories"
)

// In-memory repository fakes. The executor argument is ignored; tests pass a
// nil database to the services and only exercise paths that do not open a
// transaction.

type fakeCategoryRepo struct {
	byID    map[int64]*models.Category
	byName  map[string]*models.Category
	nextID  int64
	failing map[string]bool // category names whose creation fails
	created []string
}

func newFakeCategoryRepo(names ...string) *fakeCategoryRepo {
	repo := &fakeCategoryRepo{
		byID:    map[int64]*models.Category{},
		byName:  map[string]*models.Category{},
		failing: map[string]bool{},
	}
	for _, name := range names {
		repo.nextID++
		category := &models.Category{ID: repo.nextID, Name: name}
		repo.byID[category.ID] = category
		repo.byName[strings.ToLower(name)] = category
	}
	return repo
}

func (r *fakeCategoryRepo) CreateCategory(_ repositories.SQLExecutor, category *models.Category) (int64, error) {
	if r.failing[category.Name] {
		return 0, fmt.Errorf("%w: simulated failure", repositories.ErrDatabaseError)
	}
	key := strings.ToLower(category.Name)
	if _, ok := r.byName[key]; ok {
		return 0, fmt.Errorf("%w: category '%s'", repositories.ErrDuplicateKey, category.Name)
	}
	r.nextID++
	category.ID = r.nextID
	stored := *category
	r.byID[category.ID] = &stored
	r.byName[key] = &stored
	r.created = append(r.created, category.Name)
	return category.ID, nil
}

func (r *fakeCategoryRepo) GetCategoryByID(id int64) (*models.Category, error) {
	category, ok := r.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return category, nil
}

func (r *fakeCategoryRepo) GetCategoryByName(name string) (*models.Category, error) {
	category, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return category, nil
}

func (r *fakeCategoryRepo) GetCategories() ([]models.Category, error) {
	categories := []models.Category{}
	for _, category := range r.byID {
		categories = append(categories, *category)
	}
	return categories, nil
}

func (r *fakeCategoryRepo) UpdateCategory(_ repositories.SQLExecutor, category *models.Category) error {
	stored, ok := r.byID[category.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	delete(r.byName, strings.ToLower(stored.Name))
	stored.Name = category.Name
	r.byName[strings.ToLower(category.Name)] = stored
	return nil
}

func (r *fakeCategoryRepo) DeleteCategory(_ repositories.SQLExecutor, id int64) error {
	category, ok := r.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	delete(r.byName, strings.ToLower(category.Name))
	delete(r.byID, id)
	return nil
}

type fakeProductRepo struct {
	byID      map[int64]*models.Product
	nextID    int64
	failNames map[string]bool // product names whose insert fails
	lowStock  []models.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{byID: map[int64]*models.Product{}, failNames: map[string]bool{}}
}

func (r *fakeProductRepo) add(product models.Product) int64 {
	r.nextID++
	product.ID = r.nextID
	r.byID[product.ID] = &product
	return product.ID
}

func (r *fakeProductRepo) CreateProduct(_ repositories.SQLExecutor, product *models.Product) (int64, error) {
	if r.failNames[product.Name] {
		return 0, fmt.Errorf("%w: product '%s'", repositories.ErrDuplicateKey, product.Name)
	}
	r.nextID++
	product.ID = r.nextID
	stored := *product
	r.byID[product.ID] = &stored
	return product.ID, nil
}

func (r *fakeProductRepo) GetProductByID(id int64) (*models.Product, error) {
	product, ok := r.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return product, nil
}

func (r *fakeProductRepo) GetProducts(filters repositories.ProductFilters) ([]models.Product, int, error) {
	products := []models.Product{}
	for _, product := range r.byID {
		products = append(products, *product)
	}
	return products, len(products), nil
}

func (r *fakeProductRepo) UpdateProduct(_ repositories.SQLExecutor, product *models.Product) error {
	if _, ok := r.byID[product.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *product
	r.byID[product.ID] = &stored
	return nil
}

func (r *fakeProductRepo) DeleteProduct(_ repositories.SQLExecutor, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeProductRepo) UpdateStock(_ repositories.SQLExecutor, productID int64, quantityChange int) (int, error) {
	product, ok := r.byID[productID]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	if product.Stock+quantityChange < 0 {
		return 0, fmt.Errorf("%w: stock for product ID %d cannot go negative", repositories.ErrDatabaseError, productID)
	}
	product.Stock += quantityChange
	return product.Stock, nil
}

func (r *fakeProductRepo) GetPriceAndStock(productID int64) (float64, int, string, error) {
	product, ok := r.byID[productID]
	if !ok {
		return 0, 0, "", repositories.ErrNotFound
	}
	return product.SellingPrice, product.Stock, product.Name, nil
}

func (r *fakeProductRepo) GetLowStockProducts() ([]models.Product, error) {
	return r.lowStock, nil
}

type fakeReportRepo struct {
	salesRows   []models.SalesReportRow
	summaryRows []models.ProductSummaryRow
}

func (r *fakeReportRepo) GetSalesReportRows(models.ReportFilters) ([]models.SalesReportRow, error) {
	return r.salesRows, nil
}

func (r *fakeReportRepo) GetProductSummary(models.ReportFilters) ([]models.ProductSummaryRow, error) {
	return r.summaryRows, nil
}

type fakeBackupRepo struct {
	users           []models.BackupUser
	categories      []models.Category
	products        []models.Product
	sales           []models.Sale
	saleItems       []models.SaleItem
	invoices        []models.Invoice
	invoiceItems    []models.InvoiceItem
	invoicePayments []models.InvoicePayment

	cleared        bool
	insertedUsers  int
	sequencesReset bool
}

func (r *fakeBackupRepo) ListAllUsers() ([]models.BackupUser, error)        { return r.users, nil }
func (r *fakeBackupRepo) ListAllCategories() ([]models.Category, error)    { return r.categories, nil }
func (r *fakeBackupRepo) ListAllProducts() ([]models.Product, error)       { return r.products, nil }
func (r *fakeBackupRepo) ListAllSales() ([]models.Sale, error)             { return r.sales, nil }
func (r *fakeBackupRepo) ListAllSaleItems() ([]models.SaleItem, error)     { return r.saleItems, nil }
func (r *fakeBackupRepo) ListAllInvoices() ([]models.Invoice, error)       { return r.invoices, nil }
func (r *fakeBackupRepo) ListAllInvoiceItems() ([]models.InvoiceItem, error) {
	return r.invoiceItems, nil
}
func (r *fakeBackupRepo) ListAllInvoicePayments() ([]models.InvoicePayment, error) {
	return r.invoicePayments, nil
}

func (r *fakeBackupRepo) ClearAll(repositories.SQLExecutor) error {
	r.cleared = true
	return nil
}

func (r *fakeBackupRepo) InsertUser(_ repositories.SQLExecutor, _ *models.BackupUser) error {
	r.insertedUsers++
	return nil
}
func (r *fakeBackupRepo) InsertCategory(_ repositories.SQLExecutor, _ *models.Category) error {
	return nil
}
func (r *fakeBackupRepo) InsertProduct(_ repositories.SQLExecutor, _ *models.Product) error {
	return nil
}
func (r *fakeBackupRepo) InsertSale(_ repositories.SQLExecutor, _ *models.Sale) error { return nil }
func (r *fakeBackupRepo) InsertSaleItem(_ repositories.SQLExecutor, _ *models.SaleItem) error {
	return nil
}
func (r *fakeBackupRepo) InsertInvoice(_ repositories.SQLExecutor, _ *models.Invoice) error {
	return nil
}
func (r *fakeBackupRepo) InsertInvoiceItem(_ repositories.SQLExecutor, _ *models.InvoiceItem) error {
	return nil
}
func (r *fakeBackupRepo) InsertInvoicePayment(_ repositories.SQLExecutor, _ *models.InvoicePayment) error {
	return nil
}

func (r *fakeBackupRepo) ResetSequences(repositories.SQLExecutor) error {
	r.sequencesReset = true
	return nil
}
