package services

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"pos_backend/internal/models"
	"pos_backend/internal/repositories"
)

// Category policies for rows whose category label is not yet known.
const (
	CategoryPolicyAutoCreate = "auto_create"
	CategoryPolicyReject     = "reject"
)

var (
	ErrImportEmptyFile = errors.New("import file contains no data rows")
	ErrImportBadHeader = errors.New("import file header is missing required columns")
	ErrImportMalformed = errors.New("import file is not valid CSV")
)

// ImportOptions tunes the validation pass.
type ImportOptions struct {
	// CategoryPolicy decides what happens to rows with an unknown category
	// label: auto_create stages the category for creation during commit,
	// reject marks the row invalid. Defaults to auto_create.
	CategoryPolicy string `json:"category_policy"`
	// StrictIntegers requires stock and reorder_level to be whole numbers.
	// When false, decimal values are accepted and rounded.
	StrictIntegers bool `json:"strict_integers"`
}

// RowError is a single field-level validation failure, addressed by the
// user-visible CSV line number.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RowResult is the outcome of validating one data row. A row with any error
// is excluded from the valid set.
type RowResult struct {
	Row      int
	Product  models.Product
	Category string // trimmed category label, resolved to an ID during commit
	// NewCategory marks a label absent from the known set at validation time.
	NewCategory bool
	Errors      []RowError
}

// Valid reports whether the row produced a usable record.
func (r RowResult) Valid() bool { return len(r.Errors) == 0 }

// ImportSummary is the final report of an import run.
type ImportSummary struct {
	TotalRows         int        `json:"total_rows"`
	SuccessCount      int        `json:"success_count"`
	FailedCount       int        `json:"failed_count"`
	CreatedCategories []string   `json:"created_categories"`
	Errors            []RowError `json:"errors"`
}

// ImportProgressFunc receives incremental progress during the commit phase.
type ImportProgressFunc func(processed, total int)

// ImportService validates and imports product catalogs from CSV.
type ImportService interface {
	// ImportProducts runs the full pipeline: parse, validate every row, then
	// commit valid rows one at a time. The commit is best effort, not atomic;
	// a failed insert is counted and the batch continues.
	ImportProducts(reader io.Reader, opts ImportOptions, progress ImportProgressFunc) (*ImportSummary, error)
	// Template returns a blank CSV template with the expected header and
	// sample rows that round-trip through validation.
	Template() string
}

type importService struct {
	db           *sql.DB
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
}

// NewImportService creates a new instance of ImportService.
func NewImportService(db *sql.DB, productRepo repositories.ProductRepository, categoryRepo repositories.CategoryRepository) ImportService {
	return &importService{db: db, productRepo: productRepo, categoryRepo: categoryRepo}
}

// Canonical column names with their accepted header aliases.
var headerAliases = map[string]string{
	"name":                "name",
	"brand":               "brand",
	"category":            "category",
	"barcode":             "barcode",
	"buying_price":        "buying_price",
	"cost_price":          "buying_price",
	"selling_price":       "selling_price",
	"stock":               "stock",
	"quantity_in_stock":   "stock",
	"reorder_level":       "reorder_level",
	"low_stock_threshold": "reorder_level",
	"supplier":            "supplier",
	"unit_size":           "unit_size", // accepted, not stored
}

var requiredColumns = []string{"name", "category", "buying_price", "selling_price", "stock"}

// parseHeader maps column index to canonical field name. Unrecognized
// columns are ignored so exports with extra fields still import.
func parseHeader(header []string) (map[int]string, error) {
	columns := make(map[int]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, raw := range header {
		key := strings.ToLower(strings.TrimSpace(raw))
		if canonical, ok := headerAliases[key]; ok {
			columns[i] = canonical
			seen[canonical] = true
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if !seen[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrImportBadHeader, strings.Join(missing, ", "))
	}
	return columns, nil
}

// ValidateRow checks one data row against the field contract. rowNumber is
// the user-visible CSV line (header is line 1, first data row is line 2).
// knownCategories maps lower-cased category names to their IDs. The function
// is pure: unknown categories are only classified, never created here.
func ValidateRow(fields map[string]string, rowNumber int, knownCategories map[string]int64, opts ImportOptions) RowResult {
	result := RowResult{Row: rowNumber}

	name := strings.TrimSpace(fields["name"])
	if name == "" {
		result.Errors = append(result.Errors, RowError{Row: rowNumber, Field: "name", Message: "required"})
	}
	result.Product.Name = name

	category := strings.TrimSpace(fields["category"])
	if category == "" {
		result.Errors = append(result.Errors, RowError{Row: rowNumber, Field: "category", Message: "required"})
	} else if id, ok := knownCategories[strings.ToLower(category)]; ok {
		result.Product.CategoryID = id
	} else if opts.CategoryPolicy == CategoryPolicyReject {
		result.Errors = append(result.Errors, RowError{Row: rowNumber, Field: "category", Message: fmt.Sprintf("unknown category '%s'", category)})
	} else {
		result.NewCategory = true
	}
	result.Category = category

	if price, err := parsePrice(fields["buying_price"]); err != nil {
		result.Errors = append(result.Errors, RowError{Row: rowNumber, Field: "buying_price", Message: err.Error()})
	} else {
		result.Product.BuyingPrice = price
	}
	if price, err := parsePrice(fields["selling_price"]); err != nil {
		result.Errors = append(result.Errors, RowError{Row: rowNumber, Field: "selling_price", Message: err.Error()})
	} else {
		result.Product.SellingPrice = price
	}

	if stock, err := parseQuantity(fields["stock"], opts.StrictIntegers, true); err != nil {
		result.Errors = append(result.Errors, RowError{Row: rowNumber, Field: "stock", Message: err.Error()})
	} else {
		result.Product.Stock = stock
	}
	if reorder, err := parseQuantity(fields["reorder_level"], opts.StrictIntegers, false); err != nil {
		result.Errors = append(result.Errors, RowError{Row: rowNumber, Field: "reorder_level", Message: err.Error()})
	} else {
		result.Product.ReorderLevel = reorder
	}

	if brand := strings.TrimSpace(fields["brand"]); brand != "" {
		result.Product.Brand = &brand
	}
	if barcode := strings.TrimSpace(fields["barcode"]); barcode != "" {
		result.Product.Barcode = &barcode
	}
	if supplier := strings.TrimSpace(fields["supplier"]); supplier != "" {
		result.Product.Supplier = &supplier
	}

	return result
}

func parsePrice(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, errors.New("required")
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, errors.New("must be a number")
	}
	if value < 0 {
		return 0, errors.New("must not be negative")
	}
	return value, nil
}

// parseQuantity handles stock and reorder_level. reorder_level is optional
// and defaults to 10 when blank.
func parseQuantity(raw string, strict bool, required bool) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		if required {
			return 0, errors.New("required")
		}
		return 10, nil
	}
	if strict {
		value, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, errors.New("must be a whole number")
		}
		if value < 0 {
			return 0, errors.New("must not be negative")
		}
		return value, nil
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, errors.New("must be a number")
	}
	if value < 0 {
		return 0, errors.New("must not be negative")
	}
	return int(math.Round(value)), nil
}

func (s *importService) ImportProducts(reader io.Reader, opts ImportOptions, progress ImportProgressFunc) (*ImportSummary, error) {
	if opts.CategoryPolicy == "" {
		opts.CategoryPolicy = CategoryPolicyAutoCreate
	}
	if opts.CategoryPolicy != CategoryPolicyAutoCreate && opts.CategoryPolicy != CategoryPolicyReject {
		return nil, fmt.Errorf("unknown category policy '%s'", opts.CategoryPolicy)
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportMalformed, err)
	}
	if len(records) == 0 {
		return nil, ErrImportEmptyFile
	}
	columns, err := parseHeader(records[0])
	if err != nil {
		return nil, err
	}
	if len(records) == 1 {
		return nil, ErrImportEmptyFile
	}

	categories, err := s.categoryRepo.GetCategories()
	if err != nil {
		return nil, err
	}
	known := make(map[string]int64, len(categories))
	for _, category := range categories {
		known[strings.ToLower(category.Name)] = category.ID
	}

	// Validation pass: no side effects, every row classified.
	results := make([]RowResult, 0, len(records)-1)
	for i, record := range records[1:] {
		fields := make(map[string]string, len(columns))
		for idx, canonical := range columns {
			if idx < len(record) {
				fields[canonical] = record[idx]
			}
		}
		results = append(results, ValidateRow(fields, i+2, known, opts))
	}

	summary := &ImportSummary{TotalRows: len(results), CreatedCategories: []string{}, Errors: []RowError{}}
	for _, result := range results {
		summary.Errors = append(summary.Errors, result.Errors...)
	}

	// Commit pass, stage one: create each distinct new category. A failed
	// create fails every row that needed it, not the whole batch.
	failedCategories := make(map[string]bool)
	if opts.CategoryPolicy == CategoryPolicyAutoCreate {
		for i := range results {
			if !results[i].Valid() || !results[i].NewCategory {
				continue
			}
			key := strings.ToLower(results[i].Category)
			if _, ok := known[key]; ok || failedCategories[key] {
				continue
			}
			category := &models.Category{Name: results[i].Category}
			if _, err := s.categoryRepo.CreateCategory(s.db, category); err != nil {
				// Concurrent import may have created it first.
				if existing, lookupErr := s.categoryRepo.GetCategoryByName(results[i].Category); lookupErr == nil {
					known[key] = existing.ID
					continue
				}
				failedCategories[key] = true
				continue
			}
			known[key] = category.ID
			summary.CreatedCategories = append(summary.CreatedCategories, category.Name)
		}
	}

	// Commit pass, stage two: insert valid rows one at a time, best effort.
	processed := 0
	for i := range results {
		result := &results[i]
		if !result.Valid() {
			summary.FailedCount++
			processed++
			reportProgress(progress, processed, len(results))
			continue
		}
		if result.NewCategory {
			id, ok := known[strings.ToLower(result.Category)]
			if !ok {
				summary.FailedCount++
				summary.Errors = append(summary.Errors, RowError{
					Row: result.Row, Field: "category",
					Message: fmt.Sprintf("could not create category '%s'", result.Category),
				})
				processed++
				reportProgress(progress, processed, len(results))
				continue
			}
			result.Product.CategoryID = id
		}
		if _, err := s.productRepo.CreateProduct(s.db, &result.Product); err != nil {
			summary.FailedCount++
			summary.Errors = append(summary.Errors, RowError{Row: result.Row, Field: "name", Message: importFailureMessage(err)})
		} else {
			summary.SuccessCount++
		}
		processed++
		reportProgress(progress, processed, len(results))
	}

	return summary, nil
}

func reportProgress(progress ImportProgressFunc, processed, total int) {
	if progress != nil {
		progress(processed, total)
	}
}

func importFailureMessage(err error) string {
	if errors.Is(err, repositories.ErrDuplicateKey) {
		return "duplicate product"
	}
	return "could not save product"
}

// templateHeader is the canonical column order produced by Template and
// accepted by the validator.
var templateHeader = []string{"name", "brand", "category", "barcode", "buying_price", "selling_price", "stock", "reorder_level", "supplier"}

func (s *importService) Template() string {
	var builder strings.Builder
	writer := csv.NewWriter(&builder)
	writer.Write(templateHeader)
	writer.Write([]string{"Sugar 1kg", "Kabras", "Groceries", "6161100101012", "120.00", "145.00", "40", "10", "Kabras Distributors"})
	writer.Write([]string{"Bar Soap 800g", "Menengai", "Household", "", "95.50", "115.00", "25", "5", ""})
	writer.Flush()
	return builder.String()
}
