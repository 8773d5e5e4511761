package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func importHeader() string {
	return "name,brand,category,barcode,buying_price,selling_price,stock,reorder_level,supplier\n"
}

func newImportService(productRepo *fakeProductRepo, categoryRepo *fakeCategoryRepo) ImportService {
	return NewImportService(nil, productRepo, categoryRepo)
}

func TestValidateRowMissingName(t *testing.T) {
	known := map[string]int64{"groceries": 1}
	result := ValidateRow(map[string]string{
		"name": "  ", "category": "Groceries",
		"buying_price": "10", "selling_price": "15", "stock": "5",
	}, 2, known, ImportOptions{})

	if result.Valid() {
		t.Fatal("row with blank name passed validation")
	}
	if len(result.Errors) != 1 || result.Errors[0].Field != "name" || result.Errors[0].Message != "required" {
		t.Fatalf("got errors %+v, want single required-name error", result.Errors)
	}
	if result.Errors[0].Row != 2 {
		t.Fatalf("got row %d, want 2", result.Errors[0].Row)
	}
}

func TestValidateRowAccumulatesMultipleErrors(t *testing.T) {
	result := ValidateRow(map[string]string{
		"name": "", "category": "",
		"buying_price": "abc", "selling_price": "-4", "stock": "",
	}, 5, map[string]int64{}, ImportOptions{})

	if result.Valid() {
		t.Fatal("row with five bad fields passed validation")
	}
	if len(result.Errors) != 5 {
		t.Fatalf("got %d errors, want 5: %+v", len(result.Errors), result.Errors)
	}
	for _, rowErr := range result.Errors {
		if rowErr.Row != 5 {
			t.Fatalf("error on field %s carries row %d, want 5", rowErr.Field, rowErr.Row)
		}
	}
}

func TestValidateRowKnownCategoryIsCaseInsensitive(t *testing.T) {
	known := map[string]int64{"groceries": 7}
	result := ValidateRow(map[string]string{
		"name": "Sugar", "category": "  GROCERIES ",
		"buying_price": "10", "selling_price": "15", "stock": "5",
	}, 2, known, ImportOptions{})

	if !result.Valid() {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}
	if result.NewCategory {
		t.Fatal("known category classified as new")
	}
	if result.Product.CategoryID != 7 {
		t.Fatalf("got category ID %d, want 7", result.Product.CategoryID)
	}
}

func TestValidateRowUnknownCategoryPolicies(t *testing.T) {
	row := map[string]string{
		"name": "Sugar", "category": "Spices",
		"buying_price": "10", "selling_price": "15", "stock": "5",
	}

	autoResult := ValidateRow(row, 2, map[string]int64{}, ImportOptions{CategoryPolicy: CategoryPolicyAutoCreate})
	if !autoResult.Valid() || !autoResult.NewCategory {
		t.Fatalf("auto_create: got valid=%t new=%t, want valid new-category row", autoResult.Valid(), autoResult.NewCategory)
	}

	rejectResult := ValidateRow(row, 2, map[string]int64{}, ImportOptions{CategoryPolicy: CategoryPolicyReject})
	if rejectResult.Valid() {
		t.Fatal("reject policy accepted an unknown category")
	}
	if rejectResult.Errors[0].Field != "category" {
		t.Fatalf("got error field %s, want category", rejectResult.Errors[0].Field)
	}
}

func TestValidateRowNumericStrictness(t *testing.T) {
	row := map[string]string{
		"name": "Sugar", "category": "Groceries",
		"buying_price": "10", "selling_price": "15", "stock": "5.4",
	}
	known := map[string]int64{"groceries": 1}

	loose := ValidateRow(row, 2, known, ImportOptions{StrictIntegers: false})
	if !loose.Valid() {
		t.Fatalf("decimal-tolerant mode rejected 5.4: %+v", loose.Errors)
	}
	if loose.Product.Stock != 5 {
		t.Fatalf("got stock %d, want 5", loose.Product.Stock)
	}

	strict := ValidateRow(row, 2, known, ImportOptions{StrictIntegers: true})
	if strict.Valid() {
		t.Fatal("strict mode accepted a decimal stock")
	}
}

func TestValidateRowReorderLevelDefaults(t *testing.T) {
	result := ValidateRow(map[string]string{
		"name": "Sugar", "category": "Groceries",
		"buying_price": "10", "selling_price": "15", "stock": "5",
		"reorder_level": "",
	}, 2, map[string]int64{"groceries": 1}, ImportOptions{})

	if !result.Valid() {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}
	if result.Product.ReorderLevel != 10 {
		t.Fatalf("got reorder level %d, want default 10", result.Product.ReorderLevel)
	}
}

func TestImportProductsRowNumbersStartAtTwo(t *testing.T) {
	svc := newImportService(newFakeProductRepo(), newFakeCategoryRepo("Groceries"))
	csv := importHeader() + ",,Groceries,,10,15,5,,\n"

	summary, err := svc.ImportProducts(strings.NewReader(csv), ImportOptions{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary.Errors) == 0 || summary.Errors[0].Row != 2 {
		t.Fatalf("first data row should be row 2, got %+v", summary.Errors)
	}
}

func TestImportProductsBestEffort(t *testing.T) {
	productRepo := newFakeProductRepo()
	productRepo.failNames["Item 5"] = true
	svc := newImportService(productRepo, newFakeCategoryRepo("Groceries"))

	csv := importHeader()
	for i := 1; i <= 10; i++ {
		csv += fmt.Sprintf("Item %d,,Groceries,,10,15,5,,\n", i)
	}

	var lastProcessed, lastTotal int
	summary, err := svc.ImportProducts(strings.NewReader(csv), ImportOptions{}, func(processed, total int) {
		lastProcessed, lastTotal = processed, total
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.SuccessCount != 9 || summary.FailedCount != 1 {
		t.Fatalf("got success=%d failed=%d, want 9/1", summary.SuccessCount, summary.FailedCount)
	}
	if lastProcessed != 10 || lastTotal != 10 {
		t.Fatalf("progress ended at %d/%d, want 10/10", lastProcessed, lastTotal)
	}
	// The mid-batch failure must not abort the rows after it.
	if len(productRepo.byID) != 9 {
		t.Fatalf("got %d stored products, want 9", len(productRepo.byID))
	}
}

func TestImportProductsAutoCreatesCategoryOnce(t *testing.T) {
	categoryRepo := newFakeCategoryRepo("Groceries")
	svc := newImportService(newFakeProductRepo(), categoryRepo)

	csv := importHeader() +
		"Cinnamon,,Spices,,10,15,5,,\n" +
		"Turmeric,,SPICES,,9,14,7,,\n"

	summary, err := svc.ImportProducts(strings.NewReader(csv), ImportOptions{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.SuccessCount != 2 {
		t.Fatalf("got success=%d, want 2: %+v", summary.SuccessCount, summary.Errors)
	}
	if len(categoryRepo.created) != 1 {
		t.Fatalf("created categories %v, want exactly one", categoryRepo.created)
	}
}

func TestImportProductsHeaderAliases(t *testing.T) {
	svc := newImportService(newFakeProductRepo(), newFakeCategoryRepo("Groceries"))
	csv := "name,cost_price,selling_price,quantity_in_stock,low_stock_threshold,category\n" +
		"Sugar 1kg,10,15,5,3,Groceries\n"

	summary, err := svc.ImportProducts(strings.NewReader(csv), ImportOptions{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.SuccessCount != 1 {
		t.Fatalf("aliased headers not accepted: %+v", summary.Errors)
	}
}

func TestImportProductsRejectsMissingHeader(t *testing.T) {
	svc := newImportService(newFakeProductRepo(), newFakeCategoryRepo())
	csv := "name,brand\nSugar,Kabras\n"

	_, err := svc.ImportProducts(strings.NewReader(csv), ImportOptions{}, nil)
	if !errors.Is(err, ErrImportBadHeader) {
		t.Fatalf("got %v, want ErrImportBadHeader", err)
	}
}

func TestImportProductsRejectsEmptyFile(t *testing.T) {
	svc := newImportService(newFakeProductRepo(), newFakeCategoryRepo())

	if _, err := svc.ImportProducts(strings.NewReader(""), ImportOptions{}, nil); !errors.Is(err, ErrImportEmptyFile) {
		t.Fatalf("empty input: got %v, want ErrImportEmptyFile", err)
	}
	if _, err := svc.ImportProducts(strings.NewReader(importHeader()), ImportOptions{}, nil); !errors.Is(err, ErrImportEmptyFile) {
		t.Fatalf("header only: got %v, want ErrImportEmptyFile", err)
	}
}

func TestTemplateRoundTrips(t *testing.T) {
	svc := newImportService(newFakeProductRepo(), newFakeCategoryRepo("Groceries", "Household"))

	summary, err := svc.ImportProducts(strings.NewReader(svc.Template()), ImportOptions{}, nil)
	if err != nil {
		t.Fatalf("template did not parse: %v", err)
	}
	if summary.FailedCount != 0 {
		t.Fatalf("template sample rows failed validation: %+v", summary.Errors)
	}
	if summary.SuccessCount == 0 {
		t.Fatal("template has no sample rows")
	}
}
