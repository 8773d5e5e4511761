package services

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"pos_backend/internal/models"
)

func TestWriteSalesReportCSV(t *testing.T) {
	saleTime := time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)
	repo := &fakeReportRepo{
		salesRows: []models.SalesReportRow{
			{
				ReceiptNumber: "RCP-20260820-0001", SaleTime: saleTime,
				ProductName: "Sugar 1kg", Quantity: 2, UnitPrice: 145,
				Subtotal: 290, VATAmount: 40, NetAmount: 250,
				PaymentMethod: "cash", Cashier: "jane", SaleTotal: 290,
			},
		},
	}
	svc := NewReportService(repo, newFakeProductRepo())

	var buf bytes.Buffer
	if err := svc.WriteSalesReportCSV(&buf, models.ReportFilters{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want header + 1 row", len(records))
	}
	if records[0][0] != "Receipt Number" || records[0][10] != "Total" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	row := records[1]
	if row[0] != "RCP-20260820-0001" || row[2] != "Sugar 1kg" || row[3] != "2" {
		t.Fatalf("unexpected row: %v", row)
	}
	if row[5] != "290.00" || row[6] != "40.00" || row[7] != "250.00" {
		t.Fatalf("money columns not formatted to cents: %v", row)
	}
}

func TestWriteProductSummaryCSVRanksAndComputesProfit(t *testing.T) {
	repo := &fakeReportRepo{
		summaryRows: []models.ProductSummaryRow{
			// Already ordered by gross revenue, as the query guarantees.
			{ProductName: "Sugar 1kg", QuantitySold: 10, TimesSold: 6, GrossRevenue: 1450, VATAmount: 200, NetRevenue: 1250, BuyingPrice: 100},
			{ProductName: "Salt 500g", QuantitySold: 4, TimesSold: 4, GrossRevenue: 48, VATAmount: 6.62, NetRevenue: 41.38, BuyingPrice: 8},
		},
	}
	svc := NewReportService(repo, newFakeProductRepo())

	var buf bytes.Buffer
	if err := svc.WriteProductSummaryCSV(&buf, models.ReportFilters{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}
	if records[1][0] != "1" || records[2][0] != "2" {
		t.Fatalf("rank column wrong: %v / %v", records[1][0], records[2][0])
	}
	// Profit = net revenue - buying price * quantity sold.
	if records[1][7] != "250.00" {
		t.Fatalf("got profit %s, want 250.00", records[1][7])
	}
	// Avg price = gross / quantity sold.
	if records[1][8] != "145.00" {
		t.Fatalf("got avg price %s, want 145.00", records[1][8])
	}
}

func TestGetLowStockProducts(t *testing.T) {
	productRepo := newFakeProductRepo()
	productRepo.lowStock = []models.Product{{Name: "Sugar 1kg", Stock: 2, ReorderLevel: 10}}
	svc := NewReportService(&fakeReportRepo{}, productRepo)

	products, err := svc.GetLowStockProducts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Sugar 1kg" {
		t.Fatalf("unexpected products: %+v", products)
	}
}
