package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"pos_backend/internal/models"
	"pos_backend/internal/repositories"
)

// ReportService produces the CSV report exports and the low-stock listing.
type ReportService interface {
	// WriteSalesReportCSV streams the sales report, one row per sale line item.
	WriteSalesReportCSV(writer io.Writer, filters models.ReportFilters) error
	// WriteProductSummaryCSV streams the product sales summary ranked by
	// gross revenue.
	WriteProductSummaryCSV(writer io.Writer, filters models.ReportFilters) error
	GetSalesReport(filters models.ReportFilters) ([]models.SalesReportRow, error)
	GetProductSummary(filters models.ReportFilters) ([]models.ProductSummaryRow, error)
	GetLowStockProducts() ([]models.Product, error)
}

type reportService struct {
	reportRepo  repositories.ReportRepository
	productRepo repositories.ProductRepository
}

// NewReportService creates a new instance of ReportService.
func NewReportService(reportRepo repositories.ReportRepository, productRepo repositories.ProductRepository) ReportService {
	return &reportService{reportRepo: reportRepo, productRepo: productRepo}
}

var salesReportHeader = []string{
	"Receipt Number", "Date", "Product", "Quantity", "Price",
	"Subtotal", "VAT", "Net", "Payment Method", "Cashier", "Total",
}

func (s *reportService) WriteSalesReportCSV(writer io.Writer, filters models.ReportFilters) error {
	reportRows, err := s.reportRepo.GetSalesReportRows(filters)
	if err != nil {
		return err
	}

	csvWriter := csv.NewWriter(writer)
	if err := csvWriter.Write(salesReportHeader); err != nil {
		return fmt.Errorf("writing sales report header: %w", err)
	}
	for _, row := range reportRows {
		record := []string{
			row.ReceiptNumber,
			row.SaleTime.Format("2006-01-02 15:04"),
			row.ProductName,
			strconv.Itoa(row.Quantity),
			money(row.UnitPrice),
			money(row.Subtotal),
			money(row.VATAmount),
			money(row.NetAmount),
			row.PaymentMethod,
			row.Cashier,
			money(row.SaleTotal),
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("writing sales report row: %w", err)
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

var productSummaryHeader = []string{
	"Rank", "Product", "Quantity Sold", "Times Sold",
	"Revenue (Gross)", "VAT", "Net Revenue", "Profit", "Avg Price",
}

func (s *reportService) WriteProductSummaryCSV(writer io.Writer, filters models.ReportFilters) error {
	summaryRows, err := s.reportRepo.GetProductSummary(filters)
	if err != nil {
		return err
	}

	csvWriter := csv.NewWriter(writer)
	if err := csvWriter.Write(productSummaryHeader); err != nil {
		return fmt.Errorf("writing product summary header: %w", err)
	}
	for i, row := range summaryRows {
		profit := row.NetRevenue - row.BuyingPrice*float64(row.QuantitySold)
		avgPrice := 0.0
		if row.QuantitySold > 0 {
			avgPrice = row.GrossRevenue / float64(row.QuantitySold)
		}
		record := []string{
			strconv.Itoa(i + 1),
			row.ProductName,
			strconv.Itoa(row.QuantitySold),
			strconv.Itoa(row.TimesSold),
			money(row.GrossRevenue),
			money(row.VATAmount),
			money(row.NetRevenue),
			money(profit),
			money(avgPrice),
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("writing product summary row: %w", err)
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

func (s *reportService) GetSalesReport(filters models.ReportFilters) ([]models.SalesReportRow, error) {
	return s.reportRepo.GetSalesReportRows(filters)
}

func (s *reportService) GetProductSummary(filters models.ReportFilters) ([]models.ProductSummaryRow, error) {
	return s.reportRepo.GetProductSummary(filters)
}

func (s *reportService) GetLowStockProducts() ([]models.Product, error) {
	return s.productRepo.GetLowStockProducts()
}

func money(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
