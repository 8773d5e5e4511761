package handlers

import (
	"net/http"

	"pos_backend/internal/models"
	"pos_backend/internal/services"
	"pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler holds the report service.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

func (h *ReportHandler) reportFilters(c *gin.Context) (models.ReportFilters, bool) {
	var filters models.ReportFilters
	startDate, ok := parseDateQuery(c, "start_date")
	if !ok {
		return filters, false
	}
	filters.StartDate = startDate
	endDate, ok := parseDateQuery(c, "end_date")
	if !ok {
		return filters, false
	}
	filters.EndDate = endDate
	return filters, true
}

// ExportSalesReport streams the sales report CSV, one row per sale line item.
func (h *ReportHandler) ExportSalesReport(c *gin.Context) {
	filters, ok := h.reportFilters(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="sales_report.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := h.reportService.WriteSalesReportCSV(c.Writer, filters); err != nil {
		// Headers are already written; log and close.
		utils.LogError(err, "ExportSalesReport: Error writing CSV")
	}
}

// ExportProductSummary streams the product sales summary CSV ranked by gross
// revenue.
func (h *ReportHandler) ExportProductSummary(c *gin.Context) {
	filters, ok := h.reportFilters(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="product_sales_summary.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := h.reportService.WriteProductSummaryCSV(c.Writer, filters); err != nil {
		utils.LogError(err, "ExportProductSummary: Error writing CSV")
	}
}

// GetSalesReport returns the sales report rows as JSON.
func (h *ReportHandler) GetSalesReport(c *gin.Context) {
	filters, ok := h.reportFilters(c)
	if !ok {
		return
	}
	reportRows, err := h.reportService.GetSalesReport(filters)
	if err != nil {
		utils.LogError(err, "GetSalesReport: Error from reportService.GetSalesReport")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch sales report.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, reportRows)
}

// GetProductSummary returns the product sales summary rows as JSON.
func (h *ReportHandler) GetProductSummary(c *gin.Context) {
	filters, ok := h.reportFilters(c)
	if !ok {
		return
	}
	summaryRows, err := h.reportService.GetProductSummary(filters)
	if err != nil {
		utils.LogError(err, "GetProductSummary: Error from reportService.GetProductSummary")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch product summary.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, summaryRows)
}

// GetLowStockProducts lists products at or below their reorder level.
func (h *ReportHandler) GetLowStockProducts(c *gin.Context) {
	products, err := h.reportService.GetLowStockProducts()
	if err != nil {
		utils.LogError(err, "GetLowStockProducts: Error from reportService.GetLowStockProducts")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch low stock products.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, products)
}
