package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"pos_backend/internal/repositories"
	"pos_backend/internal/services"
	"pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SaleHandler holds the sale service.
type SaleHandler struct {
	saleService services.SaleService
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(ss services.SaleService) *SaleHandler {
	return &SaleHandler{saleService: ss}
}

// Checkout records a point-of-sale transaction for the authenticated cashier.
func (h *SaleHandler) Checkout(c *gin.Context) {
	var req services.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	cashierID, ok := currentUserID(c)
	if !ok {
		return
	}

	sale, err := h.saleService.Checkout(req, cashierID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCart), errors.Is(err, services.ErrInvalidQuantity):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid cart.", err.Error()))
		case errors.Is(err, services.ErrProductNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "One or more products not found.", err.Error()))
		case errors.Is(err, services.ErrInsufficientStock):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Insufficient stock for one or more items.", err.Error()))
		default:
			utils.LogError(err, "Checkout: Error from saleService.Checkout")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to record sale.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// GetSaleByID fetches one sale with its line items.
func (h *SaleHandler) GetSaleByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	sale, err := h.saleService.GetSaleByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Sale not found.", ""))
			return
		}
		utils.LogError(err, "GetSaleByID: Error from saleService.GetSaleByID")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch sale.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, sale)
}

// GetSales lists sales with optional cashier and date window filters.
func (h *SaleHandler) GetSales(c *gin.Context) {
	var filters repositories.SaleFilters

	if cashierIDStr := c.Query("cashier_id"); cashierIDStr != "" {
		cashierID, err := strconv.ParseInt(cashierIDStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid cashier_id format.", err.Error()))
			return
		}
		filters.CashierID = &cashierID
	}
	startDate, ok := parseDateQuery(c, "start_date")
	if !ok {
		return
	}
	filters.StartDate = startDate
	endDate, ok := parseDateQuery(c, "end_date")
	if !ok {
		return
	}
	filters.EndDate = endDate

	page, pageSize, ok := parsePagination(c)
	if !ok {
		return
	}
	filters.Page = page
	filters.PageSize = pageSize

	sales, totalCount, err := h.saleService.GetSales(filters)
	if err != nil {
		utils.LogError(err, "GetSales: Error from saleService.GetSales")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch sales.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":        sales,
		"total_count": totalCount,
		"page":        filters.Page,
		"page_size":   filters.PageSize,
	})
}
