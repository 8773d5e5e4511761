package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"pos_backend/internal/repositories"
	"pos_backend/internal/services"
	"pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// InvoiceHandler holds the invoice service.
type InvoiceHandler struct {
	invoiceService services.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(is services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: is}
}

func respondInvoiceError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, services.ErrInvoiceNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Invoice not found.", ""))
	case errors.Is(err, services.ErrInvoiceNotDraft):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Invoice is no longer a draft.", err.Error()))
	case errors.Is(err, services.ErrInvoiceTerminal):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Invoice is in a terminal status.", err.Error()))
	case errors.Is(err, services.ErrInvoiceNotPayable):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Invoice must be finalized before payments are recorded.", err.Error()))
	case errors.Is(err, services.ErrInvalidPaymentAmount), errors.Is(err, services.ErrOverpayment), errors.Is(err, services.ErrInvalidDueDate):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request.", err.Error()))
	default:
		utils.LogError(err, action)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Operation failed.", "Internal error"))
	}
}

// CreateDraft creates a new draft invoice owned by the authenticated user.
func (h *InvoiceHandler) CreateDraft(c *gin.Context) {
	var req services.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.CreateDraft(req, userID)
	if err != nil {
		respondInvoiceError(c, err, "CreateDraft: Error from invoiceService.CreateDraft")
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

// UpdateDraft replaces the editable fields and line items of a draft.
func (h *InvoiceHandler) UpdateDraft(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req services.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	invoice, err := h.invoiceService.UpdateDraft(id, req)
	if err != nil {
		respondInvoiceError(c, err, "UpdateDraft: Error from invoiceService.UpdateDraft")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// Finalize assigns the invoice number and moves the draft to sent.
func (h *InvoiceHandler) Finalize(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	invoice, err := h.invoiceService.Finalize(id)
	if err != nil {
		respondInvoiceError(c, err, "Finalize: Error from invoiceService.Finalize")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// RecordPayment appends a payment against a finalized invoice.
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req services.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	invoice, err := h.invoiceService.RecordPayment(id, req)
	if err != nil {
		respondInvoiceError(c, err, "RecordPayment: Error from invoiceService.RecordPayment")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// Cancel moves a non-terminal invoice to cancelled. Admin only (enforced by
// route middleware).
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	invoice, err := h.invoiceService.Cancel(id)
	if err != nil {
		respondInvoiceError(c, err, "Cancel: Error from invoiceService.Cancel")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// DeleteDraft removes a draft invoice and its items.
func (h *InvoiceHandler) DeleteDraft(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.invoiceService.DeleteDraft(id); err != nil {
		respondInvoiceError(c, err, "DeleteDraft: Error from invoiceService.DeleteDraft")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted successfully"})
}

// GetInvoiceByID fetches one invoice with items and payments. Viewing an
// invoice past its due date flips it to overdue.
func (h *InvoiceHandler) GetInvoiceByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	invoice, err := h.invoiceService.GetInvoiceByID(id)
	if err != nil {
		respondInvoiceError(c, err, "GetInvoiceByID: Error from invoiceService.GetInvoiceByID")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// GetInvoices lists invoices with optional status filter.
func (h *InvoiceHandler) GetInvoices(c *gin.Context) {
	var filters repositories.InvoiceFilters

	if status := c.Query("status"); status != "" {
		filters.Status = &status
	}
	page, pageSize, ok := parsePagination(c)
	if !ok {
		return
	}
	filters.Page = page
	filters.PageSize = pageSize

	invoices, totalCount, err := h.invoiceService.GetInvoices(filters)
	if err != nil {
		utils.LogError(err, "GetInvoices: Error from invoiceService.GetInvoices")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch invoices.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":        invoices,
		"total_count": totalCount,
		"page":        filters.Page,
		"page_size":   filters.PageSize,
	})
}

// Print renders the fixed-layout plain-text invoice for printing.
func (h *InvoiceHandler) Print(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	invoice, err := h.invoiceService.GetInvoiceByID(id)
	if err != nil {
		respondInvoiceError(c, err, "Print: Error from invoiceService.GetInvoiceByID")
		return
	}

	var buf bytes.Buffer
	if err := services.RenderInvoice(&buf, invoice); err != nil {
		utils.LogError(err, "Print: Error rendering invoice")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to render invoice.", "Internal error"))
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}
