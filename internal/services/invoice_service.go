package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pos_backend/internal/models"
	"pos_backend/internal/repositories"

	"github.com/google/uuid"
)

// Invoice statuses.
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusSent      = "sent"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"
)

var (
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrInvoiceNotDraft      = errors.New("invoice is no longer a draft")
	ErrInvoiceTerminal      = errors.New("invoice is in a terminal status")
	ErrInvoiceNotPayable    = errors.New("invoice must be finalized before payments are recorded")
	ErrInvalidPaymentAmount = errors.New("payment amount must be greater than zero")
	ErrOverpayment          = errors.New("payment amount exceeds the balance due")
	ErrInvalidDueDate       = errors.New("due date must not be before the issue date")
)

// InvoiceItemRequest is one line of an invoice draft.
type InvoiceItemRequest struct {
	Description string  `json:"description" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" binding:"gte=0"`
}

// InvoiceRequest creates or fully replaces a draft invoice.
type InvoiceRequest struct {
	CustomerName    string               `json:"customer_name" binding:"required"`
	CustomerEmail   *string              `json:"customer_email,omitempty" binding:"omitempty,email"`
	CustomerPhone   *string              `json:"customer_phone,omitempty"`
	CustomerAddress *string              `json:"customer_address,omitempty"`
	IssueDate       time.Time            `json:"issue_date" binding:"required"`
	DueDate         time.Time            `json:"due_date" binding:"required"`
	Notes           *string              `json:"notes,omitempty"`
	Items           []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
}

// PaymentRequest records a payment against a finalized invoice.
type PaymentRequest struct {
	Amount      float64    `json:"amount" binding:"required"`
	Method      string     `json:"method" binding:"required,oneof=cash card mpesa bank_transfer"`
	Reference   string     `json:"reference"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
}

// InvoiceService defines the interface for the invoice lifecycle.
type InvoiceService interface {
	CreateDraft(req InvoiceRequest, createdBy int64) (*models.Invoice, error)
	// UpdateDraft replaces all editable fields and regenerates the line
	// items. Only drafts are editable.
	UpdateDraft(id int64, req InvoiceRequest) (*models.Invoice, error)
	// Finalize assigns the invoice number and moves the draft to sent.
	Finalize(id int64) (*models.Invoice, error)
	// RecordPayment appends a payment and advances the status to paid when
	// the balance reaches exactly zero. Overpayment is rejected, not clamped.
	RecordPayment(id int64, req PaymentRequest) (*models.Invoice, error)
	// Cancel moves a non-terminal invoice to cancelled. Admin only; the
	// handler enforces the role.
	Cancel(id int64) (*models.Invoice, error)
	DeleteDraft(id int64) error
	// GetInvoiceByID loads the invoice with items and payments, refreshing
	// the overdue status as a side effect when the due date has passed.
	GetInvoiceByID(id int64) (*models.Invoice, error)
	GetInvoices(filters repositories.InvoiceFilters) ([]models.Invoice, int, error)
}

type invoiceService struct {
	db           *sql.DB
	invoiceRepo  repositories.InvoiceRepository
	sequenceRepo repositories.SequenceRepository
}

// NewInvoiceService creates a new instance of InvoiceService.
func NewInvoiceService(db *sql.DB, invoiceRepo repositories.InvoiceRepository, sequenceRepo repositories.SequenceRepository) InvoiceService {
	return &invoiceService{db: db, invoiceRepo: invoiceRepo, sequenceRepo: sequenceRepo}
}

// BuildInvoiceItems computes the money fields for each requested line using
// exclusive VAT. Aggregates are sums of the per-line values.
func BuildInvoiceItems(requests []InvoiceItemRequest) (items []models.InvoiceItem, subtotal, vat, total float64) {
	for _, req := range requests {
		amounts := ComputeLine(req.Quantity, req.UnitPrice, VATExclusive)
		items = append(items, models.InvoiceItem{
			Description: req.Description,
			Quantity:    req.Quantity,
			UnitPrice:   req.UnitPrice,
			Subtotal:    amounts.Subtotal,
			VATAmount:   amounts.VATAmount,
			TotalPrice:  amounts.Total,
		})
		subtotal += amounts.Subtotal
		vat += amounts.VATAmount
		total += amounts.Total
	}
	return items, roundCents(subtotal), roundCents(vat), roundCents(total)
}

// ValidatePayment checks a payment amount against the invoice without
// mutating it.
func ValidatePayment(invoice *models.Invoice, amount float64) error {
	switch invoice.Status {
	case InvoiceStatusDraft:
		return ErrInvoiceNotPayable
	case InvoiceStatusPaid, InvoiceStatusCancelled:
		return ErrInvoiceTerminal
	}
	if amount <= 0 {
		return ErrInvalidPaymentAmount
	}
	if amount > invoice.BalanceDue {
		return fmt.Errorf("%w: balance due is %.2f", ErrOverpayment, invoice.BalanceDue)
	}
	return nil
}

// RefreshedStatus derives the status an invoice should hold at the given
// time. Paid and cancelled are terminal; a sent or overdue invoice flips to
// overdue once the due date passes. The function is pure and idempotent.
func RefreshedStatus(invoice *models.Invoice, now time.Time) string {
	switch invoice.Status {
	case InvoiceStatusSent, InvoiceStatusOverdue:
		if invoice.BalanceDue == 0 {
			return InvoiceStatusPaid
		}
		if now.After(invoice.DueDate) {
			return InvoiceStatusOverdue
		}
		return invoice.Status
	default:
		return invoice.Status
	}
}

func (s *invoiceService) CreateDraft(req InvoiceRequest, createdBy int64) (*models.Invoice, error) {
	if req.DueDate.Before(req.IssueDate) {
		return nil, ErrInvalidDueDate
	}
	items, subtotal, vat, total := BuildInvoiceItems(req.Items)

	invoice := &models.Invoice{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		IssueDate:       req.IssueDate,
		DueDate:         req.DueDate,
		Status:          InvoiceStatusDraft,
		Subtotal:        subtotal,
		VATAmount:       vat,
		TotalAmount:     total,
		AmountPaid:      0,
		BalanceDue:      total,
		Notes:           req.Notes,
		CreatedBy:       createdBy,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting invoice transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.invoiceRepo.CreateInvoice(tx, invoice); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].InvoiceID = invoice.ID
		if _, err := s.invoiceRepo.CreateInvoiceItem(tx, &items[i]); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing invoice transaction: %w", err)
	}
	invoice.Items = items
	return invoice, nil
}

func (s *invoiceService) UpdateDraft(id int64, req InvoiceRequest) (*models.Invoice, error) {
	invoice, err := s.loadInvoice(id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != InvoiceStatusDraft {
		return nil, ErrInvoiceNotDraft
	}
	if req.DueDate.Before(req.IssueDate) {
		return nil, ErrInvalidDueDate
	}

	items, subtotal, vat, total := BuildInvoiceItems(req.Items)
	invoice.CustomerName = req.CustomerName
	invoice.CustomerEmail = req.CustomerEmail
	invoice.CustomerPhone = req.CustomerPhone
	invoice.CustomerAddress = req.CustomerAddress
	invoice.IssueDate = req.IssueDate
	invoice.DueDate = req.DueDate
	invoice.Notes = req.Notes
	invoice.Subtotal = subtotal
	invoice.VATAmount = vat
	invoice.TotalAmount = total
	invoice.BalanceDue = total // drafts carry no payments

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting invoice transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.invoiceRepo.DeleteInvoiceItemsByInvoiceID(tx, id); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].InvoiceID = id
		if _, err := s.invoiceRepo.CreateInvoiceItem(tx, &items[i]); err != nil {
			return nil, err
		}
	}
	if err := s.invoiceRepo.UpdateInvoice(tx, invoice); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing invoice transaction: %w", err)
	}
	invoice.Items = items
	return invoice, nil
}

func (s *invoiceService) Finalize(id int64) (*models.Invoice, error) {
	invoice, err := s.loadInvoice(id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != InvoiceStatusDraft {
		return nil, ErrInvoiceNotDraft
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting finalize transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	day := now.Format("20060102")
	sequence, err := s.sequenceRepo.NextDocumentSequence(tx, repositories.SequenceKindInvoice, day)
	if err != nil {
		return nil, err
	}
	number := fmt.Sprintf("INV-%s-%04d", day, sequence)
	if err := s.invoiceRepo.SetInvoiceNumber(tx, id, number, InvoiceStatusSent, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing finalize transaction: %w", err)
	}

	invoice.InvoiceNumber = &number
	invoice.Status = InvoiceStatusSent
	invoice.UpdatedAt = now
	return invoice, nil
}

func (s *invoiceService) RecordPayment(id int64, req PaymentRequest) (*models.Invoice, error) {
	invoice, err := s.loadInvoice(id)
	if err != nil {
		return nil, err
	}
	if err := ValidatePayment(invoice, req.Amount); err != nil {
		return nil, err
	}

	paymentDate := time.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}
	reference := req.Reference
	if reference == "" {
		reference = uuid.NewString()
	}
	payment := &models.InvoicePayment{
		InvoiceID:   id,
		Amount:      req.Amount,
		Method:      req.Method,
		Reference:   reference,
		PaymentDate: paymentDate,
	}

	amountPaid := roundCents(invoice.AmountPaid + req.Amount)
	balanceDue := roundCents(invoice.TotalAmount - amountPaid)
	status := invoice.Status
	if balanceDue == 0 {
		status = InvoiceStatusPaid
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting payment transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.invoiceRepo.CreatePayment(tx, payment); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.UpdateInvoiceAmounts(tx, id, amountPaid, balanceDue, status, time.Now()); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing payment transaction: %w", err)
	}

	invoice.AmountPaid = amountPaid
	invoice.BalanceDue = balanceDue
	invoice.Status = status
	invoice.Payments = append(invoice.Payments, *payment)
	return invoice, nil
}

func (s *invoiceService) Cancel(id int64) (*models.Invoice, error) {
	invoice, err := s.loadInvoice(id)
	if err != nil {
		return nil, err
	}
	if invoice.Status == InvoiceStatusPaid || invoice.Status == InvoiceStatusCancelled {
		return nil, ErrInvoiceTerminal
	}
	if err := s.invoiceRepo.UpdateInvoiceStatus(s.db, id, InvoiceStatusCancelled, time.Now()); err != nil {
		return nil, err
	}
	invoice.Status = InvoiceStatusCancelled
	return invoice, nil
}

func (s *invoiceService) DeleteDraft(id int64) error {
	invoice, err := s.loadInvoice(id)
	if err != nil {
		return err
	}
	if invoice.Status != InvoiceStatusDraft {
		return ErrInvoiceNotDraft
	}
	return s.invoiceRepo.DeleteInvoice(s.db, id)
}

func (s *invoiceService) GetInvoiceByID(id int64) (*models.Invoice, error) {
	invoice, err := s.loadInvoice(id)
	if err != nil {
		return nil, err
	}

	// Overdue detection runs on every view. The write happens only when the
	// derived status differs, so repeated views do not bump updated_at.
	if refreshed := RefreshedStatus(invoice, time.Now()); refreshed != invoice.Status {
		if err := s.invoiceRepo.UpdateInvoiceStatus(s.db, id, refreshed, time.Now()); err != nil {
			return nil, err
		}
		invoice.Status = refreshed
	}

	items, err := s.invoiceRepo.GetInvoiceItemsByInvoiceID(id)
	if err != nil {
		return nil, err
	}
	payments, err := s.invoiceRepo.GetInvoicePaymentsByInvoiceID(id)
	if err != nil {
		return nil, err
	}
	invoice.Items = items
	invoice.Payments = payments
	return invoice, nil
}

func (s *invoiceService) GetInvoices(filters repositories.InvoiceFilters) ([]models.Invoice, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}
	return s.invoiceRepo.GetInvoices(filters)
}

func (s *invoiceService) loadInvoice(id int64) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetInvoiceByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return invoice, nil
}
