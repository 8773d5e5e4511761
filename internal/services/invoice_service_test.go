package services

import (
	"errors"
	"testing"
	"time"

	"pos_backend/internal/models"
)

func TestBuildInvoiceItemsAggregatesAreSumsOfLines(t *testing.T) {
	requests := []InvoiceItemRequest{
		{Description: "Consulting", Quantity: 3, UnitPrice: 1333.33},
		{Description: "Installation", Quantity: 1, UnitPrice: 450.01},
		{Description: "Cabling (m)", Quantity: 25, UnitPrice: 7.77},
	}
	items, subtotal, vat, total := BuildInvoiceItems(requests)

	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	var sumSubtotal, sumVAT, sumTotal float64
	for _, item := range items {
		sumSubtotal += item.Subtotal
		sumVAT += item.VATAmount
		sumTotal += item.TotalPrice
	}
	if !almostEqual(subtotal, sumSubtotal) {
		t.Fatalf("aggregate subtotal %v != sum of lines %v", subtotal, sumSubtotal)
	}
	if !almostEqual(vat, sumVAT) {
		t.Fatalf("aggregate VAT %v != sum of lines %v", vat, sumVAT)
	}
	if !almostEqual(total, sumTotal) {
		t.Fatalf("aggregate total %v != sum of lines %v", total, sumTotal)
	}
	// Exclusive VAT: every line total carries VAT on top.
	for _, item := range items {
		if !almostEqual(item.TotalPrice, item.Subtotal+item.VATAmount) {
			t.Fatalf("line %q: total %v != subtotal %v + VAT %v", item.Description, item.TotalPrice, item.Subtotal, item.VATAmount)
		}
	}
}

func sentInvoice(total, paid float64, dueDate time.Time) *models.Invoice {
	return &models.Invoice{
		Status:      InvoiceStatusSent,
		TotalAmount: total,
		AmountPaid:  paid,
		BalanceDue:  total - paid,
		DueDate:     dueDate,
	}
}

func TestValidatePaymentRejectsNonPositiveAmount(t *testing.T) {
	invoice := sentInvoice(1000, 0, time.Now().Add(24*time.Hour))

	for _, amount := range []float64{0, -5} {
		if err := ValidatePayment(invoice, amount); !errors.Is(err, ErrInvalidPaymentAmount) {
			t.Fatalf("amount %v: got %v, want ErrInvalidPaymentAmount", amount, err)
		}
	}
	if invoice.AmountPaid != 0 || invoice.BalanceDue != 1000 || invoice.Status != InvoiceStatusSent {
		t.Fatal("invoice mutated by rejected payment")
	}
}

func TestValidatePaymentRejectsOverpayment(t *testing.T) {
	invoice := sentInvoice(1000, 400, time.Now().Add(24*time.Hour))

	if err := ValidatePayment(invoice, 600.01); !errors.Is(err, ErrOverpayment) {
		t.Fatalf("got %v, want ErrOverpayment", err)
	}
	if err := ValidatePayment(invoice, 600); err != nil {
		t.Fatalf("exact balance payment rejected: %v", err)
	}
	if invoice.AmountPaid != 400 || invoice.BalanceDue != 600 || invoice.Status != InvoiceStatusSent {
		t.Fatal("invoice mutated by payment validation")
	}
}

func TestValidatePaymentRejectsDraftAndTerminal(t *testing.T) {
	cases := []struct {
		status string
		want   error
	}{
		{InvoiceStatusDraft, ErrInvoiceNotPayable},
		{InvoiceStatusPaid, ErrInvoiceTerminal},
		{InvoiceStatusCancelled, ErrInvoiceTerminal},
	}
	for _, tc := range cases {
		invoice := &models.Invoice{Status: tc.status, TotalAmount: 100, BalanceDue: 100}
		if err := ValidatePayment(invoice, 50); !errors.Is(err, tc.want) {
			t.Fatalf("status %s: got %v, want %v", tc.status, err, tc.want)
		}
	}
}

func TestRefreshedStatusOverdueDetection(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	sent := sentInvoice(1000, 200, now.Add(-time.Hour))
	if got := RefreshedStatus(sent, now); got != InvoiceStatusOverdue {
		t.Fatalf("past-due sent invoice: got %s, want overdue", got)
	}

	notDue := sentInvoice(1000, 200, now.Add(time.Hour))
	if got := RefreshedStatus(notDue, now); got != InvoiceStatusSent {
		t.Fatalf("sent invoice before due date: got %s, want sent", got)
	}
}

func TestRefreshedStatusIsIdempotent(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	invoice := sentInvoice(1000, 200, now.Add(-time.Hour))
	invoice.Status = RefreshedStatus(invoice, now)

	if got := RefreshedStatus(invoice, now); got != invoice.Status {
		t.Fatalf("second refresh changed status: %s -> %s", invoice.Status, got)
	}
}

func TestRefreshedStatusPaidStaysPaidPastDueDate(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	invoice := &models.Invoice{
		Status:      InvoiceStatusPaid,
		TotalAmount: 1000,
		AmountPaid:  1000,
		BalanceDue:  0,
		DueDate:     now.Add(-48 * time.Hour),
	}
	if got := RefreshedStatus(invoice, now); got != InvoiceStatusPaid {
		t.Fatalf("paid invoice past due date: got %s, want paid", got)
	}
}

func TestRefreshedStatusSettlesZeroBalanceToPaid(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	invoice := sentInvoice(1000, 1000, now.Add(-time.Hour))
	if got := RefreshedStatus(invoice, now); got != InvoiceStatusPaid {
		t.Fatalf("settled invoice: got %s, want paid", got)
	}
}

func TestRefreshedStatusLeavesDraftAndCancelled(t *testing.T) {
	now := time.Now()
	for _, status := range []string{InvoiceStatusDraft, InvoiceStatusCancelled} {
		invoice := &models.Invoice{Status: status, DueDate: now.Add(-time.Hour)}
		if got := RefreshedStatus(invoice, now); got != status {
			t.Fatalf("status %s: got %s, want unchanged", status, got)
		}
	}
}
