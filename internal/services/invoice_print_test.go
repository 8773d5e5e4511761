package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"pos_backend/internal/models"
)

func TestRenderInvoice(t *testing.T) {
	number := "INV-20260820-0001"
	address := "12 Moi Avenue"
	invoice := &models.Invoice{
		InvoiceNumber:   &number,
		CustomerName:    "Acme Ltd",
		CustomerAddress: &address,
		IssueDate:       time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		DueDate:         time.Date(2026, 9, 19, 0, 0, 0, 0, time.UTC),
		Status:          InvoiceStatusSent,
		Subtotal:        1000,
		VATAmount:       160,
		TotalAmount:     1160,
		AmountPaid:      500,
		BalanceDue:      660,
		Items: []models.InvoiceItem{
			{Description: "Consulting", Quantity: 2, UnitPrice: 500, Subtotal: 1000, VATAmount: 160, TotalPrice: 1160},
		},
	}

	var buf bytes.Buffer
	if err := RenderInvoice(&buf, invoice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := buf.String()

	for _, want := range []string{number, "Acme Ltd", "12 Moi Avenue", "Consulting", "1160.00", "660.00", "20 Aug 2026", "19 Sep 2026"} {
		if !strings.Contains(output, want) {
			t.Fatalf("rendered invoice missing %q:\n%s", want, output)
		}
	}
}

func TestRenderInvoiceDraftWithoutNumber(t *testing.T) {
	invoice := &models.Invoice{
		CustomerName: "Acme Ltd",
		IssueDate:    time.Now(),
		DueDate:      time.Now().Add(30 * 24 * time.Hour),
		Status:       InvoiceStatusDraft,
	}

	var buf bytes.Buffer
	if err := RenderInvoice(&buf, invoice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "Invoice No: DRAFT") {
		t.Fatal("draft invoice should print DRAFT in place of the number")
	}
}
