package services

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestComputeLineExclusive(t *testing.T) {
	cases := []struct {
		quantity  int
		unitPrice float64
	}{
		{1, 100},
		{3, 19.99},
		{10, 0.05},
		{7, 1450.75},
		{2, 0},
	}
	for _, tc := range cases {
		line := ComputeLine(tc.quantity, tc.unitPrice, VATExclusive)

		wantSubtotal := math.Round(float64(tc.quantity)*tc.unitPrice*100) / 100
		if !almostEqual(line.Subtotal, wantSubtotal) {
			t.Fatalf("subtotal for %dx%.2f: got %v, want %v", tc.quantity, tc.unitPrice, line.Subtotal, wantSubtotal)
		}
		wantVAT := math.Round(wantSubtotal*VATRate*100) / 100
		if !almostEqual(line.VATAmount, wantVAT) {
			t.Fatalf("VAT for %dx%.2f: got %v, want %v", tc.quantity, tc.unitPrice, line.VATAmount, wantVAT)
		}
		if !almostEqual(line.Total, math.Round((wantSubtotal+wantVAT)*100)/100) {
			t.Fatalf("total for %dx%.2f: got %v", tc.quantity, tc.unitPrice, line.Total)
		}
	}
}

func TestComputeLineInclusive(t *testing.T) {
	cases := []struct {
		quantity  int
		unitPrice float64
	}{
		{1, 116},
		{4, 29.50},
		{12, 9.99},
	}
	for _, tc := range cases {
		line := ComputeLine(tc.quantity, tc.unitPrice, VATInclusive)

		wantSubtotal := math.Round(float64(tc.quantity)*tc.unitPrice*100) / 100
		if !almostEqual(line.Subtotal, wantSubtotal) {
			t.Fatalf("subtotal for %dx%.2f: got %v, want %v", tc.quantity, tc.unitPrice, line.Subtotal, wantSubtotal)
		}
		wantVAT := math.Round(wantSubtotal*VATRate/(1+VATRate)*100) / 100
		if !almostEqual(line.VATAmount, wantVAT) {
			t.Fatalf("backed-out VAT for %dx%.2f: got %v, want %v", tc.quantity, tc.unitPrice, line.VATAmount, wantVAT)
		}
		// Inclusive pricing: the customer pays the entered price.
		if !almostEqual(line.Total, wantSubtotal) {
			t.Fatalf("total for %dx%.2f: got %v, want %v", tc.quantity, tc.unitPrice, line.Total, wantSubtotal)
		}
	}
}

func TestComputeLine116Inclusive(t *testing.T) {
	// 116.00 inclusive at 16% backs out exactly 16.00 of VAT.
	line := ComputeLine(1, 116, VATInclusive)
	if !almostEqual(line.VATAmount, 16) {
		t.Fatalf("got VAT %v, want 16.00", line.VATAmount)
	}
	if !almostEqual(line.Subtotal-line.VATAmount, 100) {
		t.Fatalf("got net %v, want 100.00", line.Subtotal-line.VATAmount)
	}
}
