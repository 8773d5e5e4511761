package services

import "math"

// VATRate is the statutory VAT rate applied to all lines.
const VATRate = 0.16

// VATMode selects how entered unit prices relate to VAT.
type VATMode int

const (
	// VATExclusive: VAT is added on top of the entered price. Used by invoices.
	VATExclusive VATMode = iota
	// VATInclusive: the entered price already contains VAT, which is backed
	// out of the subtotal. Used by point-of-sale receipts.
	VATInclusive
)

// LineAmounts holds the computed money fields for a single sale or invoice line.
type LineAmounts struct {
	Subtotal  float64
	VATAmount float64
	Total     float64
}

// ComputeLine calculates the subtotal, VAT and total for one line. Amounts
// are rounded to cents so aggregates built from per-line values stay stable.
func ComputeLine(quantity int, unitPrice float64, mode VATMode) LineAmounts {
	subtotal := roundCents(float64(quantity) * unitPrice)
	var vat float64
	switch mode {
	case VATInclusive:
		vat = roundCents(subtotal * VATRate / (1 + VATRate))
	default:
		vat = roundCents(subtotal * VATRate)
	}

	line := LineAmounts{Subtotal: subtotal, VATAmount: vat}
	if mode == VATInclusive {
		line.Total = subtotal
	} else {
		line.Total = roundCents(subtotal + vat)
	}
	return line
}

func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
