package services

import (
	"fmt"
	"io"
	"text/template"

	"pos_backend/internal/models"

	"pos_backend/pkg/utils"
)

// Seller identity printed on every invoice. Overridable through env so the
// binary works for any shop without a rebuild.
type sellerDetails struct {
	Name    string
	Address string
	Phone   string
	Email   string
	PIN     string
}

func sellerFromEnv() sellerDetails {
	return sellerDetails{
		Name:    utils.Getenv("SELLER_NAME", "My Shop Ltd"),
		Address: utils.Getenv("SELLER_ADDRESS", "P.O. Box 0000, Nairobi"),
		Phone:   utils.Getenv("SELLER_PHONE", "+254 700 000000"),
		Email:   utils.Getenv("SELLER_EMAIL", "info@example.com"),
		PIN:     utils.Getenv("SELLER_PIN", ""),
	}
}

const invoicePrintLayout = `{{.Seller.Name}}
{{.Seller.Address}}
Tel: {{.Seller.Phone}}  Email: {{.Seller.Email}}
{{- if .Seller.PIN}}
PIN: {{.Seller.PIN}}
{{- end}}

                               INVOICE
{{if .Invoice.InvoiceNumber}}Invoice No: {{.Invoice.InvoiceNumber}}{{else}}Invoice No: DRAFT{{end}}
Issue Date: {{.Invoice.IssueDate.Format "02 Jan 2006"}}
Due Date:   {{.Invoice.DueDate.Format "02 Jan 2006"}}
Status:     {{.Invoice.Status}}

BILL TO
{{.Invoice.CustomerName}}
{{- if .Invoice.CustomerAddress}}
{{.Invoice.CustomerAddress}}
{{- end}}
{{- if .Invoice.CustomerPhone}}
Tel: {{.Invoice.CustomerPhone}}
{{- end}}
{{- if .Invoice.CustomerEmail}}
Email: {{.Invoice.CustomerEmail}}
{{- end}}

--------------------------------------------------------------------------
{{printf "%-34s %5s %10s %10s %10s" "Description" "Qty" "Unit" "VAT" "Total"}}
--------------------------------------------------------------------------
{{- range .Invoice.Items}}
{{printf "%-34.34s %5d %10.2f %10.2f %10.2f" .Description .Quantity .UnitPrice .VATAmount .TotalPrice}}
{{- end}}
--------------------------------------------------------------------------
{{printf "%62s %10.2f" "Subtotal:" .Invoice.Subtotal}}
{{printf "%62s %10.2f" "VAT (16%):" .Invoice.VATAmount}}
{{printf "%62s %10.2f" "Total:" .Invoice.TotalAmount}}
{{printf "%62s %10.2f" "Amount Paid:" .Invoice.AmountPaid}}
{{printf "%62s %10.2f" "Balance Due:" .Invoice.BalanceDue}}
{{- if .Invoice.Notes}}

Notes: {{.Invoice.Notes}}
{{- end}}

Payment is due by the date shown above. Please quote the invoice number on
all payments and correspondence.
`

var invoicePrintTemplate = template.Must(template.New("invoice").Parse(invoicePrintLayout))

// RenderInvoice writes the fixed-layout print view of an invoice. The output
// is plain text meant for physical or PDF printing, not machine parsing.
func RenderInvoice(writer io.Writer, invoice *models.Invoice) error {
	data := struct {
		Seller  sellerDetails
		Invoice *models.Invoice
	}{
		Seller:  sellerFromEnv(),
		Invoice: invoice,
	}
	if err := invoicePrintTemplate.Execute(writer, data); err != nil {
		return fmt.Errorf("rendering invoice print view: %w", err)
	}
	return nil
}
