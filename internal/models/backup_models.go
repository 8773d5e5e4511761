package models

import "time"

// BackupUser mirrors User but carries the password hash so a restored
// account can still log in. Backup documents are operator-only artifacts.
type BackupUser struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Email        *string   `json:"email,omitempty"`
	FullName     *string   `json:"full_name,omitempty"`
	RoleID       *int64    `json:"role_id,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BackupDocument is the single JSON document produced by a full export and
// consumed by restore. Top-level keys are per-entity collections.
type BackupDocument struct {
	ID              string           `json:"id"`
	Version         int              `json:"version"`
	ExportDate      time.Time        `json:"exportDate"`
	Users           []BackupUser     `json:"users"`
	Categories      []Category       `json:"categories"`
	Products        []Product        `json:"products"`
	Sales           []Sale           `json:"sales"`
	SaleItems       []SaleItem       `json:"saleItems"`
	Invoices        []Invoice        `json:"invoices"`
	InvoiceItems    []InvoiceItem    `json:"invoiceItems"`
	InvoicePayments []InvoicePayment `json:"invoicePayments"`
}

// BackupVersion is the current backup document format version.
const BackupVersion = 1
