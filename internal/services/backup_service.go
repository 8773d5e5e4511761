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

// Restore modes.
const (
	RestoreModeReplace = "replace"
	RestoreModeMerge   = "merge"
)

var (
	ErrUnknownRestoreMode = errors.New("unknown restore mode")
	ErrUnsupportedBackup  = errors.New("unsupported backup document version")
	ErrRestoreConflict    = errors.New("restore conflicts with existing records")
)

// BackupService exports the full dataset to a single JSON document and
// restores from one.
type BackupService interface {
	Export() (*models.BackupDocument, error)
	// Restore loads a backup document in one transaction. Replace mode
	// clears existing data first; merge mode appends, and any ID collision
	// aborts the whole restore.
	Restore(doc *models.BackupDocument, mode string) error
}

type backupService struct {
	db         *sql.DB
	backupRepo repositories.BackupRepository
}

// NewBackupService creates a new instance of BackupService.
func NewBackupService(db *sql.DB, backupRepo repositories.BackupRepository) BackupService {
	return &backupService{db: db, backupRepo: backupRepo}
}

func (s *backupService) Export() (*models.BackupDocument, error) {
	doc := &models.BackupDocument{
		ID:         uuid.NewString(),
		Version:    models.BackupVersion,
		ExportDate: time.Now().UTC(),
	}

	var err error
	if doc.Users, err = s.backupRepo.ListAllUsers(); err != nil {
		return nil, err
	}
	if doc.Categories, err = s.backupRepo.ListAllCategories(); err != nil {
		return nil, err
	}
	if doc.Products, err = s.backupRepo.ListAllProducts(); err != nil {
		return nil, err
	}
	if doc.Sales, err = s.backupRepo.ListAllSales(); err != nil {
		return nil, err
	}
	if doc.SaleItems, err = s.backupRepo.ListAllSaleItems(); err != nil {
		return nil, err
	}
	if doc.Invoices, err = s.backupRepo.ListAllInvoices(); err != nil {
		return nil, err
	}
	if doc.InvoiceItems, err = s.backupRepo.ListAllInvoiceItems(); err != nil {
		return nil, err
	}
	if doc.InvoicePayments, err = s.backupRepo.ListAllInvoicePayments(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *backupService) Restore(doc *models.BackupDocument, mode string) error {
	if mode != RestoreModeReplace && mode != RestoreModeMerge {
		return fmt.Errorf("%w: '%s'", ErrUnknownRestoreMode, mode)
	}
	if doc.Version != models.BackupVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrUnsupportedBackup, doc.Version, models.BackupVersion)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting restore transaction: %w", err)
	}
	defer tx.Rollback()

	if mode == RestoreModeReplace {
		if err := s.backupRepo.ClearAll(tx); err != nil {
			return err
		}
	}

	// Parents before children so foreign keys resolve.
	for i := range doc.Users {
		if err := s.backupRepo.InsertUser(tx, &doc.Users[i]); err != nil {
			return restoreError(err)
		}
	}
	for i := range doc.Categories {
		if err := s.backupRepo.InsertCategory(tx, &doc.Categories[i]); err != nil {
			return restoreError(err)
		}
	}
	for i := range doc.Products {
		if err := s.backupRepo.InsertProduct(tx, &doc.Products[i]); err != nil {
			return restoreError(err)
		}
	}
	for i := range doc.Sales {
		if err := s.backupRepo.InsertSale(tx, &doc.Sales[i]); err != nil {
			return restoreError(err)
		}
	}
	for i := range doc.SaleItems {
		if err := s.backupRepo.InsertSaleItem(tx, &doc.SaleItems[i]); err != nil {
			return restoreError(err)
		}
	}
	for i := range doc.Invoices {
		if err := s.backupRepo.InsertInvoice(tx, &doc.Invoices[i]); err != nil {
			return restoreError(err)
		}
	}
	for i := range doc.InvoiceItems {
		if err := s.backupRepo.InsertInvoiceItem(tx, &doc.InvoiceItems[i]); err != nil {
			return restoreError(err)
		}
	}
	for i := range doc.InvoicePayments {
		if err := s.backupRepo.InsertInvoicePayment(tx, &doc.InvoicePayments[i]); err != nil {
			return restoreError(err)
		}
	}

	if err := s.backupRepo.ResetSequences(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing restore transaction: %w", err)
	}
	return nil
}

func restoreError(err error) error {
	if errors.Is(err, repositories.ErrDuplicateKey) {
		return fmt.Errorf("%w: %v", ErrRestoreConflict, err)
	}
	return err
}
