package services

import (
	"errors"
	"testing"

	"pos_backend/internal/models"

	"github.com/google/uuid"
)

func TestExportBuildsVersionedDocument(t *testing.T) {
	repo := &fakeBackupRepo{
		users:      []models.BackupUser{{ID: 1, Username: "admin", PasswordHash: "$2a$10$abc"}},
		categories: []models.Category{{ID: 1, Name: "Groceries"}},
		products:   []models.Product{{ID: 1, Name: "Sugar 1kg", CategoryID: 1}},
	}
	svc := NewBackupService(nil, repo)

	doc, err := svc.Export()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Version != models.BackupVersion {
		t.Fatalf("got version %d, want %d", doc.Version, models.BackupVersion)
	}
	if _, err := uuid.Parse(doc.ID); err != nil {
		t.Fatalf("document ID is not a UUID: %q", doc.ID)
	}
	if doc.ExportDate.IsZero() {
		t.Fatal("export date not set")
	}
	if len(doc.Users) != 1 || doc.Users[0].PasswordHash == "" {
		t.Fatal("exported users must carry the password hash")
	}
	if len(doc.Categories) != 1 || len(doc.Products) != 1 {
		t.Fatalf("collections missing: %d categories, %d products", len(doc.Categories), len(doc.Products))
	}
}

func TestRestoreRejectsUnknownMode(t *testing.T) {
	svc := NewBackupService(nil, &fakeBackupRepo{})
	doc := &models.BackupDocument{Version: models.BackupVersion}

	err := svc.Restore(doc, "append")
	if !errors.Is(err, ErrUnknownRestoreMode) {
		t.Fatalf("got %v, want ErrUnknownRestoreMode", err)
	}
}

func TestRestoreRejectsUnsupportedVersion(t *testing.T) {
	svc := NewBackupService(nil, &fakeBackupRepo{})
	doc := &models.BackupDocument{Version: models.BackupVersion + 1}

	err := svc.Restore(doc, RestoreModeReplace)
	if !errors.Is(err, ErrUnsupportedBackup) {
		t.Fatalf("got %v, want ErrUnsupportedBackup", err)
	}
}
