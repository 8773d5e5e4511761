package database

import (
	"database/sql"
	"errors"
	"fmt"

	"pos_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

var defaultCategories = []string{"Groceries", "Beverages", "Household", "Electronics"}

// EnsureSeedData creates the roles, default admin account, and starter
// categories the application expects. Every step is idempotent, so the
// function is safe to run on every startup.
func EnsureSeedData(db *sql.DB) error {
	roles := []struct {
		name        string
		description string
	}{
		{"Admin", "Full access including user management, cancellations, and backups"},
		{"Cashier", "Point-of-sale checkout and read access to the catalog"},
	}
	for _, role := range roles {
		_, err := db.Exec(`INSERT INTO roles (name, description, created_at, updated_at)
		                   VALUES ($1, $2, NOW(), NOW())
		                   ON CONFLICT (name) DO NOTHING`, role.name, role.description)
		if err != nil {
			return fmt.Errorf("seeding role %s: %w", role.name, err)
		}
	}

	if err := ensureDefaultAdmin(db); err != nil {
		return err
	}

	for _, name := range defaultCategories {
		_, err := db.Exec(`INSERT INTO categories (name, created_at, updated_at)
		                   VALUES ($1, NOW(), NOW())
		                   ON CONFLICT DO NOTHING`, name)
		if err != nil {
			return fmt.Errorf("seeding category %s: %w", name, err)
		}
	}

	utils.LogInfo("Seed data ensured")
	return nil
}

// ensureDefaultAdmin creates the initial admin account when no user exists.
// Credentials come from ADMIN_USERNAME/ADMIN_PASSWORD so the default can be
// overridden per deployment.
func ensureDefaultAdmin(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		return nil
	}

	var roleID int64
	err := db.QueryRow(`SELECT id FROM roles WHERE name = 'Admin'`).Scan(&roleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("admin role missing, cannot seed default admin")
		}
		return fmt.Errorf("looking up admin role: %w", err)
	}

	username := utils.Getenv("ADMIN_USERNAME", "admin")
	password := utils.Getenv("ADMIN_PASSWORD", "changeme123")
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing default admin password: %w", err)
	}

	_, err = db.Exec(`INSERT INTO users (username, password_hash, full_name, role_id, is_active, created_at, updated_at)
	                  VALUES ($1, $2, 'Administrator', $3, TRUE, NOW(), NOW())`,
		username, string(hashed), roleID)
	if err != nil {
		return fmt.Errorf("seeding default admin: %w", err)
	}

	utils.LogWarn("Default admin account created, change the password", map[string]interface{}{"username": username})
	return nil
}
