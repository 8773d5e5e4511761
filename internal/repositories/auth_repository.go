package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pos_backend/internal/models"

	"github.com/lib/pq"
)

// AuthRepository defines the interface for user and role database operations.
type AuthRepository interface {
	CreateUser(executor SQLExecutor, user *models.User, hashedPassword string) (int64, error)
	FindUserByUsername(username string) (*models.User, string, error) // Returns User, HashedPassword, Error
	FindUserByID(userID int64) (*models.User, error)
	FindRoleByName(name string) (*models.Role, error)
	GetUsers(page, pageSize int) ([]models.User, int, error)
	SetUserActive(executor SQLExecutor, userID int64, active bool) error
}

type authRepository struct {
	db *sql.DB
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

func (r *authRepository) CreateUser(executor SQLExecutor, user *models.User, hashedPassword string) (int64, error) {
	query := `INSERT INTO users (username, password_hash, email, full_name, role_id, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	currentTime := time.Now()

	var roleID sql.NullInt64
	if user.RoleID != nil {
		roleID = sql.NullInt64{Int64: *user.RoleID, Valid: true}
	}

	var userID int64
	err := executor.QueryRow(
		query,
		user.Username,
		hashedPassword,
		user.Email,
		user.FullName,
		roleID,
		true,
		currentTime,
		currentTime,
	).Scan(&userID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	return userID, nil
}

func (r *authRepository) FindUserByUsername(username string) (*models.User, string, error) {
	user := &models.User{}
	var hashedPassword string
	var roleID sql.NullInt64
	var roleName sql.NullString

	query := `SELECT u.id, u.username, u.password_hash, u.email, u.full_name, u.role_id, u.is_active,
	                 u.created_at, u.updated_at, r.name
	          FROM users u
	          LEFT JOIN roles r ON u.role_id = r.id
	          WHERE u.username = $1`
	err := r.db.QueryRow(query, username).Scan(
		&user.ID, &user.Username, &hashedPassword, &user.Email, &user.FullName, &roleID,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt, &roleName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("%w: finding user by username %s: %v", ErrDatabaseError, username, err)
	}

	if roleID.Valid {
		user.RoleID = &roleID.Int64
		user.Role = &models.Role{ID: roleID.Int64, Name: roleName.String}
	}
	return user, hashedPassword, nil
}

func (r *authRepository) FindUserByID(userID int64) (*models.User, error) {
	user := &models.User{}
	var roleID sql.NullInt64
	var roleName sql.NullString

	query := `SELECT u.id, u.username, u.email, u.full_name, u.role_id, u.is_active,
	                 u.created_at, u.updated_at, r.name
	          FROM users u
	          LEFT JOIN roles r ON u.role_id = r.id
	          WHERE u.id = $1`
	err := r.db.QueryRow(query, userID).Scan(
		&user.ID, &user.Username, &user.Email, &user.FullName, &roleID,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt, &roleName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by ID %d: %v", ErrDatabaseError, userID, err)
	}

	if roleID.Valid {
		user.RoleID = &roleID.Int64
		user.Role = &models.Role{ID: roleID.Int64, Name: roleName.String}
	}
	return user, nil
}

func (r *authRepository) FindRoleByName(name string) (*models.Role, error) {
	role := &models.Role{}
	query := `SELECT id, name, description, created_at, updated_at FROM roles WHERE LOWER(name) = LOWER($1)`
	err := r.db.QueryRow(query, name).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding role %s: %v", ErrDatabaseError, name, err)
	}
	return role, nil
}

func (r *authRepository) GetUsers(page, pageSize int) ([]models.User, int, error) {
	users := []models.User{}
	totalCount := 0
	query := `SELECT u.id, u.username, u.email, u.full_name, u.role_id, u.is_active,
	                 u.created_at, u.updated_at, r.name, COUNT(*) OVER() AS total_count
	          FROM users u
	          LEFT JOIN roles r ON u.role_id = r.id
	          ORDER BY u.username
	          LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		var roleID sql.NullInt64
		var roleName sql.NullString
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.FullName, &roleID,
			&user.IsActive, &user.CreatedAt, &user.UpdatedAt, &roleName, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		if roleID.Valid {
			user.RoleID = &roleID.Int64
			user.Role = &models.Role{ID: roleID.Int64, Name: roleName.String}
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating users: %v", ErrDatabaseError, err)
	}
	return users, totalCount, nil
}

func (r *authRepository) SetUserActive(executor SQLExecutor, userID int64, active bool) error {
	result, err := executor.Exec(`UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3`, active, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("%w: setting user %d active=%t: %v", ErrDatabaseError, userID, active, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
