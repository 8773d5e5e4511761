package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pos_backend/internal/models"
	"pos_backend/internal/repositories"
	"pos_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// Role names seeded at startup.
const (
	RoleAdmin   = "Admin"
	RoleCashier = "Cashier"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("user account is deactivated")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrUnknownRole        = errors.New("unknown role")
	ErrUserNotFound       = errors.New("user not found")
)

// SignUpRequest registers a new user account.
type SignUpRequest struct {
	Username string  `json:"username" binding:"required,min=3,max=50"`
	Password string  `json:"password" binding:"required,min=8"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	FullName *string `json:"full_name,omitempty"`
	Role     string  `json:"role" binding:"required"`
}

// LoginRequest authenticates an existing user.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued tokens and the authenticated user.
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// AuthService defines the interface for authentication and user management.
type AuthService interface {
	SignUp(req SignUpRequest) (*models.User, error)
	Login(req LoginRequest) (*LoginResponse, error)
	// Refresh exchanges a valid refresh token for a new access token.
	Refresh(refreshToken string) (string, error)
	GetUserByID(id int64) (*models.User, error)
	GetUsers(page, pageSize int) ([]models.User, int, error)
	SetUserActive(id int64, active bool) error
}

type authService struct {
	db       *sql.DB
	authRepo repositories.AuthRepository
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(db *sql.DB, authRepo repositories.AuthRepository) AuthService {
	return &authService{db: db, authRepo: authRepo}
}

func (s *authService) SignUp(req SignUpRequest) (*models.User, error) {
	role, err := s.authRepo.FindRoleByName(strings.TrimSpace(req.Role))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrUnknownRole, req.Role)
		}
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Username: strings.TrimSpace(req.Username),
		Email:    req.Email,
		FullName: req.FullName,
		RoleID:   &role.ID,
		IsActive: true,
	}
	userID, err := s.authRepo.CreateUser(s.db, user, string(hashed))
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	user.ID = userID
	user.Role = role
	return user, nil
}

func (s *authService) Login(req LoginRequest) (*LoginResponse, error) {
	user, hashedPassword, err := s.authRepo.FindUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	roleName := ""
	if user.Role != nil {
		roleName = user.Role.Name
	}
	accessToken, err := utils.GenerateAccessToken(user.ID, user.Username, roleName)
	if err != nil {
		return nil, err
	}
	refreshToken, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{AccessToken: accessToken, RefreshToken: refreshToken, User: user}, nil
}

func (s *authService) Refresh(refreshToken string) (string, error) {
	claims, err := utils.ValidateToken(refreshToken)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	user, err := s.authRepo.FindUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !user.IsActive {
		return "", ErrUserInactive
	}
	roleName := ""
	if user.Role != nil {
		roleName = user.Role.Name
	}
	return utils.GenerateAccessToken(user.ID, user.Username, roleName)
}

func (s *authService) GetUserByID(id int64) (*models.User, error) {
	user, err := s.authRepo.FindUserByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) GetUsers(page, pageSize int) ([]models.User, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.authRepo.GetUsers(page, pageSize)
}

func (s *authService) SetUserActive(id int64, active bool) error {
	err := s.authRepo.SetUserActive(s.db, id, active)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
