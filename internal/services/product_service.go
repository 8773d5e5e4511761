package services

import (
	"database/sql"
	"errors"
	"strings"

	"pos_backend/internal/models"
	"pos_backend/internal/repositories"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category is in use by one or more products")
	ErrProductInUse     = errors.New("product is referenced by sale records")
	ErrDuplicateName    = errors.New("name already exists")
	ErrInvalidPrice     = errors.New("prices must not be negative")
	ErrInvalidStock     = errors.New("stock and reorder level must not be negative")
)

// ProductRequest creates or updates a catalog product.
type ProductRequest struct {
	Name         string  `json:"name" binding:"required"`
	Brand        *string `json:"brand,omitempty"`
	CategoryID   int64   `json:"category_id" binding:"required"`
	Barcode      *string `json:"barcode,omitempty"`
	Supplier     *string `json:"supplier,omitempty"`
	BuyingPrice  float64 `json:"buying_price"`
	SellingPrice float64 `json:"selling_price"`
	Stock        int     `json:"stock"`
	ReorderLevel int     `json:"reorder_level"`
}

// CategoryRequest creates or renames a category.
type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// ProductService defines the interface for catalog management.
type ProductService interface {
	CreateProduct(req ProductRequest) (*models.Product, error)
	GetProductByID(id int64) (*models.Product, error)
	GetProducts(filters repositories.ProductFilters) ([]models.Product, int, error)
	UpdateProduct(id int64, req ProductRequest) (*models.Product, error)
	DeleteProduct(id int64) error

	CreateCategory(req CategoryRequest) (*models.Category, error)
	GetCategories() ([]models.Category, error)
	UpdateCategory(id int64, req CategoryRequest) (*models.Category, error)
	DeleteCategory(id int64) error
}

type productService struct {
	db           *sql.DB
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
}

// NewProductService creates a new instance of ProductService.
func NewProductService(db *sql.DB, productRepo repositories.ProductRepository, categoryRepo repositories.CategoryRepository) ProductService {
	return &productService{db: db, productRepo: productRepo, categoryRepo: categoryRepo}
}

func validateProductRequest(req *ProductRequest) error {
	if req.BuyingPrice < 0 || req.SellingPrice < 0 {
		return ErrInvalidPrice
	}
	if req.Stock < 0 || req.ReorderLevel < 0 {
		return ErrInvalidStock
	}
	return nil
}

func productFromRequest(req ProductRequest) models.Product {
	return models.Product{
		Name:         strings.TrimSpace(req.Name),
		Brand:        req.Brand,
		CategoryID:   req.CategoryID,
		Barcode:      req.Barcode,
		Supplier:     req.Supplier,
		BuyingPrice:  req.BuyingPrice,
		SellingPrice: req.SellingPrice,
		Stock:        req.Stock,
		ReorderLevel: req.ReorderLevel,
	}
}

func (s *productService) CreateProduct(req ProductRequest) (*models.Product, error) {
	if err := validateProductRequest(&req); err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.GetCategoryByID(req.CategoryID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	product := productFromRequest(req)
	if _, err := s.productRepo.CreateProduct(s.db, &product); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return s.productRepo.GetProductByID(product.ID)
}

func (s *productService) GetProductByID(id int64) (*models.Product, error) {
	product, err := s.productRepo.GetProductByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) GetProducts(filters repositories.ProductFilters) ([]models.Product, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}
	return s.productRepo.GetProducts(filters)
}

func (s *productService) UpdateProduct(id int64, req ProductRequest) (*models.Product, error) {
	if err := validateProductRequest(&req); err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.GetCategoryByID(req.CategoryID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	product := productFromRequest(req)
	product.ID = id
	if err := s.productRepo.UpdateProduct(s.db, &product); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrProductNotFound
		case errors.Is(err, repositories.ErrDuplicateKey):
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return s.productRepo.GetProductByID(id)
}

func (s *productService) DeleteProduct(id int64) error {
	err := s.productRepo.DeleteProduct(s.db, id)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return ErrProductNotFound
	case errors.Is(err, repositories.ErrInUse):
		return ErrProductInUse
	}
	return err
}

func (s *productService) CreateCategory(req CategoryRequest) (*models.Category, error) {
	category := models.Category{Name: strings.TrimSpace(req.Name)}
	if _, err := s.categoryRepo.CreateCategory(s.db, &category); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return &category, nil
}

func (s *productService) GetCategories() ([]models.Category, error) {
	return s.categoryRepo.GetCategories()
}

func (s *productService) UpdateCategory(id int64, req CategoryRequest) (*models.Category, error) {
	category := models.Category{ID: id, Name: strings.TrimSpace(req.Name)}
	if err := s.categoryRepo.UpdateCategory(s.db, &category); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrCategoryNotFound
		case errors.Is(err, repositories.ErrDuplicateKey):
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return s.categoryRepo.GetCategoryByID(id)
}

func (s *productService) DeleteCategory(id int64) error {
	err := s.categoryRepo.DeleteCategory(s.db, id)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return ErrCategoryNotFound
	case errors.Is(err, repositories.ErrInUse):
		return ErrCategoryInUse
	}
	return err
}
