package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pos_backend/internal/models"
	"pos_backend/internal/repositories"
)

var (
	ErrEmptyCart         = errors.New("cart has no items")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// SaleItemRequest is one cart line submitted at checkout.
type SaleItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// SaleRequest is the checkout payload. Prices come from the catalog, not the
// client.
type SaleRequest struct {
	PaymentMethod string            `json:"payment_method" binding:"required,oneof=cash card mpesa"`
	Items         []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// SaleService defines the interface for point-of-sale operations.
type SaleService interface {
	// Checkout records a sale atomically: stock is decremented, the receipt
	// number is assigned, and the sale with its items is persisted in one
	// transaction. Selling prices are treated as VAT-inclusive.
	Checkout(req SaleRequest, cashierID int64) (*models.Sale, error)
	GetSaleByID(id int64) (*models.Sale, error)
	GetSales(filters repositories.SaleFilters) ([]models.Sale, int, error)
}

type saleService struct {
	db           *sql.DB
	saleRepo     repositories.SaleRepository
	productRepo  repositories.ProductRepository
	sequenceRepo repositories.SequenceRepository
}

// NewSaleService creates a new instance of SaleService.
func NewSaleService(db *sql.DB, saleRepo repositories.SaleRepository, productRepo repositories.ProductRepository, sequenceRepo repositories.SequenceRepository) SaleService {
	return &saleService{db: db, saleRepo: saleRepo, productRepo: productRepo, sequenceRepo: sequenceRepo}
}

func (s *saleService) Checkout(req SaleRequest, cashierID int64) (*models.Sale, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	// Price and stock checks run before the transaction so the common
	// failure (out of stock) never opens one. Stock is re-checked by the
	// non-negative constraint when decremented inside the transaction.
	sale := &models.Sale{
		CashierID:     cashierID,
		PaymentMethod: req.PaymentMethod,
		SaleTime:      time.Now(),
	}
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		price, stock, name, err := s.productRepo.GetPriceAndStock(line.ProductID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, line.ProductID)
			}
			return nil, err
		}
		if stock < line.Quantity {
			return nil, fmt.Errorf("%w: '%s' has %d in stock, %d requested", ErrInsufficientStock, name, stock, line.Quantity)
		}

		amounts := ComputeLine(line.Quantity, price, VATInclusive)
		sale.Items = append(sale.Items, models.SaleItem{
			ProductID:   line.ProductID,
			ProductName: name,
			Quantity:    line.Quantity,
			UnitPrice:   price,
			Subtotal:    amounts.Subtotal,
			VATAmount:   amounts.VATAmount,
			TotalPrice:  amounts.Total,
		})
		sale.Subtotal += amounts.Subtotal
		sale.VATAmount += amounts.VATAmount
		sale.TotalAmount += amounts.Total
	}
	sale.NetAmount = roundCents(sale.Subtotal - sale.VATAmount)
	sale.Subtotal = roundCents(sale.Subtotal)
	sale.VATAmount = roundCents(sale.VATAmount)
	sale.TotalAmount = roundCents(sale.TotalAmount)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting checkout transaction: %w", err)
	}
	defer tx.Rollback()

	day := sale.SaleTime.Format("20060102")
	sequence, err := s.sequenceRepo.NextDocumentSequence(tx, repositories.SequenceKindReceipt, day)
	if err != nil {
		return nil, err
	}
	sale.ReceiptNumber = fmt.Sprintf("RCP-%s-%04d", day, sequence)

	if _, err := s.saleRepo.CreateSale(tx, sale); err != nil {
		return nil, err
	}
	for i := range sale.Items {
		sale.Items[i].SaleID = sale.ID
		if _, err := s.saleRepo.CreateSaleItem(tx, &sale.Items[i]); err != nil {
			return nil, err
		}
		if _, err := s.productRepo.UpdateStock(tx, sale.Items[i].ProductID, -sale.Items[i].Quantity); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing checkout transaction: %w", err)
	}
	return sale, nil
}

func (s *saleService) GetSaleByID(id int64) (*models.Sale, error) {
	sale, err := s.saleRepo.GetSaleByID(id)
	if err != nil {
		return nil, err
	}
	items, err := s.saleRepo.GetSaleItemsBySaleID(id)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return sale, nil
}

func (s *saleService) GetSales(filters repositories.SaleFilters) ([]models.Sale, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}
	return s.saleRepo.GetSales(filters)
}
