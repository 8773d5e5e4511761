package services

import (
	"errors"
	"testing"

	"pos_backend/internal/models"
)

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	svc := NewSaleService(nil, nil, newFakeProductRepo(), nil)

	_, err := svc.Checkout(SaleRequest{PaymentMethod: "cash"}, 1)
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("got %v, want ErrEmptyCart", err)
	}
}

func TestCheckoutRejectsUnknownProduct(t *testing.T) {
	svc := NewSaleService(nil, nil, newFakeProductRepo(), nil)

	_, err := svc.Checkout(SaleRequest{
		PaymentMethod: "cash",
		Items:         []SaleItemRequest{{ProductID: 42, Quantity: 1}},
	}, 1)
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("got %v, want ErrProductNotFound", err)
	}
}

func TestCheckoutRejectsInsufficientStock(t *testing.T) {
	productRepo := newFakeProductRepo()
	id := productRepo.add(models.Product{Name: "Sugar 1kg", SellingPrice: 145, Stock: 3})
	svc := NewSaleService(nil, nil, productRepo, nil)

	_, err := svc.Checkout(SaleRequest{
		PaymentMethod: "cash",
		Items:         []SaleItemRequest{{ProductID: id, Quantity: 4}},
	}, 1)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("got %v, want ErrInsufficientStock", err)
	}
	// Stock untouched by the rejected checkout.
	if product, _ := productRepo.GetProductByID(id); product.Stock != 3 {
		t.Fatalf("stock changed to %d on rejected checkout", product.Stock)
	}
}

func TestCheckoutRejectsNonPositiveQuantity(t *testing.T) {
	productRepo := newFakeProductRepo()
	id := productRepo.add(models.Product{Name: "Sugar 1kg", SellingPrice: 145, Stock: 3})
	svc := NewSaleService(nil, nil, productRepo, nil)

	_, err := svc.Checkout(SaleRequest{
		PaymentMethod: "cash",
		Items:         []SaleItemRequest{{ProductID: id, Quantity: 0}},
	}, 1)
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("got %v, want ErrInvalidQuantity", err)
	}
}
