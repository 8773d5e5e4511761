package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"pos_backend/internal/repositories"
	"pos_backend/internal/services"
	"pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ProductHandler holds the product service.
type ProductHandler struct {
	productService services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(ps services.ProductService) *ProductHandler {
	return &ProductHandler{productService: ps}
}

func respondProductError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Product not found.", err.Error()))
	case errors.Is(err, services.ErrCategoryNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Category not found.", err.Error()))
	case errors.Is(err, services.ErrProductInUse):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Product is referenced by sale records and cannot be deleted.", err.Error()))
	case errors.Is(err, services.ErrDuplicateName):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Name already exists.", err.Error()))
	case errors.Is(err, services.ErrInvalidPrice), errors.Is(err, services.ErrInvalidStock):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid product values.", err.Error()))
	default:
		utils.LogError(err, action)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Operation failed.", "Internal error"))
	}
}

// CreateProduct adds a product to the catalog.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	product, err := h.productService.CreateProduct(req)
	if err != nil {
		respondProductError(c, err, "CreateProduct: Error from productService.CreateProduct")
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetProductByID fetches a single product.
func (h *ProductHandler) GetProductByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	product, err := h.productService.GetProductByID(id)
	if err != nil {
		respondProductError(c, err, "GetProductByID: Error from productService.GetProductByID")
		return
	}
	c.JSON(http.StatusOK, product)
}

// GetProducts lists catalog products with optional category and search filters.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var filters repositories.ProductFilters

	if categoryIDStr := c.Query("category_id"); categoryIDStr != "" {
		categoryID, err := strconv.ParseInt(categoryIDStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid category_id format.", err.Error()))
			return
		}
		filters.CategoryID = &categoryID
	}
	if search := c.Query("search"); search != "" {
		filters.Search = &search
	}
	page, pageSize, ok := parsePagination(c)
	if !ok {
		return
	}
	filters.Page = page
	filters.PageSize = pageSize

	products, totalCount, err := h.productService.GetProducts(filters)
	if err != nil {
		respondProductError(c, err, "GetProducts: Error from productService.GetProducts")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":        products,
		"total_count": totalCount,
		"page":        filters.Page,
		"page_size":   filters.PageSize,
	})
}

// UpdateProduct replaces all editable fields of a product.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req services.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	product, err := h.productService.UpdateProduct(id, req)
	if err != nil {
		respondProductError(c, err, "UpdateProduct: Error from productService.UpdateProduct")
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product that is not referenced by sales or invoices.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.productService.DeleteProduct(id); err != nil {
		respondProductError(c, err, "DeleteProduct: Error from productService.DeleteProduct")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// CreateCategory adds a product category.
func (h *ProductHandler) CreateCategory(c *gin.Context) {
	var req services.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	category, err := h.productService.CreateCategory(req)
	if err != nil {
		respondProductError(c, err, "CreateCategory: Error from productService.CreateCategory")
		return
	}
	c.JSON(http.StatusCreated, category)
}

// GetCategories lists all categories.
func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.productService.GetCategories()
	if err != nil {
		respondProductError(c, err, "GetCategories: Error from productService.GetCategories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// UpdateCategory renames a category.
func (h *ProductHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req services.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	category, err := h.productService.UpdateCategory(id, req)
	if err != nil {
		respondProductError(c, err, "UpdateCategory: Error from productService.UpdateCategory")
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category that no product uses.
func (h *ProductHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.productService.DeleteCategory(id); err != nil {
		if errors.Is(err, services.ErrCategoryInUse) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Category is in use and cannot be deleted.", err.Error()))
			return
		}
		respondProductError(c, err, "DeleteCategory: Error from productService.DeleteCategory")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
