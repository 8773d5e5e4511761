package router

import (
	"pos_backend/internal/handlers"
	"pos_backend/internal/middleware"
	"pos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// SetupPublicAuthRoutes registers login and token refresh, which do not
// require an access token.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/login", authHandler.Login)
	group.POST("/refresh", authHandler.Refresh)
}

// SetupAuthenticatedAuthRoutes registers the self-service auth routes.
func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/me", authHandler.Me)
}

// SetupUserRoutes registers user management. Admin only.
func SetupUserRoutes(rg *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	users := rg.Group("/users")
	users.Use(middleware.RoleAuthMiddleware(services.RoleAdmin))
	{
		users.POST("", authHandler.SignUp)
		users.GET("", authHandler.GetUsers)
		users.PATCH("/:id/active", authHandler.SetUserActive)
	}
}

// SetupCategoryRoutes registers category CRUD. Reads are open to any
// authenticated user; writes are admin only.
func SetupCategoryRoutes(rg *gin.RouterGroup, productHandler *handlers.ProductHandler) {
	categories := rg.Group("/categories")
	{
		categories.GET("", productHandler.GetCategories)

		adminOnly := categories.Group("")
		adminOnly.Use(middleware.RoleAuthMiddleware(services.RoleAdmin))
		{
			adminOnly.POST("", productHandler.CreateCategory)
			adminOnly.PUT("/:id", productHandler.UpdateCategory)
			adminOnly.DELETE("/:id", productHandler.DeleteCategory)
		}
	}
}

// SetupProductRoutes registers the product catalog and CSV import.
func SetupProductRoutes(rg *gin.RouterGroup, productHandler *handlers.ProductHandler, importHandler *handlers.ImportHandler) {
	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProductByID)
		products.GET("/import/template", importHandler.DownloadTemplate)

		adminOnly := products.Group("")
		adminOnly.Use(middleware.RoleAuthMiddleware(services.RoleAdmin))
		{
			adminOnly.POST("", productHandler.CreateProduct)
			adminOnly.PUT("/:id", productHandler.UpdateProduct)
			adminOnly.DELETE("/:id", productHandler.DeleteProduct)
			adminOnly.POST("/import", importHandler.ImportProducts)
		}
	}
}

// SetupSaleRoutes registers checkout and sale history.
func SetupSaleRoutes(rg *gin.RouterGroup, saleHandler *handlers.SaleHandler) {
	sales := rg.Group("/sales")
	{
		sales.POST("", saleHandler.Checkout)
		sales.GET("", saleHandler.GetSales)
		sales.GET("/:id", saleHandler.GetSaleByID)
	}
}

// SetupInvoiceRoutes registers the invoice lifecycle. Cancellation is admin
// only.
func SetupInvoiceRoutes(rg *gin.RouterGroup, invoiceHandler *handlers.InvoiceHandler) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", invoiceHandler.CreateDraft)
		invoices.GET("", invoiceHandler.GetInvoices)
		invoices.GET("/:id", invoiceHandler.GetInvoiceByID)
		invoices.GET("/:id/print", invoiceHandler.Print)
		invoices.PUT("/:id", invoiceHandler.UpdateDraft)
		invoices.DELETE("/:id", invoiceHandler.DeleteDraft)
		invoices.POST("/:id/finalize", invoiceHandler.Finalize)
		invoices.POST("/:id/payments", invoiceHandler.RecordPayment)

		adminOnly := invoices.Group("")
		adminOnly.Use(middleware.RoleAuthMiddleware(services.RoleAdmin))
		{
			adminOnly.POST("/:id/cancel", invoiceHandler.Cancel)
		}
	}
}

// SetupReportRoutes registers the report exports and the low stock listing.
func SetupReportRoutes(rg *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	reports := rg.Group("/reports")
	{
		reports.GET("/sales", reportHandler.GetSalesReport)
		reports.GET("/sales/export", reportHandler.ExportSalesReport)
		reports.GET("/products", reportHandler.GetProductSummary)
		reports.GET("/products/export", reportHandler.ExportProductSummary)
		reports.GET("/low-stock", reportHandler.GetLowStockProducts)
	}
}

// SetupBackupRoutes registers backup export and restore. Admin only.
func SetupBackupRoutes(rg *gin.RouterGroup, backupHandler *handlers.BackupHandler) {
	backup := rg.Group("/backup")
	backup.Use(middleware.RoleAuthMiddleware(services.RoleAdmin))
	{
		backup.GET("/export", backupHandler.Export)
		backup.POST("/restore", backupHandler.Restore)
	}
}
