package router

import (
	"database/sql"

	"pos_backend/internal/handlers"
	"pos_backend/internal/middleware"
	"pos_backend/internal/repositories"
	"pos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Repositories
	authRepo := repositories.NewAuthRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	productRepo := repositories.NewProductRepository(db)
	saleRepo := repositories.NewSaleRepository(db)
	invoiceRepo := repositories.NewInvoiceRepository(db)
	sequenceRepo := repositories.NewSequenceRepository(db)
	reportRepo := repositories.NewReportRepository(db)
	backupRepo := repositories.NewBackupRepository(db)

	// Services
	authService := services.NewAuthService(db, authRepo)
	productService := services.NewProductService(db, productRepo, categoryRepo)
	importService := services.NewImportService(db, productRepo, categoryRepo)
	saleService := services.NewSaleService(db, saleRepo, productRepo, sequenceRepo)
	invoiceService := services.NewInvoiceService(db, invoiceRepo, sequenceRepo)
	reportService := services.NewReportService(reportRepo, productRepo)
	backupService := services.NewBackupService(db, backupRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	importHandler := handlers.NewImportHandler(importService)
	saleHandler := handlers.NewSaleHandler(saleService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	reportHandler := handlers.NewReportHandler(reportService)
	backupHandler := handlers.NewBackupHandler(backupService)

	apiV1 := engine.Group("/api/v1")

	// Public authentication routes
	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	// Authenticated routes
	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupUserRoutes(authenticated, authHandler)
		SetupCategoryRoutes(authenticated, productHandler)
		SetupProductRoutes(authenticated, productHandler, importHandler)
		SetupSaleRoutes(authenticated, saleHandler)
		SetupInvoiceRoutes(authenticated, invoiceHandler)
		SetupReportRoutes(authenticated, reportHandler)
		SetupBackupRoutes(authenticated, backupHandler)
	}
}
