package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"invoicing-service/internal/config"
	"invoicing-service/internal/database"
	"invoicing-service/internal/events"
	"invoicing-service/internal/gateway"
	"invoicing-service/internal/handlers"
	"invoicing-service/internal/middleware"
	"invoicing-service/internal/repository"
	"invoicing-service/internal/services"
	"invoicing-service/internal/validation"
)

// @title Invoicing API
// @version 1.0.0
// @description GST invoicing for Indian small businesses: customers, products, invoice drafts, numbering, credit notes and subscriptions.

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✓ Connected to database")

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	redisClient, err := config.InitRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("✓ Connected to Redis")

	if err := validation.Register(); err != nil {
		log.Fatalf("Failed to register validators: %v", err)
	}

	// Events are optional; a nil publisher drops them
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		publisher, err = events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (events won't be published)", err)
		} else {
			log.Println("✓ NATS events publisher initialized")
		}
	}

	orderGateway, err := gateway.NewFromConfig(cfg)
	if err != nil {
		log.Printf("WARNING: Payment gateway unavailable: %v (subscription orders disabled)", err)
		orderGateway = nil
	} else {
		log.Printf("✓ Payment gateway initialized (%s)", orderGateway.GetType())
	}

	// Repositories
	companyRepo := repository.NewCompanyRepository(db, redisClient)
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	creditNoteRepo := repository.NewCreditNoteRepository(db)
	paymentOrderRepo := repository.NewPaymentOrderRepository(db)
	stateRepo := repository.NewGSTStateRepository(db)

	// Services
	draftStore := services.NewRedisDraftStore(redisClient, cfg.DraftTTL)
	draftLocker := services.NewRedisDraftLocker(redisClient)
	draftService := services.NewDraftService(draftStore, draftLocker, companyRepo, customerRepo, productRepo, invoiceRepo, publisher, logger)
	invoiceService := services.NewInvoiceService(invoiceRepo, companyRepo, services.NewPDFRenderer(cfg.Currency), publisher, logger)
	creditNoteService := services.NewCreditNoteService(creditNoteRepo, invoiceRepo, companyRepo, publisher, logger)
	companyService := services.NewCompanyService(companyRepo, logger)
	customerService := services.NewCustomerService(customerRepo)
	productService := services.NewProductService(productRepo, logger)
	subscriptionService := services.NewSubscriptionService(orderGateway, paymentOrderRepo, cfg.Currency, publisher, logger)

	// Handlers
	catalogHandler := handlers.NewCatalogHandler(companyService, customerService, productService, stateRepo)
	draftHandler := handlers.NewDraftHandler(draftService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, creditNoteService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	healthHandler := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"database": pingDB(db),
		"redis":    pingRedis(redisClient),
	})

	router := setupRouter(cfg, logger, routes{
		catalog:       catalogHandler,
		drafts:        draftHandler,
		invoices:      invoiceHandler,
		tax:           handlers.NewTaxHandler(),
		subscriptions: subscriptionHandler,
		health:        healthHandler,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Invoicing Service starting on port %s (env: %s)", cfg.Port, cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down invoicing-service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	publisher.Close()
	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Println("Invoicing service stopped")
}

type routes struct {
	catalog       *handlers.CatalogHandler
	drafts        *handlers.DraftHandler
	invoices      *handlers.InvoiceHandler
	tax           *handlers.TaxHandler
	subscriptions *handlers.SubscriptionHandler
	health        *handlers.HealthHandler
}

// setupRouter configures the HTTP router
func setupRouter(cfg *config.Config, logger *logrus.Logger, r routes) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SetupCORS(cfg.AllowedOrigins))

	// Health checks
	router.GET("/health", r.health.HealthCheck)
	router.GET("/livez", r.health.HealthCheck)
	router.GET("/readyz", r.health.ReadinessCheck)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")

	// Reference data needs no auth
	v1.GET("/gst/states", r.catalog.ListStates)
	v1.GET("/products/template", r.catalog.ProductTemplate)

	api := v1.Group("")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		api.POST("/tax/calculate", r.tax.CalculateTax)

		company := api.Group("/company")
		{
			company.GET("", r.catalog.GetCompany)
			company.PUT("", r.catalog.SaveCompany)
		}

		customers := api.Group("/customers")
		{
			customers.GET("", r.catalog.ListCustomers)
			customers.POST("", r.catalog.CreateCustomer)
			customers.GET("/:id", r.catalog.GetCustomer)
			customers.PUT("/:id", r.catalog.UpdateCustomer)
			customers.DELETE("/:id", r.catalog.DeleteCustomer)
		}

		products := api.Group("/products")
		{
			products.GET("", r.catalog.ListProducts)
			products.POST("", r.catalog.CreateProduct)
			products.POST("/import", r.catalog.ImportProducts)
			products.GET("/export", r.catalog.ExportProducts)
			products.GET("/:id", r.catalog.GetProduct)
			products.PUT("/:id", r.catalog.UpdateProduct)
			products.DELETE("/:id", r.catalog.DeleteProduct)
		}

		drafts := api.Group("/drafts")
		{
			drafts.POST("", r.drafts.CreateDraft)
			drafts.GET("/:id", r.drafts.GetDraft)
			drafts.PATCH("/:id", r.drafts.UpdateDetails)
			drafts.DELETE("/:id", r.drafts.DiscardDraft)
			drafts.POST("/:id/items", r.drafts.AddItem)
			drafts.PATCH("/:id/items/:index", r.drafts.UpdateItem)
			drafts.DELETE("/:id/items/:index", r.drafts.RemoveItem)
			drafts.PUT("/:id/items/:index/product", r.drafts.SelectProduct)
			drafts.PUT("/:id/customer", r.drafts.SetCustomer)
			drafts.POST("/:id/company", r.drafts.RefreshCompany)
			drafts.POST("/:id/number", r.drafts.AllocateNumber)
			drafts.POST("/:id/submit", r.drafts.SubmitDraft)
		}

		invoices := api.Group("/invoices")
		{
			invoices.GET("", r.invoices.ListInvoices)
			invoices.GET("/export", r.invoices.ExportInvoices)
			invoices.GET("/:id", r.invoices.GetInvoice)
			invoices.PUT("/:id/status", r.invoices.UpdateStatus)
			invoices.DELETE("/:id", r.invoices.DeleteInvoice)
			invoices.GET("/:id/pdf", r.invoices.DownloadPDF)
		}

		creditNotes := api.Group("/credit-notes")
		{
			creditNotes.GET("", r.invoices.ListCreditNotes)
			creditNotes.POST("", r.invoices.CreateCreditNote)
			creditNotes.GET("/:id", r.invoices.GetCreditNote)
		}

		subscriptions := api.Group("/subscriptions")
		{
			subscriptions.GET("/orders", r.subscriptions.ListOrders)
			subscriptions.POST("/orders", r.subscriptions.CreateOrder)
		}
	}

	return router
}

func pingDB(db *gorm.DB) handlers.Pinger {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func pingRedis(client *redis.Client) handlers.Pinger {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
