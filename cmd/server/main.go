package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"invopay/internal/auth"
	"invopay/internal/cache"
	"invopay/internal/config"
	"invopay/internal/db"
	"invopay/internal/handler"
	"invopay/internal/mail"
	"invopay/internal/model"
	"invopay/internal/repository"
	"invopay/internal/router"
	"invopay/internal/service"
)

// @title Invopay API
// @version 1.0
// @description Invoicing and CRM backend with JWT authentication, owned clients/companies and invoices with line items.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Email{},
		&model.Client{},
		&model.Company{},
		&model.Invoice{},
		&model.InvoiceItem{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	var mailer mail.Mailer = mail.NopMailer{}
	if cfg.SMTPConfigured() {
		mailer = mail.NewSMTPMailer(cfg)
	}
	mailQueue := mail.NewQueue(mailer, 100)
	defer mailQueue.Close()

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	emailRepo := repository.NewEmailRepository(gormDB)
	clientRepo := repository.NewClientRepository(gormDB)
	companyRepo := repository.NewCompanyRepository(gormDB)
	invoiceRepo := repository.NewInvoiceRepository(gormDB)

	// Auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Services
	authService := service.NewAuthService(userRepo, emailRepo, jwtService, tokenStore, mailQueue, cfg.AppBaseURL)
	userService := service.NewUserService(userRepo, emailRepo, cacheClient)
	clientService := service.NewClientService(clientRepo)
	companyService := service.NewCompanyService(companyRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo, clientRepo, companyRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	clientHandler := handler.NewClientHandler(clientService)
	companyHandler := handler.NewCompanyHandler(companyService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)

	router.Register(
		e,
		cfg,
		jwtService,
		tokenStore,
		authHandler,
		userHandler,
		clientHandler,
		companyHandler,
		invoiceHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
