package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"invopay/internal/auth"
	"invopay/internal/config"
	"invopay/internal/db"
	"invopay/internal/model"
	"invopay/internal/repository"
	"invopay/internal/service"
)

const (
	demoUsername = "demo@invopay.local"
	demoPassword = "demo-password"
)

func main() {
	log.Println("Starting seed script...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Email{},
		&model.Client{},
		&model.Company{},
		&model.Invoice{},
		&model.InvoiceItem{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()

	userRepo := repository.NewUserRepository(gormDB)
	clientRepo := repository.NewClientRepository(gormDB)
	companyRepo := repository.NewCompanyRepository(gormDB)
	invoiceRepo := repository.NewInvoiceRepository(gormDB)

	user, err := seedUser(ctx, userRepo)
	if err != nil {
		log.Fatalf("Failed to seed user: %v", err)
	}

	client := &model.Client{
		UserID:      user.ID,
		Name:        "Acme Corporation",
		Email:       "billing@acme.example",
		CompanyName: "Acme Corporation Ltd.",
		Address1:    "1 Coyote Canyon",
		City:        "Phoenix",
		State:       "AZ",
		ZipCode:     "85001",
		Country:     "US",
	}
	if err := clientRepo.Create(ctx, client); err != nil {
		log.Fatalf("Failed to seed client: %v", err)
	}
	log.Printf("Seeded client %d (%s)", client.ID, client.Name)

	company := &model.Company{
		UserID:   user.ID,
		Name:     "Demo Consulting",
		Address1: "42 Main Street",
		City:     "Springfield",
		State:    "IL",
		ZipCode:  "62701",
		Country:  "US",
	}
	if err := companyRepo.Create(ctx, company); err != nil {
		log.Fatalf("Failed to seed company: %v", err)
	}
	log.Printf("Seeded company %d (%s)", company.ID, company.Name)

	invoiceService := service.NewInvoiceService(invoiceRepo, clientRepo, companyRepo)
	invoice, items, err := invoiceService.Create(ctx, user.ID, service.CreateInvoiceInput{
		ClientID:    client.ID,
		CompanyID:   company.ID,
		Description: "Consulting services",
		Currency:    "USD",
		Items: []service.ItemInput{
			{Name: "Discovery workshop", Amount: decimal.NewFromFloat(500.00), Quantity: decimal.NewFromInt(1)},
			{Name: "Development", Description: "Hourly rate", Amount: decimal.NewFromFloat(120.00), Quantity: decimal.NewFromFloat(37.5)},
		},
	})
	if err != nil {
		log.Fatalf("Failed to seed invoice: %v", err)
	}
	log.Printf("Seeded invoice %s with %d items, amount %s %s", invoice.InvoiceNumber, len(items), invoice.Amount, invoice.Currency)

	log.Println("Seed completed")
	log.Printf("Demo credentials: %s / %s", demoUsername, demoPassword)
}

// seedUser creates the demo user with a pre-verified e-mail, or returns
// the existing one so the script stays re-runnable.
func seedUser(ctx context.Context, userRepo repository.UserRepository) (*model.User, error) {
	existing, err := userRepo.FindByUsername(ctx, demoUsername)
	if err == nil {
		log.Printf("Demo user already present (id=%d)", existing.ID)
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := auth.HashPassword(demoPassword)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Role:           model.RoleCustomer,
		Username:       demoUsername,
		HashedPassword: hashed,
		ProfileName:    "Demo User",
	}
	email := &model.Email{
		Address:           demoUsername,
		VerificationToken: uuid.New().String(),
		Verified:          true,
		TokenGeneratedAt:  time.Now(),
	}
	if err := userRepo.CreateWithEmail(ctx, user, email); err != nil {
		return nil, err
	}
	log.Printf("Seeded demo user (id=%d)", user.ID)
	return user, nil
}
