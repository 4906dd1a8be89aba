// Command seed populates the database with demo users and sample products.
// It is idempotent for products (the catalog is wiped first) and skips users
// that already exist.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopkeep/internal/identity"
	"shopkeep/internal/platform/config"
	"shopkeep/internal/platform/database"
	"shopkeep/internal/platform/logger"
	"shopkeep/internal/product"
	"shopkeep/internal/user"
	"shopkeep/migrations"
	"shopkeep/pkg/secrets"
)

type demoUser struct {
	name     string
	email    string
	password string
	role     identity.Role
}

func main() {
	log := logger.New()
	cfg := config.FromEnv()

	if cfg.DatabaseURL == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	pool, err := database.New(database.Config{URL: cfg.DatabaseURL, MaxOpenConns: 5, MaxIdleConns: 1, ConnMaxLifetime: time.Minute})
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close() //nolint:errcheck // shutdown path

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := migrations.Apply(ctx, pool.DB()); err != nil {
		log.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	users := user.NewPostgres(pool.DB())
	for _, du := range demoUsers() {
		if _, err := users.FindByEmail(ctx, du.email); err == nil {
			continue
		} else if !errors.Is(err, user.ErrNotFound) {
			log.Error("failed to check user", "email", du.email, "error", err)
			os.Exit(1)
		}
		hash, err := secrets.HashPassword(du.password)
		if err != nil {
			log.Error("failed to hash password", "error", err)
			os.Exit(1)
		}
		if err := users.Create(ctx, &user.User{
			ID:           uuid.New(),
			Name:         du.name,
			Email:        du.email,
			PasswordHash: hash,
			Role:         du.role,
			CreatedAt:    time.Now(),
		}); err != nil {
			log.Error("failed to create user", "email", du.email, "error", err)
			os.Exit(1)
		}
		log.Info("user created", "email", du.email, "role", du.role)
	}

	products := product.NewPostgres(pool.DB())
	if err := products.Truncate(ctx); err != nil {
		log.Error("failed to clear products", "error", err)
		os.Exit(1)
	}
	for _, p := range sampleProducts() {
		item := p
		if err := products.Create(ctx, &item); err != nil {
			log.Error("failed to create product", "name", item.Name, "error", err)
			os.Exit(1)
		}
	}
	log.Info("seed complete", "products", len(sampleProducts()))
}

func demoUsers() []demoUser {
	return []demoUser{
		{name: "Admin", email: "admin@example.com", password: "admin123", role: identity.RoleAdmin},
		{name: "Seller", email: "seller@example.com", password: "seller123", role: identity.RoleSeller},
		{name: "Customer", email: "customer@example.com", password: "customer123", role: identity.RoleCustomer},
	}
}

func sampleProducts() []product.Product {
	now := time.Now()
	nextWeek := now.Add(7 * 24 * time.Hour)
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	return []product.Product{
		{Name: "Smartphone X Pro", Price: price("999.00"), Stock: 150, Status: product.StatusActive, AvailableAt: now},
		{Name: "Wireless Earbuds Ultra", Price: price("199.00"), Stock: 300, Status: product.StatusActive, AvailableAt: now},
		{Name: "Smart Home Hub", Price: price("149.00"), Stock: 200, Status: product.StatusActive, AvailableAt: now},
		{Name: "4K Ultra HD Smart TV", Price: price("799.00"), Stock: 50, Status: product.StatusInactive, AvailableAt: nextWeek},
		{Name: "Gaming Laptop Pro", Price: price("1299.00"), Stock: 75, Status: product.StatusActive, AvailableAt: now},
		{Name: "VR Headset Plus", Price: price("349.00"), Stock: 0, Status: product.StatusArchived, AvailableAt: now},
		{Name: "Smartwatch Elite", Price: price("249.00"), Stock: 250, Status: product.StatusActive, AvailableAt: now},
		{Name: "Bluetooth Speaker Max", Price: price("99.00"), Stock: 400, Status: product.StatusActive, AvailableAt: now},
		{Name: "Portable Charger Super", Price: price("59.00"), Stock: 500, Status: product.StatusActive, AvailableAt: now},
		{Name: "Smart Thermostat Pro", Price: price("199.00"), Stock: 175, Status: product.StatusInactive, AvailableAt: now},
	}
}
