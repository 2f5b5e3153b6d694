package ecomschema

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type seedCategory struct {
	Name        string
	Description string
}

type seedUser struct {
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
}

type seedProduct struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	CategoryID    int
	SKU           string
	StockQuantity int
}

var (
	seedCategories = []seedCategory{
		{"Electronics", "Electronic devices and gadgets"},
		{"Clothing", "Apparel and fashion items"},
		{"Books", "Books and literature"},
	}

	seedUsers = []seedUser{
		{"johndoe", "john@example.com", "hashed_password_123", "John", "Doe"},
		{"janesmith", "jane@example.com", "hashed_password_456", "Jane", "Smith"},
	}

	seedProducts = []seedProduct{
		{"Smartphone", "Latest smartphone with advanced features", decimal.RequireFromString("599.99"), 1, "PHONE001", 50},
		{"T-Shirt", "Comfortable cotton t-shirt", decimal.RequireFromString("29.99"), 2, "SHIRT001", 100},
		{"Programming Book", "Learn programming fundamentals", decimal.RequireFromString("49.99"), 3, "BOOK001", 25},
	}
)

// SeedResult counts the rows each seed pass inserted per table.
type SeedResult struct {
	Inserted map[string]int
	Errors   []error
}

// Seed loads the sample catalog. Every insert is ON CONFLICT DO NOTHING,
// so reruns leave existing rows alone. Individual failures are collected
// rather than aborting the pass.
func (s *Store) Seed(ctx context.Context) (SeedResult, error) {
	res := SeedResult{Inserted: map[string]int{}}

	for _, c := range seedCategories {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO categories (category_name, description) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			c.Name, c.Description)
		if err != nil {
			s.log.Error("seeding category failed", zap.String("category", c.Name), zap.Error(err))
			res.Errors = append(res.Errors, errors.Wrapf(err, "seeding category %s", c.Name))
			continue
		}
		res.Inserted["categories"]++
	}

	for _, u := range seedUsers {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO users (username, email, password_hash, first_name, last_name) VALUES ($1, $2, $3, $4, $5) ON CONFLICT DO NOTHING`,
			u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName)
		if err != nil {
			s.log.Error("seeding user failed", zap.String("username", u.Username), zap.Error(err))
			res.Errors = append(res.Errors, errors.Wrapf(err, "seeding user %s", u.Username))
			continue
		}
		res.Inserted["users"]++
	}

	for _, p := range seedProducts {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO products (product_name, description, price, category_id, sku, stock_quantity) VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT DO NOTHING`,
			p.Name, p.Description, p.Price, p.CategoryID, p.SKU, p.StockQuantity)
		if err != nil {
			s.log.Error("seeding product failed", zap.String("sku", p.SKU), zap.Error(err))
			res.Errors = append(res.Errors, errors.Wrapf(err, "seeding product %s", p.SKU))
			continue
		}
		res.Inserted["products"]++
	}

	if len(res.Errors) > 0 {
		return res, errors.Newf("%d seed statements failed", len(res.Errors))
	}
	return res, nil
}
