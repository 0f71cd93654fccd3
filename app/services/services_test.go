package services_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/rangershop/app/models"
	"github.com/shashiranjanraj/rangershop/pkg/database"
)

// newTestDB opens a fresh in-memory SQLite database with the full schema.
// The shared-cache name is derived from the test name so parallel packages
// never collide.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Customer{},
		&models.Order{},
		&models.OrderLine{},
	))

	return db
}

// seedProduct inserts a product with the given unit price and stock.
func seedProduct(t *testing.T, db *gorm.DB, name, price string, quantity int) models.Product {
	t.Helper()

	p := models.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Quantity: quantity,
		ImageURL: "https://img.example.com/" + name + ".png",
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}
