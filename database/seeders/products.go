package seeders

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/rangershop/app/models"
)

func init() {
	Register("products", SeedProducts)
}

// SeedProducts stocks the catalogue with a few starter items. Existing rows
// with the same name are left alone so the seeder can run repeatedly.
func SeedProducts(db *gorm.DB) error {
	products := []models.Product{
		{
			Name:        "Red Ranger Helmet",
			Description: "Full-size wearable replica helmet.",
			Price:       decimal.NewFromFloat(89.99),
			Quantity:    12,
		},
		{
			Name:        "Megazord Model Kit",
			Description: "Articulated five-part combining model.",
			Price:       decimal.NewFromFloat(54.50),
			Quantity:    30,
		},
		{
			Name:        "Power Morpher",
			Description: "Die-cast morpher with interchangeable coins.",
			Price:       decimal.NewFromFloat(34.00),
			Quantity:    45,
		},
	}

	for _, p := range products {
		var existing models.Product
		err := db.Where("name = ?", p.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&p).Error; err != nil {
			return err
		}
	}

	return nil
}
