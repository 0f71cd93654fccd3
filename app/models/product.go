package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a product in the catalogue.
type Product struct {
	ID          string          `gorm:"primaryKey;size:36" json:"prod_id"`
	Name        string          `gorm:"size:255;not null;index" json:"name"`
	ImageURL    string          `gorm:"size:500" json:"image"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity    int             `gorm:"not null;default:0" json:"quantity"`
	CreatedAt   time.Time       `json:"date_added"`
	UpdatedAt   time.Time       `json:"-"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
