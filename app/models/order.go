package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer is an order-placing identity, distinct from a registered User.
// Its ID is supplied by the caller (the subject of the access token) and the
// row is created lazily the first time an order references it.
type Customer struct {
	ID        string    `gorm:"primaryKey;size:36" json:"cust_id"`
	CreatedAt time.Time `json:"date_created"`

	OrderLines []OrderLine `gorm:"foreignKey:CustomerID" json:"-"`
}

// Order aggregates order lines under a running total. The total starts at
// 0.00 and is only ever moved by increments and decrements as lines are
// added, updated or removed.
type Order struct {
	ID        string          `gorm:"primaryKey;size:36" json:"order_id"`
	Total     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"order_total"`
	CreatedAt time.Time       `json:"date_created"`

	OrderLines []OrderLine `gorm:"foreignKey:OrderID" json:"-"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderLine joins a Product, an Order and a Customer with a quantity and a
// price snapshot. Price is unit price × quantity captured when the line is
// created or its quantity changes; later catalogue price edits do not touch
// existing lines.
type OrderLine struct {
	ID         string          `gorm:"primaryKey;size:36" json:"id"`
	OrderID    string          `gorm:"size:36;not null;index;uniqueIndex:idx_order_product" json:"order_id"`
	ProductID  string          `gorm:"size:36;not null;index;uniqueIndex:idx_order_product" json:"prod_id"`
	CustomerID string          `gorm:"size:36;not null;index" json:"cust_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt  time.Time       `json:"date_created"`
}

func (l *OrderLine) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
