package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/rangershop/app/models"
	"github.com/shashiranjanraj/rangershop/app/repositories"
	"github.com/shashiranjanraj/rangershop/pkg/apperr"
	"github.com/shashiranjanraj/rangershop/pkg/collection"
	"github.com/shashiranjanraj/rangershop/pkg/event"
	"github.com/shashiranjanraj/rangershop/pkg/logger"
	"github.com/shashiranjanraj/rangershop/pkg/metrics"
)

// OrderService owns the order ledger: placing orders and keeping
// Order.Total and Product.Quantity consistent as lines are added, updated or
// removed. Every mutator runs inside a single database transaction, so the
// invariants
//
//	order.total    == Σ line.price over the order's lines
//	product.quantity == stocked − Σ line.quantity over active lines
//
// hold at every commit point.
type OrderService struct {
	db       *gorm.DB
	products *repositories.ProductRepository
	events   *event.Bus
}

func NewOrderService(db *gorm.DB, products *repositories.ProductRepository, events *event.Bus) *OrderService {
	return &OrderService{db: db, products: products, events: events}
}

// OrderItemInput is one requested (product, quantity) pair. Per-item checks
// happen in PlaceOrder; struct validation does not descend into slices.
type OrderItemInput struct {
	ProductID string `json:"prod_id"`
	Quantity  int    `json:"quantity"`
}

// OrderLineView is an order line annotated with the product's current
// catalogue attributes, as returned by ListOrderLines. The line's quantity
// and ids shadow the product's own fields, mirroring what the storefront
// expects.
type OrderLineView struct {
	models.Product
	Quantity int    `json:"quantity"`
	OrderID  string `json:"order_id"`
	LineID   string `json:"id"`
}

// PlaceOrder creates an Order for customerID from the requested items, in the
// order supplied. Per line it snapshots price = unit price × quantity, adds
// that to the order total and takes the quantity out of stock. The whole call
// commits atomically: a missing product or insufficient stock on any line
// rolls back every line and every inventory adjustment.
//
// The Customer row is created lazily on first use of an unseen id.
func (s *OrderService) PlaceOrder(ctx context.Context, customerID string, items []OrderItemInput) (models.Order, error) {
	var order models.Order

	if customerID == "" {
		return order, fmt.Errorf("customer id is required: %w", apperr.ErrValidation)
	}
	if len(items) == 0 {
		return order, fmt.Errorf("order needs at least one line: %w", apperr.ErrValidation)
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return order, fmt.Errorf("quantity must be a positive integer: %w", apperr.ErrValidation)
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer := models.Customer{ID: customerID}
		if err := tx.Where("id = ?", customerID).FirstOrCreate(&customer).Error; err != nil {
			return fmt.Errorf("customer %s: %w", customerID, err)
		}

		order = models.Order{Total: decimal.Zero}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		products := s.products.WithTx(tx)

		for _, item := range items {
			product, err := products.FindByID(item.ProductID)
			if err != nil {
				return err
			}

			line := models.OrderLine{
				OrderID:    order.ID,
				ProductID:  product.ID,
				CustomerID: customer.ID,
				Quantity:   item.Quantity,
				Price:      product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
			}
			if err := tx.Create(&line).Error; err != nil {
				return fmt.Errorf("create order line: %w", err)
			}

			if err := incrementOrderTotal(tx, order.ID, line.Price); err != nil {
				return err
			}
			if err := products.DecrementQuantity(product.ID, item.Quantity); err != nil {
				return err
			}
		}

		return tx.First(&order, "id = ?", order.ID).Error
	})
	if err != nil {
		return models.Order{}, err
	}

	metrics.OrdersPlaced.Inc()
	s.events.Fire(event.OrderPlaced, order)
	logger.WithCtx(ctx).Info("order placed",
		"order_id", order.ID,
		"customer_id", customerID,
		"lines", len(items),
		"total", order.Total.StringFixed(2),
	)

	return order, nil
}

// ListOrderLines returns every line belonging to any order placed by
// customerID, newest registration order preserved. Read-only.
func (s *OrderService) ListOrderLines(ctx context.Context, customerID string) ([]OrderLineView, error) {
	var lines []models.OrderLine
	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at").
		Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}

	ids := collection.Unique(collection.Map(lines, func(l models.OrderLine) string {
		return l.ProductID
	}))
	products, err := s.products.FindByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("load line products: %w", err)
	}
	byID := collection.KeyBy(products, func(p models.Product) string { return p.ID })

	views := collection.Map(lines, func(line models.OrderLine) OrderLineView {
		product, ok := byID[line.ProductID]
		if !ok {
			// A product deleted from the catalogue after ordering
			// still has lines; report them without catalogue data.
			product = models.Product{ID: line.ProductID}
		}
		return OrderLineView{
			Product:  product,
			Quantity: line.Quantity,
			OrderID:  line.OrderID,
			LineID:   line.ID,
		}
	})

	return views, nil
}

// UpdateLine changes the quantity of the unique line for (orderID,
// productID). The line price is recomputed at the product's current unit
// price, and the quantity delta is settled against both the product's stock
// and the order's total. All four fields commit atomically.
func (s *OrderService) UpdateLine(ctx context.Context, orderID, productID string, newQuantity int) (models.Order, error) {
	var order models.Order

	if newQuantity < 1 {
		return order, fmt.Errorf("quantity must be a positive integer: %w", apperr.ErrValidation)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		line, err := findLine(tx, orderID, productID)
		if err != nil {
			return err
		}

		products := s.products.WithTx(tx)
		product, err := products.FindByID(productID)
		if err != nil {
			return err
		}

		newPrice := product.Price.Mul(decimal.NewFromInt(int64(newQuantity)))
		delta := newQuantity - line.Quantity

		switch {
		case delta > 0:
			if err := products.DecrementQuantity(productID, delta); err != nil {
				return err
			}
		case delta < 0:
			if err := products.IncrementQuantity(productID, -delta); err != nil {
				return err
			}
		}

		// The total settles on the price difference, not the quantity
		// delta; a repriced product moves the total even at equal
		// quantity.
		priceDiff := newPrice.Sub(line.Price)
		switch {
		case priceDiff.IsPositive():
			if err := incrementOrderTotal(tx, orderID, priceDiff); err != nil {
				return err
			}
		case priceDiff.IsNegative():
			if err := decrementOrderTotal(tx, orderID, priceDiff.Neg()); err != nil {
				return err
			}
		}

		if err := tx.Model(&line).Updates(map[string]interface{}{
			"quantity": newQuantity,
			"price":    newPrice,
		}).Error; err != nil {
			return fmt.Errorf("update order line: %w", err)
		}

		return tx.First(&order, "id = ?", orderID).Error
	})
	if err != nil {
		return models.Order{}, err
	}

	metrics.OrderLineMutations.WithLabelValues("update").Inc()
	return order, nil
}

// DeleteLine removes the line for (orderID, productID), reversing its effect:
// the order total drops by the line price and the stock comes back. Atomic
// with the two counter adjustments.
func (s *OrderService) DeleteLine(ctx context.Context, orderID, productID string) (models.Order, error) {
	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		line, err := findLine(tx, orderID, productID)
		if err != nil {
			return err
		}

		if err := decrementOrderTotal(tx, orderID, line.Price); err != nil {
			return err
		}
		if err := s.products.WithTx(tx).IncrementQuantity(productID, line.Quantity); err != nil {
			return err
		}
		if err := tx.Delete(&line).Error; err != nil {
			return fmt.Errorf("delete order line: %w", err)
		}

		return tx.First(&order, "id = ?", orderID).Error
	})
	if err != nil {
		return models.Order{}, err
	}

	metrics.OrderLineMutations.WithLabelValues("delete").Inc()
	return order, nil
}

func findLine(tx *gorm.DB, orderID, productID string) (models.OrderLine, error) {
	var line models.OrderLine
	err := tx.Where("order_id = ? AND product_id = ?", orderID, productID).First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return line, fmt.Errorf("order line %s/%s: %w", orderID, productID, apperr.ErrNotFound)
	}
	return line, err
}

// The order total only ever moves through these two helpers; it is never
// assigned directly after creation.

func incrementOrderTotal(tx *gorm.DB, orderID string, amount decimal.Decimal) error {
	res := tx.Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("total", gorm.Expr("total + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", orderID, apperr.ErrNotFound)
	}
	return nil
}

func decrementOrderTotal(tx *gorm.DB, orderID string, amount decimal.Decimal) error {
	res := tx.Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("total", gorm.Expr("total - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", orderID, apperr.ErrNotFound)
	}
	return nil
}
