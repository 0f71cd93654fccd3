package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/rangershop/app/models"
	"github.com/shashiranjanraj/rangershop/app/repositories"
	"github.com/shashiranjanraj/rangershop/app/services"
	"github.com/shashiranjanraj/rangershop/pkg/apperr"
)

func newOrderService(t *testing.T) (*services.OrderService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return services.NewOrderService(db, repositories.NewProductRepository(db), nil), db
}

func productQuantity(t *testing.T, db *gorm.DB, id string) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, "id = ?", id).Error)
	return p.Quantity
}

func orderTotal(t *testing.T, db *gorm.DB, id string) string {
	t.Helper()
	var o models.Order
	require.NoError(t, db.First(&o, "id = ?", id).Error)
	return o.Total.StringFixed(2)
}

func TestPlaceOrder(t *testing.T) {
	svc, db := newOrderService(t)
	ctx := context.Background()

	gloves := seedProduct(t, db, "ranger gloves", "5.00", 10)
	boots := seedProduct(t, db, "ranger boots", "20.50", 4)

	order, err := svc.PlaceOrder(ctx, "cust-1", []services.OrderItemInput{
		{ProductID: gloves.ID, Quantity: 3},
		{ProductID: boots.ID, Quantity: 1},
	})
	require.NoError(t, err)
	require.NotEmpty(t, order.ID)

	// total = 3*5.00 + 1*20.50
	assert.Equal(t, "35.50", order.Total.StringFixed(2))
	assert.Equal(t, 7, productQuantity(t, db, gloves.ID))
	assert.Equal(t, 3, productQuantity(t, db, boots.ID))

	var lines []models.OrderLine
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&lines).Error)
	assert.Len(t, lines, 2)

	// The customer row appears lazily.
	var customer models.Customer
	require.NoError(t, db.First(&customer, "id = ?", "cust-1").Error)
}

func TestPlaceOrderValidation(t *testing.T) {
	svc, db := newOrderService(t)
	ctx := context.Background()
	gloves := seedProduct(t, db, "gloves", "5.00", 10)

	_, err := svc.PlaceOrder(ctx, "", []services.OrderItemInput{{ProductID: gloves.ID, Quantity: 1}})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.PlaceOrder(ctx, "cust-1", nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.PlaceOrder(ctx, "cust-1", []services.OrderItemInput{{ProductID: gloves.ID, Quantity: 0}})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.PlaceOrder(ctx, "cust-1", []services.OrderItemInput{{ProductID: gloves.ID, Quantity: -2}})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestPlaceOrderInsufficientStockRollsBack(t *testing.T) {
	svc, db := newOrderService(t)
	ctx := context.Background()

	gloves := seedProduct(t, db, "gloves", "5.00", 10)
	boots := seedProduct(t, db, "boots", "20.50", 2)

	// Second line exceeds stock; the first line's effects must roll back too.
	_, err := svc.PlaceOrder(ctx, "cust-1", []services.OrderItemInput{
		{ProductID: gloves.ID, Quantity: 3},
		{ProductID: boots.ID, Quantity: 5},
	})
	require.ErrorIs(t, err, apperr.ErrValidation)

	assert.Equal(t, 10, productQuantity(t, db, gloves.ID))
	assert.Equal(t, 2, productQuantity(t, db, boots.ID))

	var orders, lines int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderLine{}).Count(&lines).Error)
	assert.Zero(t, orders)
	assert.Zero(t, lines)
}

func TestPlaceOrderUnknownProductRollsBack(t *testing.T) {
	svc, db := newOrderService(t)
	ctx := context.Background()

	gloves := seedProduct(t, db, "gloves", "5.00", 10)

	_, err := svc.PlaceOrder(ctx, "cust-1", []services.OrderItemInput{
		{ProductID: gloves.ID, Quantity: 2},
		{ProductID: "no-such-product", Quantity: 1},
	})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Equal(t, 10, productQuantity(t, db, gloves.ID))

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestUpdateLine(t *testing.T) {
	svc, db := newOrderService(t)
	ctx := context.Background()

	gloves := seedProduct(t, db, "gloves", "5.00", 10)

	order, err := svc.PlaceOrder(ctx, "cust-1", []services.OrderItemInput{
		{ProductID: gloves.ID, Quantity: 3},
	})
	require.NoError(t, err)
	require.Equal(t, "15.00", order.Total.StringFixed(2))
	require.Equal(t, 7, productQuantity(t, db, gloves.ID))

	// Increase 3 -> 5: two more units leave stock, total becomes 25.00.
	updated, err := svc.UpdateLine(ctx, order.ID, gloves.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, "25.00", updated.Total.StringFixed(2))
	assert.Equal(t, 5, productQuantity(t, db, gloves.ID))

	// Decrease 5 -> 2: three units come back, total becomes 10.00.
	updated, err = svc.UpdateLine(ctx, order.ID, gloves.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "10.00", updated.Total.StringFixed(2))
	assert.Equal(t, 8, productQuantity(t, db, gloves.ID))

	// Same quantity is a no-op on both counters.
	updated, err = svc.UpdateLine(ctx, order.ID, gloves.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "10.00", updated.Total.StringFixed(2))
	assert.Equal(t, 8, productQuantity(t, db, gloves.ID))
}

func TestUpdateLineRepricesAtCurrentUnitPrice(t *testing.T) {
	svc, db := newOrderService(t)
	ctx := context.Background()

	gloves := seedProduct(t, db, "gloves", "5.00", 10)

	order, err := svc.PlaceOrder(ctx, "cust-1", []services.OrderItemInput{
		{ProductID: gloves.ID, Quantity: 2},
	})
	require.NoError(t, err)

	// Catalogue price changes after the order was placed.
	require.NoError(t, db.Model(&models.Product{}).
		Where("id = ?", gloves.ID).
		Update("price", "6.00").Error)

	updated, err := svc.UpdateLine(ctx, order.ID, gloves.ID, 3)
	require.NoError(t, err)

	// New line price snaps to 3 * 6.00; total moved by the difference.
	var line models.OrderLine
	require.NoError(t, db.Where("order_id = ? AND product_id = ?", order.ID, gloves.ID).First(&line).Error)
	assert.Equal(t, "18.00", line.Price.StringFixed(2))
	assert.Equal(t, "18.00", updated.Total.StringFixed(2))

	// A reprice at unchanged quantity still settles the total; stock
	// does not move.
	require.NoError(t, db.Model(&models.Product{}).
		Where("id = ?", gloves.ID).
		Update("price", "7.00").Error)

	updated, err = svc.UpdateLine(ctx, order.ID, gloves.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, "21.00", updated.Total.StringFixed(2))
	assert.Equal(t, 7, productQuantity(t, db, gloves.ID))
}

func TestUpdateLineInsufficientStock(t *testing.T) {
	svc, db := newOrderService(t)
	ctx := context.Background()

	gloves := seedProduct(t, db, "gloves", "5.00", 4)

	order, err := svc.PlaceOrder(ctx, "cust-1", []services.OrderItemInput{
		{ProductID: gloves.ID, Quantity: 3},
	})
	require.NoError(t, err)

	// 3 -> 6 needs three more units but only one remains.
	_, err = svc.UpdateLine(ctx, order.ID, gloves.ID, 6)
	require.ErrorIs(t, err, apperr.ErrValidation)

	assert.Equal(t, "15.00", orderTotal(t, db, order.ID))
	assert.Equal(t, 1, productQuantity(t, db, gloves.ID))
}

func TestUpdateLineNotFound(t *testing.T) {
	svc, db := newOrderService(t)
	ctx := context.Background()

	gloves := seedProduct(t, db, "gloves", "5.00", 10)
	order, err := svc.PlaceOrder(ctx, "cust-1", []services.OrderItemInput{
		{ProductID: gloves.ID, Quantity: 1},
	})
	require.NoError(t, err)

	_, err = svc.UpdateLine(ctx, order.ID, "no-such-product", 2)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.UpdateLine(ctx, "no-such-order", gloves.ID, 2)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	// Nothing moved.
	assert.Equal(t, "5.00", orderTotal(t, db, order.ID))
	assert.Equal(t, 9, productQuantity(t, db, gloves.ID))
}

func TestDeleteLine(t *testing.T) {
	svc, db := newOrderService(t)
	ctx := context.Background()

	gloves := seedProduct(t, db, "gloves", "5.00", 10)
	boots := seedProduct(t, db, "boots", "20.50", 4)

	order, err := svc.PlaceOrder(ctx, "cust-1", []services.OrderItemInput{
		{ProductID: gloves.ID, Quantity: 3},
		{ProductID: boots.ID, Quantity: 1},
	})
	require.NoError(t, err)

	updated, err := svc.DeleteLine(ctx, order.ID, gloves.ID)
	require.NoError(t, err)
	assert.Equal(t, "20.50", updated.Total.StringFixed(2))
	assert.Equal(t, 10, productQuantity(t, db, gloves.ID))

	// Deleting the same line again fails and mutates nothing.
	_, err = svc.DeleteLine(ctx, order.ID, gloves.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "20.50", orderTotal(t, db, order.ID))

	// Removing the last line leaves an empty order with a zero total.
	updated, err = svc.DeleteLine(ctx, order.ID, boots.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.00", updated.Total.StringFixed(2))
	assert.Equal(t, 4, productQuantity(t, db, boots.ID))
}

func TestListOrderLines(t *testing.T) {
	svc, db := newOrderService(t)
	ctx := context.Background()

	gloves := seedProduct(t, db, "gloves", "5.00", 10)
	boots := seedProduct(t, db, "boots", "20.50", 4)

	_, err := svc.PlaceOrder(ctx, "cust-1", []services.OrderItemInput{
		{ProductID: gloves.ID, Quantity: 3},
		{ProductID: boots.ID, Quantity: 1},
	})
	require.NoError(t, err)

	// Another customer's order must not leak into the listing.
	_, err = svc.PlaceOrder(ctx, "cust-2", []services.OrderItemInput{
		{ProductID: gloves.ID, Quantity: 1},
	})
	require.NoError(t, err)

	views, err := svc.ListOrderLines(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, gloves.ID, views[0].Product.ID)
	assert.Equal(t, 3, views[0].Quantity)
	assert.Equal(t, "gloves", views[0].Name)

	// Reading twice mutates nothing.
	again, err := svc.ListOrderLines(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, views, again)

	// Unknown customers get an empty list, not an error.
	empty, err := svc.ListOrderLines(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListOrderLinesWithDeletedProduct(t *testing.T) {
	svc, db := newOrderService(t)
	ctx := context.Background()

	gloves := seedProduct(t, db, "gloves", "5.00", 10)
	_, err := svc.PlaceOrder(ctx, "cust-1", []services.OrderItemInput{
		{ProductID: gloves.ID, Quantity: 2},
	})
	require.NoError(t, err)

	require.NoError(t, db.Delete(&models.Product{}, "id = ?", gloves.ID).Error)

	views, err := svc.ListOrderLines(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, views, 1)

	// The line survives with the bare product id and no catalogue data.
	assert.Equal(t, gloves.ID, views[0].Product.ID)
	assert.Empty(t, views[0].Name)
	assert.Equal(t, 2, views[0].Quantity)
}

func TestOrderLineUniquePerOrderAndProduct(t *testing.T) {
	svc, db := newOrderService(t)
	ctx := context.Background()

	gloves := seedProduct(t, db, "gloves", "5.00", 10)
	order, err := svc.PlaceOrder(ctx, "cust-1", []services.OrderItemInput{
		{ProductID: gloves.ID, Quantity: 1},
	})
	require.NoError(t, err)

	// A second line for the same (order, product) pair violates the unique
	// index directly at the storage layer.
	dup := models.OrderLine{
		OrderID:    order.ID,
		ProductID:  gloves.ID,
		CustomerID: "cust-1",
		Quantity:   1,
		Price:      gloves.Price,
	}
	err = db.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}
