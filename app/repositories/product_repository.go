package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/rangershop/app/models"
	"github.com/shashiranjanraj/rangershop/pkg/apperr"
)

// ProductRepository handles database operations for Product.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithTx returns a repository bound to tx, so catalogue mutations can join a
// larger transaction (order placement uses this).
func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

// Create persists a new product.
func (r *ProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// All returns every product in the catalogue.
func (r *ProductRepository) All() ([]models.Product, error) {
	var products []models.Product
	err := r.db.Order("created_at").Find(&products).Error
	return products, err
}

// FindByID looks up a product by primary key.
func (r *ProductRepository) FindByID(id string) (models.Product, error) {
	var product models.Product
	err := r.db.Where("id = ?", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return product, fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
	}
	return product, err
}

// FindByIDs returns the products whose primary keys appear in ids. Missing
// ids are silently absent from the result.
func (r *ProductRepository) FindByIDs(ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.db.Where("id IN ?", ids).Find(&products).Error
	return products, err
}

// FindByImageURL returns every product whose image url matches url.
func (r *ProductRepository) FindByImageURL(url string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("image_url = ?", url).Order("created_at").Find(&products).Error
	return products, err
}

// Save persists changes to an existing product.
func (r *ProductRepository) Save(product *models.Product) error {
	return r.db.Save(product).Error
}

// Delete removes a product.
func (r *ProductRepository) Delete(id string) error {
	res := r.db.Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// DecrementQuantity takes amount units out of stock. The guard in the WHERE
// clause makes driving the quantity below zero impossible no matter how the
// surrounding transaction interleaves: zero rows affected means there was not
// enough stock (or no such product).
func (r *ProductRepository) DecrementQuantity(id string, amount int) error {
	if amount < 0 {
		return fmt.Errorf("amount must not be negative: %w", apperr.ErrValidation)
	}

	res := r.db.Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", id, amount).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(id); err != nil {
			return err
		}
		return fmt.Errorf("insufficient stock for product %s: %w", id, apperr.ErrValidation)
	}
	return nil
}

// IncrementQuantity returns amount units to stock.
func (r *ProductRepository) IncrementQuantity(id string, amount int) error {
	if amount < 0 {
		return fmt.Errorf("amount must not be negative: %w", apperr.ErrValidation)
	}

	res := r.db.Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}
