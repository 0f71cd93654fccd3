package services

import (
	"context"
	"fmt"
	"path"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/rangershop/app/models"
	"github.com/shashiranjanraj/rangershop/app/repositories"
	"github.com/shashiranjanraj/rangershop/pkg/apperr"
	"github.com/shashiranjanraj/rangershop/pkg/imagesearch"
	"github.com/shashiranjanraj/rangershop/pkg/logger"
	"github.com/shashiranjanraj/rangershop/pkg/storage"
	"github.com/shashiranjanraj/rangershop/pkg/workerpool"
)

// PlaceholderImageURL is used when no image was supplied and the image search
// collaborator could not produce one. Product creation never fails on a
// missing picture.
const PlaceholderImageURL = "https://placehold.co/600x400?text=rangershop"

// CatalogService handles product CRUD, stock amendments and product imagery.
type CatalogService struct {
	products *repositories.ProductRepository
	images   *imagesearch.Client
	disk     storage.Disk
}

func NewCatalogService(products *repositories.ProductRepository, images *imagesearch.Client, disk storage.Disk) *CatalogService {
	return &CatalogService{products: products, images: images, disk: disk}
}

// CreateProductInput is the product creation payload. Image and Description
// are optional.
type CreateProductInput struct {
	Name        string          `json:"name"        validate:"required,max=100"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"    validate:"nullable,gte=0"`
	Image       string          `json:"image"       validate:"nullable,url"`
	Description string          `json:"description" validate:"nullable,max=500"`
}

// Create adds a product to the catalogue. When no image URL is supplied the
// image-search collaborator is asked for one (best effort, cached); on any
// upstream failure the placeholder is used instead.
func (s *CatalogService) Create(ctx context.Context, in CreateProductInput) (models.Product, error) {
	var product models.Product

	if in.Name == "" {
		return product, fmt.Errorf("product name is required: %w", apperr.ErrValidation)
	}
	if in.Price.IsNegative() {
		return product, fmt.Errorf("price must not be negative: %w", apperr.ErrValidation)
	}
	if in.Quantity < 0 {
		return product, fmt.Errorf("quantity must not be negative: %w", apperr.ErrValidation)
	}

	image := in.Image
	if image == "" {
		found, err := s.images.Lookup(ctx, in.Name)
		if err != nil {
			logger.WithCtx(ctx).Warn("image lookup failed, using placeholder",
				"product", in.Name, "error", err)
			found = PlaceholderImageURL
		}
		image = found
	}

	product = models.Product{
		Name:        in.Name,
		ImageURL:    image,
		Description: in.Description,
		Price:       in.Price.Round(2),
		Quantity:    in.Quantity,
	}
	if err := s.products.Create(&product); err != nil {
		return models.Product{}, err
	}

	return product, nil
}

// All returns the whole catalogue.
func (s *CatalogService) All(ctx context.Context) ([]models.Product, error) {
	return s.products.All()
}

// Get returns one product by id.
func (s *CatalogService) Get(ctx context.Context, id string) (models.Product, error) {
	return s.products.FindByID(id)
}

// UpdateProductInput carries optional field updates; nil means "leave as is".
type UpdateProductInput struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"`
	Image       *string          `json:"image"`
	Description *string          `json:"description"`
}

// Update applies the provided fields to an existing product.
func (s *CatalogService) Update(ctx context.Context, id string, in UpdateProductInput) (models.Product, error) {
	product, err := s.products.FindByID(id)
	if err != nil {
		return models.Product{}, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return models.Product{}, fmt.Errorf("product name is required: %w", apperr.ErrValidation)
		}
		product.Name = *in.Name
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return models.Product{}, fmt.Errorf("price must not be negative: %w", apperr.ErrValidation)
		}
		product.Price = in.Price.Round(2)
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return models.Product{}, fmt.Errorf("quantity must not be negative: %w", apperr.ErrValidation)
		}
		product.Quantity = *in.Quantity
	}
	if in.Image != nil {
		product.ImageURL = *in.Image
	}
	if in.Description != nil {
		product.Description = *in.Description
	}

	if err := s.products.Save(&product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

// Delete removes a product from the catalogue.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	return s.products.Delete(id)
}

// refreshWorkers bounds concurrent image lookups during a refresh run.
const refreshWorkers = 4

// RefreshPlaceholderImages retries the image lookup for every product still
// carrying the placeholder image. Lookups run on a bounded worker pool; a
// failed lookup leaves the placeholder in place for the next run. Returns the
// number of products that received a real image.
func (s *CatalogService) RefreshPlaceholderImages(ctx context.Context) (int, error) {
	products, err := s.products.FindByImageURL(PlaceholderImageURL)
	if err != nil {
		return 0, fmt.Errorf("list placeholder products: %w", err)
	}
	if len(products) == 0 {
		return 0, nil
	}

	pool := workerpool.New(refreshWorkers)
	defer pool.Shutdown()

	var (
		mu      sync.Mutex
		updated int
		wg      sync.WaitGroup
	)
	for _, product := range products {
		product := product
		wg.Add(1)
		if err := pool.SubmitWait(func() {
			defer wg.Done()

			url, err := s.images.Lookup(ctx, product.Name)
			if err != nil {
				logger.WithCtx(ctx).Warn("image refresh lookup failed",
					"product_id", product.ID, "error", err)
				return
			}

			product.ImageURL = url
			if err := s.products.Save(&product); err != nil {
				logger.WithCtx(ctx).Warn("image refresh save failed",
					"product_id", product.ID, "error", err)
				return
			}

			mu.Lock()
			updated++
			mu.Unlock()
		}); err != nil {
			wg.Done()
			break
		}
	}
	wg.Wait()

	return updated, nil
}

// UploadImage stores an uploaded image on the configured disk and points the
// product's image URL at it.
func (s *CatalogService) UploadImage(ctx context.Context, id, filename string, content []byte) (models.Product, error) {
	product, err := s.products.FindByID(id)
	if err != nil {
		return models.Product{}, err
	}

	if len(content) == 0 {
		return models.Product{}, fmt.Errorf("image file is empty: %w", apperr.ErrValidation)
	}

	key := path.Join("products", product.ID, path.Base(filename))
	if err := s.disk.Put(key, content); err != nil {
		return models.Product{}, fmt.Errorf("store image: %w", err)
	}

	product.ImageURL = s.disk.URL(key)
	if err := s.products.Save(&product); err != nil {
		return models.Product{}, err
	}

	return product, nil
}
