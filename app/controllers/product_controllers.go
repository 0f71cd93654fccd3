package controllers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/rangershop/app/services"
	"github.com/shashiranjanraj/rangershop/pkg/response"
)

// maxImageUpload bounds multipart product image uploads (5 MiB).
const maxImageUpload = 5 << 20

type ProductController struct {
	service *services.CatalogService
}

func NewProductController(service *services.CatalogService) *ProductController {
	return &ProductController{service: service}
}

// List returns the whole catalogue.
func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	products, err := c.service.All(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, products)
}

// Get returns one product.
func (c *ProductController) Get(w http.ResponseWriter, r *http.Request) {
	product, err := c.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, product)
}

// Create adds a product to the catalogue.
func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	var body services.CreateProductInput
	if !decode(w, r, &body) {
		return
	}

	product, err := c.service.Create(r.Context(), body)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, product)
}

// Update applies partial field updates to a product.
func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	var body services.UpdateProductInput
	if !decode(w, r, &body) {
		return
	}

	product, err := c.service.Update(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, product)
}

// Delete removes a product.
func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.FromError(w, err)
		return
	}
	response.Message(w, "Product was successfully deleted!")
}

// UploadImage accepts a multipart "image" file, stores it on the configured
// disk and updates the product's image URL.
func (c *ProductController) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		response.ValidationError(w, map[string]string{"image": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		response.ValidationError(w, map[string]string{"image": "image file is required"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxImageUpload))
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	product, err := c.service.UploadImage(r.Context(), chi.URLParam(r, "id"), header.Filename, content)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, product)
}
