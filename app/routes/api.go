// Package routes wires the HTTP surface: auth endpoints are public, the
// catalogue and order ledger sit behind JWT auth.
package routes

import (
	"time"

	"github.com/shashiranjanraj/rangershop/app/controllers"
	"github.com/shashiranjanraj/rangershop/pkg/auth"
	"github.com/shashiranjanraj/rangershop/pkg/middleware"
	"github.com/shashiranjanraj/rangershop/pkg/router"
)

// Controllers bundles everything RegisterAPI mounts.
type Controllers struct {
	Auth     *controllers.AuthController
	Products *controllers.ProductController
	Orders   *controllers.OrderController
}

func RegisterAPI(r *router.Router, c Controllers, tokens *auth.Manager) {
	api := r.Group("/api")

	// Credential endpoints carry a per-IP rate limit.
	public := api.Group("", middleware.RateLimit(30, time.Minute))
	public.Post("/signup", "auth.signup", c.Auth.Signup)
	public.Post("/login", "auth.login", c.Auth.Login)
	public.Post("/token", "auth.token", c.Auth.Token)

	protected := api.Group("", middleware.Auth(tokens))

	// Catalogue
	protected.Get("/shop", "shop.list", c.Products.List)
	protected.Post("/shop", "shop.create", c.Products.Create)
	protected.Get("/shop/{id}", "shop.get", c.Products.Get)
	protected.Put("/shop/{id}", "shop.update", c.Products.Update)
	protected.Delete("/shop/{id}", "shop.delete", c.Products.Delete)
	protected.Post("/shop/{id}/image", "shop.image", c.Products.UploadImage)

	// Order ledger
	protected.Get("/order/{custID}", "order.list", c.Orders.List)
	protected.Post("/order/create/{custID}", "order.create", c.Orders.Create)
	protected.Put("/order/update/{orderID}", "order.update", c.Orders.Update)
	protected.Delete("/order/delete/{orderID}", "order.delete", c.Orders.Delete)
}
