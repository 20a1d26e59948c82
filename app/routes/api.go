// Package routes is the route table of the HTTP API.
package routes

import (
	"net/http"

	"github.com/shashiranjanraj/brewhouse/app/controllers"
	"github.com/shashiranjanraj/brewhouse/pkg/ctx"
	"github.com/shashiranjanraj/brewhouse/pkg/rbac"
	"github.com/shashiranjanraj/brewhouse/pkg/router"
)

// Controllers groups the handlers the route table dispatches to.
type Controllers struct {
	Auth    *controllers.AuthController
	Catalog *controllers.CatalogController
	Orders  *controllers.OrderController
	Images  *controllers.ImageController
}

// RegisterAPI mounts the JSON API. authn guards token routes; timeout is
// applied to every route that touches the store.
func RegisterAPI(r *router.Router, c Controllers, authn, timeout router.Middleware) {
	api := r.Group("/", timeout)

	api.Post("/register", "auth.register", ctx.Wrap(c.Auth.Register))
	api.Post("/verify", "auth.verify", ctx.Wrap(c.Auth.Verify))
	api.Post("/login", "auth.login", ctx.Wrap(c.Auth.Login))

	api.Get("/brew_methods", "brew_methods.index", ctx.Wrap(c.Catalog.ListBrewMethods))
	api.Get("/ingredients", "ingredients.index", ctx.Wrap(c.Catalog.ListIngredients))
	api.Get("/recipes", "recipes.index", ctx.Wrap(c.Catalog.ListRecipes))
	api.Get("/recipes/{id}", "recipes.show", ctx.Wrap(c.Catalog.ShowRecipe))

	protected := api.Group("", authn)

	protected.Post("/brew_methods", "brew_methods.store", ctx.Wrap(c.Catalog.CreateBrewMethod))
	protected.Post("/ingredients", "ingredients.store", ctx.Wrap(c.Catalog.CreateIngredient))
	protected.Post("/recipes", "recipes.store", ctx.Wrap(c.Catalog.CreateRecipe))
	protected.Put("/recipes/{id}", "recipes.update", ctx.Wrap(c.Catalog.UpdateRecipe))
	protected.Delete("/recipes/{id}", "recipes.destroy", ctx.Wrap(c.Catalog.DeleteRecipe))

	protected.Get("/orders", "orders.index", ctx.Wrap(c.Orders.Index))
	protected.Post("/orders", "orders.store", ctx.Wrap(c.Orders.Store))
	protected.Get("/orders/{id}", "orders.show", ctx.Wrap(c.Orders.Show))
	protected.Patch("/orders/{id}", "orders.update", ctx.Wrap(c.Orders.Update))
	protected.Delete("/orders/{id}", "orders.destroy", ctx.Wrap(c.Orders.Destroy))

	// Uploads stream large bodies, so they skip the store timeout.
	r.Post("/upload", "images.upload", ctx.Wrap(c.Images.Upload), authn, rbac.AdminOnly())
	r.Get("/uploads/{filename}", "images.show", ctx.Wrap(c.Images.Serve))

	r.NotFound(ctx.Wrap(func(c *ctx.Context) {
		c.Error(http.StatusNotFound, "Not found")
	}))
	r.MethodNotAllowed(ctx.Wrap(func(c *ctx.Context) {
		c.Error(http.StatusMethodNotAllowed, "Method not allowed")
	}))
}
