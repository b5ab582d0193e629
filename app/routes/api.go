// Package routes binds the HTTP surface to the controllers. Every endpoint
// is a pure translation step: extract parameters, invoke one service
// operation, map the result (or its failure kind) onto the response
// envelope.
package routes

import (
	"github.com/cpbyrne/ostaa/app/controllers"
	"github.com/cpbyrne/ostaa/pkg/router"
)

func RegisterAPI(r *router.Router) {
	accounts := controllers.NewAccountController()
	users := controllers.NewUserController()
	items := controllers.NewItemController()
	purchases := controllers.NewPurchaseController()

	api := r.Group("/api")

	// Accounts
	api.Post("/users", "users.register", accounts.Register)
	api.Post("/login", "users.login", accounts.Login)
	api.Patch("/users/{username}", "users.update", accounts.ChangePassword)

	// Browsing
	api.Get("/users", "users.index", users.Index)
	api.Get("/users/{username}/listings", "users.listings", users.Listings)
	api.Get("/users/{username}/purchases", "users.purchases", users.Purchases)
	api.Get("/items", "items.index", items.Index)
	api.Get("/items/{id}", "items.show", items.Show)

	// Selling and buying
	api.Post("/items", "items.create", items.Create)
	api.Post("/purchases", "purchases.create", purchases.Create)

	// Search — the keyword-less forms return everything.
	api.Get("/search/users", "search.users.all", users.Search)
	api.Get("/search/users/{keyword}", "search.users", users.Search)
	api.Get("/search/items", "search.items.all", items.Search)
	api.Get("/search/items/{keyword}", "search.items", items.Search)
}
