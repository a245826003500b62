package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonasahlin/matbit/internal/adapter/logger"
	"github.com/jonasahlin/matbit/internal/config"
)

// NewRouter assembles the public and admin route trees.
func NewRouter(public *PublicHandler, carts *CartHandler, admin *AdminHandler, cfg config.AdminConfig, logger logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(RecoveryMiddleware(logger))
	r.Use(LoggingMiddleware(logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/menu", public.ListMenu)
		r.Get("/menu/{id}", public.GetMenuItem)
		r.Get("/campaigns", public.ListCampaigns)
		r.Get("/news", public.ListNews)
		r.Get("/contact", public.GetContactInfo)
		r.Post("/contact", public.CreateContactMessage)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", carts.GetCart)
			r.Delete("/", carts.ClearCart)
			r.Post("/items", carts.AddItem)
			r.Put("/items", carts.UpdateItem)
			r.Delete("/items/{itemID}", carts.RemoveItem)
			r.Post("/coupon", carts.ApplyCoupon)
			r.Delete("/coupon", carts.RemoveCoupon)
		})

		r.Post("/checkout", carts.Checkout)
		r.Get("/orders", carts.ListMyOrders)
		r.Get("/orders/{id}", carts.GetOrder)

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.APIKey, logger))

			r.Post("/refresh", admin.Refresh)
			r.Get("/stats", admin.Stats)

			r.Get("/users", admin.ListUsers)
			r.Put("/users/{id}/active", admin.SetUserActive)
			r.Put("/users/{id}/role", admin.SetUserRole)
			r.Delete("/users/{id}", admin.DeleteUser)

			r.Get("/orders", admin.ListOrders)
			r.Put("/orders/{id}/status", admin.UpdateOrderStatus)
			r.Get("/orders/{id}/history", admin.OrderHistory)

			r.Get("/foods", admin.ListFoods)
			r.Post("/foods", admin.CreateFood)
			r.Put("/foods/{id}", admin.UpdateFood)
			r.Delete("/foods/{id}", admin.DeleteFood)

			r.Get("/campaigns", admin.ListCampaigns)
			r.Post("/campaigns", admin.CreateCampaign)
			r.Put("/campaigns/{id}", admin.UpdateCampaign)
			r.Delete("/campaigns/{id}", admin.DeleteCampaign)

			r.Get("/news", admin.ListNews)
			r.Post("/news", admin.CreateNews)
			r.Put("/news/{id}", admin.UpdateNews)
			r.Delete("/news/{id}", admin.DeleteNews)

			r.Put("/contact", admin.UpdateContactInfo)
			r.Get("/contact/messages", admin.ListContactMessages)
			r.Put("/contact/messages/{id}/read", admin.MarkMessageRead)
		})
	})

	return r
}

// NewServer wraps the router in an http.Server with sane timeouts.
func NewServer(handler http.Handler, cfg config.HTTPConfig) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
