package router

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	m "github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

func tooManyRequests(w http.ResponseWriter, r *http.Request) {
	response.WriteError(w, response.ErrRateLimited)
}

// SetupRouter limiter 為 nil 時不限流
func SetupRouter(server *api.Server, limiter ratelimit.Limiter, logger *zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.LoggerMiddleware(logger))
	r.Use(m.RecoverMiddleware(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		response.SuccessJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API 路由
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(m.SessionMiddleware)
		if limiter != nil {
			r.Use(ratelimit.Middleware(limiter, m.ClientIPKey, tooManyRequests))
		}

		r.Group(func(r chi.Router) {
			h := server.CatalogHandler
			r.Get("/products", h.ListProducts)
			r.Get("/products/{id}", h.GetProduct)
			r.Get("/products/{id}/related", h.RelatedProducts)
			r.Get("/categories", h.ListCategories)
			r.Post("/catalog/invalidate", h.Invalidate)
		})

		r.Route("/cart", func(r chi.Router) {
			h := server.CartHandler
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddItem)
			r.Put("/items", h.SetQuantity)
			r.Delete("/items", h.RemoveItem)
			r.Post("/items/increase", h.IncreaseQuantity)
			r.Post("/items/decrease", h.DecreaseQuantity)
			r.Post("/promo", h.ApplyPromoCode)
		})

		r.Route("/checkout", func(r chi.Router) {
			h := server.CheckoutHandler
			r.Post("/", h.Begin)
			r.Get("/", h.Get)
			r.Delete("/", h.Abandon)
			r.Put("/shipping", h.UpdateShipping)
			r.Post("/shipping", h.SubmitShipping)
			r.Post("/back", h.Back)
			r.Get("/payment", h.PaymentRequest)
			r.Post("/payment/success", h.PaymentSucceeded)
			r.Post("/payment/close", h.PaymentClosed)
		})

		r.Route("/profile", func(r chi.Router) {
			h := server.ProfileHandler
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
		})
	})

	return r
}
