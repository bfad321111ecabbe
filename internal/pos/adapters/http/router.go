package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterConfig carries the cross-cutting pieces the router needs besides the handler.
type RouterConfig struct {
	MetricsPath string
	Metrics     *Metrics
}

// NewRouter registers every route behind the request id, recovery, logging and metrics middleware.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware(h.logger))
	r.Use(loggingMiddleware(h.logger))
	if cfg.Metrics != nil {
		r.Use(metricsMiddleware(cfg.Metrics))
	}

	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)
	if cfg.MetricsPath != "" {
		r.Get(cfg.MetricsPath, h.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Post("/", h.addProduct)
			r.Route("/{productID}", func(r chi.Router) {
				r.Get("/", h.getProduct)
				r.Patch("/", h.updateProduct)
				r.Delete("/", h.removeProduct)
				r.Put("/availability", h.setAvailability)
				r.Post("/stock", h.adjustStock)
			})
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.listCustomers)
			r.Post("/", h.registerCustomer)
			r.Route("/{customerID}", func(r chi.Router) {
				r.Get("/", h.getCustomer)
				r.Patch("/", h.updateCustomer)
				r.Get("/orders", h.customerOrders)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.listOrders)
			r.Post("/", h.createOrder)
			r.Route("/{orderID}", func(r chi.Router) {
				r.Get("/", h.getOrder)
				r.Post("/items", h.addOrderItem)
				r.Delete("/items/{productID}", h.removeOrderItem)
				r.Put("/status", h.setOrderStatus)
			})
		})

		r.Route("/carts", func(r chi.Router) {
			r.Post("/", h.openCart)
			r.Route("/{cartID}", func(r chi.Router) {
				r.Get("/", h.getCart)
				r.Delete("/", h.discardCart)
				r.Post("/items", h.addToCart)
				r.Delete("/items", h.clearCart)
				r.Delete("/items/{productID}", h.removeFromCart)
				r.Post("/checkout", h.checkout)
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/sales", h.totalSales)
			r.Get("/top-products", h.topProducts)
		})

		if h.events != nil {
			r.Handle("/events", h.events)
		}
	})

	return r
}
