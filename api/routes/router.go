package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/phoolcraft/phool-backend/api/controllers"
	"github.com/phoolcraft/phool-backend/api/middleware"
	"github.com/phoolcraft/phool-backend/internal/basket"
	"github.com/phoolcraft/phool-backend/internal/catalog"
	"github.com/phoolcraft/phool-backend/internal/checkout"
	"github.com/phoolcraft/phool-backend/internal/fundraisers"
	"github.com/phoolcraft/phool-backend/internal/orders"
	"github.com/phoolcraft/phool-backend/internal/reviews"
	"github.com/phoolcraft/phool-backend/pkg/config"
	"github.com/phoolcraft/phool-backend/pkg/db/models"
	"github.com/phoolcraft/phool-backend/pkg/enums"
	"github.com/phoolcraft/phool-backend/pkg/localstore"
	"github.com/phoolcraft/phool-backend/pkg/logger"
)

// Dependencies are the services and infrastructure the HTTP surface needs.
// Readiness, Metrics and LocalStore are optional.
type Dependencies struct {
	Catalog     catalog.Service
	Products    controllers.CatalogAdmin[models.Product]
	Cards       controllers.CatalogAdmin[models.Card]
	Fundraisers fundraisers.Service
	Reviews     reviews.Service
	Baskets     basket.Service
	Checkout    checkout.Service
	Orders      orders.Service

	Limiter    middleware.Limiter
	LocalStore localstore.Store
	Readiness  []controllers.ReadinessCheck
	Metrics    http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewRateLimitPolicy("login", cfg.RateLimit.LoginWindow, cfg.RateLimit.LoginIPLimit, 0)
	reviewPolicy := middleware.NewRateLimitPolicy("reviews", cfg.RateLimit.ReviewWindow, cfg.RateLimit.ReviewIPLimit, 0)
	orderPolicy := middleware.NewRateLimitPolicy("orders", cfg.RateLimit.OrderWindow, cfg.RateLimit.OrderIPLimit, cfg.RateLimit.OrderMailLimit)

	maxUploadBytes := int64(cfg.Storage.MaxUploadMB) << 20
	idempotent := middleware.Idempotency(deps.LocalStore, 24*time.Hour, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness...))
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", controllers.ListCatalog(deps.Catalog, logg))
			r.Get("/categories", controllers.ListCategories(deps.Catalog, logg))
		})

		r.Route("/products/{id}", func(r chi.Router) {
			r.Get("/", controllers.GetCatalogItem(deps.Catalog, enums.CatalogKindProduct, logg))
			r.Get("/reviews", controllers.ListProductReviews(deps.Reviews, logg))
			r.With(middleware.RateLimit(reviewPolicy, deps.Limiter, logg)).
				Post("/reviews", controllers.SubmitReview(deps.Reviews, logg))
		})
		r.Get("/cards/{id}", controllers.GetCatalogItem(deps.Catalog, enums.CatalogKindCard, logg))

		r.Route("/fundraisers", func(r chi.Router) {
			r.Get("/", controllers.ListFundraisers(deps.Fundraisers, logg))
			r.Get("/{id}", controllers.GetFundraiser(deps.Fundraisers, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.BasketID(logg))

			r.Route("/basket", func(r chi.Router) {
				r.Get("/", controllers.GetBasket(deps.Baskets, logg))
				r.Delete("/", controllers.ClearBasket(deps.Baskets, logg))
				r.Post("/items", controllers.AddBasketItem(deps.Baskets, logg))
				r.Patch("/items/{productId}", controllers.UpdateBasketItem(deps.Baskets, logg))
				r.Delete("/items/{productId}", controllers.RemoveBasketItem(deps.Baskets, logg))
			})

			r.Post("/checkout/quote", controllers.QuoteCheckout(deps.Checkout, logg))
			r.With(middleware.RateLimit(orderPolicy, deps.Limiter, logg), idempotent).
				Post("/checkout", controllers.PlaceOrder(deps.Checkout, logg))
			r.With(middleware.RateLimit(orderPolicy, deps.Limiter, logg), idempotent).
				Post("/custom-orders", controllers.RequestCustomOrder(deps.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/track", controllers.TrackOrders(deps.Orders, logg))
			r.Get("/statuses", controllers.ListOrderStatuses())
		})

		r.With(middleware.RateLimit(loginPolicy, deps.Limiter, logg)).
			Post("/auth/login", controllers.AdminLogin(cfg.Admin, cfg.JWT, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			// staff may work orders and moderate reviews
			anyRole := middleware.RequireRole(logg, enums.AdminRoleAdmin, enums.AdminRoleStaff)
			adminOnly := middleware.RequireRole(logg, enums.AdminRoleAdmin)

			r.Route("/orders", func(r chi.Router) {
				r.With(anyRole).Get("/", controllers.AdminListOrders(deps.Orders, logg))
				r.With(anyRole).Get("/backups", controllers.AdminListOrderBackups(deps.Orders, logg))
				r.With(adminOnly).Delete("/backups", controllers.AdminClearOrderBackups(deps.Orders, logg))
				r.With(anyRole).Patch("/{orderId}", controllers.AdminUpdateOrderStatus(deps.Orders, logg))
				r.With(adminOnly).Delete("/{orderId}", controllers.AdminDeleteOrder(deps.Orders, logg))
			})
			r.Route("/reviews", func(r chi.Router) {
				r.Use(anyRole)
				r.Get("/", controllers.AdminListReviews(deps.Reviews, logg))
				r.Patch("/{id}", controllers.AdminUpdateReview(deps.Reviews, logg))
				r.Delete("/{id}", controllers.AdminDeleteReview(deps.Reviews, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Route("/products", catalogAdminRoutes(deps.Products, maxUploadBytes, logg))
				r.Route("/cards", catalogAdminRoutes(deps.Cards, maxUploadBytes, logg))
				r.Route("/fundraisers", func(r chi.Router) {
					r.Get("/", controllers.AdminListFundraisers(deps.Fundraisers, logg))
					r.Post("/", controllers.AdminCreateFundraiser(deps.Fundraisers, logg))
					r.Patch("/{id}", controllers.AdminUpdateFundraiser(deps.Fundraisers, logg))
					r.Delete("/{id}", controllers.AdminDeleteFundraiser(deps.Fundraisers, logg))
				})
			})
		})
	})

	return r
}

func catalogAdminRoutes[T any](svc controllers.CatalogAdmin[T], maxUploadBytes int64, logg *logger.Logger) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", controllers.AdminListCatalog(svc, logg))
		r.Post("/", controllers.AdminCreateCatalog(svc, logg))
		r.Get("/{id}", controllers.AdminGetCatalog(svc, logg))
		r.Patch("/{id}", controllers.AdminUpdateCatalog(svc, logg))
		r.Delete("/{id}", controllers.AdminDeleteCatalog(svc, logg))
		r.Post("/{id}/images", controllers.AdminUploadCatalogImage(svc, maxUploadBytes, logg))
		r.Delete("/{id}/images", controllers.AdminDeleteCatalogImage(svc, logg))
	}
}
