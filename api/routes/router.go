package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigbestmart/catalog-backend/api/controllers"
	"github.com/bigbestmart/catalog-backend/api/middleware"
	"github.com/bigbestmart/catalog-backend/internal/catalog"
	"github.com/bigbestmart/catalog-backend/internal/notifications"
	product "github.com/bigbestmart/catalog-backend/internal/products"
	"github.com/bigbestmart/catalog-backend/pkg/config"
	"github.com/bigbestmart/catalog-backend/pkg/logger"
	"github.com/bigbestmart/catalog-backend/pkg/metrics"
	"github.com/bigbestmart/catalog-backend/pkg/redis"
	"github.com/bigbestmart/catalog-backend/pkg/storage/local"
)

const locationSearchWindow = time.Minute

// Deps carries everything the HTTP surface needs. Redis, Geocoder, metrics
// and the metrics handler are optional.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             controllers.Pinger
	Redis          *redis.Client
	Catalog        catalog.Service
	Mappings       catalog.MappingService
	Notifications  notifications.Service
	Products       product.Service
	Geocoder       controllers.PlaceSearcher
	MaxImageBytes  int64
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
}

func NewRouter(deps Deps) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	// a nil *redis.Client must not become a non-nil interface
	var (
		idempotencyStore redis.IdempotencyStore
		redisPinger      controllers.Pinger
	)
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
		redisPinger = deps.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.CORS.ExtraOrigins),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{
			"database": deps.DB,
			"redis":    redisPinger,
		}, logg))
	})
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}
	if cfg.Storage.IsLocal() && strings.TrimSpace(cfg.Storage.PublicBaseURL) == "" {
		prefix := local.DefaultPublicPrefix + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.Storage.LocalDir))))
	}

	admin := func(r chi.Router) chi.Router {
		return r.With(
			middleware.AdminAuth(cfg.Auth, logg),
			middleware.Idempotency(idempotencyStore, middleware.DefaultIdempotencyTTL, deps.MaxImageBytes, logg),
		)
	}

	r.Route("/api", func(r chi.Router) {
		registry := deps.Catalog.Registry()
		for _, d := range registry.Entities() {
			mountEntity(r, admin, deps, registry, d)
		}
		for _, m := range registry.Mappings() {
			mountMapping(r, admin, deps, m)
		}

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/collect", controllers.CollectNotifications(deps.Notifications, logg))
			admin(r).Post("/create", controllers.CreateNotification(deps.Notifications, deps.MaxImageBytes, logg))
			admin(r).Put("/update/{id}", controllers.UpdateNotification(deps.Notifications, deps.MaxImageBytes, logg))
			admin(r).Delete("/delete/{id}", controllers.DeleteNotification(deps.Notifications, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Products, logg))
			r.Get("/{id}", controllers.GetProduct(deps.Products, logg))
		})

		if deps.Geocoder != nil {
			policy := middleware.RateLimitPolicy{
				Name:   "location-search",
				Limit:  cfg.Geocode.RateLimitPerMinute,
				Window: locationSearchWindow,
			}
			search := controllers.SearchLocation(deps.Geocoder, logg)
			if deps.Redis != nil {
				r.With(middleware.RateLimit(policy, deps.Redis, logg)).Get("/location/search", search)
			} else {
				r.Get("/location/search", search)
			}
		}
	})

	return r
}

func mountEntity(r chi.Router, admin func(chi.Router) chi.Router, deps Deps, registry *catalog.Registry, d *catalog.Descriptor) {
	svc, logg := deps.Catalog, deps.Logger
	r.Route("/"+d.Slug, func(r chi.Router) {
		admin(r).Post("/add", controllers.CreateEntity(svc, d, deps.MaxImageBytes, logg))
		admin(r).Put("/update/{id}", controllers.UpdateEntity(svc, d, deps.MaxImageBytes, logg))
		admin(r).Delete("/delete/{id}", controllers.DeleteEntity(svc, d, logg))
		r.Get("/list", controllers.ListEntities(svc, d, logg))
		r.Get("/{id}", controllers.GetEntity(svc, d, logg))

		if parent, ok := registry.Parent(d); ok {
			admin(r).Post("/map-"+parent.Slug, controllers.MapGroupToParent(svc, d, parent, logg))
			r.Get("/by-"+parent.Slug+"/{parentId}", controllers.ListEntitiesByParent(svc, d, logg))
		}
	})
}

func mountMapping(r chi.Router, admin func(chi.Router) chi.Router, deps Deps, m *catalog.Mapping) {
	svc, logg := deps.Mappings, deps.Logger
	r.Route("/"+m.Slug, func(r chi.Router) {
		admin(r).Post("/map", controllers.MapProduct(svc, m, logg))
		unmap := controllers.UnmapProduct(svc, m, logg)
		admin(r).Post("/remove", unmap)
		admin(r).Delete("/remove", unmap)

		if m.Flat() {
			admin(r).Post("/bulk-add-by-names", controllers.BulkMapProducts(svc, m, logg))
			r.Get("/list", controllers.ListSetProducts(svc, m, logg))
			r.Get("/{productId}", controllers.GetSetProduct(svc, m, logg))
			return
		}

		bulk := controllers.BulkMapProducts(svc, m, logg)
		admin(r).Post("/map-bulk", bulk)
		admin(r).Post("/bulk-map", bulk)
		owners := controllers.ListOwnersForProduct(svc, m, logg)
		r.Get("/product/{productId}", owners)
		r.Get("/getGroupsByProduct/{productId}", owners)
		products := controllers.ListProductsForOwner(svc, m, logg)
		r.Get("/{entityId}", products)
		r.Get("/getProductsByGroup/{entityId}", products)
	})
}
