package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/partsbin-backend/api/controllers"
	"github.com/angelmondragon/partsbin-backend/api/middleware"
	"github.com/angelmondragon/partsbin-backend/internal/inventory"
	"github.com/angelmondragon/partsbin-backend/pkg/config"
	"github.com/angelmondragon/partsbin-backend/pkg/logger"
	"github.com/angelmondragon/partsbin-backend/pkg/redis"
)

// NewRouter wires every HTTP route. redisP and idem may be nil when redis is
// not configured; metricsHandler may be nil to leave /metrics unmounted.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	idem redis.IdempotencyStore,
	store inventory.Store,
	boms controllers.BomStore,
	importService controllers.ImportService,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idem, logg))

		r.Get("/env", controllers.Env(cfg))
		r.Get("/search", controllers.SearchItems(store, logg))
		r.Get("/search/match-bom-entry", controllers.SearchForBomEntry(store, logg))
		r.Post("/search/match-bom-entry", controllers.MatchBomEntry(store, logg))

		r.Route("/bom", func(r chi.Router) {
			r.Get("/", controllers.ListBoms(boms, logg))
			r.Post("/", controllers.CreateBom(boms, logg))
			r.Route("/{bomId}", func(r chi.Router) {
				r.Get("/", controllers.GetBom(boms, logg))
				r.Put("/", controllers.UpdateBom(boms, logg))
				r.Delete("/", controllers.DeleteBom(boms, logg))
			})
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ListItems(store, logg))
			r.Post("/", controllers.ImportItemByBarcode(importService, logg))
			r.Post("/pack-list", controllers.ImportPackList(importService, logg))
			r.Post("/import", controllers.ImportRecord(importService, logg))
			r.Post("/details/refresh", controllers.RefreshAllDetails(importService, logg))

			r.Route("/{itemId}", func(r chi.Router) {
				r.Get("/", controllers.GetItem(store, logg))
				r.Delete("/", controllers.DeleteItem(store, logg))
				r.Put("/comments", controllers.SetItemComments(store, logg))
				r.Put("/quantity", controllers.SetItemQuantity(store, logg))
				r.Post("/details/refresh", controllers.RefreshItemDetails(importService, logg))
				r.Get("/slots", controllers.ItemSlots(store, logg))
				r.Put("/slots/{slotId}", controllers.AddItemToSlot(store, logg))
				r.Delete("/slots/{slotId}", controllers.RemoveItemFromSlot(store, logg))
			})
		})

		r.Route("/slots", func(r chi.Router) {
			r.Post("/import", controllers.ImportIntoSlots(importService, logg))
			r.Get("/{slotId}", controllers.SlotItems(store, logg))
		})

		r.Route("/iphone", func(r chi.Router) {
			r.Get("/slot/{slot}", controllers.IPhoneSlotSummary(store, logg))
			r.Post("/item", controllers.IPhoneImportItem(importService, logg))
		})
	})

	return r
}
