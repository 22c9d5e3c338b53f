package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/mealtrack/internal/logging"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

// NewRouter wires every route. CORS is enabled when allowedOrigins is not
// empty.
func NewRouter(svc Services, allowedOrigins []string, logger logging.Logger) http.Handler {
	logger = logger.With("module", "httpapi")
	h := &handlers{
		Services:     svc,
		logger:       logger,
		pingInterval: 25 * time.Second,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimw.Recoverer)

	if len(allowedOrigins) > 0 {
		r.Use(CORS(allowedOrigins))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)
	r.Post("/auth/refresh", h.refresh)
	r.Post("/auth/logout", h.logout)

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireAuth(svc.Users))

		r.Get("/logs/{date}", h.getLog)
		r.Post("/logs/{date}/entries", h.appendEntry)
		r.Delete("/logs/{date}/entries/{category}/{id}", h.deleteEntry)
		r.Get("/logs/{date}/totals", h.totals)
		r.Post("/logs/{date}/export", h.export)
		r.Get("/logs/{date}/watch", h.watch)

		r.Get("/foods/search", h.searchFoods)
		r.Post("/foods/nutrients", h.lookupNutrients)
	})

	return r
}
