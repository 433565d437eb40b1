package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	authHandler "github.com/collegebuddy/backend/internal/handler/auth"
	itemsHandler "github.com/collegebuddy/backend/internal/handler/items"
	messagesHandler "github.com/collegebuddy/backend/internal/handler/messages"
	notesHandler "github.com/collegebuddy/backend/internal/handler/notes"
	ratingsHandler "github.com/collegebuddy/backend/internal/handler/ratings"
	"github.com/collegebuddy/backend/internal/handler/ws"
	middlewarePkg "github.com/collegebuddy/backend/internal/middleware"
	authService "github.com/collegebuddy/backend/internal/service/auth"
	"github.com/collegebuddy/backend/internal/service/realtime"
	"github.com/collegebuddy/backend/internal/service/uploads"
	"github.com/collegebuddy/backend/internal/store"
	"github.com/collegebuddy/backend/pkg/utils"
)

// NewRouter wires HTTP routes and the websocket gateway to core services.
// dedupWindow is the reconciliation tolerance advertised to clients.
func NewRouter(st *store.Store, authSvc *authService.Service, registry *realtime.Registry, uploadSvc *uploads.Service, dedupWindow time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	// Create handlers
	auth := authHandler.New(st, authSvc)
	items := itemsHandler.New(st, uploadSvc)
	notes := notesHandler.New(st, uploadSvc)
	messages := messagesHandler.New(st)
	ratings := ratingsHandler.New(st)
	gateway := ws.New(st, authSvc, registry)

	r.Route("/api", func(api chi.Router) {
		auth.RegisterRoutes(api)
		items.RegisterRoutes(api)
		notes.RegisterRoutes(api)

		api.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
			stats, err := st.GetStats(r.Context())
			if err != nil {
				utils.RespondError(w, http.StatusInternalServerError, "failed to compute stats")
				return
			}
			utils.RespondJSON(w, http.StatusOK, stats)
		})

		// Clients reconcile the live and durable message paths themselves;
		// this tells them which dedup tolerance the deployment expects.
		api.Get("/config", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]int64{
				"dedupWindowMs": dedupWindow.Milliseconds(),
			})
		})

		api.Group(func(protected chi.Router) {
			protected.Use(middlewarePkg.RequireAuth(authSvc, st))
			auth.RegisterProtectedRoutes(protected)
			items.RegisterProtectedRoutes(protected)
			notes.RegisterProtectedRoutes(protected)
			messages.RegisterRoutes(protected)
			ratings.RegisterRoutes(protected)
		})
	})

	// Live messaging channel; authentication happens in-band.
	gateway.RegisterRoutes(r)

	// Serve uploaded files
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadSvc.Dir())))
	r.Get("/uploads/*", func(w http.ResponseWriter, r *http.Request) {
		fileServer.ServeHTTP(w, r)
	})

	return r
}
