package http

import (
	"net/http"
	"time"

	httpmw "github.com/cwrk-planet/relay-service/internal/transport/http/middleware"
	"github.com/cwrk-planet/relay-service/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(h *Handler, auth httpmw.Authenticator, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// WS endpoint; the credential travels as a query param, verified before
	// the upgrade
	r.Get("/ws", wsServer.HandleWS)

	// read-only relay state, no auth needed
	r.Get("/streams/{id}/viewers", h.StreamViewers)
	r.Get("/presence/{id}", h.Presence)

	r.Group(func(pr chi.Router) {
		pr.Use(httpmw.AuthMiddleware(auth))
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.Get("/conversations/{id}/messages", h.ConversationMessages)
	})

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
