package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kulim/agrimarket/backend/internal/analysis/intent"
	"github.com/kulim/agrimarket/backend/internal/handler/chat"
	"github.com/kulim/agrimarket/backend/internal/handler/knowledge"
	"github.com/kulim/agrimarket/backend/internal/handler/stream"
	knowledgeModel "github.com/kulim/agrimarket/backend/internal/model/knowledge"
	chatService "github.com/kulim/agrimarket/backend/internal/service/chat"
	"github.com/kulim/agrimarket/backend/pkg/utils"
)

// Dependencies groups what the HTTP layer needs from the core.
type Dependencies struct {
	Knowledge      *knowledgeModel.Base
	Classifier     *intent.Classifier
	Chat           *chatService.Service
	Suggestions    []string
	AllowedOrigins []string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	knowledgeHandler := knowledge.New(deps.Knowledge, deps.Classifier, deps.Suggestions)
	chatHandler := chat.New(deps.Chat)
	streamHandler := stream.New(deps.Chat)
	wsHandler := stream.NewWebSocketHandler(deps.Chat)

	r.Route("/api", func(api chi.Router) {
		knowledgeHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
	})

	return r
}
