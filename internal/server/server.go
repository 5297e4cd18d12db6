// Package server exposes the deal desk over a REST API.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/deal-desk/internal/approval"
	"github.com/sells-group/deal-desk/internal/chatbot"
	"github.com/sells-group/deal-desk/internal/store"
)

// Options holds the server's tunables, carried over from config.
type Options struct {
	AllowedOrigins []string
	WriteRPS       float64
	WriteBurst     int
}

// Server wires the calculators, resolver, chatbot, and store behind HTTP
// handlers.
type Server struct {
	store    store.Store
	resolver *approval.Resolver
	criteria approval.StandardDealCriteria
	matcher  *chatbot.Matcher
	limiter  *ipLimiter
	opts     Options
}

// New creates a Server. A zero Options falls back to permissive CORS and
// no write throttling.
func New(st store.Store, resolver *approval.Resolver, criteria approval.StandardDealCriteria, matcher *chatbot.Matcher, opts Options) *Server {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	var limiter *ipLimiter
	if opts.WriteRPS > 0 {
		limiter = newIPLimiter(opts.WriteRPS, opts.WriteBurst)
	}
	return &Server{
		store:    st,
		resolver: resolver,
		criteria: criteria,
		matcher:  matcher,
		limiter:  limiter,
		opts:     opts,
	}
}

// Router builds the chi routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		// Stateless calculators.
		r.Post("/deals/calculate", s.handleCalculate)
		r.Post("/approval/resolve", s.handleResolve)
		r.Post("/approval/sequence", s.handleSequence)
		r.Get("/approval/rules", s.handleRules)
		r.Post("/chat", s.handleChat)

		// Deal CRUD.
		r.Get("/deals", s.handleListDeals)
		r.Get("/deals/{id}", s.handleGetDeal)

		r.Group(func(r chi.Router) {
			if s.limiter != nil {
				r.Use(s.limiter.middleware)
			}
			r.Post("/deals", s.handleCreateDeal)
			r.Put("/deals/{id}", s.handleUpdateDeal)
			r.Patch("/deals/{id}/status", s.handleUpdateStatus)
			r.Delete("/deals/{id}", s.handleDeleteDeal)
		})
	})

	return r
}
