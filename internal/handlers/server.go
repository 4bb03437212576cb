// Package handlers exposes the lobby store over HTTP: a JSON envelope API
// under /api plus a static asset fallback for the bundled client.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/untilzero/lanlobby/internal/lobby"
	"github.com/untilzero/lanlobby/internal/middleware"
)

// DefaultMaxBodyBytes caps request bodies before they reach any handler.
const DefaultMaxBodyBytes = 1_000_000

// Server holds the handler dependencies. It carries no state of its own;
// everything lives in the injected store.
type Server struct {
	store        *lobby.Store
	log          *logrus.Logger
	maxBodyBytes int64
	staticDir    string
}

// New returns a Server backed by the given store. staticDir may be empty to
// disable the asset fallback; maxBodyBytes <= 0 selects the default ceiling.
func New(store *lobby.Store, log *logrus.Logger, staticDir string, maxBodyBytes int64) *Server {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{
		store:        store,
		log:          log,
		maxBodyBytes: maxBodyBytes,
		staticDir:    staticDir,
	}
}

// Routes assembles the router: the lobby API under /api and the static
// fallback for everything else.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.LogRequests(s.log))
	r.Use(s.recoverPanics)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors)
		r.Get("/lobbies", s.handleListLobbies)
		r.Post("/lobbies", s.handleCreateLobby)
		r.Route("/lobbies/{lobbyID}", func(r chi.Router) {
			r.Get("/", s.handlePollLobby)
			r.Post("/join", s.handleJoin)
			r.Post("/leave", s.handleLeave)
			r.Post("/settings", s.handleUpdateSettings)
			r.Post("/select-country", s.handleSelectCountry)
			r.Post("/start", s.handleStart)
			r.Post("/handoff", s.handleHandoff)
		})
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "API route not found.")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "API route not found.")
		})
	})

	r.NotFound(s.handleStatic)
	return r
}

// cors answers preflight and stamps the permissive headers the LAN client
// expects on every API response.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoverPanics keeps an unexpected failure in one request from taking the
// process down; the caller gets a generic 500 envelope.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.WithFields(logrus.Fields{
					"panic": rec,
					"path":  r.URL.Path,
				}).Error("handler panic")
				writeError(w, http.StatusInternalServerError, "Unexpected server error.")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
