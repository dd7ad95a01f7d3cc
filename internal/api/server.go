// Package api exposes the console over HTTP: library, queues and decks as
// JSON endpoints, plus a websocket feed of deck positions.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/satindergrewal/deckmix/internal/clock"
	"github.com/satindergrewal/deckmix/internal/console"
)

// ListenerCounter reports connected broadcast listeners.
type ListenerCounter func() int

// Server holds the HTTP handlers.
type Server struct {
	console   *console.Console
	clock     *clock.Clock
	listeners ListenerCounter
	log       *zap.Logger
	router    *mux.Router
}

// New builds the router. listeners may be nil.
func New(c *console.Console, clk *clock.Clock, listeners ListenerCounter, log *zap.Logger) *Server {
	if listeners == nil {
		listeners = func() int { return 0 }
	}
	s := &Server{
		console:   c,
		clock:     clk,
		listeners: listeners,
		log:       log,
		router:    mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(cors)

	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)

	r.HandleFunc("/api/library", s.handleLibrary).Methods(http.MethodGet)
	r.HandleFunc("/api/library", s.handleIngest).Methods(http.MethodPost)
	r.HandleFunc("/api/library/filter", s.handleFilter).Methods(http.MethodPut)

	r.HandleFunc("/api/queue/{channel}", s.handleQueue).Methods(http.MethodGet)
	r.HandleFunc("/api/queue/{channel}", s.handleEnqueue).Methods(http.MethodPost)
	r.HandleFunc("/api/queue/{channel}", s.handleClearQueue).Methods(http.MethodDelete)

	r.HandleFunc("/api/decks/{channel}", s.handleDeck).Methods(http.MethodGet)
	r.HandleFunc("/api/decks/{channel}/play", s.handlePlay).Methods(http.MethodPost)
	r.HandleFunc("/api/decks/{channel}/stop", s.handleStop).Methods(http.MethodPost)
	r.HandleFunc("/api/decks/{channel}/next", s.handleNext).Methods(http.MethodPost)
	r.HandleFunc("/api/decks/{channel}/loop", s.handleLoop).Methods(http.MethodPost)
	r.HandleFunc("/api/decks/{channel}/gain", s.handleGain).Methods(http.MethodPut)
	r.HandleFunc("/api/decks/{channel}/speed", s.handleSpeed).Methods(http.MethodPut)
	r.HandleFunc("/api/decks/{channel}/position", s.handlePosition).Methods(http.MethodPut)
	r.HandleFunc("/api/decks/{channel}/reverb", s.handleReverb).Methods(http.MethodPut)

	r.HandleFunc("/ws/clock", s.handleClockFeed).Methods(http.MethodGet)
}

// Mount attaches an extra handler, e.g. the audio streams.
func (s *Server) Mount(path string, h http.Handler) {
	s.router.Handle(path, h)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}
