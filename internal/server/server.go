package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/treloar/keepsake/internal/game"
	"github.com/treloar/keepsake/internal/prose"
	"github.com/treloar/keepsake/internal/signal"
	"github.com/treloar/keepsake/internal/store"
)

// Server is the keepsake HTTP API server.
type Server struct {
	db      *store.DB
	feed    *signal.Feed
	engine  *game.Engine
	prose   *prose.Generator
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server. gen may wrap a nil client; prose routes then
// serve fallback text.
func New(db *store.DB, feed *signal.Feed, engine *game.Engine, gen *prose.Generator, version string) *Server {
	s := &Server{
		db:      db,
		feed:    feed,
		engine:  engine,
		prose:   gen,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/profiles", s.handleListProfiles)
		r.Post("/profiles", s.handleCreateProfile)
		r.Get("/profiles/{profileID}", s.handleGetProfile)
		r.Delete("/profiles/{profileID}", s.handleDeleteProfile)

		r.Get("/photos", s.handleListPhotos)
		r.Post("/photos", s.handleCreatePhoto)
		r.Get("/photos/{photoID}", s.handleGetPhoto)
		r.Delete("/photos/{photoID}", s.handleDeletePhoto)

		r.Get("/game-sessions", s.handleListGameSessions)
		r.Post("/game-sessions", s.handleCreateGameSession)
		r.Get("/game-sessions/{sessionID}", s.handleGetGameSession)
		r.Post("/game-sessions/{sessionID}/answer", s.handleGameAnswer)
		r.Post("/game-sessions/{sessionID}/end", s.handleEndGameSession)

		r.Get("/chat-messages", s.handleListChatMessages)
		r.Post("/chat-messages", s.handleCreateChatMessage)
		r.Post("/chat/initial", s.handleChatInitial)
		r.Post("/chat/generate", s.handleChatGenerate)

		r.Post("/prose/story", s.handleProseStory)
		r.Post("/prose/hints", s.handleProseHints)
		r.Post("/prose/suggestions", s.handleProseSuggestions)

		r.Get("/signal/current", s.handleSignalCurrent)
		r.Get("/signal/history", s.handleSignalHistory)
		r.Get("/signal/stream", s.handleSignalStream)
		r.Get("/signal/readings", s.handleListReadings)
		r.Post("/signal/readings", s.handleCreateReading)
		r.Post("/signal/events", s.handleSignalEvent)
		r.Post("/signal/uploads", s.handleSignalUpload)

		r.Post("/bandit/sessions", s.handleCreateBanditSession)
		r.Get("/bandit/sessions", s.handleListBanditSessions)
		r.Get("/bandit/sessions/{sessionID}", s.handleGetBanditSession)
		r.Get("/bandit/sessions/{sessionID}/trials", s.handleListBanditTrials)
		r.Post("/bandit/sessions/{sessionID}/trials", s.handleRecordTrial)
		r.Get("/bandit/sessions/{sessionID}/stats", s.handleBanditStats)
		r.Post("/bandit/sessions/{sessionID}/end", s.handleEndBanditSession)

		r.Get("/cognitive-profiles", s.handleListCognitiveProfiles)
		r.Get("/cognitive-profiles/latest", s.handleLatestCognitiveProfile)
		r.Post("/cognitive-profiles", s.handleCreateCognitiveProfile)
		r.Get("/insights/baseline", s.handleBaselineComparison)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"signal":  s.feed.Running(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeEngineError maps the game package's sentinels onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidArm):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrSessionClosed), errors.Is(err, game.ErrSessionFull):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// idParam parses a chi numeric URL parameter. Returns 0 on garbage; the
// caller treats 0 as not-found.
func idParam(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id
}

// queryID parses an optional numeric query parameter, 0 when absent.
func queryID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return id
}
