package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/treloar/keepsake/internal/prose"
	"github.com/treloar/keepsake/internal/signal"
	"github.com/treloar/keepsake/internal/store"
)

func (s *Server) handleListGameSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.db.ListGameSessions(queryID(r, "profileId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sessions == nil {
		sessions = []store.GameSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleCreateGameSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProfileID int64 `json:"profileId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProfileID == 0 {
		writeError(w, http.StatusBadRequest, "profileId required")
		return
	}

	sess, err := s.db.CreateGameSession(req.ProfileID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleGetGameSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.db.GetGameSession(idParam(r, "sessionID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, "game session not found")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleGameAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Correct bool `json:"correct"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	sess, err := s.db.RecordGameAnswer(idParam(r, "sessionID"), req.Correct)
	if errors.Is(err, store.ErrSessionNotActive) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Correct answers nudge the live signal the way a recognized face does.
	s.feed.RecognitionResponse(req.Correct)

	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleEndGameSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.db.EndGameSession(idParam(r, "sessionID"))
	if errors.Is(err, store.ErrSessionNotActive) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleListChatMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.db.ListChatMessages(queryID(r, "sessionId"), queryID(r, "photoId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if msgs == nil {
		msgs = []store.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleCreateChatMessage(w http.ResponseWriter, r *http.Request) {
	var m store.ChatMessage
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if m.ProfileID == 0 || m.Content == "" {
		writeError(w, http.StatusBadRequest, "profileId and content required")
		return
	}

	created, err := s.db.CreateChatMessage(&m)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleChatInitial opens a photo conversation with a generated story
// about the person in the photo, adapted to the current signal state.
func (s *Server) handleChatInitial(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProfileID int64 `json:"profileId"`
		PhotoID   int64 `json:"photoId"`
		SessionID int64 `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	photo, err := s.db.GetPhoto(req.PhotoID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if photo == nil {
		writeError(w, http.StatusNotFound, "photo not found")
		return
	}

	sig := s.feed.Snapshot()
	story := s.prose.Story(r.Context(), proseParams(photo, &sig))

	msg, err := s.db.CreateChatMessage(&store.ChatMessage{
		ProfileID: req.ProfileID,
		PhotoID:   req.PhotoID,
		SessionID: req.SessionID,
		Content:   story,
		Sender:    "ai",
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// handleChatGenerate stores the patient's message and replies with a
// generated AI turn plus tap-to-answer suggestions.
func (s *Server) handleChatGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProfileID int64  `json:"profileId"`
		PhotoID   int64  `json:"photoId"`
		SessionID int64  `json:"sessionId"`
		Content   string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProfileID == 0 || req.Content == "" {
		writeError(w, http.StatusBadRequest, "profileId and content required")
		return
	}

	if _, err := s.db.CreateChatMessage(&store.ChatMessage{
		ProfileID: req.ProfileID,
		PhotoID:   req.PhotoID,
		SessionID: req.SessionID,
		Content:   req.Content,
		Sender:    "user",
	}); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rows, err := s.db.ListChatMessages(req.SessionID, req.PhotoID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	history := make([]prose.Message, len(rows))
	for i, m := range rows {
		history[i] = prose.Message{Sender: m.Sender, Content: m.Content}
	}

	sig := s.feed.Snapshot()
	reply := s.prose.ChatReply(r.Context(), history, &sig)

	msg, err := s.db.CreateChatMessage(&store.ChatMessage{
		ProfileID: req.ProfileID,
		PhotoID:   req.PhotoID,
		SessionID: req.SessionID,
		Content:   reply,
		Sender:    "ai",
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	personName := ""
	if req.PhotoID != 0 {
		if photo, err := s.db.GetPhoto(req.PhotoID); err == nil && photo != nil {
			personName = photo.Name
		}
	}
	suggestions := s.prose.Suggestions(r.Context(), reply, personName)

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     msg,
		"suggestions": suggestions,
	})
}

func (s *Server) handleProseStory(w http.ResponseWriter, r *http.Request) {
	p, ok := decodeStoryParams(w, r)
	if !ok {
		return
	}
	sig := s.feed.Snapshot()
	p.Signal = &sig
	writeJSON(w, http.StatusOK, map[string]string{"story": s.prose.Story(r.Context(), p)})
}

func (s *Server) handleProseHints(w http.ResponseWriter, r *http.Request) {
	p, ok := decodeStoryParams(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hints": s.prose.Hints(r.Context(), p)})
}

func (s *Server) handleProseSuggestions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LatestMessage string `json:"latestMessage"`
		PersonName    string `json:"personName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"responses": s.prose.Suggestions(r.Context(), req.LatestMessage, req.PersonName),
	})
}

func decodeStoryParams(w http.ResponseWriter, r *http.Request) (prose.StoryParams, bool) {
	var req struct {
		Name         string `json:"name"`
		Relationship string `json:"relationship"`
		Place        string `json:"place"`
		MemoryNotes  string `json:"memoryNotes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return prose.StoryParams{}, false
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return prose.StoryParams{}, false
	}
	return prose.StoryParams{
		Name:         req.Name,
		Relationship: req.Relationship,
		Place:        req.Place,
		MemoryNotes:  req.MemoryNotes,
	}, true
}

func proseParams(p *store.Photo, sig *signal.Vector) prose.StoryParams {
	return prose.StoryParams{
		Name:         p.Name,
		Relationship: p.Relationship,
		Place:        p.Place,
		MemoryNotes:  p.MemoryNotes,
		Signal:       sig,
	}
}
