package server

import (
	"encoding/json"
	"net/http"

	"github.com/treloar/keepsake/internal/store"
)

func (s *Server) handleCreateBanditSession(w http.ResponseWriter, r *http.Request) {
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

	sess, err := s.engine.StartSession(req.ProfileID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleListBanditSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.db.ListBanditSessions(queryID(r, "profileId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sessions == nil {
		sessions = []store.BanditSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetBanditSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.db.GetBanditSession(idParam(r, "sessionID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, "bandit session not found")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleListBanditTrials(w http.ResponseWriter, r *http.Request) {
	id := idParam(r, "sessionID")
	sess, err := s.db.GetBanditSession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, "bandit session not found")
		return
	}

	trials, err := s.db.ListBanditTrials(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if trials == nil {
		trials = []store.BanditTrial{}
	}
	writeJSON(w, http.StatusOK, trials)
}

func (s *Server) handleRecordTrial(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Arm        int `json:"arm"`
		Reward     int `json:"reward"`
		ReactionMs int `json:"reactionMs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	trial, stats, err := s.engine.RecordTrial(idParam(r, "sessionID"), req.Arm, req.Reward, req.ReactionMs)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"trial": trial,
		"stats": stats,
	})
}

func (s *Server) handleBanditStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.RecomputeStats(idParam(r, "sessionID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleEndBanditSession(w http.ResponseWriter, r *http.Request) {
	sess, snapshot, err := s.engine.EndSession(idParam(r, "sessionID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session":          sess,
		"cognitiveProfile": snapshot,
	})
}
