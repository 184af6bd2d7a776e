package server

import (
	"encoding/json"
	"net/http"

	"github.com/treloar/keepsake/internal/store"
)

// Reference baselines for an age-matched healthy cohort. Fixed values so
// the comparison is reproducible run to run.
var baseline = store.CognitiveProfile{
	DeclineRisk:      35,
	AttentionScore:   62,
	MemoryScore:      68,
	CognitiveControl: 65,
	FatigueLevel:     40,
}

func (s *Server) handleListCognitiveProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.db.ListCognitiveProfiles(queryID(r, "profileId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if profiles == nil {
		profiles = []store.CognitiveProfile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (s *Server) handleLatestCognitiveProfile(w http.ResponseWriter, r *http.Request) {
	profileID := queryID(r, "profileId")
	if profileID == 0 {
		writeError(w, http.StatusBadRequest, "profileId required")
		return
	}

	latest, err := s.db.LatestCognitiveProfile(profileID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if latest == nil {
		writeError(w, http.StatusNotFound, "no cognitive profile recorded")
		return
	}
	writeJSON(w, http.StatusOK, latest)
}

func (s *Server) handleCreateCognitiveProfile(w http.ResponseWriter, r *http.Request) {
	var p store.CognitiveProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if p.ProfileID == 0 {
		writeError(w, http.StatusBadRequest, "profileId required")
		return
	}

	created, err := s.db.CreateCognitiveProfile(&p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleBaselineComparison reports the latest scoring snapshot against
// the fixed reference cohort, one delta per dimension.
func (s *Server) handleBaselineComparison(w http.ResponseWriter, r *http.Request) {
	profileID := queryID(r, "profileId")
	if profileID == 0 {
		writeError(w, http.StatusBadRequest, "profileId required")
		return
	}

	latest, err := s.db.LatestCognitiveProfile(profileID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if latest == nil {
		writeError(w, http.StatusNotFound, "no cognitive profile recorded")
		return
	}

	type dimension struct {
		Score    int `json:"score"`
		Baseline int `json:"baseline"`
		Delta    int `json:"delta"`
	}
	compare := func(score, base int) dimension {
		return dimension{Score: score, Baseline: base, Delta: score - base}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"profileId":   profileID,
		"sampleCount": latest.SampleCount,
		"dimensions": map[string]dimension{
			"declineRisk":      compare(latest.DeclineRisk, baseline.DeclineRisk),
			"attentionScore":   compare(latest.AttentionScore, baseline.AttentionScore),
			"memoryScore":      compare(latest.MemoryScore, baseline.MemoryScore),
			"cognitiveControl": compare(latest.CognitiveControl, baseline.CognitiveControl),
			"fatigueLevel":     compare(latest.FatigueLevel, baseline.FatigueLevel),
		},
	})
}
