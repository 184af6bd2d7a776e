package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/treloar/keepsake/internal/signal"
	"github.com/treloar/keepsake/internal/store"
)

const maxUploadBytes = 10 << 20 // 10 MiB recording cap

func (s *Server) handleSignalCurrent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.feed.Snapshot())
}

func (s *Server) handleSignalHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.feed.History())
}

// handleSignalStream pushes feed ticks as server-sent events until the
// client goes away. Slow clients miss ticks rather than stalling the feed.
func (s *Server) handleSignalStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ch, cancel := s.feed.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case v, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(v)
			if err != nil {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	readings, err := s.db.ListReadings(queryID(r, "profileId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if readings == nil {
		readings = []store.Reading{}
	}
	writeJSON(w, http.StatusOK, readings)
}

// handleCreateReading persists one sample. Omitted channel values fall
// back to the current live snapshot.
func (s *Server) handleCreateReading(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProfileID   int64 `json:"profileId"`
		SessionID   int64 `json:"sessionId"`
		Attention   *int  `json:"attention"`
		Relaxation  *int  `json:"relaxation"`
		Stress      *int  `json:"stress"`
		Recognition *int  `json:"recognition"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProfileID == 0 {
		writeError(w, http.StatusBadRequest, "profileId required")
		return
	}

	snap := s.feed.Snapshot()
	pick := func(v *int, live float64) int {
		if v != nil {
			return int(signal.Clamp(float64(*v)))
		}
		return int(math.Round(live))
	}

	reading, err := s.db.CreateReading(&store.Reading{
		ProfileID:   req.ProfileID,
		SessionID:   req.SessionID,
		Attention:   pick(req.Attention, snap.Attention),
		Relaxation:  pick(req.Relaxation, snap.Relaxation),
		Stress:      pick(req.Stress, snap.Stress),
		Recognition: pick(req.Recognition, snap.Recognition),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, reading)
}

// handleSignalEvent applies a scripted stimulus to the live feed.
func (s *Server) handleSignalEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type       string  `json:"type"`
		Level      float64 `json:"level"`
		Recognized bool    `json:"recognized"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	level := req.Level
	if level == 0 {
		level = 20
	}

	var v signal.Vector
	switch req.Type {
	case "stress":
		v = s.feed.StressResponse(level)
	case "relax":
		v = s.feed.RelaxResponse(level)
	case "recognition":
		v = s.feed.RecognitionResponse(req.Recognized)
	default:
		writeError(w, http.StatusBadRequest, "type must be stress, relax or recognition")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleSignalUpload ingests a recorded signal file. Each line is
// "attention,relaxation,stress,recognition"; a header line is skipped.
// Samples become readings and the batch also yields a scoring snapshot.
func (s *Server) handleSignalUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	profileID, _ := strconv.ParseInt(r.FormValue("profileId"), 10, 64)
	if profileID == 0 {
		writeError(w, http.StatusBadRequest, "profileId required")
		return
	}

	file, _, err := r.FormFile("recording")
	if err != nil {
		writeError(w, http.StatusBadRequest, "recording file required")
		return
	}
	defer file.Close()

	uploadID := uuid.NewString()
	var count int
	var sumAtt, sumRelax, sumStress, sumRecog float64

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 4 {
			continue
		}
		vals := make([]float64, 4)
		ok := true
		for i, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = signal.Clamp(v)
		}
		if !ok {
			continue // header or garbage line
		}

		if _, err := s.db.CreateReading(&store.Reading{
			ProfileID:   profileID,
			Attention:   int(math.Round(vals[0])),
			Relaxation:  int(math.Round(vals[1])),
			Stress:      int(math.Round(vals[2])),
			Recognition: int(math.Round(vals[3])),
		}); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		count++
		sumAtt += vals[0]
		sumRelax += vals[1]
		sumStress += vals[2]
		sumRecog += vals[3]
	}
	if err := scanner.Err(); err != nil {
		writeError(w, http.StatusBadRequest, "read recording: "+err.Error())
		return
	}
	if count == 0 {
		writeError(w, http.StatusBadRequest, "recording contained no samples")
		return
	}

	n := float64(count)
	avgAtt := sumAtt / n
	avgRelax := sumRelax / n
	avgStress := sumStress / n

	snapshot, err := s.db.CreateCognitiveProfile(&store.CognitiveProfile{
		ProfileID:        profileID,
		DeclineRisk:      50,
		AttentionScore:   int(math.Round(avgAtt)),
		MemoryScore:      50,
		CognitiveControl: int(math.Round(signal.Clamp((avgRelax + 100 - avgStress) / 2))),
		FatigueLevel:     int(math.Round(100 - avgRelax)),
		SampleCount:      count,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"uploadId":         uploadID,
		"samples":          count,
		"cognitiveProfile": snapshot,
	})
}
