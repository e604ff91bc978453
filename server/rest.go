package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/umputun/ideascope/pkg/domain"
)

// statusResponse is the reply of the status endpoint
type statusResponse struct {
	Status    string             `json:"status"`
	Version   string             `json:"version"`
	Time      time.Time          `json:"time"`
	Running   bool               `json:"running"`
	LastRun   *domain.RunSummary `json:"last_run,omitempty"`
	LastError string             `json:"last_error,omitempty"`
	Finished  *time.Time         `json:"finished,omitempty"`
}

// statusHandler returns server status with the summary of the last finished run
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	s.runLock.Lock()
	resp := statusResponse{Status: "ok", Version: s.version, Time: time.Now().UTC(), Running: s.running}
	if s.last != nil {
		summary := s.last.Summary
		resp.LastRun = &summary
		finished := s.finished.UTC()
		resp.Finished = &finished
	}
	if s.lastErr != nil {
		resp.LastError = s.lastErr.Error()
	}
	s.runLock.Unlock()

	renderJSON(w, r, http.StatusOK, resp)
}

// runHandler starts a run in background, only one run at a time is allowed
func (s *Server) runHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.startRun(); err != nil {
		code := http.StatusConflict
		if errors.Is(err, errShuttingDown) {
			code = http.StatusServiceUnavailable
		}
		renderError(w, r, err, code)
		return
	}
	renderJSON(w, r, http.StatusAccepted, map[string]string{"status": "started"})
}

// stopHandler cancels the active run
func (s *Server) stopHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.stopRun(); err != nil {
		renderError(w, r, err, http.StatusConflict)
		return
	}
	renderJSON(w, r, http.StatusAccepted, map[string]string{"status": "stopping"})
}

// ideasHandler returns records of the last finished run.
// Optional query params: min_score (confidence threshold) and limit.
func (s *Server) ideasHandler(w http.ResponseWriter, r *http.Request) {
	minScore, limit, err := ideasParams(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	renderJSON(w, r, http.StatusOK, filterIdeas(s.lastRecords(), minScore, limit))
}

// ideasParams parses min_score and limit query params
func ideasParams(r *http.Request) (minScore float64, limit int, err error) {
	if v := r.URL.Query().Get("min_score"); v != "" {
		minScore, err = strconv.ParseFloat(v, 64)
		if err != nil || minScore < 0 || minScore > 1 {
			return 0, 0, errors.New("invalid min_score, expected value in [0,1]")
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			return 0, 0, errors.New("invalid limit")
		}
	}
	return minScore, limit, nil
}

// lastRecords returns records of the last finished run
func (s *Server) lastRecords() []domain.IdeaRecord {
	s.runLock.Lock()
	defer s.runLock.Unlock()
	if s.last == nil {
		return nil
	}
	return s.last.Records
}

// filterIdeas keeps records with confidence at or above minScore, up to limit (0 for all)
func filterIdeas(records []domain.IdeaRecord, minScore float64, limit int) []domain.IdeaRecord {
	res := make([]domain.IdeaRecord, 0, len(records))
	for _, rec := range records {
		if rec.ConfidenceScore < minScore {
			continue
		}
		res = append(res, rec)
		if limit > 0 && len(res) >= limit {
			break
		}
	}
	return res
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
