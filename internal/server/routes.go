package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.runner.State())
}

func (s *Server) handleKnowledge(w http.ResponseWriter, r *http.Request) {
	data, err := s.runner.Knowledge().Encode()
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ticks int `json:"ticks"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
			return
		}
	}
	if req.Ticks < 1 {
		req.Ticks = 1
	}
	if req.Ticks > 10000 {
		http.Error(w, `{"error":"ticks capped at 10000 per request"}`, http.StatusBadRequest)
		return
	}

	stat := s.runner.Run(req.Ticks)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stat)
}

func (s *Server) handleBoardReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	state := s.runner.State()
	if req.X < 0 || req.X >= state.Width || req.Y < 0 || req.Y >= state.Height {
		http.Error(w, `{"error":"cell out of bounds"}`, http.StatusBadRequest)
		return
	}

	s.runner.ResetCell(req.X, req.Y)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "reset"})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		http.Error(w, `{"error":"no history database configured"}`, http.StatusNotFound)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.db.ListRuns(limit)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	type runJSON struct {
		ID        int64  `json:"id"`
		Seed      int64  `json:"seed"`
		StartedAt int64  `json:"started_at"`
		EndedAt   *int64 `json:"ended_at,omitempty"`
		Status    string `json:"status"`
	}
	out := make([]runJSON, len(runs))
	for i, run := range runs {
		out[i] = runJSON{
			ID:        run.ID,
			Seed:      run.Seed,
			StartedAt: run.StartedAt,
			EndedAt:   run.EndedAt,
			Status:    run.Status,
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (s *Server) handleRunTicks(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		http.Error(w, `{"error":"no history database configured"}`, http.StatusNotFound)
		return
	}
	runID, err := strconv.ParseInt(chi.URLParam(r, "runID"), 10, 64)
	if err != nil {
		http.Error(w, `{"error":"bad run id"}`, http.StatusBadRequest)
		return
	}
	run, err := s.db.GetRun(runID)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if run == nil {
		http.Error(w, `{"error":"run not found"}`, http.StatusNotFound)
		return
	}

	stats, err := s.db.TicksForRun(runID)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
