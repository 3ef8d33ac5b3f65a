package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Run is one recorded simulation run.
type Run struct {
	ID            int64
	Seed          int64
	BoardPath     string
	KnowledgePath string
	StartedAt     int64
	EndedAt       *int64
	Status        string
}

// TickStat is one tick's colony statistics.
type TickStat struct {
	Tick       int     `json:"tick"`
	Scouters   int     `json:"scouters"`
	Target     int     `json:"target"`
	BlobTotal  float64 `json:"blob_total"`
	Cover      int     `json:"cover"`
	KnownFoods int     `json:"known_foods"`
}

// StartRun records a new active run and returns it.
func (db *DB) StartRun(seed int64, boardPath, knowledgePath string) (*Run, error) {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO runs (seed, board_path, knowledge_path, started_at, status)
		VALUES (?, ?, ?, ?, 'active')
	`, seed, boardPath, knowledgePath, now)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	id, _ := result.LastInsertId()
	return &Run{
		ID:            id,
		Seed:          seed,
		BoardPath:     boardPath,
		KnowledgePath: knowledgePath,
		StartedAt:     now,
		Status:        "active",
	}, nil
}

// FinishRun marks a run completed or failed.
func (db *DB) FinishRun(runID int64, failed bool) error {
	status := "completed"
	if failed {
		status = "failed"
	}
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		UPDATE runs SET status = ?, ended_at = ?
		WHERE id = ? AND status = 'active'
	`, status, now, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("no active run %d", runID)
	}
	return nil
}

// GetRun returns a run by id, or nil when absent.
func (db *DB) GetRun(runID int64) (*Run, error) {
	var r Run
	err := db.QueryRow(`
		SELECT id, seed, board_path, knowledge_path, started_at, ended_at, status
		FROM runs WHERE id = ?
	`, runID).Scan(&r.ID, &r.Seed, &r.BoardPath, &r.KnowledgePath, &r.StartedAt, &r.EndedAt, &r.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &r, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT id, seed, board_path, knowledge_path, started_at, ended_at, status
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Seed, &r.BoardPath, &r.KnowledgePath, &r.StartedAt, &r.EndedAt, &r.Status); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RecordTick stores one tick's statistics for a run.
func (db *DB) RecordTick(runID int64, s TickStat) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO ticks (run_id, tick, scouters, target, blob_total, cover, known_foods, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, s.Tick, s.Scouters, s.Target, s.BlobTotal, s.Cover, s.KnownFoods, now)
	if err != nil {
		return fmt.Errorf("record tick %d: %w", s.Tick, err)
	}
	return nil
}

// TicksForRun returns a run's statistics in tick order.
func (db *DB) TicksForRun(runID int64) ([]TickStat, error) {
	rows, err := db.Query(`
		SELECT tick, scouters, target, blob_total, cover, known_foods
		FROM ticks WHERE run_id = ? ORDER BY tick
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("ticks for run: %w", err)
	}
	defer rows.Close()

	var stats []TickStat
	for rows.Next() {
		var s TickStat
		if err := rows.Scan(&s.Tick, &s.Scouters, &s.Target, &s.BlobTotal, &s.Cover, &s.KnownFoods); err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// LatestTick returns the newest recorded tick for a run, or nil when
// none were recorded yet.
func (db *DB) LatestTick(runID int64) (*TickStat, error) {
	var s TickStat
	err := db.QueryRow(`
		SELECT tick, scouters, target, blob_total, cover, known_foods
		FROM ticks WHERE run_id = ? ORDER BY tick DESC LIMIT 1
	`, runID).Scan(&s.Tick, &s.Scouters, &s.Target, &s.BlobTotal, &s.Cover, &s.KnownFoods)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest tick: %w", err)
	}
	return &s, nil
}
