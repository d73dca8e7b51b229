package store

import (
	"database/sql"
	"fmt"
	"time"

	"wbsdash/internal/model"
)

// CreateRun 记录一次开始的分析
func (s *Store) CreateRun(run model.AnalysisRun) error {
	if run.Status == "" {
		run.Status = model.RunStatusProcessing
	}
	_, err := s.db.Exec(`
		INSERT INTO analysis_runs (id, file_path, file_size, operation, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.FilePath, run.FileSize, string(run.Operation), run.Status, run.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to create analysis run: %w", err)
	}
	return nil
}

// FinishRun 完成分析记录
func (s *Store) FinishRun(id, status string, resultStatus model.Status, warningCount int, errorMessage string) error {
	res, err := s.db.Exec(`
		UPDATE analysis_runs SET
			status = ?,
			result_status = ?,
			warning_count = ?,
			error_message = ?,
			completed_at = ?
		WHERE id = ?
	`, status, string(resultStatus), warningCount, errorMessage, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("analysis run not found: %s", id)
	}
	return nil
}

// ListRuns 最近的分析记录，按开始时间倒序
func (s *Store) ListRuns(limit int) ([]model.AnalysisRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, file_path, file_size, operation, status, result_status,
			warning_count, error_message, started_at, completed_at
		FROM analysis_runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.AnalysisRun, 0)
	for rows.Next() {
		var (
			run       model.AnalysisRun
			op        string
			result    string
			completed sql.NullTime
		)
		if err := rows.Scan(&run.ID, &run.FilePath, &run.FileSize, &op, &run.Status, &result,
			&run.WarningCount, &run.ErrorMessage, &run.StartedAt, &completed); err != nil {
			return nil, err
		}
		run.Operation = model.Operation(op)
		run.ResultStatus = model.Status(result)
		if completed.Valid {
			t := completed.Time
			run.CompletedAt = &t
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
