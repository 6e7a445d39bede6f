package store

import (
	"database/sql"
	"fmt"

	"github.com/Barczakson/inwentura-op-sub001/internal/model"
)

// CreateFile records a new upload in processing state.
func (s *Store) CreateFile(id, filename string, size int64) error {
	_, err := s.db.Exec(`
		INSERT INTO files (id, filename, size, status)
		VALUES (?, ?, ?, ?)
	`, id, filename, size, model.UploadStatusProcessing)
	if err != nil {
		return fmt.Errorf("failed to create file record: %w", err)
	}
	return nil
}

// FinishFile closes an upload record with its final counters and status.
func (s *Store) FinishFile(id string, totalRows, extractedRows, rejectedRows int, status, errorMessage string) error {
	_, err := s.db.Exec(`
		UPDATE files SET
			total_rows = ?,
			extracted_rows = ?,
			rejected_rows = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, totalRows, extractedRows, rejectedRows, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to finish file record: %w", err)
	}
	return nil
}

// GetFile fetches one upload record.
func (s *Store) GetFile(id string) (*model.UploadFile, error) {
	return scanFile(s.db.QueryRow(`
		SELECT id, filename, size, status, total_rows, extracted_rows, rejected_rows,
		       error_message, created_at, completed_at
		FROM files WHERE id = ?
	`, id))
}

// ListFiles returns uploads, newest first.
func (s *Store) ListFiles(limit, offset int) ([]*model.UploadFile, error) {
	query := `
		SELECT id, filename, size, status, total_rows, extracted_rows, rejected_rows,
		       error_message, created_at, completed_at
		FROM files ORDER BY created_at DESC, id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
		if offset > 0 {
			query += " OFFSET ?"
			args = append(args, offset)
		}
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var results []*model.UploadFile
	for rows.Next() {
		f := &model.UploadFile{}
		var completedAt sql.NullTime
		err := rows.Scan(&f.ID, &f.Filename, &f.Size, &f.Status,
			&f.TotalRows, &f.ExtractedRows, &f.RejectedRows,
			&f.ErrorMessage, &f.CreatedAt, &completedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		if completedAt.Valid {
			f.CompletedAt = &completedAt.Time
		}
		results = append(results, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

func scanFile(row *sql.Row) (*model.UploadFile, error) {
	f := &model.UploadFile{}
	var completedAt sql.NullTime
	err := row.Scan(&f.ID, &f.Filename, &f.Size, &f.Status,
		&f.TotalRows, &f.ExtractedRows, &f.RejectedRows,
		&f.ErrorMessage, &f.CreatedAt, &completedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("file not found")
		}
		return nil, fmt.Errorf("failed to scan file: %w", err)
	}
	if completedAt.Valid {
		f.CompletedAt = &completedAt.Time
	}
	return f, nil
}
