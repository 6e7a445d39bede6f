package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Barczakson/inwentura-op-sub001/internal/model"
)

// UpsertAggregate applies one contribution atomically: create the record for
// key with quantity and count 1, or increment the existing quantity and count
// and add fileID to the source set. The increment happens inside the UPDATE
// clause, never as caller-side read-modify-write, so concurrent uploads
// hitting the same key cannot lose each other's contributions.
func (s *Store) UpsertAggregate(ctx context.Context, key model.AggregateKey, quantity float64, fileID string) (*model.AggregateRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO aggregates (item_id, name, unit, quantity, contribution_count)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(item_id, name, unit) DO UPDATE SET
			quantity = quantity + excluded.quantity,
			contribution_count = contribution_count + 1,
			updated_at = CURRENT_TIMESTAMP
	`, key.ItemID, key.Name, key.Unit, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert aggregate: %w", err)
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM aggregates WHERE item_id = ? AND name = ? AND unit = ?",
		key.ItemID, key.Name, key.Unit).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve aggregate id: %w", err)
	}

	// INSERT OR IGNORE keeps the source set idempotent: the same file id
	// contributing twice is recorded once.
	_, err = tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO aggregate_sources (aggregate_id, file_id) VALUES (?, ?)",
		id, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to record source file: %w", err)
	}

	record, err := scanAggregate(tx.QueryRowContext(ctx,
		"SELECT id, item_id, name, unit, quantity, contribution_count, created_at, updated_at FROM aggregates WHERE id = ?",
		id))
	if err != nil {
		return nil, err
	}
	record.SourceFiles, err = sourceFilesTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return record, nil
}

// AggregateQueryOptions filters aggregate listings.
type AggregateQueryOptions struct {
	Name   *string // substring match, case-insensitive
	Unit   *string
	ItemID *string
	FileID *string // only aggregates this upload contributed to
	Limit  int
	Offset int
}

// ListAggregates returns aggregates matching the options, source files
// included.
func (s *Store) ListAggregates(opts AggregateQueryOptions) ([]*model.AggregateRecord, error) {
	query := "SELECT id, item_id, name, unit, quantity, contribution_count, created_at, updated_at FROM aggregates WHERE 1=1"
	args := []interface{}{}

	if opts.Name != nil {
		query += " AND name LIKE ? COLLATE NOCASE"
		args = append(args, "%"+*opts.Name+"%")
	}
	if opts.Unit != nil {
		query += " AND unit = ?"
		args = append(args, *opts.Unit)
	}
	if opts.ItemID != nil {
		query += " AND item_id = ?"
		args = append(args, *opts.ItemID)
	}
	if opts.FileID != nil {
		query += " AND id IN (SELECT aggregate_id FROM aggregate_sources WHERE file_id = ?)"
		args = append(args, *opts.FileID)
	}

	query += " ORDER BY name, unit, item_id"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query aggregates: %w", err)
	}
	defer rows.Close()

	var results []*model.AggregateRecord
	for rows.Next() {
		r := &model.AggregateRecord{}
		err := rows.Scan(&r.ID, &r.ItemID, &r.Name, &r.Unit, &r.Quantity, &r.Count, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan aggregate: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for _, r := range results {
		r.SourceFiles, err = s.sourceFiles(r.ID)
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// CountAggregates counts aggregates matching the options (limit/offset ignored).
func (s *Store) CountAggregates(opts AggregateQueryOptions) (int, error) {
	query := "SELECT COUNT(*) FROM aggregates WHERE 1=1"
	args := []interface{}{}

	if opts.Name != nil {
		query += " AND name LIKE ? COLLATE NOCASE"
		args = append(args, "%"+*opts.Name+"%")
	}
	if opts.Unit != nil {
		query += " AND unit = ?"
		args = append(args, *opts.Unit)
	}
	if opts.ItemID != nil {
		query += " AND item_id = ?"
		args = append(args, *opts.ItemID)
	}
	if opts.FileID != nil {
		query += " AND id IN (SELECT aggregate_id FROM aggregate_sources WHERE file_id = ?)"
		args = append(args, *opts.FileID)
	}

	var count int
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count aggregates: %w", err)
	}
	return count, nil
}

// GetAggregateByID fetches one aggregate with its source files.
func (s *Store) GetAggregateByID(id int64) (*model.AggregateRecord, error) {
	record, err := scanAggregate(s.db.QueryRow(
		"SELECT id, item_id, name, unit, quantity, contribution_count, created_at, updated_at FROM aggregates WHERE id = ?",
		id))
	if err != nil {
		return nil, err
	}
	record.SourceFiles, err = s.sourceFiles(id)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteAggregate removes an aggregate and its source links. Deletion is an
// explicit operation; ingestion never deletes.
func (s *Store) DeleteAggregate(id int64) error {
	res, err := s.db.Exec("DELETE FROM aggregates WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete aggregate: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("aggregate %d not found", id)
	}
	return nil
}

func (s *Store) sourceFiles(aggregateID int64) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT file_id FROM aggregate_sources WHERE aggregate_id = ? ORDER BY file_id", aggregateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query source files: %w", err)
	}
	defer rows.Close()
	return collectFileIDs(rows)
}

func sourceFilesTx(ctx context.Context, tx *sql.Tx, aggregateID int64) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT file_id FROM aggregate_sources WHERE aggregate_id = ? ORDER BY file_id", aggregateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query source files: %w", err)
	}
	defer rows.Close()
	return collectFileIDs(rows)
}

func collectFileIDs(rows *sql.Rows) ([]string, error) {
	var files []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("failed to scan source file: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return files, nil
}

func scanAggregate(row *sql.Row) (*model.AggregateRecord, error) {
	r := &model.AggregateRecord{}
	err := row.Scan(&r.ID, &r.ItemID, &r.Name, &r.Unit, &r.Quantity, &r.Count, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("aggregate not found")
		}
		return nil, fmt.Errorf("failed to scan aggregate: %w", err)
	}
	return r, nil
}
