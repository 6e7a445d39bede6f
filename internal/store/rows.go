package store

import (
	"fmt"

	"github.com/Barczakson/inwentura-op-sub001/internal/model"
)

// BatchInsertRows persists extracted rows in a single transaction.
func (s *Store) BatchInsertRows(rows []model.ItemRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO item_rows (file_id, row_no, lp, item_id, name, quantity, unit)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.FileID, r.RowNo, r.LP, r.ItemID, r.Name, r.Quantity, r.Unit); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListRowsByFile returns a file's extracted rows in sheet order.
func (s *Store) ListRowsByFile(fileID string) ([]model.ItemRow, error) {
	rows, err := s.db.Query(`
		SELECT id, file_id, row_no, lp, item_id, name, quantity, unit
		FROM item_rows WHERE file_id = ? ORDER BY row_no
	`, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	var results []model.ItemRow
	for rows.Next() {
		var r model.ItemRow
		if err := rows.Scan(&r.ID, &r.FileID, &r.RowNo, &r.LP, &r.ItemID, &r.Name, &r.Quantity, &r.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}
