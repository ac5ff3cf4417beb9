package store

import (
	"context"
	"fmt"

	"warrantyboard/internal/model"
)

// ReplacePeriod 在一个事务内覆盖写入周期记录，周期顺序保持首次导入时的位置
func (s *Store) ReplacePeriod(ctx context.Context, name, source, batchID string, records []model.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO periods (name, seq, source, batch_id)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM periods), ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			source = excluded.source,
			batch_id = excluded.batch_id,
			imported_at = CURRENT_TIMESTAMP
	`, name, source, batchID); err != nil {
		return fmt.Errorf("failed to upsert period: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE period = ?", name); err != nil {
		return fmt.Errorf("failed to clear period records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (
			period, row_no, category, bdm, rbm, store, staff,
			total_sold_amount, warranty_amount, total_unit_count, warranty_unit_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		r = r.Sanitize()
		if _, err := stmt.ExecContext(ctx,
			name, i, r.Category, r.BDM, r.RBM, r.Store, r.Staff,
			r.TotalSoldAmount, r.WarrantyAmount, r.TotalUnitCount, r.WarrantyUnitCount,
		); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit period: %w", err)
	}
	return nil
}

// LoadPeriod 按导入顺序读取周期记录
func (s *Store) LoadPeriod(ctx context.Context, name string) ([]model.Record, error) {
	ok, err := s.PeriodExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrPeriodNotFound, name)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, bdm, rbm, store, staff,
			total_sold_amount, warranty_amount, total_unit_count, warranty_unit_count
		FROM records
		WHERE period = ?
		ORDER BY row_no ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query records failed: %w", err)
	}
	defer rows.Close()

	out := []model.Record{}
	for rows.Next() {
		var r model.Record
		if err := rows.Scan(
			&r.Category, &r.BDM, &r.RBM, &r.Store, &r.Staff,
			&r.TotalSoldAmount, &r.WarrantyAmount, &r.TotalUnitCount, &r.WarrantyUnitCount,
		); err != nil {
			return nil, fmt.Errorf("scan record failed: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records failed: %w", err)
	}
	return out, nil
}

// DistinctValues 列出某个组织字段的去重取值，用于前端筛选下拉
func (s *Store) DistinctValues(ctx context.Context, column string) ([]string, error) {
	switch column {
	case "bdm", "rbm", "store", "staff", "category":
	default:
		return nil, fmt.Errorf("unsupported column: %s", column)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT "+column+" FROM records WHERE "+column+" <> '' ORDER BY "+column)
	if err != nil {
		return nil, fmt.Errorf("query distinct %s failed: %w", column, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan distinct %s failed: %w", column, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
