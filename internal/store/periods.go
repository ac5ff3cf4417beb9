package store

import (
	"context"
	"fmt"

	"warrantyboard/internal/model"
)

// ListPeriods 列出已导入的周期（按首次导入顺序）
func (s *Store) ListPeriods(ctx context.Context) ([]model.PeriodInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.name, p.source, p.batch_id,
			(SELECT COUNT(1) FROM records r WHERE r.period = p.name) AS record_count
		FROM periods p
		ORDER BY p.seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query periods failed: %w", err)
	}
	defer rows.Close()

	out := []model.PeriodInfo{}
	for rows.Next() {
		var it model.PeriodInfo
		if err := rows.Scan(&it.Name, &it.Source, &it.BatchID, &it.RecordCount); err != nil {
			return nil, fmt.Errorf("scan periods failed: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate periods failed: %w", err)
	}
	return out, nil
}

// PeriodExists 判断周期是否存在
func (s *Store) PeriodExists(ctx context.Context, name string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM periods WHERE name = ?", name).Scan(&n); err != nil {
		return false, fmt.Errorf("query period failed: %w", err)
	}
	return n > 0, nil
}

// DeletePeriod 删除周期及其记录
func (s *Store) DeletePeriod(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM periods WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete period: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete period: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", model.ErrPeriodNotFound, name)
	}
	return nil
}
