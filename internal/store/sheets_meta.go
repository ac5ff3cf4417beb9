package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// SheetMeta 单个 Sheet 的识别与导入情况
type SheetMeta struct {
	ImportLogID  int64
	SheetName    string
	Period       string
	Confidence   float64
	TotalRows    int
	ImportedRows int
	ColumnsJSON  string
	Status       string
	ErrorMessage string
}

// InsertSheetMeta 写入 Sheet 元信息（用于追溯与容错）
func (s *Store) InsertSheetMeta(ctx context.Context, meta SheetMeta) error {
	if meta.ColumnsJSON == "" {
		meta.ColumnsJSON = "[]"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sheets_meta (
			import_log_id, sheet_name, period, confidence,
			total_rows, imported_rows, columns_json,
			status, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		meta.ImportLogID, meta.SheetName, meta.Period, meta.Confidence,
		meta.TotalRows, meta.ImportedRows, meta.ColumnsJSON,
		meta.Status, meta.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sheets_meta: %w", err)
	}
	return nil
}

// CountSheetMeta 某次导入记录的 Sheet 数
func (s *Store) CountSheetMeta(ctx context.Context, importLogID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM sheets_meta WHERE import_log_id = ?", importLogID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count sheets_meta: %w", err)
	}
	return n, nil
}

// BuildColumnsJSON 将列名序列化为 JSON
func BuildColumnsJSON(columns []string) string {
	b, err := json.Marshal(columns)
	if err != nil {
		return "[]"
	}
	return string(b)
}
