package parser

import (
	"fmt"
	"strings"

	"warrantyboard/internal/model"
)

// RecordParser 周期明细表解析器
type RecordParser struct {
	mapper     *FieldMapper
	recognizer *SheetRecognizer
}

// NewRecordParser 创建解析器
func NewRecordParser() *RecordParser {
	return &RecordParser{
		mapper:     NewFieldMapper(),
		recognizer: NewSheetRecognizer(),
	}
}

// RowStats 行级统计
type RowStats struct {
	TotalRows   int
	SkippedRows int
}

// ParseRows 解析二维表格，第一行为表头
func (p *RecordParser) ParseRows(sheetName string, rows [][]string) ([]model.Record, RowStats, error) {
	if len(rows) < 1 {
		return nil, RowStats{}, fmt.Errorf("sheet has no header row")
	}

	headers := rows[0]
	result := p.recognizer.Recognize(sheetName, headers)
	if result.SheetType != SheetTypePeriod {
		return nil, RowStats{}, fmt.Errorf("not a period sheet (confidence %.2f, missing %v)", result.Confidence, result.MissingFields)
	}

	mappings := p.mapper.Map(headers)

	stats := RowStats{}
	records := make([]model.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if IsBlankRow(row) {
			continue
		}
		stats.TotalRows++

		rec, ok := parseRow(row, mappings)
		if !ok {
			stats.SkippedRows++
			continue
		}
		records = append(records, rec)
	}

	return records, stats, nil
}

// parseRow 解析单行数据，跳过无组织信息的行和表内合计行
func parseRow(row []string, mappings map[Field]FieldMapping) (model.Record, bool) {
	var rec model.Record
	for field, m := range mappings {
		if m.ColumnIndex >= len(row) {
			continue
		}
		setFieldValue(&rec, field, strings.TrimSpace(row[m.ColumnIndex]))
	}

	if rec.Store == "" && rec.Staff == "" && rec.Category == "" {
		return rec, false
	}
	if IsTotalLabel(rec.Store) || IsTotalLabel(rec.Staff) || IsTotalLabel(rec.Category) {
		return rec, false
	}
	return rec, true
}

// setFieldValue 设置字段值，数值列非法时按 0 处理
func setFieldValue(rec *model.Record, field Field, value string) {
	switch field {
	case FieldCategory:
		rec.Category = value
	case FieldBDM:
		rec.BDM = value
	case FieldRBM:
		rec.RBM = value
	case FieldStore:
		rec.Store = value
	case FieldStaff:
		rec.Staff = value
	case FieldTotalSoldAmount:
		rec.TotalSoldAmount = model.CoerceNumber(value)
	case FieldWarrantyAmount:
		rec.WarrantyAmount = model.CoerceNumber(value)
	case FieldTotalUnitCount:
		rec.TotalUnitCount = model.CoerceNumber(value)
	case FieldWarrantyUnitCount:
		rec.WarrantyUnitCount = model.CoerceNumber(value)
	}
}
