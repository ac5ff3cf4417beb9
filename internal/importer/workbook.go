package importer

import (
	"context"

	"github.com/xuri/excelize/v2"
)

// Workbook 可按 Sheet 读取二维表格的数据源（Excel 文件或在线表格）
type Workbook interface {
	SheetNames(ctx context.Context) ([]string, error)
	Rows(ctx context.Context, sheet string) ([][]string, error)
}

// ExcelWorkbook 基于 excelize 的工作簿
type ExcelWorkbook struct {
	file *excelize.File
}

// NewExcelWorkbook 包装已打开的 Excel 文件
func NewExcelWorkbook(file *excelize.File) *ExcelWorkbook {
	return &ExcelWorkbook{file: file}
}

// SheetNames 按工作簿顺序返回 Sheet 名
func (w *ExcelWorkbook) SheetNames(ctx context.Context) ([]string, error) {
	return w.file.GetSheetList(), nil
}

// Rows 读取 Sheet 全部行
func (w *ExcelWorkbook) Rows(ctx context.Context, sheet string) ([][]string, error) {
	return w.file.GetRows(sheet)
}
