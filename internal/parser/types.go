package parser

import "time"

// SheetType Sheet 类型
type SheetType string

const (
	SheetTypePeriod  SheetType = "period"  // 单周期明细表
	SheetTypeSummary SheetType = "summary" // 汇总/看板页，跳过
	SheetTypeUnknown SheetType = "unknown"
)

// Field 记录字段
type Field string

const (
	FieldCategory          Field = "category"
	FieldBDM               Field = "bdm"
	FieldRBM               Field = "rbm"
	FieldStore             Field = "store"
	FieldStaff             Field = "staff"
	FieldTotalSoldAmount   Field = "total_sold_amount"
	FieldWarrantyAmount    Field = "warranty_amount"
	FieldTotalUnitCount    Field = "total_unit_count"
	FieldWarrantyUnitCount Field = "warranty_unit_count"
)

// SheetRecognitionResult Sheet 识别结果
type SheetRecognitionResult struct {
	SheetName     string    `json:"sheetName"`
	SheetType     SheetType `json:"sheetType"`
	Confidence    float64   `json:"confidence"` // 置信度 0-1
	Period        string    `json:"period"`     // 识别出的周期名
	MissingFields []Field   `json:"missingFields,omitempty"`
}

// FieldMapping 字段映射结果
type FieldMapping struct {
	ColumnIndex int    `json:"columnIndex"` // 列索引
	ColumnName  string `json:"columnName"`  // 原始列名
	Field       Field  `json:"field"`       // 记录字段
}

// ParseResult 单个 Sheet 的解析结果
type ParseResult struct {
	SheetName    string        `json:"sheetName"`
	SheetType    SheetType     `json:"sheetType"`
	Period       string        `json:"period,omitempty"`
	Confidence   float64       `json:"confidence"`
	Status       string        `json:"status"` // imported/skipped/error
	TotalRows    int           `json:"totalRows"`
	ImportedRows int           `json:"importedRows"`
	SkippedRows  int           `json:"skippedRows"`
	ErrorRows    int           `json:"errorRows"`
	Errors       []string      `json:"errors,omitempty"`
	Warnings     []string      `json:"warnings,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// ImportReport 导入报告
type ImportReport struct {
	BatchID        string        `json:"batchId"`
	Source         string        `json:"source"`
	Filename       string        `json:"filename"`
	TotalSheets    int           `json:"totalSheets"`
	ImportedSheets int           `json:"importedSheets"`
	SkippedSheets  int           `json:"skippedSheets"`
	TotalRows      int           `json:"totalRows"`
	ImportedRows   int           `json:"importedRows"`
	ErrorRows      int           `json:"errorRows"`
	Periods        []string      `json:"periods"`
	Duration       time.Duration `json:"duration"`
	Sheets         []ParseResult `json:"sheets"`
}
