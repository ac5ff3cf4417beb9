package parser

// SheetRecognizer Sheet 类型识别器
type SheetRecognizer struct {
	mapper *FieldMapper
}

// NewSheetRecognizer 创建识别器
func NewSheetRecognizer() *SheetRecognizer {
	return &SheetRecognizer{mapper: NewFieldMapper()}
}

// summaryKeywords 汇总/看板页的 Sheet 名关键词（规范化后）
var summaryKeywords = []string{"summary", "dashboard", "pivot", "overview", "kpi"}

// Recognize 识别 Sheet 类型
//
// 置信度为命中必需字段的比例，达到 0.5 即视为周期明细表。
func (r *SheetRecognizer) Recognize(sheetName string, columnNames []string) SheetRecognitionResult {
	mappings := r.mapper.Map(columnNames)
	missing := Missing(mappings)
	confidence := float64(len(requiredFields)-len(missing)) / float64(len(requiredFields))

	result := SheetRecognitionResult{
		SheetName:     sheetName,
		SheetType:     SheetTypeUnknown,
		Confidence:    confidence,
		MissingFields: missing,
	}

	// Sheet 名称辅助判定
	if ContainsAny(NormalizeColumnName(sheetName), summaryKeywords) && confidence < 1 {
		result.SheetType = SheetTypeSummary
		return result
	}

	if confidence >= 0.5 {
		result.SheetType = SheetTypePeriod
		result.Period = PeriodFromSheetName(sheetName)
	}
	return result
}
