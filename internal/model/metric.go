package model

import "strings"

// TotalLabel 合计行标签
const TotalLabel = "Total"

// FieldTag 字段语义标签，决定展示与导出格式
type FieldTag string

const (
	TagPercentage FieldTag = "percentage"
	TagCurrency   FieldTag = "currency"
	TagCount      FieldTag = "count"
	TagText       FieldTag = "text"
)

// MetricField 指标字段
type MetricField string

const (
	FieldSumSold          MetricField = "sumSold"
	FieldSumWarranty      MetricField = "sumWarranty"
	FieldSumUnits         MetricField = "sumUnits"
	FieldSumWarrantyUnits MetricField = "sumWarrantyUnits"
	FieldCountConversion  MetricField = "countConversion"
	FieldValueConversion  MetricField = "valueConversion"
	FieldAvgWarrantyPrice MetricField = "avgWarrantyPrice"
)

type fieldSpec struct {
	field MetricField
	label string
	tag   FieldTag
}

var fieldSpecs = []fieldSpec{
	{FieldSumSold, "Total Sold Amount", TagCurrency},
	{FieldSumWarranty, "Warranty Amount", TagCurrency},
	{FieldSumUnits, "Total Units", TagCount},
	{FieldSumWarrantyUnits, "Warranty Units", TagCount},
	{FieldCountConversion, "Count Conversion", TagPercentage},
	{FieldValueConversion, "Value Conversion", TagPercentage},
	{FieldAvgWarrantyPrice, "Avg Warranty Price", TagCurrency},
}

// MetricFields 按展示顺序返回全部指标字段
func MetricFields() []MetricField {
	out := make([]MetricField, len(fieldSpecs))
	for i, s := range fieldSpecs {
		out[i] = s.field
	}
	return out
}

// ParseMetricField 解析指标字段名（大小写不敏感，兼容下划线写法）
func ParseMetricField(s string) (MetricField, bool) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	for _, spec := range fieldSpecs {
		if strings.ToLower(string(spec.field)) == key {
			return spec.field, true
		}
	}
	return "", false
}

// Tag 字段语义标签
func (f MetricField) Tag() FieldTag {
	for _, s := range fieldSpecs {
		if s.field == f {
			return s.tag
		}
	}
	return TagText
}

// Label 字段展示名
func (f MetricField) Label() string {
	for _, s := range fieldSpecs {
		if s.field == f {
			return s.label
		}
	}
	return string(f)
}

// MetricRow 单个分组的聚合结果
type MetricRow struct {
	Key     []string `json:"key"`   // 分组键各部分
	Label   string   `json:"label"` // 分组展示名
	IsTotal bool     `json:"isTotal"`

	SumSold          float64 `json:"sumSold"`
	SumWarranty      float64 `json:"sumWarranty"`
	SumUnits         float64 `json:"sumUnits"`
	SumWarrantyUnits float64 `json:"sumWarrantyUnits"`

	CountConversion  float64 `json:"countConversion"`  // 延保件数 / 销售件数 × 100
	ValueConversion  float64 `json:"valueConversion"`  // 延保金额 / 销售总额 × 100
	AvgWarrantyPrice float64 `json:"avgWarrantyPrice"` // 延保金额 / 延保件数
}

// Value 按字段读取指标值
func (r MetricRow) Value(f MetricField) float64 {
	switch f {
	case FieldSumSold:
		return r.SumSold
	case FieldSumWarranty:
		return r.SumWarranty
	case FieldSumUnits:
		return r.SumUnits
	case FieldSumWarrantyUnits:
		return r.SumWarrantyUnits
	case FieldCountConversion:
		return r.CountConversion
	case FieldValueConversion:
		return r.ValueConversion
	case FieldAvgWarrantyPrice:
		return r.AvgWarrantyPrice
	}
	return 0
}

// MetricTable 聚合结果表
//
// Rows 只包含数据行，合计行单独存放在 Total 中，展示时始终位于最后。
type MetricTable struct {
	Dimension        string      `json:"dimension"`
	KeyNames         []string    `json:"keyNames"`
	Rows             []MetricRow `json:"rows"`
	Total            MetricRow   `json:"total"`
	EmptyAfterFilter bool        `json:"emptyAfterFilter"`
}

// AllRows 返回数据行并在末尾追加合计行
func (t MetricTable) AllRows() []MetricRow {
	out := make([]MetricRow, 0, len(t.Rows)+1)
	out = append(out, t.Rows...)
	return append(out, t.Total)
}

// Find 按标签查找数据行
func (t MetricTable) Find(label string) (MetricRow, bool) {
	for _, r := range t.Rows {
		if r.Label == label {
			return r, true
		}
	}
	return MetricRow{}, false
}
