package model

// ComparisonRow 两个周期同一分组的对比
type ComparisonRow struct {
	Key     []string `json:"key"`
	Label   string   `json:"label"`
	IsTotal bool     `json:"isTotal"`

	A MetricRow `json:"a"`
	B MetricRow `json:"b"`

	DeltaValueConversion  float64 `json:"deltaValueConversion"`  // 百分点
	DeltaCountConversion  float64 `json:"deltaCountConversion"`  // 百分点
	DeltaAvgWarrantyPrice float64 `json:"deltaAvgWarrantyPrice"` // 绝对值

	DeltaSold             float64 `json:"deltaSold"`
	DeltaSoldPct          float64 `json:"deltaSoldPct"`
	DeltaWarranty         float64 `json:"deltaWarranty"`
	DeltaWarrantyPct      float64 `json:"deltaWarrantyPct"`
	DeltaWarrantyUnits    float64 `json:"deltaWarrantyUnits"`
	DeltaWarrantyUnitsPct float64 `json:"deltaWarrantyUnitsPct"`
}

// Comparison 周期对比结果
type Comparison struct {
	PeriodA   string          `json:"periodA"`
	PeriodB   string          `json:"periodB"`
	Dimension string          `json:"dimension"`
	KeyNames  []string        `json:"keyNames"`
	Rows      []ComparisonRow `json:"rows"`
	Overall   ComparisonRow   `json:"overall"`

	// 只在一侧出现而被丢弃的分组
	OnlyInA []string `json:"onlyInA"`
	OnlyInB []string `json:"onlyInB"`
}
