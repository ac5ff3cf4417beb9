package model

// PivotCell 透视表单元格
type PivotCell struct {
	Value   float64 `json:"value"`
	Text    string  `json:"text"`
	Present bool    `json:"present"` // 该周期是否存在此分组
}

// PivotRow 透视表行
type PivotRow struct {
	Key     []string    `json:"key"`
	Label   string      `json:"label"`
	IsTotal bool        `json:"isTotal"`
	Cells   []PivotCell `json:"cells"` // 与 PivotTable.Periods 一一对应
}

// PivotTable 多周期宽表
type PivotTable struct {
	Dimension string      `json:"dimension"`
	KeyNames  []string    `json:"keyNames"`
	Metric    MetricField `json:"metric"`
	Tag       FieldTag    `json:"tag"`
	Periods   []string    `json:"periods"`
	Rows      []PivotRow  `json:"rows"`
	Total     PivotRow    `json:"total"`
}
