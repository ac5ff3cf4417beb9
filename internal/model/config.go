package model

// Targets 指标目标值，三项指标均为越高越好
type Targets struct {
	ValueConversion  float64 `json:"valueConversion"`  // 百分比
	CountConversion  float64 `json:"countConversion"`  // 百分比
	AvgWarrantyPrice float64 `json:"avgWarrantyPrice"` // 金额
}

// DefaultTargets 默认目标
func DefaultTargets() Targets {
	return Targets{
		ValueConversion:  4,
		CountConversion:  10,
		AvgWarrantyPrice: 300,
	}
}

// Direction 指标方向
type Direction string

const (
	HigherIsBetter Direction = "higher"
	LowerIsBetter  Direction = "lower"
)

// Status 目标达成状态
type Status string

const (
	StatusExceeds Status = "exceeds"
	StatusBelow   Status = "below"
	StatusNeutral Status = "neutral" // 无目标或无数据
)

// MetricEvaluation 单项指标的达成情况
type MetricEvaluation struct {
	Field       MetricField `json:"field"`
	Value       float64     `json:"value"`
	Target      float64     `json:"target"`
	Direction   Direction   `json:"direction"`
	Status      Status      `json:"status"`
	Achievement float64     `json:"achievement"` // 实际 / 目标 × 100
}

// RowEvaluation 单行达成情况
type RowEvaluation struct {
	Label   string             `json:"label"`
	IsTotal bool               `json:"isTotal"`
	Metrics []MetricEvaluation `json:"metrics"`
}

// EvaluationSummary 达成情况汇总
type EvaluationSummary struct {
	Exceeds int `json:"exceeds"`
	Below   int `json:"below"`
	Neutral int `json:"neutral"`

	// Achievement 达标项占已评估项的百分比，无评估项时为 0
	Achievement float64 `json:"achievement"`
}

// Evaluation 目标评估结果
type Evaluation struct {
	Targets Targets           `json:"targets"`
	Rows    []RowEvaluation   `json:"rows"`
	Total   RowEvaluation     `json:"total"`
	Summary EvaluationSummary `json:"summary"`
}
