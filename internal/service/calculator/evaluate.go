package calculator

import "warrantyboard/internal/model"

// evaluatedMetrics 参与目标评估的指标及方向
var evaluatedMetrics = []struct {
	field     model.MetricField
	direction model.Direction
	target    func(model.Targets) float64
}{
	{model.FieldValueConversion, model.HigherIsBetter, func(t model.Targets) float64 { return t.ValueConversion }},
	{model.FieldCountConversion, model.HigherIsBetter, func(t model.Targets) float64 { return t.CountConversion }},
	{model.FieldAvgWarrantyPrice, model.HigherIsBetter, func(t model.Targets) float64 { return t.AvgWarrantyPrice }},
}

// Evaluate 按目标值评估各数据行及合计行
func Evaluate(table model.MetricTable, targets model.Targets) model.Evaluation {
	ev := model.Evaluation{
		Targets: targets,
		Rows:    make([]model.RowEvaluation, 0, len(table.Rows)),
	}

	for _, r := range table.Rows {
		row := evaluateRow(r, targets)
		for _, m := range row.Metrics {
			switch m.Status {
			case model.StatusExceeds:
				ev.Summary.Exceeds++
			case model.StatusBelow:
				ev.Summary.Below++
			default:
				ev.Summary.Neutral++
			}
		}
		ev.Rows = append(ev.Rows, row)
	}
	ev.Total = evaluateRow(table.Total, targets)

	evaluated := float64(ev.Summary.Exceeds + ev.Summary.Below)
	ev.Summary.Achievement = calcRatio(float64(ev.Summary.Exceeds), evaluated) * 100

	return ev
}

func evaluateRow(r model.MetricRow, targets model.Targets) model.RowEvaluation {
	row := model.RowEvaluation{
		Label:   r.Label,
		IsTotal: r.IsTotal,
		Metrics: make([]model.MetricEvaluation, 0, len(evaluatedMetrics)),
	}
	for _, em := range evaluatedMetrics {
		row.Metrics = append(row.Metrics, evaluateMetric(em.field, em.direction, r.Value(em.field), em.target(targets)))
	}
	return row
}

// evaluateMetric 目标未设置（≤0）时为 neutral
func evaluateMetric(field model.MetricField, dir model.Direction, value, target float64) model.MetricEvaluation {
	m := model.MetricEvaluation{
		Field:       field,
		Value:       value,
		Target:      target,
		Direction:   dir,
		Status:      model.StatusNeutral,
		Achievement: calcRatio(value, target) * 100,
	}
	if target <= 0 {
		return m
	}

	met := value >= target
	if dir == model.LowerIsBetter {
		met = value <= target
	}
	if met {
		m.Status = model.StatusExceeds
	} else {
		m.Status = model.StatusBelow
	}
	return m
}
