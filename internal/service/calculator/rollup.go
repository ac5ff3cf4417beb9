package calculator

import "warrantyboard/internal/model"

// SelectBatches 按选择条件挑出周期，保持选择顺序并去重，忽略不存在的周期
func SelectBatches(batches []model.PeriodBatch, sel model.Selection) []model.PeriodBatch {
	if sel.All {
		return append([]model.PeriodBatch(nil), batches...)
	}

	byName := make(map[string]model.PeriodBatch, len(batches))
	for _, b := range batches {
		byName[b.Name] = b
	}

	out := make([]model.PeriodBatch, 0, len(sel.Names))
	picked := make(map[string]bool, len(sel.Names))
	for _, name := range sel.Names {
		b, ok := byName[name]
		if !ok || picked[name] {
			continue
		}
		picked[name] = true
		out = append(out, b)
	}
	return out
}

// Combine 拼接所选周期的记录并标注所属周期，不做聚合
func Combine(batches []model.PeriodBatch, sel model.Selection) []model.Record {
	selected := SelectBatches(batches, sel)

	n := 0
	for _, b := range selected {
		n += len(b.Records)
	}

	out := make([]model.Record, 0, n)
	for _, b := range selected {
		for _, r := range b.Records {
			r.Period = b.Name
			out = append(out, r)
		}
	}
	return out
}

// PivotByPeriod 各周期独立聚合后投影单一指标，生成 维度 × 周期 宽表
//
// 行按分组首次出现的顺序排列；合计行取各周期自身的合计值。
func PivotByPeriod(batches []model.PeriodBatch, dim Dimension, metric model.MetricField) model.PivotTable {
	pivot := model.PivotTable{
		Dimension: dim.Name,
		KeyNames:  append([]string(nil), dim.KeyNames...),
		Metric:    metric,
		Tag:       metric.Tag(),
		Periods:   make([]string, len(batches)),
		Rows:      []model.PivotRow{},
	}

	tables := make([]model.MetricTable, len(batches))
	index := make(map[string]int)
	for i, b := range batches {
		pivot.Periods[i] = b.Name
		tables[i] = Aggregate(Combine([]model.PeriodBatch{b}, model.Selection{All: true}), dim)
		for _, r := range tables[i].Rows {
			k := joinKey(r.Key)
			if _, ok := index[k]; ok {
				continue
			}
			index[k] = len(pivot.Rows)
			pivot.Rows = append(pivot.Rows, model.PivotRow{
				Key:   append([]string(nil), r.Key...),
				Label: r.Label,
				Cells: make([]model.PivotCell, len(batches)),
			})
		}
	}

	for i := range pivot.Rows {
		for p := range pivot.Rows[i].Cells {
			pivot.Rows[i].Cells[p] = newCell(metric, 0, false)
		}
	}

	pivot.Total = model.PivotRow{
		Key:     []string{model.TotalLabel},
		Label:   model.TotalLabel,
		IsTotal: true,
		Cells:   make([]model.PivotCell, len(batches)),
	}
	for p, t := range tables {
		for _, r := range t.Rows {
			i := index[joinKey(r.Key)]
			pivot.Rows[i].Cells[p] = newCell(metric, r.Value(metric), true)
		}
		pivot.Total.Cells[p] = newCell(metric, t.Total.Value(metric), true)
	}

	return pivot
}

// newCell 缺失的分组留空文本
func newCell(metric model.MetricField, v float64, present bool) model.PivotCell {
	cell := model.PivotCell{Value: v, Present: present}
	if present {
		cell.Text = FormatValue(metric, v)
	}
	return cell
}
