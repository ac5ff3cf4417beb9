package calculator

import "warrantyboard/internal/model"

// Compare 按分组键内连接两个周期的数据行并计算差值（B − A）
//
// 输出保持 A 的行顺序，只在一侧出现的分组被丢弃。
func Compare(a, b model.MetricTable) []model.ComparisonRow {
	index := make(map[string]model.MetricRow, len(b.Rows))
	for _, r := range b.Rows {
		index[joinKey(r.Key)] = r
	}

	out := make([]model.ComparisonRow, 0, len(a.Rows))
	for _, ra := range a.Rows {
		rb, ok := index[joinKey(ra.Key)]
		if !ok {
			continue
		}
		out = append(out, compareRows(ra, rb))
	}
	return out
}

// OverallDelta 由两个周期各自的合计行计算整体差值
func OverallDelta(a, b model.MetricTable) model.ComparisonRow {
	return compareRows(a.Total, b.Total)
}

// BuildComparison 组装完整的周期对比结果
func BuildComparison(periodA, periodB string, a, b model.MetricTable) model.Comparison {
	onlyA, onlyB := unmatched(a, b), unmatched(b, a)
	return model.Comparison{
		PeriodA:   periodA,
		PeriodB:   periodB,
		Dimension: a.Dimension,
		KeyNames:  append([]string(nil), a.KeyNames...),
		Rows:      Compare(a, b),
		Overall:   OverallDelta(a, b),
		OnlyInA:   onlyA,
		OnlyInB:   onlyB,
	}
}

// unmatched 返回 x 中在 y 里找不到的分组标签
func unmatched(x, y model.MetricTable) []string {
	seen := make(map[string]bool, len(y.Rows))
	for _, r := range y.Rows {
		seen[joinKey(r.Key)] = true
	}
	out := []string{}
	for _, r := range x.Rows {
		if !seen[joinKey(r.Key)] {
			out = append(out, r.Label)
		}
	}
	return out
}

func compareRows(a, b model.MetricRow) model.ComparisonRow {
	return model.ComparisonRow{
		Key:     append([]string(nil), a.Key...),
		Label:   a.Label,
		IsTotal: a.IsTotal,
		A:       a,
		B:       b,

		DeltaValueConversion:  b.ValueConversion - a.ValueConversion,
		DeltaCountConversion:  b.CountConversion - a.CountConversion,
		DeltaAvgWarrantyPrice: b.AvgWarrantyPrice - a.AvgWarrantyPrice,

		DeltaSold:             b.SumSold - a.SumSold,
		DeltaSoldPct:          calcPct(a.SumSold, b.SumSold),
		DeltaWarranty:         b.SumWarranty - a.SumWarranty,
		DeltaWarrantyPct:      calcPct(a.SumWarranty, b.SumWarranty),
		DeltaWarrantyUnits:    b.SumWarrantyUnits - a.SumWarrantyUnits,
		DeltaWarrantyUnitsPct: calcPct(a.SumWarrantyUnits, b.SumWarrantyUnits),
	}
}
