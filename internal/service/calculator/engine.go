package calculator

import "warrantyboard/internal/model"

// Aggregate 按维度分组汇总记录，派生比率并生成合计行
//
// 数据行按分组首次出现的顺序排列；合计行的比率由各组求和后重新计算。
func Aggregate(records []model.Record, dim Dimension) model.MetricTable {
	table := model.MetricTable{
		Dimension: dim.Name,
		KeyNames:  append([]string(nil), dim.KeyNames...),
		Rows:      []model.MetricRow{},
	}

	index := make(map[string]int)
	for _, rec := range records {
		rec = rec.Sanitize()
		parts := dim.Key(rec)
		k := joinKey(parts)

		i, ok := index[k]
		if !ok {
			i = len(table.Rows)
			index[k] = i
			table.Rows = append(table.Rows, model.MetricRow{
				Key:   append([]string(nil), parts...),
				Label: labelOf(parts),
			})
		}

		row := &table.Rows[i]
		row.SumSold += rec.TotalSoldAmount
		row.SumWarranty += rec.WarrantyAmount
		row.SumUnits += rec.TotalUnitCount
		row.SumWarrantyUnits += rec.WarrantyUnitCount
	}

	for i := range table.Rows {
		deriveRatios(&table.Rows[i])
	}
	table.Total = totalOf(table.Rows)

	return table
}

// totalOf 对各组求和生成合计行
func totalOf(rows []model.MetricRow) model.MetricRow {
	total := model.MetricRow{
		Key:     []string{model.TotalLabel},
		Label:   model.TotalLabel,
		IsTotal: true,
	}
	for _, r := range rows {
		total.SumSold += r.SumSold
		total.SumWarranty += r.SumWarranty
		total.SumUnits += r.SumUnits
		total.SumWarrantyUnits += r.SumWarrantyUnits
	}
	deriveRatios(&total)
	return total
}

// deriveRatios 由原始汇总值派生比率
func deriveRatios(r *model.MetricRow) {
	r.CountConversion = calcRatio(r.SumWarrantyUnits, r.SumUnits) * 100
	r.ValueConversion = calcRatio(r.SumWarranty, r.SumSold) * 100
	r.AvgWarrantyPrice = calcRatio(r.SumWarranty, r.SumWarrantyUnits)
}

// calcRatio 安全除法，分母为 0 时返回 0
func calcRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// calcPct 相对 base 的变化百分比，base 为 0 时返回 0
func calcPct(base, next float64) float64 {
	if base == 0 {
		return 0
	}
	return (next - base) / base * 100
}
