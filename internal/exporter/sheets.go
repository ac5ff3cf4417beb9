package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"warrantyboard/internal/model"
)

type cell struct {
	value interface{}
	style int
}

func writeRow(f *excelize.File, sheet string, row int, cells []cell) error {
	for i, c := range cells {
		name, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if c.value != nil {
			if err := setCellValue(f, sheet, name, c.value); err != nil {
				return err
			}
		}
		if c.style != 0 {
			if err := f.SetCellStyle(sheet, name, name, c.style); err != nil {
				return err
			}
		}
	}
	return nil
}

func headerRow(st *styles, titles ...string) []cell {
	out := make([]cell, len(titles))
	for i, t := range titles {
		out[i] = cell{value: t, style: st.header}
	}
	return out
}

// keyCells 分组键单元格，合计行只在第一列写 Total
func keyCells(st *styles, keyNames, key []string, total bool) []cell {
	n := len(keyNames)
	if n == 0 {
		n = 1
	}
	out := make([]cell, n)
	for i := range out {
		out[i].style = st.textStyle(total)
	}
	if total {
		out[0].value = model.TotalLabel
		return out
	}
	for i := 0; i < n && i < len(key); i++ {
		out[i].value = key[i]
	}
	return out
}

func keyTitles(keyNames []string) []string {
	if len(keyNames) == 0 {
		return []string{"Group"}
	}
	return append([]string(nil), keyNames...)
}

func writeMetricSheet(f *excelize.File, st *styles, sheet string, table model.MetricTable) error {
	fields := model.MetricFields()

	titles := keyTitles(table.KeyNames)
	for _, fd := range fields {
		titles = append(titles, fd.Label())
	}
	if err := writeRow(f, sheet, 1, headerRow(st, titles...)); err != nil {
		return err
	}

	for i, r := range table.AllRows() {
		cells := keyCells(st, table.KeyNames, r.Key, r.IsTotal)
		for _, fd := range fields {
			cells = append(cells, cell{value: r.Value(fd), style: st.valueStyle(fd.Tag(), r.IsTotal)})
		}
		if err := writeRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	return freezeHeader(f, sheet)
}

func writeEvaluationSheet(f *excelize.File, st *styles, sheet string, ev model.Evaluation) error {
	if err := writeRow(f, sheet, 1, headerRow(st, "Group", "Metric", "Value", "Target", "Direction", "Status", "Achievement")); err != nil {
		return err
	}

	row := 2
	rows := append(append([]model.RowEvaluation(nil), ev.Rows...), ev.Total)
	for _, r := range rows {
		for _, m := range r.Metrics {
			tag := m.Field.Tag()
			cells := []cell{
				{value: r.Label, style: st.textStyle(r.IsTotal)},
				{value: m.Field.Label(), style: st.textStyle(r.IsTotal)},
				{value: m.Value, style: st.valueStyle(tag, r.IsTotal)},
				{value: m.Target, style: st.valueStyle(tag, r.IsTotal)},
				{value: string(m.Direction), style: st.textStyle(r.IsTotal)},
				{value: string(m.Status), style: st.textStyle(r.IsTotal)},
				{value: m.Achievement, style: st.valueStyle(model.TagPercentage, r.IsTotal)},
			}
			if err := writeRow(f, sheet, row, cells); err != nil {
				return err
			}
			row++
		}
	}

	row++
	summary := [][]cell{
		{{value: "Exceeds", style: st.bold}, {value: ev.Summary.Exceeds, style: st.byTag[model.TagCount]}},
		{{value: "Below", style: st.bold}, {value: ev.Summary.Below, style: st.byTag[model.TagCount]}},
		{{value: "Neutral", style: st.bold}, {value: ev.Summary.Neutral, style: st.byTag[model.TagCount]}},
		{{value: "Achievement", style: st.bold}, {value: ev.Summary.Achievement, style: st.byTag[model.TagPercentage]}},
	}
	for _, cells := range summary {
		if err := writeRow(f, sheet, row, cells); err != nil {
			return err
		}
		row++
	}
	return freezeHeader(f, sheet)
}

// comparisonColumn 对比表的一列
type comparisonColumn struct {
	title string
	tag   model.FieldTag
	value func(model.ComparisonRow) float64
}

func comparisonColumns(periodA, periodB string) []comparisonColumn {
	var cols []comparisonColumn
	for _, fd := range []model.MetricField{
		model.FieldSumSold,
		model.FieldSumWarranty,
		model.FieldSumWarrantyUnits,
		model.FieldValueConversion,
		model.FieldCountConversion,
		model.FieldAvgWarrantyPrice,
	} {
		cols = append(cols,
			comparisonColumn{fmt.Sprintf("%s (%s)", fd.Label(), periodA), fd.Tag(), func(r model.ComparisonRow) float64 { return r.A.Value(fd) }},
			comparisonColumn{fmt.Sprintf("%s (%s)", fd.Label(), periodB), fd.Tag(), func(r model.ComparisonRow) float64 { return r.B.Value(fd) }},
		)
	}
	return append(cols,
		comparisonColumn{"Δ Value Conversion", model.TagPercentage, func(r model.ComparisonRow) float64 { return r.DeltaValueConversion }},
		comparisonColumn{"Δ Count Conversion", model.TagPercentage, func(r model.ComparisonRow) float64 { return r.DeltaCountConversion }},
		comparisonColumn{"Δ Avg Warranty Price", model.TagCurrency, func(r model.ComparisonRow) float64 { return r.DeltaAvgWarrantyPrice }},
		comparisonColumn{"Δ Sold", model.TagCurrency, func(r model.ComparisonRow) float64 { return r.DeltaSold }},
		comparisonColumn{"Δ Sold %", model.TagPercentage, func(r model.ComparisonRow) float64 { return r.DeltaSoldPct }},
		comparisonColumn{"Δ Warranty", model.TagCurrency, func(r model.ComparisonRow) float64 { return r.DeltaWarranty }},
		comparisonColumn{"Δ Warranty %", model.TagPercentage, func(r model.ComparisonRow) float64 { return r.DeltaWarrantyPct }},
		comparisonColumn{"Δ Warranty Units", model.TagCount, func(r model.ComparisonRow) float64 { return r.DeltaWarrantyUnits }},
		comparisonColumn{"Δ Warranty Units %", model.TagPercentage, func(r model.ComparisonRow) float64 { return r.DeltaWarrantyUnitsPct }},
	)
}

func writeComparisonSheet(f *excelize.File, st *styles, sheet string, cmp model.Comparison) error {
	cols := comparisonColumns(cmp.PeriodA, cmp.PeriodB)
	titles := keyTitles(cmp.KeyNames)
	for _, c := range cols {
		titles = append(titles, c.title)
	}
	if err := writeRow(f, sheet, 1, headerRow(st, titles...)); err != nil {
		return err
	}

	rows := append(append([]model.ComparisonRow(nil), cmp.Rows...), cmp.Overall)
	for i, r := range rows {
		cells := keyCells(st, cmp.KeyNames, r.Key, r.IsTotal)
		for _, c := range cols {
			cells = append(cells, cell{value: c.value(r), style: st.valueStyle(c.tag, r.IsTotal)})
		}
		if err := writeRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	return freezeHeader(f, sheet)
}

func writePivotSheet(f *excelize.File, st *styles, sheet string, pv model.PivotTable) error {
	titles := keyTitles(pv.KeyNames)
	titles = append(titles, pv.Periods...)
	if err := writeRow(f, sheet, 1, headerRow(st, titles...)); err != nil {
		return err
	}

	rows := append(append([]model.PivotRow(nil), pv.Rows...), pv.Total)
	for i, r := range rows {
		cells := keyCells(st, pv.KeyNames, r.Key, r.IsTotal)
		for _, c := range r.Cells {
			// 缺失的周期留空
			var v interface{}
			if c.Present {
				v = c.Value
			}
			cells = append(cells, cell{value: v, style: st.valueStyle(pv.Tag, r.IsTotal)})
		}
		if err := writeRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	return freezeHeader(f, sheet)
}

func freezeHeader(f *excelize.File, sheet string) error {
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
