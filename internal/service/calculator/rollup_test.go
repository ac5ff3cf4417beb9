package calculator

import (
	"reflect"
	"testing"

	"warrantyboard/internal/model"
)

func createTestBatches() []model.PeriodBatch {
	return []model.PeriodBatch{
		{Name: "Jan", Records: []model.Record{
			{Store: "A", TotalSoldAmount: 150000, WarrantyAmount: 3000, TotalUnitCount: 10, WarrantyUnitCount: 2},
			{Store: "B", TotalSoldAmount: 2500, WarrantyAmount: 100, TotalUnitCount: 4, WarrantyUnitCount: 1},
		}},
		{Name: "Feb", Records: []model.Record{
			{Store: "B", TotalSoldAmount: 20000000, WarrantyAmount: 50000, TotalUnitCount: 40, WarrantyUnitCount: 10},
			{Store: "C", TotalSoldAmount: 999, WarrantyAmount: 0, TotalUnitCount: 1, WarrantyUnitCount: 0},
		}},
		{Name: "Mar", Records: []model.Record{
			{Store: "A", TotalSoldAmount: 1000, WarrantyAmount: 10, TotalUnitCount: 1, WarrantyUnitCount: 1},
		}},
	}
}

func TestCombine(t *testing.T) {
	t.Parallel()

	batches := createTestBatches()

	all := Combine(batches, model.Selection{All: true})
	if len(all) != 5 {
		t.Fatalf("expected 5 records, got %d", len(all))
	}
	var periods []string
	for _, r := range all {
		periods = append(periods, r.Period)
	}
	if want := []string{"Jan", "Jan", "Feb", "Feb", "Mar"}; !reflect.DeepEqual(periods, want) {
		t.Fatalf("period tags want=%v got=%v", want, periods)
	}

	// 选择顺序优先，重复与不存在的周期被忽略
	some := Combine(batches, model.Selection{Names: []string{"Mar", "Jan", "Mar", "Dec"}})
	periods = periods[:0]
	for _, r := range some {
		periods = append(periods, r.Period)
	}
	if want := []string{"Mar", "Jan", "Jan"}; !reflect.DeepEqual(periods, want) {
		t.Fatalf("selected periods want=%v got=%v", want, periods)
	}

	if batches[0].Records[0].Period != "" {
		t.Fatalf("input records should not be mutated")
	}
}

// TestCombineAggregateRoundTrip 合并后的合计等于各周期合计之和
func TestCombineAggregateRoundTrip(t *testing.T) {
	t.Parallel()

	batches := createTestBatches()
	dim := mustDimension(t, DimensionStore)

	combined := Aggregate(Combine(batches, model.Selection{All: true}), dim)

	var sold, warranty float64
	for _, b := range batches {
		tot := Aggregate(b.Records, dim).Total
		sold += tot.SumSold
		warranty += tot.SumWarranty
	}
	if !floatEquals(combined.Total.SumSold, sold) || !floatEquals(combined.Total.SumWarranty, warranty) {
		t.Fatalf("combined total mismatch: %+v", combined.Total)
	}

	byPeriod := Aggregate(Combine(batches, model.Selection{All: true}), mustDimension(t, DimensionPeriod))
	if want := []string{"Jan", "Feb", "Mar"}; !reflect.DeepEqual(labelsOf(byPeriod.Rows), want) {
		t.Fatalf("period rows want=%v got=%v", want, labelsOf(byPeriod.Rows))
	}
}

func TestPivotByPeriod(t *testing.T) {
	t.Parallel()

	pivot := PivotByPeriod(createTestBatches(), mustDimension(t, DimensionStore), model.FieldSumSold)

	if want := []string{"Jan", "Feb", "Mar"}; !reflect.DeepEqual(pivot.Periods, want) {
		t.Fatalf("periods want=%v got=%v", want, pivot.Periods)
	}
	if pivot.Tag != model.TagCurrency {
		t.Fatalf("sumSold should be tagged currency, got %s", pivot.Tag)
	}

	var labels []string
	for _, r := range pivot.Rows {
		labels = append(labels, r.Label)
	}
	if want := []string{"A", "B", "C"}; !reflect.DeepEqual(labels, want) {
		t.Fatalf("rows want=%v got=%v", want, labels)
	}

	a := pivot.Rows[0]
	if a.Cells[0].Text != "1.50 L" || !a.Cells[0].Present {
		t.Fatalf("A/Jan unexpected cell: %+v", a.Cells[0])
	}
	if a.Cells[1].Present || a.Cells[1].Value != 0 || a.Cells[1].Text != "" {
		t.Fatalf("A/Feb should be absent: %+v", a.Cells[1])
	}
	if a.Cells[2].Text != "1.0 K" {
		t.Fatalf("A/Mar want=1.0 K got=%s", a.Cells[2].Text)
	}
	if b := pivot.Rows[1]; b.Cells[1].Text != "2.00 Cr" {
		t.Fatalf("B/Feb want=2.00 Cr got=%s", b.Cells[1].Text)
	}
	if c := pivot.Rows[2]; c.Cells[1].Text != "999" {
		t.Fatalf("C/Feb want=999 got=%s", c.Cells[1].Text)
	}

	total := pivot.Total
	if !total.IsTotal || len(total.Cells) != 3 {
		t.Fatalf("unexpected total row: %+v", total)
	}
	if !floatEquals(total.Cells[0].Value, 152500) || total.Cells[0].Text != "1.53 L" {
		t.Fatalf("Jan total unexpected: %+v", total.Cells[0])
	}
	if !floatEquals(total.Cells[1].Value, 20000999) {
		t.Fatalf("Feb total unexpected: %+v", total.Cells[1])
	}
}

// TestPivotByPeriodDimension 按周期维度透视时每个周期各占一行
func TestPivotByPeriodDimension(t *testing.T) {
	t.Parallel()

	batches := createTestBatches()[:2]
	pivot := PivotByPeriod(batches, mustDimension(t, DimensionPeriod), model.FieldSumSold)

	var labels []string
	for _, r := range pivot.Rows {
		labels = append(labels, r.Label)
	}
	if want := []string{"Jan", "Feb"}; !reflect.DeepEqual(labels, want) {
		t.Fatalf("rows want=%v got=%v", want, labels)
	}

	jan, feb := pivot.Rows[0], pivot.Rows[1]
	if !jan.Cells[0].Present || !floatEquals(jan.Cells[0].Value, 152500) || jan.Cells[1].Present {
		t.Fatalf("Jan row unexpected: %+v", jan.Cells)
	}
	if feb.Cells[0].Present || !feb.Cells[1].Present || !floatEquals(feb.Cells[1].Value, 20000999) {
		t.Fatalf("Feb row unexpected: %+v", feb.Cells)
	}
	if feb.Cells[0].Text != "" {
		t.Fatalf("absent cell should have empty text, got %q", feb.Cells[0].Text)
	}

	if batches[0].Records[0].Period != "" {
		t.Fatalf("input records should not be mutated")
	}
}

// TestPivotRatioTotal 比率透视的合计取周期合计比率
func TestPivotRatioTotal(t *testing.T) {
	t.Parallel()

	pivot := PivotByPeriod(createTestBatches()[:1], mustDimension(t, DimensionStore), model.FieldValueConversion)

	// Jan: 3100 / 152500
	want := 3100.0 / 152500.0 * 100
	if !floatEquals(pivot.Total.Cells[0].Value, want) {
		t.Fatalf("ratio total want=%v got=%v", want, pivot.Total.Cells[0].Value)
	}
	if pivot.Rows[0].Cells[0].Text != "2.00%" {
		t.Fatalf("A/Jan want=2.00%% got=%s", pivot.Rows[0].Cells[0].Text)
	}
}
