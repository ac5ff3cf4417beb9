package parser

import "testing"

var fullHeaders = []string{
	"Item Category", "BDM", "RBM", "Store Name", "Staff Name",
	"Total Sold Amount", "Warranty Amount", "Total Unit Count", "Warranty Unit Count",
}

func TestSheetRecognizer(t *testing.T) {
	t.Parallel()

	r := NewSheetRecognizer()

	tests := []struct {
		name    string
		sheet   string
		headers []string
		want    SheetType
	}{
		{"完整明细表", "Jan 2025", fullHeaders, SheetTypePeriod},
		{"别名表头", "Feb", []string{"Product", "Store", "Salesman", "Total Sales", "EW Amount", "Qty", "EW Qty"}, SheetTypePeriod},
		{"字段不足", "Notes", []string{"Store", "Remarks"}, SheetTypeUnknown},
		{"汇总页", "Summary", []string{"Store", "Total Sales", "EW Amount", "Qty", "EW Qty"}, SheetTypeSummary},
		{"汇总名但字段齐全", "KPI Jan", fullHeaders, SheetTypePeriod},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := r.Recognize(tt.sheet, tt.headers)
			if res.SheetType != tt.want {
				t.Fatalf("sheet %q want=%s got=%s (confidence %.2f)", tt.sheet, tt.want, res.SheetType, res.Confidence)
			}
			if tt.want == SheetTypePeriod && res.Period != PeriodFromSheetName(tt.sheet) {
				t.Fatalf("unexpected period: %q", res.Period)
			}
		})
	}
}

func TestFieldMapperFirstColumnWins(t *testing.T) {
	t.Parallel()

	m := NewFieldMapper().Map([]string{"Store", "Store Name", "Qty"})
	if m[FieldStore].ColumnIndex != 0 {
		t.Fatalf("first store column should win: %+v", m[FieldStore])
	}
	if m[FieldTotalUnitCount].ColumnIndex != 2 {
		t.Fatalf("qty should map to total units: %+v", m[FieldTotalUnitCount])
	}
	if missing := Missing(m); len(missing) != 7 {
		t.Fatalf("expected 7 missing fields, got %v", missing)
	}
}
