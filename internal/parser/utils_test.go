package parser

import "testing"

func TestNormalizeColumnName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		" Total Sold Amount ": "totalsoldamount",
		"Warranty_Unit_Count": "warrantyunitcount",
		"Store\nName":         "storename",
		"EW Qty.":             "ewqty",
	}
	for in, want := range cases {
		if got := NormalizeColumnName(in); got != want {
			t.Fatalf("NormalizeColumnName(%q) want=%q got=%q", in, want, got)
		}
	}
}

func TestIsTotalLabel(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"Total", "GRAND TOTAL", "Sub-Total"} {
		if !IsTotalLabel(s) {
			t.Fatalf("%q should be a total label", s)
		}
	}
	if IsTotalLabel("Totally Electronics") {
		t.Fatalf("store names starting with Total are not total rows")
	}
}

func TestPeriodFromSheetName(t *testing.T) {
	t.Parallel()

	if got := PeriodFromSheetName("  Jan   2025 "); got != "Jan 2025" {
		t.Fatalf("unexpected period: %q", got)
	}
}
