package sheets

import (
	"io"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"

	"warrantyboard/internal/model"
	"warrantyboard/internal/parser"
)

func TestSheetRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Jan", "'Jan'"},
		{"Jan 2024", "'Jan 2024'"},
		{"Q1's data", "'Q1''s data'"},
	}
	for _, tt := range tests {
		if got := sheetRange(tt.in); got != tt.want {
			t.Errorf("sheetRange(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToStrings(t *testing.T) {
	t.Parallel()

	got := toStrings([]interface{}{" Store A ", 1500, 12.5, nil})
	want := []string{"Store A", "1500", "12.5", "<nil>"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("toStrings = %v, want %v", got, want)
	}
}

func TestHeaderRange(t *testing.T) {
	t.Parallel()

	if got := headerRange("Q1's data"); got != "'Q1''s data'!1:1" {
		t.Fatalf("headerRange = %q", got)
	}
}

func TestPeriodInfos(t *testing.T) {
	t.Parallel()

	log := logrus.New()
	log.SetOutput(io.Discard)
	c := &Client{recognizer: parser.NewSheetRecognizer(), log: log}

	periodHeader := []string{"Item Category", "BDM", "RBM", "Store Name", "Staff Name", "Total Sold Amount", "Warranty Amount", "Total Unit Count", "Warranty Unit Count"}
	names := []string{"Summary", "Jan 2025", "Notes", " Jan  2025", "Feb 2025"}
	headers := [][]string{
		{"Store", "Value Conv"},
		periodHeader,
		nil,
		periodHeader,
		periodHeader,
	}

	got := c.periodInfos(names, headers)
	want := []model.PeriodInfo{
		{Name: "Jan 2025", Source: Source},
		{Name: "Feb 2025", Source: Source},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("periodInfos = %+v, want %+v", got, want)
	}

	// 表头缺失的 Sheet 被跳过
	if got := c.periodInfos([]string{"Mar"}, nil); len(got) != 0 {
		t.Fatalf("sheet without header should be skipped, got %+v", got)
	}
}

func TestReadCredentialsInline(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	data, err := readCredentials(Options{CredentialsJSON: `{"type":"service_account"}`})
	if err != nil {
		t.Fatalf("readCredentials failed: %v", err)
	}
	if string(data) != `{"type":"service_account"}` {
		t.Fatalf("unexpected credentials: %s", data)
	}

	if _, err := readCredentials(Options{}); err == nil {
		t.Fatalf("expected error without credentials")
	}
}
