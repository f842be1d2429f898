package core

import (
	"testing"
)

func TestClassify(t *testing.T) {
	c := NewClassifier([]string{"csv", ".XLSX"})

	tests := []struct {
		filename string
		accepted bool
		ext      string
	}{
		{"flood_zones.csv", true, "csv"},
		{"data.xlsx", true, "xlsx"},
		{"DATA.XLSX", true, "xlsx"},
		{"Report.Final.CSV", true, "csv"},
		{"report.pdf", false, ""},
		{"map.png", false, ""},
		{"archive.csv.zip", false, ""},
		{"README", false, ""},
		{"trailing.", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			switch got := c.Classify(tt.filename).(type) {
			case Accepted:
				if !tt.accepted {
					t.Fatalf("Classify(%q) accepted, want rejected", tt.filename)
				}
				if got.Extension != tt.ext {
					t.Errorf("Extension: got %q, want %q", got.Extension, tt.ext)
				}
			case Rejected:
				if tt.accepted {
					t.Fatalf("Classify(%q) rejected (%s), want accepted", tt.filename, got.Reason)
				}
				if got.Reason == "" {
					t.Error("rejection should carry a reason")
				}
			default:
				t.Fatalf("unexpected classification %T", got)
			}
		})
	}
}

func TestClassifyEmptyPermittedSet(t *testing.T) {
	c := NewClassifier(nil)
	if _, ok := c.Classify("data.csv").(Rejected); !ok {
		t.Error("empty permitted set should reject everything")
	}
}
