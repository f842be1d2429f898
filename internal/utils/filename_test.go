package utils

import (
	"testing"

	"go.uber.org/zap"
)

func TestNormalize(t *testing.T) {
	n := NewFilenameNormalizer(zap.NewNop())

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "flood_zones.csv", "flood_zones.csv"},
		{"posix path", "../../etc/flood_zones.csv", "flood_zones.csv"},
		{"windows path", `C:\Users\ops\Desktop\data.xlsx`, "data.xlsx"},
		{"whitespace", "  data.csv \t", "data.csv"},
		{"control characters", "da\x00ta\r\n.csv", "data.csv"},
		{"decomposed unicode", "cafe\u0301.csv", "caf\u00e9.csv"},
		{"dot", ".", ""},
		{"dot dot", "reports/..", ""},
		{"trailing slash", "reports/", ""},
		{"invalid utf8", "data\xff.csv", "data.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeNilLogger(t *testing.T) {
	n := NewFilenameNormalizer(nil)
	if got := n.Normalize("a/b.csv"); got != "b.csv" {
		t.Errorf("got %q", got)
	}
}
