package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	dest := cfg.GetDestination()
	if dest.CurrentPrefix != "current" {
		t.Errorf("CurrentPrefix: got %q, want %q", dest.CurrentPrefix, "current")
	}
	if dest.ArchivePrefix != "archive" {
		t.Errorf("ArchivePrefix: got %q, want %q", dest.ArchivePrefix, "archive")
	}

	routing := cfg.GetRouting()
	if !reflect.DeepEqual(routing.Extensions, []string{"csv", "xlsx"}) {
		t.Errorf("Extensions: got %v, want [csv xlsx]", routing.Extensions)
	}
	if routing.DateFormat != "2006-01-02" {
		t.Errorf("DateFormat: got %q", routing.DateFormat)
	}

	if cfg.GetLedger().Enabled {
		t.Error("ledger should be disabled by default")
	}
	if cfg.GetVerification().Enabled {
		t.Error("verification should be disabled by default")
	}
}

func TestDestinationBucketFallsBackToSource(t *testing.T) {
	v := NewEmptyViper()
	v.Set("source.bucket", "inbound")
	cfg := NewFromViper(v)

	if got := cfg.GetDestination().Bucket; got != "inbound" {
		t.Errorf("Bucket: got %q, want %q", got, "inbound")
	}

	v.Set("destination.bucket", "outbound")
	if got := cfg.GetDestination().Bucket; got != "outbound" {
		t.Errorf("Bucket: got %q, want %q", got, "outbound")
	}
}

func TestRoutingExtensionsNormalised(t *testing.T) {
	v := NewEmptyViper()
	v.Set("routing.extensions", []string{" .CSV", "Xlsx", "", "tsv"})
	cfg := NewFromViper(v)

	want := []string{"csv", "xlsx", "tsv"}
	if got := cfg.GetRouting().Extensions; !reflect.DeepEqual(got, want) {
		t.Errorf("Extensions: got %v, want %v", got, want)
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
source:
  bucket: emergency-mgmt-recd-data
  prefix: emails-received/
destination:
  current_prefix: attachments/current
verification:
  enabled: true
  headers:
    X-SES-Spam-Verdict: PASS
    Received-SPF: pass
ledger:
  enabled: true
  type: sqlite
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := NewFromFile(path)
	if err != nil {
		t.Fatalf("NewFromFile() error = %v", err)
	}

	if got := cfg.GetSource().Bucket; got != "emergency-mgmt-recd-data" {
		t.Errorf("source bucket: got %q", got)
	}
	if got := cfg.GetDestination().CurrentPrefix; got != "attachments/current" {
		t.Errorf("current prefix: got %q", got)
	}
	if got := cfg.GetDestination().ArchivePrefix; got != "archive" {
		t.Errorf("archive prefix default: got %q", got)
	}

	verification := cfg.GetVerification()
	if !verification.Enabled {
		t.Error("verification should be enabled")
	}
	// Viper lower-cases map keys.
	if got := verification.Headers["x-ses-spam-verdict"]; got != "PASS" {
		t.Errorf("spam verdict header: got %q", got)
	}

	ledger := cfg.GetLedger()
	if !ledger.Enabled || ledger.Type != "sqlite" {
		t.Errorf("ledger: got %+v", ledger)
	}
}

func TestNewFromFileMissing(t *testing.T) {
	if _, err := NewFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestSampleConfigVerification(t *testing.T) {
	cfg, err := NewFromFile(filepath.Join("..", "..", "configs", "config.yaml"))
	if err != nil {
		t.Fatalf("NewFromFile() error = %v", err)
	}

	headers := cfg.GetVerification().Headers
	want := map[string]string{
		"x-ses-spam-verdict":  "PASS",
		"x-ses-virus-verdict": "PASS",
		"received-spf":        "pass",
		"x-originatororg":     "austintexas.gov",
	}
	for header, expected := range want {
		if got := headers[header]; got != expected {
			t.Errorf("%s: got %q, want %q", header, got, expected)
		}
	}
}
