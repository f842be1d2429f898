package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func samplePlan() planOutput {
	return planOutput{
		Source:      "msg.eml",
		Digest:      "abc",
		ProcessedOn: "2024-03-15",
		Writes: []plannedObject{
			{Bucket: "attachments", Key: "current/flood_zones.csv", Size: 10, ContentType: "text/csv"},
			{Bucket: "attachments", Key: "archive/2024-03-15/flood_zones.csv", Size: 10, ContentType: "text/csv"},
		},
		Skipped: []skippedAttachment{{Filename: "map.png", Reason: "unsupported extension: png"}},
	}
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, "yaml", samplePlan()); err != nil {
		t.Fatalf("render() error = %v", err)
	}

	var got planOutput
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, buf.String())
	}
	if len(got.Writes) != 2 || got.Writes[1].Key != "archive/2024-03-15/flood_zones.csv" {
		t.Errorf("writes: got %+v", got.Writes)
	}
	if strings.Contains(buf.String(), "rejected") {
		t.Error("empty rejected field should be omitted")
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, "json", samplePlan()); err != nil {
		t.Fatalf("render() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got["processed_on"] != "2024-03-15" {
		t.Errorf("processed_on: got %v", got["processed_on"])
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	if err := render(&bytes.Buffer{}, "xml", samplePlan()); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestProcessingDate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		layout  string
		want    string
		wantErr bool
	}{
		{name: "default layout", value: "2024-03-15", layout: "2006-01-02", want: "2024-03-15"},
		{name: "configured layout", value: "2024/03/15", layout: "2006/01/02", want: "2024/03/15"},
		{name: "compact layout", value: "20240315", layout: "20060102", want: "20240315"},
		{name: "value does not match layout", value: "2024-03-15", layout: "2006/01/02", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := processingDate(tt.value, tt.layout, time.UTC)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("processingDate() error = %v", err)
			}
			if got.Format(tt.layout) != tt.want {
				t.Errorf("got %s, want %s", got.Format(tt.layout), tt.want)
			}
		})
	}
}

func TestProcessingDateDefaultsToToday(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	got, err := processingDate("", "2006-01-02", loc)
	if err != nil {
		t.Fatalf("processingDate() error = %v", err)
	}
	if got.Location() != loc {
		t.Errorf("location: got %v", got.Location())
	}
}
