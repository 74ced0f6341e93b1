package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Output = &buf

	logger := New(cfg)
	logger.Info("server started", "port", "8081")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if record["msg"] != "server started" {
		t.Errorf("msg = %v, want 'server started'", record["msg"])
	}
	if record[FieldComponent] != ComponentApp {
		t.Errorf("component = %v, want %q", record[FieldComponent], ComponentApp)
	}
	if record["port"] != "8081" {
		t.Errorf("port = %v, want '8081'", record["port"])
	}
}

func TestNewTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentApp, Format: "text", Output: &buf})
	logger.Warn("disk almost full")

	out := buf.String()
	if strings.HasPrefix(out, "{") {
		t.Fatalf("text format produced JSON: %s", out)
	}
	if !strings.Contains(out, "disk almost full") {
		t.Errorf("output missing message: %s", out)
	}
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("output missing level: %s", out)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentApp, Output: &buf})

	logger.WithComponent(ComponentWorker).Info("replicated")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if record[FieldComponent] != ComponentWorker {
		t.Errorf("component = %v, want %q", record[FieldComponent], ComponentWorker)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentApp, Level: slog.LevelWarn, Output: &buf})

	logger.Debug("noise")
	logger.Info("more noise")
	if buf.Len() != 0 {
		t.Fatalf("records below Warn should be dropped: %s", buf.String())
	}

	logger.Error("actual problem")
	if buf.Len() == 0 {
		t.Fatal("Error record should be emitted")
	}
}
