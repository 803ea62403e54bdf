package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/YuminosukeSato/kernreg/pkg/errors"
)

func TestTestLogger(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationPredict)
	testLogger.Warn("warning message")
	testLogger.Error("error message", fmt.Errorf("cache write failed"), ErrorCodeKey, ErrorDuplicateKey)

	if buffer.Len() == 0 {
		t.Fatal("Expected log output, got empty string")
	}

	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		if !testLogger.ContainsMessage(msg) {
			t.Errorf("%q not found in output", msg)
		}
	}

	if !testLogger.ContainsField("number", 42.0) {
		t.Error("Expected field number=42 not found")
	}
	if !testLogger.ContainsField(ErrAttrKey, "cache write failed") {
		t.Error("Expected leading error to be stored under ErrAttrKey")
	}
	if !testLogger.ContainsField(ErrorCodeKey, ErrorDuplicateKey) {
		t.Error("Expected error code field")
	}
}

func TestTestLoggerWithAndLevels(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)

	contextLogger := testLogger.With(
		ModelNameKey, "KNearestNeighbors",
		ComponentKey, "neighbors",
	)
	contextLogger.Info("prediction", QueryIndexKey, 3)
	contextLogger.Debug("should be filtered")

	if !testLogger.ContainsField(ModelNameKey, "KNearestNeighbors") {
		t.Error("Model name context not found")
	}
	if !testLogger.ContainsField(QueryIndexKey, 3.0) {
		t.Error("Query index field not found")
	}
	if testLogger.ContainsMessage("should be filtered") {
		t.Error("Debug message should not appear when level is Info")
	}

	ctx := context.Background()
	if testLogger.Enabled(ctx, LevelDebug) || !testLogger.Enabled(ctx, LevelError) {
		t.Error("Enabled() does not respect the configured level")
	}
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	logger.With(ComponentKey, "optimize").Info("epoch finished", EpochKey, 3, LossKey, 0.25)
	logger.Debug("filtered")

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("output is not a single JSON line: %v\n%s", err, buf.String())
	}
	if entry["message"] != "epoch finished" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry[ComponentKey] != "optimize" || entry[EpochKey] != 3.0 {
		t.Errorf("missing structured fields: %v", entry)
	}
	if strings.Contains(buf.String(), "filtered") {
		t.Error("debug output should be filtered at info level")
	}

	if logger.Enabled(context.Background(), LevelDebug) {
		t.Error("Enabled(LevelDebug) should be false")
	}
}

func TestZerologLoggerErrorDetails(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug)

	logger.Error("merge failed", errors.NewDuplicateKeyError("Cache.LoadAppend", 5, 2), CachePathKey, "nn.csv")

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	details, ok := entry["details"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected structured details, got %v", entry)
	}
	if details["type"] != "DuplicateKeyError" || details["key"] != 5.0 {
		t.Errorf("unexpected details: %v", details)
	}
	if entry[CachePathKey] != "nn.csv" {
		t.Errorf("missing path field: %v", entry)
	}
}

func TestZerologWarningHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug)
	logger.InstallWarningHandler()
	defer errors.SetZerologWarnFunc(nil)

	errors.Warn(errors.NewConvergenceWarning("TuneBandwidth", 12, "optimum at search boundary"))

	if !strings.Contains(buf.String(), `"algorithm":"TuneBandwidth"`) {
		t.Errorf("warning not routed through zerolog: %s", buf.String())
	}
}

func TestSetupLoggerWithWriter(t *testing.T) {
	previous := GetLogger()
	defer SetLogger(previous)
	defer errors.SetZerologWarnFunc(nil)

	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, LevelInfo)

	slog.Error("slog record", ErrAttr(errors.New("with stack")))
	GetLogger().Info("library record")

	out := buf.String()
	if !strings.Contains(out, `"severity":"ERROR"`) {
		t.Errorf("slog level key not renamed: %s", out)
	}
	if !strings.Contains(out, "library record") {
		t.Errorf("library logger not redirected: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
