package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestWriterLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, InfoLevel)

	logger.Debug("hidden")
	logger.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written below level: %q", out)
	}
	if !strings.Contains(out, "[INFO] shown") {
		t.Errorf("info line missing: %q", out)
	}
}

func TestWithFieldsSortedAndMerged(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, DebugLevel).WithFields(Fields{"component": "gmm_estimator"})

	logger.Debug("iteration", Fields{"iteration": 3, "delta": 0.5})

	want := "[DEBUG] iteration component=gmm_estimator delta=0.5 iteration=3"
	if got := strings.TrimSpace(buf.String()); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, InfoLevel)

	logger.Error(errors.New("boom"), "fit failed")

	if got := strings.TrimSpace(buf.String()); got != "[ERROR] fit failed: boom" {
		t.Errorf("unexpected error line %q", got)
	}
}

func TestWithContextPicksUpFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithFields(context.Background(), Fields{"run": "a"})
	ctx = ContextWithFields(ctx, Fields{"stage": "fit"})

	NewWriterLogger(&buf, InfoLevel).WithContext(ctx).Info("start")

	if got := strings.TrimSpace(buf.String()); got != "[INFO] start run=a stage=fit" {
		t.Errorf("unexpected line %q", got)
	}
}

func TestSetGlobalLoggerNil(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(nil)
	if _, ok := GetGlobalLogger().(*NoOpLogger); !ok {
		t.Errorf("expected NoOpLogger, got %T", GetGlobalLogger())
	}
}

func TestLevelString(t *testing.T) {
	if WarnLevel.String() != "WARN" {
		t.Errorf("WarnLevel.String() = %q", WarnLevel.String())
	}
	if Level(42).String() != "UNKNOWN" {
		t.Errorf("Level(42).String() = %q", Level(42).String())
	}
}
