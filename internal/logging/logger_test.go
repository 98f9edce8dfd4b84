package logging

import (
	"testing"

	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	l, err := New("production", "warn")
	if err != nil {
		t.Fatalf("production logger: %v", err)
	}
	if l.Core().Enabled(zap.InfoLevel) || !l.Core().Enabled(zap.WarnLevel) {
		t.Fatalf("warn level not applied")
	}

	l, err = New("development", "")
	if err != nil {
		t.Fatalf("development logger: %v", err)
	}
	if !l.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("development logger should log debug")
	}

	if _, err := New("production", "loud"); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}
