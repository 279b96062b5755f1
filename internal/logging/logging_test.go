package logging

import "testing"

func TestNewBuildsWithoutError(t *testing.T) {
	l, err := New(false, "")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	l.Info("hello %s", "world")
	l.Debug("should be suppressed at info level")
}

func TestNewDebugEnabled(t *testing.T) {
	l, err := New(true, "")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	l.Debug("debug message")
}

func TestNop(t *testing.T) {
	var l Logger = Nop{}
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
}
