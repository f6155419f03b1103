package logger

import "testing"

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("loud", "api"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	log, err := New("INFO", "api")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	_ = log.Sync()
}
