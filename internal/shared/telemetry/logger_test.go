package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestInfoWritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Info("draft.saved", map[string]any{"user_id": "u-1", "err": errors.New("boom")})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["level"] != "info" || entry["msg"] != "draft.saved" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["user_id"] != "u-1" {
		t.Fatalf("expected user_id field, got %v", entry["user_id"])
	}
	if entry["err"] != "boom" {
		t.Fatalf("expected error rendered as string, got %v", entry["err"])
	}
}

func TestReservedKeysWin(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Warn("real", map[string]any{"msg": "spoofed", "level": "debug"})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["msg"] != "real" || entry["level"] != "warn" {
		t.Fatalf("reserved keys overwritten: %v", entry)
	}
}
