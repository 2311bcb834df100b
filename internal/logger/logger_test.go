package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gzhole/faultcorpus/internal/fault"
)

func TestFaultLogger_Log(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test_faults.jsonl")

	logger, err := New(logPath)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer func() {
		_ = logger.Close()
	}()

	event := FaultEvent{
		Timestamp: "2026-02-02T12:00:00Z",
		Fixture:   "strcpy-overflow",
		Category:  fault.OutOfBoundsWrite,
		Args:      []string{strings.Repeat("A", 100)},
		Source:    "run",
		Descriptor: &fault.Descriptor{
			Fixture:        "strcpy-overflow",
			Category:       fault.OutOfBoundsWrite,
			Threshold:      63,
			ObservedLength: 100,
		},
	}

	if err := logger.Log(event); err != nil {
		t.Fatalf("failed to log event: %v", err)
	}

	_ = logger.Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	var parsed FaultEvent
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("failed to parse log line as JSON: %v", err)
	}

	if !parsed.Faulted {
		t.Error("expected faulted event")
	}
	if parsed.Descriptor == nil || parsed.Descriptor.ObservedLength != 100 {
		t.Errorf("descriptor not preserved: %+v", parsed.Descriptor)
	}
	if parsed.Args[0] != `"A"*100` {
		t.Errorf("expected abbreviated payload, got %q", parsed.Args[0])
	}
}

func TestFaultLogger_RedactsInputs(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "faults.jsonl")

	lg, err := New(logPath)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	err = lg.Log(FaultEvent{
		Fixture: "gets-overflow",
		Stdin:   "password=correcthorsebattery\n",
		Error:   "bad input api_key=abcdefghijklmnop1234",
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	_ = lg.Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "correcthorsebattery") || strings.Contains(string(data), "abcdefghijklmnop1234") {
		t.Errorf("secret leaked into log: %s", data)
	}
	if strings.Contains(string(data), `"faulted":true`) {
		t.Error("event without descriptor marked faulted")
	}
}

func TestFaultLogger_Rotation(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "faults.jsonl")

	// Pre-create the log file already at the rotation limit.
	big := make([]byte, defaultMaxLogBytes)
	if err := os.WriteFile(logPath, big, 0600); err != nil {
		t.Fatalf("failed to seed large log file: %v", err)
	}

	lg, err := New(logPath)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = lg.Close() }()

	if err := lg.Log(FaultEvent{Fixture: "memory-leak", Category: fault.UnboundedResourceGrowth}); err != nil {
		t.Fatalf("Log after rotation failed: %v", err)
	}

	if _, err := os.Stat(logPath + ".1"); err != nil {
		t.Errorf("expected rotated file %s.1 to exist: %v", logPath, err)
	}

	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("fresh log file missing: %v", err)
	}
	if info.Size() >= defaultMaxLogBytes {
		t.Errorf("fresh log file is still %d bytes; expected < %d", info.Size(), defaultMaxLogBytes)
	}
}

func TestFaultLogger_FilePermissions(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "secure_faults.jsonl")

	logger, err := New(logPath)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	_ = logger.Close()

	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("failed to stat log file: %v", err)
	}

	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected file permissions 0600, got %04o", perm)
	}
}

func TestReadEvents(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "faults.jsonl")

	events, err := ReadEvents(logPath)
	if err != nil || events != nil {
		t.Fatalf("missing log: got %v, %v", events, err)
	}

	content := `{"fixture":"use-after-free","category":"UseAfterFree","faulted":true}
not json

{"fixture":"memory-leak","category":"UnboundedResourceGrowth","faulted":false}
`
	if err := os.WriteFile(logPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	events, err = ReadEvents(logPath)
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Category != fault.UseAfterFree || !events[0].Faulted {
		t.Errorf("unexpected first event %+v", events[0])
	}
	if events[1].Fixture != "memory-leak" {
		t.Errorf("unexpected second event %+v", events[1])
	}
}
