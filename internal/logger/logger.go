package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/gzhole/faultcorpus/internal/fault"
	"github.com/gzhole/faultcorpus/internal/redact"
)

// The log is rotated to <path>.1 once it reaches this size.
const defaultMaxLogBytes = 10 << 20

// FaultEvent is one line of the fault log: a single fixture invocation
// and what it reported.
type FaultEvent struct {
	Timestamp  string            `json:"timestamp"`
	Fixture    string            `json:"fixture"`
	Category   fault.Category    `json:"category"`
	Args       []string          `json:"args,omitempty"`
	Stdin      string            `json:"stdin,omitempty"`
	Faulted    bool              `json:"faulted"`
	Descriptor *fault.Descriptor `json:"descriptor,omitempty"`
	Source     string            `json:"source,omitempty"` // entry, run or verify
	Error      string            `json:"error,omitempty"`
}

type FaultLogger struct {
	path string
	file *os.File
	mu   sync.Mutex
}

func New(path string) (*FaultLogger, error) {
	if err := rotate(path); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	return &FaultLogger{path: path, file: file}, nil
}

func rotate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.Size() < defaultMaxLogBytes {
		return nil
	}
	return os.Rename(path, path+".1")
}

func (l *FaultLogger) Log(event FaultEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Payloads are abbreviated and scrubbed of anything that looks like a credential.
	event.Args = redact.Args(event.Args)
	event.Stdin = redact.Input(event.Stdin)
	if event.Error != "" {
		event.Error = redact.Redact(event.Error)
	}
	event.Faulted = event.Descriptor != nil

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	data = append(data, '\n')
	_, err = l.file.Write(data)
	return err
}

func (l *FaultLogger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// ReadEvents returns every well-formed event in the log at path, oldest
// first. A missing log reads as empty.
func ReadEvents(path string) ([]FaultEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var events []FaultEvent
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		var event FaultEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue // skip malformed lines
		}
		events = append(events, event)
	}
	return events, scanner.Err()
}
