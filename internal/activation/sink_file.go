package activation

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileSink appends gate-decision events to a JSONL audit file, one line per
// gated request. The file is the durable trail a clinic can consult when
// asked why a note was refused or forwarded.
type FileSink struct {
	path string

	mu sync.Mutex
	f  *os.File
	w  *bufio.Writer
}

func NewFileSink(path string) (*FileSink, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("audit file path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit file: %w", err)
	}
	return &FileSink{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

func (s *FileSink) Name() string { return "audit_file:" + s.path }

// Deliver appends one event as a single JSON line and flushes, so a crash
// loses at most the event being written.
func (s *FileSink) Deliver(_ context.Context, ev *Event) error {
	if ev == nil {
		return nil
	}
	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", ev.Decision, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.w == nil {
		return errors.New("audit file sink is closed")
	}
	line = append(line, '\n')
	if _, err := s.w.Write(line); err != nil {
		return fmt.Errorf("append %s event: %w", ev.Decision, err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("flush audit file: %w", err)
	}
	return nil
}

func (s *FileSink) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var flushErr error
	if s.w != nil {
		flushErr = s.w.Flush()
		s.w = nil
	}
	if s.f != nil {
		closeErr := s.f.Close()
		s.f = nil
		if flushErr == nil {
			flushErr = closeErr
		}
	}
	return flushErr
}
