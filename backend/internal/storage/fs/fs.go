// Package fs is the local fallback store: a single named JSON slot on disk
// holding the submissions that could not reach the remote store.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/deskfolio/deskfolio/shared/domain"
	"github.com/deskfolio/deskfolio/shared/logger"
)

// record is the on-disk shape of one entry of the slot.
type record struct {
	Id          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Name        string `json:"name"`
	Message     string `json:"message"`
	DisplayDate string `json:"displayDate"`
}

type corruptSlotError struct {
	path string
	err  error
}

func (e *corruptSlotError) Error() string {
	return fmt.Sprintf("fallback slot %s is not a json array: %s", e.path, e.err)
}

func (e *corruptSlotError) Unwrap() error { return e.err }

type Storage struct {
	path string
	loc  *time.Location
	mu   sync.Mutex
}

// New returns a store writing to <dir>/<slot>.json. The directory is created
// if missing; the file itself appears on first write.
func New(dir, slot string, loc *time.Location) (*Storage, error) {
	p := filepath.Clean(dir)
	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create fallback directory %s: %w", p, err)
	}
	if loc == nil {
		loc = time.Local
	}
	return &Storage{path: filepath.Join(p, slot+".json"), loc: loc}, nil
}

// Path is the slot file location.
func (s *Storage) Path() string {
	return s.path
}

// Append adds one record to the end of the slot and returns its id.
// The id is data.CreatedAt in Unix milliseconds, bumped until unique.
func (s *Storage) Append(ctx context.Context, data domain.SubmissionData) (domain.SubmissionId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return "", err
	}

	taken := make(map[string]struct{}, len(records))
	for _, r := range records {
		taken[r.Id] = struct{}{}
	}
	ms := data.CreatedAt.UnixMilli()
	id := strconv.FormatInt(ms, 10)
	for {
		if _, ok := taken[id]; !ok {
			break
		}
		ms++
		id = strconv.FormatInt(ms, 10)
	}

	records = append(records, record{
		Id:          id,
		Timestamp:   data.CreatedAt.UTC().Format(time.RFC3339Nano),
		Name:        data.Name,
		Message:     data.Message,
		DisplayDate: domain.FormatDisplayDate(data.CreatedAt, s.loc),
	})
	if err := s.write(records); err != nil {
		return "", err
	}
	return id, nil
}

// List returns the slot in insertion order. A missing or unparsable slot is
// an empty list; only I/O failures are errors.
func (s *Storage) List(ctx context.Context) ([]domain.Submission, error) {
	s.mu.Lock()
	records, err := s.read()
	s.mu.Unlock()
	var corrupt *corruptSlotError
	if errors.As(err, &corrupt) {
		logger.Component("fallback_store").Warn("ignoring unreadable fallback slot", "path", s.path, "error", corrupt.err)
		return []domain.Submission{}, nil
	}
	if err != nil {
		return nil, err
	}

	submissions := make([]domain.Submission, 0, len(records))
	for _, r := range records {
		sub := domain.Submission{
			Id:          r.Id,
			Name:        r.Name,
			Message:     r.Message,
			DisplayDate: r.DisplayDate,
		}
		if ts, err := time.Parse(time.RFC3339Nano, r.Timestamp); err == nil {
			sub.CreatedAt = ts
			sub.Timestamp = &ts
		}
		submissions = append(submissions, sub)
	}
	return submissions, nil
}

func (s *Storage) read() ([]record, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fallback slot: %w", err)
	}
	if len(raw) == 0 {
		return []record{}, nil
	}

	var records []record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &corruptSlotError{path: s.path, err: err}
	}
	if records == nil {
		records = []record{}
	}
	return records, nil
}

// write replaces the slot atomically via a temp file in the same directory.
func (s *Storage) write(records []record) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode fallback slot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after rename

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write fallback slot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync fallback slot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close fallback slot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace fallback slot: %w", err)
	}
	return nil
}
