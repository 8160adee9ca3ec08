// Package snapshot owns the on-disk representation of the catalog and claim
// state: a single JSON document, rewritten whole on every save. All writes
// funnel through one FIFO queue consumed by a single writer goroutine, and
// each write lands via temp-file + atomic rename, so a reader of the
// canonical path always sees a complete snapshot — the previous one or the
// new one, never a mixture.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/MrSnakeDoc/linkdrop/internal/domain"
	"github.com/MrSnakeDoc/linkdrop/internal/logger"
)

// Document is the complete persisted state.
type Document struct {
	Folders []domain.Folder               `json:"folders"`
	Claims  map[string]domain.ClaimRecord `json:"claims"`
}

// NewDocument returns an empty, fully initialized document.
func NewDocument() *Document {
	return &Document{
		Folders: []domain.Folder{},
		Claims:  make(map[string]domain.ClaimRecord),
	}
}

// ErrClosed is returned by Save after Close.
var ErrClosed = errors.New("snapshot store is closed")

type writeReq struct {
	data   []byte
	result chan error
}

// Store serializes all snapshot writes for one canonical path.
type Store struct {
	path string
	log  logger.Logger

	mu     sync.Mutex // guards closed + enqueue ordering
	closed bool
	queue  chan writeReq
	done   chan struct{}
}

// New creates the store and starts its writer goroutine. The snapshot
// directory is created if missing.
func New(path string, log logger.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	s := &Store{
		path:  path,
		log:   log,
		queue: make(chan writeReq, 64),
		done:  make(chan struct{}),
	}
	go s.writeLoop()
	return s, nil
}

// Load reads the canonical snapshot. A missing or unreadable snapshot never
// surfaces as an error: the store recovers by initializing an empty document
// and persisting it.
func (s *Store) Load() *Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("snapshot unreadable, starting from an empty store",
				logger.String("path", s.path),
				logger.Error(err))
		}
		return s.recover()
	}

	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		s.log.Warn("snapshot corrupt, starting from an empty store",
			logger.String("path", s.path),
			logger.Error(err))
		return s.recover()
	}

	if doc.Folders == nil {
		doc.Folders = []domain.Folder{}
	}
	if doc.Claims == nil {
		doc.Claims = make(map[string]domain.ClaimRecord)
	}
	return doc
}

func (s *Store) recover() *Document {
	doc := NewDocument()
	if err := s.Save(doc); err != nil {
		s.log.Error("failed to persist recovered empty snapshot", logger.Error(err))
	}
	return doc
}

// Save enqueues a full snapshot write and waits for it to land. Writes apply
// strictly in the order they were enqueued. A write error is returned (and
// logged by the writer); it never crashes the process — durability for that
// mutation is best effort.
func (s *Store) Save(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	req := writeReq{data: data, result: make(chan error, 1)}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.queue <- req
	s.mu.Unlock()

	return <-req.result
}

// Close stops accepting writes and drains the pending queue.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	<-s.done
}

func (s *Store) writeLoop() {
	defer close(s.done)
	for req := range s.queue {
		err := s.writeAtomic(req.data)
		if err != nil {
			s.log.Error("snapshot write failed", logger.String("path", s.path), logger.Error(err))
		}
		req.result <- err
	}
}

// writeAtomic writes the serialized snapshot to a temp file in the snapshot
// directory, fsyncs it, then renames it onto the canonical path.
func (s *Store) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
