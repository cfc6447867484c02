// Package filestore persists the snippet collection as a single
// human-readable JSON document: an object whose keys are snippet names and
// whose values carry code and description. The file is the interchange
// format the desktop tooling understands, so it is rewritten whole on every
// mutation and its key order is preserved.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Thongheng/HashGen/pkg/domain"
	"github.com/Thongheng/HashGen/pkg/interfaces/logger"
	"github.com/Thongheng/HashGen/pkg/interfaces/store"
)

// DefaultFilename is the snippet file expected next to the binary.
const DefaultFilename = "snippets.json"

// Repository is a file-backed snippet store. The in-memory collection is the
// source of truth for the session; every mutation is synchronously flushed,
// and a failed flush is surfaced without rolling the mutation back so a later
// successful flush can recover durability.
type Repository struct {
	path     string
	log      logger.Logger
	mu       sync.Mutex
	col      *domain.SnippetCollection
	firstRun bool
}

var _ store.Repository = (*Repository)(nil)

// Option configures the repository.
type Option func(*Repository)

// WithLogger wires a structured logger. Defaults to Nop.
func WithLogger(log logger.Logger) Option {
	return func(r *Repository) {
		if log != nil {
			r.log = log
		}
	}
}

// New opens the snippet file at path. An absent file marks the repository as
// first-run; an unreadable or corrupt file is logged and treated as empty so
// a damaged document never blocks the application ("fail soft, start empty").
func New(path string, opts ...Option) *Repository {
	r := &Repository{
		path: path,
		log:  &logger.Nop{},
		col:  domain.NewSnippetCollection(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.open()
	return r
}

// DefaultPath returns the snippet file path next to the running binary,
// falling back to the working directory when the binary path is unknown.
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultFilename
	}
	return filepath.Join(filepath.Dir(exe), DefaultFilename)
}

func (r *Repository) open() {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		r.firstRun = true
		return
	}
	if err != nil {
		r.log.Error("filestore: read snippets", logger.Field{Key: "path", Value: r.path}, logger.Field{Key: "error", Value: err})
		return
	}
	col := domain.NewSnippetCollection()
	if err := json.Unmarshal(data, col); err != nil {
		r.log.Error("filestore: parse snippets", logger.Field{Key: "path", Value: r.path}, logger.Field{Key: "error", Value: err})
		return
	}
	r.col = col
}

// FirstRun reports whether the backing file was absent at open.
func (r *Repository) FirstRun() bool {
	return r.firstRun
}

// Path returns the backing file path.
func (r *Repository) Path() string {
	return r.path
}

func (r *Repository) Get(_ context.Context, name string) (*domain.Snippet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.col.Get(name)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

func (r *Repository) List(_ context.Context) ([]domain.Snippet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.col.Snippets(), nil
}

func (r *Repository) Upsert(_ context.Context, snippet domain.Snippet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.col.Set(snippet)
	return r.flush()
}

// Delete removes the named snippet. Deleting an absent name is a no-op and
// does not touch the file.
func (r *Repository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.col.Remove(name) {
		return nil
	}
	return r.flush()
}

func (r *Repository) flush() error {
	data, err := json.MarshalIndent(r.col, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: encode snippets: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		r.log.Error("filestore: write snippets", logger.Field{Key: "path", Value: r.path}, logger.Field{Key: "error", Value: err})
		return fmt.Errorf("filestore: write snippets: %w", err)
	}
	return nil
}
