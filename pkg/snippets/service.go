// Package snippets coordinates snippet persistence: CRUD over a repository
// plus first-run seeding of the default signing algorithm.
package snippets

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Thongheng/HashGen/pkg/domain"
	"github.com/Thongheng/HashGen/pkg/interfaces/logger"
	"github.com/Thongheng/HashGen/pkg/interfaces/store"
	"github.com/Thongheng/HashGen/pkg/signing"
)

var (
	// ErrRepositoryRequired indicates the service cannot operate without a repository.
	ErrRepositoryRequired = errors.New("snippets: repository is required")
	// ErrNameRequired is returned when a mutation names no snippet.
	ErrNameRequired = errors.New("snippets: snippet name is required")
)

// Service owns the snippet collection. Mutations are serialized and flushed
// synchronously; a failed flush is surfaced to the caller while the
// repository's in-memory state keeps the mutation, so a later successful
// flush recovers durability.
type Service struct {
	repo store.Repository
	log  logger.Logger
	mu   sync.Mutex
}

// Option configures the service.
type Option func(*Service)

// WithLogger wires a structured logger. Defaults to Nop.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New wraps repo and seeds the default snippet when the backing medium is
// brand new. A seeding flush failure is logged, not fatal: the entry stays
// usable in memory for the session.
func New(ctx context.Context, repo store.Repository, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	s := &Service{repo: repo, log: &logger.Nop{}}
	for _, opt := range opts {
		opt(s)
	}
	if repo.FirstRun() {
		if err := s.createDefaults(ctx); err != nil {
			s.log.Error("snippets: seed default snippet", logger.Field{Key: "error", Value: err})
		} else {
			s.log.Debug("snippets: seeded default snippet", logger.Field{Key: "name", Value: signing.DefaultSnippetName})
		}
	}
	return s, nil
}

func (s *Service) createDefaults(ctx context.Context) error {
	return s.repo.Upsert(ctx, signing.DefaultSnippet())
}

// ListNames returns all snippet names in insertion/file order.
func (s *Service) ListNames(ctx context.Context) ([]string, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names, nil
}

// Get returns the named snippet. Absence is a normal case reported through
// the boolean, not an error.
func (s *Service) Get(ctx context.Context, name string) (*domain.Snippet, bool, error) {
	snippet, err := s.repo.Get(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return snippet, true, nil
}

// Upsert creates or replaces the entry for name and persists immediately.
// Code is stored verbatim; it is never validated at save time.
func (s *Service) Upsert(ctx context.Context, name, code, description string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Upsert(ctx, domain.Snippet{
		Name:        name,
		Code:        code,
		Description: description,
	})
}

// Remove deletes the entry if present; removing an absent name is a no-op.
func (s *Service) Remove(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Delete(ctx, name)
}
