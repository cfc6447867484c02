// Package memory provides an in-memory snippet repository used by tests and
// embedders that do not need durability.
package memory

import (
	"context"
	"sync"

	"github.com/Thongheng/HashGen/pkg/domain"
	"github.com/Thongheng/HashGen/pkg/interfaces/store"
)

// Repository is an in-memory snippet store. It is always first-run.
type Repository struct {
	mu  sync.RWMutex
	col *domain.SnippetCollection
}

var _ store.Repository = (*Repository)(nil)

func NewRepository() *Repository {
	return &Repository{col: domain.NewSnippetCollection()}
}

func (r *Repository) FirstRun() bool {
	return true
}

func (r *Repository) Get(_ context.Context, name string) (*domain.Snippet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.col.Get(name)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

func (r *Repository) List(_ context.Context) ([]domain.Snippet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.col.Snippets(), nil
}

func (r *Repository) Upsert(_ context.Context, snippet domain.Snippet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.col.Set(snippet)
	return nil
}

func (r *Repository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.col.Remove(name)
	return nil
}
