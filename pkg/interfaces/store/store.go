package store

import (
	"context"
	"errors"

	"github.com/Thongheng/HashGen/pkg/domain"
)

// ErrNotFound is returned when a snippet cannot be located.
var ErrNotFound = errors.New("store: not found")

// Repository defines snippet persistence. It is intentionally small: the
// collection is tiny, listing is always whole-collection, and name is the
// only lookup key. Implementations keep List order equal to insertion/file
// order.
type Repository interface {
	Get(ctx context.Context, name string) (*domain.Snippet, error)
	List(ctx context.Context) ([]domain.Snippet, error)
	Upsert(ctx context.Context, snippet domain.Snippet) error
	Delete(ctx context.Context, name string) error

	// FirstRun reports whether the backing medium held no snippets when the
	// repository was opened. The snippet service seeds defaults exactly then,
	// so a user who deletes every snippet later is not re-seeded.
	FirstRun() bool
}
