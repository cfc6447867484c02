// Package bunrepo stores snippets in a relational table for deployments that
// outgrow the flat snippet file. The flat file remains the interchange
// format; this backend exists for shared or long-lived setups. Removal is a
// soft delete so accidentally dropped algorithms stay recoverable.
package bunrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/Thongheng/HashGen/pkg/domain"
	"github.com/Thongheng/HashGen/pkg/interfaces/logger"
	"github.com/Thongheng/HashGen/pkg/interfaces/store"
)

type snippetRecord struct {
	bun.BaseModel `bun:"table:snippets,alias:sn"`

	domain.RecordMeta
	Name        string `bun:",notnull"`
	Code        string `bun:",notnull"`
	Description string
}

// Repository is a bun-backed snippet store.
type Repository struct {
	repo     repository.Repository[*snippetRecord]
	db       *bun.DB
	log      logger.Logger
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

// New prepares the snippets table and returns a repository over db.
func New(ctx context.Context, db *bun.DB, opts ...Option) (*Repository, error) {
	handlers := repository.ModelHandlers[*snippetRecord]{
		NewRecord:          func() *snippetRecord { return &snippetRecord{} },
		GetID:              func(rec *snippetRecord) uuid.UUID { return rec.ID },
		SetID:              func(rec *snippetRecord, id uuid.UUID) { rec.ID = id },
		GetIdentifier:      func() string { return "name" },
		GetIdentifierValue: func(rec *snippetRecord) string { return rec.Name },
	}
	r := &Repository{
		repo: repository.MustNewRepository[*snippetRecord](db, handlers),
		db:   db,
		log:  &logger.Nop{},
	}
	for _, opt := range opts {
		opt(r)
	}

	if _, err := db.NewCreateTable().Model((*snippetRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("bunrepo: create snippets table: %w", err)
	}
	count, err := db.NewSelect().Model((*snippetRecord)(nil)).Where("deleted_at IS NULL").Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("bunrepo: count snippets: %w", err)
	}
	r.firstRun = count == 0
	return r, nil
}

// OpenSQLite opens a sqlite-backed bun.DB for dsn.
func OpenSQLite(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("bunrepo: open sqlite: %w", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	if _, err := sqldb.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("bunrepo: enable sqlite foreign keys: %w", err)
	}
	return db, nil
}

// FirstRun reports whether the table held no live rows at open.
func (r *Repository) FirstRun() bool {
	return r.firstRun
}

func (r *Repository) Get(ctx context.Context, name string) (*domain.Snippet, error) {
	rec, err := r.repo.Get(ctx, withName(name), withoutDeleted())
	if err != nil {
		return nil, mapError(err)
	}
	s := toDomain(rec)
	return &s, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Snippet, error) {
	records, _, err := r.repo.List(ctx, withoutDeleted(), orderByCreated())
	if err != nil {
		return nil, mapError(err)
	}
	items := make([]domain.Snippet, len(records))
	for i, rec := range records {
		items[i] = toDomain(rec)
	}
	return items, nil
}

func (r *Repository) Upsert(ctx context.Context, snippet domain.Snippet) error {
	now := time.Now().UTC()
	existing, err := r.repo.Get(ctx, withName(snippet.Name), withoutDeleted())
	if err != nil {
		if mapError(err) != store.ErrNotFound {
			return mapError(err)
		}
		rec := &snippetRecord{
			Name:        snippet.Name,
			Code:        snippet.Code,
			Description: snippet.Description,
		}
		rec.EnsureID()
		rec.CreatedAt = now
		rec.UpdatedAt = now
		_, err := r.repo.Create(ctx, rec)
		return mapError(err)
	}
	existing.Code = snippet.Code
	existing.Description = snippet.Description
	existing.UpdatedAt = now
	_, err = r.repo.Update(ctx, existing)
	return mapError(err)
}

// Delete soft-deletes the named snippet; deleting an absent name is a no-op.
func (r *Repository) Delete(ctx context.Context, name string) error {
	rec, err := r.repo.Get(ctx, withName(name), withoutDeleted())
	if err != nil {
		if mapError(err) == store.ErrNotFound {
			return nil
		}
		return mapError(err)
	}
	rec.DeletedAt = time.Now().UTC()
	_, err = r.repo.Update(ctx, rec)
	return mapError(err)
}

func toDomain(rec *snippetRecord) domain.Snippet {
	return domain.Snippet{
		Name:        rec.Name,
		Code:        rec.Code,
		Description: rec.Description,
	}
}

func withName(name string) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("name = ?", name)
	}
}

func withoutDeleted() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("deleted_at IS NULL")
	}
}

func orderByCreated() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("created_at ASC")
	}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if repository.IsRecordNotFound(err) {
		return store.ErrNotFound
	}
	return err
}
