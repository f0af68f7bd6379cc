package inmemdb

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/listing"
)

type repository[T listing.Record] struct {
	db     *table
	schema crud.Schema[T]
}

func NewRepository[T listing.Record](db *DB, schema crud.Schema[T]) crud.Repository[T] {
	return &repository[T]{db: db.table(schema.Table), schema: schema}
}

// query returns the rows of type T ordered by ID. Caller must hold the lock.
func (repo *repository[T]) query() []T {
	recs := make([]T, 0, len(repo.db.rows))
	for _, row := range repo.db.rows {
		if rec, ok := row.(T); ok {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return repo.id(recs[i]) < repo.id(recs[j]) })
	return recs
}

func (repo *repository[T]) id(rec T) int {
	return repo.schema.Base(&rec).ID
}

func (repo *repository[T]) Insert(_ context.Context, rec T) (T, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.pk++
	repo.schema.Base(&rec).ID = repo.db.pk
	repo.db.rows[repo.db.pk] = rec
	return rec, nil
}

func (repo *repository[T]) All(_ context.Context) ([]T, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *repository[T]) Get(_ context.Context, id int) (T, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rec, ok := repo.db.rows[id].(T); ok {
		return rec, nil
	}
	var zero T
	return zero, crud.ErrNotFound
}

func (repo *repository[T]) Save(_ context.Context, rec T) (T, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	id := repo.id(rec)
	if _, ok := repo.db.rows[id].(T); !ok {
		var zero T
		return zero, errors.Wrapf(crud.ErrNotFound, "saving %s %d", repo.schema.Name, id)
	}
	repo.db.rows[id] = rec
	return rec, nil
}

func (repo *repository[T]) Delete(_ context.Context, ids ...int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.rows, id)
	}
	return nil
}
