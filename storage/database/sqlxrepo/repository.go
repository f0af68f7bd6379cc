// Package sqlxrepo stores entities in PostgreSQL, one table per schema.
package sqlxrepo

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/listing"
)

type repository[T listing.Record] struct {
	db     *sqlx.DB
	schema crud.Schema[T]
	sb     sq.StatementBuilderType
}

func NewRepository[T listing.Record](db *sqlx.DB, schema crud.Schema[T]) crud.Repository[T] {
	return &repository[T]{
		db:     db,
		schema: schema,
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// columns returns every column of rec but the primary key.
func (repo *repository[T]) columns(rec T) map[string]interface{} {
	cols := make(map[string]interface{})
	if repo.schema.Columns != nil {
		for k, v := range repo.schema.Columns(rec) {
			cols[k] = v
		}
	}
	base := repo.schema.Base(&rec)
	cols["is_active"] = base.IsActive
	cols["created_at"] = base.CreatedAt
	cols["updated_at"] = base.UpdatedAt
	cols["audit_info"] = base.AuditInfo
	return cols
}

func (repo *repository[T]) insertQuery(rec T) sq.InsertBuilder {
	return repo.sb.Insert(repo.schema.Table).SetMap(repo.columns(rec)).Suffix("RETURNING id")
}

func (repo *repository[T]) selectQuery() sq.SelectBuilder {
	return repo.sb.Select("*").From(repo.schema.Table)
}

func (repo *repository[T]) updateQuery(rec T) sq.UpdateBuilder {
	return repo.sb.Update(repo.schema.Table).
		SetMap(repo.columns(rec)).
		Where(sq.Eq{"id": repo.schema.Base(&rec).ID})
}

func (repo *repository[T]) deleteQuery(ids ...int) sq.DeleteBuilder {
	return repo.sb.Delete(repo.schema.Table).Where(sq.Eq{"id": ids})
}

func (repo *repository[T]) Insert(ctx context.Context, rec T) (T, error) {
	var zero T
	q, args, err := repo.insertQuery(rec).ToSql()
	if err != nil {
		return zero, errors.Wrapf(err, "building %s insert", repo.schema.Name)
	}
	var id int
	if err = repo.db.QueryRowxContext(ctx, q, args...).Scan(&id); err != nil {
		return zero, errors.Wrapf(err, "inserting %s", repo.schema.Name)
	}
	repo.schema.Base(&rec).ID = id
	return rec, nil
}

func (repo *repository[T]) All(ctx context.Context) ([]T, error) {
	q, args, err := repo.selectQuery().OrderBy("id").ToSql()
	if err != nil {
		return nil, errors.Wrapf(err, "building %s select", repo.schema.Plural)
	}
	recs := make([]T, 0)
	if err = repo.db.SelectContext(ctx, &recs, q, args...); err != nil {
		return nil, errors.Wrapf(err, "selecting %s", repo.schema.Plural)
	}
	return recs, nil
}

func (repo *repository[T]) Get(ctx context.Context, id int) (T, error) {
	var rec T
	q, args, err := repo.selectQuery().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return rec, errors.Wrapf(err, "building %s select", repo.schema.Name)
	}
	if err = repo.db.GetContext(ctx, &rec, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, crud.ErrNotFound
		}
		return rec, errors.Wrapf(err, "selecting %s %d", repo.schema.Name, id)
	}
	return rec, nil
}

func (repo *repository[T]) Save(ctx context.Context, rec T) (T, error) {
	var zero T
	id := repo.schema.Base(&rec).ID
	q, args, err := repo.updateQuery(rec).ToSql()
	if err != nil {
		return zero, errors.Wrapf(err, "building %s update", repo.schema.Name)
	}
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return zero, errors.Wrapf(err, "updating %s %d", repo.schema.Name, id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return zero, errors.Wrapf(crud.ErrNotFound, "saving %s %d", repo.schema.Name, id)
	}
	return rec, nil
}

func (repo *repository[T]) Delete(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := repo.deleteQuery(ids...).ToSql()
	if err != nil {
		return errors.Wrapf(err, "building %s delete", repo.schema.Plural)
	}
	_, err = repo.db.ExecContext(ctx, q, args...)
	return errors.Wrapf(err, "deleting %s", repo.schema.Plural)
}
