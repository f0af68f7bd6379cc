package crud

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/listing"
)

// Schema describes one entity type to the generic service, repositories, API and client.
type Schema[T listing.Record] struct {
	Name   string // eg. "subject"
	Plural string // eg. "subjects"; also the API path segment
	Table  string

	// Base gives access to the Base embedded in a record.
	Base func(*T) *Base

	// Columns returns the SQL columns of a record, Base columns excluded.
	Columns func(T) map[string]interface{}

	// Listing configures search, category & status filters.
	Listing listing.Spec

	// Scope restricts the records of Table visible through this schema (eg. editors among users).
	Scope func(T) bool

	// Unique reports conflicts between a record and the other records of Table.
	Unique func(rec T, others []T) []core.FieldError

	// Prepare resolves relations before a record is saved (eg. refs by ID).
	Prepare func(ctx context.Context, rec *T) error

	// Stamp sets record timestamps other than the Base ones, with the service clock.
	Stamp func(rec *T, now time.Time)

	// DefaultOrdering applies when a query has none.
	DefaultOrdering []core.DBOrdering
}

// Lookup fetches a related record by ID, eg. Repository.Get.
type Lookup[T any] func(ctx context.Context, id int) (T, error)

// ResolveRef fetches the record referenced by ref and returns its projection.
// A missing record is reported as a validation error on field.
func ResolveRef[T any](ctx context.Context, lookup Lookup[T], ref *Ref, field, message string, project func(T) Ref) (*Ref, error) {
	if ref == nil || ref.ID == 0 {
		return nil, nil
	}
	rec, err := lookup(ctx, ref.ID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil, core.NewValidationError(nil, core.FieldError{Field: field, Error: message})
		}
		return nil, errors.Wrapf(err, "resolving %s", field)
	}
	r := project(rec)
	return &r, nil
}

func (s Schema[T]) inScope(rec T) bool {
	return s.Scope == nil || s.Scope(rec)
}

func (s Schema[T]) id(rec T) int {
	return s.Base(&rec).ID
}

// UniqueField builds a Schema.Unique func that rejects two records sharing the same non-empty key.
func UniqueField[T listing.Record](field, message string, key func(T) string) func(T, []T) []core.FieldError {
	return func(rec T, others []T) []core.FieldError {
		k := key(rec)
		if k == "" {
			return nil
		}
		for _, o := range others {
			if key(o) == k {
				return []core.FieldError{{Field: field, Error: message}}
			}
		}
		return nil
	}
}

// UniqueAll combines several Schema.Unique funcs.
func UniqueAll[T listing.Record](checks ...func(T, []T) []core.FieldError) func(T, []T) []core.FieldError {
	return func(rec T, others []T) []core.FieldError {
		var errs []core.FieldError
		for _, check := range checks {
			errs = append(errs, check(rec, others)...)
		}
		return errs
	}
}
