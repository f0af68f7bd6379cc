package console

import (
	"context"

	"github.com/trezcool/uniguide/core/listing"
)

// Form is a modal seen without its record type.
type Form interface {
	Title() string
	Fields() []FormField
	IsEdit() bool
	State() ModalState
	Set(key, value string)
	Value(key string) string
	Errors() map[string]string
	SubmitError() string
	Submit(ctx context.Context) bool
	Close()
}

// Page is the list view and modals of one entity type, seen without its record type.
type Page interface {
	Name() string
	Title() string
	Load(ctx context.Context) bool
	State() State
	Banner() Banner
	Dismiss()
	Columns() []string
	Rows() [][]string
	Query() listing.Query
	SetSearch(term string)
	ToggleAt(ctx context.Context, row int) bool
	AskDeleteAt(row int) (string, bool)
	ConfirmDelete(ctx context.Context, confirmed bool) bool
	Create() Form
	EditAt(row int) (Form, bool)
}

type page[T listing.Record] struct {
	*ListView[T]
	title  string
	create *Modal[T]
	edit   *Modal[T]
}

// NewPage binds modals to list: each successful submission reloads it once.
func NewPage[T listing.Record](title string, list *ListView[T], create, edit *Modal[T]) Page {
	if create != nil {
		create.OnSuccess = func(ctx context.Context, rec T) { list.Saved(ctx, rec, true) }
	}
	if edit != nil {
		edit.OnSuccess = func(ctx context.Context, rec T) { list.Saved(ctx, rec, false) }
	}
	return &page[T]{ListView: list, title: title, create: create, edit: edit}
}

func (p *page[T]) Title() string { return p.title }

func (p *page[T]) at(row int) (T, bool) {
	recs := p.Visible()
	if row < 0 || row >= len(recs) {
		var zero T
		return zero, false
	}
	return recs[row], true
}

func (p *page[T]) ToggleAt(ctx context.Context, row int) bool {
	rec, ok := p.at(row)
	return ok && p.ToggleStatus(ctx, rec)
}

func (p *page[T]) AskDeleteAt(row int) (string, bool) {
	rec, ok := p.at(row)
	if !ok {
		return "", false
	}
	return p.AskDelete(rec), true
}

// Create opens the create modal.
func (p *page[T]) Create() Form {
	if p.create == nil {
		return nil
	}
	p.create.Open()
	return p.create
}

// EditAt opens the edit modal pre-filled with the record displayed at row.
func (p *page[T]) EditAt(row int) (Form, bool) {
	rec, ok := p.at(row)
	if !ok || p.edit == nil {
		return nil, false
	}
	p.edit.OpenWith(rec)
	return p.edit, true
}
