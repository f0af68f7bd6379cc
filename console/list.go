// Package console holds the view-models of the admin dashboards: list views,
// create/edit modals and the role specific shell routing between them.
// Nothing in here renders; apps/dashboard draws them in a terminal.
package console

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/listing"
)

type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "error"
	}
	return "idle"
}

type Severity int

const (
	Info Severity = iota
	Success
	Error
)

// Banner is the dismissible message shown on top of a view.
type Banner struct {
	Severity Severity
	Text     string
}

func (b Banner) Empty() bool { return b.Text == "" }

// Service is the part of the API client a list view drives; client.Resource implements it.
type Service[T any] interface {
	GetAll(ctx context.Context, q listing.Query) core.Envelope[[]T]
	SetStatus(ctx context.Context, id int, active bool) core.Envelope[T]
	Delete(ctx context.Context, id int) core.Envelope[struct{}]
}

// Column renders one cell of a row.
type Column[T any] struct {
	Title string
	Value func(T) string
}

// ListView loads a whole collection and derives what is displayed from UI-only state
// (search, filters, ordering). Every successful mutation is followed by exactly one reload.
type ListView[T listing.Record] struct {
	name    string
	svc     Service[T]
	spec    listing.Spec
	columns []Column[T]

	mu      sync.Mutex
	seq     uint64 // last load issued
	state   State
	items   []T
	banner  Banner
	query   listing.Query
	pending *T // staged for deletion
}

func NewListView[T listing.Record](name string, svc Service[T], spec listing.Spec, columns ...Column[T]) *ListView[T] {
	return &ListView[T]{name: name, svc: svc, spec: spec, columns: columns}
}

func (v *ListView[T]) Name() string { return v.name }

// Load fetches the collection. When loads overlap only the latest one updates the view.
// A failed load keeps the previous collection and reports the error.
// It reports whether the response was applied.
func (v *ListView[T]) Load(ctx context.Context) bool {
	v.mu.Lock()
	v.seq++
	seq := v.seq
	v.state = Loading
	v.mu.Unlock()

	env := v.svc.GetAll(ctx, listing.Query{})

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.seq {
		return false
	}
	if !env.Success {
		v.state = Failed
		v.banner = Banner{Severity: Error, Text: env.Error}
		return true
	}
	v.state = Loaded
	v.items = env.Data
	if v.banner.Severity == Error {
		v.banner = Banner{}
	}
	return true
}

func (v *ListView[T]) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *ListView[T]) Banner() Banner {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.banner
}

func (v *ListView[T]) Dismiss() {
	v.mu.Lock()
	v.banner = Banner{}
	v.mu.Unlock()
}

func (v *ListView[T]) notify(sev Severity, text string) {
	v.mu.Lock()
	v.banner = Banner{Severity: sev, Text: text}
	v.mu.Unlock()
}

// Items returns the loaded collection, unfiltered.
func (v *ListView[T]) Items() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]T, len(v.items))
	copy(out, v.items)
	return out
}

// Visible returns the loaded collection filtered, ordered and limited by the query.
func (v *ListView[T]) Visible() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return listing.Apply(v.items, v.spec, v.query)
}

func (v *ListView[T]) Query() listing.Query {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

// SetQuery replaces the UI-only state; nothing is fetched.
func (v *ListView[T]) SetQuery(q listing.Query) {
	q.Clean()
	v.mu.Lock()
	v.query = q
	v.mu.Unlock()
}

func (v *ListView[T]) SetSearch(term string) {
	q := v.Query()
	q.Search = term
	v.SetQuery(q)
}

func (v *ListView[T]) SetCategory(category string) {
	q := v.Query()
	q.Category = category
	v.SetQuery(q)
}

func (v *ListView[T]) SetStatus(status string) {
	q := v.Query()
	q.Status = status
	v.SetQuery(q)
}

func (v *ListView[T]) SetOrdering(ordering string) {
	q := v.Query()
	q.Ordering = core.ParseOrdering(ordering)
	v.SetQuery(q)
}

func (v *ListView[T]) Columns() []string {
	titles := make([]string, len(v.columns))
	for i, col := range v.columns {
		titles[i] = col.Title
	}
	return titles
}

// Rows renders the visible records.
func (v *ListView[T]) Rows() [][]string {
	recs := v.Visible()
	rows := make([][]string, len(recs))
	for i, rec := range recs {
		row := make([]string, len(v.columns))
		for j, col := range v.columns {
			row[j] = col.Value(rec)
		}
		rows[i] = row
	}
	return rows
}

// ToggleStatus flips the active flag of rec.
func (v *ListView[T]) ToggleStatus(ctx context.Context, rec T) bool {
	active := !recordActive(rec)
	env := v.svc.SetStatus(ctx, recordID(rec), active)
	if !env.Success {
		v.notify(Error, env.Error)
		return false
	}

	verb := "deactivated"
	if active {
		verb = "activated"
	}
	v.notify(Success, fmt.Sprintf("%s %s", Label(rec), verb))
	v.Load(ctx)
	return true
}

// AskDelete stages rec for deletion and returns the confirmation prompt.
func (v *ListView[T]) AskDelete(rec T) string {
	v.mu.Lock()
	v.pending = &rec
	v.mu.Unlock()
	return fmt.Sprintf("Delete %s? This cannot be undone.", Label(rec))
}

// ConfirmDelete deletes the staged record when confirmed. Nothing is sent otherwise.
func (v *ListView[T]) ConfirmDelete(ctx context.Context, confirmed bool) bool {
	v.mu.Lock()
	rec := v.pending
	v.pending = nil
	v.mu.Unlock()
	if rec == nil || !confirmed {
		return false
	}

	env := v.svc.Delete(ctx, recordID(*rec))
	if !env.Success {
		v.notify(Error, env.Error)
		return false
	}
	v.notify(Success, core.FirstNonEmpty(env.Message, Label(*rec)+" deleted"))
	v.Load(ctx)
	return true
}

// Delete deletes rec once confirm agrees to the prompt.
func (v *ListView[T]) Delete(ctx context.Context, rec T, confirm func(prompt string) bool) bool {
	prompt := v.AskDelete(rec)
	return v.ConfirmDelete(ctx, confirm != nil && confirm(prompt))
}

// Saved reports a successful modal submission and reloads.
func (v *ListView[T]) Saved(ctx context.Context, rec T, created bool) {
	verb := "updated"
	if created {
		verb = "created"
	}
	v.notify(Success, fmt.Sprintf("%s %s", Label(rec), verb))
	v.Load(ctx)
}

func recordID(rec listing.Record) int {
	v, _ := rec.Field("id")
	id, _ := v.(int)
	return id
}

func recordActive(rec listing.Record) bool {
	v, _ := rec.Field("isActive")
	active, _ := v.(bool)
	return active
}

// Label names a record in messages: its name, title or email, its ID otherwise.
func Label(rec listing.Record) string {
	for _, f := range []string{"name", "title", "email"} {
		if v, ok := rec.Field(f); ok {
			if s, ok := v.(string); ok && s != "" {
				return fmt.Sprintf("%q", s)
			}
		}
	}
	return "#" + strconv.Itoa(recordID(rec))
}
