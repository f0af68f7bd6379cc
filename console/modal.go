package console

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/listing"
)

type Kind int

const (
	Text Kind = iota
	Number
	Checkbox
	Date
	Select
	Password
)

// FormField is one input of a modal, bound to the json key Key of the payload.
type FormField struct {
	Key     string
	Label   string
	Kind    Kind
	Options []string // Select
	Source  string   // record field pre-filling edit forms; Key when empty
}

func (f FormField) source() string {
	if f.Source != "" {
		return f.Source
	}
	return f.Key
}

type ModalState int

const (
	Closed ModalState = iota
	Pristine
	Dirty
	Submitting
	Rejected // open with errors
)

func (s ModalState) String() string {
	switch s {
	case Pristine:
		return "pristine"
	case Dirty:
		return "dirty"
	case Submitting:
		return "submitting"
	case Rejected:
		return "error"
	}
	return "closed"
}

// Payload is the create or edit form of an entity, eg. *subject.Input.
type Payload interface {
	Clean()
}

// Validation runs the same rules as the API before anything is sent.
type Validation struct {
	Validate   *validator.Validate
	Translator ut.Translator
}

func NewValidation() Validation {
	validate, translator := core.NewValidator()
	return Validation{Validate: validate, Translator: translator}
}

type (
	createFunc[T any] func(ctx context.Context, payload interface{}) core.Envelope[T]
	updateFunc[T any] func(ctx context.Context, id int, payload interface{}) core.Envelope[T]
)

// Modal collects a form, validates it synchronously and submits it once valid.
// Values survive a failed submission.
type Modal[T listing.Record] struct {
	title      string
	fields     []FormField
	newPayload func() Payload
	send       updateFunc[T]
	edit       bool
	checks     Validation

	// Prefill adds edit form values the record fields do not carry (eg. related IDs).
	Prefill func(T) map[string]string
	// OnSuccess runs after a successful submission, typically reloading the parent list.
	OnSuccess func(ctx context.Context, rec T)

	mu        sync.Mutex
	state     ModalState
	targetID  int
	values    map[string]string
	errs      map[string]string
	submitErr string
}

func NewCreateModal[T listing.Record](title string, fields []FormField, newPayload func() Payload, create createFunc[T], checks Validation) *Modal[T] {
	return &Modal[T]{
		title:      title,
		fields:     fields,
		newPayload: newPayload,
		send: func(ctx context.Context, _ int, payload interface{}) core.Envelope[T] {
			return create(ctx, payload)
		},
		checks: checks,
	}
}

func NewEditModal[T listing.Record](title string, fields []FormField, newPayload func() Payload, update updateFunc[T], checks Validation) *Modal[T] {
	return &Modal[T]{
		title:      title,
		fields:     fields,
		newPayload: newPayload,
		send:       update,
		edit:       true,
		checks:     checks,
	}
}

func (m *Modal[T]) Title() string       { return m.title }
func (m *Modal[T]) Fields() []FormField { return m.fields }
func (m *Modal[T]) IsEdit() bool        { return m.edit }
func (m *Modal[T]) IsOpen() bool        { return m.State() != Closed }

func (m *Modal[T]) reset(values map[string]string, id int) {
	m.values = values
	m.targetID = id
	m.errs = nil
	m.submitErr = ""
	m.state = Pristine
}

// Open opens an empty create form.
func (m *Modal[T]) Open() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset(make(map[string]string, len(m.fields)), 0)
}

// OpenWith opens the form pre-filled from rec. While closed the form keeps its values
// whatever the selected record; they are only replaced here.
func (m *Modal[T]) OpenWith(rec T) {
	values := make(map[string]string, len(m.fields))
	for _, f := range m.fields {
		if f.Kind == Password {
			continue
		}
		if v, ok := rec.Field(f.source()); ok {
			values[f.Key] = formatValue(v, f.Kind)
		}
	}
	if m.Prefill != nil {
		for k, v := range m.Prefill(rec) {
			values[k] = v
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset(values, recordID(rec))
}

func (m *Modal[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Submitting {
		m.state = Closed
	}
}

func (m *Modal[T]) State() ModalState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Modal[T]) TargetID() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.targetID
}

// Set changes a value of an open form. Ignored while closed or submitting.
func (m *Modal[T]) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Closed || m.state == Submitting {
		return
	}
	m.values[key] = value
	m.state = Dirty
}

func (m *Modal[T]) Value(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

func (m *Modal[T]) Values() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyMap(m.values)
}

// Errors returns the field-keyed errors of the last submit attempt.
func (m *Modal[T]) Errors() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyMap(m.errs)
}

// SubmitError is the server message of the last failed submission.
func (m *Modal[T]) SubmitError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitErr
}

// Submit validates the form and, when valid, sends it. Invalid forms and double submits
// never reach the network. It reports whether the record was saved.
func (m *Modal[T]) Submit(ctx context.Context) bool {
	m.mu.Lock()
	if m.state == Closed || m.state == Submitting {
		m.mu.Unlock()
		return false
	}
	payload, errs := m.build()
	if len(errs) > 0 {
		m.errs = errs
		m.submitErr = ""
		m.state = Rejected
		m.mu.Unlock()
		return false
	}
	m.state = Submitting
	m.errs = nil
	m.submitErr = ""
	id := m.targetID
	m.mu.Unlock()

	env := m.send(ctx, id, payload)

	m.mu.Lock()
	if !env.Success {
		m.state = Rejected
		m.submitErr = env.Error
		m.errs = env.Errors
		m.mu.Unlock()
		return false
	}
	m.state = Closed
	m.mu.Unlock()

	if m.OnSuccess != nil {
		m.OnSuccess(ctx, env.Data)
	}
	return true
}

// build converts the form values into a cleaned and validated payload.
func (m *Modal[T]) build() (Payload, map[string]string) {
	errs := make(map[string]string)
	raw := make(map[string]interface{}, len(m.fields))
	for _, f := range m.fields {
		v := m.values[f.Key]
		switch f.Kind {
		case Number:
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				errs[f.Key] = "must be a whole number"
				continue
			}
			raw[f.Key] = n
		case Checkbox:
			raw[f.Key] = isTrue(v)
		default:
			raw[f.Key] = v
		}
	}

	payload := m.newPayload()
	b, err := json.Marshal(raw)
	if err == nil {
		err = json.Unmarshal(b, payload)
	}
	if err != nil {
		errs[""] = fmt.Sprintf("invalid form: %v", err)
		return nil, errs
	}

	payload.Clean()
	if err := m.checks.Validate.Struct(payload); err != nil {
		for k, msg := range core.FieldErrors(err, m.checks.Translator) {
			if _, ok := errs[k]; !ok {
				errs[k] = msg
			}
		}
		if len(errs) == 0 {
			errs[""] = err.Error()
		}
	} else if checker, ok := payload.(crud.Checker); ok && len(errs) == 0 {
		for _, fe := range checker.Check() {
			errs[fe.Field] = fe.Error
		}
	}
	return payload, errs
}

func isTrue(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

func formatValue(v interface{}, kind Kind) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		if x == 0 && kind != Number {
			return ""
		}
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		if kind == Date {
			return x.Format(core.DateLayout)
		}
		return x.Format(time.RFC3339)
	case *time.Time:
		if x == nil {
			return ""
		}
		return formatValue(*x, kind)
	}
	return fmt.Sprint(v)
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
