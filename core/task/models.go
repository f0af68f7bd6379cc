package task

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/listing"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

var (
	Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
	Statuses   = []string{StatusTodo, StatusInProgress, StatusDone}

	priorityRanks = map[string]int{PriorityLow: 1, PriorityMedium: 2, PriorityHigh: 3}
)

// Person is the projection of the user a task is assigned to.
type Person struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
}

func (p Person) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling task assignee")
	}
	return string(b), nil
}

func (p *Person) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return errors.Wrap(json.Unmarshal(v, p), "unmarshalling task assignee")
	case string:
		return errors.Wrap(json.Unmarshal([]byte(v), p), "unmarshalling task assignee")
	}
	return errors.Errorf("unsupported task assignee type %T", src)
}

type Task struct {
	crud.Base
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description,omitempty" db:"description"`
	Priority    string     `json:"priority" db:"priority"`
	Status      string     `json:"status" db:"status"`
	DueDate     *time.Time `json:"dueDate,omitempty" db:"due_date"` // UTC
	Assignee    *Person    `json:"assignee,omitempty" db:"assignee"`
}

func (t Task) Field(name string) (interface{}, bool) {
	switch name {
	case "title":
		return t.Title, true
	case "description":
		return t.Description, true
	case "priority":
		return t.Priority, true
	case "priorityRank":
		return priorityRanks[t.Priority], true
	case "status":
		return t.Status, true
	case "dueDate", "due_date":
		return t.DueDate, true
	case "assignee":
		if t.Assignee == nil {
			return nil, true
		}
		return t.Assignee.FirstName + " " + t.Assignee.LastName, true
	}
	return t.Base.Field(name)
}

// Input is used for both creating and updating tasks.
type Input struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	Priority    string `json:"priority" validate:"required,oneof=low medium high"`
	Status      string `json:"status,omitempty" validate:"required,oneof=todo in_progress done"`
	DueDate     string `json:"dueDate,omitempty" validate:"omitempty,date"`
	AssigneeID  int    `json:"assigneeId,omitempty" validate:"min=0"`
}

func (in *Input) Clean() {
	in.Title = core.CleanString(in.Title)
	in.Description = core.CleanString(in.Description)
	in.Priority = core.CleanString(in.Priority, true)
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	in.Status = core.CleanString(in.Status, true)
	if in.Status == "" {
		in.Status = StatusTodo
	}
	in.DueDate = core.CleanString(in.DueDate)
}

func (in *Input) Record() Task {
	var t Task
	in.Apply(&t)
	return t
}

func (in *Input) Apply(t *Task) {
	t.Title = in.Title
	t.Description = in.Description
	t.Priority = in.Priority
	t.Status = in.Status
	t.DueDate, _ = core.ParseTimePtr(in.DueDate)
	t.Assignee = nil
	if in.AssigneeID > 0 {
		t.Assignee = &Person{ID: in.AssigneeID}
	}
}

// Schema returns the tasks schema. people resolves assignees;
// it may be nil when the schema only backs a repository.
func Schema(people crud.Lookup[Person]) crud.Schema[Task] {
	schema := crud.Schema[Task]{
		Name:   "task",
		Plural: "tasks",
		Table:  "tasks",
		Base:   func(t *Task) *crud.Base { return &t.Base },
		Columns: func(t Task) map[string]interface{} {
			return map[string]interface{}{
				"title":       t.Title,
				"description": t.Description,
				"priority":    t.Priority,
				"status":      t.Status,
				"due_date":    t.DueDate,
				"assignee":    t.Assignee,
			}
		},
		Listing: listing.Spec{
			SearchFields:  []string{"title", "description", "assignee"},
			CategoryField: "priority",
			StatusField:   "status",
		},
		DefaultOrdering: core.ParseOrdering("-priorityRank,dueDate"),
	}

	if people != nil {
		schema.Prepare = func(ctx context.Context, t *Task) error {
			if t.Assignee == nil || t.Assignee.ID == 0 {
				t.Assignee = nil
				return nil
			}
			p, err := people(ctx, t.Assignee.ID)
			if err != nil {
				if errors.Cause(err) == crud.ErrNotFound {
					return core.NewValidationError(nil, core.FieldError{Field: "assigneeId", Error: "assignee not found"})
				}
				return errors.Wrap(err, "resolving assignee")
			}
			t.Assignee = &p
			return nil
		}
	}
	return schema
}
