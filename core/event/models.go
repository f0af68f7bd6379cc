package event

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/listing"
)

const (
	StatusUpcoming  = "upcoming"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var Statuses = []string{StatusUpcoming, StatusOngoing, StatusCompleted, StatusCancelled}

type Event struct {
	crud.Base
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description,omitempty" db:"description"`
	EventType   string     `json:"eventType,omitempty" db:"event_type"`
	StartDate   time.Time  `json:"startDate" db:"start_date"` // UTC
	EndDate     *time.Time `json:"endDate,omitempty" db:"end_date"`
	Location    string     `json:"location,omitempty" db:"location"`
	IsPublic    bool       `json:"isPublic" db:"is_public"`
	Status      string     `json:"status" db:"status"`
}

// UnmarshalJSON accepts the legacy "date" field in place of "startDate",
// and plain dates as well as RFC 3339 timestamps.
func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	aux := struct {
		*plain
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
		Date      string `json:"date"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	e.StartDate = time.Time{}
	if start := core.FirstNonEmpty(aux.StartDate, aux.Date); start != "" {
		t, err := core.ParseTime(start)
		if err != nil {
			return errors.Wrap(err, "event.startDate")
		}
		e.StartDate = t
	}
	end, err := core.ParseTimePtr(aux.EndDate)
	if err != nil {
		return errors.Wrap(err, "event.endDate")
	}
	e.EndDate = end
	return nil
}

func (e Event) Field(name string) (interface{}, bool) {
	switch name {
	case "title":
		return e.Title, true
	case "description":
		return e.Description, true
	case "eventType", "event_type", "type":
		return e.EventType, true
	case "startDate", "start_date", "date":
		return e.StartDate, true
	case "endDate", "end_date":
		return e.EndDate, true
	case "location":
		return e.Location, true
	case "isPublic", "is_public":
		return e.IsPublic, true
	case "status":
		return e.Status, true
	}
	return e.Base.Field(name)
}

// Input is used for both creating and updating events.
type Input struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	EventType   string `json:"eventType,omitempty" validate:"max=50"`
	StartDate   string `json:"startDate" validate:"required,date"`
	Date        string `json:"date,omitempty"` // legacy name of startDate
	EndDate     string `json:"endDate,omitempty" validate:"omitempty,date"`
	Location    string `json:"location,omitempty" validate:"max=200"`
	IsPublic    bool   `json:"isPublic"`
	Status      string `json:"status,omitempty" validate:"required,oneof=upcoming ongoing completed cancelled"`
}

func (in *Input) Clean() {
	in.Title = core.CleanString(in.Title)
	in.Description = core.CleanString(in.Description)
	in.EventType = core.CleanString(in.EventType, true)
	in.StartDate = core.CleanString(core.FirstNonEmpty(in.StartDate, in.Date))
	in.Date = ""
	in.EndDate = core.CleanString(in.EndDate)
	in.Location = core.CleanString(in.Location)
	in.Status = core.CleanString(in.Status, true)
	if in.Status == "" {
		in.Status = StatusUpcoming
	}
}

// Check runs after tag validation, dates are well formed.
func (in *Input) Check() []core.FieldError {
	if in.EndDate == "" {
		return nil
	}
	start, _ := core.ParseTime(in.StartDate)
	end, _ := core.ParseTime(in.EndDate)
	if end.Before(start) {
		return []core.FieldError{{Field: "endDate", Error: "end date cannot be before the start date"}}
	}
	return nil
}

func (in *Input) Record() Event {
	var e Event
	in.Apply(&e)
	return e
}

func (in *Input) Apply(e *Event) {
	e.Title = in.Title
	e.Description = in.Description
	e.EventType = in.EventType
	e.StartDate, _ = core.ParseTime(in.StartDate)
	e.EndDate, _ = core.ParseTimePtr(in.EndDate)
	e.Location = in.Location
	e.IsPublic = in.IsPublic
	e.Status = in.Status
}

var listingSpec = listing.Spec{
	SearchFields:  []string{"title", "description", "location", "eventType"},
	CategoryField: "eventType",
	StatusField:   "status",
}

func Schema() crud.Schema[Event] {
	return crud.Schema[Event]{
		Name:   "event",
		Plural: "events",
		Table:  "events",
		Base:   func(e *Event) *crud.Base { return &e.Base },
		Columns: func(e Event) map[string]interface{} {
			return map[string]interface{}{
				"title":       e.Title,
				"description": e.Description,
				"event_type":  e.EventType,
				"start_date":  e.StartDate,
				"end_date":    e.EndDate,
				"location":    e.Location,
				"is_public":   e.IsPublic,
				"status":      e.Status,
			}
		},
		Listing:         listingSpec,
		DefaultOrdering: core.ParseOrdering("startDate"),
	}
}

// Upcoming returns at most n public events, earliest start first. n <= 0 means no limit.
func Upcoming(events []Event, n int) []Event {
	public := listing.Filter(events, func(e Event) bool { return e.IsPublic })
	sorted := listing.Sort(public, core.ParseOrdering("startDate,id"))
	return listing.Limit(sorted, n)
}
