package crud

import (
	"context"
	"time"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionStatus Action = "status"
	ActionDelete Action = "delete"
)

// Change describes a committed mutation of a record.
type Change struct {
	ID        string      `json:"id"`
	Entity    string      `json:"entity"`
	Action    Action      `json:"action"`
	RecordID  int         `json:"recordId"`
	ActorID   int         `json:"actorId,omitempty"`
	Record    interface{} `json:"record,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Publisher broadcasts committed changes. Failures never undo the change.
type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Change) error { return nil }

// NopPublisher drops every change.
var NopPublisher Publisher = nopPublisher{}

type actorKey struct{}

// WithActor returns a copy of ctx carrying the ID of the user performing the request.
func WithActor(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFrom returns the ID set by WithActor, 0 if none.
func ActorFrom(ctx context.Context) int {
	id, _ := ctx.Value(actorKey{}).(int)
	return id
}
