package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/event"
	"github.com/trezcool/uniguide/core/field"
	"github.com/trezcool/uniguide/core/framework"
	"github.com/trezcool/uniguide/core/institute"
	"github.com/trezcool/uniguide/core/listing"
	"github.com/trezcool/uniguide/core/news"
	"github.com/trezcool/uniguide/core/subject"
	"github.com/trezcool/uniguide/core/task"
	"github.com/trezcool/uniguide/core/user"
)

// Resource wraps the REST operations of one entity type, mounted at /<path>.
type Resource[T any] struct {
	c    *Client
	path string
}

func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{c: c, path: path}
}

func (r *Resource[T]) Name() string {
	return r.path
}

func (r *Resource[T]) itemPath(id int) string {
	return r.path + "/" + strconv.Itoa(id)
}

// ListParams encodes the server side filters of q.
func ListParams(q listing.Query) url.Values {
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.Active != nil {
		params.Set("is_active", strconv.FormatBool(*q.Active))
	}
	if len(q.Ordering) > 0 {
		params.Set("ordering", core.FormatOrdering(q.Ordering))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	return params
}

// GetAll lists the records matching q; an empty query lists them all.
func (r *Resource[T]) GetAll(ctx context.Context, q listing.Query) core.Envelope[[]T] {
	return do(ctx, r.c, call{
		op:     r.path + ".getAll",
		method: http.MethodGet,
		path:   r.path,
		query:  ListParams(q),
	}, decodeList[T])
}

func (r *Resource[T]) Get(ctx context.Context, id int) core.Envelope[T] {
	return do(ctx, r.c, call{
		op:     r.path + ".get",
		method: http.MethodGet,
		path:   r.itemPath(id),
	}, decodeEnvelope[T])
}

// Create posts payload, the create form of the entity.
func (r *Resource[T]) Create(ctx context.Context, payload interface{}) core.Envelope[T] {
	return do(ctx, r.c, call{
		op:     r.path + ".create",
		method: http.MethodPost,
		path:   r.path,
		body:   payload,
	}, decodeEnvelope[T])
}

// Update replaces the editable fields of record id with payload.
func (r *Resource[T]) Update(ctx context.Context, id int, payload interface{}) core.Envelope[T] {
	return do(ctx, r.c, call{
		op:     r.path + ".update",
		method: http.MethodPut,
		path:   r.itemPath(id),
		body:   payload,
	}, decodeEnvelope[T])
}

type statusRequest struct {
	IsActive bool `json:"isActive"`
}

// SetStatus activates or deactivates record id.
func (r *Resource[T]) SetStatus(ctx context.Context, id int, active bool) core.Envelope[T] {
	return do(ctx, r.c, call{
		op:     r.path + ".setStatus",
		method: http.MethodPatch,
		path:   r.itemPath(id) + "/status",
		body:   statusRequest{IsActive: active},
	}, decodeEnvelope[T])
}

func (r *Resource[T]) Delete(ctx context.Context, id int) core.Envelope[struct{}] {
	return do(ctx, r.c, call{
		op:     r.path + ".delete",
		method: http.MethodDelete,
		path:   r.itemPath(id),
	}, decodeEnvelope[struct{}])
}

func (c *Client) Institutes() *Resource[institute.Institute] {
	return NewResource[institute.Institute](c, "institutes")
}

func (c *Client) Subjects() *Resource[subject.Subject] {
	return NewResource[subject.Subject](c, "subjects")
}

func (c *Client) News() *Resource[news.News] {
	return NewResource[news.News](c, "news")
}

func (c *Client) Events() *Resource[event.Event] {
	return NewResource[event.Event](c, "events")
}

func (c *Client) Tasks() *Resource[task.Task] {
	return NewResource[task.Task](c, "tasks")
}

func (c *Client) Editors() *Resource[user.User] {
	return NewResource[user.User](c, "editors")
}

func (c *Client) MajorFields() *Resource[field.MajorField] {
	return NewResource[field.MajorField](c, "major-fields")
}

func (c *Client) SubFields() *Resource[field.SubField] {
	return NewResource[field.SubField](c, "sub-fields")
}

func (c *Client) Frameworks() *Resource[framework.Framework] {
	return NewResource[framework.Framework](c, "frameworks")
}
