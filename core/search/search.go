// Package search looks up the public content of the site: institutes, subjects, news and events.
package search

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/uniguide/core/event"
	"github.com/trezcool/uniguide/core/institute"
	"github.com/trezcool/uniguide/core/listing"
	"github.com/trezcool/uniguide/core/news"
	"github.com/trezcool/uniguide/core/subject"
)

// DefaultLimit bounds each result group when the caller gives no limit.
const DefaultLimit = 10

type (
	Querier[T any] interface {
		Query(ctx context.Context, q listing.Query) ([]T, error)
	}

	Results struct {
		Institutes []institute.Institute `json:"institutes"`
		Subjects   []subject.Subject     `json:"subjects"`
		News       []news.News           `json:"news"`
		Events     []event.Event         `json:"events"`
	}

	Service struct {
		institutes Querier[institute.Institute]
		subjects   Querier[subject.Subject]
		news       Querier[news.News]
		events     Querier[event.Event]
	}
)

func (r Results) Count() int {
	return len(r.Institutes) + len(r.Subjects) + len(r.News) + len(r.Events)
}

func NewService(
	institutes Querier[institute.Institute],
	subjects Querier[subject.Subject],
	newsQ Querier[news.News],
	events Querier[event.Event],
) *Service {
	return &Service{institutes: institutes, subjects: subjects, news: newsQ, events: events}
}

// Search returns the active records matching term: published news only, public events only.
// An empty term matches nothing.
func (svc *Service) Search(ctx context.Context, term string, limit int) (Results, error) {
	res := Results{
		Institutes: []institute.Institute{},
		Subjects:   []subject.Subject{},
		News:       []news.News{},
		Events:     []event.Event{},
	}
	q := listing.Query{Search: term}
	q.Clean()
	if q.Search == "" {
		return res, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	active := true
	q.Active = &active
	q.Limit = limit

	var err error
	if res.Institutes, err = svc.institutes.Query(ctx, q); err != nil {
		return Results{}, errors.Wrap(err, "searching institutes")
	}
	if res.Subjects, err = svc.subjects.Query(ctx, q); err != nil {
		return Results{}, errors.Wrap(err, "searching subjects")
	}

	nq := q
	nq.Status = news.StatusPublished
	if res.News, err = svc.news.Query(ctx, nq); err != nil {
		return Results{}, errors.Wrap(err, "searching news")
	}

	eq := q
	eq.Limit = 0
	events, err := svc.events.Query(ctx, eq)
	if err != nil {
		return Results{}, errors.Wrap(err, "searching events")
	}
	res.Events = event.Upcoming(events, limit)
	return res, nil
}
