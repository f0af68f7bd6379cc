package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/event"
	"github.com/trezcool/uniguide/core/listing"
	"github.com/trezcool/uniguide/core/search"
)

const defaultUpcomingLimit = 3

type publicAPI struct {
	events *crud.Service[event.Event]
	search *search.Service
}

// registerPublicAPI mounts the un-authed endpoints of the homepage widgets.
func registerPublicAPI(g *echo.Group, events *crud.Service[event.Event], searchSvc *search.Service) {
	api := publicAPI{events: events, search: searchSvc}
	pg := g.Group("/public")
	pg.GET("/events", api.upcomingEvents)
	pg.GET("/search", api.searchAll)
}

func queryLimit(ctx echo.Context, def int) (int, error) {
	v := ctx.QueryParam(limitParam)
	if v == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(v)
	if err != nil || limit < 0 {
		return 0, core.NewValidationError(nil, core.FieldError{Field: limitParam, Error: "must be a positive integer"})
	}
	return limit, nil
}

// upcomingEvents lists the active public events, earliest first: GET /public/events?limit=3
func (api publicAPI) upcomingEvents(ctx echo.Context) error {
	limit, err := queryLimit(ctx, defaultUpcomingLimit)
	if err != nil {
		return err
	}
	active := true
	events, err := api.events.Query(ctx.Request().Context(), listing.Query{Active: &active})
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	return ctx.JSON(http.StatusOK, core.OKList(event.Upcoming(events, limit)))
}

// searchAll looks up the public content: GET /public/search?q=
func (api publicAPI) searchAll(ctx echo.Context) error {
	limit, err := queryLimit(ctx, search.DefaultLimit)
	if err != nil {
		return err
	}
	res, err := api.search.Search(ctx.Request().Context(), ctx.QueryParam("q"), limit)
	if err != nil {
		return errors.Wrap(err, "searching")
	}
	n := res.Count()
	return ctx.JSON(http.StatusOK, core.Envelope[search.Results]{Success: true, Data: res, Count: &n})
}
