package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/event"
	"github.com/trezcool/uniguide/core/search"
)

// Public reads the public content of the homepage widget. No token needed.
type Public struct {
	c *Client
}

func (c *Client) Public() *Public {
	return &Public{c: c}
}

func limitParam(limit int) url.Values {
	if limit <= 0 {
		return nil
	}
	return url.Values{"limit": {strconv.Itoa(limit)}}
}

// Events lists the upcoming public events, earliest first.
func (p *Public) Events(ctx context.Context, limit int) core.Envelope[[]event.Event] {
	return do(ctx, p.c, call{
		op:     "public.events",
		method: http.MethodGet,
		path:   "public/events",
		query:  limitParam(limit),
	}, decodeList[event.Event])
}

func (p *Public) Search(ctx context.Context, term string, limit int) core.Envelope[search.Results] {
	params := limitParam(limit)
	if params == nil {
		params = url.Values{}
	}
	params.Set("q", term)
	return do(ctx, p.c, call{
		op:     "public.search",
		method: http.MethodGet,
		path:   "public/search",
		query:  params,
	}, decodeEnvelope[search.Results])
}
