package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/listing"
)

var (
	searchParam   = "search"
	categoryParam = "category"
	statusParam   = "status"
	isActiveParam = "is_active"
	orderingParam = "ordering"
	limitParam    = "limit"
)

// bindListQuery reads the list filters from the query string:
// ?search=&category=&status=&is_active=&ordering=-a,b&limit=
func bindListQuery(ctx echo.Context) (listing.Query, error) {
	q := listing.Query{
		Search:   ctx.QueryParam(searchParam),
		Category: ctx.QueryParam(categoryParam),
		Status:   ctx.QueryParam(statusParam),
		Ordering: core.ParseOrdering(ctx.QueryParam(orderingParam)),
	}

	var flds []core.FieldError
	if v := ctx.QueryParam(isActiveParam); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			flds = append(flds, core.FieldError{Field: isActiveParam, Error: "must be true or false"})
		} else {
			q.Active = &active
		}
	}
	if v := ctx.QueryParam(limitParam); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			flds = append(flds, core.FieldError{Field: limitParam, Error: "must be a positive integer"})
		} else {
			q.Limit = limit
		}
	}
	if len(flds) > 0 {
		return q, core.NewValidationError(nil, flds...)
	}
	q.Clean()
	return q, nil
}
