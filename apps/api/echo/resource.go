package echoapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/listing"
)

type (
	entityService[T listing.Record] interface {
		Schema() crud.Schema[T]
		Query(ctx context.Context, q listing.Query) ([]T, error)
		Get(ctx context.Context, id int) (T, error)
		Create(ctx context.Context, in crud.Input[T]) (T, error)
		Update(ctx context.Context, id int, p crud.Patch[T]) (T, error)
		SetActive(ctx context.Context, id int, active bool) (T, error)
		Delete(ctx context.Context, id int) error
	}

	// form is a payload used both to create and to edit a record.
	form[T any] interface {
		crud.Input[T]
		crud.Patch[T]
	}

	resource[T listing.Record] struct {
		svc      entityService[T]
		read     echo.MiddlewareFunc
		write    echo.MiddlewareFunc
		newInput func() crud.Input[T]
		newPatch func() crud.Patch[T]
	}

	StatusRequest struct {
		IsActive *bool `json:"isActive"`
	}
)

func formResource[T listing.Record](svc entityService[T], read, write echo.MiddlewareFunc, newForm func() form[T]) resource[T] {
	return resource[T]{
		svc:      svc,
		read:     read,
		write:    write,
		newInput: func() crud.Input[T] { return newForm() },
		newPatch: func() crud.Patch[T] { return newForm() },
	}
}

// registerResource mounts the CRUD endpoints of one entity under /<plural>.
func registerResource[T listing.Record](g *echo.Group, res resource[T]) {
	rg := g.Group("/" + res.svc.Schema().Plural)
	rg.GET("", res.query, res.read)
	rg.POST("", res.create, res.write)
	rg.GET("/:id", res.retrieve, res.read)
	rg.PUT("/:id", res.update, res.write)
	rg.PATCH("/:id/status", res.setStatus, res.write)
	rg.DELETE("/:id", res.destroy, res.write)
}

func (res resource[T]) name() string {
	return res.svc.Schema().Name
}

func (res resource[T]) query(ctx echo.Context) error {
	q, err := bindListQuery(ctx)
	if err != nil {
		return err
	}
	recs, err := res.svc.Query(ctx.Request().Context(), q)
	if err != nil {
		return errors.Wrapf(err, "querying %s", res.svc.Schema().Plural)
	}
	return ctx.JSON(http.StatusOK, core.OKList(recs))
}

func (res resource[T]) create(ctx echo.Context) error {
	in := res.newInput()
	if err := ctx.Bind(in); err != nil {
		return errors.Wrapf(err, "binding %s input", res.name())
	}
	rec, err := res.svc.Create(ctx.Request().Context(), in)
	if err != nil {
		return errors.Wrapf(err, "creating %s", res.name())
	}
	return ctx.JSON(http.StatusCreated, core.OK(rec))
}

func (res resource[T]) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	rec, err := res.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrapf(err, "getting %s", res.name())
	}
	return ctx.JSON(http.StatusOK, core.OK(rec))
}

func (res resource[T]) update(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	p := res.newPatch()
	if err := ctx.Bind(p); err != nil {
		return errors.Wrapf(err, "binding %s patch", res.name())
	}
	rec, err := res.svc.Update(ctx.Request().Context(), id, p)
	if err != nil {
		return errors.Wrapf(err, "updating %s", res.name())
	}
	return ctx.JSON(http.StatusOK, core.OK(rec))
}

func (res resource[T]) setStatus(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	var data StatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusRequest")
	}
	if data.IsActive == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "isActive", Error: "this field is required"})
	}
	rec, err := res.svc.SetActive(ctx.Request().Context(), id, *data.IsActive)
	if err != nil {
		return errors.Wrapf(err, "setting %s status", res.name())
	}
	return ctx.JSON(http.StatusOK, core.OK(rec))
}

func (res resource[T]) destroy(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	if err := res.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrapf(err, "deleting %s", res.name())
	}
	return ctx.JSON(http.StatusOK, core.Envelope[any]{Success: true, Message: res.name() + " deleted"})
}

// paramID reads the :id path param; malformed IDs are not found.
func paramID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}
