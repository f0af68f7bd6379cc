package crud

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/listing"
)

var ErrNotFound = errors.New("not found")

type (
	// Input is the payload of a create form.
	Input[T any] interface {
		Clean()
		Record() T
	}

	// Patch is the payload of an edit form, applied onto the stored record.
	Patch[T any] interface {
		Clean()
		Apply(rec *T)
	}

	// Checker is implemented by payloads with rules validation tags cannot express.
	Checker interface {
		Check() []core.FieldError
	}

	Repository[T any] interface {
		Insert(ctx context.Context, rec T) (T, error)
		All(ctx context.Context) ([]T, error)
		Get(ctx context.Context, id int) (T, error)
		Save(ctx context.Context, rec T) (T, error)
		Delete(ctx context.Context, ids ...int) error
	}

	Option func(*options)

	options struct {
		pub    Publisher
		logger core.Logger
	}

	Service[T listing.Record] struct {
		schema   Schema[T]
		repo     Repository[T]
		validate *validator.Validate
		opts     options

		NowFunc func() time.Time // mockable
	}
)

// WithPublisher sets where committed changes are published.
func WithPublisher(pub Publisher) Option {
	return func(o *options) { o.pub = pub }
}

// WithLogger sets the logger used to report publishing failures.
func WithLogger(logger core.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func NewService[T listing.Record](schema Schema[T], repo Repository[T], validate *validator.Validate, opts ...Option) *Service[T] {
	o := options{pub: NopPublisher}
	for _, opt := range opts {
		opt(&o)
	}
	return &Service[T]{
		schema:   schema,
		repo:     repo,
		validate: validate,
		opts:     o,
		NowFunc:  time.Now,
	}
}

func (svc *Service[T]) Schema() Schema[T] { return svc.schema }

// Validate cleans and validates a create or edit payload.
func (svc *Service[T]) Validate(payload interface{ Clean() }) error {
	payload.Clean()
	if err := svc.validate.Struct(payload); err != nil {
		return err
	}
	if c, ok := payload.(Checker); ok {
		if flds := c.Check(); len(flds) > 0 {
			return core.NewValidationError(nil, flds...)
		}
	}
	return nil
}

func (svc *Service[T]) Create(ctx context.Context, in Input[T]) (T, error) {
	var zero T
	if err := svc.Validate(in); err != nil {
		return zero, err
	}

	rec := in.Record()
	if err := svc.prepare(ctx, &rec); err != nil {
		return zero, err
	}

	now := svc.NowFunc().UTC()
	base := svc.schema.Base(&rec)
	base.ID = 0
	base.IsActive = true
	base.CreatedAt = now
	base.UpdatedAt = now
	base.AuditInfo = Audit{CreatedBy: ActorFrom(ctx), UpdatedBy: ActorFrom(ctx)}
	svc.stamp(&rec, now)

	rec, err := svc.repo.Insert(ctx, rec)
	if err != nil {
		return zero, errors.Wrapf(err, "inserting %s", svc.schema.Name)
	}
	svc.publish(ctx, ActionCreate, rec)
	return rec, nil
}

// Query returns the records in scope matching q.
func (svc *Service[T]) Query(ctx context.Context, q listing.Query) ([]T, error) {
	all, err := svc.scoped(ctx)
	if err != nil {
		return nil, err
	}
	q.Clean()
	if len(q.Ordering) == 0 {
		q.Ordering = svc.schema.DefaultOrdering
	}
	return listing.Apply(all, svc.schema.Listing, q), nil
}

func (svc *Service[T]) Get(ctx context.Context, id int) (T, error) {
	var zero T
	rec, err := svc.repo.Get(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return zero, ErrNotFound
		}
		return zero, errors.Wrapf(err, "getting %s %d", svc.schema.Name, id)
	}
	if !svc.schema.inScope(rec) {
		return zero, ErrNotFound
	}
	return rec, nil
}

func (svc *Service[T]) Update(ctx context.Context, id int, p Patch[T]) (T, error) {
	var zero T
	rec, err := svc.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	if err := svc.Validate(p); err != nil {
		return zero, err
	}

	p.Apply(&rec)
	if err := svc.prepare(ctx, &rec); err != nil {
		return zero, err
	}

	now := svc.NowFunc().UTC()
	base := svc.schema.Base(&rec)
	base.ID = id
	base.UpdatedAt = now
	base.AuditInfo.UpdatedBy = ActorFrom(ctx)
	svc.stamp(&rec, now)

	rec, err = svc.repo.Save(ctx, rec)
	if err != nil {
		return zero, errors.Wrapf(err, "saving %s %d", svc.schema.Name, id)
	}
	svc.publish(ctx, ActionUpdate, rec)
	return rec, nil
}

// SetActive activates or deactivates a record. Setting the current state again is a no-op.
func (svc *Service[T]) SetActive(ctx context.Context, id int, active bool) (T, error) {
	var zero T
	rec, err := svc.Get(ctx, id)
	if err != nil {
		return zero, err
	}

	base := svc.schema.Base(&rec)
	if base.IsActive == active {
		return rec, nil
	}
	base.IsActive = active
	base.UpdatedAt = svc.NowFunc().UTC()
	base.AuditInfo.UpdatedBy = ActorFrom(ctx)

	rec, err = svc.repo.Save(ctx, rec)
	if err != nil {
		return zero, errors.Wrapf(err, "saving %s %d status", svc.schema.Name, id)
	}
	svc.publish(ctx, ActionStatus, rec)
	return rec, nil
}

func (svc *Service[T]) Delete(ctx context.Context, id int) error {
	rec, err := svc.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := svc.repo.Delete(ctx, id); err != nil {
		return errors.Wrapf(err, "deleting %s %d", svc.schema.Name, id)
	}
	svc.publish(ctx, ActionDelete, rec)
	return nil
}

func (svc *Service[T]) scoped(ctx context.Context) ([]T, error) {
	all, err := svc.repo.All(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s", svc.schema.Plural)
	}
	if svc.schema.Scope == nil {
		return all, nil
	}
	return listing.Filter(all, svc.schema.Scope), nil
}

func (svc *Service[T]) stamp(rec *T, now time.Time) {
	if svc.schema.Stamp != nil {
		svc.schema.Stamp(rec, now)
	}
}

// prepare resolves relations and checks uniqueness against the other records.
func (svc *Service[T]) prepare(ctx context.Context, rec *T) error {
	if svc.schema.Prepare != nil {
		if err := svc.schema.Prepare(ctx, rec); err != nil {
			return err
		}
	}
	if svc.schema.Unique == nil {
		return nil
	}

	// uniqueness spans the whole table, not only the scope
	all, err := svc.repo.All(ctx)
	if err != nil {
		return errors.Wrapf(err, "querying %s", svc.schema.Plural)
	}
	id := svc.schema.id(*rec)
	others := listing.Filter(all, func(o T) bool { return id == 0 || svc.schema.id(o) != id })
	if flds := svc.schema.Unique(*rec, others); len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func (svc *Service[T]) publish(ctx context.Context, action Action, rec T) {
	change := Change{
		ID:        uuid.New().String(),
		Entity:    svc.schema.Name,
		Action:    action,
		RecordID:  svc.schema.id(rec),
		ActorID:   ActorFrom(ctx),
		Timestamp: svc.NowFunc().UTC(),
	}
	if action != ActionDelete {
		change.Record = rec
	}
	if err := svc.opts.pub.Publish(ctx, change); err != nil && svc.opts.logger != nil {
		svc.opts.logger.Warn(fmt.Sprintf("publishing %s %s: %v", svc.schema.Name, action, err), err, change)
	}
}
