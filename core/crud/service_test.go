package crud_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/listing"
	"github.com/trezcool/uniguide/storage/database/inmem"
)

type widget struct {
	crud.Base
	Name string `json:"name"`
	Code string `json:"code"`
}

func (w widget) Field(name string) (interface{}, bool) {
	switch name {
	case "name":
		return w.Name, true
	case "code":
		return w.Code, true
	}
	return w.Base.Field(name)
}

type widgetInput struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required,min=2"`
}

func (in *widgetInput) Clean() {
	in.Name = core.CleanString(in.Name)
	in.Code = core.CleanUpper(in.Code)
}

func (in *widgetInput) Record() widget { return widget{Name: in.Name, Code: in.Code} }

func (in *widgetInput) Apply(w *widget) {
	w.Name = in.Name
	w.Code = in.Code
}

type recorder struct {
	changes []crud.Change
	err     error
}

func (r *recorder) Publish(_ context.Context, c crud.Change) error {
	r.changes = append(r.changes, c)
	return r.err
}

func widgetSchema() crud.Schema[widget] {
	return crud.Schema[widget]{
		Name:    "widget",
		Plural:  "widgets",
		Table:   "widgets",
		Base:    func(w *widget) *crud.Base { return &w.Base },
		Listing: listing.Spec{SearchFields: []string{"name", "code"}},
		Unique: crud.UniqueField("code", "a widget with this code already exists", func(w widget) string {
			return w.Code
		}),
		DefaultOrdering: []core.DBOrdering{{Field: "name", Ascending: true}},
	}
}

func setup(t *testing.T, schema crud.Schema[widget]) (*crud.Service[widget], *recorder) {
	t.Helper()
	validate, _ := core.NewValidator()
	pub := &recorder{}
	svc := crud.NewService(schema, inmemdb.NewRepository(inmemdb.Open(), schema), validate, crud.WithPublisher(pub))
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	svc.NowFunc = func() time.Time { return now }
	return svc, pub
}

func TestService_Create(t *testing.T) {
	svc, pub := setup(t, widgetSchema())
	ctx := crud.WithActor(context.Background(), 7)

	w, err := svc.Create(ctx, &widgetInput{Name: " Physics ", Code: "phy"})
	require.NoError(t, err)
	assert.Equal(t, 1, w.ID)
	assert.Equal(t, "Physics", w.Name)
	assert.Equal(t, "PHY", w.Code)
	assert.True(t, w.IsActive)
	assert.Equal(t, svc.NowFunc(), w.CreatedAt)
	assert.Equal(t, crud.Audit{CreatedBy: 7, UpdatedBy: 7}, w.AuditInfo)

	require.Len(t, pub.changes, 1)
	assert.Equal(t, crud.ActionCreate, pub.changes[0].Action)
	assert.Equal(t, "widget", pub.changes[0].Entity)
	assert.Equal(t, 1, pub.changes[0].RecordID)
	assert.Equal(t, 7, pub.changes[0].ActorID)
	assert.NotEmpty(t, pub.changes[0].ID)

	t.Run("validation", func(t *testing.T) {
		_, err := svc.Create(ctx, &widgetInput{Name: "  ", Code: "x"})
		require.Error(t, err)
		flds := core.FieldErrors(err, nil)
		assert.Contains(t, flds, "name")
		assert.Contains(t, flds, "code")
		assert.Len(t, pub.changes, 1)
	})

	t.Run("unique", func(t *testing.T) {
		_, err := svc.Create(ctx, &widgetInput{Name: "Other", Code: "PHY"})
		var verr *core.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, map[string]string{"code": "a widget with this code already exists"}, core.FieldErrors(err, nil))
	})
}

func TestService_Update(t *testing.T) {
	svc, pub := setup(t, widgetSchema())
	ctx := context.Background()

	phy, err := svc.Create(ctx, &widgetInput{Name: "Physics", Code: "PHY"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &widgetInput{Name: "Chemistry", Code: "CHE"})
	require.NoError(t, err)

	later := phy.CreatedAt.Add(time.Hour)
	svc.NowFunc = func() time.Time { return later }

	w, err := svc.Update(crud.WithActor(ctx, 3), phy.ID, &widgetInput{Name: "Applied Physics", Code: "phy"})
	require.NoError(t, err)
	assert.Equal(t, phy.ID, w.ID)
	assert.Equal(t, "Applied Physics", w.Name)
	assert.Equal(t, phy.CreatedAt, w.CreatedAt)
	assert.Equal(t, later, w.UpdatedAt)
	assert.Equal(t, 3, w.AuditInfo.UpdatedBy)
	assert.Equal(t, crud.ActionUpdate, pub.changes[len(pub.changes)-1].Action)

	_, err = svc.Update(ctx, phy.ID, &widgetInput{Name: "Physics", Code: "CHE"})
	assert.Equal(t, map[string]string{"code": "a widget with this code already exists"}, core.FieldErrors(err, nil))

	_, err = svc.Update(ctx, 42, &widgetInput{Name: "Physics", Code: "PHY"})
	assert.Equal(t, crud.ErrNotFound, err)
}

func TestService_SetActive(t *testing.T) {
	svc, pub := setup(t, widgetSchema())
	ctx := context.Background()

	orig, err := svc.Create(ctx, &widgetInput{Name: "Physics", Code: "PHY"})
	require.NoError(t, err)

	off, err := svc.SetActive(ctx, orig.ID, false)
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	on, err := svc.SetActive(ctx, orig.ID, true)
	require.NoError(t, err)
	assert.Equal(t, orig.IsActive, on.IsActive)
	assert.Equal(t, orig.Name, on.Name)

	n := len(pub.changes)
	_, err = svc.SetActive(ctx, orig.ID, true)
	require.NoError(t, err)
	assert.Len(t, pub.changes, n, "no-op status change must not publish")
}

func TestService_QueryAndDelete(t *testing.T) {
	svc, pub := setup(t, widgetSchema())
	ctx := context.Background()

	for _, in := range []widgetInput{{"Physics", "PHY"}, {"Chemistry", "CHE"}, {"Applied Physics", "APH"}} {
		in := in
		_, err := svc.Create(ctx, &in)
		require.NoError(t, err)
	}

	got, err := svc.Query(ctx, listing.Query{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Applied Physics", got[0].Name, "default ordering applies")

	got, err = svc.Query(ctx, listing.Query{Search: "phys", Ordering: core.ParseOrdering("-name")})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Physics", got[0].Name)

	require.NoError(t, svc.Delete(ctx, got[0].ID))
	last := pub.changes[len(pub.changes)-1]
	assert.Equal(t, crud.ActionDelete, last.Action)
	assert.Nil(t, last.Record)

	_, err = svc.Get(ctx, got[0].ID)
	assert.Equal(t, crud.ErrNotFound, err)
	assert.Equal(t, crud.ErrNotFound, svc.Delete(ctx, got[0].ID))
}

func TestService_Scope(t *testing.T) {
	schema := widgetSchema()
	schema.Scope = func(w widget) bool { return strings.HasPrefix(w.Code, "A") }
	svc, _ := setup(t, schema)
	ctx := context.Background()

	out, err := svc.Create(ctx, &widgetInput{Name: "Biology", Code: "BIO"})
	require.NoError(t, err)
	in, err := svc.Create(ctx, &widgetInput{Name: "Algebra", Code: "ALG"})
	require.NoError(t, err)

	got, err := svc.Query(ctx, listing.Query{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, in.ID, got[0].ID)

	_, err = svc.Get(ctx, out.ID)
	assert.Equal(t, crud.ErrNotFound, err)
}

func TestService_publishFailureDoesNotFail(t *testing.T) {
	svc, pub := setup(t, widgetSchema())
	pub.err = errors.New("broker down")

	_, err := svc.Create(context.Background(), &widgetInput{Name: "Physics", Code: "PHY"})
	assert.NoError(t, err)
}
