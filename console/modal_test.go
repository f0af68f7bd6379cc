package console

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/uniguide/client"
	"github.com/trezcool/uniguide/client/session"
	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/event"
	"github.com/trezcool/uniguide/core/subject"
)

var checks = NewValidation()

// recordingAPI answers every request with the next of its canned bodies.
type recordingAPI struct {
	mu       sync.Mutex
	requests []string // "METHOD /path"
	bodies   []string
	respond  func(r *http.Request) (int, string)
}

func newRecordingAPI(t *testing.T, respond func(r *http.Request) (int, string)) (*client.Client, *recordingAPI) {
	t.Helper()
	api := &recordingAPI{respond: respond}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		api.mu.Lock()
		api.requests = append(api.requests, r.Method+" "+r.URL.Path)
		api.bodies = append(api.bodies, string(b))
		api.mu.Unlock()

		code, body := respond(r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL+"/api", session.NewMemory("tok"))
	require.NoError(t, err)
	return c, api
}

func (api *recordingAPI) log() ([]string, []string) {
	api.mu.Lock()
	defer api.mu.Unlock()
	return append([]string(nil), api.requests...), append([]string(nil), api.bodies...)
}

func TestModal_createSubject(t *testing.T) {
	ctx := context.Background()
	c, api := newRecordingAPI(t, func(r *http.Request) (int, string) {
		if r.Method == http.MethodPost {
			return http.StatusCreated, `{"success":true,"data":{"id":1,"name":"Physics","code":"PHY","level":"AL","isActive":true}}`
		}
		return http.StatusOK, `{"success":true,"data":[{"id":1,"name":"Physics","code":"PHY","level":"AL","isActive":true}],"count":1}`
	})
	page := SubjectsPage(c.Subjects(), checks)

	form := page.Create()
	require.NotNil(t, form)
	assert.Equal(t, Pristine, form.State())
	assert.Equal(t, "New subject", form.Title())

	form.Set("name", "Physics")
	form.Set("code", "phy")
	form.Set("level", "AL")
	assert.Equal(t, Dirty, form.State())

	require.True(t, form.Submit(ctx))
	assert.Equal(t, Closed, form.State())

	reqs, bodies := api.log()
	require.Equal(t, []string{"POST /api/subjects", "GET /api/subjects"}, reqs, "one create, then exactly one reload")
	assert.JSONEq(t, `{"name":"Physics","code":"PHY","level":"AL"}`, bodies[0])

	assert.Equal(t, Loaded, page.State())
	assert.Equal(t, [][]string{{"Physics", "PHY", "AL", "yes"}}, page.Rows())
	assert.Equal(t, Banner{Severity: Success, Text: `"Physics" created`}, page.Banner())
}

func TestModal_requiredFieldShortCircuits(t *testing.T) {
	c, api := newRecordingAPI(t, func(*http.Request) (int, string) { return http.StatusOK, `{"success":true}` })
	form := SubjectsPage(c.Subjects(), checks).Create()

	form.Set("code", "phy")
	form.Set("level", "AL")
	assert.False(t, form.Submit(context.Background()))

	reqs, _ := api.log()
	assert.Empty(t, reqs)
	assert.Equal(t, Rejected, form.State())
	assert.Contains(t, form.Errors(), "name")
	assert.Equal(t, "phy", form.Value("code"), "values are kept as typed")
}

func TestModal_editorPasswordMismatch(t *testing.T) {
	c, api := newRecordingAPI(t, func(*http.Request) (int, string) { return http.StatusOK, `{"success":true}` })
	form := EditorsPage(c.Editors(), checks).Create()

	form.Set("firstName", "Ada")
	form.Set("email", "ada@uniguide.test")
	form.Set("password", "abcdef")
	form.Set("confirmPassword", "abcdez")
	assert.False(t, form.Submit(context.Background()))

	assert.Equal(t, "Passwords do not match", form.Errors()["confirmPassword"])
	assert.NotEqual(t, Submitting, form.State(), "the form can be submitted again")
	reqs, _ := api.log()
	assert.Empty(t, reqs)
}

func TestModal_serverFailureKeepsValues(t *testing.T) {
	const msg = "please correct the highlighted fields"
	c, api := newRecordingAPI(t, func(*http.Request) (int, string) {
		return http.StatusBadRequest, `{"success":false,"error":"` + msg + `","errors":{"code":"a subject with this code already exists"}}`
	})
	form := SubjectsPage(c.Subjects(), checks).Create()

	values := map[string]string{"name": "Physics", "code": "PHY", "level": "AL", "description": "Mechanics & waves"}
	for k, v := range values {
		form.Set(k, v)
	}
	assert.False(t, form.Submit(context.Background()))

	assert.Equal(t, Rejected, form.State())
	assert.Equal(t, msg, form.SubmitError())
	assert.Equal(t, "a subject with this code already exists", form.Errors()["code"])
	for k, v := range values {
		assert.Equal(t, v, form.Value(k))
	}
	reqs, _ := api.log()
	assert.Equal(t, []string{"POST /api/subjects"}, reqs, "no reload after a failure")
}

func TestModal_doubleSubmit(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int
	create := func(context.Context, interface{}) core.Envelope[subject.Subject] {
		calls++
		close(started)
		<-release
		return core.OK(subject.Subject{Name: "Physics"})
	}
	m := NewCreateModal[subject.Subject]("New subject", SubjectFields, func() Payload { return new(subject.Input) }, create, checks)
	m.Open()
	m.Set("name", "Physics")
	m.Set("code", "PHY")
	m.Set("level", "AL")

	done := make(chan bool)
	go func() { done <- m.Submit(ctx) }()
	<-started

	assert.Equal(t, Submitting, m.State())
	assert.False(t, m.Submit(ctx))
	m.Set("name", "Chemistry")
	assert.Equal(t, "Physics", m.Value("name"), "the form is disabled while submitting")

	close(release)
	assert.True(t, <-done)
	assert.Equal(t, 1, calls)
	assert.False(t, m.Submit(ctx), "closed forms do not submit")
}

func TestModal_edit(t *testing.T) {
	ctx := context.Background()
	var sent struct {
		id      int
		payload json.RawMessage
	}
	update := func(_ context.Context, id int, payload interface{}) core.Envelope[event.Event] {
		sent.id = id
		sent.payload, _ = json.Marshal(payload)
		return core.OK(event.Event{Base: crud.Base{ID: id}})
	}
	fields := []FormField{
		{Key: "title", Label: "Title"},
		{Key: "startDate", Label: "Start date", Kind: Date},
		{Key: "endDate", Label: "End date", Kind: Date},
		{Key: "isPublic", Label: "Public", Kind: Checkbox},
		{Key: "status", Label: "Status", Kind: Select, Options: event.Statuses},
	}
	m := NewEditModal[event.Event]("Edit event", fields, func() Payload { return new(event.Input) }, update, checks)

	start, err := core.ParseTime("2025-03-01")
	require.NoError(t, err)
	openDay := event.Event{Base: crud.Base{ID: 4}, Title: "Open day", StartDate: start, IsPublic: true, Status: event.StatusUpcoming}
	fair := event.Event{Base: crud.Base{ID: 5}, Title: "Career fair", StartDate: start, Status: event.StatusUpcoming}

	m.OpenWith(openDay)
	assert.Equal(t, map[string]string{
		"title":     "Open day",
		"startDate": "2025-03-01",
		"endDate":   "",
		"isPublic":  "true",
		"status":    "upcoming",
	}, m.Values())

	m.Set("endDate", "2025-02-01")
	assert.False(t, m.Submit(ctx))
	assert.Equal(t, "end date cannot be before the start date", m.Errors()["endDate"])

	m.Close()
	assert.Equal(t, "2025-02-01", m.Value("endDate"), "closing keeps the values until reopened")

	m.OpenWith(fair)
	assert.Equal(t, "Career fair", m.Value("title"))
	assert.Empty(t, m.Value("endDate"))
	assert.Empty(t, m.Errors())

	var saved event.Event
	m.OnSuccess = func(_ context.Context, e event.Event) { saved = e }
	m.Set("isPublic", "true")
	require.True(t, m.Submit(ctx))
	assert.Equal(t, 5, sent.id)
	assert.Equal(t, 5, saved.ID)
	assert.JSONEq(t, `{"title":"Career fair","startDate":"2025-03-01","isPublic":true,"status":"upcoming"}`, string(sent.payload))
}

func TestModal_numberField(t *testing.T) {
	create := func(context.Context, interface{}) core.Envelope[subject.Subject] {
		t.Fatal("invalid forms are not sent")
		return core.Envelope[subject.Subject]{}
	}
	fields := []FormField{{Key: "name", Label: "Name"}, {Key: "level", Label: "Level", Kind: Number}}
	m := NewCreateModal[subject.Subject]("New framework", fields, func() Payload { return new(frameworkForm) }, create, checks)
	m.Open()
	m.Set("name", "NVQ")
	m.Set("level", "ten")
	assert.False(t, m.Submit(context.Background()))
	assert.Equal(t, "must be a whole number", m.Errors()["level"])
}

type frameworkForm struct {
	Name  string `json:"name" validate:"required"`
	Level int    `json:"level" validate:"required,min=1,max=10"`
}

func (f *frameworkForm) Clean() {}
