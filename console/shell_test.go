package console

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/uniguide/core/user"
)

func pageNames(pages []Page) []string {
	names := make([]string, len(pages))
	for i, p := range pages {
		names[i] = p.Name()
	}
	return names
}

func TestShell_sections(t *testing.T) {
	c, _ := newRecordingAPI(t, func(*http.Request) (int, string) { return http.StatusOK, `[]` })
	pages := Pages(c, checks)

	admin := NewShell(user.RoleAdmin, pages...)
	assert.Equal(t, Sections[user.RoleAdmin], pageNames(admin.Pages()))

	manager := NewShell(user.RoleManager, pages...)
	assert.Equal(t, []string{"news", "events", "tasks", "subjects"}, pageNames(manager.Pages()))
	assert.Equal(t, "news", manager.Active().Name())

	assert.Nil(t, NewShell("guest", pages...).Active())
}

func TestShell_navigation(t *testing.T) {
	c, _ := newRecordingAPI(t, func(*http.Request) (int, string) { return http.StatusOK, `[]` })
	s := NewShell(user.RoleManager, Pages(c, checks)...)

	assert.True(t, s.Select("subjects"))
	assert.Equal(t, "Subjects", s.Active().Title())
	assert.False(t, s.Select("editors"), "not a manager section")
	assert.Equal(t, "subjects", s.Active().Name())

	s.Next()
	assert.Equal(t, "news", s.Active().Name(), "wraps around")
	s.Prev()
	assert.Equal(t, "subjects", s.Active().Name())
}

func TestShell_editRouting(t *testing.T) {
	ctx := context.Background()
	c, api := newRecordingAPI(t, func(r *http.Request) (int, string) {
		if r.Method == http.MethodPut {
			return http.StatusOK, `{"success":true,"data":{"id":2,"name":"Chemistry","code":"CHM","level":"OL","isActive":true}}`
		}
		return http.StatusOK, `{"success":true,"data":[` +
			`{"id":1,"name":"Physics","code":"PHY","level":"AL","isActive":true},` +
			`{"id":2,"name":"Chemistry","code":"CHE","level":"AL","isActive":true}]}`
	})
	s := NewShell(user.RoleAdmin, Pages(c, checks)...)
	require.True(t, s.Select("subjects"))
	require.True(t, s.Active().Load(ctx))

	_, ok := s.Edit(5)
	assert.False(t, ok)
	assert.Nil(t, s.Modal())

	form, ok := s.Edit(1)
	require.True(t, ok)
	assert.Equal(t, form, s.Modal())
	assert.Equal(t, 1, s.Selected())
	assert.Equal(t, "Chemistry", form.Value("name"))
	assert.Equal(t, "CHE", form.Value("code"))

	form.Set("code", "chm")
	form.Set("level", "OL")
	require.True(t, form.Submit(ctx))
	assert.Nil(t, s.Modal(), "closed on success")
	assert.Equal(t, -1, s.Selected())

	reqs, bodies := api.log()
	assert.Equal(t, []string{"GET /api/subjects", "PUT /api/subjects/2", "GET /api/subjects"}, reqs)
	assert.JSONEq(t, `{"name":"Chemistry","code":"CHM","level":"OL"}`, bodies[1])

	created := s.Create()
	require.NotNil(t, created)
	assert.False(t, created.IsEdit())
	assert.Empty(t, created.Value("name"))

	s.Select("news")
	assert.Nil(t, s.Modal(), "switching sections closes the modal")
	assert.Equal(t, Closed, created.State())
}
