package echoapi_test

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/uniguide/apps/api/echo"
	"github.com/trezcool/uniguide/core/event"
	"github.com/trezcool/uniguide/core/listing"
	"github.com/trezcool/uniguide/core/search"
	"github.com/trezcool/uniguide/core/subject"
	"github.com/trezcool/uniguide/core/user"
)

func TestServer_home(t *testing.T) {
	app := setup(t)

	rec := app.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to uniguide API!", rec.Body.String())

	rec = app.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	env := decode[any](t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "ok", env.Message)
}

func TestAuthAPI(t *testing.T) {
	app := setup(t)
	manager := app.createUser(t, "Manager", "manager@uniguide.test", user.RoleManager)
	retired := app.createUser(t, "Retired", "retired@uniguide.test", user.RoleManager)
	_, err := app.c.Users.SetActive(context.Background(), retired.ID, false)
	require.NoError(t, err)

	app.run(t, []httpTest{
		{
			name: "login: invalid email", method: http.MethodPost, path: "/api/auth/login",
			body:     map[string]string{"email": "manager", "password": testPassword},
			wantCode: http.StatusBadRequest, wantField: map[string]string{"email": "please enter a valid email address"},
		},
		{
			name: "login: wrong password", method: http.MethodPost, path: "/api/auth/login",
			body:     map[string]string{"email": "manager@uniguide.test", "password": "nope"},
			wantCode: http.StatusBadRequest, wantError: "invalid email or password",
		},
		{
			name: "login: inactive", method: http.MethodPost, path: "/api/auth/login",
			body:     map[string]string{"email": "retired@uniguide.test", "password": testPassword},
			wantCode: http.StatusBadRequest, wantError: "invalid email or password",
		},
		{name: "me: auth required", path: "/api/auth/me", wantCode: http.StatusUnauthorized, wantError: errMissingToken},
		{name: "me: bad token", path: "/api/auth/me", token: "lol", wantCode: http.StatusUnauthorized},
		{name: "me", path: "/api/auth/me", token: app.token(t, manager), wantCode: http.StatusOK},
		{
			name: "refresh: inactive", method: http.MethodPost, path: "/api/auth/token-refresh",
			token: app.token(t, retired), wantCode: http.StatusForbidden, wantError: "account deactivated",
		},
		{
			name: "password reset: unknown email", method: http.MethodPost, path: "/api/auth/password-reset",
			body: map[string]string{"email": "nobody@uniguide.test"}, wantCode: http.StatusOK,
		},
		{
			name: "password reset confirm: bad token", method: http.MethodPost, path: "/api/auth/password-reset/confirm",
			body:     map[string]string{"uid": "MQ", "token": "a-b", "password": "n3w-coursework", "confirmPassword": "n3w-coursework"},
			wantCode: http.StatusBadRequest, wantError: "invalid or expired password reset link",
		},
	})

	t.Run("login", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": " Manager@uniguide.test", "password": testPassword})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		env := decode[echoapi.LoginResponse](t, rec)
		assert.True(t, env.Success)
		assert.NotEmpty(t, env.Data.Token)
		assert.Equal(t, manager.ID, env.Data.User.ID)
		assert.NotNil(t, env.Data.User.LastLogin)
		assert.NotContains(t, rec.Body.String(), "passwordHash")

		rec = app.do(t, http.MethodPost, "/api/auth/token-refresh", env.Data.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.NotEmpty(t, decode[echoapi.LoginResponse](t, rec).Data.Token)
	})
}

func TestResourceAPI_subjects(t *testing.T) {
	app := setup(t)
	admin := app.token(t, app.createUser(t, "Admin", "admin@uniguide.test", user.RoleAdmin))
	manager := app.token(t, app.createUser(t, "Manager", "manager@uniguide.test", user.RoleManager))
	editor := app.token(t, app.createUser(t, "Editor", "editor@uniguide.test", user.RoleEditor))

	physics := map[string]string{"name": "Physics", "code": "phy", "level": "AL"}

	app.run(t, []httpTest{
		{name: "auth required", path: "/api/subjects", wantCode: http.StatusUnauthorized, wantError: errMissingToken},
		{
			name: "editors cannot create", method: http.MethodPost, path: "/api/subjects", token: editor,
			body: physics, wantCode: http.StatusForbidden, wantError: "permission denied",
		},
		{
			name: "validation", method: http.MethodPost, path: "/api/subjects", token: manager,
			body:     map[string]string{"name": " ", "code": "p", "level": "XL"},
			wantCode: http.StatusBadRequest,
			wantField: map[string]string{
				"name":  "this field is required",
				"level": "level must be one of [AL OL]",
			},
		},
		{name: "create", method: http.MethodPost, path: "/api/subjects", token: manager, body: physics, wantCode: http.StatusCreated},
		{
			name: "unique code", method: http.MethodPost, path: "/api/subjects", token: admin, body: physics,
			wantCode: http.StatusBadRequest, wantField: map[string]string{"code": "a subject with this code already exists"},
		},
		{name: "editors can read", path: "/api/subjects", token: editor, wantCode: http.StatusOK},
		{name: "not found", path: "/api/subjects/42", token: editor, wantCode: http.StatusNotFound, wantError: "not found"},
		{name: "malformed id", path: "/api/subjects/lol", token: editor, wantCode: http.StatusNotFound},
		{
			name: "bad is_active", path: "/api/subjects?is_active=maybe", token: editor,
			wantCode: http.StatusBadRequest, wantField: map[string]string{"is_active": "must be true or false"},
		},
		{
			name: "status: required", method: http.MethodPatch, path: "/api/subjects/4/status", token: manager,
			body: map[string]string{}, wantCode: http.StatusBadRequest, wantField: map[string]string{"isActive": "this field is required"},
		},
	})

	ctx := context.Background()
	subs, err := app.c.Subjects.Query(ctx, listing.Query{})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	phy := subs[0]
	assert.Equal(t, "PHY", phy.Code, "codes are upper-cased")
	assert.NotZero(t, phy.AuditInfo.CreatedBy, "the author is recorded")

	_, err = app.c.Subjects.Create(ctx, &subject.Input{Name: "History", Code: "HIS", Level: "OL"})
	require.NoError(t, err)

	t.Run("list", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/subjects?search=hist&category=OL", editor, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		env := decode[[]subject.Subject](t, rec)
		require.Len(t, env.Data, 1)
		assert.Equal(t, "HIS", env.Data[0].Code)
		require.NotNil(t, env.Count)
		assert.Equal(t, 1, *env.Count)

		rec = app.do(t, http.MethodGet, "/api/subjects?ordering=-name&limit=1", editor, nil)
		env = decode[[]subject.Subject](t, rec)
		require.Len(t, env.Data, 1)
		assert.Equal(t, "Physics", env.Data[0].Name)
	})

	path := "/api/subjects/" + strconv.Itoa(phy.ID)

	t.Run("update", func(t *testing.T) {
		rec := app.do(t, http.MethodPut, path, manager, map[string]string{"name": "Applied Physics", "code": "APH", "level": "AL"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		env := decode[subject.Subject](t, rec)
		assert.Equal(t, "Applied Physics", env.Data.Name)
		assert.Equal(t, phy.ID, env.Data.ID)
	})

	t.Run("toggle status twice", func(t *testing.T) {
		rec := app.do(t, http.MethodPatch, path+"/status", manager, map[string]bool{"isActive": false})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.False(t, decode[subject.Subject](t, rec).Data.IsActive)

		rec = app.do(t, http.MethodPatch, path+"/status", manager, map[string]bool{"isActive": true})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decode[subject.Subject](t, rec).Data.IsActive)
	})

	t.Run("delete", func(t *testing.T) {
		rec := app.do(t, http.MethodDelete, path, editor, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = app.do(t, http.MethodDelete, path, manager, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decode[any](t, rec).Success)

		rec = app.do(t, http.MethodGet, path, manager, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestResourceAPI_editors(t *testing.T) {
	app := setup(t)
	admin := app.token(t, app.createUser(t, "Admin", "admin@uniguide.test", user.RoleAdmin))
	manager := app.token(t, app.createUser(t, "Manager", "manager@uniguide.test", user.RoleManager))

	newEditor := map[string]string{
		"firstName":       "Grace",
		"lastName":        "Hopper",
		"email":           "grace@uniguide.test",
		"password":        "c0mpiler-first",
		"confirmPassword": "c0mpiler-first",
	}
	mismatch := map[string]string{}
	for k, v := range newEditor {
		mismatch[k] = v
	}
	mismatch["confirmPassword"] = "c0mpiler-second"

	app.run(t, []httpTest{
		{
			name: "managers cannot create", method: http.MethodPost, path: "/api/editors", token: manager,
			body: newEditor, wantCode: http.StatusForbidden,
		},
		{
			name: "password mismatch", method: http.MethodPost, path: "/api/editors", token: admin, body: mismatch,
			wantCode: http.StatusBadRequest, wantField: map[string]string{"confirmPassword": "Passwords do not match"},
		},
		{name: "create", method: http.MethodPost, path: "/api/editors", token: admin, body: newEditor, wantCode: http.StatusCreated},
		{
			name: "email taken by an admin", method: http.MethodPost, path: "/api/editors", token: admin,
			body: map[string]string{
				"firstName": "Other", "email": "admin@uniguide.test", "password": "c0mpiler-first", "confirmPassword": "c0mpiler-first",
			},
			wantCode: http.StatusBadRequest, wantField: map[string]string{"email": "a user with this email already exists"},
		},
	})

	rec := app.do(t, http.MethodGet, "/api/editors", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[[]user.User](t, rec)
	require.Len(t, env.Data, 1, "only editors are listed")
	grace := env.Data[0]
	assert.Equal(t, []string{user.RoleEditor}, []string(grace.Roles))

	rec = app.do(t, http.MethodPut, "/api/editors/"+strconv.Itoa(grace.ID), admin, map[string]string{
		"firstName": "Grace", "lastName": "Brewster Hopper", "email": "grace@uniguide.test",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Brewster Hopper", decode[user.User](t, rec).Data.LastName)

	rec = app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "grace@uniguide.test", "password": "c0mpiler-first"})
	assert.Equal(t, http.StatusOK, rec.Code, "the password is kept when not set")
}

func TestPublicAPI(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	for _, in := range []event.Input{
		{Title: "Open day", StartDate: "2025-03-01", IsPublic: true},
		{Title: "Orientation", Date: "2025-01-15", IsPublic: true},
		{Title: "Staff meeting", StartDate: "2025-01-01"},
		{Title: "Graduation", StartDate: "2025-06-30", IsPublic: true},
		{Title: "Career fair", StartDate: "2025-09-10", IsPublic: true},
	} {
		in := in
		_, err := app.c.Events.Create(ctx, &in)
		require.NoError(t, err)
	}

	rec := app.do(t, http.MethodGet, "/api/public/events?limit=3", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[[]event.Event](t, rec)
	require.Len(t, env.Data, 3)
	titles := []string{env.Data[0].Title, env.Data[1].Title, env.Data[2].Title}
	assert.Equal(t, []string{"Orientation", "Open day", "Graduation"}, titles)

	rec = app.do(t, http.MethodGet, "/api/public/search?q=fair", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[search.Results](t, rec)
	require.Len(t, res.Data.Events, 1)
	assert.Equal(t, "Career fair", res.Data.Events[0].Title)
	assert.Empty(t, res.Data.Subjects)
}
