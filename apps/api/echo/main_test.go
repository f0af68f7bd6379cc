package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trezcool/uniguide/apps/api/echo"
	"github.com/trezcool/uniguide/apps/di"
	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/user"
	"github.com/trezcool/uniguide/services/email"
	"github.com/trezcool/uniguide/services/logger"
	"github.com/trezcool/uniguide/storage/database/inmem"
)

const testPassword = "c0ursework!"

var errMissingToken = "missing or malformed jwt"

type testApp struct {
	conf *core.Config
	srv  *echoapi.Server
	c    *di.Container
}

func setup(t *testing.T) *testApp {
	t.Helper()
	conf := &core.Config{
		AppName:   "uniguide",
		SecretKey: "secret",
		TestMode:  true,
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
			DisableRequestLogs:        true,
		},
		PasswordResetTimeoutDelta: time.Hour,
	}
	c := di.NewContainer(conf, di.MemoryRepositories(inmemdb.Open()), emailsvc.NewMemoryService())
	srv := echoapi.NewServer(echoapi.ServerDeps{Conf: conf, Logger: logsvc.NewNopLogger(), Container: c})
	return &testApp{conf: conf, srv: srv, c: c}
}

func (app *testApp) createUser(t *testing.T, first, email string, roles ...string) user.User {
	t.Helper()
	usr, err := app.c.Users.Create(context.Background(), &user.NewUser{
		FirstName:       first,
		Email:           email,
		Roles:           roles,
		Password:        testPassword,
		ConfirmPassword: testPassword,
	})
	require.NoError(t, err)
	return usr
}

func (app *testApp) token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := echoapi.GenerateToken(echoapi.NewJWTConfig(app.conf), echoapi.GetUserClaims(app.conf, usr))
	require.NoError(t, err)
	return token
}

type httpTest struct {
	name      string
	method    string
	path      string
	body      interface{}
	token     string
	wantCode  int
	wantError string
	wantField map[string]string
}

func (app *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) core.Envelope[T] {
	t.Helper()
	var env core.Envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func (app *testApp) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := app.do(t, method, tt.path, tt.token, tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			env := decode[json.RawMessage](t, rec)
			if tt.wantCode >= http.StatusBadRequest {
				if env.Success {
					t.Errorf("failed! success = true for an error response")
				}
				if tt.wantError != "" && env.Error != tt.wantError {
					t.Errorf("failed! error = %q; wantError %q", env.Error, tt.wantError)
				}
			}
			for fld, msg := range tt.wantField {
				if env.Errors[fld] != msg {
					t.Errorf("failed! errors[%s] = %q; want %q", fld, env.Errors[fld], msg)
				}
			}
		})
	}
}
