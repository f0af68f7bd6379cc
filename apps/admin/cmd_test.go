package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/trezcool/uniguide/apps/di"
	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/user"
	"github.com/trezcool/uniguide/services/email"
	"github.com/trezcool/uniguide/services/logger"
	"github.com/trezcool/uniguide/storage/database"
	"github.com/trezcool/uniguide/storage/database/inmem"
)

func setup(t *testing.T) *commandLine {
	t.Helper()
	conf := &core.Config{
		AppName:                   "uniguide",
		SecretKey:                 "secret",
		TestMode:                  true,
		PasswordResetTimeoutDelta: time.Hour,
	}
	c := di.NewContainer(conf, di.MemoryRepositories(inmemdb.Open()), emailsvc.NewMemoryService())

	// start CLI
	return &commandLine{
		conf:       conf,
		users:      c.Users,
		translator: c.Translator,
		logger:     logsvc.NewNopLogger(),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		if tt.wantErr != nil || tt.wantErrStr != "" {
			t.Errorf("cli.run() error = nil, wantErr %v%s", tt.wantErr, tt.wantErrStr)
		}
		return
	}
	switch {
	case tt.wantErr != nil:
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
		}
	default:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(_ context.Context, _ *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}
	t.Cleanup(func() { gooseRunFunc = database.RunMigrations })

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		tt := tt
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no first name", args: []string{"adduser", "-email", "ada@uniguide.test"}, extra: "c0ursework!", wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-email", "ada@uniguide.test", "-first", "Ada"}, wantErr: errHelp},
		{name: "weak password", args: []string{"adduser", "-email", "ada@uniguide.test", "-first", "Ada"}, extra: "123456", wantErrStr: "password: password cannot be entirely numeric"},
		{name: "invalid role", args: []string{"adduser", "-email", "ada@uniguide.test", "-first", "Ada", "-role", "lol"}, extra: "c0ursework!", wantErrStr: "roles: invalid roles"},
		{name: "create", args: []string{"adduser", "-email", "Ada@UniGuide.test", "-first", "Ada", "-last", "Lovelace", "-role", "editor"}, extra: "c0ursework!"},
		{name: "duplicate email", args: []string{"adduser", "-email", "ada@uniguide.test", "-first", "Ada"}, extra: "c0ursework!", wantErrStr: "email: a user with this email already exists"},
	}
	for _, tt := range tests {
		tt := tt
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			pwd, _ := tt.extra.(string)
			mockPassword(pwd)
			tt.check(t, cli.run(args))
		})
	}

	usr, err := cli.users.GetByEmail(ctx, "ada@uniguide.test")
	if err != nil {
		t.Fatalf("GetByEmail() failed, %v", err)
	}
	if usr.Name() != "Ada Lovelace" || usr.Role() != user.RoleEditor || !usr.IsActive {
		t.Errorf("unexpected user %+v", usr)
	}
	if usr.CheckPassword("c0ursework!") != nil {
		t.Error("password was not set")
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	usr, err := cli.users.Create(ctx, &user.NewUser{
		FirstName:       "Awe",
		Email:           "awe@uniguide.test",
		Password:        "c0ursework!",
		ConfirmPassword: "c0ursework!",
	})
	if err != nil {
		t.Fatalf("Create() failed, %v", err)
	}

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@uniguide.test"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@uniguide.test"}, extra: "l3ssons!", wantErr: user.ErrNotFound},
		{name: "weak password", args: []string{"resetpassword", "-email", usr.Email}, extra: "abc", wantErrStr: "password: password must contain at least 6 characters"},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: "l3ssons!"},
	}
	for _, tt := range tests {
		tt := tt
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			pwd, _ := tt.extra.(string)
			mockPassword(pwd)
			tt.check(t, cli.run(args))
		})
	}

	refreshedUsr, err := cli.users.Get(ctx, usr.ID)
	if err != nil {
		t.Fatalf("Get() failed, %v", err)
	}
	if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
		t.Error("failed to update new password")
	}
	if refreshedUsr.CheckPassword("l3ssons!") != nil {
		t.Error("new password does not match")
	}
}

func Test_commandLine_watch(t *testing.T) {
	cli := setup(t)

	if err := cli.run([]string{"admin", "watch"}); err == nil {
		t.Error("watch without a broker URL must fail")
	}

	cli.conf.NATS.URL = "nats://localhost:4222"
	var got []crud.Change
	watchFunc = func(_ context.Context, _ *core.Config, _ core.Logger, handle func(crud.Change)) error {
		handle(crud.Change{Entity: "subject", Action: crud.ActionCreate, RecordID: 1})
		got = append(got, crud.Change{Entity: "subject"})
		return nil
	}
	t.Cleanup(func() { watchFunc = watchChanges })

	if err := cli.run([]string{"admin", "watch"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("watch handler called %d times, want 1", len(got))
	}
}
