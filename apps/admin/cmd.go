package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"golang.org/x/term"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/user"
	"github.com/trezcool/uniguide/services/broker"
	"github.com/trezcool/uniguide/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword      // mockable
	gooseRunFunc     = database.RunMigrations // mockable
	watchFunc        = watchChanges           // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf       *core.Config
	db         *sql.DB
	users      *user.Service
	translator ut.Translator
	logger     core.Logger
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose command: up, up-by-one, up-to, down, down-to, redo, reset, status, version, fix")
	fmt.Println("  adduser -email EMAIL -first FIRST_NAME [-last LAST_NAME] [-role admin|manager|editor] - create a user; the password is prompted")
	fmt.Println("  resetpassword -email EMAIL - reset a user's password; the password is prompted")
	fmt.Println("  watch - print the change events published by the API")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserFirst := addUserCmd.String("first", "", "The user's first name.")
	addUserLast := addUserCmd.String("last", "", "The user's last name.")
	addUserRole := addUserCmd.String("role", user.RoleAdmin, "The user's role: "+strings.Join(user.AllRoles, ", "))

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return gooseRunFunc(ctx, cli.db, args[2], args[3:]...)

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addUserEmail == "" || *addUserFirst == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(ctx, user.NewUser{
			FirstName:       *addUserFirst,
			LastName:        *addUserLast,
			Email:           *addUserEmail,
			Roles:           []string{*addUserRole},
			Password:        pwd,
			ConfirmPassword: pwd,
		})

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(ctx, *resetPasswordEmail, pwd)

	case "watch":
		if cli.conf.NATS.URL == "" {
			return errors.New("watch: NATSURL is not configured")
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watchFunc(ctx, cli.conf, cli.logger, printChange)

	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	return string(pwd), err
}

// addUser creates an active user; validation errors are printed field by field.
func (cli *commandLine) addUser(ctx context.Context, nu user.NewUser) error {
	usr, err := cli.users.Create(ctx, &nu)
	if err != nil {
		return cli.fieldErrors(err)
	}
	fmt.Printf("created %s <%s> (%s)\n", usr.Name(), usr.Email, usr.Role())
	return nil
}

func (cli *commandLine) resetPassword(ctx context.Context, email, pwd string) error {
	if _, err := cli.users.SetPassword(ctx, email, pwd, pwd); err != nil {
		return cli.fieldErrors(err)
	}
	fmt.Println("password updated")
	return nil
}

// fieldErrors flattens validation errors into one line, sorted by field.
func (cli *commandLine) fieldErrors(err error) error {
	flds := core.FieldErrors(err, cli.translator)
	if len(flds) == 0 {
		return err
	}
	msgs := make([]string, 0, len(flds))
	for fld, msg := range flds {
		msgs = append(msgs, fld+": "+msg)
	}
	sort.Strings(msgs)
	return errors.New(strings.Join(msgs, "; "))
}

func watchChanges(ctx context.Context, conf *core.Config, logger core.Logger, handle func(crud.Change)) error {
	nc, js, err := broker.Connect(ctx, conf)
	if err != nil {
		return err
	}
	defer nc.Close()

	sub, err := broker.Subscribe(ctx, js, conf.NATS.Stream, logger, handle)
	if err != nil {
		return err
	}
	defer sub.Stop()

	fmt.Printf("watching %s.> (ctrl+c to stop)\n", conf.NATS.SubjectPrefix)
	<-ctx.Done()
	return nil
}

func printChange(c crud.Change) {
	fmt.Printf("%s %-8s %s #%d by #%d\n", c.Timestamp.Format("2006-01-02 15:04:05"), c.Action, c.Entity, c.RecordID, c.ActorID)
}
