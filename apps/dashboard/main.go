package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/trezcool/uniguide/client"
	"github.com/trezcool/uniguide/client/session"
	"github.com/trezcool/uniguide/console"
	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/services/logger"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewNopLogger()
	if conf.Debug {
		f, err := tea.LogToFile("dashboard.log", "dashboard")
		if err != nil {
			fail(err.Error())
			os.Exit(1)
		}
		defer f.Close()
		logger = logsvc.NewKitLogger(f, "debug")
	}

	store, err := session.NewFileStore(conf.Client.Credentials)
	if err != nil {
		fail(err.Error())
		os.Exit(1)
	}
	api, err := client.FromConfig(conf, store, client.WithLogger(logger))
	if err != nil {
		fail(err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, api, os.Args); err != nil {
		if err != errHelp {
			fail(err.Error())
		}
		stop()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  dashboard - open the dashboard of the signed in user")
	fmt.Println("  dashboard login -email EMAIL - sign in; the password is prompted")
	fmt.Println("  dashboard logout - forget the stored session")
	fmt.Println("  dashboard whoami - print the signed in user")
}

func run(ctx context.Context, api *client.Client, args []string) error {
	if len(args) < 2 {
		return openDashboard(ctx, api)
	}

	loginCmd := flag.NewFlagSet("login", flag.ContinueOnError)
	loginEmail := loginCmd.String("email", "", "The account email. The password will be prompted next.")

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *loginEmail == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Print("Password: ")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return err
		}
		env := api.Auth().Login(ctx, *loginEmail, string(pwd))
		if !env.Success {
			return errors.New(env.Error)
		}
		ok(fmt.Sprintf("signed in as %s (%s)", env.Data.User.Name(), env.Data.User.Role()))
		return nil

	case "logout":
		if err := api.Auth().Logout(); err != nil {
			return err
		}
		ok("signed out")
		return nil

	case "whoami":
		env := api.Auth().Me(ctx)
		if !env.Success {
			return notSignedIn(env.Error)
		}
		fmt.Printf("%s <%s> (%s)\n", env.Data.Name(), env.Data.Email, env.Data.Role())
		return nil

	default:
		printUsage()
		return errHelp
	}
}

func notSignedIn(msg string) error {
	return fmt.Errorf("%s; sign in with: dashboard login -email EMAIL", strings.TrimSuffix(msg, "."))
}

// openDashboard resolves the role of the signed in user and runs their dashboard until quit.
func openDashboard(ctx context.Context, api *client.Client) error {
	me := api.Auth().Me(ctx)
	if !me.Success {
		return notSignedIn(me.Error)
	}

	shell := console.NewShell(me.Data.Role(), console.Pages(api, console.NewValidation())...)
	if len(shell.Pages()) == 0 {
		return fmt.Errorf("no dashboard for role %q", me.Data.Role())
	}

	_, err := tea.NewProgram(newModel(ctx, shell, me.Data), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
