package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"event-admin-console/internal/apiclient"
	"event-admin-console/internal/guard"
	"event-admin-console/internal/session/domain"
	"event-admin-console/internal/validation"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	// ExitUsage also covers guard denials.
	ExitUsage = 2
	// ExitLoggedOut means a failed token refresh ended the session mid-command.
	ExitLoggedOut = 3
)

const loggedOutNotice = "you have been logged out"

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

var errNotLoggedIn = errors.New("not logged in")

type command struct {
	usage string
	// role is the role the command requires; "" means any signed-in user.
	role string
	// public commands skip the route guard.
	public bool
	run    func(ctx context.Context, a *App, args []string) error
}

var commands = map[string]command{
	"login":     {usage: "login -email EMAIL -password PASSWORD", public: true, run: runLogin},
	"logout":    {usage: "logout", public: true, run: runLogout},
	"whoami":    {usage: "whoami", public: true, run: runWhoami},
	"guard":     {usage: "guard [-role ROLE]", public: true, run: runGuard},
	"events":    {usage: "events list|get ID|search [-q TEXT] [-status STATUS]|delete ID|create -title ... -start ... -end ...", run: runEvents},
	"customers": {usage: "customers list|create -company ... -email ...", role: RoleITAdmin, run: runCustomers},
	"admins":    {usage: "admins list", role: RoleITAdmin, run: runAdmins},
	"roles":     {usage: "roles", role: RoleITAdmin, run: runRoles},
	"stats":     {usage: "stats", role: RoleITAdmin, run: runStats},
	"themes":    {usage: "themes [-active]", run: runThemes},
	"fonts":     {usage: "fonts [-active]", run: runFonts},
}

// RoleITAdmin is the role allowed into the administration commands.
const RoleITAdmin = "it-admin"

// Run executes one console invocation and returns its exit code.
func Run(ctx context.Context, env Env, args []string) int {
	stderr := env.Stderr
	if stderr == nil {
		stderr = io.Discard
	}
	global := flag.NewFlagSet("console", flag.ContinueOnError)
	global.SetOutput(stderr)
	jsonOut := global.Bool("json", false, "print results as JSON")
	global.Usage = func() { printUsage(stderr) }
	if err := global.Parse(args); err != nil {
		return ExitUsage
	}
	rest := global.Args()
	if len(rest) == 0 {
		printUsage(stderr)
		return ExitUsage
	}
	name := rest[0]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", name)
		printUsage(stderr)
		return ExitUsage
	}

	app, err := NewApp(ctx, env)
	if err != nil {
		fmt.Fprintln(stderr, "console:", err)
		return ExitError
	}
	defer app.Close()
	app.jsonOut = *jsonOut

	app.facade.RestoreSession(ctx)

	if !cmd.public {
		d := app.guard.Evaluate(ctx, app.facade.State(), cmd.role)
		switch d.Action {
		case guard.ActionRender:
		case guard.ActionRedirectLanding:
			fmt.Fprintf(stderr, "login required (redirect to %s)\n", d.Route)
			return ExitUsage
		case guard.ActionRedirectUnauthorized:
			fmt.Fprintf(stderr, "permission denied: %s requires role %s (redirect to %s)\n", name, cmd.role, d.Route)
			return ExitUsage
		default:
			fmt.Fprintf(stderr, "session not ready (%s)\n", d.Action)
			return ExitError
		}
	}

	err = cmd.run(ctx, app, rest[1:])
	if name != "logout" && app.nav.Count() > 0 {
		fmt.Fprintln(stderr, loggedOutNotice)
		return ExitLoggedOut
	}
	if err != nil {
		return reportError(stderr, name, cmd, err)
	}
	return ExitOK
}

func reportError(w io.Writer, name string, cmd command, err error) int {
	var uerr *usageError
	var verr *validation.Error
	var lerr *domain.LoginError
	switch {
	case errors.Is(err, flag.ErrHelp):
		return ExitUsage
	case errors.As(err, &uerr):
		fmt.Fprintf(w, "%s\nusage: console %s\n", uerr.msg, cmd.usage)
		return ExitUsage
	case errors.As(err, &verr):
		fmt.Fprintf(w, "%s: %s\n", verr.Field, verr.Message)
	case errors.As(err, &lerr):
		msg := lerr.Message
		if msg == "" {
			msg = domain.DefaultLoginMessage
		}
		fmt.Fprintln(w, msg)
	case apiclient.StatusOf(err) != 0:
		fmt.Fprintf(w, "%s: %s (status %d)\n", name, apiclient.MessageOf(err), apiclient.StatusOf(err))
	default:
		fmt.Fprintf(w, "%s: %v\n", name, err)
	}
	return ExitError
}

func printUsage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString("usage: console [-json] <command> [args]\n\ncommands:\n")
	for _, n := range names {
		fmt.Fprintf(&b, "  %s\n", commands[n].usage)
	}
	fmt.Fprint(w, b.String())
}
