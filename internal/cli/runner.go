package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/i18n"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/remote"
	"github.com/Makepad-fr/tada/internal/server"
	"github.com/Makepad-fr/tada/internal/todos"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

const logFileName = "tada.log"

// Options tune behavior from root flags and config.
type Options struct {
	Group  bool // print grouped by pending/done
	Config config.Config
	Dir    string // ~/.tada: credentials and the client log live here
	// Log overrides the client log file; tests point it at a buffer.
	Log *slog.Logger
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0
	case "serve":
		return doServe(opt)
	case "auth":
		return doAuth(a, opt)
	}

	level, err := logging.ParseLevel(opt.Config.LogLevel)
	if err != nil {
		ui.Fail(err.Error())
		return 2
	}
	log := opt.Log
	if log == nil {
		l, f, err := logging.OpenFile(filepath.Join(opt.Dir, logFileName), level)
		if err != nil {
			ui.Fail("log: " + err.Error())
			return 1
		}
		defer f.Close()
		log = l
	}
	ctl, err := newController(opt, log)
	if err != nil {
		ui.Fail(err.Error())
		return 2
	}
	sess := todos.NewSession(ctl, log)
	loc := i18n.New(opt.Config.Lang)
	ctx := context.Background()

	switch cmd {
	case "ls":
		if err := tui.Run(ctx, ctl, sess, loc); err != nil {
			ui.Fail("tui: " + err.Error())
			return 1
		}
		return 0

	case "print":
		return doPrint(ctx, ctl, loc, opt)

	case "add":
		return doAdd(ctx, ctl, loc, strings.Join(a, " "))

	case "done":
		if len(a) != 1 {
			ui.Fail("usage: todo done <id>")
			return 2
		}
		return doToggle(ctx, ctl, model.ID(a[0]))

	case "edit":
		if len(a) < 1 {
			ui.Fail("usage: todo edit <id> [title...]")
			return 2
		}
		return doEdit(ctx, ctl, sess, model.ID(a[0]), strings.Join(a[1:], " "))

	case "rm":
		if len(a) != 1 {
			ui.Fail("usage: todo rm <id>")
			return 2
		}
		return doRemove(ctx, ctl, model.ID(a[0]))
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(ui.Err)
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Fprintf(ui.Out, `todo - a client for a shared todo list

Usage:
  todo [flags] <subcommand> [args]

Subcommands:
  ls                       Interactive list (space toggle, a add, e edit, d delete, r refresh)
  print                    Print the list (use --group for pending/done)
  add [title...]           Create a todo (default title when omitted)
  done <id>                Toggle completed for todo <id>
  edit <id> [title...]     Replace the title of todo <id> (empty clears it)
  rm <id>                  Delete todo <id>
  serve                    Run a local todo server
  auth <login|logout|status>  Bearer token sent to the server

Examples:
  todo add "Buy milk"
  todo print --group
  todo done 2
  todo --server http://todo.example:8080 ls
`)
}

func newController(opt Options, log *slog.Logger) (*todos.Controller, error) {
	opts := []remote.Option{
		remote.WithLogger(log),
		remote.WithHTTPClient(&http.Client{Timeout: opt.Config.Timeout}),
	}
	ti, err := auth.Store{Dir: opt.Dir}.Get()
	if err != nil {
		log.Warn("ignoring unreadable credentials", "err", err)
	}
	if ti != nil {
		opts = append(opts, remote.WithToken(ti.Token))
	}
	rc, err := remote.New(opt.Config.Server, opts...)
	if err != nil {
		return nil, err
	}
	return todos.NewController(rc, log), nil
}

// fail prints err and maps it to an exit code.
func fail(prefix string, err error) int {
	ui.Fail(prefix + ": " + err.Error())
	if errors.Is(err, remote.ErrNotFound) || errors.Is(err, remote.ErrInvalidID) {
		fmt.Fprintln(ui.Err, ui.Dim("Hint: run `todo print` to see valid ids"))
		return 2
	}
	return 1
}

// -------------- subcommand impls ----------------

func doPrint(ctx context.Context, ctl *todos.Controller, loc i18n.Locale, opt Options) int {
	if err := ctl.Refresh(ctx); err != nil {
		return fail("refresh", err)
	}
	all := ctl.Todos()
	lines := ui.Header(all)
	lines = append(lines, "")
	if opt.Group {
		lines = append(lines, ui.GroupedLines(all, loc)...)
	} else {
		lines = append(lines, ui.TodoLines(all, loc)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(ui.Current().Muted, "Tip: add with `todo add \"Buy milk\"`"))
	ui.Panel(lines)
	return 0
}

func doAdd(ctx context.Context, ctl *todos.Controller, loc i18n.Locale, title string) int {
	title = strings.TrimSpace(title)
	if title == "" {
		title = loc.Placeholder()
	}
	if err := ctl.Create(ctx, model.Input{Title: title, Completed: false}); err != nil {
		return fail("add", err)
	}
	ui.OK("added")
	return 0
}

func doToggle(ctx context.Context, ctl *todos.Controller, id model.ID) int {
	if err := ctl.Refresh(ctx); err != nil {
		return fail("refresh", err)
	}
	if err := ctl.Toggle(ctx, id); err != nil {
		return fail("done", err)
	}
	ui.OK("toggled")
	return 0
}

func doEdit(ctx context.Context, ctl *todos.Controller, sess *todos.Session, id model.ID, title string) int {
	if err := ctl.Refresh(ctx); err != nil {
		return fail("refresh", err)
	}
	t, ok := ctl.Find(id)
	if !ok {
		return fail("edit", &remote.NotFoundError{Op: "edit", ID: id})
	}
	sess.Begin(t)
	if err := sess.SetDraft(title); err != nil {
		return fail("edit", err)
	}
	if err := sess.Commit(ctx); err != nil {
		return fail("edit", err)
	}
	ui.OK("saved")
	return 0
}

func doRemove(ctx context.Context, ctl *todos.Controller, id model.ID) int {
	if err := ctl.Delete(ctx, id); err != nil {
		return fail("rm", err)
	}
	ui.OK("removed")
	return 0
}

func doServe(opt Options) int {
	level, err := logging.ParseLevel(opt.Config.LogLevel)
	if err != nil {
		ui.Fail(err.Error())
		return 2
	}
	log := opt.Log
	if log == nil {
		log = logging.New(os.Stderr, level)
	}

	store := server.NewMemoryStore()
	if p := opt.Config.Serve.DataFile; p != "" {
		if store, err = server.OpenStore(p); err != nil {
			ui.Fail(err.Error())
			return 1
		}
	}
	srv := &http.Server{Addr: opt.Config.Serve.Addr, Handler: server.NewRouter(store, log)}

	errs := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr, "data_file", opt.Config.Serve.DataFile)
		errs <- srv.ListenAndServe()
	}()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(exit)

	select {
	case err := <-errs:
		ui.Fail("serve: " + err.Error())
		return 1
	case sig := <-exit:
		log.Info("signal caught", "sig", sig)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		ui.Fail("shutdown: " + err.Error())
		return 1
	}
	return 0
}

// ---------------------------------------------------
// Auth subcommands
// ---------------------------------------------------

func doAuth(a []string, opt Options) int {
	usage := "usage: todo auth <login|logout|status>"
	if len(a) != 1 {
		ui.Fail(usage)
		return 2
	}
	store := auth.Store{Dir: opt.Dir}
	switch a[0] {
	case "login":
		fmt.Fprint(ui.Out, "Paste your token: ")
		var token string
		if _, err := fmt.Scanln(&token); err != nil {
			ui.Fail("read token: " + err.Error())
			return 1
		}
		if err := store.Set(token); err != nil {
			ui.Fail("save token: " + err.Error())
			return 1
		}
		ui.OK("logged in")
		return 0
	case "logout":
		ti, _ := store.Get()
		if ti != nil && ti.Source == "env" {
			ui.OK("token is provided by " + auth.EnvToken + " env var (nothing to delete)")
			return 0
		}
		if err := store.Delete(); err != nil {
			ui.Fail("logout: " + err.Error())
			return 1
		}
		ui.OK("logged out")
		return 0
	case "status":
		ti, err := store.Get()
		if err != nil {
			ui.Fail(err.Error())
			return 1
		}
		if ti == nil {
			fmt.Fprintln(ui.Out, ui.Dim("not logged in"))
			fmt.Fprintln(ui.Out, "Run: todo auth login")
			return 0
		}
		fmt.Fprintf(ui.Out, "source: %s\n", ti.Source)
		if !ti.CreatedAt.IsZero() {
			fmt.Fprintf(ui.Out, "saved: %s\n", ti.CreatedAt.UTC().Format(time.RFC3339))
		}
		fmt.Fprintf(ui.Out, "server: %s\n", opt.Config.Server)
		fmt.Fprintln(ui.Out, "env override: "+auth.EnvToken)
		return 0
	}
	ui.Fail(usage)
	return 2
}
