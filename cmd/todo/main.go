package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/Makepad-fr/tada/internal/cli"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/ui"
)

func main() {
	dir, err := config.Dir()
	if err != nil {
		ui.Fail(err.Error())
		os.Exit(1)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		ui.Fail(err.Error())
		os.Exit(1)
	}

	// Root flags (apply to every subcommand) override config and env.
	flags := pflag.NewFlagSet("todo", pflag.ContinueOnError)
	groupPending := flags.Bool("group", false, "group print output by pending/done")
	flags.StringVar(&cfg.Server, "server", cfg.Server, "todo server base URL")
	flags.StringVar(&cfg.Lang, "lang", cfg.Lang, "language for generated titles (en, ko)")
	flags.StringVar(&cfg.Theme, "theme", cfg.Theme, "print theme (classic, neon, mono)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request HTTP timeout (0 waits forever)")
	flags.StringVar(&cfg.Serve.Addr, "addr", cfg.Serve.Addr, "listen address for serve")
	flags.StringVar(&cfg.Serve.DataFile, "data", cfg.Serve.DataFile, "JSON file persisting serve's todos")
	color := flags.Bool("color", false, "force ANSI colors even when not writing to a terminal")
	noColor := flags.Bool("no-color", false, "disable ANSI colors")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			cli.PrintHelp()
			os.Exit(0)
		}
		os.Exit(2)
	}
	ui.SetColorForcing(*color, *noColor)
	if err := ui.SetTheme(cfg.Theme); err != nil {
		ui.Fail(err.Error())
		os.Exit(2)
	}

	// Hand the remaining args to the CLI runner.
	args := flags.Args()
	if len(args) == 0 {
		cli.PrintHelp()
		os.Exit(2)
	}

	code := cli.Run(args, cli.Options{
		Group:  *groupPending,
		Config: cfg,
		Dir:    dir,
	})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
