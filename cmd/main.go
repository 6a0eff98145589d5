package main

import (
	"FileGrep/internal"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// Injected at build time via -ldflags.
var version = "dev"

func main() {
	app := newApp()
	if err := app.Run(hoistFlags(app, os.Args)); err != nil {
		logrus.Fatal(err)
	}
}

// hoistFlags moves flags given after the pattern or files in front of them,
// since flag parsing stops at the first positional argument. Everything after
// "--" stays positional. Subcommand invocations are left alone.
func hoistFlags(app *cli.App, args []string) []string {
	if len(args) < 2 {
		return args
	}
	valued := make(map[string]bool)
	for _, f := range app.Flags {
		_, isBool := f.(*cli.BoolFlag)
		for _, n := range f.Names() {
			valued[n] = !isBool
		}
	}

	var opts, pos []string
	dashdash := false
	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		a := rest[i]
		if a == "--" {
			dashdash = true
			pos = append(pos, rest[i+1:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			if len(pos) == 0 && app.Command(a) != nil {
				return args
			}
			pos = append(pos, a)
			continue
		}
		opts = append(opts, a)
		name := strings.TrimLeft(a, "-")
		if !strings.Contains(name, "=") && valued[name] && i+1 < len(rest) {
			i++
			opts = append(opts, rest[i])
		}
	}

	out := append([]string{args[0]}, opts...)
	if dashdash {
		out = append(out, "--")
	}
	return append(out, pos...)
}

func newApp() *cli.App {
	// -v belongs to --invert-match.
	cli.VersionFlag = &cli.BoolFlag{Name: "version", Usage: "print the version"}

	return &cli.App{
		Name:    "FileGrep",
		Usage:   "A grep-like tool with replacing capabilities",
		Version: version,
		UsageText: "filegrep [OPTIONS] <pattern> <file1> [file2]...\n" +
			"filegrep [OPTIONS] -r <replacement> <pattern> <file1> [file2]...\n" +
			"Options may also follow the files; use -- before a pattern starting with '-'.",
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "replace",
				Aliases: []string{"r"},
				Usage:   "Enable find-and-replace mode with this replacement text",
			},
			&cli.BoolFlag{
				Name:    "ignore-case",
				Aliases: []string{"i"},
				Usage:   "Perform case-insensitive matching (ASCII only)",
			},
			&cli.BoolFlag{
				Name:    "line-number",
				Aliases: []string{"n"},
				Usage:   "Report the first selected line number per file",
			},
			&cli.BoolFlag{
				Name:    "invert-match",
				Aliases: []string{"v"},
				Usage:   "Select non-matching lines in the per-file line summary",
			},
			&cli.BoolFlag{
				Name:    "recursive",
				Aliases: []string{"R"},
				Usage:   "Expand directory arguments into the files below them",
			},
			&cli.IntFlag{
				Name:  "depth",
				Usage: "Max directory depth with --recursive (0 - unlimited)",
			},
			&cli.StringSliceFlag{
				Name:  "whitelist",
				Usage: "Only take these extensions when expanding directories (e.g. txt,log). Use without dot.",
			},
			&cli.StringSliceFlag{
				Name:  "blacklist",
				Usage: "Skip these extensions when expanding directories. If whitelist is set, blacklist is ignored.",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Skip paths matching these globs when expanding directories (supports **)",
			},
			&cli.BoolFlag{
				Name:  "no-ignore",
				Usage: "Do not honour .gitignore when expanding directories",
			},
			&cli.BoolFlag{
				Name:  "archives",
				Usage: "Search inside archives (.zip,.tar,.gz,.bz2,.xz,.rar,.7z,...)",
			},
			&cli.IntFlag{
				Name:  "threads",
				Usage: "Max concurrent file workers (0 - one per file)",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Progress report interval",
				Value: internal.DefaultReportInterval,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Global timeout for the batch (e.g. 10m, 1h)",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Show a progress bar of finished files on stderr",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML file with default settings",
			},
			&cli.StringFlag{
				Name:  "logfile",
				Usage: "Write logs into file instead of stdout/stderr",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format: text or plain",
				Value: "text",
			},
		},
		Action:   run,
		Commands: []*cli.Command{generateCommand()},
	}
}

func run(c *cli.Context) error {
	settings, err := internal.LoadSettings(c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	log := internal.NewLogger(internal.LogOptions{
		Level:  pickString(c, "log-level", settings.LogLevel),
		Format: pickString(c, "log-format", settings.LogFormat),
		File:   pickString(c, "logfile", settings.LogFile),
	})
	defer log.Close()

	cfg := internal.Config{
		Replacement:    c.String("replace"),
		ReplaceMode:    c.IsSet("replace"),
		IgnoreCase:     pickBool(c, "ignore-case", settings.IgnoreCase),
		LineNumber:     c.Bool("line-number"),
		InvertMatch:    c.Bool("invert-match"),
		Recursive:      pickBool(c, "recursive", settings.Recursive),
		Depth:          pickInt(c, "depth", settings.Depth),
		Whitelist:      pickSlice(c, "whitelist", settings.Whitelist),
		Blacklist:      pickSlice(c, "blacklist", settings.Blacklist),
		Exclude:        pickSlice(c, "exclude", settings.Exclude),
		NoIgnore:       pickBool(c, "no-ignore", settings.NoIgnore),
		Archives:       pickBool(c, "archives", settings.Archives),
		Threads:        pickInt(c, "threads", settings.Threads),
		ReportInterval: settings.ReportInterval,
		Timeout:        c.Duration("timeout"),
		Progress:       c.Bool("progress"),
	}
	if c.IsSet("interval") {
		cfg.ReportInterval = c.Duration("interval")
	}
	if args := c.Args().Slice(); len(args) > 0 {
		cfg.Pattern = args[0]
		cfg.Files = args[1:]
	}
	if err := cfg.Validate(); err != nil {
		log.Errorf("Argument Error: %v", err)
		_ = cli.ShowAppHelp(c)
		return cli.Exit("", 1)
	}
	cfg.Prepare()

	// ctx with timeout + OS signals
	base := context.Background()
	var cancel context.CancelFunc
	if cfg.Timeout > 0 {
		base, cancel = context.WithTimeout(base, cfg.Timeout)
	} else {
		base, cancel = context.WithCancel(base)
	}
	defer cancel()

	ctx, stop := signal.NotifyContext(base, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Files = internal.ExpandInputs(ctx, &cfg, log)
	if len(cfg.Files) == 0 {
		return cli.Exit("No files to process", 1)
	}

	mode := "Search"
	if cfg.ReplaceMode {
		mode = "Replace"
	}
	// replace never folds case
	desc := internal.NewPlainPattern(cfg.Pattern, cfg.IgnoreCase && !cfg.ReplaceMode).Desc()
	log.Debugf("%s started: pattern=%s files=%d", mode, desc, len(cfg.Files))

	sum := internal.NewEngine(log).Run(ctx, &cfg)
	if ctx.Err() != nil {
		log.Warnf("%s cancelled: %v", mode, ctx.Err())
	}

	fmt.Fprintf(c.App.Writer,
		"\n======= %s finished in %s =======\nFiles processed: %d\nOccurrences: %d\nFiles replaced: %d\nErrors: %d\n",
		mode, sum.Elapsed, sum.Scanned, sum.Total, sum.Replaced, sum.Failed,
	)
	return nil
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Write a random-word corpus for benchmarking searches",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Usage: "Output directory", Required: true},
			&cli.IntFlag{Name: "files", Usage: "Number of files", Value: 16},
			&cli.IntFlag{Name: "size-kb", Usage: "Minimum size of each file in KB", Value: 500},
			&cli.StringFlag{Name: "dict", Usage: "Dictionary file, one word per line"},
			&cli.IntFlag{Name: "concurrency", Usage: "Max files written at once (0 - one goroutine per file)"},
			&cli.Uint64Flag{Name: "seed", Usage: "Random seed (0 - time based)"},
		},
		Action: func(c *cli.Context) error {
			log := internal.NewLogger(internal.LogOptions{
				Level:  c.String("log-level"),
				Format: c.String("log-format"),
				File:   c.String("logfile"),
			})
			defer log.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			_, err := internal.Generate(ctx, internal.GenerateOptions{
				Dir:         c.String("dir"),
				Files:       c.Int("files"),
				SizeKB:      c.Int("size-kb"),
				Dict:        c.String("dict"),
				Concurrency: c.Int("concurrency"),
				Seed:        c.Uint64("seed"),
			}, log)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}

func pickString(c *cli.Context, name, fallback string) string {
	if c.IsSet(name) || fallback == "" {
		return c.String(name)
	}
	return fallback
}

func pickBool(c *cli.Context, name string, fallback bool) bool {
	if c.IsSet(name) {
		return c.Bool(name)
	}
	return fallback
}

func pickInt(c *cli.Context, name string, fallback int) int {
	if c.IsSet(name) {
		return c.Int(name)
	}
	return fallback
}

func pickSlice(c *cli.Context, name string, fallback []string) []string {
	if c.IsSet(name) {
		return c.StringSlice(name)
	}
	return fallback
}
