package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/propbind/propbind/binding"
	"github.com/propbind/propbind/convert"
	"github.com/propbind/propbind/internal/conf"
	"github.com/propbind/propbind/internal/l10n"
	"github.com/propbind/propbind/source"
)

const (
	flagBaseDir          = "base-dir"
	flagPreferFilesystem = "prefer-filesystem"
	flagUseCache         = "use-cache"
	flagCacheSize        = "cache-size"
	flagLogLevel         = "log-level"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	defaults := conf.Configuration

	return &cli.App{
		Name:  "propbind",
		Usage: l10n.T("inspect properties files and the bindings declared on them"),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagBaseDir,
				Usage: l10n.T("resolve relative properties file names against `DIR`"),
				Value: defaults.BaseDir,
			},
			&cli.BoolFlag{
				Name:  flagPreferFilesystem,
				Usage: l10n.T("look on the filesystem before bundled resources"),
				Value: defaults.PreferFilesystem,
			},
			&cli.BoolFlag{
				Name:  flagUseCache,
				Usage: l10n.T("cache loaded properties files by name"),
				Value: defaults.UseCache,
			},
			&cli.IntFlag{
				Name:  flagCacheSize,
				Usage: l10n.T("maximum number of cached properties files (0 for no limit)"),
				Value: defaults.CacheSize,
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Usage: l10n.T("log `LEVEL` (DEBUG, INFO, WARN, ERROR)"),
				Value: defaults.LogLevel.String(),
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     l10n.T("print the properties of one or more files"),
				ArgsUsage: "FILE...",
				Action:    showAction,
			},
			{
				Name:  "check",
				Usage: l10n.T("resolve declared fields against a properties file"),
				Description: l10n.T("Each field is declared as [ID=]KEY:TYPE. Known types: %s.",
					strings.Join(knownTypes(), ", ")),
				ArgsUsage: "FILE FIELD...",
				Action:    checkAction,
			},
		},
	}
}

func setupLogging(c *cli.Context) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.String(flagLogLevel))); err != nil {
		return cli.Exit(l10n.T("invalid log level %q", c.String(flagLogLevel)), 2)
	}
	handler := slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}

func newLoader(c *cli.Context) (*source.Loader, error) {
	cfg := source.Config{
		BaseDir:          c.String(flagBaseDir),
		PreferFilesystem: c.Bool(flagPreferFilesystem),
		UseCache:         c.Bool(flagUseCache),
		CacheSize:        c.Int(flagCacheSize),
	}
	return source.NewLoader(cfg, source.WithLogger(slog.Default()))
}

func showAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit(l10n.T("at least one properties file is required"), 2)
	}
	loader, err := newLoader(c)
	if err != nil {
		return cli.Exit(err, 2)
	}

	for i, name := range c.Args().Slice() {
		src, err := loader.Load(name, nil)
		if err != nil {
			return cli.Exit(err, 1)
		}
		if i > 0 {
			fmt.Fprintln(c.App.Writer)
		}
		fmt.Fprintf(c.App.Writer, "# %s\n", src.Name())
		for _, key := range src.Keys() {
			value, _ := src.Lookup(key)
			fmt.Fprintf(c.App.Writer, "%s = %s\n", key, value)
		}
	}
	return nil
}

func checkAction(c *cli.Context) error {
	if c.NArg() < 2 {
		return cli.Exit(l10n.T("a properties file and at least one field are required"), 2)
	}
	args := c.Args().Slice()

	fields, err := parseFields(args[1:])
	if err != nil {
		return cli.Exit(err, 2)
	}
	spec, err := binding.NewSpec("command line", args[0], fields...)
	if err != nil {
		return cli.Exit(err, 2)
	}

	loader, err := newLoader(c)
	if err != nil {
		return cli.Exit(err, 2)
	}
	src, err := loader.Load(spec.Source, nil)
	if err != nil {
		return cli.Exit(err, 1)
	}

	resolved := binding.Resolve(spec, src, convert.Default())
	for _, res := range resolved.Results() {
		if res.Err != nil {
			fmt.Fprintf(c.App.Writer, "FAIL %s: %v\n", res.Field.ID, res.Err)
			continue
		}
		fmt.Fprintf(c.App.Writer, "ok   %s = %v\n", res.Field.ID, res.Value)
	}

	if n := len(resolved.Errors()); n > 0 {
		return cli.Exit(l10n.TN("%d field could not be bound", "%d fields could not be bound", uint32(n), n), 1)
	}
	return nil
}
