package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/erazemk/swycle/internal/api"
	"github.com/erazemk/swycle/internal/config"
	"github.com/erazemk/swycle/internal/db"
	"github.com/erazemk/swycle/internal/model"
	"github.com/erazemk/swycle/internal/render"
	"github.com/erazemk/swycle/internal/session"
	"github.com/erazemk/swycle/internal/store"
)

// levelRouter is a slog.Handler that sends WARN and above to stderr and,
// when a log file is open, every enabled level to the file. With -v the
// stderr handler also gets INFO and DEBUG.
type levelRouter struct {
	stderr      slog.Handler
	stderrLevel slog.Level
	file        slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	if lr.file != nil && level >= slog.LevelDebug {
		return true
	}
	return level >= lr.stderrLevel
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if lr.file != nil {
		if err := lr.file.Handle(ctx, r); err != nil {
			return err
		}
	}
	if r.Level >= lr.stderrLevel {
		return lr.stderr.Handle(ctx, r)
	}
	return nil
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := &levelRouter{stderr: lr.stderr.WithAttrs(attrs), stderrLevel: lr.stderrLevel}
	if lr.file != nil {
		out.file = lr.file.WithAttrs(attrs)
	}
	return out
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	out := &levelRouter{stderr: lr.stderr.WithGroup(name), stderrLevel: lr.stderrLevel}
	if lr.file != nil {
		out.file = lr.file.WithGroup(name)
	}
	return out
}

// setupLogger configures structured logging and returns a cleanup function
// that closes the log file (if opened).
func setupLogger(stderr io.Writer, logPath string, verbose bool) (func(), error) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := &levelRouter{
		stderr:      slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
		stderrLevel: level,
	}
	cleanup := func() {}

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		handler.file = slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

// app is what every subcommand runs against.
type app struct {
	cfg    *config.Config
	db     *sql.DB
	client *api.Client
	gate   *session.Gate
	out    *render.Renderer
	stdin  io.Reader
	stdout io.Writer
}

var errNotLoggedIn = errors.New("not logged in (run: swycle login <token>)")

// user resolves the session once and returns the logged-in user.
func (a *app) user(ctx context.Context) (*model.User, error) {
	if a.gate.IsLoading() {
		a.gate.Init(ctx)
	}
	u := a.gate.User()
	if u == nil {
		return nil, errNotLoggedIn
	}
	a.out.Viewer = u
	return u, nil
}

// viewer is like user but anonymous is not an error.
func (a *app) viewer(ctx context.Context) *model.User {
	u, _ := a.user(ctx)
	return u
}

const usage = `Usage: swycle [flags] <command> [args]

Flags:
  -c, -config <path>     YAML config file (default: %s)
  -u, -api <url>         API root (default: %s)
  -d, -db <path>         local state database
  -o, -output <format>   text, json or yaml (default: text)
  -t, -timeout <dur>     request timeout (default: 30s)
  -l, -log <path>        log file path (default: no file)
  -v, -verbose           debug logging on stderr
  -h, -help              show this help and exit

Commands:
`

func printUsage(w io.Writer) {
	fmt.Fprintf(w, usage, config.DefaultPath(), config.DefaultAPIURL)
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-16s %s\n", name, commands[name].summary)
	}
}

// run parses global flags, wires the app and dispatches the subcommand.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("swycle", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var cfgPath, apiURL, dbPath, output, logPath string
	var timeout time.Duration
	var verbose bool
	fs.StringVar(&cfgPath, "config", "", "")
	fs.StringVar(&cfgPath, "c", "", "")
	fs.StringVar(&apiURL, "api", "", "")
	fs.StringVar(&apiURL, "u", "", "")
	fs.StringVar(&dbPath, "db", "", "")
	fs.StringVar(&dbPath, "d", "", "")
	fs.StringVar(&output, "output", "", "")
	fs.StringVar(&output, "o", "", "")
	fs.DurationVar(&timeout, "timeout", 0, "")
	fs.DurationVar(&timeout, "t", 0, "")
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")
	fs.BoolVar(&verbose, "verbose", false, "")
	fs.BoolVar(&verbose, "v", false, "")
	fs.Usage = func() { printUsage(stdout) }

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		printUsage(stdout)
		return flag.ErrHelp
	}
	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", name)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if output != "" {
		cfg.Output = output
	}
	if timeout != 0 {
		cfg.Timeout = timeout
	}
	if logPath != "" {
		cfg.LogFile = logPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	closeLog, err := setupLogger(stderr, cfg.LogFile, verbose)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	database, err := db.OpenAndMigrate(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	jar, err := store.OpenJar(ctx, database)
	if err != nil {
		return err
	}
	clientID, err := store.GetClientID(ctx, database)
	if err != nil {
		return err
	}
	client, err := api.New(api.Config{
		BaseURL:  cfg.APIURL,
		Jar:      jar,
		Timeout:  cfg.Timeout,
		ClientID: clientID,
	})
	if err != nil {
		return err
	}
	slog.Debug("client ready", "api", client.BaseURL(), "db", cfg.DBPath, "client_id", clientID)

	a := &app{
		cfg:    cfg,
		db:     database,
		client: client,
		gate:   session.New(client),
		out:    render.New(stdout, cfg.Output),
		stdin:  stdin,
		stdout: stdout,
	}
	return cmd.run(ctx, a, fs.Args()[1:])
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err == nil {
		return
	}
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintln(os.Stderr, "invalid input:")
		for _, field := range slices.Sorted(maps.Keys(verr.Fields)) {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", field, verr.Fields[field])
		}
		os.Exit(2)
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
