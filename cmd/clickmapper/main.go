package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"

	"github.com/clickmapper/clickmapper/internal/config"
	"github.com/clickmapper/clickmapper/internal/daemon"
	"github.com/clickmapper/clickmapper/internal/database"
	"github.com/clickmapper/clickmapper/internal/journal"
	"github.com/clickmapper/clickmapper/internal/logging"
	"github.com/clickmapper/clickmapper/internal/metrics"
	"github.com/clickmapper/clickmapper/internal/reporter"
	"github.com/clickmapper/clickmapper/internal/web"
	"github.com/clickmapper/clickmapper/pkg/display"
	"github.com/clickmapper/clickmapper/pkg/integrations/x11"
	"github.com/clickmapper/clickmapper/pkg/launcher"
	"github.com/clickmapper/clickmapper/pkg/overlay"
	"github.com/clickmapper/clickmapper/pkg/window"
)

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

const appName = "clickmapper"

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	switch commandName(os.Args[1:]) {
	case "report":
		os.Exit(generateReport(os.Args[2:]))
	case "clear":
		os.Exit(clearJournal(os.Stdin, os.Stdout))
	case "stop":
		os.Exit(stopOverlay())
	case "status":
		os.Exit(showStatus())
	case "version":
		fmt.Printf("%s version %s\n", appName, version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	case "help", "--help", "-h":
		printUsage(os.Stdout)
	default:
		os.Exit(runOverlay(os.Args[1:]))
	}
}

var commands = map[string]bool{
	"report": true, "clear": true, "stop": true, "status": true,
	"version": true, "help": true, "--help": true, "-h": true,
}

// commandName returns the subcommand args selects, or "" for an overlay run.
// Any --image/--sound flag means an overlay run, so files named like a
// command can still be passed that way.
func commandName(args []string) string {
	for _, a := range args {
		name, _, _ := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if strings.HasPrefix(a, "-") && (name == "image" || name == "sound") {
			return ""
		}
	}
	if len(args) > 0 && commands[args[0]] {
		return args[0]
	}
	return ""
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `%[1]s - click-to-sound screen overlay

Usage:
  %[1]s --image PATH --sound PATH
  %[1]s PATH_TO_IMAGE PATH_TO_SOUND
  %[1]s <command> [options]

Commands:
  report [period] [--json]   Summarize the launch journal (period: day, week, month, all)
  clear                      Delete all journal data
  stop                       Stop the running overlay
  status                     Show whether an overlay is running
  version                    Show version information
  help                       Show this help message

An image or sound file named like a command must be given with
--image/--sound (or as ./NAME).

Environment Variables:
  CLICKMAPPER_CONFIG         Config file path
  CLICKMAPPER_RENDER_CMD     Render command line ({image}, {window})
  CLICKMAPPER_SOUND_CMD      Sound command line ({sound})
  CLICKMAPPER_DISPLAY        X display name (default $DISPLAY)
  CLICKMAPPER_PID_FILE       PID file of the running overlay
  CLICKMAPPER_JOURNAL_PATH   SQLite journal path (journal disabled when unset)
  CLICKMAPPER_WEB_LISTEN     Status server address, e.g. 127.0.0.1:9477
  CLICKMAPPER_LOG_LEVEL      debug, info, warn, error
  CLICKMAPPER_LOG_FORMAT     text or json

Version: %[2]s
`, appName, version)
}

// parseRunArgs accepts --image/--sound or exactly two positional paths, and
// checks that both files exist.
func parseRunArgs(args []string) (image, sound string, err error) {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&image, "image", "", "image or animation to show")
	fs.StringVar(&sound, "sound", "", "sound to play on click")
	if err := fs.Parse(args); err != nil {
		return "", "", err
	}

	rest := fs.Args()
	switch {
	case image == "" && sound == "" && len(rest) == 2:
		image, sound = rest[0], rest[1]
	case image != "" && sound != "" && len(rest) == 0:
	default:
		return "", "", errors.New("expected an image and a sound file")
	}

	for _, p := range []string{image, sound} {
		info, err := os.Stat(p)
		if err != nil {
			return "", "", errors.Wrapf(err, "cannot read %s", p)
		}
		if info.IsDir() {
			return "", "", errors.Errorf("%s is a directory", p)
		}
	}

	return image, sound, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func runOverlay(args []string) int {
	image, sound, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		printUsage(os.Stderr)
		return 1
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger := logging.InitLogger(cfg.Log.Level, cfg.Log.Format)

	d := daemon.New(cfg.Daemon.PIDFile)
	if running, pid, err := d.IsRunning(); err != nil {
		logger.Warn("Could not check for a running overlay", "error", err)
	} else if running {
		logger.Error("Overlay already running", "pid", pid)
		return 1
	}
	if err := d.WritePID(); err != nil {
		logger.Warn("Failed to write PID file", "path", cfg.Daemon.PIDFile, "error", err)
	}
	defer func() {
		if err := d.RemovePID(); err != nil {
			logger.Warn("Failed to remove PID file", "error", err)
		}
	}()

	var dialer window.Dialer
	if cfg.Display.Name != "" {
		dialer = x11.Dialer{Name: cfg.Display.Name, Logger: logger}
	} else {
		dialer, err = display.NewDialer(logger)
		if err != nil {
			logger.Error("Failed to open display", "error", err)
			return 1
		}
	}

	opts := []overlay.Option{
		overlay.WithRenderCommand(cfg.RenderCommand()),
		overlay.WithSoundCommand(cfg.SoundCommand()),
	}

	clock := clockwork.NewRealClock()
	reg := metrics.NewRegistry()
	launches := metrics.NewLaunchMetrics(reg)
	opts = append(opts, overlay.WithObserver(launches))

	var jr *journal.Journal
	var rep *reporter.Reporter
	if cfg.JournalEnabled() {
		db, err := database.Connect(cfg.Journal.Path)
		if err == nil {
			err = db.Initialize()
		}
		if err != nil {
			// the overlay works without a journal
			logger.Warn("Launch journal disabled", "path", cfg.Journal.Path, "error", err)
		} else {
			defer db.Close()
			repo := database.NewRepository(db)
			jr = journal.New(repo, clock, cfg.Journal.BufferSize, logger)
			rep = reporter.New(repo, clock)
			logger = logging.WithSession(logger, jr.SessionID())
			opts = append(opts, overlay.WithObserver(jr))
		}
	}
	opts = append(opts, overlay.WithLogger(logger))

	if cfg.WebEnabled() {
		sessionID := ""
		if jr != nil {
			sessionID = jr.SessionID()
		}
		srv := web.NewServer(cfg.Web.Listen, web.Options{
			SessionID: sessionID,
			Stats:     launches,
			Reporter:  rep,
			Registry:  reg,
			Clock:     clock,
			Logger:    logger,
		})
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("Status server stopped", "addr", cfg.Web.Listen, "error", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("Error shutting down status server", "error", err)
			}
		}()
	}

	session := overlay.NewSession(dialer, launcher.Default, opts...)

	var stopping atomic.Bool
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("Received shutdown signal", "signal", sig.String())
		stopping.Store(true)
		session.Close()
	}()

	logger.Debug("Starting overlay", "image", image, "sound", sound, "config", cfg.String())

	err = session.Run(image, sound)
	session.Close()

	code := 0
	if !stopping.Load() {
		logger.Error("Overlay session ended", "state", session.State().String(), "error", err)
		code = 1
		if jr != nil {
			jr.RecordError(err)
		}
	}
	if jr != nil {
		jr.Close()
	}

	logger.Info("Overlay stopped", "clicks", session.Clicks())
	return code
}

func stopOverlay() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	pid, err := daemon.New(cfg.Daemon.PIDFile).Stop()
	if err != nil {
		if errors.Is(err, daemon.ErrNotRunning) {
			fmt.Println("Overlay is not running")
			return 1
		}
		fmt.Fprintf(os.Stderr, "Failed to stop overlay: %v\n", err)
		return 1
	}

	fmt.Printf("Sent stop signal to overlay (PID: %d)\n", pid)
	return 0
}

func showStatus() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	running, pid, err := daemon.New(cfg.Daemon.PIDFile).IsRunning()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error checking status: %v\n", err)
		return 1
	}

	if !running {
		fmt.Println("Status: Not running")
		return 1
	}

	fmt.Println("Status: Running")
	fmt.Printf("PID: %d\n", pid)
	fmt.Printf("PID File: %s\n", cfg.Daemon.PIDFile)
	return 0
}

func openJournal() (*database.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.JournalEnabled() {
		return nil, errors.New("journal is disabled (set CLICKMAPPER_JOURNAL_PATH or journal.path)")
	}

	db, err := database.Connect(cfg.Journal.Path)
	if err != nil {
		return nil, err
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func generateReport(args []string) int {
	periodType := "day"
	jsonOutput := false
	for _, a := range args {
		if a == "--json" {
			jsonOutput = true
		} else {
			periodType = a
		}
	}

	db, err := openJournal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer db.Close()

	rep := reporter.New(database.NewRepository(db), clockwork.NewRealClock())

	report, err := rep.GenerateReport(periodType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate report: %v\n", err)
		return 1
	}

	if jsonOutput {
		out, err := rep.FormatReportJSON(report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to format JSON: %v\n", err)
			return 1
		}
		fmt.Println(out)
	} else {
		fmt.Print(rep.FormatReportText(report))
	}
	return 0
}

// clearJournal opens the journal before asking, so a disabled or broken
// journal fails without a pointless prompt.
func clearJournal(in io.Reader, out io.Writer) int {
	db, err := openJournal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer db.Close()

	fmt.Fprint(out, "This will delete all journal data. Are you sure? (yes/no): ")
	var response string
	fmt.Fscanln(in, &response)

	if response != "yes" && response != "y" {
		fmt.Fprintln(out, "Operation cancelled")
		return 0
	}

	if err := database.NewRepository(db).Clear(); err != nil {
		slog.Error("Failed to clear journal", "error", err)
		return 1
	}

	fmt.Fprintln(out, "Journal cleared successfully")
	return 0
}
