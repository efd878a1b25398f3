package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sadopc/pixelpomo/internal/export"
	"github.com/sadopc/pixelpomo/internal/orchestrator"
	"github.com/sadopc/pixelpomo/internal/sound"
	"github.com/sadopc/pixelpomo/internal/store"
	"github.com/sadopc/pixelpomo/internal/tui"
)

const (
	envDB  = "PIXELPOMO_DB"
	envLog = "PIXELPOMO_LOG"
)

var (
	dbPath  string
	logPath string
	debug   bool

	exportFormat string
	exportOut    string
	resetYes     bool

	logger  = slog.New(slog.DiscardHandler)
	logFile io.Closer

	rootCmd = &cobra.Command{
		Use:               "pixelpomo",
		Short:             "A pixel-art pomodoro timer with a quest board.",
		Long:              `pixelpomo runs a pomodoro timer next to a three-column quest board. Finished work sessions are logged for streaks and stats.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: teardown,
		RunE:              runTUI,
	}

	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Print session stats.",
		Long:  `Prints today's sessions, the current streak, lifetime totals and the last seven days.`,
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export the session history.",
		Long:  `Writes the session history as csv, json or yaml. Without --out the file lands in the current directory.`,
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}

	resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Wipe all stored data.",
		Long:  `Deletes quests, session history and durations. Requires --yes.`,
		Args:  cobra.NoArgs,
		RunE:  runReset,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the SQLite database (env "+envDB+").")
	rootCmd.PersistentFlags().StringVar(&logPath, "log-file", "", "Path to the log file (env "+envLog+"), defaults to pixelpomo.log next to the database.")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log at debug level.")

	exportCmd.Flags().StringVar(&exportFormat, "format", string(export.CSV), "Export format: csv, json or yaml.")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file.")

	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Confirm the wipe.")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(resetCmd)
}

// resolvePaths fills unset paths from the environment, then from defaults.
func resolvePaths() error {
	if dbPath == "" {
		dbPath = os.Getenv(envDB)
	}
	if dbPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("default db path: %w", err)
		}
		dbPath = p
	}
	if logPath == "" {
		logPath = os.Getenv(envLog)
	}
	if logPath == "" {
		logPath = filepath.Join(filepath.Dir(dbPath), "pixelpomo.log")
	}
	return nil
}

// newLogger opens path for appending and returns a JSON logger on it. The
// terminal belongs to the TUI, so nothing is logged to stderr.
func newLogger(path string, debug bool) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}

func setup(cmd *cobra.Command, args []string) error {
	if err := resolvePaths(); err != nil {
		return err
	}
	l, f, err := newLogger(logPath, debug)
	if err != nil {
		return err
	}
	logger, logFile = l, f
	slog.SetDefault(logger)
	logger.Debug("starting", "command", cmd.Name(), "db", dbPath)
	return nil
}

func teardown(cmd *cobra.Command, args []string) {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// openStore opens the database and stamps the data version.
func openStore() (*store.Store, error) {
	s, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	wiped, err := s.EnsureVersion()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("checking data version: %w", err)
	}
	if wiped {
		logger.Warn("stored data had an unknown layout and was wiped", "db", dbPath)
	}
	return s, nil
}

func openOrchestrator(sink sound.Sink) (*orchestrator.Orchestrator, func(), error) {
	s, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	o := orchestrator.New(orchestrator.Config{Store: s, Sink: sink, Logger: logger})
	return o, func() {
		o.Close()
		s.Close()
	}, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	o, closeAll, err := openOrchestrator(sound.NewBell(os.Stdout))
	if err != nil {
		return err
	}
	defer closeAll()

	app := tui.NewApp(o, tui.Options{DBPath: dbPath, Logger: logger})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("tui exited", "error", err)
		return err
	}
	return nil
}

var (
	bold    = color.New(color.Bold).SprintFunc()
	dim     = color.New(color.Faint).SprintFunc()
	cyan    = color.New(color.FgCyan).SprintFunc()
	green   = color.New(color.FgGreen).SprintFunc()
	yellow  = color.New(color.FgYellow).SprintFunc()
	magenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
)

func runStats(cmd *cobra.Command, args []string) error {
	o, closeAll, err := openOrchestrator(sound.Nop{})
	if err != nil {
		return err
	}
	defer closeAll()

	printStats(cmd.OutOrStdout(), o.Snapshot().Stats)
	return nil
}

func printStats(w io.Writer, s orchestrator.Stats) {
	fmt.Fprintln(w, magenta("pixelpomo stats"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-14s %s\n", dim("today"), bold(fmt.Sprintf("%d sessions, %dm", s.TodayCount, s.TodayMinutes)))
	fmt.Fprintf(w, "  %-14s %s\n", dim("streak"), yellow(fmt.Sprintf("%d days", s.Streak)))
	fmt.Fprintf(w, "  %-14s %s\n", dim("total"), green(fmt.Sprintf("%d sessions, %dm", s.TotalSessions, s.TotalMinutes)))
	fmt.Fprintln(w)
	for _, d := range s.Last7Days {
		bar := dim("·")
		if d.Count > 0 {
			bar = cyan(strings.Repeat("█", d.Count))
		}
		fmt.Fprintf(w, "  %-4s %s %s\n", d.Label, bar, dim(fmt.Sprint(d.Count)))
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	f, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	o, closeAll, err := openOrchestrator(sound.Nop{})
	if err != nil {
		return err
	}
	defer closeAll()

	out := exportOut
	if out == "" {
		out = tui.ExportFileName(f, time.Now())
	}
	sessions := o.History()
	if err := export.Write(f, sessions, out); err != nil {
		logger.Error("export failed", "format", f, "path", out, "error", err)
		return err
	}
	logger.Info("exported sessions", "format", f, "path", out, "count", len(sessions))
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d sessions to %s\n", green("exported"), len(sessions), out)
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		return fmt.Errorf("refusing to wipe %s without --yes", dbPath)
	}
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.Clear()
	if err != nil {
		return fmt.Errorf("wipe: %w", err)
	}
	logger.Info("wiped store", "db", dbPath, "keys", n)
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d keys from %s\n", yellow("wiped"), n, dbPath)
	return nil
}
