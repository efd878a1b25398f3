package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/sadopc/pixelpomo/internal/orchestrator"
	"github.com/sadopc/pixelpomo/internal/store"
	"github.com/sadopc/pixelpomo/internal/timer"
)

// --- Test Setup ---

// seedDB writes a database holding one session today and returns its path.
func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pomo.db")
	s, err := store.New(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	now := time.Now()
	history := timer.History{{Date: timer.Day(now), Timestamp: now, DurationMinutes: 25}}
	if err := store.SaveJSON(s, orchestrator.KeySessions, history); err != nil {
		t.Fatalf("seed sessions: %v", err)
	}
	if err := store.SaveJSON(s, orchestrator.KeySessionsCompleted, 1); err != nil {
		t.Fatalf("seed counter: %v", err)
	}
	return path
}

// run executes the root command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	dbPath, logPath, debug = "", "", false
	exportFormat, exportOut, resetYes = "csv", "", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// --- Tests ---

func TestResolvePaths(t *testing.T) {
	t.Setenv(envDB, "/tmp/pomo/data.db")
	t.Setenv(envLog, "")
	dbPath, logPath = "", ""

	if err := resolvePaths(); err != nil {
		t.Fatal(err)
	}
	if dbPath != "/tmp/pomo/data.db" {
		t.Errorf("db path from env: got %q", dbPath)
	}
	if logPath != "/tmp/pomo/pixelpomo.log" {
		t.Errorf("log path next to db: got %q", logPath)
	}
}

func TestResolvePathsFlagWins(t *testing.T) {
	t.Setenv(envDB, "/tmp/from-env.db")
	t.Setenv(envLog, "/tmp/from-env.log")
	dbPath, logPath = "/tmp/flag.db", ""

	if err := resolvePaths(); err != nil {
		t.Fatal(err)
	}
	if dbPath != "/tmp/flag.db" {
		t.Errorf("flag should win over env, got %q", dbPath)
	}
	if logPath != "/tmp/from-env.log" {
		t.Errorf("log path from env: got %q", logPath)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	l, f, err := newLogger(path, false)
	if err != nil {
		t.Fatal(err)
	}
	l.Debug("hidden")
	l.Info("shown", "k", "v")
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "hidden") {
		t.Error("debug line should be filtered at info level")
	}
	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &line); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if line["msg"] != "shown" || line["k"] != "v" {
		t.Errorf("unexpected log line %v", line)
	}
}

func TestStatsCommand(t *testing.T) {
	db := seedDB(t)
	out, err := run(t, "--db", db, "--log-file", filepath.Join(t.TempDir(), "x.log"), "stats")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"1 sessions, 25m", "1 days", "█"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}

func TestExportCommand(t *testing.T) {
	db := seedDB(t)
	dest := filepath.Join(t.TempDir(), "out.json")
	out, err := run(t, "--db", db, "--log-file", filepath.Join(t.TempDir(), "x.log"), "export", "--format", "json", "--out", dest)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "1 sessions") {
		t.Errorf("unexpected output %q", out)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"count": 1`) {
		t.Errorf("unexpected export:\n%s", data)
	}
}

func TestExportCommandRejectsUnknownFormat(t *testing.T) {
	db := seedDB(t)
	_, err := run(t, "--db", db, "--log-file", filepath.Join(t.TempDir(), "x.log"), "export", "--format", "xml")
	if err == nil {
		t.Fatal("expected an error for xml")
	}
}

func TestResetCommand(t *testing.T) {
	db := seedDB(t)
	logFile := filepath.Join(t.TempDir(), "x.log")

	if _, err := run(t, "--db", db, "--log-file", logFile, "reset"); err == nil {
		t.Fatal("reset without --yes should refuse")
	}

	if _, err := run(t, "--db", db, "--log-file", logFile, "reset", "--yes"); err != nil {
		t.Fatal(err)
	}

	s, err := store.New(db)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok, _ := s.Get(orchestrator.KeySessions); ok {
		t.Error("sessions should be wiped")
	}
}
