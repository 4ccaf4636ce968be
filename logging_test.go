package main

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rigbook/config"
)

func TestLogFileNames(t *testing.T) {
	when := time.Date(2026, time.October, 19, 21, 30, 0, 0, time.Local)
	if got := logFileName(when); got != "rigbook-2026-10-19.log" {
		t.Fatalf("logFileName = %q", got)
	}
	day, ok := parseLogFileName("rigbook-2026-10-19.log")
	if !ok || day.Year() != 2026 || day.Month() != time.October || day.Day() != 19 {
		t.Fatalf("parse = %v %v", day, ok)
	}
	for _, name := range []string{"notes.txt", "2026-10-19.log", "rigbook-19-Oct-2026.log"} {
		if _, ok := parseLogFileName(name); ok {
			t.Fatalf("%q should not parse as a log file", name)
		}
	}
}

func TestPruneLogsKeepsRetentionWindow(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"rigbook-2026-10-17.log",
		"rigbook-2026-10-18.log",
		"rigbook-2026-10-19.log",
		"notes.txt",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.Local)
	if err := pruneLogs(dir, now, 2); err != nil {
		t.Fatalf("pruneLogs: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "rigbook-2026-10-17.log")); !os.IsNotExist(err) {
		t.Fatalf("old log not removed: %v", err)
	}
	for _, name := range []string{"rigbook-2026-10-18.log", "rigbook-2026-10-19.log", "notes.txt"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("%s removed: %v", name, err)
		}
	}
}

func TestDailyFileRollover(t *testing.T) {
	sink, err := newDailyFile(t.TempDir(), 3)
	if err != nil {
		t.Fatalf("newDailyFile: %v", err)
	}
	defer sink.Close()

	var prevDay time.Time
	var prevPath, newPath string
	calls := 0
	sink.SetRollover(func(day time.Time, prev, next string) {
		calls++
		prevDay, prevPath, newPath = day, prev, next
	})

	day1 := time.Date(2026, time.October, 18, 23, 59, 0, 0, time.Local)
	sink.WriteLine("first", day1)
	sink.WriteLine("still first", day1.Add(30*time.Second))
	if calls != 0 {
		t.Fatalf("rollover ran on the first file")
	}
	sink.WriteLine("second", day1.Add(2*time.Minute))
	if calls != 1 {
		t.Fatalf("rollover calls = %d, want 1", calls)
	}
	if prevDay.Day() != 18 || filepath.Base(prevPath) != "rigbook-2026-10-18.log" || filepath.Base(newPath) != "rigbook-2026-10-19.log" {
		t.Fatalf("rollover %v %s -> %s", prevDay, prevPath, newPath)
	}
	data, err := os.ReadFile(prevPath)
	if err != nil {
		t.Fatalf("read %s: %v", prevPath, err)
	}
	if !strings.Contains(string(data), "2026-10-18 23:59:00 first\n") || strings.Contains(string(data), "second") {
		t.Fatalf("first file = %q", data)
	}
}

func TestRolloverHookMayLog(t *testing.T) {
	sink, err := newDailyFile(t.TempDir(), 1)
	if err != nil {
		t.Fatalf("newDailyFile: %v", err)
	}
	defer sink.Close()
	fanout := &logFanout{file: sink}
	logger := log.New(fanout, "", 0)

	now := time.Now()
	sink.WriteLine("prime", now)
	sink.mu.Lock()
	sink.day = now.AddDate(0, 0, -1).Format(logFileDateLayout)
	sink.mu.Unlock()

	hooked := make(chan struct{}, 1)
	sink.SetRollover(func(time.Time, string, string) {
		logger.Print("Logging: continued")
		select {
		case hooked <- struct{}{}:
		default:
		}
	})

	done := make(chan struct{})
	go func() {
		logger.Print("trigger")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("logging from the rollover hook deadlocked")
	}
	select {
	case <-hooked:
	case <-time.After(2 * time.Second):
		t.Fatalf("rollover hook did not run")
	}
}

func TestFanoutSplitsLinesAndFileOnly(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	fanout, err := setupLogging(config.LoggingConfig{Enabled: true, Dir: dir, RetentionDays: 2}, &console)
	if err != nil {
		t.Fatalf("setupLogging: %v", err)
	}
	fanout.SetConsoleSink(&console, false)

	fanout.Write([]byte("Catalog: loaded 3 "))
	fanout.Write([]byte("bookmarks\r\nBandPlan: built-in\n"))
	fanout.WriteFileOnly("rigbook started")
	if err := fanout.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := console.String(); got != "Catalog: loaded 3 bookmarks\nBandPlan: built-in\n" {
		t.Fatalf("console = %q", got)
	}
	data, err := os.ReadFile(filepath.Join(dir, logFileName(time.Now())))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, want := range []string{"Catalog: loaded 3 bookmarks", "BandPlan: built-in", "rigbook started"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("log file missing %q: %q", want, data)
		}
	}
}

func TestSetupLoggingDisabledHasNoFile(t *testing.T) {
	var console bytes.Buffer
	fanout, err := setupLogging(config.LoggingConfig{}, &console)
	if err != nil {
		t.Fatalf("setupLogging: %v", err)
	}
	fanout.WriteFileOnly("dropped")
	fanout.Write([]byte("shown\n"))
	if got := console.String(); !strings.HasSuffix(got, " shown\n") || strings.Contains(got, "dropped") {
		t.Fatalf("console = %q", got)
	}
}
