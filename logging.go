package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"rigbook/config"
)

const (
	logTimestampLayout = "2006-01-02 15:04:05"
	logFilePrefix      = "rigbook-"
	logFileDateLayout  = "2006-01-02"
	logFileExt         = ".log"
	maxPartialLogBytes = 16 * 1024
)

// logSink receives complete log lines. The console sink is stderr in CLI
// mode and the log pane in UI mode.
type logSink interface {
	WriteLine(line string, now time.Time)
	Close() error
}

type writerSink struct {
	w         io.Writer
	timestamp bool
}

func (s *writerSink) WriteLine(line string, now time.Time) {
	if s == nil || s.w == nil {
		return
	}
	if s.timestamp {
		line = now.Format(logTimestampLayout) + " " + line
	}
	_, _ = io.WriteString(s.w, line+"\n")
}

func (s *writerSink) Close() error { return nil }

// rolloverFunc runs after the file sink switched to a new day's file.
type rolloverFunc func(prevDay time.Time, prevPath, newPath string)

// dailyFile appends to <dir>/rigbook-YYYY-MM-DD.log, opening a new file when
// the local date changes and pruning files older than the retention window.
type dailyFile struct {
	mu            sync.Mutex
	dir           string
	retentionDays int
	day           string
	path          string
	file          *os.File
	lastErrorAt   time.Time
	onRollover    rolloverFunc
}

func newDailyFile(dir string, retentionDays int) (*dailyFile, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("logging: directory is empty")
	}
	if retentionDays <= 0 {
		retentionDays = 7
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: create %s: %w", dir, err)
	}
	if err := pruneLogs(dir, time.Now(), retentionDays); err != nil {
		fmt.Fprintf(os.Stderr, "Logging: prune %s: %v\n", dir, err)
	}
	return &dailyFile{dir: dir, retentionDays: retentionDays}, nil
}

func (s *dailyFile) WriteLine(line string, now time.Time) {
	if s == nil {
		return
	}
	day := now.Format(logFileDateLayout)

	s.mu.Lock()
	var (
		hook     rolloverFunc
		prevDay  time.Time
		prevPath string
	)
	if s.file == nil || s.day != day {
		hook, prevDay, prevPath = s.openLocked(day, now)
	}
	if s.file == nil {
		s.mu.Unlock()
		return
	}
	if _, err := s.file.WriteString(now.Format(logTimestampLayout) + " " + line + "\n"); err != nil {
		s.reportLocked(now, fmt.Errorf("write %s: %w", s.path, err))
	}
	newPath := s.path
	s.mu.Unlock()

	// Outside the lock: the hook usually logs, which re-enters WriteLine.
	if hook != nil {
		hook(prevDay, prevPath, newPath)
	}
}

func (s *dailyFile) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.day = ""
	s.path = ""
	return err
}

func (s *dailyFile) SetRollover(fn rolloverFunc) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.onRollover = fn
	s.mu.Unlock()
}

// openLocked switches to the file for day. The rollover hook is returned only
// when an earlier day's file was open.
func (s *dailyFile) openLocked(day string, now time.Time) (rolloverFunc, time.Time, string) {
	var (
		hook     rolloverFunc
		prevDay  time.Time
		prevPath string
	)
	if s.day != "" && s.day != day {
		if parsed, err := time.ParseInLocation(logFileDateLayout, s.day, now.Location()); err == nil {
			prevDay = parsed
			hook = s.onRollover
		}
		prevPath = s.path
	}
	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.reportLocked(now, fmt.Errorf("create %s: %w", s.dir, err))
		return nil, time.Time{}, ""
	}
	path := filepath.Join(s.dir, logFileName(now))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		s.reportLocked(now, fmt.Errorf("open %s: %w", path, err))
		return nil, time.Time{}, ""
	}
	s.file = file
	s.day = day
	s.path = path
	if err := pruneLogs(s.dir, now, s.retentionDays); err != nil {
		s.reportLocked(now, fmt.Errorf("prune: %w", err))
	}
	return hook, prevDay, prevPath
}

// reportLocked writes sink failures to stderr at most once a minute.
func (s *dailyFile) reportLocked(now time.Time, err error) {
	if !s.lastErrorAt.IsZero() && now.Sub(s.lastErrorAt) < time.Minute {
		return
	}
	s.lastErrorAt = now
	fmt.Fprintf(os.Stderr, "Logging: %v\n", err)
}

// logFanout is the log.Logger output. It buffers partial writes into lines
// and hands each line to the console sink and the optional file sink.
type logFanout struct {
	mu      sync.Mutex
	partial []byte
	console logSink
	file    logSink
}

// setupLogging installs a console sink on console and, when logging is
// enabled, a daily file under cfg.Dir. A file sink that cannot be created is
// reported but still leaves a usable console fanout.
func setupLogging(cfg config.LoggingConfig, console io.Writer) (*logFanout, error) {
	f := &logFanout{console: &writerSink{w: console, timestamp: true}}
	if !cfg.Enabled {
		return f, nil
	}
	file, err := newDailyFile(cfg.Dir, cfg.RetentionDays)
	if err != nil {
		return f, err
	}
	f.setFile(file)
	return f, nil
}

// SetConsoleSink replaces the console sink; nil silences the console.
func (f *logFanout) SetConsoleSink(w io.Writer, timestamp bool) {
	if f == nil {
		return
	}
	var sink logSink
	if w != nil {
		sink = &writerSink{w: w, timestamp: timestamp}
	}
	f.mu.Lock()
	f.console = sink
	f.mu.Unlock()
}

func (f *logFanout) setFile(sink logSink) {
	f.mu.Lock()
	f.file = sink
	f.mu.Unlock()
}

// SetRollover registers fn with the file sink. No-op without file logging.
func (f *logFanout) SetRollover(fn rolloverFunc) {
	if f == nil {
		return
	}
	f.mu.Lock()
	sink := f.file
	f.mu.Unlock()
	if df, ok := sink.(*dailyFile); ok {
		df.SetRollover(fn)
	}
}

func (f *logFanout) Write(p []byte) (int, error) {
	if f == nil {
		return len(p), nil
	}
	f.mu.Lock()
	data := append(f.partial, p...)
	var lines []string
	for {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		lines = append(lines, string(bytes.TrimRight(data[:idx], "\r")))
		data = data[idx+1:]
	}
	if len(data) > maxPartialLogBytes {
		if line := string(bytes.TrimRight(data, "\r")); line != "" {
			lines = append(lines, line)
		}
		data = data[:0]
	}
	f.partial = data
	console, file := f.console, f.file
	f.mu.Unlock()

	now := time.Now()
	for _, line := range lines {
		if console != nil {
			console.WriteLine(line, now)
		}
		if file != nil {
			file.WriteLine(line, now)
		}
	}
	return len(p), nil
}

// WriteFileOnly records line in the log file without showing it on the
// console.
func (f *logFanout) WriteFileOnly(line string) {
	if f == nil {
		return
	}
	f.mu.Lock()
	file := f.file
	f.mu.Unlock()
	if file != nil {
		file.WriteLine(line, time.Now())
	}
}

func (f *logFanout) Close() error {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	console, file := f.console, f.file
	f.mu.Unlock()
	if console != nil {
		_ = console.Close()
	}
	if file != nil {
		return file.Close()
	}
	return nil
}

func logFileName(now time.Time) string {
	return logFilePrefix + now.Format(logFileDateLayout) + logFileExt
}

func parseLogFileName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, logFileExt) {
		return time.Time{}, false
	}
	day := strings.TrimSuffix(strings.TrimPrefix(name, logFilePrefix), logFileExt)
	parsed, err := time.ParseInLocation(logFileDateLayout, day, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// pruneLogs removes rigbook log files dated before the retention window.
// Today counts as the first retained day.
func pruneLogs(dir string, now time.Time, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	y, m, d := now.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.Local).AddDate(0, 0, -(retentionDays - 1))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		day, ok := parseLogFileName(e.Name())
		if ok && day.Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, e.Name()))
		}
	}
	return nil
}
