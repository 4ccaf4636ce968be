package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// PreflightResult reports the outcome of checking an existing export file.
type PreflightResult struct {
	Healthy        bool   // file absent or passed quick_check
	Quarantined    bool   // the file was renamed out of the way
	QuarantinePath string // new name of the main file
	CheckError     error  // nil when quick_check succeeded
}

// Preflight runs a bounded quick_check on an existing database. A file that
// fails it (or is not SQLite at all) is renamed with its journal to a
// timestamped ".bad-" path so the export can start from a fresh file.
func Preflight(path string, timeout time.Duration, logf func(string, ...any)) (PreflightResult, error) {
	if logf == nil {
		logf = log.Printf
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	res := PreflightResult{}
	if strings.TrimSpace(path) == "" {
		return res, errors.New("export: empty database path")
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		res.Healthy = true
		return res, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return res, fmt.Errorf("export: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	checkErr := quickCheck(ctx, db)
	db.Close()
	res.CheckError = checkErr
	if checkErr == nil {
		res.Healthy = true
		return res, nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return res, fmt.Errorf("export: quick_check of %s timed out after %s", path, timeout)
	}

	quarantinePath, err := quarantine(path, logf)
	if err != nil {
		return res, fmt.Errorf("export: quarantine %s failed: %w (quick_check=%v)", path, err, checkErr)
	}
	res.Quarantined = true
	res.QuarantinePath = quarantinePath
	logf("Export: %s failed quick_check (%v); moved to %s", path, checkErr, quarantinePath)
	return res, nil
}

func quickCheck(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, "pragma quick_check")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		if scanErr := rows.Scan(&status); scanErr != nil {
			return scanErr
		}
		if strings.TrimSpace(status) != "ok" {
			return fmt.Errorf("quick_check reported %q", status)
		}
	}
	return rows.Err()
}

func quarantine(path string, logf func(string, ...any)) (string, error) {
	ts := time.Now().UTC().Format("20060102T150405Z")
	quarantinePath := path + ".bad-" + ts
	for _, p := range []string{path, path + "-journal", path + "-wal", path + "-shm"} {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", err
		}
		if err := os.Rename(p, p+".bad-"+ts); err != nil {
			return "", err
		}
		if p != path {
			logf("Export: quarantined sidecar %s", p)
		}
	}
	return quarantinePath, nil
}
