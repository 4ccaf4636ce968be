// Command rigbook keeps a catalog of receiver frequency bookmarks with
// colored tags, a band plan, and a terminal UI that tunes an SDR receiver
// over its remote-control port.
//
// Run without arguments on a terminal it opens the UI; otherwise it prints
// the bookmark list. Subcommands edit the catalog from scripts.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"rigbook/bandplan"
	"rigbook/catalog"
	"rigbook/config"
	"rigbook/rigctl"
)

// Version will be set at build time
var Version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatalf("rigbook: %v", err)
	}
}

// session carries what every subcommand needs: the loaded config and the log
// fanout. The catalog and band plan are opened on demand.
type session struct {
	configPath string
	cfg        *config.Config
	logs       *logFanout
	cat        *catalog.Catalog
	plan       *bandplan.Plan
}

func newRootCommand() *cobra.Command {
	s := &session{}
	cmd := &cobra.Command{
		Use:   "rigbook",
		Short: "Frequency bookmarks for SDR receivers.",
		Long: `rigbook stores receiver bookmarks (frequency, name, modulation, bandwidth,
tags) in bookmarks.csv and shows them next to a band plan. On a terminal it
starts the interactive UI; piped, it lists bookmarks.`,
		Version:       Version,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return s.start(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			s.close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isTerminal() {
				return s.runUI(cmd)
			}
			return s.list(cmd.OutOrStdout(), "")
		},
	}
	cmd.PersistentFlags().StringVarP(&s.configPath, "config", "c", "",
		fmt.Sprintf("config file or directory (default $%s or %s)", config.EnvPath, config.DefaultPath()))

	addCommands(cmd, s)
	return cmd
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// start loads the config and routes the standard logger through the fanout.
// CLI output goes to stdout; log lines go to stderr without timestamps.
func (s *session) start(cmd *cobra.Command) error {
	path, explicit := s.configPath, s.configPath != ""
	if !explicit {
		path = config.DefaultPath()
		explicit = strings.TrimSpace(os.Getenv(config.EnvPath)) != ""
	}
	cfg, err := config.LoadOrDefault(path, explicit)
	if err != nil {
		return err
	}
	s.cfg = cfg

	logs, err := setupLogging(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Logging: %v\n", err)
	}
	logs.SetConsoleSink(cmd.ErrOrStderr(), false)
	logs.SetRollover(func(prevDay time.Time, prevPath, _ string) {
		log.Printf("Logging: continued from %s (%s)", prevPath, prevDay.Format(logFileDateLayout))
	})
	log.SetFlags(0)
	log.SetOutput(logs)
	s.logs = logs
	s.logs.WriteFileOnly(fmt.Sprintf("rigbook %s: %s (config %s)", Version, cmd.CommandPath(), sourceName(cfg)))
	return nil
}

func (s *session) close() {
	if s.logs == nil {
		return
	}
	log.SetOutput(os.Stderr)
	_ = s.logs.Close()
	s.logs = nil
}

func sourceName(cfg *config.Config) string {
	if cfg.LoadedFrom == "" {
		return "built-in defaults"
	}
	return cfg.LoadedFrom
}

// catalog loads bookmarks.csv once per command. A missing file starts an
// empty catalog; it is created by the first save.
func (s *session) catalog() (*catalog.Catalog, error) {
	if s.cat != nil {
		return s.cat, nil
	}
	cat := catalog.New(s.cfg.Storage.Dir)
	if err := cat.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		log.Printf("Catalog: %s not found, starting empty", cat.Path())
	}
	s.cat = cat
	return cat, nil
}

func (s *session) bandPlan() (*bandplan.Plan, error) {
	if s.plan != nil {
		return s.plan, nil
	}
	plan := bandplan.New(s.cfg.Storage.Dir)
	if err := plan.Load(); err != nil {
		return nil, err
	}
	s.plan = plan
	return plan, nil
}

func (s *session) rig() *rigctl.Client {
	return rigctl.New(s.cfg.Rig.Address, time.Duration(s.cfg.Rig.TimeoutMS)*time.Millisecond)
}

// save writes the catalog when a command changed it.
func (s *session) save() error {
	if s.cat == nil {
		return nil
	}
	return s.cat.Save()
}
