package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"rigbook/catalog"
	"rigbook/export"
	"rigbook/modulation"
	"rigbook/ui"
)

const (
	rigCommandTimeout = 5 * time.Second
	preflightTimeout  = 10 * time.Second
	maxTagSuggestions = 3
)

func addCommands(root *cobra.Command, s *session) {
	addUI(root, s)
	addList(root, s)
	addAdd(root, s)
	addEdit(root, s)
	addRemove(root, s)
	addRange(root, s)
	addTags(root, s)
	addBands(root, s)
	addTune(root, s)
	addExport(root, s)
	addConfig(root, s)
}

func addUI(root *cobra.Command, s *session) {
	root.AddCommand(&cobra.Command{
		Use:   "ui",
		Short: "Open the interactive bookmark browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.runUI(cmd)
		},
	})
}

// runUI hands the terminal to the UI until the user quits or a signal
// arrives, then saves whatever autosave has not written yet.
func (s *session) runUI(cmd *cobra.Command) error {
	cat, err := s.catalog()
	if err != nil {
		return err
	}
	plan, err := s.bandPlan()
	if err != nil {
		return err
	}
	rig := s.rig()
	defer rig.Close()

	app := ui.New(ui.Options{
		Catalog:          cat,
		Plan:             plan,
		Rig:              rig,
		EnableMouse:      s.cfg.UI.MouseEnabled(),
		TargetFPS:        s.cfg.UI.TargetFPS,
		ShowUntagged:     s.cfg.UI.UntaggedShown(),
		AutosaveInterval: time.Duration(s.cfg.Storage.AutosaveSeconds) * time.Second,
	})
	s.logs.SetConsoleSink(app.LogWriter(), false)
	log.Printf("Catalog: %s bookmarks, %s tags from %s", humanize.Comma(int64(cat.Len())), humanize.Comma(int64(len(cat.Tags()))), cat.Path())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runErr := app.Run(ctx)

	s.logs.SetConsoleSink(cmd.ErrOrStderr(), false)
	if err := cat.Save(); err != nil {
		log.Printf("Catalog: final save failed: %v", err)
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}

func addList(root *cobra.Command, s *session) {
	var tag string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print bookmarks in frequency order",
		Example: `
rigbook list
rigbook list --tag Airband
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.list(cmd.OutOrStdout(), tag)
		},
	}
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "only bookmarks carrying this tag")
	root.AddCommand(cmd)
}

func (s *session) list(w io.Writer, tag string) error {
	cat, err := s.catalog()
	if err != nil {
		return err
	}
	list := cat.Bookmarks()
	if tag = strings.TrimSpace(tag); tag != "" {
		t, ok := cat.TagByName(tag)
		if !ok {
			return unknownTag(cat, tag)
		}
		list = filterBookmarks(list, func(b catalog.Bookmark) bool { return b.HasTag(t.ID) })
	}
	printBookmarks(w, cat, list)
	return nil
}

// bookmarkFlags are shared by add and edit.
type bookmarkFlags struct {
	freq       string
	name       string
	modulation string
	bandwidth  string
	info       string
	tags       []string
}

func (f *bookmarkFlags) register(cmd *cobra.Command, freqUsage string) {
	cmd.Flags().StringVarP(&f.freq, "freq", "f", "", freqUsage)
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "bookmark name")
	cmd.Flags().StringVarP(&f.modulation, "mod", "m", "", fmt.Sprintf("modulation (%s)", strings.Join(modulation.Names(), ", ")))
	cmd.Flags().StringVarP(&f.bandwidth, "bw", "b", "", "filter bandwidth, e.g. 12.5k")
	cmd.Flags().StringVarP(&f.info, "info", "i", "", "free text")
	cmd.Flags().StringSliceVarP(&f.tags, "tag", "t", nil, "tag name, repeatable or comma separated")
	_ = cmd.RegisterFlagCompletionFunc("mod", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return modulation.Names(), cobra.ShellCompDirectiveNoFileComp
	})
}

func addAdd(root *cobra.Command, s *session) {
	f := &bookmarkFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a bookmark",
		Example: `
rigbook add --freq 118.1M --name Tower --mod AM --bw 8k --tag Airband
rigbook add -f 144800000 -n APRS -m NFM -t Digital,VHF
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := s.catalog()
			if err != nil {
				return err
			}
			freq, err := parseHz(f.freq)
			if err != nil {
				return fmt.Errorf("--freq: %w", err)
			}
			bw, err := parseBandwidth(f.bandwidth)
			if err != nil {
				return fmt.Errorf("--bw: %w", err)
			}
			if f.modulation != "" && !modulation.IsValid(f.modulation) {
				log.Printf("Catalog: modulation %q is not supported by the receiver; stored as given", f.modulation)
			}
			hintNewTags(cmd.ErrOrStderr(), cat, f.tags)

			id := cat.AddBookmark(catalog.NewBookmark{
				Frequency:  freq,
				Name:       f.name,
				Modulation: f.modulation,
				Bandwidth:  bw,
				Info:       f.info,
				Tags:       f.tags,
			})
			if err := s.save(); err != nil {
				return err
			}
			printBookmarks(cmd.OutOrStdout(), cat, []catalog.Bookmark{cat.Bookmark(id)})
			return nil
		},
	}
	f.register(cmd, "frequency in Hz, SI prefixes allowed (14.074M)")
	_ = cmd.MarkFlagRequired("freq")
	root.AddCommand(cmd)
}

func addEdit(root *cobra.Command, s *session) {
	f := &bookmarkFlags{}
	var match string
	cmd := &cobra.Command{
		Use:   "edit FREQ",
		Short: "Change fields of the bookmark at FREQ",
		Example: `
rigbook edit 118.1M --info "approach" --tag Airband,Local
rigbook edit 7074k --match FT8 --freq 7.0745M
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := s.catalog()
			if err != nil {
				return err
			}
			b, err := findBookmark(cat, args[0], match)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("freq") {
				freq, err := parseHz(f.freq)
				if err != nil {
					return fmt.Errorf("--freq: %w", err)
				}
				cat.SetBookmarkFrequency(b.ID, freq)
			}
			if flags.Changed("name") {
				cat.SetBookmarkName(b.ID, f.name)
			}
			if flags.Changed("mod") && !cat.SetBookmarkModulation(b.ID, f.modulation) {
				return fmt.Errorf("--mod: %q is not a supported modulation (%s)", f.modulation, strings.Join(modulation.Names(), ", "))
			}
			if flags.Changed("bw") {
				bw, err := parseBandwidth(f.bandwidth)
				if err != nil {
					return fmt.Errorf("--bw: %w", err)
				}
				cat.SetBookmarkBandwidth(b.ID, bw)
			}
			if flags.Changed("info") {
				cat.SetBookmarkInfo(b.ID, f.info)
			}
			if flags.Changed("tag") {
				hintNewTags(cmd.ErrOrStderr(), cat, f.tags)
				cat.SetBookmarkTags(b.ID, f.tags)
			}
			if err := s.save(); err != nil {
				return err
			}
			printBookmarks(cmd.OutOrStdout(), cat, []catalog.Bookmark{cat.Bookmark(b.ID)})
			return nil
		},
	}
	f.register(cmd, "new frequency")
	cmd.Flags().StringVar(&match, "match", "", "name substring when several bookmarks share FREQ")
	root.AddCommand(cmd)
}

func addRemove(root *cobra.Command, s *session) {
	var match string
	cmd := &cobra.Command{
		Use:     "rm FREQ",
		Aliases: []string{"remove"},
		Short:   "Remove the bookmark at FREQ",
		Example: `
rigbook rm 144.8M
rigbook rm 7074000 --match FT8
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := s.catalog()
			if err != nil {
				return err
			}
			b, err := findBookmark(cat, args[0], match)
			if err != nil {
				return err
			}
			cat.RemoveBookmark(b.ID)
			if err := s.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s Hz %s\n", formatHz(b.Frequency), b.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&match, "match", "", "name substring when several bookmarks share FREQ")
	root.AddCommand(cmd)
}

func addRange(root *cobra.Command, s *session) {
	root.AddCommand(&cobra.Command{
		Use:   "range LOW HIGH",
		Short: "Print bookmarks between two frequencies, inclusive",
		Example: `
rigbook range 144M 146M
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := s.catalog()
			if err != nil {
				return err
			}
			low, err := parseHz(args[0])
			if err != nil {
				return fmt.Errorf("LOW: %w", err)
			}
			high, err := parseHz(args[1])
			if err != nil {
				return fmt.Errorf("HIGH: %w", err)
			}
			if low > high {
				low, high = high, low
			}
			printBookmarks(cmd.OutOrStdout(), cat, cat.BookmarksInRange(low, high))
			return nil
		},
	})
}

func addTags(root *cobra.Command, s *session) {
	cmd := &cobra.Command{
		Use:     "tags",
		Aliases: []string{"tag"},
		Short:   "List and manage tags",
		Long: `tags lists every tag with its color and bookmark count. Tags are created
by giving a bookmark a new tag name; a tag no bookmark carries is not kept in
bookmarks.csv.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := s.catalog()
			if err != nil {
				return err
			}
			printTags(cmd.OutOrStdout(), cat)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm NAME",
		Short: "Delete a tag; bookmarks left without tags fall back to Untagged",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withTag(args[0], func(cat *catalog.Catalog, t catalog.Tag) error {
				if !cat.RemoveTag(t.ID) {
					return catalog.ErrReservedTag
				}
				return nil
			})
		},
	}

	rename := &cobra.Command{
		Use:   "rename OLD NEW",
		Short: "Rename a tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withTag(args[0], func(cat *catalog.Catalog, t catalog.Tag) error {
				return cat.RenameTag(t.ID, args[1])
			})
		},
	}

	setColor := &cobra.Command{
		Use:   "color NAME COLOR",
		Short: "Set a tag color (name like orange, or #rrggbb)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withTag(args[0], func(cat *catalog.Catalog, t catalog.Tag) error {
				if !cat.SetTagColor(t.ID, args[1]) {
					return fmt.Errorf("invalid color %q", args[1])
				}
				return nil
			})
		},
	}

	cmd.AddCommand(rm, rename, setColor)
	root.AddCommand(cmd)
}

// withTag resolves name, runs fn and saves.
func (s *session) withTag(name string, fn func(*catalog.Catalog, catalog.Tag) error) error {
	cat, err := s.catalog()
	if err != nil {
		return err
	}
	t, ok := cat.TagByName(name)
	if !ok {
		return unknownTag(cat, name)
	}
	if err := fn(cat, t); err != nil {
		return err
	}
	return s.save()
}

func addBands(root *cobra.Command, s *session) {
	root.AddCommand(&cobra.Command{
		Use:   "bands [FREQ|BAND]",
		Short: "Print the band plan, the bands around FREQ, or the segments of BAND",
		Example: `
rigbook bands
rigbook bands 14.074M
rigbook bands 40m
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := s.bandPlan()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				printBands(out, plan.Bands(), 0)
				if plan.IsBuiltin() {
					printHint(cmd.ErrOrStderr(), "built-in plan; create %s to customize", plan.Path())
				}
				return nil
			}
			freq, err := parseHz(args[0])
			if err != nil {
				bands := plan.Lookup(args[0])
				if len(bands) == 0 {
					return fmt.Errorf("%q is neither a frequency nor a band name", args[0])
				}
				printBands(out, bands, 0)
				return nil
			}
			printBands(out, plan.BandsInRange(freq, freq), freq)
			return nil
		},
	})
}

func addTune(root *cobra.Command, s *session) {
	var match, mod string
	cmd := &cobra.Command{
		Use:   "tune [FREQ]",
		Short: "Tune the receiver, or print its frequency when FREQ is omitted",
		Long: `tune sends FREQ to the receiver's remote-control port. When a bookmark is
stored at FREQ its modulation and bandwidth are applied too. Without FREQ the
current receiver frequency and the bookmark nearest to it are printed.`,
		Example: `
rigbook tune 118.1M
rigbook tune 7074k --mod USB
rigbook tune
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := s.catalog()
			if err != nil {
				return err
			}
			rig := s.rig()
			defer rig.Close()
			ctx, cancel := context.WithTimeout(cmd.Context(), rigCommandTimeout)
			defer cancel()

			if len(args) == 0 {
				hz, err := rig.Frequency(ctx)
				if err != nil {
					return err
				}
				band := ""
				if plan, err := s.bandPlan(); err == nil {
					if b, ok := plan.BandAt(hz); ok {
						band = "  " + b.Name
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Hz%s\n", formatHz(hz), band)
				if b, ok := cat.BookmarkNear(hz); ok {
					printBookmarks(cmd.OutOrStdout(), cat, []catalog.Bookmark{b})
				}
				return nil
			}

			b, err := findBookmark(cat, args[0], match)
			switch {
			case err == nil:
				if mod == "" {
					mod = b.Modulation
				}
				err = rig.Tune(ctx, b.Frequency, mod, b.Bandwidth)
			case errors.Is(err, errNoBookmark):
				hz, perr := parseHz(args[0])
				if perr != nil {
					return perr
				}
				if mod == "" {
					err = rig.SetFrequency(ctx, hz)
				} else {
					err = rig.Tune(ctx, hz, mod, 0)
				}
			}
			if err != nil {
				return err
			}
			log.Printf("Rig: tuned %s to %s", rig.Addr(), args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&match, "match", "", "name substring when several bookmarks share FREQ")
	cmd.Flags().StringVarP(&mod, "mod", "m", "", "modulation to set")
	root.AddCommand(cmd)
}

func addExport(root *cobra.Command, s *session) {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog to a SQLite database",
		Example: `
rigbook export
rigbook export --out /tmp/bookmarks.db
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := s.catalog()
			if err != nil {
				return err
			}
			if out == "" {
				out = s.cfg.Export.Path
			}
			if _, err := export.Preflight(out, preflightTimeout, log.Printf); err != nil {
				return err
			}
			res, err := export.Write(cmd.Context(), out, cat)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s bookmarks and %s tags to %s\n",
				humanize.Comma(int64(res.Bookmarks)), humanize.Comma(int64(res.Tags)), res.Path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "database path (default export.path)")
	root.AddCommand(cmd)
}

func addConfig(root *cobra.Command, s *session) {
	root.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			s.cfg.Print(cmd.OutOrStdout())
		},
	})
}

var errNoBookmark = errors.New("no bookmark at that frequency")

// findBookmark resolves a bookmark by exact frequency. match narrows
// bookmarks sharing the frequency by a case-insensitive name substring.
func findBookmark(cat *catalog.Catalog, freqArg, match string) (catalog.Bookmark, error) {
	freq, err := parseHz(freqArg)
	if err != nil {
		return catalog.Bookmark{}, err
	}
	found := cat.BookmarksInRange(freq, freq)
	if match = strings.ToLower(strings.TrimSpace(match)); match != "" {
		found = filterBookmarks(found, func(b catalog.Bookmark) bool {
			return strings.Contains(strings.ToLower(b.Name), match)
		})
	}
	switch len(found) {
	case 0:
		return catalog.Bookmark{}, fmt.Errorf("%w: %s Hz", errNoBookmark, formatHz(freq))
	case 1:
		return found[0], nil
	}
	names := make([]string, len(found))
	for i, b := range found {
		names[i] = strconv.Quote(b.Name)
	}
	return catalog.Bookmark{}, fmt.Errorf("%d bookmarks at %s Hz (%s); pick one with --match", len(found), formatHz(freq), strings.Join(names, ", "))
}

func filterBookmarks(list []catalog.Bookmark, keep func(catalog.Bookmark) bool) []catalog.Bookmark {
	out := list[:0:0]
	for _, b := range list {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

func unknownTag(cat *catalog.Catalog, name string) error {
	if near := cat.SuggestTags(name, maxTagSuggestions); len(near) > 0 {
		return fmt.Errorf("unknown tag %q (did you mean %s?)", name, strings.Join(near, ", "))
	}
	return fmt.Errorf("unknown tag %q", name)
}

// hintNewTags warns about tag names that do not exist yet but are close to
// one that does, which is usually a typo.
func hintNewTags(w io.Writer, cat *catalog.Catalog, names []string) {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := cat.TagByName(name); ok {
			continue
		}
		if near := cat.SuggestTags(name, maxTagSuggestions); len(near) > 0 {
			printHint(w, "new tag %q; did you mean %s?", name, strings.Join(near, ", "))
		}
	}
}

// parseHz accepts plain Hz or an SI prefix with an optional Hz unit:
// "144800000", "144.8M", "7074k", "14.074 MHz". Prefixes are case sensitive
// (m is milli).
func parseHz(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("frequency is empty")
	}
	if hz, err := strconv.ParseInt(s, 10, 64); err == nil {
		if hz <= 0 {
			return 0, fmt.Errorf("frequency %q must be positive", s)
		}
		return hz, nil
	}
	v, unit, err := humanize.ParseSI(s)
	if err != nil || (unit != "" && !strings.EqualFold(unit, "hz")) {
		return 0, fmt.Errorf("invalid frequency %q", s)
	}
	hz := int64(math.Round(v))
	if hz <= 0 {
		return 0, fmt.Errorf("frequency %q must be positive", s)
	}
	return hz, nil
}

// parseBandwidth is parseHz with empty and 0 meaning unspecified.
func parseBandwidth(s string) (int64, error) {
	if s = strings.TrimSpace(s); s == "" || s == "0" {
		return 0, nil
	}
	return parseHz(s)
}
