// Package bandplan loads frequency ranges (amateur bands, broadcast segments,
// ...) from bandplan.csv and answers which of them overlap a frequency window.
package bandplan

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// FileName is the band plan inside the storage directory.
const FileName = "bandplan.csv"

const planFields = 6

// Band is one range of the plan. Frequencies are in Hz.
type Band struct {
	Min        int64
	Max        int64
	Modulation string
	Step       int
	Color      tcell.Color
	Name       string
}

// Contains reports whether freq lies inside the band.
func (b Band) Contains(freq int64) bool {
	return freq >= b.Min && freq <= b.Max
}

// Plan is the loaded band table. It is safe for concurrent use; Load and the
// file watcher swap the table while views read it.
type Plan struct {
	mu       sync.RWMutex
	path     string
	bands    []Band
	builtin  bool
	onChange []func()
}

// New returns a plan for dir/bandplan.csv that starts out with the built-in
// table.
func New(dir string) *Plan {
	return &Plan{
		path:    filepath.Join(dir, FileName),
		bands:   Builtin(),
		builtin: true,
	}
}

// Path returns the band plan file location.
func (p *Plan) Path() string {
	return p.path
}

// IsBuiltin reports whether the built-in table is in use because no file was
// found.
func (p *Plan) IsBuiltin() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.builtin
}

// OnChange registers fn to run after every successful Load.
func (p *Plan) OnChange(fn func()) {
	p.mu.Lock()
	p.onChange = append(p.onChange, fn)
	p.mu.Unlock()
}

// Load reads the band plan file. A missing file installs the built-in table;
// any other read error keeps the current table and is returned.
func (p *Plan) Load() error {
	data, err := os.ReadFile(p.path)
	var bands []Band
	builtin := false
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("BandPlan: %s not found, using built-in plan", p.path)
		bands = Builtin()
		builtin = true
	case err != nil:
		return fmt.Errorf("bandplan: read %s: %w", p.path, err)
	default:
		bands = Parse(data, p.path)
	}

	p.mu.Lock()
	p.bands = bands
	p.builtin = builtin
	listeners := append([]func(){}, p.onChange...)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return nil
}

// Parse decodes band plan lines "min,max,modulation,step,color,name".
// Commas after the fifth belong to the name. Bad lines are logged with
// source as the location and skipped.
func Parse(data []byte, source string) []Band {
	var bands []Band
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		band, err := parseLine(line)
		if err != nil {
			log.Printf("BandPlan: %s:%d: ignoring line %q: %v", source, lineNo, line, err)
			continue
		}
		bands = append(bands, band)
	}
	return bands
}

func parseLine(line string) (Band, error) {
	fields := strings.SplitN(line, ",", planFields)
	if len(fields) < planFields {
		return Band{}, fmt.Errorf("expected %d fields, found %d", planFields, len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	min, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Band{}, fmt.Errorf("min frequency %q: %w", fields[0], err)
	}
	max, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return Band{}, fmt.Errorf("max frequency %q: %w", fields[1], err)
	}
	if max < min {
		return Band{}, fmt.Errorf("max frequency %d below min %d", max, min)
	}
	step := 0
	if fields[3] != "" {
		step, err = strconv.Atoi(fields[3])
		if err != nil {
			return Band{}, fmt.Errorf("step %q: %w", fields[3], err)
		}
	}
	return Band{
		Min:        min,
		Max:        max,
		Modulation: fields[2],
		Step:       step,
		Color:      tcell.GetColor(strings.ToLower(fields[4])),
		Name:       fields[5],
	}, nil
}

// Bands returns a copy of the table in file order.
func (p *Plan) Bands() []Band {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Band(nil), p.bands...)
}

// BandsInRange returns the bands that overlap [low, high].
func (p *Plan) BandsInRange(low, high int64) []Band {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var found []Band
	for _, b := range p.bands {
		if b.Max >= low && b.Min <= high {
			found = append(found, b)
		}
	}
	return found
}

// BandAt returns the first band containing freq.
func (p *Plan) BandAt(freq int64) (Band, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, b := range p.bands {
		if b.Contains(freq) {
			return b, true
		}
	}
	return Band{}, false
}
