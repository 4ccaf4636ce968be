// Package modulation lists the demodulator modes a bookmark may carry and maps
// them to the tokens the receiver remote-control protocol understands.
package modulation

import "rigbook/strutil"

// Mode describes one demodulator.
type Mode struct {
	Name    string   // display name stored in bookmarks.csv (e.g., "Narrow FM")
	Remote  string   // remote-control token (e.g., "FM")
	Aliases []string // accepted spellings, compared case-insensitively
}

var modeTable = []Mode{
	{Name: "Demod Off", Remote: "OFF", Aliases: []string{"OFF", "NONE"}},
	{Name: "Raw I/Q", Remote: "RAW", Aliases: []string{"RAW", "IQ", "I/Q"}},
	{Name: "AM", Remote: "AM"},
	{Name: "AM-Sync", Remote: "AMS", Aliases: []string{"AMS", "SAM"}},
	{Name: "LSB", Remote: "LSB"},
	{Name: "USB", Remote: "USB"},
	{Name: "CW-L", Remote: "CWL", Aliases: []string{"CWL", "CWR"}},
	{Name: "CW-U", Remote: "CWU", Aliases: []string{"CWU", "CW"}},
	{Name: "Narrow FM", Remote: "FM", Aliases: []string{"NFM", "FM"}},
	{Name: "WFM (mono)", Remote: "WFM", Aliases: []string{"WFM"}},
	{Name: "WFM (stereo)", Remote: "WFM_ST", Aliases: []string{"WFM_ST"}},
	{Name: "WFM (oirt)", Remote: "WFM_ST_OIRT", Aliases: []string{"WFM_ST_OIRT", "OIRT"}},
}

var modeLookup = func() map[string]int {
	m := make(map[string]int, len(modeTable)*3)
	for i, mode := range modeTable {
		m[strutil.NormalizeUpper(mode.Name)] = i
		for _, alias := range mode.Aliases {
			m[strutil.NormalizeUpper(alias)] = i
		}
	}
	return m
}()

// Lookup resolves a name or alias to its mode.
func Lookup(label string) (Mode, bool) {
	idx, ok := modeLookup[strutil.NormalizeUpper(label)]
	if !ok {
		return Mode{}, false
	}
	return modeTable[idx], true
}

// IsValid reports whether label names a supported demodulator.
func IsValid(label string) bool {
	_, ok := Lookup(label)
	return ok
}

// Canonical returns the display name for label, or "" when label is unknown.
func Canonical(label string) string {
	mode, ok := Lookup(label)
	if !ok {
		return ""
	}
	return mode.Name
}

// Names returns the display names in menu order.
func Names() []string {
	names := make([]string, len(modeTable))
	for i, mode := range modeTable {
		names[i] = mode.Name
	}
	return names
}

// Index returns the menu position of label, or -1.
func Index(label string) int {
	idx, ok := modeLookup[strutil.NormalizeUpper(label)]
	if !ok {
		return -1
	}
	return idx
}
