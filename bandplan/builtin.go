package bandplan

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// builtinTable covers the IARU/US amateur allocations. Each band is split
// into a CW/digital and a phone segment where the allocation has one.
var builtinTable = []Band{
	{Name: "2200m", Min: 135_700, Max: 137_800, Modulation: "CW-U", Step: 100},
	{Name: "630m", Min: 472_000, Max: 479_000, Modulation: "CW-U", Step: 100},
	{Name: "160m", Min: 1_800_000, Max: 2_000_000, Modulation: "LSB", Step: 500},
	{Name: "80m CW", Min: 3_500_000, Max: 3_600_000, Modulation: "CW-U", Step: 100},
	{Name: "80m", Min: 3_600_000, Max: 4_000_000, Modulation: "LSB", Step: 500},
	{Name: "60m", Min: 5_330_000, Max: 5_405_000, Modulation: "USB", Step: 500},
	{Name: "40m CW", Min: 7_000_000, Max: 7_125_000, Modulation: "CW-U", Step: 100},
	{Name: "40m", Min: 7_125_000, Max: 7_300_000, Modulation: "LSB", Step: 500},
	{Name: "30m", Min: 10_100_000, Max: 10_150_000, Modulation: "CW-U", Step: 100},
	{Name: "20m CW", Min: 14_000_000, Max: 14_150_000, Modulation: "CW-U", Step: 100},
	{Name: "20m", Min: 14_150_000, Max: 14_350_000, Modulation: "USB", Step: 500},
	{Name: "17m", Min: 18_068_000, Max: 18_168_000, Modulation: "USB", Step: 500},
	{Name: "15m CW", Min: 21_000_000, Max: 21_200_000, Modulation: "CW-U", Step: 100},
	{Name: "15m", Min: 21_200_000, Max: 21_450_000, Modulation: "USB", Step: 500},
	{Name: "12m", Min: 24_890_000, Max: 24_990_000, Modulation: "USB", Step: 500},
	{Name: "10m CW", Min: 28_000_000, Max: 28_300_000, Modulation: "CW-U", Step: 100},
	{Name: "10m", Min: 28_300_000, Max: 29_700_000, Modulation: "USB", Step: 500},
	{Name: "6m", Min: 50_000_000, Max: 54_000_000, Modulation: "USB", Step: 1000},
	{Name: "2m", Min: 144_000_000, Max: 148_000_000, Modulation: "Narrow FM", Step: 12500},
	{Name: "1.25m", Min: 222_000_000, Max: 225_000_000, Modulation: "Narrow FM", Step: 20000},
	{Name: "70cm", Min: 420_000_000, Max: 450_000_000, Modulation: "Narrow FM", Step: 25000},
	{Name: "33cm", Min: 902_000_000, Max: 928_000_000, Modulation: "Narrow FM", Step: 25000},
	{Name: "23cm", Min: 1_240_000_000, Max: 1_300_000_000, Modulation: "Narrow FM", Step: 25000},
	{Name: "13cm", Min: 2_300_000_000, Max: 2_310_000_000, Modulation: "Narrow FM", Step: 25000},
}

// Builtin returns a copy of the plan used when bandplan.csv is absent.
// Colors alternate so adjacent segments stay distinguishable.
func Builtin() []Band {
	out := make([]Band, len(builtinTable))
	for i, b := range builtinTable {
		if strings.HasSuffix(b.Name, " CW") {
			b.Color = tcell.ColorSteelBlue
		} else {
			b.Color = tcell.ColorSeaGreen
		}
		out[i] = b
	}
	return out
}

// NormalizeBand returns the canonical lowercase band identifier for the given
// label: whitespace removed, meter/centimeter words shortened to units, and
// "m" appended when the label is a bare number.
func NormalizeBand(label string) string {
	cleaned := strings.ToLower(strings.TrimSpace(label))
	if cleaned == "" {
		return ""
	}
	for _, pair := range []struct{ old, new string }{
		{"centimeters", "cm"},
		{"centimetres", "cm"},
		{"centimeter", "cm"},
		{"centimetre", "cm"},
		{"meters", "m"},
		{"metres", "m"},
		{"meter", "m"},
		{"metre", "m"},
	} {
		cleaned = strings.ReplaceAll(cleaned, pair.old, pair.new)
	}
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return ""
	}
	if last := cleaned[len(cleaned)-1]; last >= '0' && last <= '9' {
		cleaned += "m"
	}
	return cleaned
}

// Lookup returns every band whose name normalizes to label, so "40" matches
// both "40m CW" and "40m" segments of the built-in plan.
func (p *Plan) Lookup(label string) []Band {
	want := NormalizeBand(label)
	if want == "" {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	var found []Band
	for _, b := range p.bands {
		name := NormalizeBand(b.Name)
		if name == want || strings.TrimSuffix(name, "cw") == want {
			found = append(found, b)
		}
	}
	return found
}
