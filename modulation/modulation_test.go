package modulation

import "testing"

func TestCanonicalResolvesAliases(t *testing.T) {
	cases := map[string]string{
		"NFM":        "Narrow FM",
		" nfm ":      "Narrow FM",
		"Narrow FM":  "Narrow FM",
		"cw":         "CW-U",
		"WFM_ST":     "WFM (stereo)",
		"wfm (oirt)": "WFM (oirt)",
		"usb":        "USB",
	}
	for in, want := range cases {
		if got := Canonical(in); got != want {
			t.Fatalf("Canonical(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsValidRejectsUnknown(t *testing.T) {
	for _, label := range []string{"", "DSB", "FT8"} {
		if IsValid(label) {
			t.Fatalf("expected %q to be rejected", label)
		}
	}
}

func TestRemoteTokens(t *testing.T) {
	mode, ok := Lookup("Narrow FM")
	if !ok || mode.Remote != "FM" {
		t.Fatalf("expected FM remote token, got %+v ok=%v", mode, ok)
	}
}

func TestIndexMatchesNames(t *testing.T) {
	names := Names()
	for i, name := range names {
		if Index(name) != i {
			t.Fatalf("Index(%q) = %d, want %d", name, Index(name), i)
		}
	}
	if Index("bogus") != -1 {
		t.Fatalf("expected -1 for unknown mode")
	}
}
