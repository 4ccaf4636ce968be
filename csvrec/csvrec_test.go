package csvrec

import (
	"errors"
	"reflect"
	"testing"
)

func TestQuoteOnlyWhenNeeded(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Local repeater", "Local repeater"},
		{"Tag, with comma", `"Tag, with comma"`},
		{"semi;colon", `"semi;colon"`},
		{`"leading quote`, `""leading quote"`},
		{`say "hi"`, `say "hi"`},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Quote(tc.in, 0); got != tc.want {
			t.Fatalf("Quote(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestQuotePadsInsideQuotes(t *testing.T) {
	if got := Quote("a,b", 8); got != `"a,b   "` {
		t.Fatalf("unexpected padded quote: %q", got)
	}
	if got := Quote("plain", 8); got != "plain   " {
		t.Fatalf("unexpected padded plain field: %q", got)
	}
}

func TestQuoteDefusesEveryQuoteSeparatorPair(t *testing.T) {
	got := Quote(`a";b",c";d`, 0)
	if got != `a"_b"_c"_d` {
		t.Fatalf("expected all pairs defused, got %q", got)
	}
}

func TestSplitBasic(t *testing.T) {
	fields, err := Split("   123456000 ;  Local repeater   ;  NFM  ;  12500 ;  PlainTag ;  some note", RecordSeparator, 6)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	want := []string{"123456000", "Local repeater", "NFM", "12500", "PlainTag", "some note"}
	if !reflect.DeepEqual(fields, want) {
		t.Fatalf("got %q, want %q", fields, want)
	}
}

func TestSplitQuotedFieldWithSeparators(t *testing.T) {
	fields, err := Split(`"Tag, with comma"      ;  #aabbcc`, RecordSeparator, 2)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if fields[0] != "Tag, with comma" || fields[1] != "#aabbcc" {
		t.Fatalf("unexpected fields %q", fields)
	}
}

func TestSplitTrailingSeparatorYieldsEmptyField(t *testing.T) {
	fields, err := Split("100000000;Test;NFM;12500;Untagged;", RecordSeparator, 0)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(fields) != 6 || fields[5] != "" {
		t.Fatalf("expected 6 fields with empty trailing note, got %q", fields)
	}
}

func TestSplitEmptyLine(t *testing.T) {
	fields, err := Split("   ", RecordSeparator, 0)
	if err != nil || len(fields) != 0 {
		t.Fatalf("expected no fields, got %q err=%v", fields, err)
	}
}

func TestSplitFieldCountMismatch(t *testing.T) {
	fields, err := Split("1;2;3;4", RecordSeparator, 5)
	if fields != nil {
		t.Fatalf("expected nil fields on mismatch, got %q", fields)
	}
	var fce *FieldCountError
	if !errors.As(err, &fce) {
		t.Fatalf("expected FieldCountError, got %v", err)
	}
	if fce.Want != 5 || fce.Got != 4 {
		t.Fatalf("unexpected error detail: %+v", fce)
	}
}

func TestSplitUnterminatedQuoteFallsBackToPlainField(t *testing.T) {
	fields, err := Split(`"open; rest`, RecordSeparator, 0)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	want := []string{`"open`, "rest"}
	if !reflect.DeepEqual(fields, want) {
		t.Fatalf("got %q, want %q", fields, want)
	}
}

func TestQuoteRoundTrip(t *testing.T) {
	values := []string{
		"plain",
		"with; semicolon",
		"with, comma",
		`"starts with quote`,
		`"quoted"`,
		`ends with quote"`,
		`inner "quote" text`,
		`x" ;y`,
		"Zürich; 2m",
	}
	for _, v := range values {
		line := JoinRecord(Quote(v, 24), Quote("tail", 0))
		fields, err := Split(line, RecordSeparator, 2)
		if err != nil {
			t.Fatalf("split %q: %v", line, err)
		}
		if fields[0] != v {
			t.Fatalf("round trip of %q produced %q (line %q)", v, fields[0], line)
		}
		if fields[1] != "tail" {
			t.Fatalf("round trip of %q corrupted next field: %q", v, fields[1])
		}
	}
}

func TestQuoteRoundTripLossyPair(t *testing.T) {
	line := JoinRecord(Quote(`he said "hi"; bye`, 0), "x")
	fields, err := Split(line, RecordSeparator, 2)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if fields[0] != `he said "hi"_ bye` {
		t.Fatalf("expected documented substitution, got %q", fields[0])
	}
}

func TestQuoteListRoundTrip(t *testing.T) {
	cases := [][]string{
		{"PlainTag"},
		{"a", "b"},
		{"Tag, with comma"},
		{"x;y", "z"},
		{`"q`},
		{"Tag, with comma", "semi;colon", "Plain"},
		{";ops", "Net"},
		{"Net", ";ops"},
		{";", ";;x", ",lead"},
	}
	for _, items := range cases {
		line := JoinRecord("100", QuoteList(items, 20), Quote("note; here", 0))
		fields, err := Split(line, RecordSeparator, 3)
		if err != nil {
			t.Fatalf("split %q: %v", line, err)
		}
		got := SplitList(fields[1])
		if !reflect.DeepEqual(got, items) {
			t.Fatalf("list %q round tripped to %q (line %q)", items, got, line)
		}
		if fields[2] != "note; here" {
			t.Fatalf("list %q corrupted trailing note: %q", items, fields[2])
		}
	}
}

func TestSplitListDropsEmptyItems(t *testing.T) {
	got := SplitList("a,,b,")
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected items %q", got)
	}
	if got := SplitList(""); len(got) != 0 {
		t.Fatalf("expected no items for empty column, got %q", got)
	}
}

func TestQuoteListKeepsLeadingSeparatorInsideColumn(t *testing.T) {
	line := JoinRecord("1", QuoteList([]string{";a", "b"}, 0), "note")
	fields, err := Split(line, RecordSeparator, 3)
	if err != nil {
		t.Fatalf("split %q: %v", line, err)
	}
	if got := SplitList(fields[1]); !reflect.DeepEqual(got, []string{";a", "b"}) {
		t.Fatalf("items = %q (line %q)", got, line)
	}
	if fields[2] != "note" {
		t.Fatalf("note = %q (line %q)", fields[2], line)
	}
}
