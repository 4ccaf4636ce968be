package ui

import (
	"errors"
	"testing"

	"github.com/rivo/tview"

	"rigbook/catalog"
	"rigbook/modulation"
)

func TestBookmarkDialogAdds(t *testing.T) {
	c := testCatalog(t)
	d := newBookmarkDialog(c, "", 14074000)
	var saved catalog.BookmarkID
	d.onDone = func(id catalog.BookmarkID) { saved = id }

	if got := d.text(fieldFrequency); got != "14074000" {
		t.Fatalf("frequency prefilled with %q", got)
	}
	d.setText(fieldName, "  FT8 20m ")
	d.setText(fieldBandwidth, "3000")
	d.setText(fieldTags, "Digital, HF,")
	dd := d.form.GetFormItemByLabel(fieldModulation).(*tview.DropDown)
	dd.SetCurrentOption(modulation.Index("USB"))

	if err := d.submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if saved == "" {
		t.Fatalf("onDone did not receive the new bookmark")
	}
	b := c.Bookmark(saved)
	if b.Name != "FT8 20m" || b.Modulation != "USB" || b.Bandwidth != 3000 {
		t.Fatalf("added bookmark = %+v", b)
	}
	if b.TagString() != "Digital, HF" {
		t.Fatalf("tags = %q", b.TagString())
	}
}

func TestBookmarkDialogRejectsMissingFrequency(t *testing.T) {
	c := testCatalog(t)
	d := newBookmarkDialog(c, "", 0)
	done := false
	d.onDone = func(catalog.BookmarkID) { done = true }
	if err := d.submit(); !errors.Is(err, errNoFrequency) {
		t.Fatalf("expected errNoFrequency, got %v", err)
	}
	if done || c.Len() != 3 {
		t.Fatalf("dialog closed or catalog changed on invalid input")
	}
}

func TestBookmarkDialogEdits(t *testing.T) {
	c := testCatalog(t)
	tower, _ := c.BookmarkNear(118100000)
	d := newBookmarkDialog(c, tower.ID, 0)

	if got := d.text(fieldTags); got != "Airband" {
		t.Fatalf("tags field = %q", got)
	}
	d.setText(fieldFrequency, "118700000")
	d.setText(fieldTags, "")
	d.setText(fieldInfo, "approach")
	if err := d.submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	b := c.Bookmark(tower.ID)
	if b.Frequency != 118700000 || b.Info != "approach" || b.Modulation != "AM" {
		t.Fatalf("edited bookmark = %+v", b)
	}
	if len(b.Tags) != 1 || b.Tags[0] != c.UntaggedID() {
		t.Fatalf("clearing tags should leave Untagged, got %v", b.Tags)
	}
}

func TestBookmarkDialogKeepsUnsupportedModulation(t *testing.T) {
	c := testCatalog(t)
	id := c.AddBookmark(catalog.NewBookmark{Frequency: 10136000, Name: "FT8 30m", Modulation: "FT8"})
	d := newBookmarkDialog(c, id, 0)
	if got := d.modulation(); got != "FT8" {
		t.Fatalf("dropdown = %q, want the stored mode", got)
	}
	if err := d.submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := c.Bookmark(id).Modulation; got != "FT8" {
		t.Fatalf("modulation = %q", got)
	}
}

func TestBookmarkDialogTagPicker(t *testing.T) {
	c := testCatalog(t)
	aprs, _ := c.BookmarkNear(144800000)
	d := newBookmarkDialog(c, aprs.ID, 0)

	ids := d.pickedTagIDs()
	if len(ids) != 2 {
		t.Fatalf("picked = %v", ids)
	}
	air, _ := c.TagByName("Airband")
	d.applyPicked([]catalog.TagID{air.ID, c.UntaggedID()})
	if got := d.text(fieldTags); got != "Airband" {
		t.Fatalf("tags field = %q", got)
	}
}

func TestPromptReportsErrors(t *testing.T) {
	c := testCatalog(t)
	var gotErr error
	closed := false
	form := newPrompt("New tag", "Name", "VHF", func(name string) error {
		_, err := c.AddTag(name)
		return err
	}, func() { closed = true }, func(err error) { gotErr = err })

	form.GetButton(0).InputHandler()(enterKey(), func(tview.Primitive) {})
	if !errors.Is(gotErr, catalog.ErrTagExists) || closed {
		t.Fatalf("err=%v closed=%v", gotErr, closed)
	}
}
