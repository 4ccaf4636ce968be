package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

type savedBookmark struct {
	Frequency  int64
	Name       string
	Modulation string
	Bandwidth  int64
	Info       string
	Tags       string
}

func snapshot(c *Catalog) ([]savedBookmark, map[string]string) {
	var bms []savedBookmark
	used := map[string]string{}
	for _, b := range c.Bookmarks() {
		var names []string
		for _, id := range b.Tags {
			tag := c.Tag(id)
			names = append(names, tag.Name)
			used[tag.Name] = tag.Color.String()
		}
		sort.Strings(names)
		bms = append(bms, savedBookmark{
			Frequency:  b.Frequency,
			Name:       b.Name,
			Modulation: b.Modulation,
			Bandwidth:  b.Bandwidth,
			Info:       b.Info,
			Tags:       strings.Join(names, "|"),
		})
	}
	sort.SliceStable(bms, func(i, j int) bool {
		if bms[i].Frequency != bms[j].Frequency {
			return bms[i].Frequency < bms[j].Frequency
		}
		return bms[i].Name < bms[j].Name
	})
	return bms, used
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	c.AddBookmark(NewBookmark{Frequency: 145500000, Name: "Calling; 2m", Modulation: "NFM", Bandwidth: 12500, Tags: []string{"VHF", "Repeaters, local"}})
	c.AddBookmark(NewBookmark{Frequency: 7074000, Name: `"FT8" watering hole`, Modulation: "USB", Bandwidth: 3000, Tags: []string{"HF"}, Info: "busy, evenings; weekends"})
	c.AddBookmark(NewBookmark{Frequency: 7074000, Name: "second at same freq", Modulation: "USB"})
	c.AddBookmark(NewBookmark{Frequency: 198000, Name: `Radio 4 "LW"`, Modulation: "AM", Tags: []string{`"quoted" tag`}})
	c.AddBookmark(NewBookmark{Frequency: 1000000000, Name: "Zürich", Modulation: "WFM (stereo)", Bandwidth: 160000, Tags: []string{"broadcast"}})
	hf, _ := c.TagByName("HF")
	c.SetTagColor(hf.ID, "#123456")
	c.FindOrAddTag("Unused", true)

	if err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	wantBms, wantTags := snapshot(c)

	loaded := New(dir)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	gotBms, gotTags := snapshot(loaded)
	if len(gotBms) != len(wantBms) {
		t.Fatalf("bookmarks = %d, want %d", len(gotBms), len(wantBms))
	}
	for i := range wantBms {
		if gotBms[i] != wantBms[i] {
			t.Fatalf("bookmark %d:\n got %+v\nwant %+v", i, gotBms[i], wantBms[i])
		}
	}
	for name, color := range wantTags {
		if gotTags[name] != color {
			t.Fatalf("tag %q color = %q, want %q", name, gotTags[name], color)
		}
	}
	if _, ok := loaded.TagByName("Unused"); ok {
		t.Fatalf("unreferenced tags should not be persisted")
	}
}

func TestSaveLoadTagsStartingWithSeparator(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	c.AddBookmark(NewBookmark{Frequency: 100, Name: "Beacon", Modulation: "AM", Tags: []string{";ops", "Net"}})
	c.AddBookmark(NewBookmark{Frequency: 200, Name: "Relay", Modulation: "AM", Tags: []string{";"}, Info: "keep me"})
	if err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	wantBms, _ := snapshot(c)

	loaded := New(dir)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	gotBms, _ := snapshot(loaded)
	if len(gotBms) != len(wantBms) {
		t.Fatalf("bookmarks = %d, want %d", len(gotBms), len(wantBms))
	}
	for i := range wantBms {
		if gotBms[i] != wantBms[i] {
			t.Fatalf("bookmark %d:\n got %+v\nwant %+v", i, gotBms[i], wantBms[i])
		}
	}
}

func TestSaveOmitsInfoColumnWhenUnused(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	c.AddBookmark(NewBookmark{Frequency: 100000000, Name: "Test", Modulation: "NFM", Bandwidth: 12500})
	if err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(c.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	if strings.Contains(text, "Info") {
		t.Fatalf("Info header written without notes:\n%s", text)
	}
	wantLine := "   100000000; Test                       ; Narrow FM           ;      12500; "
	if !strings.Contains(text, strings.TrimRight(wantLine, " ")+"\n") {
		t.Fatalf("bookmark line not found in:\n%s", text)
	}

	c.SetBookmarkInfo(c.Bookmarks()[0].ID, "note")
	if err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, _ = os.ReadFile(c.Path())
	if !strings.Contains(string(data), "; Info\n") {
		t.Fatalf("Info header missing:\n%s", data)
	}
}

func TestSaveIsNoOpWhenClean(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	id := c.AddBookmark(NewBookmark{Frequency: 1, Name: "a"})
	if err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if c.Dirty() {
		t.Fatalf("dirty after successful save")
	}
	if err := os.Remove(c.Path()); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := c.Save(); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if _, err := os.Stat(c.Path()); !os.IsNotExist(err) {
		t.Fatalf("clean save touched the filesystem: %v", err)
	}

	c.SetBookmarkName(id, "b")
	if err := c.Save(); err != nil {
		t.Fatalf("Save after edit: %v", err)
	}
	if _, err := os.Stat(c.Path()); err != nil {
		t.Fatalf("edit was not saved: %v", err)
	}
}

func TestSaveLeavesNoBackupOrTemp(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	c.AddBookmark(NewBookmark{Frequency: 1})
	for i := 0; i < 2; i++ {
		if err := c.Save(); err != nil {
			t.Fatalf("Save: %v", err)
		}
		c.AddBookmark(NewBookmark{Frequency: int64(i + 2)})
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != FileName {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("unexpected files %v", names)
	}
}

func TestSaveTempFailureKeepsDirty(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "missing"))
	c.AddBookmark(NewBookmark{Frequency: 1})
	if err := c.Save(); err == nil {
		t.Fatalf("expected an error saving into a missing directory")
	}
	if !c.Dirty() {
		t.Fatalf("failed save cleared the dirty flag")
	}
}

func TestSaveBackupFailureLeavesOriginal(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	id := c.AddBookmark(NewBookmark{Frequency: 1, Name: "original"})
	if err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	before, _ := os.ReadFile(c.Path())

	renameFile = func(oldpath, newpath string) error {
		if oldpath == c.Path() && newpath == c.Path()+backupSuffix {
			return errors.New("permission denied")
		}
		return os.Rename(oldpath, newpath)
	}
	t.Cleanup(func() { renameFile = os.Rename })

	c.SetBookmarkName(id, "edited")
	if err := c.Save(); err == nil {
		t.Fatalf("expected backup failure")
	}
	if !c.Dirty() || !c.Unsaved() {
		t.Fatalf("failed save cleared the dirty state")
	}
	after, _ := os.ReadFile(c.Path())
	if string(after) != string(before) {
		t.Fatalf("original file changed:\n%s", after)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only %s in %s, found %d entries", filepath.Base(c.Path()), dir, len(entries))
	}

	renameFile = os.Rename
	if err := c.Save(); err != nil {
		t.Fatalf("retry Save: %v", err)
	}
	if c.Dirty() {
		t.Fatalf("successful retry left the catalog dirty")
	}
	loaded := New(dir)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Bookmarks()[0].Name != "edited" {
		t.Fatalf("retry did not persist the edit")
	}
}

func TestSaveCopyFailureRestoresBackup(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	id := c.AddBookmark(NewBookmark{Frequency: 1, Name: "original"})
	if err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	before, _ := os.ReadFile(c.Path())

	copyFile = func(src, dst string) error {
		if err := os.WriteFile(dst, []byte("partial"), 0o644); err != nil {
			return err
		}
		return errors.New("disk full")
	}
	t.Cleanup(func() { copyFile = copyFileContents })

	c.SetBookmarkName(id, "edited")
	if err := c.Save(); err == nil {
		t.Fatalf("expected copy failure")
	}
	if !c.Dirty() {
		t.Fatalf("failed save cleared the dirty flag")
	}
	after, _ := os.ReadFile(c.Path())
	if string(after) != string(before) {
		t.Fatalf("original file not restored:\n%s", after)
	}
	if _, err := os.Stat(c.Path() + backupSuffix); !os.IsNotExist(err) {
		t.Fatalf("backup left behind: %v", err)
	}

	copyFile = copyFileContents
	if err := c.Save(); err != nil {
		t.Fatalf("retry Save: %v", err)
	}
	loaded := New(dir)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Bookmarks()[0].Name != "edited" {
		t.Fatalf("retry did not persist the edit")
	}
}

func TestSaveSkipsIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	c.AddBookmark(NewBookmark{Frequency: 1, Name: "same"})
	if err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	renames := 0
	renameFile = func(oldpath, newpath string) error {
		renames++
		return os.Rename(oldpath, newpath)
	}
	t.Cleanup(func() { renameFile = os.Rename })

	tag := c.FindOrAddTag("Unreferenced", true)
	if tag == "" || !c.Dirty() {
		t.Fatalf("expected a dirty catalog")
	}
	if err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if renames != 0 {
		t.Fatalf("identical content was rewritten")
	}
	if c.Dirty() {
		t.Fatalf("dirty flag should clear when content already matches")
	}
}
