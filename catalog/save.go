package catalog

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"rigbook/csvrec"
	"rigbook/strutil"
)

// Column widths of the rendered file. Quoted fields keep the padding inside
// the quotes.
const (
	widthTag       = 22
	widthFrequency = 12
	widthName      = 27
	widthMode      = 20
	widthBandwidth = 10
	widthTags      = 22
)

// Filesystem steps of Save, replaced in tests to inject failures.
var (
	renameFile = os.Rename
	copyFile   = copyFileContents
)

// Save writes the catalog when anything changed since the last successful
// save. The previous file is moved to a .bck sibling while the new content is
// copied in and restored if that copy fails. On any error the dirty state is
// kept so the next Save retries.
func (c *Catalog) Save() error {
	if c.collectModified() {
		c.dirty = true
	}
	if !c.dirty {
		return nil
	}
	content := c.render()
	if sameContent(c.path, content) {
		c.dirty = false
		return nil
	}
	if err := replaceFile(c.path, content); err != nil {
		log.Printf("Catalog: save failed: %v", err)
		return err
	}
	c.dirty = false
	return nil
}

// collectModified clears the per-entity Modified flags and reports whether
// any was set.
func (c *Catalog) collectModified() bool {
	found := false
	for _, t := range c.st.tags {
		if t.Modified {
			t.Modified = false
			found = true
		}
	}
	for _, b := range c.st.bookmarks {
		if b.Modified {
			b.Modified = false
			found = true
		}
	}
	return found
}

func (c *Catalog) render() []byte {
	var buf bytes.Buffer
	writeLine := func(line string) {
		buf.WriteString(strings.TrimRight(line, " "))
		buf.WriteByte('\n')
	}

	writeLine(csvrec.JoinRecord(strutil.PadRight("# Tag name", widthTag), " color"))
	referenced := make(map[TagID]struct{})
	hasInfo := false
	for _, b := range c.st.bookmarks {
		for _, id := range b.Tags {
			referenced[id] = struct{}{}
		}
		if b.Info != "" {
			hasInfo = true
		}
	}
	for _, t := range c.st.tags {
		if _, ok := referenced[t.ID]; !ok {
			continue
		}
		writeLine(csvrec.JoinRecord(csvrec.Quote(t.Name, widthTag), t.Color.String()))
	}
	buf.WriteByte('\n')

	header := []string{
		strutil.PadRight("# Frequency", widthFrequency),
		strutil.PadRight("Name", widthName),
		strutil.PadRight("Modulation", widthMode),
		strutil.PadLeft("Bandwidth", widthBandwidth),
	}
	if hasInfo {
		header = append(header, strutil.PadRight("Tags", widthTags), "Info")
	} else {
		header = append(header, "Tags")
	}
	writeLine(csvrec.JoinRecord(header...))

	tagsWidth := 0
	if hasInfo {
		tagsWidth = widthTags
	}
	for _, b := range c.st.bookmarks {
		columns := []string{
			strutil.PadLeft(strconv.FormatInt(b.Frequency, 10), widthFrequency),
			csvrec.Quote(b.Name, widthName),
			csvrec.Quote(b.Modulation, widthMode),
			strutil.PadLeft(strconv.FormatInt(b.Bandwidth, 10), widthBandwidth),
			csvrec.QuoteList(c.st.sortedTagNames(b), tagsWidth),
		}
		if hasInfo {
			columns = append(columns, csvrec.Quote(b.Info, 0))
		}
		writeLine(csvrec.JoinRecord(columns...))
	}
	return buf.Bytes()
}

// sameContent reports whether path already holds content.
func sameContent(path string, content []byte) bool {
	existing, err := os.ReadFile(path)
	if err != nil || len(existing) != len(content) {
		return false
	}
	return xxh3.Hash(existing) == xxh3.Hash(content)
}

func replaceFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("catalog: create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			log.Printf("Catalog: remove temp file %s: %v", tmpPath, err)
		}
	}()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("catalog: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("catalog: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("catalog: close temp file: %w", err)
	}

	backup := path + backupSuffix
	if err := os.Remove(backup); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("catalog: remove stale backup: %w", err)
	}
	hadOriginal := true
	if err := renameFile(path, backup); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("catalog: back up %s: %w", path, err)
		}
		hadOriginal = false
	}

	if err := copyFile(tmpPath, path); err != nil {
		if hadOriginal {
			if restoreErr := renameFile(backup, path); restoreErr != nil {
				log.Printf("Catalog: restore %s from backup failed: %v", path, restoreErr)
			}
		} else {
			os.Remove(path)
		}
		return fmt.Errorf("catalog: install %s: %w", path, err)
	}
	if hadOriginal {
		if err := os.Remove(backup); err != nil {
			log.Printf("Catalog: remove backup %s: %v", backup, err)
		}
	}
	return nil
}

func copyFileContents(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
