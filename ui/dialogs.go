package ui

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/rivo/tview"

	"rigbook/catalog"
	"rigbook/modulation"
)

// Form field labels.
const (
	fieldFrequency  = "Frequency (Hz)"
	fieldName       = "Name"
	fieldModulation = "Modulation"
	fieldBandwidth  = "Bandwidth (Hz)"
	fieldTags       = "Tags"
	fieldInfo       = "Info"
)

var errNoFrequency = errors.New("frequency must be a positive number of Hz")

// bookmarkDialog adds a bookmark (id == "") or edits an existing one.
type bookmarkDialog struct {
	form *tview.Form
	cat  *catalog.Catalog
	id   catalog.BookmarkID

	onDone  func(catalog.BookmarkID)
	onError func(error)
	// onPickTags opens the tag picker seeded with the tags in the Tags field.
	onPickTags func(d *bookmarkDialog)
}

func newBookmarkDialog(cat *catalog.Catalog, id catalog.BookmarkID, freq int64) *bookmarkDialog {
	d := &bookmarkDialog{form: tview.NewForm(), cat: cat, id: id}
	var b catalog.Bookmark
	title := "Add bookmark"
	if id != "" {
		b = cat.Bookmark(id)
		title = "Edit bookmark"
	} else {
		b.Frequency = freq
	}

	options := modulation.Names()
	current := modulation.Index(b.Modulation)
	if b.Modulation != "" && current < 0 {
		// Keep an unsupported mode from the file selectable so an edit
		// does not silently change it.
		options = append([]string{b.Modulation}, options...)
		current = 0
	}
	if current < 0 {
		current = modulation.Index("AM")
	}

	freqText := ""
	if b.Frequency > 0 {
		freqText = strconv.FormatInt(b.Frequency, 10)
	}
	bwText := ""
	if b.Bandwidth > 0 {
		bwText = strconv.FormatInt(b.Bandwidth, 10)
	}

	d.form.
		AddInputField(fieldFrequency, freqText, 16, digitsOnly, nil).
		AddInputField(fieldName, b.Name, 32, nil, nil).
		AddDropDown(fieldModulation, options, current, nil).
		AddInputField(fieldBandwidth, bwText, 10, digitsOnly, nil).
		AddInputField(fieldTags, b.TagString(), 32, nil, nil).
		AddInputField(fieldInfo, b.Info, 40, nil, nil).
		AddButton("Save", func() {
			if err := d.submit(); err != nil && d.onError != nil {
				d.onError(err)
			}
		}).
		AddButton("Tags...", func() {
			if d.onPickTags != nil {
				d.onPickTags(d)
			}
		}).
		AddButton("Cancel", func() { d.finish("") })
	d.form.SetCancelFunc(func() { d.finish("") })
	d.form.SetBorder(true).SetTitle(title).SetTitleAlign(tview.AlignLeft)
	d.form.SetBorderColor(uiFocusColor)
	d.form.SetTitleColor(uiTitleColor)
	return d
}

func digitsOnly(text string, last rune) bool {
	return last >= '0' && last <= '9'
}

func (d *bookmarkDialog) text(label string) string {
	if field, ok := d.form.GetFormItemByLabel(label).(*tview.InputField); ok {
		return strings.TrimSpace(field.GetText())
	}
	return ""
}

func (d *bookmarkDialog) setText(label, value string) {
	if field, ok := d.form.GetFormItemByLabel(label).(*tview.InputField); ok {
		field.SetText(value)
	}
}

func (d *bookmarkDialog) modulation() string {
	if dd, ok := d.form.GetFormItemByLabel(fieldModulation).(*tview.DropDown); ok {
		_, option := dd.GetCurrentOption()
		return option
	}
	return ""
}

// tagNames splits the Tags field on commas.
func (d *bookmarkDialog) tagNames() []string {
	var names []string
	for _, part := range strings.Split(d.text(fieldTags), ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// submit validates the form and writes it to the catalog.
func (d *bookmarkDialog) submit() error {
	freq, err := strconv.ParseInt(d.text(fieldFrequency), 10, 64)
	if err != nil || freq <= 0 {
		return errNoFrequency
	}
	var bw int64
	if text := d.text(fieldBandwidth); text != "" {
		bw, err = strconv.ParseInt(text, 10, 64)
		if err != nil {
			return fmt.Errorf("bandwidth: %w", err)
		}
	}
	names := d.tagNames()
	d.hintNewTags(names)

	id := d.id
	if id == "" {
		id = d.cat.AddBookmark(catalog.NewBookmark{
			Frequency:  freq,
			Name:       d.text(fieldName),
			Modulation: d.modulation(),
			Bandwidth:  bw,
			Info:       d.text(fieldInfo),
			Tags:       names,
		})
		d.finish(id)
		return nil
	}
	d.cat.SetBookmarkFrequency(id, freq)
	d.cat.SetBookmarkName(id, d.text(fieldName))
	if !d.cat.SetBookmarkModulation(id, d.modulation()) {
		log.Printf("UI: keeping unsupported modulation %q", d.cat.Bookmark(id).Modulation)
	}
	d.cat.SetBookmarkBandwidth(id, bw)
	d.cat.SetBookmarkInfo(id, d.text(fieldInfo))
	d.cat.SetBookmarkTags(id, names)
	d.finish(id)
	return nil
}

// hintNewTags logs names that will create a tag while a similar one exists.
func (d *bookmarkDialog) hintNewTags(names []string) {
	for _, name := range names {
		if _, ok := d.cat.TagByName(name); ok {
			continue
		}
		if similar := d.cat.SuggestTags(name, 3); len(similar) > 0 {
			log.Printf("UI: creating tag %q (similar: %s)", name, strings.Join(similar, ", "))
		}
	}
}

// applyPicked writes the picked tag names back into the Tags field.
func (d *bookmarkDialog) applyPicked(ids []catalog.TagID) {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		t := d.cat.Tag(id)
		if !t.IsUntagged() {
			names = append(names, t.Name)
		}
	}
	d.setText(fieldTags, strings.Join(names, ", "))
}

// pickedTagIDs resolves the Tags field to existing tags for seeding the
// picker. Names that do not exist yet are skipped.
func (d *bookmarkDialog) pickedTagIDs() []catalog.TagID {
	var ids []catalog.TagID
	for _, name := range d.tagNames() {
		if t, ok := d.cat.TagByName(name); ok {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func (d *bookmarkDialog) finish(id catalog.BookmarkID) {
	if d.onDone != nil {
		d.onDone(id)
	}
}

// newPrompt is a one-line input form used for tag names and colors.
func newPrompt(title, label, initial string, onOK func(string) error, onClose func(), onError func(error)) *tview.Form {
	form := tview.NewForm()
	form.AddInputField(label, initial, 32, nil, nil)
	form.AddButton("OK", func() {
		field := form.GetFormItemByLabel(label).(*tview.InputField)
		if err := onOK(field.GetText()); err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onClose()
	})
	form.AddButton("Cancel", onClose)
	form.SetCancelFunc(onClose)
	form.SetBorder(true).SetTitle(title).SetTitleAlign(tview.AlignLeft)
	form.SetBorderColor(uiFocusColor)
	form.SetTitleColor(uiTitleColor)
	return form
}

// newConfirm asks a yes/no question; onYes runs only for "Yes".
func newConfirm(text string, onYes func(), onClose func()) *tview.Modal {
	modal := tview.NewModal().
		SetText(text).
		AddButtons([]string{"Yes", "No"}).
		SetDoneFunc(func(_ int, label string) {
			if label == "Yes" {
				onYes()
			}
			onClose()
		})
	return modal
}
