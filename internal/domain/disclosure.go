package domain

// DefaultClipLength is the number of characters shown while a disclosure is collapsed.
const DefaultClipLength = 800

// Ellipsis is appended to a clipped rendering.
const Ellipsis = "..."

// Disclosure wraps one long text value with a collapsed/expanded toggle.
// The zero value is an empty, collapsed disclosure with the default clip length.
type Disclosure struct {
	FullText string
	Expanded bool
	ClipLen  int // 0 means DefaultClipLength
}

// NewDisclosure creates an empty disclosure clipping at clipLen characters.
func NewDisclosure(clipLen int) Disclosure {
	return Disclosure{ClipLen: clipLen}
}

// Replace swaps in a new full text and collapses the view.
func (d *Disclosure) Replace(text string) {
	d.FullText = text
	d.Expanded = false
}

// Toggle flips the expanded flag. It never touches FullText.
func (d *Disclosure) Toggle() {
	d.Expanded = !d.Expanded
}

// Clipped reports whether the collapsed rendering hides part of FullText,
// i.e. whether a "read more" control is meaningful.
func (d Disclosure) Clipped() bool {
	return len([]rune(d.FullText)) > d.clipLen()
}

// Render returns the text to display for the current state.
func (d Disclosure) Render() string {
	if d.Expanded {
		return d.FullText
	}
	return Clip(d.FullText, d.clipLen())
}

func (d Disclosure) clipLen() int {
	if d.ClipLen <= 0 {
		return DefaultClipLength
	}
	return d.ClipLen
}

// Clip returns the first n characters of s followed by Ellipsis when s is
// longer than n characters, and s unchanged otherwise. Characters are runes.
func Clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + Ellipsis
}
