package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisclosureShortTextIdenticalRenderings(t *testing.T) {
	for _, n := range []int{0, 1, 799, 800} {
		text := strings.Repeat("a", n)
		d := NewDisclosure(DefaultClipLength)
		d.Replace(text)

		collapsed := d.Render()
		d.Toggle()
		expanded := d.Render()

		assert.Equal(t, collapsed, expanded, "len=%d", n)
		assert.Equal(t, text, collapsed)
		assert.NotContains(t, collapsed, Ellipsis)
		assert.False(t, d.Clipped())
	}
}

func TestDisclosureLongTextClipsAt800(t *testing.T) {
	text := strings.Repeat("b", 800) + "tail"
	var d Disclosure
	d.Replace(text)

	assert.True(t, d.Clipped())
	assert.Equal(t, strings.Repeat("b", 800)+Ellipsis, d.Render())

	d.Toggle()
	assert.Equal(t, text, d.Render(), "expanded rendering must return FullText verbatim")

	d.Toggle()
	assert.Equal(t, strings.Repeat("b", 800)+Ellipsis, d.Render())
	assert.Equal(t, text, d.FullText, "toggling must not alter FullText")
}

func TestDisclosureClipsByRune(t *testing.T) {
	text := strings.Repeat("é", 801)
	d := Disclosure{FullText: text}
	assert.Equal(t, strings.Repeat("é", 800)+Ellipsis, d.Render())
}

func TestDisclosureReplaceCollapses(t *testing.T) {
	d := NewDisclosure(10)
	d.Replace("first response that is long")
	d.Toggle()
	assert.True(t, d.Expanded)

	d.Replace("second")
	assert.False(t, d.Expanded)
	assert.Equal(t, "second", d.FullText)
}

func TestDisclosureCustomClipLength(t *testing.T) {
	d := NewDisclosure(5)
	d.Replace("abcdefgh")
	assert.Equal(t, "abcde...", d.Render())
}

func TestClip(t *testing.T) {
	assert.Equal(t, "", Clip("", 3))
	assert.Equal(t, "abc", Clip("abc", 3))
	assert.Equal(t, "ab...", Clip("abc", 2))
}
