package panels

import (
	"testing"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestHeadlineTruncationKeepsRunesIntact(t *testing.T) {
	p := NewNewsPanel()
	p.SetSize(30, 10)

	headline := "株式会社の決算発表で市場が大きく動いた一日となりました"
	got := p.truncate(headline)

	assert.True(t, utf8.ValidString(got), "truncation must not split a rune")
	assert.LessOrEqual(t, runewidth.StringWidth(got), p.width-18)
}

func TestShortHeadlinePassesThrough(t *testing.T) {
	p := NewNewsPanel()
	p.SetSize(80, 10)

	assert.Equal(t, "ABC surges", p.truncate("ABC surges"))
}
