package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveMode(t *testing.T) {
	buf := new(bytes.Buffer)

	// Auto mode resolves to markdown for non-terminal writers.
	r := NewRenderer(buf, buf, ModeAuto)
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())

	assert.Equal(t, ModeJSON, NewRenderer(buf, buf, ModeJSON).EffectiveMode())
	assert.Equal(t, ModeText, NewRenderer(buf, buf, ModeText).EffectiveMode())

	// Unknown modes fall back to auto.
	assert.Equal(t, ModeMarkdown, NewRenderer(buf, buf, Mode("bogus")).EffectiveMode())
}

func TestRenderer_Writes(t *testing.T) {
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	r := NewRenderer(out, errOut, ModeText)

	r.Println("hello")
	r.Printf("%d records\n", 3)
	r.Warnln("careful")

	assert.Contains(t, out.String(), "hello")
	assert.Contains(t, out.String(), "3 records")
	assert.Contains(t, errOut.String(), "careful")
}

func TestStyles_PlainForNonTerminal(t *testing.T) {
	buf := new(bytes.Buffer)
	r := NewRenderer(buf, buf, ModeMarkdown)

	// Styling must not inject escape sequences when not on a terminal.
	assert.Equal(t, "title", r.Styles().Header1.Render("title"))
}
