package page

import (
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *goquery.Document {
	t.Helper()
	doc, err := ParseSnapshot(raw)
	require.NoError(t, err)
	return doc
}

func TestExtractText(t *testing.T) {
	doc := mustParse(t, `<html><head><title> My  Page </title><script>x()</script></head>
<body>
  <h1>Hello</h1>
  <p>World   here</p>
  <script>var a = 1;</script>
  <style>p { color: red }</style>
  <noscript>enable js</noscript>
  <div hidden>secret</div>
  <ul><li>one</li><li>two</li></ul>
</body></html>`)

	assert.Equal(t, "My Page\n\nHello\n\nWorld here\n\none\ntwo", ExtractText(doc))
}

func TestExtractText_InlineAndBreaks(t *testing.T) {
	doc := mustParse(t, `<title>T</title><body><p>Hi <b>there</b>, friend<br>bye</p></body>`)

	assert.Equal(t, "T\n\nHi there, friend\nbye", ExtractText(doc))
}

func TestExtractText_NoTitle(t *testing.T) {
	doc := mustParse(t, `<body>  just text  </body>`)

	assert.Equal(t, "\n\njust text", ExtractText(doc))
}

func TestExtractText_NilDocument(t *testing.T) {
	assert.Equal(t, "\n\n", ExtractText(nil))
}

func TestIsRendered(t *testing.T) {
	doc := mustParse(t, `<body>
<button id="a" type="submit">A</button>
<div style="color: red; display: none !important"><button id="b" type="submit">B</button></div>
<section hidden><input id="c" type="submit"></section>
<input id="d" type="hidden">
</body>`)

	assert.True(t, IsRendered(doc.Find("#a")))
	assert.False(t, IsRendered(doc.Find("#b")))
	assert.False(t, IsRendered(doc.Find("#c")))
	assert.False(t, IsRendered(doc.Find("#d")))
	assert.False(t, IsRendered(doc.Find("#missing")))
}
