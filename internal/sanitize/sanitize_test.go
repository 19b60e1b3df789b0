package sanitize

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const loaderTag = `<script src="` + StylesheetLoaderURL + `"></script>`

func TestSanitizeDropsScriptAndAppendsLoader(t *testing.T) {
	t.Parallel()

	out := Sanitize(`<p>Hi</p><script>alert(1)</script>`)

	require.Contains(t, out, "<p>Hi</p>")
	require.NotContains(t, out, "alert(1)")
	require.Contains(t, out, `<head><script src="https://cdn.tailwindcss.com"></script></head>`)
	require.Equal(t, 1, strings.Count(out, "<script"))
}

func TestSanitizeKeepsSingleLoaderForExistingCopies(t *testing.T) {
	t.Parallel()

	inputs := []string{
		loaderTag,
		`<!DOCTYPE html><html><head>` + loaderTag + `</head><body><p>x</p></body></html>`,
		`<html><head>` + loaderTag + loaderTag + `</head><body>` + loaderTag + `</body></html>`,
		`<SCRIPT SRC="HTTPS://CDN.TAILWINDCSS.COM"></SCRIPT><p>x</p>`,
		`<head><script src="https://cdn.tailwindcss.com"`,
	}

	for _, input := range inputs {
		out := Sanitize(input)
		require.Equal(t, 1, strings.Count(out, "<script"), "input: %q", input)
		require.Contains(t, out, loaderTag, "input: %q", input)
	}
}

func TestSanitizeStripsEventHandlersAndExecutableSchemes(t *testing.T) {
	t.Parallel()

	out := Sanitize(`<a href="javascript:evil()" onclick="steal()" class="btn">link</a>`)

	require.Contains(t, out, `<a class="btn">link</a>`)
	require.NotContains(t, strings.ToLower(out), "onclick")
	require.NotContains(t, strings.ToLower(out), "javascript:")
}

func TestSanitizeStripsMaskedSchemes(t *testing.T) {
	t.Parallel()

	out := Sanitize("<a href=\"jav\tascript:alert(1)\">x</a><a href=\" JaVaScRiPt:alert(1)\">y</a>")

	require.NotContains(t, strings.ToLower(out), "script:")
	require.Contains(t, out, "<a>x</a>")
	require.Contains(t, out, "<a>y</a>")
}

func TestSanitizeFiltersInlineStyleDeclarations(t *testing.T) {
	t.Parallel()

	out := Sanitize(`<div style="color: red; background-image: url(http://evil.example)">x</div>`)

	require.Contains(t, out, `<div style="color: red">x</div>`)
	require.NotContains(t, out, "url(")
}

func TestSanitizeFiltersStyleElementBodies(t *testing.T) {
	t.Parallel()

	out := Sanitize(`<style>body { color: red; } .leak { background: url(http://evil.example); }</style><p>x</p>`)

	require.Contains(t, out, "body { color: red }")
	require.NotContains(t, out, "url(")
	require.NotContains(t, out, ".leak")
}

func TestSanitizeUnwrapsDisallowedElements(t *testing.T) {
	t.Parallel()

	out := Sanitize(`<video controls><p>inside</p></video>`)

	require.NotContains(t, out, "<video")
	require.Contains(t, out, "<p>inside</p>")
}

func TestSanitizeRemovesExecutableSubtrees(t *testing.T) {
	t.Parallel()

	out := Sanitize(`<iframe src="https://evil.example"><p>never</p></iframe><embed src="x"><object data="y"></object>`)

	require.NotContains(t, out, "iframe")
	require.NotContains(t, out, "embed")
	require.NotContains(t, out, "object")
	require.NotContains(t, out, "never")
}

func TestSanitizeDataURIOnlyForImages(t *testing.T) {
	t.Parallel()

	out := Sanitize(`<img src="data:image/png;base64,AAAA" alt="ok"><a href="data:text/html;base64,BBBB">bad</a>`)

	require.Contains(t, out, `src="data:image/png;base64,AAAA"`)
	require.NotContains(t, out, "data:text/html")
	require.Contains(t, out, "<a>bad</a>")
}

func TestSanitizeTotalOnDegenerateInput(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "<<<", "<div><<<", "</p></p></p>", "\x00\x01", "<html", strings.Repeat("<div>", 200)} {
		out := Sanitize(input)
		require.Contains(t, out, loaderTag, "input: %q", input)
		require.Contains(t, out, "<body>", "input: %q", input)
		require.Equal(t, out, Sanitize(out), "input: %q", input)
	}
}

func TestSanitizeIdempotentOnCorpus(t *testing.T) {
	t.Parallel()

	corpus := []string{
		`<p>Hi</p><script>alert(1)</script>`,
		`<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8"><title>T</title></head><body class="bg-slate-50"><h1>Hello</h1></body></html>`,
		`<table><thead><tr><th>a</th></tr></thead><tbody><tr><td>b</td></tr></tbody></table>`,
		`<svg viewBox="0 0 24 24" fill="none"><path d="M12 9v2"></path></svg>`,
		`<style>body { margin: 0 }</style><div style="display: flex; gap: 4px">x</div>`,
		`<form><label>Name</label><input type="text" name="n" placeholder="..."><button type="submit">Go</button></form>`,
		`<ul><li>one</li><li>two</li></ul><blockquote><pre><code>x &lt; y</code></pre></blockquote>`,
	}

	for _, input := range corpus {
		once := Sanitize(input)
		require.Equal(t, once, Sanitize(once), "input: %q", input)
	}
}

func TestSanitizeRandomizedProperties(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 300; i++ {
		input := randomDocument(rng)
		out := Sanitize(input)

		require.Equal(t, 1, strings.Count(out, "<script"), "input: %q", input)
		require.Contains(t, out, loaderTag, "input: %q", input)

		lowered := strings.ToLower(out)
		require.NotContains(t, lowered, "onclick", "input: %q", input)
		require.NotContains(t, lowered, "onerror", "input: %q", input)
		require.NotContains(t, lowered, "javascript:", "input: %q", input)
		require.NotContains(t, out, "alert(", "input: %q", input)

		require.Equal(t, out, Sanitize(out), "input: %q", input)
	}
}

// randomDocument nests allowed and hostile markup around the loader marker so
// the head fix-up is exercised against arbitrary surroundings, including
// truncated documents.
func randomDocument(rng *rand.Rand) string {
	var builder strings.Builder

	if rng.Intn(2) == 0 {
		builder.WriteString(`<!DOCTYPE html><html><head>`)
		if rng.Intn(2) == 0 {
			builder.WriteString(loaderTag)
		}
		builder.WriteString(`<title>T</title></head><body>`)
	}

	writeRandomFragment(rng, &builder, 3)

	if rng.Intn(3) == 0 {
		builder.WriteString(`</body></html>`)
	}

	doc := builder.String()
	if rng.Intn(4) == 0 && len(doc) > 10 {
		doc = doc[:10+rng.Intn(len(doc)-10)]
	}

	return doc
}

func writeRandomFragment(rng *rand.Rand, builder *strings.Builder, depth int) {
	tags := []string{"div", "span", "p", "section", "article", "h2", "em", "strong", "blockquote"}

	for i := 0; i < 2+rng.Intn(3); i++ {
		switch rng.Intn(6) {
		case 0:
			builder.WriteString(`<script>alert(` + fmt.Sprint(rng.Intn(100)) + `)</script>`)
		case 1:
			builder.WriteString(loaderTag)
		case 2:
			builder.WriteString(`<SCRIPT SRC="HTTPS://CDN.TAILWINDCSS.COM"></SCRIPT>`)
		case 3:
			tag := tags[rng.Intn(len(tags))]
			builder.WriteString("<" + tag + ` onclick="alert(1)" style="color: red; background: url(http://x)" class="c` + fmt.Sprint(rng.Intn(10)) + `">`)
			if depth > 0 {
				writeRandomFragment(rng, builder, depth-1)
			}
			builder.WriteString("</" + tag + ">")
		case 4:
			builder.WriteString(`<a href="javascript:alert(1)" onerror="alert(2)">link</a>`)
		default:
			builder.WriteString("text-" + fmt.Sprint(rng.Intn(1000)) + " ")
		}
	}
}
