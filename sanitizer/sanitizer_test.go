package sanitizer

import (
	"strings"
	"testing"
)

func TestClean_ScriptRemovedWithContent(t *testing.T) {
	got := Clean(`<script>alert(1)</script>Hello`)
	if got != "Hello" {
		t.Errorf("expected script tag and its content dropped, got %q", got)
	}
}

func TestClean_StyleRemovedWithContent(t *testing.T) {
	got := Clean(`<style>body{display:none}</style>visible`)
	if got != "visible" {
		t.Errorf("expected style tag and its content dropped, got %q", got)
	}
}

func TestClean_DisallowedTagUnwrapped(t *testing.T) {
	got := Clean(`<form action="/steal"><b>bold</b> text</form>`)
	if got != `<b>bold</b> text` {
		t.Errorf("expected form unwrapped with inner content preserved, got %q", got)
	}
}

func TestClean_AnchorAttributeStripping(t *testing.T) {
	got := Clean(`<a href="http://x" onclick="evil()">link</a>`)
	if got != `<a href="http://x">link</a>` {
		t.Errorf("expected onclick stripped and href kept, got %q", got)
	}
}

func TestClean_AnchorGainsNoAttributes(t *testing.T) {
	got := Clean(`<a href="http://x">link</a>`)
	if got != `<a href="http://x">link</a>` {
		t.Errorf("expected anchor untouched, got %q", got)
	}
	if strings.Contains(got, "rel=") {
		t.Errorf("rel must never be injected, got %q", got)
	}
}

func TestClean_AnchorKeepsTargetAndTitle(t *testing.T) {
	got := Clean(`<a href="https://example.com" target="_blank" title="hi">go</a>`)
	for _, want := range []string{`href="https://example.com"`, `target="_blank"`, `title="hi"`} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %s in output, got %q", want, got)
		}
	}
}

func TestClean_ImageAttributeAllowList(t *testing.T) {
	got := Clean(`<img src="a.png" onerror="evil()">`)
	if got != `<img src="a.png">` {
		t.Errorf("expected onerror stripped and src kept, got %q", got)
	}
}

func TestClean_ImageKeepsDimensions(t *testing.T) {
	got := Clean(`<img src="/pic.jpg" alt="pic" width="100" height="80">`)
	for _, want := range []string{`src="/pic.jpg"`, `alt="pic"`, `width="100"`, `height="80"`} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %s in output, got %q", want, got)
		}
	}
}

func TestClean_JavascriptHrefDropped(t *testing.T) {
	got := Clean(`<a href="javascript:alert(1)">click</a>`)
	if strings.Contains(got, "javascript") {
		t.Errorf("javascript href survived: %q", got)
	}
	if !strings.Contains(got, "click") {
		t.Errorf("link text should survive: %q", got)
	}
}

func TestClean_EventAttributesNeverSurvive(t *testing.T) {
	inputs := []string{
		`<div onclick="evil()">x</div>`,
		`<p onmouseover="evil()">x</p>`,
		`<td onfocus="evil()">x</td>`,
		`<b style="color:red" onload="evil()">x</b>`,
	}
	for _, in := range inputs {
		got := Clean(in)
		if strings.Contains(got, "on") && strings.Contains(got, "evil") {
			t.Errorf("event handler survived for %q: %q", in, got)
		}
		if strings.Contains(got, "style=") {
			t.Errorf("style attribute survived for %q: %q", in, got)
		}
	}
}

func TestClean_NoDisallowedTagsInOutput(t *testing.T) {
	inputs := []string{
		`<iframe src="https://evil"></iframe>`,
		`<object data="x"></object>`,
		`<embed src="x">`,
		`<textarea>x</textarea>`,
		`<button>x</button>`,
		`<script src="https://evil/x.js"></script>`,
	}
	for _, in := range inputs {
		got := Clean(in)
		for _, tag := range []string{"<iframe", "<object", "<embed", "<textarea", "<button", "<script"} {
			if strings.Contains(got, tag) {
				t.Errorf("disallowed tag %s survived for %q: %q", tag, in, got)
			}
		}
	}
}

func TestClean_AllowedTagsPreserved(t *testing.T) {
	in := `<h2>Title</h2><p>Some <em>emphatic</em> text with a <table><tbody><tr><td>cell</td></tr></tbody></table></p><ul><li>item</li></ul>`
	got := Clean(in)
	for _, tag := range []string{"<h2>", "<p>", "<em>", "<table>", "<td>", "<ul>", "<li>"} {
		if !strings.Contains(got, tag) {
			t.Errorf("allowed tag %s missing from output: %q", tag, got)
		}
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		``,
		`plain text`,
		`<p>hello <b>there</b></p>`,
		`<script>alert(1)</script>Hello`,
		`<a href="http://x" onclick="evil()">link</a>`,
		`<img src="a.png" onerror="evil()">`,
		`<div><form><span>mixed</span></form></div>`,
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestClean_EmptyInput(t *testing.T) {
	if got := Clean(""); got != "" {
		t.Errorf("expected empty output for empty input, got %q", got)
	}
}

func TestClean_PlainTextPassesThrough(t *testing.T) {
	in := "just some plain text, no markup at all."
	if got := Clean(in); got != in {
		t.Errorf("plain text should pass unchanged, got %q", got)
	}
}

func TestClean_MalformedMarkupDegradesGracefully(t *testing.T) {
	inputs := []string{
		`<p>unclosed paragraph`,
		`<b><i>interleaved</b></i>`,
		`<<>>< geometry`,
		`<a href=>empty attr</a>`,
	}
	for _, in := range inputs {
		got := Clean(in)
		if strings.Contains(got, "<script") {
			t.Errorf("unexpected script in output for %q: %q", in, got)
		}
		// must not panic, must remain idempotent
		if again := Clean(got); again != got {
			t.Errorf("malformed input not stable for %q: %q vs %q", in, got, again)
		}
	}
}
