package htmlsanitize

import (
	"strings"
	"testing"
)

func TestSanitize_RemovesScripts(t *testing.T) {
	in := `<p>hello</p><script>alert("x")</script>`
	got := Sanitize(in)
	if strings.Contains(got, "script") {
		t.Errorf("script survived: %q", got)
	}
	if !strings.Contains(got, "<p>hello</p>") {
		t.Errorf("formatting stripped: %q", got)
	}
}

func TestSanitize_RemovesEventHandlers(t *testing.T) {
	got := Sanitize(`<b onclick="steal()">bold</b>`)
	if strings.Contains(got, "onclick") {
		t.Errorf("event handler survived: %q", got)
	}
}

func TestPlain_StripsAllMarkup(t *testing.T) {
	got := Plain(`<b>Ship</b> <i>it</i>`)
	if got != "Ship it" {
		t.Errorf("Plain: got %q, want %q", got, "Ship it")
	}
}
