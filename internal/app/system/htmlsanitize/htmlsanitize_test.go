package htmlsanitize

import (
	"strings"
	"testing"
)

func TestSanitizeStripsScripts(t *testing.T) {
	in := `<p>hello</p><script>alert("x")</script>`
	out := Sanitize(in)
	if strings.Contains(out, "script") || strings.Contains(out, "alert") {
		t.Errorf("Sanitize(%q) = %q, script survived", in, out)
	}
	if !strings.Contains(out, "hello") {
		t.Errorf("Sanitize(%q) = %q, content lost", in, out)
	}
}

func TestSanitizeKeepsBasicMarkup(t *testing.T) {
	in := `<p>a <strong>bold</strong> claim</p>`
	out := Sanitize(in)
	if !strings.Contains(out, "<strong>") {
		t.Errorf("Sanitize(%q) = %q, basic markup removed", in, out)
	}
}

func TestPlainText(t *testing.T) {
	in := `<b>Architect</b> &amp; <i>Planner</i>`
	out := PlainText(in)
	if strings.ContainsAny(out, "<>") {
		t.Errorf("PlainText(%q) = %q, tags survived", in, out)
	}
}
