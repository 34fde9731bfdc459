package prompt

import (
	"strings"
	"testing"

	"github.com/example/pebble/internal/core/stage"
)

func TestDefault_HasAllGuides(t *testing.T) {
	c := Default()
	if c.Preamble == "" {
		t.Error("expected preamble")
	}
	if len(c.Rules) == 0 {
		t.Error("expected rules")
	}
}

func TestParse_MissingGuide(t *testing.T) {
	_, err := Parse([]byte(`
preamble = "p"
[guides]
1 = "a"
2 = "b"
3 = "c"
`))
	if err == nil {
		t.Fatal("expected error for missing stage 4 guide")
	}
	if !strings.Contains(err.Error(), "stage 4") {
		t.Errorf("expected error to name stage 4, got %v", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("not = [toml")); err == nil {
		t.Error("expected parse error")
	}
}

func TestBuild(t *testing.T) {
	c := Default()
	p := c.Build("read every night", stage.Drifting)

	if !strings.Contains(p, "read every night") {
		t.Error("prompt should contain the original text")
	}
	if !strings.Contains(p, c.Guides["2"]) {
		t.Error("prompt should contain the stage 2 guide")
	}
	if strings.Contains(p, c.Guides["3"]) {
		t.Error("prompt should not contain other stage guides")
	}
	if !strings.HasSuffix(p, "Result") {
		t.Errorf("prompt should end with the result marker, got %q", p[len(p)-20:])
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"skip it"`, "skip it"},
		{"it's  fine\n today", "its fine today"},
		{"「rest」 『now』 《later》 〈maybe〉", "rest now later maybe"},
		{"“tomorrow” ‘then’ `ok`", "tomorrow then ok"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
