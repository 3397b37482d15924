package presenter

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestPresenter() (*TerminalPresenter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewWithOptions(&out, &errOut, ColorNever), &out, &errOut
}

func TestNew(t *testing.T) {
	p := New()
	assert.Equal(t, os.Stdout, p.output)
	assert.Equal(t, os.Stderr, p.errorOutput)
	assert.False(t, p.quiet)
}

func TestDetectColorMode(t *testing.T) {
	tests := []struct {
		name     string
		noColor  string
		color    string
		expected ColorMode
	}{
		{"NO_COLOR set", "1", "always", ColorNever},
		{"always", "", "always", ColorAlways},
		{"force", "", "force", ColorAlways},
		{"never", "", "never", ColorNever},
		{"off", "", "off", ColorNever},
		{"default", "", "", ColorAuto},
		{"invalid", "", "sometimes", ColorAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("SKILLBUILDER_COLOR", tt.color)
			assert.Equal(t, tt.expected, detectColorMode())
		})
	}
}

func TestMessages(t *testing.T) {
	p, out, errOut := newTestPresenter()

	p.Success("saved")
	p.Warning("careful")
	p.Info("plain")
	p.Section("Skills")
	p.Error(errors.New("boom"), "loading")
	p.Error(nil, "ignored")

	assert.Equal(t, "✓ saved\n⚠ careful\nplain\nSkills\n------\n", out.String())
	assert.Equal(t, "[ERROR] loading: boom\n", errOut.String())
}

func TestQuietMode(t *testing.T) {
	p, out, errOut := newTestPresenter()
	p.SetQuiet(true)
	assert.True(t, p.IsQuiet())

	p.Success("x")
	p.Info("x")
	p.Table([]string{"A"}, [][]string{{"1"}})
	p.Diff("+x\n")
	p.Error(errors.New("still shown"), "")

	assert.Empty(t, out.String())
	assert.Equal(t, "[ERROR] still shown\n", errOut.String())
}

func TestTable(t *testing.T) {
	p, out, _ := newTestPresenter()
	p.Table([]string{"ID", "NAME"}, [][]string{
		{"abc", "git-helper"},
		{"defghij", "docs"},
	})

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"ID       NAME",
		"abc      git-helper",
		"defghij  docs",
	}, lines)
}

func TestDiff(t *testing.T) {
	p, out, _ := newTestPresenter()
	diff := "--- a/SKILL.md\n+++ b/SKILL.md\n@@ -1 +1 @@\n-old\n+new\n"
	p.Diff(diff)
	assert.Equal(t, diff, out.String())
}
