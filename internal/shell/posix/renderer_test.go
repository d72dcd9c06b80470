package posix

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/chrisjsewell/activate-aiida/internal/activate"
	"github.com/chrisjsewell/activate-aiida/internal/shell"
)

func TestRender(t *testing.T) {
	plan := &activate.Plan{Actions: []activate.Action{
		{Kind: activate.ActionSet, Name: "FOO", Value: "it's $HOME"},
		{Kind: activate.ActionSet, Name: "EMPTY", Value: ""},
		{Kind: activate.ActionUnset, Name: "PYTHONPATH"},
		{Kind: activate.ActionExec, Argv: []string{"verdi", "daemon", "start"}},
	}}

	var buf bytes.Buffer
	if err := NewRenderer(shell.Bash).Render(&buf, plan); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	want := "export FOO='it'\"'\"'s $HOME'\n" +
		"export EMPTY=''\n" +
		"unset PYTHONPATH\n" +
		"verdi daemon start\n"
	if buf.String() != want {
		t.Errorf("Unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestRenderPathChange(t *testing.T) {
	plan := &activate.Plan{Actions: []activate.Action{
		{Kind: activate.ActionSet, Name: activate.PathVar, Value: "/opt/my tools/bin:/usr/bin"},
		{Kind: activate.ActionVirtualenv, Value: "/envs/aiida"},
	}}

	var buf bytes.Buffer
	if err := NewRenderer(shell.Zsh).Render(&buf, plan); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"export PATH='/opt/my tools/bin:/usr/bin'\n",
		". /envs/aiida/bin/activate\n",
		"hash -r 2>/dev/null || true\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEvaluatesInShell(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	value := `a 'quoted' "string" with $dollar and \backslash`
	plan := &activate.Plan{Actions: []activate.Action{
		{Kind: activate.ActionSet, Name: "AIIDA_TEST_VALUE", Value: value},
	}}

	var buf bytes.Buffer
	if err := NewRenderer(shell.Sh).Render(&buf, plan); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	cmd := exec.Command(sh, "-c", buf.String()+`printf '%s' "$AIIDA_TEST_VALUE"`)
	cmd.Env = os.Environ()
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("sh failed: %v", err)
	}
	if string(out) != value {
		t.Errorf("Round trip through sh = %q, want %q", out, value)
	}
}

func TestName(t *testing.T) {
	if got := NewRenderer(shell.Bash).Name(); got != shell.Bash {
		t.Errorf("Name() = %q", got)
	}
}
