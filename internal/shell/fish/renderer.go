// Package fish renders activation plans for the fish shell.
package fish

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chrisjsewell/activate-aiida/internal/activate"
	"github.com/chrisjsewell/activate-aiida/internal/shell"
)

// Renderer implements the shell.Renderer interface for fish
type Renderer struct{}

// NewRenderer creates a fish renderer
func NewRenderer() shell.Renderer {
	return &Renderer{}
}

// Name implements shell.Renderer
func (r *Renderer) Name() string {
	return shell.Fish
}

// VirtualenvScript implements shell.Renderer
func (r *Renderer) VirtualenvScript() string {
	return "activate.fish"
}

// Render implements shell.Renderer
func (r *Renderer) Render(w io.Writer, plan *activate.Plan) error {
	var buf bytes.Buffer

	for _, a := range plan.Actions {
		switch a.Kind {
		case activate.ActionSet:
			fmt.Fprintf(&buf, "set -gx %s %s\n", a.Name, strings.Join(quoteAll(values(a.Name, a.Value)), " "))
		case activate.ActionUnset:
			fmt.Fprintf(&buf, "set -e %s\n", a.Name)
		case activate.ActionVirtualenv:
			fmt.Fprintf(&buf, "source %s\n", Quote(filepath.Join(a.Value, "bin", r.VirtualenvScript())))
		case activate.ActionExec:
			buf.WriteString(strings.Join(quoteAll(a.Argv), " "))
			buf.WriteString("\n")
		default:
			return fmt.Errorf("unsupported action %s", a.Kind)
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// values splits path variables into fish lists
func values(name, value string) []string {
	if strings.HasSuffix(name, "PATH") && value != "" {
		return strings.Split(value, ":")
	}
	return []string{value}
}

func quoteAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = Quote(s)
	}
	return out
}

// Quote single-quotes s for fish. Inside single quotes fish only
// interprets \\ and \'.
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}
