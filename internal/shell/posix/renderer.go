// Package posix renders activation plans for POSIX shells (sh, bash, zsh).
package posix

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/alessio/shellescape"
	"github.com/chrisjsewell/activate-aiida/internal/activate"
	"github.com/chrisjsewell/activate-aiida/internal/shell"
)

// Renderer implements the shell.Renderer interface for POSIX shells
type Renderer struct {
	name string
}

// NewRenderer creates a renderer for the named POSIX shell
func NewRenderer(name string) shell.Renderer {
	return &Renderer{name: name}
}

// Name implements shell.Renderer
func (r *Renderer) Name() string {
	return r.name
}

// VirtualenvScript implements shell.Renderer
func (r *Renderer) VirtualenvScript() string {
	return activate.VirtualenvScript
}

// Render implements shell.Renderer
func (r *Renderer) Render(w io.Writer, plan *activate.Plan) error {
	var buf bytes.Buffer

	for _, a := range plan.Actions {
		switch a.Kind {
		case activate.ActionSet:
			fmt.Fprintf(&buf, "export %s=%s\n", a.Name, shellescape.Quote(a.Value))
		case activate.ActionUnset:
			fmt.Fprintf(&buf, "unset %s\n", a.Name)
		case activate.ActionVirtualenv:
			fmt.Fprintf(&buf, ". %s\n", shellescape.Quote(filepath.Join(a.Value, "bin", r.VirtualenvScript())))
		case activate.ActionExec:
			buf.WriteString(shellescape.QuoteCommand(a.Argv))
			buf.WriteString("\n")
		default:
			return fmt.Errorf("unsupported action %s", a.Kind)
		}
	}

	// Forget cached command locations after PATH changes
	if touchesPath(plan) {
		buf.WriteString("hash -r 2>/dev/null || true\n")
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func touchesPath(plan *activate.Plan) bool {
	for _, a := range plan.Actions {
		if a.Name == activate.PathVar || a.Kind == activate.ActionVirtualenv {
			return true
		}
		if a.Kind == activate.ActionExec && len(a.Argv) > 0 && (a.Argv[0] == "conda" || a.Argv[0] == "deactivate") {
			return true
		}
	}
	return false
}
