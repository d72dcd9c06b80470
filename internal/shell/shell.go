// Package shell defines how activation plans are turned into shell source.
package shell

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chrisjsewell/activate-aiida/internal/activate"
)

// Renderer interface for shell source generators
type Renderer interface {
	// Render writes shell source applying plan to w
	Render(w io.Writer, plan *activate.Plan) error

	// Name returns the shell this renderer targets
	Name() string

	// VirtualenvScript is the file under <venv>/bin the shell sources
	VirtualenvScript() string
}

// Supported shell names
const (
	Bash = "bash"
	Zsh  = "zsh"
	Sh   = "sh"
	Fish = "fish"
)

// Names lists the supported shells
var Names = []string{Bash, Zsh, Sh, Fish}

// Detect picks a shell name from $SHELL, falling back to sh
func Detect(env activate.Environ) string {
	name := filepath.Base(env["SHELL"])
	for _, n := range Names {
		if n == name {
			return n
		}
	}
	return Sh
}

// Normalize validates a user supplied shell name.
// An empty name means detect from env.
func Normalize(name string, env activate.Environ) (string, error) {
	if name == "" {
		return Detect(env), nil
	}
	name = strings.ToLower(name)
	for _, n := range Names {
		if n == name {
			return n, nil
		}
	}
	return "", fmt.Errorf("unsupported shell %q (supported: %s)", name, strings.Join(Names, ", "))
}
