package activate

import (
	"os"
	"sort"
	"strings"
)

// Environ is a snapshot of process environment variables
type Environ map[string]string

// FromOS snapshots the current process environment
func FromOS() Environ {
	return FromList(os.Environ())
}

// FromList builds an Environ from KEY=value pairs
func FromList(pairs []string) Environ {
	env := make(Environ, len(pairs))
	for _, kv := range pairs {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		env[name] = value
	}
	return env
}

// Clone returns an independent copy
func (e Environ) Clone() Environ {
	out := make(Environ, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// List returns sorted KEY=value pairs
func (e Environ) List() []string {
	out := make([]string, 0, len(e))
	for k, v := range e {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
