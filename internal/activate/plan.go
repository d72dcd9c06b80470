package activate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/chrisjsewell/activate-aiida/internal/models"
	"github.com/sirupsen/logrus"
)

// Variables exported by an activation
const (
	AiidaPathVar    = "AIIDA_PATH"
	AiidaProfileVar = "AIIDA_PROFILE"
	ConfigVar       = "ACTIVATE_AIIDA_CONFIG"
	ConfigDirVar    = "ACTIVATE_AIIDA_CONFIG_DIR"
	PathVar         = "PATH"

	// Bookkeeping used by deactivation
	VarsVar       = "_ACTIVATE_AIIDA_VARS"
	DeactivateVar = "_ACTIVATE_AIIDA_DEACTIVATE"
	oldPrefix     = "_ACTIVATE_AIIDA_OLD_"
)

// VirtualenvScript is the activation script POSIX shells source from <venv>/bin
const VirtualenvScript = "activate"

var validVarName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ActionKind identifies what an Action does to the shell
type ActionKind int

const (
	// ActionSet exports Name=Value
	ActionSet ActionKind = iota
	// ActionUnset removes Name
	ActionUnset
	// ActionVirtualenv sources the activation script of the virtualenv at Value
	ActionVirtualenv
	// ActionExec runs Argv
	ActionExec
)

// String returns the string representation of ActionKind
func (k ActionKind) String() string {
	switch k {
	case ActionSet:
		return "set"
	case ActionUnset:
		return "unset"
	case ActionVirtualenv:
		return "virtualenv"
	case ActionExec:
		return "exec"
	default:
		return "unknown"
	}
}

// Action is a single change applied by the shell
type Action struct {
	Kind  ActionKind
	Name  string
	Value string
	Argv  []string
}

// Plan is an ordered list of actions
type Plan struct {
	Actions []Action
}

func (p *Plan) set(name, value string) {
	p.Actions = append(p.Actions, Action{Kind: ActionSet, Name: name, Value: value})
}

func (p *Plan) unset(name string) {
	p.Actions = append(p.Actions, Action{Kind: ActionUnset, Name: name})
}

func (p *Plan) exec(argv ...string) {
	p.Actions = append(p.Actions, Action{Kind: ActionExec, Argv: argv})
}

// Apply returns env with the plan's Set and Unset actions applied.
// Virtualenv and Exec actions have effects outside this process and are skipped.
func (p *Plan) Apply(env Environ) Environ {
	out := env.Clone()
	for _, a := range p.Actions {
		switch a.Kind {
		case ActionSet:
			out[a.Name] = a.Value
		case ActionUnset:
			delete(out, a.Name)
		}
	}
	return out
}

// IsActive reports whether env carries an activation
func IsActive(env Environ) bool {
	_, ok := env[VarsVar]
	return ok
}

// NewPlan computes the actions activating cfg on top of env.
// An activation already present in env is undone first, so saved values
// always describe the environment from before any activation.
func NewPlan(cfg *models.EnvConfig, env Environ) (*Plan, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	plan := &Plan{}
	base := env
	if IsActive(env) {
		logrus.Debugf("Environment already active from %s, deactivating first", env[ConfigVar])
		undo, err := Deactivate(env)
		if err != nil {
			return nil, err
		}
		plan.Actions = append(plan.Actions, undo.Actions...)
		base = undo.Apply(env)
	}

	r := resolver{cfg: cfg, env: base}

	// Collect the final values first so every touched name is known
	sets := make(map[string]string)
	for name, value := range cfg.Environment {
		sets[name] = r.expand(value)
	}

	if len(cfg.PathPrepend) > 0 {
		dirs := make([]string, 0, len(cfg.PathPrepend)+1)
		for _, dir := range cfg.PathPrepend {
			dirs = append(dirs, r.path(dir))
		}
		if current := base[PathVar]; current != "" {
			dirs = append(dirs, current)
		}
		sets[PathVar] = strings.Join(dirs, string(os.PathListSeparator))
	}

	if cfg.AiidaPath != "" {
		sets[AiidaPathVar] = r.path(cfg.AiidaPath)
	}
	if cfg.AiidaProfile != "" {
		sets[AiidaProfileVar] = r.expand(cfg.AiidaProfile)
	}
	sets[ConfigVar] = cfg.Path

	var venv string
	if cfg.Virtualenv != "" {
		venv = r.path(cfg.Virtualenv)
		if err := checkVirtualenv(venv, VirtualenvScript); err != nil {
			return nil, models.NewError(models.ErrInvalidConfig, cfg.Path, err)
		}
	}

	touched := make(map[string]bool)
	for name := range sets {
		touched[name] = true
	}
	for _, name := range cfg.Unset {
		if _, ok := sets[name]; ok {
			return nil, models.NewError(models.ErrInvalidConfig, cfg.Path,
				fmt.Errorf("%s is both set and unset", name))
		}
		touched[name] = true
	}
	names := sortedKeys(touched)

	// Save the values deactivation restores
	for _, name := range names {
		if old, ok := base[name]; ok {
			plan.set(oldPrefix+name, old)
		}
	}
	plan.set(VarsVar, strings.Join(names, ":"))

	unsets := append([]string(nil), cfg.Unset...)
	sort.Strings(unsets)
	for _, name := range unsets {
		plan.unset(name)
	}

	for _, name := range sortedKeys(sets) {
		plan.set(name, sets[name])
	}

	switch {
	case venv != "":
		plan.set(DeactivateVar, "deactivate")
		plan.Actions = append(plan.Actions, Action{Kind: ActionVirtualenv, Value: venv})
	case cfg.CondaEnv != "":
		plan.set(DeactivateVar, "conda deactivate")
		plan.exec("conda", "activate", r.expand(cfg.CondaEnv))
	}

	if cfg.Daemon != models.DaemonNone {
		plan.exec("verdi", "daemon", string(cfg.Daemon))
	}

	return plan, nil
}

// CheckVirtualenv verifies every virtualenv the plan activates provides bin/<script>
func (p *Plan) CheckVirtualenv(script string) error {
	for _, a := range p.Actions {
		if a.Kind != ActionVirtualenv {
			continue
		}
		if err := checkVirtualenv(a.Value, script); err != nil {
			return models.NewError(models.ErrInvalidConfig, a.Value, err)
		}
	}
	return nil
}

func checkVirtualenv(venv, script string) error {
	if _, err := os.Stat(filepath.Join(venv, "bin", script)); err != nil {
		return fmt.Errorf("virtualenv %s has no bin/%s: %w", venv, script, err)
	}
	return nil
}

// Deactivate computes the actions restoring the environment saved in env
func Deactivate(env Environ) (*Plan, error) {
	vars, ok := env[VarsVar]
	if !ok {
		return nil, models.NewError(models.ErrNotActive, "", errors.New("no aiida environment is active"))
	}

	plan := &Plan{}

	if cmd := strings.Fields(env[DeactivateVar]); len(cmd) > 0 {
		plan.exec(cmd...)
	}

	for _, name := range strings.Split(vars, ":") {
		if name == "" {
			continue
		}
		if old, ok := env[oldPrefix+name]; ok {
			plan.set(name, old)
			plan.unset(oldPrefix + name)
		} else {
			plan.unset(name)
		}
	}

	plan.unset(VarsVar)
	if _, ok := env[DeactivateVar]; ok {
		plan.unset(DeactivateVar)
	}

	return plan, nil
}

// ValidateConfig checks a config before planning
func ValidateConfig(cfg *models.EnvConfig) error {
	var errs []error

	if cfg.Virtualenv != "" && cfg.CondaEnv != "" {
		errs = append(errs, errors.New("virtualenv and conda_env are mutually exclusive"))
	}
	if !cfg.Daemon.Valid() {
		errs = append(errs, fmt.Errorf("daemon %q must be one of start, stop, restart, status", cfg.Daemon))
	}

	// Names other config keys set
	owners := make(map[string]string)
	if cfg.AiidaPath != "" {
		owners[AiidaPathVar] = "aiida_path"
	}
	if cfg.AiidaProfile != "" {
		owners[AiidaProfileVar] = "aiida_profile"
	}
	if len(cfg.PathPrepend) > 0 {
		owners[PathVar] = "path_prepend"
	}

	for _, name := range sortedKeys(cfg.Environment) {
		if !validVarName.MatchString(name) {
			errs = append(errs, fmt.Errorf("environment: invalid variable name %q", name))
		}
		if reserved(name) {
			errs = append(errs, fmt.Errorf("environment: %s is reserved", name))
		}
		if owner, ok := owners[name]; ok {
			errs = append(errs, fmt.Errorf("environment: %s is already set by %s", name, owner))
		}
	}
	for _, name := range cfg.Unset {
		if !validVarName.MatchString(name) {
			errs = append(errs, fmt.Errorf("unset: invalid variable name %q", name))
		}
		if reserved(name) {
			errs = append(errs, fmt.Errorf("unset: %s is reserved", name))
		}
	}

	if len(errs) > 0 {
		return models.NewError(models.ErrInvalidConfig, cfg.Path, errors.Join(errs...))
	}
	return nil
}

// reserved reports whether name is written by activation bookkeeping
func reserved(name string) bool {
	return strings.HasPrefix(name, oldPrefix) || name == VarsVar || name == DeactivateVar || name == ConfigVar
}

// resolver expands variables and paths relative to the config file
type resolver struct {
	cfg *models.EnvConfig
	env Environ
}

func (r resolver) lookup(name string) string {
	if name == ConfigDirVar {
		return r.cfg.Dir
	}
	return r.env[name]
}

func (r resolver) expand(value string) string {
	return os.Expand(value, r.lookup)
}

// path expands a path value, resolving ~ and relative paths
func (r resolver) path(value string) string {
	p := r.expand(value)
	if p == "~" || strings.HasPrefix(p, "~/") {
		home := r.env["HOME"]
		if home == "" {
			home, _ = os.UserHomeDir()
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.cfg.Dir, p)
	}
	return filepath.Clean(p)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
