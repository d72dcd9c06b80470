package models

// DaemonAction is a verdi daemon subcommand run after activation
type DaemonAction string

const (
	DaemonNone    DaemonAction = ""
	DaemonStart   DaemonAction = "start"
	DaemonStop    DaemonAction = "stop"
	DaemonRestart DaemonAction = "restart"
	DaemonStatus  DaemonAction = "status"
)

// Valid reports whether the action is one verdi understands
func (d DaemonAction) Valid() bool {
	switch d {
	case DaemonNone, DaemonStart, DaemonStop, DaemonRestart, DaemonStatus:
		return true
	}
	return false
}

// EnvConfig describes an aiida environment to activate
type EnvConfig struct {
	AiidaPath    string            `yaml:"aiida_path"`
	AiidaProfile string            `yaml:"aiida_profile"`
	Virtualenv   string            `yaml:"virtualenv"`
	CondaEnv     string            `yaml:"conda_env"`
	PathPrepend  []string          `yaml:"path_prepend"`
	Environment  map[string]string `yaml:"environment"`
	Unset        []string          `yaml:"unset"`
	Daemon       DaemonAction      `yaml:"daemon"`

	// Set by the loader, not read from YAML
	Path string `yaml:"-"`
	Dir  string `yaml:"-"`
}
