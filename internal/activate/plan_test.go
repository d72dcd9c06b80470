package activate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chrisjsewell/activate-aiida/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `aiida_path: ~/.aiida-dev
aiida_profile: dev
path_prepend:
  - ./bin
  - /opt/tools/bin
environment:
  FOO: "${FOO}-2"
  DATA_DIR: "$ACTIVATE_AIIDA_CONFIG_DIR/data"
unset: [PYTHONPATH]
daemon: start
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aiida.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func baseEnv() Environ {
	return Environ{
		"HOME":       "/home/user",
		"PATH":       "/usr/bin:/bin",
		"PYTHONPATH": "/site",
		"FOO":        "bar",
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, testConfig)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AiidaProfile)
	assert.Equal(t, models.DaemonStart, cfg.Daemon)
	assert.Equal(t, []string{"./bin", "/opt/tools/bin"}, cfg.PathPrepend)
	assert.Equal(t, filepath.Dir(path), cfg.Dir)
	assert.True(t, filepath.IsAbs(cfg.Path))
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, models.IsType(err, models.ErrFileOp), "got %v", err)

	_, err = LoadConfig(writeConfig(t, "aiida_profile: [x\n"))
	assert.True(t, models.IsType(err, models.ErrConfigParse), "got %v", err)

	_, err = LoadConfig(writeConfig(t, "profile: dev\n"))
	assert.True(t, models.IsType(err, models.ErrConfigParse), "unknown key: got %v", err)
}

func TestLoadEmptyConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Empty(t, cfg.AiidaProfile)
}

func TestResolveConfigPath(t *testing.T) {
	assert.Equal(t, "x.yaml", ResolveConfigPath("x.yaml", Environ{ConfigFileEnv: "y.yaml"}))
	assert.Equal(t, "y.yaml", ResolveConfigPath("", Environ{ConfigFileEnv: "y.yaml"}))
	assert.Equal(t, DefaultConfigFile, ResolveConfigPath("", Environ{}))
}

func TestNewPlan(t *testing.T) {
	path := writeConfig(t, testConfig)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	plan, err := NewPlan(cfg, baseEnv())
	require.NoError(t, err)

	dir := cfg.Dir
	want := []Action{
		{Kind: ActionSet, Name: "_ACTIVATE_AIIDA_OLD_FOO", Value: "bar"},
		{Kind: ActionSet, Name: "_ACTIVATE_AIIDA_OLD_PATH", Value: "/usr/bin:/bin"},
		{Kind: ActionSet, Name: "_ACTIVATE_AIIDA_OLD_PYTHONPATH", Value: "/site"},
		{Kind: ActionSet, Name: VarsVar, Value: "ACTIVATE_AIIDA_CONFIG:AIIDA_PATH:AIIDA_PROFILE:DATA_DIR:FOO:PATH:PYTHONPATH"},
		{Kind: ActionUnset, Name: "PYTHONPATH"},
		{Kind: ActionSet, Name: ConfigVar, Value: cfg.Path},
		{Kind: ActionSet, Name: AiidaPathVar, Value: "/home/user/.aiida-dev"},
		{Kind: ActionSet, Name: AiidaProfileVar, Value: "dev"},
		{Kind: ActionSet, Name: "DATA_DIR", Value: dir + "/data"},
		{Kind: ActionSet, Name: "FOO", Value: "bar-2"},
		{Kind: ActionSet, Name: PathVar, Value: filepath.Join(dir, "bin") + ":/opt/tools/bin:/usr/bin:/bin"},
		{Kind: ActionExec, Argv: []string{"verdi", "daemon", "start"}},
	}

	if diff := cmp.Diff(want, plan.Actions); diff != "" {
		t.Errorf("Plan mismatch (-want +got):\n%s", diff)
	}
}

func TestActivateThenDeactivateRestores(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)

	env0 := baseEnv()
	plan, err := NewPlan(cfg, env0)
	require.NoError(t, err)

	env1 := plan.Apply(env0)
	assert.True(t, IsActive(env1))
	assert.Equal(t, "dev", env1[AiidaProfileVar])
	assert.NotContains(t, env1, "PYTHONPATH")

	undo, err := Deactivate(env1)
	require.NoError(t, err)

	env2 := undo.Apply(env1)
	if diff := cmp.Diff(env0, env2); diff != "" {
		t.Errorf("Environment not restored (-want +got):\n%s", diff)
	}
}

func TestReactivateKeepsOriginalValues(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)

	env0 := baseEnv()
	first, err := NewPlan(cfg, env0)
	require.NoError(t, err)
	env1 := first.Apply(env0)

	second, err := NewPlan(cfg, env1)
	require.NoError(t, err)
	env2 := second.Apply(env1)

	// Activating twice does not stack PATH entries or FOO suffixes
	assert.Equal(t, env1, env2)

	undo, err := Deactivate(env2)
	require.NoError(t, err)
	assert.Equal(t, env0, undo.Apply(env2))
}

func TestDeactivateNotActive(t *testing.T) {
	_, err := Deactivate(baseEnv())
	assert.True(t, models.IsType(err, models.ErrNotActive), "got %v", err)
}

func TestVirtualenvPlan(t *testing.T) {
	dir := t.TempDir()
	venv := filepath.Join(dir, "venv")
	require.NoError(t, os.MkdirAll(filepath.Join(venv, "bin"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(venv, "bin", "activate"), []byte("# venv\n"), 0644))

	cfg := &models.EnvConfig{Virtualenv: "venv", Path: filepath.Join(dir, "aiida.yaml"), Dir: dir}

	plan, err := NewPlan(cfg, Environ{})
	require.NoError(t, err)

	last := plan.Actions[len(plan.Actions)-1]
	assert.Equal(t, ActionVirtualenv, last.Kind)
	assert.Equal(t, venv, last.Value)

	env1 := plan.Apply(Environ{})
	assert.Equal(t, "deactivate", env1[DeactivateVar])

	undo, err := Deactivate(env1)
	require.NoError(t, err)
	assert.Equal(t, Action{Kind: ActionExec, Argv: []string{"deactivate"}}, undo.Actions[0])
	assert.Equal(t, Environ{}, undo.Apply(env1))
}

func TestCondaPlan(t *testing.T) {
	cfg := &models.EnvConfig{CondaEnv: "aiida-${PROFILE}", Dir: "/cfg", Path: "/cfg/aiida.yaml"}

	plan, err := NewPlan(cfg, Environ{"PROFILE": "dev"})
	require.NoError(t, err)

	last := plan.Actions[len(plan.Actions)-1]
	assert.Equal(t, []string{"conda", "activate", "aiida-dev"}, last.Argv)
}

func TestNewPlanValidation(t *testing.T) {
	cases := map[string]struct {
		cfg  models.EnvConfig
		want string
	}{
		"venv and conda": {
			cfg:  models.EnvConfig{Virtualenv: "v", CondaEnv: "c"},
			want: "mutually exclusive",
		},
		"bad daemon": {
			cfg:  models.EnvConfig{Daemon: "explode"},
			want: "daemon",
		},
		"bad name": {
			cfg:  models.EnvConfig{Environment: map[string]string{"1BAD": "x"}},
			want: "invalid variable name",
		},
		"reserved name": {
			cfg:  models.EnvConfig{Environment: map[string]string{VarsVar: "x"}},
			want: "reserved",
		},
		"reserved unset": {
			cfg:  models.EnvConfig{Unset: []string{"_ACTIVATE_AIIDA_OLD_PATH"}},
			want: "unset: _ACTIVATE_AIIDA_OLD_PATH is reserved",
		},
		"reserved vars unset": {
			cfg:  models.EnvConfig{Unset: []string{VarsVar}},
			want: "unset: _ACTIVATE_AIIDA_VARS is reserved",
		},
		"config var": {
			cfg:  models.EnvConfig{Environment: map[string]string{ConfigVar: "x"}},
			want: "reserved",
		},
		"profile overlap": {
			cfg: models.EnvConfig{
				AiidaProfile: "dev",
				Environment:  map[string]string{AiidaProfileVar: "prod"},
			},
			want: "AIIDA_PROFILE is already set by aiida_profile",
		},
		"path overlap": {
			cfg: models.EnvConfig{
				PathPrepend: []string{"/opt/bin"},
				Environment: map[string]string{PathVar: "/bin"},
			},
			want: "PATH is already set by path_prepend",
		},
		"set and unset": {
			cfg:  models.EnvConfig{Environment: map[string]string{"A": "x"}, Unset: []string{"A"}},
			want: "both set and unset",
		},
		"missing venv": {
			cfg:  models.EnvConfig{Virtualenv: "/nonexistent/venv"},
			want: "no bin/activate",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := tc.cfg
			cfg.Dir = "/cfg"
			_, err := NewPlan(&cfg, Environ{})
			require.Error(t, err)
			assert.True(t, models.IsType(err, models.ErrInvalidConfig), "got %v", err)
			assert.True(t, strings.Contains(err.Error(), tc.want), "got %v", err)
		})
	}
}

func TestEnvironmentMayOwnUnclaimedNames(t *testing.T) {
	cfg := &models.EnvConfig{
		Environment: map[string]string{AiidaProfileVar: "dev"},
		Dir:         "/cfg",
		Path:        "/cfg/aiida.yaml",
	}

	plan, err := NewPlan(cfg, Environ{})
	require.NoError(t, err)
	assert.Equal(t, "dev", plan.Apply(Environ{})[AiidaProfileVar])
}

func TestCheckVirtualenv(t *testing.T) {
	dir := t.TempDir()
	venv := filepath.Join(dir, "venv")
	require.NoError(t, os.MkdirAll(filepath.Join(venv, "bin"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(venv, "bin", "activate"), []byte("# venv\n"), 0644))

	cfg := &models.EnvConfig{Virtualenv: venv, Path: filepath.Join(dir, "aiida.yaml"), Dir: dir}
	plan, err := NewPlan(cfg, Environ{})
	require.NoError(t, err)

	assert.NoError(t, plan.CheckVirtualenv(VirtualenvScript))

	err = plan.CheckVirtualenv("activate.fish")
	assert.True(t, models.IsType(err, models.ErrInvalidConfig), "got %v", err)
	assert.Contains(t, err.Error(), "no bin/activate.fish")

	require.NoError(t, os.WriteFile(filepath.Join(venv, "bin", "activate.fish"), []byte("# venv\n"), 0644))
	assert.NoError(t, plan.CheckVirtualenv("activate.fish"))

	// Plans without a virtualenv have nothing to check
	assert.NoError(t, (&Plan{}).CheckVirtualenv("activate.fish"))
}

func TestFromList(t *testing.T) {
	env := FromList([]string{"A=1", "B=x=y", "=bad", "NOEQ"})
	assert.Equal(t, Environ{"A": "1", "B": "x=y"}, env)
	assert.Equal(t, []string{"A=1", "B=x=y"}, env.List())
}
