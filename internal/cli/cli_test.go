package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chrisjsewell/activate-aiida/internal/activate"
	"github.com/chrisjsewell/activate-aiida/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with env as the process environment
func run(t *testing.T, env activate.Environ, args ...string) (string, error) {
	t.Helper()

	orig := environ
	environ = func() activate.Environ { return env.Clone() }
	t.Cleanup(func() { environ = orig })

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestActivateCommand(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "aiida.yaml")
	writeFile(t, cfg, "aiida_profile: dev\naiida_path: /srv/aiida\n")

	env := activate.Environ{"SHELL": "/bin/bash", "PATH": "/usr/bin"}

	out, err := run(t, env, "activate", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "export AIIDA_PROFILE=dev\n")
	assert.Contains(t, out, "export AIIDA_PATH=/srv/aiida\n")

	// Bare invocation is the same as activate
	bare, err := run(t, env, cfg)
	require.NoError(t, err)
	assert.Equal(t, out, bare)

	fishOut, err := run(t, env, "activate", cfg, "--shell", "fish")
	require.NoError(t, err)
	assert.Contains(t, fishOut, "set -gx AIIDA_PROFILE 'dev'\n")
}

func TestActivateChecksVirtualenvScriptForShell(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "venv", "bin", "activate"), "# venv\n")
	cfg := filepath.Join(dir, "aiida.yaml")
	writeFile(t, cfg, "virtualenv: ./venv\n")

	out, err := run(t, activate.Environ{}, "activate", cfg, "--shell", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "/venv/bin/activate\n")

	_, err = run(t, activate.Environ{}, "activate", cfg, "--shell", "fish")
	assert.True(t, models.IsType(err, models.ErrInvalidConfig), "got %v", err)
	assert.Contains(t, err.Error(), "no bin/activate.fish")

	writeFile(t, filepath.Join(dir, "venv", "bin", "activate.fish"), "# venv\n")
	out, err = run(t, activate.Environ{}, "activate", cfg, "--shell", "fish")
	require.NoError(t, err)
	assert.Contains(t, out, "/venv/bin/activate.fish'\n")
}

func TestActivateUsesConfigFileEnv(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, cfg, "aiida_profile: from-env\n")

	out, err := run(t, activate.Environ{activate.ConfigFileEnv: cfg}, "activate")
	require.NoError(t, err)
	assert.Contains(t, out, "export AIIDA_PROFILE=from-env\n")
}

func TestActivateErrors(t *testing.T) {
	_, err := run(t, activate.Environ{}, "activate", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, models.IsType(err, models.ErrFileOp), "got %v", err)

	cfg := filepath.Join(t.TempDir(), "aiida.yaml")
	writeFile(t, cfg, "aiida_profile: dev\n")
	_, err = run(t, activate.Environ{}, "activate", cfg, "--shell", "powershell")
	assert.Error(t, err)
}

func TestDeactivateCommand(t *testing.T) {
	env := activate.Environ{
		activate.VarsVar:                    "AIIDA_PROFILE",
		"_ACTIVATE_AIIDA_OLD_AIIDA_PROFILE": "prod",
		"AIIDA_PROFILE":                     "dev",
	}

	out, err := run(t, env, "deactivate", "--shell", "sh")
	require.NoError(t, err)
	assert.Equal(t, "export AIIDA_PROFILE=prod\nunset _ACTIVATE_AIIDA_OLD_AIIDA_PROFILE\nunset _ACTIVATE_AIIDA_VARS\n", out)

	_, err = run(t, activate.Environ{}, "deactivate")
	assert.True(t, models.IsType(err, models.ErrNotActive), "got %v", err)
}

func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.yaml"), `name: activate-aiida
version: 0.1.0
description: a package to activate an aiida environment, from a yaml config file
license: MIT
keywords: aiida, yaml, configuration
scripts:
  - bin/activate-aiida
`)
	writeFile(t, filepath.Join(root, "README.md"), "# activate-aiida\n")
	writeFile(t, filepath.Join(root, "bin", "activate-aiida"), "#!/bin/sh\nexec activate-aiida \"$@\"\n")
	writeFile(t, filepath.Join(root, "activate_aiida", "__init__.py"), "")
	return root
}

func TestPackageValidate(t *testing.T) {
	root := setupProject(t)

	_, err := run(t, activate.Environ{}, "package", "validate", "--root", root)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "bin", "activate-aiida")))
	_, err = run(t, activate.Environ{}, "package", "validate", "--root", root)
	assert.True(t, models.IsType(err, models.ErrInvalidDescriptor), "got %v", err)
}

func TestPackageValidateShippedDescriptor(t *testing.T) {
	_, err := run(t, activate.Environ{}, "package", "validate", "--root", filepath.Join("..", ".."))
	require.NoError(t, err)

	out, err := run(t, activate.Environ{}, "package", "info", "--root", filepath.Join("..", ".."), "--format", "pkg-info")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Metadata-Version: 2.1\nName: activate-aiida\n"), out)
}

func TestPackageInfo(t *testing.T) {
	root := setupProject(t)

	out, err := run(t, activate.Environ{}, "package", "info", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "activate-aiida"`)
	assert.Contains(t, out, `"activate_aiida"`)

	again, err := run(t, activate.Environ{}, "package", "info", "--root", root)
	require.NoError(t, err)
	assert.Equal(t, out, again)

	pkgInfo, err := run(t, activate.Environ{}, "package", "info", "--root", root, "--format", "pkg-info")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(pkgInfo, "Metadata-Version: 2.1\nName: activate-aiida\n"), pkgInfo)

	_, err = run(t, activate.Environ{}, "package", "info", "--root", root, "--format", "toml")
	assert.True(t, models.IsType(err, models.ErrInvalidConfig), "got %v", err)
}

func TestPackageBuild(t *testing.T) {
	root := setupProject(t)

	_, err := run(t, activate.Environ{}, "package", "build", "--root", root, "--compression", "xz")
	require.NoError(t, err)

	archive := filepath.Join(root, "dist", "activate_aiida-0.1.0.tar.xz")
	assert.FileExists(t, archive)
	assert.FileExists(t, archive+".sha256")

	_, err = run(t, activate.Environ{}, "package", "build", "--root", root, "--compression", "bz2")
	assert.True(t, models.IsType(err, models.ErrInvalidConfig), "got %v", err)
}

func TestPackageBuildMissingReadme(t *testing.T) {
	root := setupProject(t)
	require.NoError(t, os.Remove(filepath.Join(root, "README.md")))

	_, err := run(t, activate.Environ{}, "package", "build", "--root", root)
	assert.True(t, models.IsType(err, models.ErrFileOp), "got %v", err)
}

func TestPackageInstall(t *testing.T) {
	root := setupProject(t)
	prefix := t.TempDir()

	_, err := run(t, activate.Environ{}, "package", "install", "--root", root, "--prefix", prefix)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(prefix, "bin", "activate-aiida"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

	_, err = run(t, activate.Environ{}, "package", "install", "--root", root)
	assert.True(t, models.IsType(err, models.ErrInvalidConfig), "got %v", err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, activate.Environ{}, "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}
