package cli

import (
	"fmt"

	"github.com/chrisjsewell/activate-aiida/internal/activate"
	"github.com/chrisjsewell/activate-aiida/internal/shell"
	"github.com/chrisjsewell/activate-aiida/internal/shell/fish"
	"github.com/chrisjsewell/activate-aiida/internal/shell/posix"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// environ is the environment commands plan against; tests replace it
var environ = activate.FromOS

// NewActivateCmd creates the activate command
func NewActivateCmd() *cobra.Command {
	var shellName string

	cmd := &cobra.Command{
		Use:   "activate [config.yaml]",
		Short: "Print shell source activating an aiida environment",
		Long: fmt.Sprintf(`Reads the YAML config (default: $%s, then ./%s) and prints
shell source exporting the environment it describes. Values saved before
activation are restored by the deactivate command.`, activate.ConfigFileEnv, activate.DefaultConfigFile),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			return runActivate(cmd, path, shellName)
		},
	}

	addShellFlag(cmd, &shellName)
	return cmd
}

// NewDeactivateCmd creates the deactivate command
func NewDeactivateCmd() *cobra.Command {
	var shellName string

	cmd := &cobra.Command{
		Use:   "deactivate",
		Short: "Print shell source restoring the environment from before activation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := environ()

			renderer, err := newRenderer(shellName, env)
			if err != nil {
				return err
			}

			plan, err := activate.Deactivate(env)
			if err != nil {
				return err
			}

			logrus.Debugf("Deactivating %s", env[activate.ConfigVar])
			return renderer.Render(cmd.OutOrStdout(), plan)
		},
	}

	addShellFlag(cmd, &shellName)
	return cmd
}

func runActivate(cmd *cobra.Command, path, shellName string) error {
	env := environ()

	renderer, err := newRenderer(shellName, env)
	if err != nil {
		return err
	}

	path = activate.ResolveConfigPath(path, env)
	logrus.Debugf("Loading config %s", path)

	cfg, err := activate.LoadConfig(path)
	if err != nil {
		return err
	}

	plan, err := activate.NewPlan(cfg, env)
	if err != nil {
		return err
	}
	if err := plan.CheckVirtualenv(renderer.VirtualenvScript()); err != nil {
		return err
	}

	logrus.Debugf("Rendering %d actions for %s", len(plan.Actions), renderer.Name())
	if err := renderer.Render(cmd.OutOrStdout(), plan); err != nil {
		return fmt.Errorf("failed to write shell source: %w", err)
	}

	if cfg.AiidaProfile != "" {
		logrus.Infof("Activated aiida profile %s from %s", cfg.AiidaProfile, cfg.Path)
	} else {
		logrus.Infof("Activated aiida environment from %s", cfg.Path)
	}
	return nil
}

// newRenderer maps a shell name to its renderer
func newRenderer(name string, env activate.Environ) (shell.Renderer, error) {
	name, err := shell.Normalize(name, env)
	if err != nil {
		return nil, err
	}

	renderers := map[string]func() shell.Renderer{
		shell.Bash: func() shell.Renderer { return posix.NewRenderer(shell.Bash) },
		shell.Zsh:  func() shell.Renderer { return posix.NewRenderer(shell.Zsh) },
		shell.Sh:   func() shell.Renderer { return posix.NewRenderer(shell.Sh) },
		shell.Fish: fish.NewRenderer,
	}
	return renderers[name](), nil
}

func addShellFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "shell", "s", "", "Shell to generate source for (bash, zsh, sh, fish); detected from $SHELL by default")
}
