package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags
var Version = "0.1.0"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var shellName string

	rootCmd := &cobra.Command{
		Use:   "activate-aiida [config.yaml]",
		Short: "Activate an aiida environment from a YAML config file",
		Long: `activate-aiida reads a YAML file describing an aiida environment
(AIIDA_PATH, profile, virtualenv or conda environment, extra variables)
and prints shell source that applies it. Evaluate the output in your shell:

  eval "$(activate-aiida aiida.yaml)"
  activate-aiida aiida.yaml --shell fish | source

Undo with:

  eval "$(activate-aiida deactivate)"`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			quiet, _ := cmd.Flags().GetBool("quiet")
			switch {
			case verbose:
				logrus.SetLevel(logrus.DebugLevel)
			case quiet:
				logrus.SetLevel(logrus.WarnLevel)
			default:
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare invocation is shorthand for activate
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			return runActivate(cmd, path, shellName)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only log warnings and errors")
	addShellFlag(rootCmd, &shellName)

	// Add subcommands
	rootCmd.AddCommand(NewActivateCmd())
	rootCmd.AddCommand(NewDeactivateCmd())
	rootCmd.AddCommand(NewPackageCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
