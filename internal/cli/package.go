package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/chrisjsewell/activate-aiida/internal/descriptor"
	"github.com/chrisjsewell/activate-aiida/internal/dist"
	"github.com/chrisjsewell/activate-aiida/internal/models"
	"github.com/chrisjsewell/activate-aiida/internal/signer"
	"github.com/chrisjsewell/activate-aiida/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewPackageCmd creates the package command group
func NewPackageCmd() *cobra.Command {
	var config models.BuildConfig

	cmd := &cobra.Command{
		Use:   "package",
		Short: "Validate, describe, build and install the packaging descriptor",
		Long: `Works on the package.yaml descriptor of a project: validates it,
prints the metadata record, builds a reproducible source archive and
installs the declared scripts onto an execution path.`,
	}

	// Input flags
	cmd.PersistentFlags().StringVarP(&config.Root, "root", "r", ".", "Project root directory")
	cmd.PersistentFlags().StringVarP(&config.DescriptorPath, "descriptor", "d", descriptor.DefaultFile, "Descriptor file, relative to the root")

	cmd.AddCommand(newPackageValidateCmd(&config))
	cmd.AddCommand(newPackageInfoCmd(&config))
	cmd.AddCommand(newPackageBuildCmd(&config))
	cmd.AddCommand(newPackageInstallCmd(&config))

	return cmd
}

func newPackageValidateCmd(config *models.BuildConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the descriptor and the files it references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDescriptor(config)
			if err != nil {
				return err
			}
			logrus.Infof("%s is valid", utils.PackageIdentity(d.Name, d.Version))
			return nil
		},
	}
}

func newPackageInfoCmd(config *models.BuildConfig) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print the metadata record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := buildRecord(cmd.Context(), config)
			if err != nil {
				return err
			}

			var out []byte
			switch format {
			case "json":
				out, err = descriptor.MarshalRecord(rec)
				if err != nil {
					return err
				}
			case "pkg-info":
				out = descriptor.RenderPKGInfo(rec)
			default:
				return models.NewError(models.ErrInvalidConfig, "", fmt.Errorf("unknown format %q (json, pkg-info)", format))
			}

			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, pkg-info)")
	return cmd
}

func newPackageBuildCmd(config *models.BuildConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a reproducible source archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateBuildConfig(config); err != nil {
				return err
			}
			return runBuild(cmd.Context(), config)
		},
	}

	// Output flags
	cmd.Flags().StringVarP(&config.OutputDir, "output-dir", "o", "dist", "Output directory, relative to the root")
	cmd.Flags().StringVarP(&config.Compression, "compression", "c", utils.CompressionGzip, "Archive compression (gz, zst, xz)")

	// Signing flags
	cmd.Flags().StringVarP(&config.GPGKeyPath, "gpg-key", "k", "", "Path to GPG private key")
	cmd.Flags().StringVarP(&config.GPGPassphrase, "gpg-passphrase", "p", "", "GPG key passphrase")
	cmd.Flags().StringVar(&config.RSAKeyPath, "rsa-key", "", "Path to RSA private key")
	cmd.Flags().StringVar(&config.RSAPassphrase, "rsa-passphrase", "", "RSA key passphrase")

	return cmd
}

func newPackageInstallCmd(config *models.BuildConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the declared scripts into <prefix>/bin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.Prefix == "" {
				return models.NewError(models.ErrInvalidConfig, "", fmt.Errorf("prefix is required"))
			}
			return runInstall(config)
		},
	}

	cmd.Flags().StringVar(&config.Prefix, "prefix", "", "Installation prefix; scripts go to <prefix>/bin")
	return cmd
}

func validateBuildConfig(config *models.BuildConfig) error {
	if config.OutputDir == "" {
		return models.NewError(models.ErrInvalidConfig, "", fmt.Errorf("output-dir is required"))
	}

	valid := false
	for _, c := range utils.Compressions {
		if config.Compression == c {
			valid = true
		}
	}
	if !valid {
		return models.NewError(models.ErrInvalidConfig, "", fmt.Errorf("unsupported compression %q", config.Compression))
	}

	if config.GPGKeyPath != "" && config.RSAKeyPath != "" {
		return models.NewError(models.ErrInvalidConfig, "", fmt.Errorf("gpg-key and rsa-key are mutually exclusive"))
	}

	// Set OutputDir relative to the root if not absolute
	if !filepath.IsAbs(config.OutputDir) {
		config.OutputDir = filepath.Join(config.Root, config.OutputDir)
	}

	return nil
}

func runBuild(ctx context.Context, config *models.BuildConfig) error {
	// Step 1: Build the metadata record
	rec, err := buildRecord(ctx, config)
	if err != nil {
		return err
	}

	// Step 2: Initialize signer
	s, err := signer.New(config.GPGKeyPath, config.GPGPassphrase, config.RSAKeyPath, config.RSAPassphrase)
	if err != nil {
		return models.NewError(models.ErrSigning, "", fmt.Errorf("failed to initialize signer: %w", err))
	}
	if s != nil {
		logrus.Info("Signer initialized")
	}

	// Step 3: Write the archive
	artifact, err := dist.NewBuilder(s).Build(ctx, config.Root, rec, config.OutputDir, config.Compression)
	if err != nil {
		return err
	}

	logrus.Info("Build completed successfully!")
	logrus.Infof("Archive: %s", artifact.ArchivePath)
	return nil
}

func runInstall(config *models.BuildConfig) error {
	d, err := loadDescriptor(config)
	if err != nil {
		return err
	}

	if len(d.Scripts) == 0 {
		logrus.Warn("Descriptor declares no scripts")
		return nil
	}

	binDir := filepath.Join(config.Prefix, "bin")
	for _, script := range d.Scripts {
		src := filepath.Join(config.Root, filepath.FromSlash(script))
		dst := filepath.Join(binDir, filepath.Base(src))

		installed, err := utils.InstallFile(src, dst, 0755)
		if err != nil {
			return models.NewError(models.ErrFileOp, script, fmt.Errorf("failed to install: %w", err))
		}
		if installed {
			logrus.Infof("Installed %s", dst)
		} else {
			logrus.Infof("%s is up to date", dst)
		}
	}

	return nil
}

// loadDescriptor loads and validates the configured descriptor
func loadDescriptor(config *models.BuildConfig) (*models.Descriptor, error) {
	path := config.DescriptorPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(config.Root, path)
	}

	logrus.Debugf("Loading descriptor %s", path)
	d, err := descriptor.Load(path)
	if err != nil {
		return nil, err
	}

	if err := descriptor.Validate(config.Root, d); err != nil {
		return nil, err
	}
	return d, nil
}

func buildRecord(ctx context.Context, config *models.BuildConfig) (*models.Record, error) {
	d, err := loadDescriptor(config)
	if err != nil {
		return nil, err
	}
	return descriptor.Build(ctx, config.Root, d)
}
