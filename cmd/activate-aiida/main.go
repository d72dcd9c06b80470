package main

import (
	"os"

	"github.com/chrisjsewell/activate-aiida/internal/cli"
	"github.com/sirupsen/logrus"
)

func main() {
	// Setup logging format; stdout is reserved for shell source
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
