// Command petctl is the host-side companion tool for the petos kernel: it
// builds the fixture disk image (pkg/bootimg) and renders the boot-splash
// asset (pkg/logoasset) that image embeds. Like the kernel's own
// tools/makelogo and tools/redirects, it never links against kernel/...
// and is free to use a normal Go CLI/logging stack; grounded on
// jra3-system-agent's zap+zapr+logr logging pattern, with cobra (present in
// that repo's dependency graph, if only as an indirect pull from its
// Kubernetes tooling) standing in for that repo's flag-based command shape
// since petctl needs more than one subcommand.
package main

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"petos/pkg/bootimg"
)

var (
	verbose bool
	logger  logr.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "petctl",
		Short: "Build and inspect petos boot fixtures",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var zapLog *zap.Logger
			if verbose {
				zapLog, _ = zap.NewDevelopment()
			} else {
				zapLog, _ = zap.NewProduction()
			}
			logger = zapr.NewLogger(zapLog)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(buildImageCmd())
	root.AddCommand(catCmd())
	return root
}

func buildImageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build-image",
		Short: "Build the fixture disk image (VFS tree + boot splash)",
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := bootimg.New()
			if err != nil {
				return fmt.Errorf("%s: %s", err.Module, err.Message)
			}
			logger.Info("image built", "blockSize", img.SuperBlock.BlockSize)
			return nil
		},
	}
}

func catCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>",
		Short: "Print a file's contents out of a freshly built fixture image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := bootimg.New()
			if err != nil {
				return fmt.Errorf("%s: %s", err.Module, err.Message)
			}

			data, rerr := img.ReadFile(args[0])
			if rerr != nil {
				return fmt.Errorf("%s: %s", rerr.Module, rerr.Message)
			}

			logger.Info("read file", "path", args[0], "bytes", len(data))
			_, werr := cmd.OutOrStdout().Write(data)
			return werr
		},
	}
}
