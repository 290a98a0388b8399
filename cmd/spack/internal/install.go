package internal

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jhdavis8/spack/internal/config"
)

var (
	installConfigFile string
	installPrefix     string
	installWorkDir    string
	installJobs       int
	installVerbose    bool
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Build XSBench and install the binary into a prefix",
	Long:  `Install builds the requested XSBench configuration and copies the binary into <prefix>/bin.`,
	Args:  cobra.NoArgs,
	RunE:  runInstall,
}

func init() {
	installCmd.Flags().StringVarP(&installConfigFile, "config", "c", "build.hcl", "Build request file")
	installCmd.Flags().StringVarP(&installPrefix, "prefix", "p", "", "Installation prefix (required)")
	installCmd.Flags().StringVarP(&installWorkDir, "work", "w", "", "Scratch directory (defaults to the user cache)")
	installCmd.Flags().IntVarP(&installJobs, "jobs", "j", 0, "Parallel make jobs (0 lets make decide)")
	installCmd.Flags().BoolVarP(&installVerbose, "verbose", "v", false, "Show build tool output")
	installCmd.MarkFlagRequired("prefix")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx := newContext(installVerbose)

	req, err := config.Load(ctx, installConfigFile)
	if err != nil {
		return err
	}

	prefix, err := filepath.Abs(installPrefix)
	if err != nil {
		return fmt.Errorf("failed to resolve prefix: %w", err)
	}

	builder, err := newBuilder(installWorkDir, installJobs, installVerbose)
	if err != nil {
		return err
	}

	dst, err := builder.Install(ctx, req, prefix)
	if err != nil {
		return err
	}

	fmt.Printf("installed %s\n", dst)
	return nil
}
