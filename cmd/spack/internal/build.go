package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhdavis8/spack/internal/build"
	"github.com/jhdavis8/spack/internal/config"
	"github.com/jhdavis8/spack/recipe/xsbench"
)

var (
	buildConfigFile string
	buildWorkDir    string
	buildJobs       int
	buildVerbose    bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Fetch and compile XSBench",
	Long:  `Build fetches the requested XSBench version and compiles it according to the build request file.`,
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildConfigFile, "config", "c", "build.hcl", "Build request file")
	buildCmd.Flags().StringVarP(&buildWorkDir, "work", "w", "", "Scratch directory (defaults to the user cache)")
	buildCmd.Flags().IntVarP(&buildJobs, "jobs", "j", 0, "Parallel make jobs (0 lets make decide)")
	buildCmd.Flags().BoolVarP(&buildVerbose, "verbose", "v", false, "Show build tool output")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := newContext(buildVerbose)

	req, err := config.Load(ctx, buildConfigFile)
	if err != nil {
		return err
	}

	builder, err := newBuilder(buildWorkDir, buildJobs, buildVerbose)
	if err != nil {
		return err
	}

	res, err := builder.Build(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("built %s@%s in %s\n", xsbench.New().Name, res.Version.ID, res.OutputDir)
	return nil
}

func newBuilder(workDir string, jobs int, verbose bool) (*build.Builder, error) {
	var output io.Writer
	if verbose {
		output = os.Stderr
	}
	return build.NewBuilder(build.Options{
		Recipe:  xsbench.New(),
		WorkDir: workDir,
		Output:  output,
		Jobs:    jobs,
	})
}
