package internal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhdavis8/spack/internal/config"
	"github.com/jhdavis8/spack/internal/resolve"
)

var resolveConfigFile string

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a build request into a build plan without building",
	Long: `Resolve reads a build request file and prints the build plan it maps
to: the source subdirectory, the build system, and the ordered build-tool
arguments. Nothing is fetched or compiled.`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVarP(&resolveConfigFile, "config", "c", "build.hcl", "Build request file")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	req, err := config.Load(newContext(false), resolveConfigFile)
	if err != nil {
		return err
	}

	plan, err := resolve.Resolve(req.Resolve)
	if err != nil {
		return err
	}

	for _, line := range formatPlan(plan) {
		fmt.Println(line)
	}
	return nil
}

func formatPlan(plan *resolve.Plan) []string {
	lines := []string{
		"subdirectory: " + plan.Subdirectory,
		"system:       " + string(plan.System),
		"artifact:     " + plan.InstallArtifactName,
	}
	for _, arg := range plan.BuildArguments {
		lines = append(lines, "  "+arg)
	}
	return lines
}
