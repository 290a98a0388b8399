package internal

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhdavis8/spack/internal/ctxlog"
)

var rootCmd = &cobra.Command{
	Use:   "spack",
	Short: "spack builds and installs the XSBench mini-app",
	Long: `spack fetches, configures, compiles and installs the XSBench mini-app
under a set of hardware and parallelism variants (MPI, OpenMP threading,
OpenMP offload, HIP, CUDA, Kokkos, SYCL, OpenACC).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}

// newContext returns a background context carrying a logger at the
// requested verbosity.
func newContext(verbose bool) context.Context {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return ctxlog.WithLogger(context.Background(), logger)
}
