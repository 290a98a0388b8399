// Package buildsys captures the shared surface of the external build tools
// the recipe can drive (make, cmake). The tools themselves are black boxes:
// this layer only assembles their invocations and propagates their failures
// verbatim, without retrying.
package buildsys

import "context"

// System drives an external build tool in a source tree.
type System interface {
	// Env sets an environment variable for subsequent invocations.
	Env(key, val string)

	// Configure prepares the build. Make-driven builds have no configure
	// step and treat this as a no-op.
	Configure(ctx context.Context, args ...string) error

	// Build compiles the project with the given tool arguments.
	Build(ctx context.Context, args ...string) error

	// OutputDir is where the built artifacts land.
	OutputDir() string
}
