// Package build orchestrates a full build of a recipe: fetch the sources,
// resolve the requested configuration into a plan, drive the external build
// tool, and optionally install the produced artifact.
package build

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jhdavis8/spack/internal/buildsys"
	"github.com/jhdavis8/spack/internal/buildsys/cmake"
	"github.com/jhdavis8/spack/internal/buildsys/makesys"
	"github.com/jhdavis8/spack/internal/config"
	"github.com/jhdavis8/spack/internal/ctxlog"
	"github.com/jhdavis8/spack/internal/env"
	"github.com/jhdavis8/spack/internal/fetch"
	"github.com/jhdavis8/spack/internal/install"
	"github.com/jhdavis8/spack/internal/resolve"
	"github.com/jhdavis8/spack/internal/toolchain"
	"github.com/jhdavis8/spack/recipe"
)

// Options configures a Builder.
type Options struct {
	// Recipe to build. Required.
	Recipe *recipe.Recipe

	// WorkDir is the scratch directory for sources and builds; defaults to
	// the tool's cache directory.
	WorkDir string

	// Output receives the external build tool's stdout/stderr; nil
	// discards it (failures still carry the captured stderr).
	Output io.Writer

	// Jobs limits make parallelism; 0 lets make decide.
	Jobs int

	// Fetcher obtains the sources; defaults to fetch.New().
	Fetcher *fetch.Fetcher
}

// Builder runs builds of one recipe. Each Build call is independent: no
// state is carried between invocations.
type Builder struct {
	recipe  *recipe.Recipe
	fetcher *fetch.Fetcher
	workDir string
	output  io.Writer
	jobs    int

	// build-system constructors, replaceable in tests
	newMake  func(dir string) buildsys.System
	newCMake func(srcDir, buildDir string) buildsys.System
}

// Result describes a completed build.
type Result struct {
	Version   recipe.Version
	Plan      *resolve.Plan
	OutputDir string
}

// NewBuilder creates a Builder for the given recipe.
func NewBuilder(opts Options) (*Builder, error) {
	if opts.Recipe == nil {
		return nil, fmt.Errorf("build: no recipe")
	}

	workDir := opts.WorkDir
	if workDir == "" {
		dir, err := env.WorkDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate work directory: %w", err)
		}
		workDir = dir
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = fetch.New()
	}

	b := &Builder{
		recipe:  opts.Recipe,
		fetcher: fetcher,
		workDir: workDir,
		output:  opts.Output,
		jobs:    opts.Jobs,
	}
	b.newMake = func(dir string) buildsys.System {
		m := makesys.New(dir)
		m.Jobs = b.jobs
		m.Stdout = b.output
		m.Stderr = b.output
		return m
	}
	b.newCMake = func(srcDir, buildDir string) buildsys.System {
		c := cmake.New(srcDir, buildDir)
		c.Stdout = b.output
		c.Stderr = b.output
		return c
	}
	return b, nil
}

// Build resolves the request, fetches the sources and compiles them.
func (b *Builder) Build(ctx context.Context, req *config.Request) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	ver, err := b.selectVersion(ctx, req.Version)
	if err != nil {
		return nil, err
	}

	// Resolution runs before any I/O: a conflicting configuration must
	// never start a fetch or build.
	plan, err := resolve.Resolve(req.Resolve)
	if err != nil {
		return nil, err
	}

	srcDir, err := b.fetcher.Fetch(ctx, b.recipe, ver, filepath.Join(b.workDir, b.recipe.Name, ver.ID))
	if err != nil {
		return nil, err
	}

	buildDir := filepath.Join(srcDir, plan.Subdirectory)
	logger.Info("building", "recipe", b.recipe.Name, "version", ver.ID,
		"subdirectory", plan.Subdirectory, "system", string(plan.System))

	sys, err := b.newSystem(plan, req.Resolve.Compiler, buildDir)
	if err != nil {
		return nil, err
	}
	if err := sys.Configure(ctx); err != nil {
		return nil, fmt.Errorf("failed to configure %s@%s: %w", b.recipe.Name, ver.ID, err)
	}
	if err := b.runBuild(ctx, sys, plan); err != nil {
		return nil, fmt.Errorf("failed to build %s@%s: %w", b.recipe.Name, ver.ID, err)
	}

	return &Result{
		Version:   ver,
		Plan:      plan,
		OutputDir: sys.OutputDir(),
	}, nil
}

// Install builds the request and copies the artifact into prefix.
func (b *Builder) Install(ctx context.Context, req *config.Request, prefix string) (string, error) {
	res, err := b.Build(ctx, req)
	if err != nil {
		return "", err
	}
	return install.Install(ctx, res.OutputDir, res.Plan.InstallArtifactName, prefix)
}

func (b *Builder) selectVersion(ctx context.Context, id string) (recipe.Version, error) {
	if id == "" {
		return b.recipe.Latest()
	}
	ver, ok := b.recipe.Lookup(id)
	if !ok {
		return recipe.Version{}, fmt.Errorf("%s: unknown version %s", b.recipe.Name, id)
	}
	if ver.Deprecated {
		ctxlog.FromContext(ctx).Warn("version is deprecated", "recipe", b.recipe.Name, "version", ver.ID)
	}
	return ver, nil
}

func (b *Builder) newSystem(plan *resolve.Plan, compiler toolchain.Compiler, buildDir string) (buildsys.System, error) {
	switch plan.System {
	case resolve.Make:
		return b.newMake(buildDir), nil
	case resolve.CMake:
		c := b.newCMake(buildDir, filepath.Join(buildDir, "build"))
		// Make builds carry the compiler as command-line variables; the
		// cmake path picks it up from the environment instead.
		c.Env("CC", compiler.CC)
		c.Env("CXX", compiler.CXX)
		// CMake receives the plan's key=value arguments as cache defines.
		if def, ok := c.(interface{ Define(key, value string) }); ok {
			for _, arg := range plan.BuildArguments {
				k, v, ok := strings.Cut(arg, "=")
				if !ok {
					return nil, fmt.Errorf("malformed build argument: %s", arg)
				}
				def.Define(k, v)
			}
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown build system: %s", plan.System)
	}
}

func (b *Builder) runBuild(ctx context.Context, sys buildsys.System, plan *resolve.Plan) error {
	if plan.System == resolve.Make {
		return sys.Build(ctx, plan.BuildArguments...)
	}
	return sys.Build(ctx)
}
