// Package cmake drives CMake-based builds, used by the kokkos backend.
package cmake

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/jhdavis8/spack/internal/buildsys"
)

// CMake wraps the configure/build steps of a CMake source tree.
type CMake struct {
	// SourceDir is the directory holding the root CMakeLists.txt.
	SourceDir string

	// BuildDir is the out-of-source build directory.
	BuildDir string

	// Bin is the cmake executable; defaults to "cmake".
	Bin string

	Stdout io.Writer
	Stderr io.Writer

	defines map[string]string
	env     map[string]string
}

var _ buildsys.System = (*CMake)(nil)

// New creates a CMake helper for sourceDir building into buildDir.
func New(sourceDir, buildDir string) *CMake {
	return &CMake{
		SourceDir: sourceDir,
		BuildDir:  buildDir,
		Bin:       "cmake",
		defines:   map[string]string{},
		env:       map[string]string{},
	}
}

// Define records a -D cache definition for the configure step.
func (c *CMake) Define(key, value string) {
	if c.defines == nil {
		c.defines = map[string]string{}
	}
	c.defines[key] = value
}

func (c *CMake) Env(key, val string) {
	if c.env == nil {
		c.env = map[string]string{}
	}
	c.env[key] = val
}

func (c *CMake) Configure(ctx context.Context, args ...string) error {
	if err := os.MkdirAll(c.BuildDir, 0755); err != nil {
		return err
	}
	cmakeArgs := []string{"-S", c.SourceDir, "-B", c.BuildDir}
	cmakeArgs = append(cmakeArgs, c.definesArgs()...)
	cmakeArgs = append(cmakeArgs, args...)
	return c.run(ctx, cmakeArgs)
}

func (c *CMake) Build(ctx context.Context, args ...string) error {
	cmdArgs := []string{"--build", c.BuildDir}
	cmdArgs = append(cmdArgs, args...)
	return c.run(ctx, cmdArgs)
}

// OutputDir returns the build directory.
func (c *CMake) OutputDir() string {
	return c.BuildDir
}

func (c *CMake) definesArgs() []string {
	if len(c.defines) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.defines))
	for k := range c.defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, len(keys))
	for _, k := range keys {
		args = append(args, "-D"+k+"="+c.defines[k])
	}
	return args
}

func (c *CMake) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, c.Bin, args...)
	if len(c.env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), c.env)
	}

	var stderr bytes.Buffer
	cmd.Stdout = c.Stdout
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(c.Stderr, &stderr)
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s %s: %w - stderr: %s", c.Bin, strings.Join(args, " "), err, msg)
		}
		return fmt.Errorf("%s %s: %w", c.Bin, strings.Join(args, " "), err)
	}
	return nil
}

func mergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}
