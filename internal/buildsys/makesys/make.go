// Package makesys drives Makefile-based builds.
package makesys

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

// Make runs the make tool in a source directory. Build arguments are passed
// through as-is, so key=value variable assignments keep their order and
// make's last-write-wins semantics apply.
type Make struct {
	// SourceDir is the directory holding the Makefile.
	SourceDir string

	// Bin is the make executable; defaults to "make".
	Bin string

	// Jobs limits parallel jobs; 0 lets make decide.
	Jobs int

	// Stdout and Stderr receive the tool's output; nil discards it (the
	// captured stderr still ends up in returned errors).
	Stdout io.Writer
	Stderr io.Writer

	env map[string]string
}

var _ buildsys.System = (*Make)(nil)

// New creates a Make helper rooted at sourceDir.
func New(sourceDir string) *Make {
	return &Make{
		SourceDir: sourceDir,
		Bin:       "make",
		env:       map[string]string{},
	}
}

func (m *Make) Env(key, val string) {
	if m.env == nil {
		m.env = map[string]string{}
	}
	m.env[key] = val
}

// Configure is a no-op: Makefile builds have no configure step.
func (m *Make) Configure(ctx context.Context, args ...string) error {
	return nil
}

func (m *Make) Build(ctx context.Context, args ...string) error {
	cmdArgs := []string{}
	if m.Jobs > 0 {
		cmdArgs = append(cmdArgs, fmt.Sprintf("-j%d", m.Jobs))
	}
	cmdArgs = append(cmdArgs, args...)

	cmd := exec.CommandContext(ctx, m.Bin, cmdArgs...)
	cmd.Dir = m.SourceDir
	if len(m.env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), m.env)
	}

	var stderr bytes.Buffer
	cmd.Stdout = m.Stdout
	if m.Stderr != nil {
		cmd.Stderr = io.MultiWriter(m.Stderr, &stderr)
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s %s: %w - stderr: %s", m.Bin, strings.Join(cmdArgs, " "), err, msg)
		}
		return fmt.Errorf("%s %s: %w", m.Bin, strings.Join(cmdArgs, " "), err)
	}
	return nil
}

// OutputDir returns the source directory: make builds in place.
func (m *Make) OutputDir() string {
	return m.SourceDir
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
