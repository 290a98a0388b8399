package build

import (
	"context"
	"os"
	"path/filepath"

	"github.com/jhdavis8/spack/internal/buildsys"
)

// mockSystem records build-tool invocations and fakes the artifact.
type mockSystem struct {
	dir        string
	configured bool
	buildArgs  []string
	buildErr   error
	artifact   string // written into dir on Build when non-empty
	defines    map[string]string
	env        map[string]string
}

var _ buildsys.System = (*mockSystem)(nil)

func (m *mockSystem) Env(key, val string) {
	if m.env == nil {
		m.env = map[string]string{}
	}
	m.env[key] = val
}

func (m *mockSystem) Configure(ctx context.Context, args ...string) error {
	m.configured = true
	return nil
}

func (m *mockSystem) Build(ctx context.Context, args ...string) error {
	m.buildArgs = args
	if m.buildErr != nil {
		return m.buildErr
	}
	if m.artifact != "" {
		if err := os.MkdirAll(m.dir, 0755); err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(m.dir, m.artifact), []byte("binary"), 0755)
	}
	return nil
}

func (m *mockSystem) OutputDir() string {
	return m.dir
}

func (m *mockSystem) Define(key, value string) {
	if m.defines == nil {
		m.defines = map[string]string{}
	}
	m.defines[key] = value
}

// mockVCS satisfies the fetcher's VCS with a local no-op sync.
type mockVCS struct{}

func (mockVCS) Sync(ctx context.Context, remote, ref, dir string) error {
	return os.MkdirAll(dir, 0755)
}

func (mockVCS) Latest(ctx context.Context, remote string) (string, error) {
	return "", nil
}
