package makesys

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeMake writes an executable shell script that records its arguments and
// environment, standing in for the real make.
func fakeMake(t *testing.T) (bin, argsFile, envFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake make script requires a POSIX shell")
	}

	dir := t.TempDir()
	bin = filepath.Join(dir, "make")
	argsFile = filepath.Join(dir, "args")
	envFile = filepath.Join(dir, "env")

	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > " + argsFile + "\nenv > " + envFile + "\n"
	if err := os.WriteFile(bin, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write fake make: %v", err)
	}
	return bin, argsFile, envFile
}

func TestBuildPassesArgumentsInOrder(t *testing.T) {
	bin, argsFile, _ := fakeMake(t)

	m := New(t.TempDir())
	m.Bin = bin

	args := []string{"CC=gcc", "MPI=no", "CFLAGS=-O3", "LDFLAGS=-lm"}
	if err := m.Build(context.Background(), args...); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	recorded, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("fake make did not run: %v", err)
	}
	got := strings.Split(strings.TrimSpace(string(recorded)), "\n")
	if len(got) != len(args) {
		t.Fatalf("recorded args = %v, want %v", got, args)
	}
	for i := range args {
		if got[i] != args[i] {
			t.Errorf("arg[%d] = %q, want %q", i, got[i], args[i])
		}
	}
}

func TestBuildAppliesJobsAndEnv(t *testing.T) {
	bin, argsFile, envFile := fakeMake(t)

	m := New(t.TempDir())
	m.Bin = bin
	m.Jobs = 4
	m.Env("SPACK_TEST_MARKER", "1")

	if err := m.Build(context.Background(), "all"); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	recorded, _ := os.ReadFile(argsFile)
	got := strings.Split(strings.TrimSpace(string(recorded)), "\n")
	if got[0] != "-j4" {
		t.Errorf("args = %v, want -j4 first", got)
	}

	env, _ := os.ReadFile(envFile)
	if !strings.Contains(string(env), "SPACK_TEST_MARKER=1") {
		t.Error("env override not passed to make")
	}
}

func TestBuildFailureCapturesStderr(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake make script requires a POSIX shell")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "make")
	script := "#!/bin/sh\necho 'undefined reference to main' >&2\nexit 2\n"
	if err := os.WriteFile(bin, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write fake make: %v", err)
	}

	m := New(dir)
	m.Bin = bin

	err := m.Build(context.Background())
	if err == nil {
		t.Fatal("Build succeeded, want error")
	}
	if !strings.Contains(err.Error(), "undefined reference") {
		t.Errorf("error = %v, missing captured stderr", err)
	}
}

func TestOutputDir(t *testing.T) {
	m := New("/src/openmp-threading")
	if got := m.OutputDir(); got != "/src/openmp-threading" {
		t.Errorf("OutputDir = %q", got)
	}
}
