package cmake

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
)

func fakeCMake(t *testing.T) (bin, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake cmake script requires a POSIX shell")
	}

	dir := t.TempDir()
	bin = filepath.Join(dir, "cmake")
	argsFile = filepath.Join(dir, "args")

	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > " + argsFile + "\n"
	if err := os.WriteFile(bin, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write fake cmake: %v", err)
	}
	return bin, argsFile
}

func recordedArgs(t *testing.T, argsFile string) []string {
	t.Helper()
	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("fake cmake did not run: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestConfigureAssemblesDefines(t *testing.T) {
	bin, argsFile := fakeCMake(t)

	srcDir := filepath.Join(t.TempDir(), "kokkos")
	buildDir := filepath.Join(t.TempDir(), "build")
	c := New(srcDir, buildDir)
	c.Bin = bin
	c.Define("Kokkos_ROOT", "/opt/kokkos")

	if err := c.Configure(context.Background()); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	got := recordedArgs(t, argsFile)
	want := []string{"-S", srcDir, "-B", buildDir, "-DKokkos_ROOT=/opt/kokkos"}
	if !slices.Equal(got, want) {
		t.Errorf("cmake args = %v, want %v", got, want)
	}

	if _, err := os.Stat(buildDir); err != nil {
		t.Errorf("build dir not created: %v", err)
	}
}

func TestDefinesSortedDeterministically(t *testing.T) {
	c := New("/src", "/build")
	c.Define("B_DEF", "2")
	c.Define("A_DEF", "1")

	got := c.definesArgs()
	want := []string{"-DA_DEF=1", "-DB_DEF=2"}
	if !slices.Equal(got, want) {
		t.Errorf("definesArgs = %v, want %v", got, want)
	}
}

func TestBuildInvocation(t *testing.T) {
	bin, argsFile := fakeCMake(t)

	c := New("/src", filepath.Join(t.TempDir(), "build"))
	c.Bin = bin

	if err := c.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	got := recordedArgs(t, argsFile)
	want := []string{"--build", c.BuildDir}
	if !slices.Equal(got, want) {
		t.Errorf("cmake args = %v, want %v", got, want)
	}
}

func TestOutputDir(t *testing.T) {
	c := New("/src", "/build")
	if got := c.OutputDir(); got != "/build" {
		t.Errorf("OutputDir = %q, want /build", got)
	}
}
