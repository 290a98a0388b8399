package toolchain

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		family string
		wantCC string
		wantMP string
	}{
		{FamilyGCC, "gcc", "-fopenmp"},
		{FamilyLLVM, "clang", "-fopenmp"},
		{FamilyNVHPC, "nvc", "-mp"},
		{FamilyOneAPI, "icx", "-fiopenmp"},
	}

	for _, tt := range tests {
		t.Run(tt.family, func(t *testing.T) {
			c, err := Lookup(tt.family)
			if err != nil {
				t.Fatalf("Lookup(%q) failed: %v", tt.family, err)
			}
			if c.CC != tt.wantCC {
				t.Errorf("CC = %q, want %q", c.CC, tt.wantCC)
			}
			if c.OpenMPFlag != tt.wantMP {
				t.Errorf("OpenMPFlag = %q, want %q", c.OpenMPFlag, tt.wantMP)
			}
			if c.CXX17Flag != "-std=c++17" {
				t.Errorf("CXX17Flag = %q, want -std=c++17", c.CXX17Flag)
			}
		})
	}
}

func TestLookupUnknownFamily(t *testing.T) {
	if _, err := Lookup("cray"); err == nil {
		t.Fatal("Lookup(\"cray\") succeeded, want error")
	}
}

func TestFamilies(t *testing.T) {
	names := Families()
	for _, want := range []string{FamilyGCC, FamilyLLVM, FamilyNVHPC, FamilyOneAPI} {
		if !slices.Contains(names, want) {
			t.Errorf("Families() = %v, missing %q", names, want)
		}
	}
}

func TestWithOverrides(t *testing.T) {
	confFile := filepath.Join(t.TempDir(), "toolchains.conf")
	data := "cc=/opt/llvm/bin/clang\nopenmp_flag=-fopenmp=libomp\n"
	if err := os.WriteFile(confFile, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	base, err := Lookup(FamilyLLVM)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	c, err := base.WithOverrides(confFile)
	if err != nil {
		t.Fatalf("WithOverrides failed: %v", err)
	}
	if c.CC != "/opt/llvm/bin/clang" {
		t.Errorf("CC = %q, want /opt/llvm/bin/clang", c.CC)
	}
	if c.OpenMPFlag != "-fopenmp=libomp" {
		t.Errorf("OpenMPFlag = %q, want -fopenmp=libomp", c.OpenMPFlag)
	}
	// Keys absent from the file keep their builtin values.
	if c.CXX != base.CXX {
		t.Errorf("CXX = %q, want %q", c.CXX, base.CXX)
	}
}

func TestWithOverridesMissingFile(t *testing.T) {
	base, err := Lookup(FamilyGCC)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	c, err := base.WithOverrides(filepath.Join(t.TempDir(), "nonexistent.conf"))
	if err != nil {
		t.Fatalf("WithOverrides on missing file failed: %v", err)
	}
	if c != base {
		t.Errorf("missing file changed compiler: got %+v, want %+v", c, base)
	}
}
