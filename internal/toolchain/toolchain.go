// Package toolchain describes the compiler toolchains the recipe can build
// with. A Compiler is a read-only identity: the resolver only consumes its
// paths and flags, it never probes the filesystem.
package toolchain

import (
	"fmt"

	"github.com/gvallee/go_util/pkg/util"
	"github.com/gvallee/kv/pkg/kv"
)

// Known compiler families.
const (
	FamilyGCC    = "gcc"
	FamilyLLVM   = "llvm"
	FamilyNVHPC  = "nvhpc"
	FamilyOneAPI = "oneapi"
)

// Compiler gathers the identity of a toolchain: its C/C++ compiler paths,
// the flag that enables OpenMP and the flag that selects the C++17 dialect.
type Compiler struct {
	Family     string
	CC         string
	CXX        string
	OpenMPFlag string
	CXX17Flag  string
}

var families = map[string]Compiler{
	FamilyGCC: {
		Family:     FamilyGCC,
		CC:         "gcc",
		CXX:        "g++",
		OpenMPFlag: "-fopenmp",
		CXX17Flag:  "-std=c++17",
	},
	FamilyLLVM: {
		Family:     FamilyLLVM,
		CC:         "clang",
		CXX:        "clang++",
		OpenMPFlag: "-fopenmp",
		CXX17Flag:  "-std=c++17",
	},
	FamilyNVHPC: {
		Family:     FamilyNVHPC,
		CC:         "nvc",
		CXX:        "nvc++",
		OpenMPFlag: "-mp",
		CXX17Flag:  "-std=c++17",
	},
	FamilyOneAPI: {
		Family:     FamilyOneAPI,
		CC:         "icx",
		CXX:        "icpx",
		OpenMPFlag: "-fiopenmp",
		CXX17Flag:  "-std=c++17",
	},
}

// Lookup returns the builtin definition of a compiler family.
func Lookup(family string) (Compiler, error) {
	c, ok := families[family]
	if !ok {
		return Compiler{}, fmt.Errorf("unknown compiler family: %s", family)
	}
	return c, nil
}

// Families returns the names of all builtin compiler families.
func Families() []string {
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	return names
}

// WithOverrides applies per-site overrides from a key=value configuration
// file (keys: cc, cxx, openmp_flag, cxx17_flag). A missing file is not an
// error; the builtin definition is returned unchanged.
func (c Compiler) WithOverrides(path string) (Compiler, error) {
	if !util.FileExists(path) {
		return c, nil
	}

	kvs, err := kv.LoadKeyValueConfig(path)
	if err != nil {
		return c, fmt.Errorf("unable to load toolchain configuration %s: %w", path, err)
	}

	if v := kv.GetValue(kvs, "cc"); v != "" {
		c.CC = v
	}
	if v := kv.GetValue(kvs, "cxx"); v != "" {
		c.CXX = v
	}
	if v := kv.GetValue(kvs, "openmp_flag"); v != "" {
		c.OpenMPFlag = v
	}
	if v := kv.GetValue(kvs, "cxx17_flag"); v != "" {
		c.CXX17Flag = v
	}

	return c, nil
}
