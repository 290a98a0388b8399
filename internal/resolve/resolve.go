// Package resolve maps a requested build configuration of the XSBench
// mini-app to a concrete build-tool invocation. Resolution is a single pure
// pass: variants, compiler identity, accelerator architecture and dependency
// prefixes in, a build subdirectory plus an ordered key=value argument list
// out. No I/O, no state kept between invocations.
package resolve

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jhdavis8/spack/internal/toolchain"
)

// ArtifactName is the name of the compiled binary. It never varies by
// configuration.
const ArtifactName = "XSBench"

// ErrConflict reports a configuration that must not be built: mutually
// required inputs are missing or the compiler vendor does not support the
// requested backend.
var ErrConflict = errors.New("configuration conflict")

// System identifies the external build tool driving the compilation.
type System string

const (
	Make  System = "make"
	CMake System = "cmake"
)

// VariantSet is the set of boolean build options. Every variant defaults to
// false. Align is tri-state: the external Makefiles treat an absent ALIGNED
// variable differently from an explicit ALIGNED=no, so "not requested" must
// stay distinguishable from "explicitly disabled".
type VariantSet struct {
	MPI             bool
	OpenMPThreading bool
	OpenMPOffload   bool
	HIP             bool
	CUDA            bool
	Kokkos          bool
	SYCL            bool
	OpenACC         bool
	Align           *bool
}

// Request is the full input of a resolution. It is read-only: Resolve never
// mutates it.
type Request struct {
	Variants VariantSet
	Compiler toolchain.Compiler

	// Arch identifies the target accelerator compute capability ("70",
	// "gfx90a", ...). Required whenever cuda, openacc or openmp-offload is
	// requested.
	Arch []string

	// Prefixes maps a dependency name (mpi, cuda, hip, kokkos) to its
	// installation prefix.
	Prefixes map[string]string
}

// Plan is the output of a resolution: where to build, with which tool, and
// with which arguments. Constructed fresh per invocation, never mutated
// afterwards.
type Plan struct {
	Subdirectory        string
	System              System
	BuildArguments      []string
	InstallArtifactName string
}

// subdirRules is the backend precedence chain. Order is load-bearing: when
// several backend variants are set at once, the first matching entry wins
// (openmp-threading shadows cuda, and so on). Keep this a slice, never a
// map.
var subdirRules = []struct {
	match func(VariantSet) bool
	dir   string
}{
	{func(v VariantSet) bool { return v.OpenMPThreading }, "openmp-threading"},
	{func(v VariantSet) bool { return v.OpenMPOffload }, "openmp-offload"},
	{func(v VariantSet) bool { return v.HIP }, "hip"},
	{func(v VariantSet) bool { return v.CUDA && !v.OpenACC && !v.OpenMPOffload }, "cuda"},
	{func(v VariantSet) bool { return v.Kokkos }, "kokkos"},
	{func(v VariantSet) bool { return v.SYCL }, "sycl"},
	{func(v VariantSet) bool { return v.OpenACC }, "openacc"},
}

// SelectSubdirectory returns the source subdirectory the selected backend is
// built in. A request with no backend variant set is a configuration
// conflict: there is nothing to build.
func SelectSubdirectory(v VariantSet) (string, error) {
	for _, rule := range subdirRules {
		if rule.match(v) {
			return rule.dir, nil
		}
	}
	return "", fmt.Errorf("%w: no parallelism backend selected", ErrConflict)
}

// Resolve validates the request and produces the build plan.
func Resolve(req Request) (*Plan, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	subdir, err := SelectSubdirectory(req.Variants)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Subdirectory:        subdir,
		System:              Make,
		InstallArtifactName: ArtifactName,
	}

	// The kokkos backend ships a CMake build description instead of a
	// Makefile; everything it needs is the Kokkos install location.
	if req.Variants.Kokkos {
		plan.System = CMake
		plan.BuildArguments = []string{"Kokkos_ROOT=" + req.Prefixes["kokkos"]}
		return plan, nil
	}

	args, err := SelectBuildArguments(req)
	if err != nil {
		return nil, err
	}
	plan.BuildArguments = args

	return plan, nil
}

// SelectBuildArguments assembles the ordered key=value argument list for a
// make-driven backend. Order matters: make re-defines variables on later
// occurrence, so CFLAGS/LDFLAGS always come last to override any defaults
// baked into the Makefile.
func SelectBuildArguments(req Request) ([]string, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	v := req.Variants
	cflags := "-O3"
	ldflags := "-lm"

	var args []string

	if v.MPI {
		// MPI wins over direct accelerator compiler selection: the MPI
		// wrapper drives whichever backend compiler is underneath.
		args = append(args, "CC="+filepath.Join(req.Prefixes["mpi"], "bin", "mpicc"))
		args = append(args, "MPI=yes")
	} else {
		switch {
		case v.CUDA:
			args = append(args, "CC="+filepath.Join(req.Prefixes["cuda"], "bin", "nvcc"))
			for _, arch := range req.Arch {
				cflags += fmt.Sprintf(" -gencode arch=compute_%s,code=sm_%s", arch, arch)
			}
		case v.HIP:
			args = append(args, "CC="+filepath.Join(req.Prefixes["hip"], "bin", "hipcc"))
		case v.SYCL:
			args = append(args, "CC="+req.Compiler.CXX)
			cflags += " -fsycl " + req.Compiler.CXX17Flag
		case v.OpenMPOffload:
			args = append(args, "CC="+req.Compiler.CC)
			cflags += fmt.Sprintf(" -fopenmp-targets=nvptx64 -Xopenmp-target -march=sm_%s", req.Arch[0])
		case v.OpenACC:
			args = append(args, "CC="+req.Compiler.CC)
			cflags += fmt.Sprintf(" -acc -gpu=cc%s", req.Arch[0])
		default:
			args = append(args, "CC="+req.Compiler.CC)
			args = append(args, "CXX="+req.Compiler.CXX)
		}

		args = append(args, "MPI=no")
	}

	// The OpenACC build times with OpenMP facilities, hence the flag there
	// too.
	if v.OpenMPThreading || v.OpenMPOffload || v.OpenACC {
		cflags += " " + req.Compiler.OpenMPFlag
	}

	if v.Align != nil {
		if *v.Align {
			args = append(args, "ALIGNED=yes")
			cflags += " -DALIGNED"
		} else {
			args = append(args, "ALIGNED=no")
		}
	}

	args = append(args, "CFLAGS="+cflags)
	args = append(args, "LDFLAGS="+ldflags)

	return args, nil
}

// Validate enforces the conflict and requirement declarations that must hold
// before resolution runs.
func Validate(req Request) error {
	v := req.Variants

	if len(req.Arch) == 0 {
		switch {
		case v.CUDA:
			return fmt.Errorf("%w: cuda requires a target architecture", ErrConflict)
		case v.OpenACC:
			return fmt.Errorf("%w: openacc requires a target architecture", ErrConflict)
		case v.OpenMPOffload:
			return fmt.Errorf("%w: openmp-offload requires a target architecture", ErrConflict)
		}
	}

	if v.OpenACC && req.Compiler.Family != toolchain.FamilyNVHPC {
		return fmt.Errorf("%w: openacc requires the %s compiler family, got %s",
			ErrConflict, toolchain.FamilyNVHPC, req.Compiler.Family)
	}
	if v.OpenMPOffload && req.Compiler.Family != toolchain.FamilyLLVM {
		return fmt.Errorf("%w: openmp-offload requires the %s compiler family, got %s",
			ErrConflict, toolchain.FamilyLLVM, req.Compiler.Family)
	}

	for _, dep := range []struct {
		name   string
		wanted bool
	}{
		{"mpi", v.MPI},
		{"cuda", v.CUDA},
		{"hip", v.HIP},
		{"kokkos", v.Kokkos},
	} {
		if dep.wanted && req.Prefixes[dep.name] == "" {
			return fmt.Errorf("%w: %s variant requires the %s dependency prefix",
				ErrConflict, dep.name, dep.name)
		}
	}

	return nil
}
