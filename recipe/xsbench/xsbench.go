// Package xsbench declares the build recipe of the XSBench mini-app, a key
// computational kernel of the Monte Carlo neutronics application OpenMC.
// The kernel itself is opaque to this tool: the recipe only knows where its
// sources live and how its Makefiles are parameterized.
package xsbench

import "github.com/jhdavis8/spack/recipe"

// New returns the XSBench recipe.
func New() *recipe.Recipe {
	return &recipe.Recipe{
		Name:        "xsbench",
		Description: "XSBench is a mini-app representing a key computational kernel of the Monte Carlo neutronics application OpenMC.",
		Homepage:    "https://github.com/ANL-CESAR/XSBench/",
		URLTemplate: "https://github.com/ANL-CESAR/XSBench/archive/v%s.tar.gz",
		GitRemote:   "https://github.com/ANL-CESAR/XSBench",

		Versions: []recipe.Version{
			{ID: "develop", Branch: "master"},
			{ID: "20", SHA256: "3430328267432b4c29605f248809caec3e8b0e3442d4dcd672fa09b8bb9aa1b6"},
			{ID: "19", SHA256: "57cc44ae3b0a50d33fab6dd48da13368720d2aa1b91cde47d51da78bf656b97e", Deprecated: true},
			{ID: "18", SHA256: "a9a544eeacd1be8d687080d2df4eeb701c04eda31d3806e7c3ea1ff36c26f4b0", Deprecated: true},
			{ID: "14", SHA256: "595afbcba8c1079067d5d17eedcb4ab0c1d115f83fd6f8c3de01d74b23015e2d", Deprecated: true},
			{ID: "13", SHA256: "b503ea468d3720a0369304924477b758b3d128c8074776233fa5d567b7ffcaa2", Deprecated: true},
		},

		Variants: []recipe.Variant{
			{Name: "mpi", Description: "Build with MPI support"},
			{Name: "openmp-threading", Description: "Build with OpenMP Threading support"},
			{Name: "openmp-offload", Description: "Build with OpenMP Offload support"},
			{Name: "hip", Description: "Build with HIP support"},
			{Name: "cuda", Description: "Build with CUDA support"},
			{Name: "kokkos", Description: "Build with Kokkos support"},
			{Name: "sycl", Description: "Build with SYCL support"},
			{Name: "openacc", Description: "Build with OpenACC support"},
			{Name: "align", Description: "Use aligned memory accesses"},
		},

		Dependencies: []recipe.Dependency{
			{Name: "mpi", When: "mpi"},
			{Name: "cuda", When: "cuda"},
			{Name: "hip", When: "hip"},
			// The Kokkos install must carry its OpenMP backend.
			{Name: "kokkos", When: "kokkos"},
		},
	}
}
