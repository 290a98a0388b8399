// Package config loads a build request from an HCL file: which version to
// build, which variants to enable, the target architecture, the compiler,
// and where dependency installs live.
//
// Variants are decoded attribute by attribute instead of into a struct so
// that an attribute that is absent stays distinguishable from one that is
// explicitly false; the align variant depends on that distinction.
package config

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/jhdavis8/spack/internal/ctxlog"
	"github.com/jhdavis8/spack/internal/env"
	"github.com/jhdavis8/spack/internal/resolve"
	"github.com/jhdavis8/spack/internal/toolchain"
)

// Request is a fully decoded build request.
type Request struct {
	// Version is the recipe version to build; empty selects the latest
	// stable release.
	Version string

	Resolve resolve.Request
}

type hclRoot struct {
	Build *hclBuild `hcl:"build,block"`
}

type hclBuild struct {
	Version  string       `hcl:"version,optional"`
	Arch     []string     `hcl:"arch,optional"`
	Variants *hclVariants `hcl:"variants,block"`
	Compiler *hclCompiler `hcl:"compiler,block"`
	Prefixes []*hclPrefix `hcl:"prefix,block"`
}

type hclVariants struct {
	Body hcl.Body `hcl:",remain"`
}

type hclCompiler struct {
	Family     string `hcl:"family"`
	CC         string `hcl:"cc,optional"`
	CXX        string `hcl:"cxx,optional"`
	OpenMPFlag string `hcl:"openmp_flag,optional"`
	CXX17Flag  string `hcl:"cxx17_flag,optional"`
}

type hclPrefix struct {
	Name string `hcl:"name,label"`
	Dir  string `hcl:"dir"`
}

// Load parses a build request from an HCL file on disk. Compiler settings
// are layered: builtin family definition, then the site toolchain file,
// then the request file's own compiler block.
func Load(ctx context.Context, path string) (*Request, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", path, diags)
	}
	toolchainConf, err := env.ToolchainConfigFile()
	if err != nil {
		// Only happens when the user cache dir is undiscoverable; the
		// builtin family definitions still apply.
		ctxlog.FromContext(ctx).Debug("skipping site toolchain overrides", "error", err)
		toolchainConf = ""
	}
	return decode(path, file, toolchainConf)
}

// Decode parses a build request from in-memory HCL source, without site
// toolchain overrides.
func Decode(filename string, src []byte) (*Request, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}
	return decode(filename, file, "")
}

func decode(filename string, file *hcl.File, toolchainConf string) (*Request, error) {
	var root hclRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, diags)
	}
	if root.Build == nil {
		return nil, fmt.Errorf("%s: missing build block", filename)
	}
	b := root.Build

	req := &Request{
		Version: b.Version,
		Resolve: resolve.Request{
			Arch:     b.Arch,
			Prefixes: map[string]string{},
		},
	}

	if b.Variants != nil {
		variants, err := decodeVariants(b.Variants.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		req.Resolve.Variants = variants
	}

	compiler, err := decodeCompiler(b.Compiler, toolchainConf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	req.Resolve.Compiler = compiler

	for _, p := range b.Prefixes {
		if _, dup := req.Resolve.Prefixes[p.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate prefix block %q", filename, p.Name)
		}
		req.Resolve.Prefixes[p.Name] = p.Dir
	}

	return req, nil
}

func decodeVariants(body hcl.Body) (resolve.VariantSet, error) {
	var vs resolve.VariantSet

	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return vs, fmt.Errorf("failed to read variants: %w", diags)
	}

	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return vs, fmt.Errorf("variant %s: %w", name, diags)
		}
		if val.Type() != cty.Bool {
			return vs, fmt.Errorf("variant %s: expected bool, got %s", name, val.Type().FriendlyName())
		}
		enabled := val.True()

		switch name {
		case "mpi":
			vs.MPI = enabled
		case "openmp-threading":
			vs.OpenMPThreading = enabled
		case "openmp-offload":
			vs.OpenMPOffload = enabled
		case "hip":
			vs.HIP = enabled
		case "cuda":
			vs.CUDA = enabled
		case "kokkos":
			vs.Kokkos = enabled
		case "sycl":
			vs.SYCL = enabled
		case "openacc":
			vs.OpenACC = enabled
		case "align":
			vs.Align = &enabled
		default:
			return vs, fmt.Errorf("unknown variant: %s", name)
		}
	}

	return vs, nil
}

func decodeCompiler(c *hclCompiler, toolchainConf string) (toolchain.Compiler, error) {
	family := toolchain.FamilyGCC
	if c != nil {
		family = c.Family
	}

	compiler, err := toolchain.Lookup(family)
	if err != nil {
		return toolchain.Compiler{}, err
	}
	if toolchainConf != "" {
		compiler, err = compiler.WithOverrides(toolchainConf)
		if err != nil {
			return toolchain.Compiler{}, err
		}
	}
	if c == nil {
		return compiler, nil
	}

	if c.CC != "" {
		compiler.CC = c.CC
	}
	if c.CXX != "" {
		compiler.CXX = c.CXX
	}
	if c.OpenMPFlag != "" {
		compiler.OpenMPFlag = c.OpenMPFlag
	}
	if c.CXX17Flag != "" {
		compiler.CXX17Flag = c.CXX17Flag
	}

	return compiler, nil
}
