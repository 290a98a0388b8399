package internal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jhdavis8/spack/internal/resolve"
	"github.com/jhdavis8/spack/recipe/xsbench"
)

func TestFormatVersions(t *testing.T) {
	lines := formatVersions(xsbench.New(), nil)
	if len(lines) != 6 {
		t.Fatalf("formatVersions returned %d lines, want 6", len(lines))
	}
	if !strings.Contains(lines[0], "develop") || !strings.Contains(lines[0], "branch master") {
		t.Errorf("first line = %q, want develop branch entry", lines[0])
	}
	if lines[1] != "20" {
		t.Errorf("second line = %q, want bare \"20\"", lines[1])
	}
	if !strings.Contains(lines[2], "deprecated") {
		t.Errorf("third line = %q, want deprecated mark", lines[2])
	}
}

func TestFormatVersionsWithHeads(t *testing.T) {
	heads := map[string]string{"develop": "0123456789ab"}
	lines := formatVersions(xsbench.New(), heads)
	if !strings.Contains(lines[0], "at 0123456789ab") {
		t.Errorf("first line = %q, want remote HEAD annotation", lines[0])
	}
	for _, line := range lines[1:] {
		if strings.Contains(line, "at ") {
			t.Errorf("release line %q carries a HEAD annotation", line)
		}
	}
}

// fixedVCS serves a canned ls-remote answer.
type fixedVCS struct {
	head string
	err  error
}

func (f fixedVCS) Sync(ctx context.Context, remote, ref, dir string) error { return nil }

func (f fixedVCS) Latest(ctx context.Context, remote string) (string, error) {
	return f.head, f.err
}

func TestBranchHeads(t *testing.T) {
	r := xsbench.New()
	full := "0123456789abcdef0123456789abcdef01234567"

	heads := branchHeads(context.Background(), fixedVCS{head: full}, r)
	if heads["develop"] != full[:12] {
		t.Errorf("heads[develop] = %q, want %q", heads["develop"], full[:12])
	}
	if len(heads) != 1 {
		t.Errorf("heads = %v, want the develop entry alone", heads)
	}
}

func TestBranchHeadsLookupFailure(t *testing.T) {
	r := xsbench.New()

	heads := branchHeads(context.Background(), fixedVCS{err: errors.New("remote unreachable")}, r)
	if len(heads) != 0 {
		t.Errorf("heads = %v, want empty on lookup failure", heads)
	}
}

func TestFormatPlan(t *testing.T) {
	plan := &resolve.Plan{
		Subdirectory:        "cuda",
		System:              resolve.Make,
		BuildArguments:      []string{"CC=nvcc", "MPI=no"},
		InstallArtifactName: "XSBench",
	}

	lines := formatPlan(plan)
	if len(lines) != 5 {
		t.Fatalf("formatPlan returned %d lines, want 5", len(lines))
	}
	if !strings.Contains(lines[0], "cuda") {
		t.Errorf("lines[0] = %q", lines[0])
	}
	if !strings.Contains(lines[3], "CC=nvcc") || !strings.Contains(lines[4], "MPI=no") {
		t.Errorf("argument lines = %v, order lost", lines[3:])
	}
}
