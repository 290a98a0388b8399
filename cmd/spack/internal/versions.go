package internal

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhdavis8/spack/internal/ctxlog"
	"github.com/jhdavis8/spack/internal/vcs"
	"github.com/jhdavis8/spack/recipe"
	"github.com/jhdavis8/spack/recipe/xsbench"
)

var versionsRemote bool

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List the known XSBench versions",
	Args:  cobra.NoArgs,
	RunE:  runVersions,
}

func init() {
	versionsCmd.Flags().BoolVarP(&versionsRemote, "remote", "r", false, "Resolve the current remote commit of branch versions")
	rootCmd.AddCommand(versionsCmd)
}

func runVersions(cmd *cobra.Command, args []string) error {
	r := xsbench.New()

	var heads map[string]string
	if versionsRemote {
		heads = branchHeads(newContext(false), vcs.NewGitVCS(), r)
	}

	for _, line := range formatVersions(r, heads) {
		fmt.Println(line)
	}
	return nil
}

// branchHeads maps each branch-pinned version ID to the remote's current
// HEAD commit. A failed lookup leaves that entry unannotated instead of
// aborting the listing.
func branchHeads(ctx context.Context, v vcs.VCS, r *recipe.Recipe) map[string]string {
	heads := map[string]string{}
	for _, ver := range r.Versions {
		if !ver.IsBranch() {
			continue
		}
		head, err := v.Latest(ctx, r.GitRemote)
		if err != nil {
			ctxlog.FromContext(ctx).Warn("failed to resolve remote HEAD",
				"remote", r.GitRemote, "version", ver.ID, "error", err)
			continue
		}
		if len(head) > 12 {
			head = head[:12]
		}
		heads[ver.ID] = head
	}
	return heads
}

func formatVersions(r *recipe.Recipe, heads map[string]string) []string {
	var lines []string
	for _, v := range r.Sorted() {
		var notes []string
		if v.IsBranch() {
			notes = append(notes, "branch "+v.Branch)
			if head, ok := heads[v.ID]; ok {
				notes = append(notes, "at "+head)
			}
		}
		if v.Deprecated {
			notes = append(notes, "deprecated")
		}
		line := v.ID
		if len(notes) > 0 {
			line += "  [" + strings.Join(notes, ", ") + "]"
		}
		lines = append(lines, line)
	}
	return lines
}
