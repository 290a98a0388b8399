// Package install places a built artifact into an installation prefix.
package install

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gvallee/go_util/pkg/util"

	"github.com/jhdavis8/spack/internal/ctxlog"
)

// ErrArtifactMissing reports that the expected artifact is absent after a
// nominally successful build. Fatal: there is nothing to install.
var ErrArtifactMissing = errors.New("expected build artifact missing")

// Install copies the named artifact from buildDir into <prefix>/bin,
// creating the directory first if absent, and returns the installed path.
func Install(ctx context.Context, buildDir, artifact, prefix string) (string, error) {
	logger := ctxlog.FromContext(ctx)

	src := filepath.Join(buildDir, artifact)
	if !util.FileExists(src) {
		return "", fmt.Errorf("%w: %s", ErrArtifactMissing, src)
	}

	binDir := filepath.Join(prefix, "bin")
	if !util.PathExists(binDir) {
		if err := util.DirInit(binDir); err != nil {
			return "", fmt.Errorf("failed to initialize directory %s: %w", binDir, err)
		}
	}

	dst := filepath.Join(binDir, artifact)
	if err := util.CopyFile(src, dst); err != nil {
		return "", fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := os.Chmod(dst, 0755); err != nil {
		return "", fmt.Errorf("failed to make %s executable: %w", dst, err)
	}

	logger.Info("installed artifact", "artifact", artifact, "path", dst)
	return dst, nil
}
