// Package fetch retrieves recipe sources: release tarballs verified against
// their declared sha256 digest, or shallow git checkouts for branch-pinned
// versions.
package fetch

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gvallee/go_util/pkg/util"

	"github.com/jhdavis8/spack/internal/ctxlog"
	"github.com/jhdavis8/spack/internal/vcs"
	"github.com/jhdavis8/spack/recipe"
)

// ErrIntegrity reports that a downloaded source does not match its declared
// digest. The build must not start.
var ErrIntegrity = errors.New("source digest mismatch")

// Fetcher obtains recipe sources.
type Fetcher struct {
	Client *http.Client
	VCS    vcs.VCS
}

// New returns a Fetcher using the default HTTP client and git.
func New() *Fetcher {
	return &Fetcher{
		Client: http.DefaultClient,
		VCS:    vcs.NewGitVCS(),
	}
}

// Fetch places the source tree of a recipe version under destDir and
// returns the directory holding the sources.
func (f *Fetcher) Fetch(ctx context.Context, r *recipe.Recipe, ver recipe.Version, destDir string) (string, error) {
	logger := ctxlog.FromContext(ctx)

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	if ver.IsBranch() {
		dir := filepath.Join(destDir, r.Name+"-"+ver.ID)
		logger.Info("syncing branch version", "recipe", r.Name, "branch", ver.Branch, "dir", dir)
		if err := f.VCS.Sync(ctx, r.GitRemote, ver.Branch, dir); err != nil {
			return "", fmt.Errorf("failed to sync %s@%s: %w", r.Name, ver.ID, err)
		}
		return dir, nil
	}

	url, err := r.SourceURL(ver)
	if err != nil {
		return "", err
	}
	tarball := filepath.Join(destDir, path.Base(url))

	// A previously downloaded tarball is reused if its digest still checks
	// out; a stale or truncated one is fetched again.
	if util.FileExists(tarball) && VerifyDigest(tarball, ver.SHA256) == nil {
		logger.Debug("tarball already present", "path", tarball)
	} else {
		logger.Info("downloading source", "recipe", r.Name, "version", ver.ID, "url", url)
		if err := f.download(ctx, url, tarball); err != nil {
			return "", err
		}
		if err := VerifyDigest(tarball, ver.SHA256); err != nil {
			return "", fmt.Errorf("%s@%s: %w", r.Name, ver.ID, err)
		}
	}

	srcDir, err := extractTarball(tarball, destDir)
	if err != nil {
		return "", fmt.Errorf("failed to unpack %s: %w", tarball, err)
	}
	return srcDir, nil
}

func (f *Fetcher) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %s: %s", url, resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return out.Close()
}

// VerifyDigest compares the sha256 digest of a file against the expected
// hex value.
func VerifyDigest(file, want string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}

	got := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(got, want) {
		return fmt.Errorf("%w: %s: got %s, want %s", ErrIntegrity, file, got, want)
	}
	return nil
}

// extractTarball unpacks a gzip-compressed tarball under destDir. The
// archive is expected to hold a single top-level directory (the GitHub
// archive layout); its path is returned.
func extractTarball(tarball, destDir string) (string, error) {
	f, err := os.Open(tarball)
	if err != nil {
		return "", err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", err
	}
	defer gz.Close()

	var top string
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		name := filepath.Clean(hdr.Name)
		if name == "." {
			continue
		}
		if filepath.IsAbs(name) || strings.HasPrefix(name, "..") {
			return "", fmt.Errorf("unsafe path in archive: %s", hdr.Name)
		}

		first := strings.SplitN(filepath.ToSlash(name), "/", 2)[0]
		if top == "" {
			top = first
		} else if top != first {
			return "", fmt.Errorf("archive has more than one top-level entry: %s, %s", top, first)
		}

		target := filepath.Join(destDir, name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return "", err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return "", err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode)&0777)
			if err != nil {
				return "", err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return "", err
			}
			if err := out.Close(); err != nil {
				return "", err
			}
		}
	}

	if top == "" {
		return "", fmt.Errorf("empty archive: %s", tarball)
	}
	return filepath.Join(destDir, top), nil
}
