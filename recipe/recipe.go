// Package recipe defines the model of a package build recipe: the versions
// that can be fetched, the variants that can be requested, and the
// dependencies each variant pulls in.
package recipe

import (
	"fmt"
	"slices"

	"golang.org/x/mod/semver"
)

// Version is one entry of a recipe's version table. A release version is
// bound to a sha256 digest of its source tarball and is immutable; a branch
// version follows a live VCS ref and is inherently unstable.
type Version struct {
	ID         string
	SHA256     string
	Branch     string
	Deprecated bool
}

// IsBranch reports whether the version follows a live branch instead of a
// digest-pinned release.
func (v Version) IsBranch() bool {
	return v.Branch != ""
}

// Variant is a named boolean build option.
type Variant struct {
	Name        string
	Description string
	Default     bool
}

// Dependency declares an external package requirement activated by a
// variant.
type Dependency struct {
	Name string
	When string // variant that activates the dependency
}

// Recipe describes how to obtain and build one package.
type Recipe struct {
	Name        string
	Description string
	Homepage    string

	// URLTemplate produces the source tarball URL for a release version;
	// it receives the version ID as its single argument.
	URLTemplate string

	// GitRemote is the repository branch versions are synced from.
	GitRemote string

	Versions     []Version
	Variants     []Variant
	Dependencies []Dependency
}

// Lookup returns the version with the given ID.
func (r *Recipe) Lookup(id string) (Version, bool) {
	for _, v := range r.Versions {
		if v.ID == id {
			return v, true
		}
	}
	return Version{}, false
}

// Latest returns the highest non-deprecated release version.
func (r *Recipe) Latest() (Version, error) {
	var latest Version
	for _, v := range r.Versions {
		if v.IsBranch() || v.Deprecated {
			continue
		}
		if latest.ID == "" || semver.Compare("v"+v.ID, "v"+latest.ID) > 0 {
			latest = v
		}
	}
	if latest.ID == "" {
		return Version{}, fmt.Errorf("%s: no stable release version", r.Name)
	}
	return latest, nil
}

// Sorted returns the version table with branch versions first, then
// releases in descending version order.
func (r *Recipe) Sorted() []Version {
	sorted := slices.Clone(r.Versions)
	slices.SortStableFunc(sorted, func(a, b Version) int {
		if a.IsBranch() != b.IsBranch() {
			if a.IsBranch() {
				return -1
			}
			return 1
		}
		return semver.Compare("v"+b.ID, "v"+a.ID)
	})
	return sorted
}

// SourceURL returns the tarball URL of a release version.
func (r *Recipe) SourceURL(v Version) (string, error) {
	if v.IsBranch() {
		return "", fmt.Errorf("%s@%s is a branch version, fetch it from %s", r.Name, v.ID, r.GitRemote)
	}
	return fmt.Sprintf(r.URLTemplate, v.ID), nil
}

// VariantNames returns the names of all declared variants.
func (r *Recipe) VariantNames() []string {
	names := make([]string, 0, len(r.Variants))
	for _, v := range r.Variants {
		names = append(names, v.Name)
	}
	return names
}
