package env

import (
	"os"
	"path/filepath"
)

// WorkDir returns the tool's scratch directory, where sources are
// downloaded and built.
func WorkDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userCacheDir, ".spack"), nil
}

// ToolchainConfigFile returns the path of the optional key=value file
// holding per-site compiler overrides.
func ToolchainConfigFile() (string, error) {
	dir, err := WorkDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "toolchains.conf"), nil
}
