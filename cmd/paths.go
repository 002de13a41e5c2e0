package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/grovetools/leadmigrate/pkg/config"
)

// DefaultFixture is the fixture location relative to the parent of the
// executable's directory.
var DefaultFixture = filepath.Join("src", "data", "mockLeads.json")

// resolveFixturePath picks the target file: --file, then the config file's
// fixture, then the default next to the executable.
func resolveFixturePath(flagPath string, cfg *config.Config) (string, error) {
	switch {
	case flagPath != "":
		return filepath.Abs(flagPath)
	case cfg != nil && cfg.Fixture != "":
		return cfg.Fixture, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return fixturePathFrom(filepath.Dir(exe))
}

func fixturePathFrom(exeDir string) (string, error) {
	return filepath.Abs(filepath.Join(exeDir, "..", DefaultFixture))
}
