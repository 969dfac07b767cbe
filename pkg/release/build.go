// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package release

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/datawire/dlib/dexec"
)

// The wheel and Debian packages come out of the unmodified Python
// packaging toolchain; this file only invokes it and checks that the
// produced filename matches the deterministic expectation, so a drifting
// toolchain is caught instead of silently shipping a misnamed artifact.

// BuildWheel runs `setup.py bdist_wheel` in projectDir and returns the
// path of the produced wheel, which must be named expect.
func BuildWheel(ctx context.Context, projectDir, expect string) (string, error) {
	err := runSetupPy(ctx, projectDir, "bdist_wheel")
	if err != nil {
		return "", fmt.Errorf("wheel: %w", err)
	}
	return findArtifact(filepath.Join(projectDir, "dist"), expect, "wheel")
}

// BuildDeb runs stdeb's bdist_deb in projectDir and returns the path of
// the produced Debian package, which must be named expect.
func BuildDeb(ctx context.Context, projectDir, expect string) (string, error) {
	err := runSetupPy(ctx, projectDir, "--command-packages=stdeb.command", "bdist_deb")
	if err != nil {
		return "", fmt.Errorf("deb: %w", err)
	}
	return findArtifact(filepath.Join(projectDir, "deb_dist"), expect, "deb")
}

func runSetupPy(ctx context.Context, projectDir string, args ...string) error {
	cmd := dexec.CommandContext(ctx, "python3", append([]string{"setup.py"}, args...)...)
	cmd.Dir = projectDir
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func findArtifact(dir, expect, kind string) (string, error) {
	path := filepath.Join(dir, expect)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	// Name the toolchain's actual output in the error, to make version or
	// naming drift obvious.
	entries, _ := filepath.Glob(filepath.Join(dir, "*"))
	for i, entry := range entries {
		entries[i] = filepath.Base(entry)
	}
	return "", fmt.Errorf("toolchain did not produce %s %q (found: %v)", kind, expect, entries)
}
