// Package pyinstaller drives the PyInstaller command line as a black box:
// one invocation per source file with fixed options, output collected from
// the conventional dist/ directory.
package pyinstaller

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"pybin-tools/go/pkg/logbowl"
)

// DefaultTool is the executable looked up on PATH when no tool is given.
const DefaultTool = "pyinstaller"

// Transient output layout in the working directory.
const (
	BuildDir    = "build"
	DistDir     = "dist"
	SpecPattern = "*.spec"
)

// Builder turns one source file into a standalone executable.
type Builder interface {
	Build(ctx context.Context, source, name string) error
	ArtifactPath(name string) string
}

// Tool runs the PyInstaller executable at Path inside Dir.
type Tool struct {
	Path   string
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
	Log    logbowl.Logger
}

// Args returns the fixed argument list for one build. A source or name
// starting with "-" is spelled so the tool cannot read it as an option.
func Args(name, source string) []string {
	nameArgs := []string{"--name", name}
	if strings.HasPrefix(name, "-") {
		nameArgs = []string{"--name=" + name}
	}
	if strings.HasPrefix(source, "-") {
		source = "./" + source
	}
	args := append([]string{"--onefile", "--clean"}, nameArgs...)
	return append(args, source)
}

// Resolve finds the packaging tool. An empty path means DefaultTool.
func Resolve(path string) (string, error) {
	if path == "" {
		path = DefaultTool
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("packaging tool %q not found: %w", path, err)
	}
	return resolved, nil
}

// Build runs the tool for source and blocks until it exits. A non-zero exit
// is returned as the underlying *exec.ExitError.
func (t *Tool) Build(ctx context.Context, source, name string) error {
	args := Args(name, source)
	t.Log.Debug("tool", "execute", "progress", "Running packaging tool", "tool", t.Path, "args", args, "dir", t.Dir)

	cmd := exec.CommandContext(ctx, t.Path, args...)
	cmd.Dir = t.Dir
	cmd.Stdout = t.Stdout
	cmd.Stderr = t.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	return cmd.Run()
}

// ArtifactPath is where a successful build leaves the executable for name.
func (t *Tool) ArtifactPath(name string) string {
	return filepath.Join(t.Dir, DistDir, name+ExeSuffix())
}

// ExeSuffix is the executable extension PyInstaller appends on this platform.
func ExeSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
