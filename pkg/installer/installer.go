// Package installer compiles every matching script in a working directory
// into a standalone executable and installs it into a bin directory.
//
// A run is a single forward pass. The first failing step aborts it, and the
// transient build output is removed on every exit path.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pybin-tools/go/pkg/logbowl"
	"pybin-tools/go/pkg/pyinstaller"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern selects Python sources.
const DefaultPattern = "*.py"

// LockFileName guards a working directory against concurrent runs.
const LockFileName = ".pybin-installer.lock"

// Source is one script found in the working directory.
type Source struct {
	// File is the base name inside the working directory, e.g. "hello.py".
	File string
	// Name is File without its extension, used for the artifact and the installed binary.
	Name string
}

// Report lists what a run installed, in processing order.
type Report struct {
	Installed []string
}

// Installer holds everything a run needs. Nothing is read from the
// process working directory.
type Installer struct {
	WorkDir   string
	TargetDir string
	Pattern   string
	Builder   pyinstaller.Builder
	Log       logbowl.Logger

	// ArchivePath, when set, receives a tar.zst of the transient build
	// output before it is removed. Paths matching ArchiveExclude
	// (doublestar patterns, relative to WorkDir) are left out.
	ArchivePath    string
	ArchiveExclude []string
}

// New returns an Installer using DefaultPattern.
func New(workDir, targetDir string, builder pyinstaller.Builder, log logbowl.Logger) *Installer {
	return &Installer{
		WorkDir:   workDir,
		TargetDir: targetDir,
		Pattern:   DefaultPattern,
		Builder:   builder,
		Log:       log,
	}
}

// DefaultTargetDir is <home>/bin for the invoking user.
func DefaultTargetDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: resolving home directory: %w", ErrEnvironment, err)
	}
	return filepath.Join(home, "bin"), nil
}

// Run builds and installs every discovered source. It stops at the first
// error; files processed before it stay installed.
func (in *Installer) Run(ctx context.Context) (rep Report, err error) {
	if err := in.checkArchivePath(); err != nil {
		return rep, err
	}
	if err := os.MkdirAll(in.TargetDir, 0755); err != nil {
		return rep, fmt.Errorf("%w: creating target directory %s: %w", ErrEnvironment, in.TargetDir, err)
	}

	unlock, err := in.lock()
	if err != nil {
		return rep, err
	}
	defer func() {
		if relErr := in.release(unlock); relErr != nil && err == nil {
			err = relErr
		}
	}()

	if err := in.Clean(); err != nil {
		return rep, err
	}

	sources, err := in.Discover()
	if err != nil {
		return rep, err
	}
	if len(sources) == 0 {
		in.Log.Info("installer", "discover", "skip", "No source files found", "dir", in.WorkDir, "pattern", in.pattern())
	}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		dst, err := in.installOne(ctx, src)
		if err != nil {
			in.Log.Error("installer", "install", "failure", "Aborting run", "file", src.File, "error", err)
			return rep, err
		}
		rep.Installed = append(rep.Installed, dst)
	}

	in.Log.Info("installer", "finish", "success", "All scripts installed", "count", len(rep.Installed), "target", in.TargetDir)
	return rep, nil
}

func (in *Installer) installOne(ctx context.Context, src Source) (string, error) {
	in.Log.Info("builder", "build", "progress", "Building "+src.File+" as "+src.Name)

	if err := in.Builder.Build(ctx, src.File, src.Name); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrBuild, src.File, err)
	}

	artifact := in.Builder.ArtifactPath(src.Name)
	info, err := os.Stat(artifact)
	if err != nil {
		return "", fmt.Errorf("%w: expected output for %s: %w", ErrArtifact, src.File, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a regular file", ErrArtifact, artifact)
	}

	dst := filepath.Join(in.TargetDir, src.Name)
	if err := installFile(artifact, dst); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInstall, dst, err)
	}

	in.Log.Info("installer", "install", "success", "Installed "+src.Name+" to "+in.TargetDir, "path", dst)
	return dst, nil
}

// installFile copies src next to dst, marks it executable and renames it
// over dst. Renaming lets a binary that is currently running be replaced.
func installFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0755); err != nil {
		return err
	}
	return os.Rename(tmpPath, dst)
}

func (in *Installer) pattern() string {
	if in.Pattern == "" {
		return DefaultPattern
	}
	return in.Pattern
}

// Discover lists the sources in WorkDir, non-recursively, in name order.
// An empty directory yields an empty slice.
func (in *Installer) Discover() ([]Source, error) {
	pattern := in.pattern()
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: invalid source pattern %q: %w", ErrEnvironment, pattern, doublestar.ErrBadPattern)
	}

	entries, err := os.ReadDir(in.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %w", ErrEnvironment, in.WorkDir, err)
	}

	sources := []Source{}
	for _, e := range entries {
		if e.IsDir() || e.Name() == LockFileName {
			continue
		}
		ok, err := doublestar.Match(pattern, e.Name())
		if err != nil {
			return nil, fmt.Errorf("%w: matching %q: %w", ErrEnvironment, pattern, err)
		}
		if !ok {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if name == "" {
			in.Log.Warn("installer", "discover", "skip", "Source has no base name", "file", e.Name())
			continue
		}
		sources = append(sources, Source{File: e.Name(), Name: name})
	}
	in.Log.Debug("installer", "discover", "ok", "Discovered sources", "count", len(sources))
	return sources, nil
}

// Clean removes the build and dist directories and every spec sidecar file
// from WorkDir. Missing entries are fine.
func (in *Installer) Clean() error {
	paths, err := in.transientPaths()
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := os.RemoveAll(p); err != nil {
			return fmt.Errorf("%w: removing %s: %w", ErrEnvironment, p, err)
		}
		in.Log.Debug("file", "clean", "ok", "Removed transient output", "path", p)
	}
	return nil
}

// transientPaths returns the transient entries currently present in WorkDir.
func (in *Installer) transientPaths() ([]string, error) {
	entries, err := os.ReadDir(in.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %w", ErrEnvironment, in.WorkDir, err)
	}
	var paths []string
	for _, e := range entries {
		switch {
		case e.IsDir() && (e.Name() == pyinstaller.BuildDir || e.Name() == pyinstaller.DistDir):
		case !e.IsDir() && matchSpec(e.Name()):
		default:
			continue
		}
		paths = append(paths, filepath.Join(in.WorkDir, e.Name()))
	}
	return paths, nil
}

func matchSpec(name string) bool {
	ok, _ := doublestar.Match(pyinstaller.SpecPattern, name)
	return ok
}

func (in *Installer) lock() (func() error, error) {
	path := filepath.Join(in.WorkDir, LockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: %s exists", ErrLocked, path)
		}
		return nil, fmt.Errorf("%w: creating lock %s: %w", ErrEnvironment, path, err)
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()
	in.Log.Debug("lock", "acquire", "ok", "Locked working directory", "path", path)

	return func() error {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: removing lock %s: %w", ErrEnvironment, path, err)
		}
		in.Log.Debug("lock", "release", "ok", "Unlocked working directory", "path", path)
		return nil
	}, nil
}

// release runs on every exit path of Run: archive if asked, clean, unlock.
func (in *Installer) release(unlock func() error) error {
	var errs []error
	if in.ArchivePath != "" {
		if err := in.archiveBuildOutput(); err != nil {
			in.Log.Error("archive", "pack", "error", "Failed to archive build output", "path", in.ArchivePath, "error", err)
			errs = append(errs, err)
		}
	}
	if err := in.Clean(); err != nil {
		in.Log.Error("file", "clean", "error", "Failed to clean build output", "error", err)
		errs = append(errs, err)
	}
	if err := unlock(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
