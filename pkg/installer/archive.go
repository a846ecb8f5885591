package installer

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pybin-tools/go/pkg/pyinstaller"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/valyala/gozstd"
)

// checkArchivePath rejects an ArchivePath that Clean would remove or that
// would end up inside the tree being archived.
func (in *Installer) checkArchivePath() error {
	if in.ArchivePath == "" {
		return nil
	}
	archive, err := filepath.Abs(in.ArchivePath)
	if err != nil {
		return fmt.Errorf("%w: resolving archive path %s: %w", ErrEnvironment, in.ArchivePath, err)
	}
	workDir, err := filepath.Abs(in.WorkDir)
	if err != nil {
		return fmt.Errorf("%w: resolving %s: %w", ErrEnvironment, in.WorkDir, err)
	}
	rel, err := filepath.Rel(workDir, archive)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}

	first := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
	inTransient := first == pyinstaller.BuildDir || first == pyinstaller.DistDir
	if first == rel && (matchSpec(rel) || rel == LockFileName) {
		inTransient = true
	}
	if rel == "." || inTransient {
		return fmt.Errorf("%w: archive path %s lies inside the build output of %s", ErrEnvironment, in.ArchivePath, in.WorkDir)
	}
	return nil
}

// archiveBuildOutput writes the transient output of WorkDir to ArchivePath.
// Nothing is written when there is no transient output.
func (in *Installer) archiveBuildOutput() error {
	roots, err := in.transientPaths()
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		in.Log.Debug("archive", "pack", "skip", "No build output to archive")
		return nil
	}

	out, err := os.Create(in.ArchivePath)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := gozstd.NewWriter(out)
	defer zw.Release()
	tw := tar.NewWriter(zw)

	count := 0
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			relPath, err := filepath.Rel(in.WorkDir, path)
			if err != nil {
				return err
			}
			relPath = filepath.ToSlash(relPath)

			for _, pattern := range in.ArchiveExclude {
				match, err := doublestar.Match(pattern, relPath)
				if err != nil {
					return err
				}
				if match {
					in.Log.Debug("archive", "pack", "skip", "Excluding path based on pattern", "path", relPath, "pattern", pattern)
					if d.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
			}

			info, err := d.Info()
			if err != nil {
				return err
			}
			if !info.Mode().IsRegular() && !info.IsDir() {
				return nil
			}
			hdr, err := tar.FileInfoHeader(info, "")
			if err != nil {
				return err
			}
			hdr.Name = relPath
			if err := tw.WriteHeader(hdr); err != nil {
				return err
			}
			if info.Mode().IsRegular() {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				if _, err := io.Copy(tw, f); err != nil {
					return err
				}
				count++
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("archiving %s: %w", root, err)
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	in.Log.Info("archive", "pack", "success", "Archived build output", "path", in.ArchivePath, "files", count)
	return nil
}

// ReadArchive lists the regular files stored in a build-output archive.
func ReadArchive(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr := gozstd.NewReader(f)
	defer zr.Release()
	tr := tar.NewReader(zr)

	var files []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag == tar.TypeReg {
			files = append(files, hdr.Name)
		}
	}
	return files, nil
}
