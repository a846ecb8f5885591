package installer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Entry describes the install state of one source.
type Entry struct {
	Source        Source
	InstalledPath string
	Installed     bool
	Executable    bool
}

// Status reports, for every source in WorkDir, whether a binary with the
// matching name is present in TargetDir and executable by its owner.
func (in *Installer) Status() ([]Entry, error) {
	sources, err := in.Discover()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(sources))
	for _, src := range sources {
		e := Entry{Source: src, InstalledPath: filepath.Join(in.TargetDir, src.Name)}
		info, err := os.Stat(e.InstalledPath)
		switch {
		case err == nil:
			e.Installed = info.Mode().IsRegular()
			e.Executable = e.Installed && info.Mode().Perm()&0100 != 0
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("%w: checking %s: %w", ErrEnvironment, e.InstalledPath, err)
		}
		in.Log.Debug("status", "check", "info", "Checked installed binary", "name", src.Name, "installed", e.Installed, "executable", e.Executable)
		entries = append(entries, e)
	}
	return entries, nil
}
