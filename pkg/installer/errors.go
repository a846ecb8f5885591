package installer

import "errors"

// Error categories. Every one of them aborts the run.
var (
	ErrEnvironment = errors.New("environment error")
	ErrBuild       = errors.New("build error")
	ErrArtifact    = errors.New("artifact error")
	ErrInstall     = errors.New("install error")
	ErrLocked      = errors.New("working directory is locked by another run")
)
