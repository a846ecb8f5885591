package pyinstaller

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"pybin-tools/go/pkg/logbowl"
	"pybin-tools/go/pkg/pyinstaller/pyinstallertest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"--onefile", "--clean", "--name", "hello", "hello.py"},
		Args("hello", "hello.py"))
	assert.Equal(t,
		[]string{"--onefile", "--clean", "--name=-v", "./-v.py"},
		Args("-v", "-v.py"))
	assert.Equal(t,
		[]string{"--onefile", "--clean", "--name", "tool", "/abs/tool.py"},
		Args("tool", "/abs/tool.py"))
}

func TestBuildWithDashLeadingSource(t *testing.T) {
	workDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "-dash.py"), []byte("print('hi')\n"), 0644))
	tool := &Tool{Path: pyinstallertest.Install(t), Dir: workDir, Stdout: &bytes.Buffer{}, Log: logbowl.Discard()}

	require.NoError(t, tool.Build(context.Background(), "-dash.py", "-dash"))

	assert.FileExists(t, tool.ArtifactPath("-dash"))
	recorded, err := os.ReadFile(filepath.Join(workDir, BuildDir, "-dash", "args.txt"))
	require.NoError(t, err)
	assert.Equal(t, "--onefile --clean --name=-dash ./-dash.py", strings.TrimSpace(string(recorded)))
}

func TestBuildWithoutLogger(t *testing.T) {
	workDir := t.TempDir()
	tool := &Tool{Path: pyinstallertest.Install(t), Dir: workDir, Stdout: &bytes.Buffer{}}

	assert.NotPanics(t, func() {
		require.NoError(t, tool.Build(context.Background(), "hello.py", "hello"))
	})
	assert.FileExists(t, tool.ArtifactPath("hello"))
}

func TestResolve(t *testing.T) {
	fake := pyinstallertest.Install(t)

	resolved, err := Resolve(fake)
	require.NoError(t, err)
	assert.Equal(t, fake, resolved)

	_, err = Resolve(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestBuildProducesArtifact(t *testing.T) {
	workDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "hello.py"), []byte("print('hi')\n"), 0644))

	var stdout bytes.Buffer
	tool := &Tool{Path: pyinstallertest.Install(t), Dir: workDir, Stdout: &stdout, Stderr: &stdout, Log: logbowl.Discard()}

	require.NoError(t, tool.Build(context.Background(), "hello.py", "hello"))

	assert.FileExists(t, tool.ArtifactPath("hello"))
	assert.Equal(t, filepath.Join(workDir, DistDir, "hello"), tool.ArtifactPath("hello"))
	assert.FileExists(t, filepath.Join(workDir, "hello.spec"))
	assert.DirExists(t, filepath.Join(workDir, BuildDir, "hello"))
	assert.Contains(t, stdout.String(), "completed successfully")

	recorded, err := os.ReadFile(filepath.Join(workDir, BuildDir, "hello", "args.txt"))
	require.NoError(t, err)
	assert.Equal(t, strings.Join(Args("hello", "hello.py"), " "), strings.TrimSpace(string(recorded)))
}

func TestBuildFailureReturnsExitError(t *testing.T) {
	workDir := t.TempDir()
	var stderr bytes.Buffer
	tool := &Tool{Path: pyinstallertest.Install(t), Dir: workDir, Stdout: &stderr, Stderr: &stderr, Log: logbowl.Discard()}

	err := tool.Build(context.Background(), "broken.py", "broken")
	require.Error(t, err)

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode())
	assert.Contains(t, stderr.String(), "SyntaxError")
	assert.NoFileExists(t, tool.ArtifactPath("broken"))
}

func TestBuildHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tool := &Tool{Path: pyinstallertest.Install(t), Dir: t.TempDir(), Log: logbowl.Discard()}

	assert.Error(t, tool.Build(ctx, "hello.py", "hello"))
}
