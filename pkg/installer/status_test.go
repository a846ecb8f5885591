package installer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	in, _ := newFixture(t)
	writeSources(t, in.WorkDir, "hello.py")

	_, err := in.Run(context.Background())
	require.NoError(t, err)

	writeSources(t, in.WorkDir, "new.py", "plain.py")
	require.NoError(t, os.WriteFile(filepath.Join(in.TargetDir, "plain"), []byte("x"), 0644))

	entries, err := in.Status()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "hello", entries[0].Source.Name)
	assert.True(t, entries[0].Installed)
	assert.True(t, entries[0].Executable)

	assert.Equal(t, "new", entries[1].Source.Name)
	assert.False(t, entries[1].Installed)
	assert.False(t, entries[1].Executable)
	assert.Equal(t, filepath.Join(in.TargetDir, "new"), entries[1].InstalledPath)

	assert.Equal(t, "plain", entries[2].Source.Name)
	assert.True(t, entries[2].Installed)
	assert.False(t, entries[2].Executable)
}
