// Package pyinstallertest provides a stand-in PyInstaller for tests.
package pyinstallertest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// script mimics PyInstaller's on-disk behaviour: it leaves build/<name>/,
// dist/<name> and <name>.spec in the current directory. Sources whose name
// contains "broken" make it exit 3 without producing an artifact.
const script = `#!/bin/sh
name=""
src=""
all="$*"
while [ $# -gt 0 ]; do
  case "$1" in
    --name) name="$2"; shift 2 ;;
    --name=*) name="${1#--name=}"; shift ;;
    --*) shift ;;
    *) src="$1"; shift ;;
  esac
done
case "$src" in
  *broken*) echo "SyntaxError in $src" >&2; exit 3 ;;
esac
mkdir -p "build/$name" dist
echo "$all" > "build/$name/args.txt"
echo "warning report" > "build/$name/warn-$name.txt"
echo "# spec for $name" > "$name.spec"
printf '#!/bin/sh\necho %s\n' "$name" > "dist/$name"
echo "Building EXE from $src completed successfully."
`

// noArtifact exits zero without writing anything to dist/.
const noArtifact = `#!/bin/sh
mkdir -p build
exit 0
`

// Install writes the fake tool into a fresh temp dir and returns its path.
// Tests are skipped where /bin/sh scripts cannot run.
func Install(t *testing.T) string {
	return write(t, script)
}

// InstallSilent returns a tool that succeeds but never produces an artifact.
func InstallSilent(t *testing.T) string {
	return write(t, noArtifact)
}

func write(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake packaging tool is a POSIX shell script")
	}
	path := filepath.Join(t.TempDir(), "pyinstaller")
	if err := os.WriteFile(path, []byte(body), 0755); err != nil {
		t.Fatalf("writing fake packaging tool: %v", err)
	}
	return path
}
