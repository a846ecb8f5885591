package cmd

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"pybin-tools/go/pkg/installer"
	"pybin-tools/go/pkg/logbowl"
	"pybin-tools/go/pkg/pyinstaller"

	"github.com/spf13/cobra"
)

var (
	log logbowl.Logger
)

var (
	workDir        string
	targetDir      string
	toolPath       string
	sourcePattern  string
	archivePath    string
	archiveExclude []string
)

var rootCmd = &cobra.Command{
	Use:   "pybin-installer",
	Short: "Compiles every Python script in a directory with PyInstaller and installs the executables into ~/bin.",
	Args:  cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = logbowl.Create("pybin-installer")
	},
	Run: func(cmd *cobra.Command, args []string) {
		in, err := newInstaller()
		if err != nil {
			log.Error("config", "init", "error", "Invalid configuration", "error", err)
			os.Exit(1)
		}
		if _, err := in.Run(cmd.Context()); err != nil {
			log.Error("installer", "stop", "failure", "Install run failed", "error", err)
			os.Exit(exitCode(err))
		}
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the run so the
// packaging tool is stopped and the build output still gets cleaned.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if log.Logger != nil {
			log.Error("system", "stop", "error", "Failed to execute command", "error", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&workDir, "workdir", "", "Directory holding the scripts (default: current directory).")
	rootCmd.PersistentFlags().StringVar(&targetDir, "target-dir", "", "Installation directory (default: ~/bin).")
	rootCmd.PersistentFlags().StringVar(&sourcePattern, "pattern", installer.DefaultPattern, "Pattern selecting source files in the working directory.")
	rootCmd.Flags().StringVar(&toolPath, "tool", pyinstaller.DefaultTool, "Packaging tool to run for each script.")
	rootCmd.Flags().StringVar(&archivePath, "archive-build-output", "", "Write the build output to this tar.zst before it is removed.")
	rootCmd.Flags().StringArrayVar(&archiveExclude, "archive-exclude", []string{}, "Glob patterns to exclude from the build-output archive.")
}

// resolveDirs fills in the defaults for the working and target directories.
func resolveDirs() (string, string, error) {
	wd := workDir
	if wd == "" {
		var err error
		if wd, err = os.Getwd(); err != nil {
			return "", "", err
		}
	}
	td := targetDir
	if td == "" {
		var err error
		if td, err = installer.DefaultTargetDir(); err != nil {
			return "", "", err
		}
	}
	return wd, td, nil
}

func newInstaller() (*installer.Installer, error) {
	wd, td, err := resolveDirs()
	if err != nil {
		return nil, err
	}
	tool, err := pyinstaller.Resolve(toolPath)
	if err != nil {
		return nil, err
	}

	in := installer.New(wd, td, &pyinstaller.Tool{Path: tool, Dir: wd, Log: log}, log)
	in.Pattern = sourcePattern
	in.ArchivePath = archivePath
	in.ArchiveExclude = archiveExclude
	log.Debug("config", "init", "ok", "Resolved configuration", "workdir", wd, "target", td, "tool", tool, "pattern", sourcePattern)
	return in, nil
}

// exitCode passes the packaging tool's exit status through; anything else is 1.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return 1
}
