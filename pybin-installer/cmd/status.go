package cmd

import (
	"fmt"
	"io"
	"os"

	"pybin-tools/go/pkg/installer"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows which scripts have an executable installed in the target directory.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		wd, td, err := resolveDirs()
		if err != nil {
			log.Error("config", "init", "error", "Invalid configuration", "error", err)
			os.Exit(1)
		}
		in := installer.New(wd, td, nil, log)
		in.Pattern = sourcePattern

		entries, err := in.Status()
		if err != nil {
			log.Error("status", "check", "error", "Failed to check installed binaries", "error", err)
			os.Exit(1)
		}
		printStatus(cmd.OutOrStdout(), td, entries)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func printStatus(w io.Writer, target string, entries []installer.Entry) {
	fmt.Fprintf(w, "Install status for: %s\n", target)
	if len(entries) == 0 {
		fmt.Fprintln(w, "  no source files found")
		return
	}
	for _, e := range entries {
		state := "missing"
		switch {
		case e.Executable:
			state = "installed"
		case e.Installed:
			state = "not executable"
		}
		fmt.Fprintf(w, "  %-24s %s\n", e.Source.File, state)
	}
}
