package cmd

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the studychat version and build details",
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		info, _ := debug.ReadBuildInfo()
		printVersion(cmd.OutOrStdout(), version, info, verbose)
	},
}

// printVersion falls back to the module version recorded by `go install`
// when no version was stamped at link time.
func printVersion(w io.Writer, stamped string, info *debug.BuildInfo, verbose bool) {
	v := stamped
	if v == "(devel)" && info != nil && info.Main.Version != "" {
		v = info.Main.Version
	}
	fmt.Fprintln(w, "studychat", v)
	if !verbose || info == nil {
		return
	}

	fmt.Fprintf(w, "  go:       %s\n", info.GoVersion)
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision", "vcs.time", "vcs.modified":
			fmt.Fprintf(w, "  %-9s %s\n", s.Key[len("vcs."):]+":", s.Value)
		}
	}
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "Include Go toolchain and VCS details")
}
