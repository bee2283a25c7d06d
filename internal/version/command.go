package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AttachCobraVersionCommand attaches a `version` subcommand to root.
// The full output is prefixed with the binary name; --short prints the version only.
func AttachCobraVersionCommand(root *cobra.Command) {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		Long:  "Print the build version, commit hash and build timestamp injected at build time.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if short {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), Short())

				return
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", root.Name(), Full())
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "print only the semantic version")

	root.AddCommand(cmd)
}
