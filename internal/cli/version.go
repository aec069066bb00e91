package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the drivectl release version.
const Version = "0.1.0"

const modulePath = "github.com/datanorth/gestiondrive"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the drivectl version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "drivectl v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
