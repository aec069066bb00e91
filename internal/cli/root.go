// Package cli implements the drivectl command-line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Exit codes: 0 success, 1 user error, 2 system error.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
	principal string
}

var flags rootFlags

// NewRootCmd creates the top-level "drivectl" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "drivectl",
		Short: "Manage dynamic tabular documents",
		Long: "Drivectl manages documents whose columns, rows, and cell values\n" +
			"are defined at runtime, including nested multiline tables and\n" +
			"file attachments.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: .drive)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: .drive-db)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "enable debug logging")
	root.PersistentFlags().StringVar(&flags.principal, "as", "", "principal ID to act as (default: anonymous, or DRIVE_USER)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newDocumentCmd())
	root.AddCommand(newColumnCmd())
	root.AddCommand(newSubColumnCmd())
	root.AddCommand(newRowCmd())
	root.AddCommand(newCellCmd())
	root.AddCommand(newEntryCmd())
	root.AddCommand(newAttachmentCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(exitUserError)
	}
}

// newLogger builds the CLI logger: silent by default, console debug output
// with --verbose.
func newLogger() zerolog.Logger {
	if !flags.verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

// exitError prints the error to stderr and exits with the given code.
func exitError(cmd *cobra.Command, code int, msg string) error {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(code)
	return nil // unreachable
}

// printResult renders v as indented JSON with --json, or falls back to the
// plain function otherwise.
func printResult(cmd *cobra.Command, v any, plain func()) error {
	if flags.jsonMode {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	plain()
	return nil
}
