package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/catalog"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a catalog file",
	Long:  "Parses a YAML or JSON catalog file and reports its version, term count, and exception terms.",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	c, err := catalog.LoadFile(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ok: %s\n", args[0])
	fmt.Fprintf(out, "version:     %s\n", c.Version())
	fmt.Fprintf(out, "fingerprint: %s\n", c.Fingerprint())
	fmt.Fprintf(out, "terms:       %d (%d exception)\n", c.Len(), len(c.Exceptions()))
	return nil
}
