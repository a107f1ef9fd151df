package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/catalog"
)

var showCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print a catalog",
	Long:  "Prints the catalog in file, or the built-in catalog when no file is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShow,
}

var showFormat string

func init() {
	showCmd.Flags().StringVarP(&showFormat, "format", "f", "yaml", "Output format: yaml or json")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	c := catalog.Default()
	if len(args) == 1 {
		var err error
		if c, err = catalog.LoadFile(args[0]); err != nil {
			return err
		}
	}

	var (
		data []byte
		err  error
	)
	switch showFormat {
	case "yaml":
		data, err = yaml.Marshal(c)
	case "json":
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown format %q", showFormat)
	}
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
