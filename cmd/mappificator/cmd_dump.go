package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/dhamidi/mappificator/format"
	"github.com/spf13/cobra"
)

func newDumpCmd() *cobra.Command {
	var dumpFormat string

	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Dump a mapping file in another format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGraph(args[0])
			if err != nil {
				return err
			}

			var encoder format.Encoder
			switch dumpFormat {
			case "json":
				encoder = format.NewJSONEncoder(os.Stdout)
			case "parchment":
				enc := format.NewParchmentEncoder(os.Stdout)
				enc.Indent = true
				encoder = enc
			case "tiny":
				encoder = format.NewTinyEncoder(os.Stdout)
			case "spew":
				dumper := spew.ConfigState{Indent: "  ", MaxDepth: 3, DisablePointerAddresses: true, SortKeys: true}
				for _, c := range g.Classes() {
					dumper.Fdump(os.Stdout, c)
				}
				return nil
			default:
				return fmt.Errorf("unknown format: %s (expected json, parchment, tiny or spew)", dumpFormat)
			}

			if err := encoder.Encode(g); err != nil {
				return fmt.Errorf("encode %s: %w", dumpFormat, err)
			}
			if dumpFormat != "tiny" {
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dumpFormat, "format", "f", "json", "output format (json, parchment, tiny, spew)")

	return cmd
}
