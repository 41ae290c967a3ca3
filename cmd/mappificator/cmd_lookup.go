package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dhamidi/mappificator/format"
	"github.com/dhamidi/mappificator/report"
	"github.com/spf13/cobra"
)

func newLookupCmd() *cobra.Command {
	var kinds string

	cmd := &cobra.Command{
		Use:   "lookup <log> <name>",
		Short: "Find symbols in a reverse lookup log",
		Long: `Search the reverse lookup log written by export for records whose
class, name or obfuscated origin contains <name>.

Examples:
  mappificator lookup build/mappificator-p2021.07.21.log Entity
  mappificator lookup --kind P build/mappificator-p2021.07.21.log level_`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			records, err := format.ReadLookup(f, args[0])
			if err != nil {
				return err
			}

			query := args[1]
			enc := format.NewLookupEncoder(os.Stdout)
			found := 0
			for _, r := range records {
				if kinds != "" && !strings.ContainsRune(strings.ToUpper(kinds), rune(r.Kind)) {
					continue
				}
				if !matches(r, query) {
					continue
				}
				if err := enc.Encode(r); err != nil {
					return err
				}
				found++
			}
			if found == 0 {
				fmt.Fprintln(os.Stderr, "No records found.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kinds, "kind", "k", "", "record kinds to show (any of C, F, M, P)")

	return cmd
}

func matches(r report.Record, query string) bool {
	return strings.Contains(r.Class, query) ||
		strings.Contains(r.Name, query) ||
		r.Origin == query
}
