package main

import (
	"fmt"
	"slices"

	"github.com/dhamidi/mappificator/mapping"
	"github.com/dhamidi/mappificator/report"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	var (
		list   bool
		mapped bool
	)

	cmd := &cobra.Command{
		Use:   "compare <left> <right>",
		Short: "Compare the symbols of two mapping files",
		Long: `Compare the keys of two mapping files and report how much of the left
side the right side covers.

Examples:
  mappificator compare build/yarn.tiny build/crane.tiny
  mappificator compare --mapped --list old.zip new.zip`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := readGraph(args[0])
			if err != nil {
				return err
			}
			right, err := readGraph(args[1])
			if err != nil {
				return err
			}

			keys := (*mapping.Graph).Keys
			if mapped {
				keys = (*mapping.Graph).MappedKeys
			}
			cmp := mapping.Compare(keys(left), keys(right))

			fmt.Printf("%-8s %10s %10s %10s %10s\n", "", "left", "right", "both", "left only")
			for _, c := range mapping.Categories {
				fmt.Printf("%-8s %10d %10d %10d %10d\n", c,
					cmp.Left.Len(c), cmp.Right.Len(c), cmp.Intersect.Len(c), cmp.LeftOnly.Len(c))
			}
			fmt.Printf("\nCoverage of %s by %s\n%s", args[0], args[1], report.Covered(args[1], cmp))

			if list {
				fmt.Println()
				for _, line := range keyLines(cmp.LeftOnly) {
					fmt.Printf("- %s\n", line)
				}
				for _, line := range keyLines(cmp.RightOnly) {
					fmt.Printf("+ %s\n", line)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "list the keys only one side has")
	cmd.Flags().BoolVarP(&mapped, "mapped", "m", false, "only compare symbols that carry a name")

	return cmd
}

func keyLines(ks mapping.KeySet) []string {
	var out []string
	for k := range ks.Classes {
		out = append(out, k)
	}
	for k := range ks.Fields {
		out = append(out, k.String())
	}
	for k := range ks.Methods {
		out = append(out, k.String())
	}
	for k := range ks.Params {
		out = append(out, k.String())
	}
	slices.Sort(out)
	return out
}
