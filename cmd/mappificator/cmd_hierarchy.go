package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dhamidi/mappificator/classfile"
	"github.com/dhamidi/mappificator/format"
	"github.com/dhamidi/mappificator/inherit"
	"github.com/spf13/cobra"
)

func newHierarchyCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "hierarchy <jar>",
		Short: "Build the method override tree of a jar",
		Long: `Read every class file of a jar and write, for each method overriding
or implementing another, the classes declaring the overridden method.

The result can stand in for the override data of blackstone metadata.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classes, err := classfile.ReadJar(args[0])
			if err != nil {
				return err
			}
			tree := inherit.BuildTree(classes)

			var w io.Writer = os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := format.WriteTree(w, tree); err != nil {
				return fmt.Errorf("write tree: %w", err)
			}
			if output != "" {
				fmt.Fprintf(os.Stderr, "%d classes, %d overriding methods\n", len(classes), len(tree))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the tree to this file")

	return cmd
}
