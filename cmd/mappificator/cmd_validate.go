package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dhamidi/mappificator/format"
	"github.com/dhamidi/mappificator/loader"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check parchment documents or zips against the parchment schema",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				if err := validate(path); err != nil {
					fmt.Printf("FAIL %s: %v\n", path, err)
					failed++
					continue
				}
				fmt.Printf("ok   %s\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files invalid", failed, len(args))
			}
			return nil
		},
	}
}

func validate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if filepath.Ext(path) == ".zip" {
		if data, err = loader.ExtractZipEntry(data, format.ParchmentEntry); err != nil {
			return err
		}
	}
	return format.ValidateParchment(data)
}
