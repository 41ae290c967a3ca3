package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhamidi/mappificator/format"
	"github.com/dhamidi/mappificator/loader"
	"github.com/dhamidi/mappificator/mapping"
)

// readGraph reads a tiny file, a parchment JSON document, a parchment zip
// or blackstone metadata (*.blackstone.json), chosen by file name.
func readGraph(path string) (*mapping.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch {
	case filepath.Ext(path) == ".tiny":
		return format.ReadTiny(bytes.NewReader(data), path)
	case filepath.Ext(path) == ".zip":
		entry, err := loader.ExtractZipEntry(data, format.ParchmentEntry)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return format.ReadParchment(bytes.NewReader(entry), path)
	case filepath.Ext(path) == ".json" && isBlackstone(path):
		g, _, err := format.ReadBlackstone(bytes.NewReader(data), path)
		return g, err
	case filepath.Ext(path) == ".json":
		return format.ReadParchment(bytes.NewReader(data), path)
	}
	return nil, fmt.Errorf("unsupported file: %s (expected .tiny, .json or .zip)", path)
}

func isBlackstone(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, "blackstone") || strings.HasSuffix(base, ".blackstone.json")
}
