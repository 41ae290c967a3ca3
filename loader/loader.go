// Package loader fetches the raw bytes of mapping artifacts. The pipeline
// only sees the Fetcher interface; where the bytes come from (a maven
// repository, a local directory or a cache in front of either) is decided
// by the caller.
package loader

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("mappificator.loader")

// ErrNotFound is matched by errors for artifacts that do not exist at
// their source.
var ErrNotFound = errors.New("artifact not found")

type Source string

const (
	Blackstone   Source = "blackstone"
	Parchment    Source = "parchment"
	Crane        Source = "crane"
	Intermediary Source = "intermediary"
	Yarn         Source = "yarn"
)

// ID identifies one artifact. Version is the source specific build or
// release and is ignored by sources keyed on the game version alone.
type ID struct {
	Source    Source
	MCVersion string
	Version   string
}

func (id ID) String() string {
	if id.Version == "" {
		return fmt.Sprintf("%s/%s", id.Source, id.MCVersion)
	}
	return fmt.Sprintf("%s/%s/%s", id.Source, id.MCVersion, id.Version)
}

// FileName is the name of the extracted artifact in a source directory.
func (id ID) FileName() string {
	ext := ".tiny"
	if id.Source == Blackstone || id.Source == Parchment {
		ext = ".json"
	}
	if id.Version == "" {
		return fmt.Sprintf("%s-%s%s", id.Source, id.MCVersion, ext)
	}
	return fmt.Sprintf("%s-%s-%s%s", id.Source, id.MCVersion, id.Version, ext)
}

type Fetcher interface {
	Fetch(ctx context.Context, id ID) ([]byte, error)
}

// ExtractZipEntry returns the contents of the named entry of a zip archive
// held in memory.
func ExtractZipEntry(data []byte, name string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	f, err := zr.Open(name)
	if err != nil {
		return nil, fmt.Errorf("zip entry %s: %w", name, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}
