package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dhamidi/mappificator/config"
	"github.com/dhamidi/mappificator/format"
	"github.com/dhamidi/mappificator/inherit"
	"github.com/dhamidi/mappificator/loader"
	"github.com/dhamidi/mappificator/mapping"
	"golang.org/x/sync/errgroup"
)

// Sources are the parsed inputs of a run. Graphs of providers that are
// not enabled are nil.
type Sources struct {
	// ObfToMoj maps obfuscated names to official names.
	ObfToMoj *mapping.Graph
	Tree     inherit.Tree

	Parchment *mapping.Graph
	Crane     *mapping.Graph
	// Intermediary maps obfuscated names to intermediary names and Yarn
	// maps those on to yarn names.
	Intermediary *mapping.Graph
	Yarn         *mapping.Graph
}

// Load fetches and parses every source cfg enables, concurrently.
func Load(ctx context.Context, cfg *config.Config, fetcher loader.Fetcher) (*Sources, error) {
	src := &Sources{}
	g, ctx := errgroup.WithContext(ctx)

	fetch := func(id loader.ID, parse func(data []byte, source string) error) {
		g.Go(func() error {
			data, err := fetcher.Fetch(ctx, id)
			if err != nil {
				return err
			}
			if err := parse(data, id.FileName()); err != nil {
				return fmt.Errorf("load %s: %w", id, err)
			}
			log.Noticef("loaded %s", id)
			return nil
		})
	}
	tiny := func(dst **mapping.Graph) func([]byte, string) error {
		return func(data []byte, source string) (err error) {
			*dst, err = format.ReadTiny(bytes.NewReader(data), source)
			return err
		}
	}

	fetch(loader.ID{Source: loader.Blackstone, MCVersion: cfg.MCVersion}, func(data []byte, source string) (err error) {
		src.ObfToMoj, src.Tree, err = format.ReadBlackstone(bytes.NewReader(data), source)
		return err
	})
	if cfg.HasProvider("parchment") {
		fetch(loader.ID{Source: loader.Parchment, MCVersion: cfg.MCVersion, Version: cfg.ParchmentVersion}, func(data []byte, source string) (err error) {
			src.Parchment, err = format.ReadParchment(bytes.NewReader(data), source)
			return err
		})
	}
	if cfg.HasProvider("crane") {
		fetch(loader.ID{Source: loader.Crane, MCVersion: cfg.MCVersion, Version: cfg.CraneVersion}, tiny(&src.Crane))
	}
	if cfg.HasProvider("yarn") {
		fetch(loader.ID{Source: loader.Intermediary, MCVersion: cfg.MCVersion}, tiny(&src.Intermediary))
		fetch(loader.ID{Source: loader.Yarn, MCVersion: cfg.MCVersion, Version: cfg.YarnVersion}, tiny(&src.Yarn))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return src, nil
}
