package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dhamidi/mappificator/config"
	"github.com/dhamidi/mappificator/format"
	"github.com/dhamidi/mappificator/loader"
	"github.com/dhamidi/mappificator/mapping"
	"github.com/dhamidi/mappificator/report"
)

// Outputs are the paths an export writes. Pretty is empty unless pretty
// printing is enabled.
type Outputs struct {
	Zip    string
	Pretty string
	Lookup string
}

func OutputsFor(cfg *config.Config, version string) Outputs {
	out := Outputs{
		Zip:    filepath.Join(cfg.OutputDir, format.ParchmentZipName(cfg.MCVersion, version)),
		Lookup: filepath.Join(cfg.OutputDir, fmt.Sprintf("mappificator-%s.log", version)),
	}
	if cfg.PrettyPrint {
		out.Pretty = filepath.Join(cfg.OutputDir, fmt.Sprintf("parchment-%s-%s.json", cfg.MCVersion, version))
	}
	return out
}

// Write writes the parchment zip, the optional pretty printed JSON and the
// reverse lookup log of res.
func Write(cfg *config.Config, res *Result) (Outputs, error) {
	out := OutputsFor(cfg, res.Version)
	if err := format.WriteParchmentZip(out.Zip, res.Merged); err != nil {
		return out, fmt.Errorf("write export: %w", err)
	}

	if out.Pretty != "" {
		if err := writeFile(out.Pretty, func(w io.Writer) error {
			enc := format.NewParchmentEncoder(w)
			enc.Indent = true
			return enc.Encode(res.Merged)
		}); err != nil {
			return out, err
		}
	}

	if err := writeFile(out.Lookup, func(w io.Writer) error {
		n, err := format.NewLookupEncoder(w).EncodeAll(report.Records(res.Merged, res.Inverse))
		log.Infof("wrote %d lookup records", n)
		return err
	}); err != nil {
		return out, err
	}
	return out, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Noticef("wrote %s", path)
	return nil
}

// Run performs a complete export: load, reconcile, write, and the metrics
// textfile when configured.
func Run(ctx context.Context, cfg *config.Config, fetcher loader.Fetcher, stdout io.Writer) (*Result, Outputs, error) {
	if err := cfg.Validate(); err != nil {
		return nil, Outputs{}, fmt.Errorf("invalid configuration: %w", err)
	}

	var corrections map[mapping.ParamKey]string
	if cfg.Corrections != "" {
		f, err := os.Open(cfg.Corrections)
		if err != nil {
			return nil, Outputs{}, fmt.Errorf("open corrections: %w", err)
		}
		corrections, err = format.ReadCorrections(f, cfg.Corrections)
		f.Close()
		if err != nil {
			return nil, Outputs{}, err
		}
	}

	log.Noticef("loading sources for %s", cfg.MCVersion)
	src, err := Load(ctx, cfg, fetcher)
	if err != nil {
		return nil, Outputs{}, err
	}

	metrics := report.NewMetrics()
	r := &Reconciler{Config: cfg, Corrections: corrections, Metrics: metrics, Out: stdout}
	res, err := r.Reconcile(ctx, src)
	if err != nil {
		return nil, Outputs{}, err
	}

	out, err := Write(cfg, res)
	if err != nil {
		return res, out, err
	}
	if cfg.MetricsFile != "" {
		if err := metrics.WriteFile(cfg.MetricsFile); err != nil {
			return res, out, fmt.Errorf("write metrics: %w", err)
		}
	}
	log.Noticef("export %s done (run %s)", res.Version, metrics.RunID)
	return res, out, nil
}
