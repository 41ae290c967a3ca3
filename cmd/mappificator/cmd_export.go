package main

import (
	"fmt"
	"os"

	"github.com/dhamidi/mappificator/config"
	"github.com/dhamidi/mappificator/loader"
	"github.com/dhamidi/mappificator/pipeline"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var (
		configPath string
		overrides  config.Config
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build a parchment export from the configured providers",
		Long: `Load the official mappings and every enabled provider, name all
parameters and write a parchment zip plus a reverse lookup log.

Settings come from the YAML file given by --config, then MAPPIFICATOR_*
environment variables (a .env file is honored), then flags.

Examples:
  mappificator export --mc-version 1.17 --providers parchment,yarn
  mappificator export --config mappificator.yaml --source-dir ./artifacts`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd, cfg, &overrides)
			if cfg.HasProvider("yarn") && cfg.YarnVersion == loader.Latest {
				if cfg.YarnVersion, err = loader.NewVersionSearcher().LatestYarnBuild(cmd.Context(), cfg.MCVersion); err != nil {
					return err
				}
			}

			fetcher, closeFetcher, err := newFetcher(cfg)
			if err != nil {
				return err
			}
			defer closeFetcher()

			res, out, err := pipeline.Run(cmd.Context(), cfg, fetcher, os.Stdout)
			if err != nil {
				return err
			}
			fmt.Printf("Exported %s\n", res.Version)
			fmt.Printf("  %s\n", out.Zip)
			if out.Pretty != "" {
				fmt.Printf("  %s\n", out.Pretty)
			}
			fmt.Printf("  %s\n", out.Lookup)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	f.StringVar(&overrides.Version, "version", "", "export version (derived from provider versions when empty)")
	f.StringVar(&overrides.MCVersion, "mc-version", "", "game version to export")
	f.StringSliceVarP(&overrides.Providers, "providers", "p", nil, "enabled providers in priority order (parchment, crane, yarn)")
	f.StringVar(&overrides.ParchmentVersion, "parchment-version", "", "parchment release")
	f.StringVar(&overrides.CraneVersion, "crane-version", "", "crane build")
	f.StringVar(&overrides.YarnVersion, "yarn-version", "", "yarn build, or latest")
	f.BoolVar(&overrides.ImprovedLambdaConflictAvoidance, "lambda-scopes", false, "name lambda parameters against their owning method only")
	f.BoolVar(&overrides.YarnMappingComments, "yarn-comments", false, "add the yarn name of every symbol to its docs")
	f.BoolVar(&overrides.PrettyPrint, "pretty", false, "also write an indented copy of the export")
	f.StringVar(&overrides.SourceDir, "source-dir", "", "read extracted artifacts from this directory instead of downloading")
	f.StringVar(&overrides.CacheDir, "cache-dir", "", "persist downloaded artifacts in this directory")
	f.StringVarP(&overrides.OutputDir, "output", "o", "", "output directory")
	f.StringVar(&overrides.Corrections, "corrections", "", "YAML table of manual parameter names")
	f.StringVar(&overrides.MetricsFile, "metrics-file", "", "write run metrics in prometheus text format")
	f.IntVarP(&overrides.ParallelNaming, "parallel", "j", 0, "class families named concurrently")

	return cmd
}

// applyFlags copies every flag the user set onto cfg.
func applyFlags(cmd *cobra.Command, cfg, flags *config.Config) {
	strs := map[string]struct{ dst, src *string }{
		"version":           {&cfg.Version, &flags.Version},
		"mc-version":        {&cfg.MCVersion, &flags.MCVersion},
		"parchment-version": {&cfg.ParchmentVersion, &flags.ParchmentVersion},
		"crane-version":     {&cfg.CraneVersion, &flags.CraneVersion},
		"yarn-version":      {&cfg.YarnVersion, &flags.YarnVersion},
		"source-dir":        {&cfg.SourceDir, &flags.SourceDir},
		"cache-dir":         {&cfg.CacheDir, &flags.CacheDir},
		"output":            {&cfg.OutputDir, &flags.OutputDir},
		"corrections":       {&cfg.Corrections, &flags.Corrections},
		"metrics-file":      {&cfg.MetricsFile, &flags.MetricsFile},
	}
	for name, v := range strs {
		if cmd.Flags().Changed(name) {
			*v.dst = *v.src
		}
	}

	bools := map[string]struct{ dst, src *bool }{
		"lambda-scopes": {&cfg.ImprovedLambdaConflictAvoidance, &flags.ImprovedLambdaConflictAvoidance},
		"yarn-comments": {&cfg.YarnMappingComments, &flags.YarnMappingComments},
		"pretty":        {&cfg.PrettyPrint, &flags.PrettyPrint},
	}
	for name, v := range bools {
		if cmd.Flags().Changed(name) {
			*v.dst = *v.src
		}
	}

	if cmd.Flags().Changed("providers") {
		cfg.Providers = flags.Providers
	}
	if cmd.Flags().Changed("parallel") {
		cfg.ParallelNaming = flags.ParallelNaming
	}
}

// newFetcher reads from the source directory when one is configured and
// downloads otherwise. Downloads go through the badger cache.
func newFetcher(cfg *config.Config) (loader.Fetcher, func(), error) {
	if cfg.SourceDir != "" {
		return loader.DirFetcher{Dir: cfg.SourceDir}, func() {}, nil
	}
	cached, err := loader.NewCachedFetcher(cfg.CacheDir, loader.NewHTTPFetcher())
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}
	return cached, func() { cached.Close() }, nil
}
