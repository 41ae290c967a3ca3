// Package config loads the settings of an export run.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "MAPPIFICATOR_"

var KnownProviders = []string{"parchment", "crane", "yarn"}

type Config struct {
	// Version of the export. Derived from the provider versions when empty.
	Version   string   `yaml:"version"`
	MCVersion string   `yaml:"mc_version"`
	Providers []string `yaml:"providers"`

	ParchmentVersion string `yaml:"parchment_version"`
	CraneVersion     string `yaml:"crane_version"`
	YarnVersion      string `yaml:"yarn_version"`

	ImprovedLambdaConflictAvoidance bool `yaml:"improved_lambda_conflict_avoidance"`
	YarnMappingComments             bool `yaml:"yarn_mapping_comments"`
	PrettyPrint                     bool `yaml:"pretty_print"`

	CacheDir    string `yaml:"cache_dir"`
	SourceDir   string `yaml:"source_dir"`
	OutputDir   string `yaml:"output_dir"`
	Corrections string `yaml:"corrections"`
	MetricsFile string `yaml:"metrics_file"`

	ParallelNaming int `yaml:"parallel_naming"`
}

func Default() *Config {
	return &Config{
		MCVersion:        "1.17",
		Providers:        slices.Clone(KnownProviders),
		ParchmentVersion: "2021.07.21",
		CraneVersion:     "14",
		YarnVersion:      "9",
		OutputDir:        "build",
		ParallelNaming:   1,
	}
}

// Load reads .env into the environment when present, then the YAML file
// at path on top of the defaults, then MAPPIFICATOR_* variables. An empty
// path skips the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"VERSION":           &c.Version,
		"MC_VERSION":        &c.MCVersion,
		"PARCHMENT_VERSION": &c.ParchmentVersion,
		"CRANE_VERSION":     &c.CraneVersion,
		"YARN_VERSION":      &c.YarnVersion,
		"CACHE_DIR":         &c.CacheDir,
		"SOURCE_DIR":        &c.SourceDir,
		"OUTPUT_DIR":        &c.OutputDir,
		"CORRECTIONS":       &c.Corrections,
		"METRICS_FILE":      &c.MetricsFile,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"IMPROVED_LAMBDA_CONFLICT_AVOIDANCE": &c.ImprovedLambdaConflictAvoidance,
		"YARN_MAPPING_COMMENTS":              &c.YarnMappingComments,
		"PRETTY_PRINT":                       &c.PrettyPrint,
	}
	for name, dst := range bools {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = b
		}
	}

	if v, ok := lookup(EnvPrefix + "PARALLEL_NAMING"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPARALLEL_NAMING: %w", EnvPrefix, err)
		}
		c.ParallelNaming = n
	}
	if v, ok := lookup(EnvPrefix + "PROVIDERS"); ok && v != "" {
		c.Providers = strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.MCVersion == "" {
		errs = append(errs, errors.New("mc_version is required"))
	}
	seen := make(map[string]bool)
	for _, p := range c.Providers {
		if !slices.Contains(KnownProviders, p) {
			errs = append(errs, fmt.Errorf("unknown provider %q (known: %s)", p, strings.Join(KnownProviders, ", ")))
		}
		if seen[p] {
			errs = append(errs, fmt.Errorf("duplicate provider %q", p))
		}
		seen[p] = true
	}
	versions := map[string]string{"parchment": c.ParchmentVersion, "crane": c.CraneVersion, "yarn": c.YarnVersion}
	for _, p := range c.Providers {
		if v, ok := versions[p]; ok && v == "" {
			errs = append(errs, fmt.Errorf("provider %s needs %s_version", p, p))
		}
	}
	if c.ParallelNaming < 0 {
		errs = append(errs, fmt.Errorf("parallel_naming must not be negative, got %d", c.ParallelNaming))
	}
	return errors.Join(errs...)
}

func (c *Config) HasProvider(name string) bool {
	return slices.Contains(c.Providers, name)
}

// ExportVersion is Version, or mappificator followed by the version of
// every enabled provider: -p<parchment> (up to its first dash), -c<crane>
// and -y<yarn>.
func (c *Config) ExportVersion() string {
	if c.Version != "" {
		return c.Version
	}
	version := "mappificator"
	if c.HasProvider("parchment") {
		p, _, _ := strings.Cut(c.ParchmentVersion, "-")
		version += "-p" + p
	}
	if c.HasProvider("crane") {
		version += "-c" + c.CraneVersion
	}
	if c.HasProvider("yarn") {
		version += "-y" + c.YarnVersion
	}
	return version
}
