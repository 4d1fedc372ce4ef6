// Package config loads Code Scalpel's own configuration: a YAML file for
// tier/budget/cache settings and a .env file for secrets such as the
// policy manifest's HMAC signing key, the way the teacher's analytics
// and docker-compose parsing already reach for yaml.v3 for structured
// config, generalized here to the tool's own settings rather than a
// scanned target's.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/codescalpel/codescalpel/internal/scalpelerr"
)

// TierConfig configures one policy tier's limit-rule bundle.
type TierConfig struct {
	Name           string           `yaml:"name"`
	MaxFilesPerRun int              `yaml:"max_files_per_run"`
	MaxBytesPerRun int64            `yaml:"max_bytes_per_run"`
	Limits         map[string]int64 `yaml:"limits"`
}

// Config is Code Scalpel's own settings file, distinct from anything it
// analyzes.
type Config struct {
	CacheDir             string       `yaml:"cache_dir"`
	CacheByteBudget      int          `yaml:"cache_byte_budget"`
	AnalyzerVersion      string       `yaml:"analyzer_version"`
	PolicyManifestURL    string       `yaml:"policy_manifest_url"`
	ConfidenceThreshold  float64      `yaml:"confidence_threshold"`
	SymbolicStepBudget   int          `yaml:"symbolic_step_budget"`
	Tiers                []TierConfig `yaml:"tiers"`

	// PolicySecret is never read from YAML — it comes only from the
	// environment (typically via .env), so a config file checked into a
	// repo can never leak the signing key.
	PolicySecret string `yaml:"-"`
}

// Default returns Config's baked-in defaults, used for any field a
// loaded file leaves unset.
func Default() Config {
	return Config{
		CacheDir:            ".codescalpel/cache.db",
		CacheByteBudget:     64 * 1024 * 1024,
		AnalyzerVersion:     "v1",
		ConfidenceThreshold: 0.8,
		SymbolicStepBudget:  2000,
		Tiers: []TierConfig{
			{Name: "free", MaxFilesPerRun: 5, MaxBytesPerRun: 64 * 1024},
			{Name: "pro", MaxFilesPerRun: 200, MaxBytesPerRun: 8 * 1024 * 1024},
		},
	}
}

// Load reads yamlPath (if it exists) over Default(), then loads envPath
// (if it exists) via godotenv and pulls CODESCALPEL_POLICY_SECRET from
// the resulting environment. A missing yamlPath or envPath is not an
// error — Load degrades to defaults plus whatever environment variables
// are already set, the same "config file is optional" posture the
// teacher's .env handling assumes.
func Load(yamlPath, envPath string) (Config, error) {
	cfg := Default()

	if yamlPath != "" {
		if raw, err := os.ReadFile(yamlPath); err == nil {
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, scalpelerr.New(scalpelerr.KindInvalidArgument, "config: parse %s: %v", yamlPath, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, scalpelerr.New(scalpelerr.KindForbidden, "config: read %s: %v", yamlPath, err)
		}
	}

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return Config{}, scalpelerr.New(scalpelerr.KindForbidden, "config: load %s: %v", envPath, err)
		}
	}
	cfg.PolicySecret = os.Getenv("CODESCALPEL_POLICY_SECRET")

	return cfg, nil
}

// TierByName looks up a tier by name, falling back to the first
// configured tier if name is empty or unknown.
func (c Config) TierByName(name string) TierConfig {
	for _, t := range c.Tiers {
		if t.Name == name {
			return t
		}
	}
	if len(c.Tiers) > 0 {
		return c.Tiers[0]
	}
	return TierConfig{}
}
