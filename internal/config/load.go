package config

import (
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/rotate"
)

// Load reads, parses and validates a policy file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config file %q: %w", path, err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Journal == "" {
		cfg.Journal = DefaultJournalPath
	}
}

// Validate checks every policy. Policies reuse the rotation core's group and
// keep-count rules, plus file-level constraints: at least one policy, no
// duplicate (filesystem, group) pair, parseable cron schedules.
func Validate(cfg *Config) error {
	if len(cfg.Policies) == 0 {
		return fmt.Errorf("no policies defined")
	}

	seen := make(map[string]bool, len(cfg.Policies))
	for i, p := range cfg.Policies {
		if p.Filesystem == "" {
			return fmt.Errorf("policy %d: filesystem is empty", i+1)
		}
		if err := rotate.ValidateGroup(p.Group); err != nil {
			return fmt.Errorf("policy %d (%s): %w", i+1, p.Filesystem, err)
		}
		if p.Keep < 1 {
			return fmt.Errorf("policy %d (%s@%s): invalid keep count %d: must be at least 1",
				i+1, p.Filesystem, p.Group, p.Keep)
		}
		if p.Schedule != "" {
			if _, err := cron.ParseStandard(p.Schedule); err != nil {
				return fmt.Errorf("policy %d (%s@%s): invalid cron schedule %q: %w",
					i+1, p.Filesystem, p.Group, p.Schedule, err)
			}
		}

		key := p.Filesystem + "@" + p.Group
		if seen[key] {
			return fmt.Errorf("duplicate policy for %s group %s", p.Filesystem, p.Group)
		}
		seen[key] = true
	}

	return nil
}
