package episodes

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ImageConfig holds the decode/transform parameters for the vision
// collaborator. Mean and Std are per-channel RGB normalization constants.
type ImageConfig struct {
	Size int        `toml:"size"`
	Mean [3]float32 `toml:"mean"`
	Std  [3]float32 `toml:"std"`
}

// Config is the statically-shaped configuration surface of the episodic
// pipeline. It replaces the loose attribute bags the experiment scripts
// used to pass around: every field the pipeline reads is listed here.
type Config struct {
	// Root is the dataset root containing the phase subdirectories.
	Root string `toml:"root"`
	// Phase selects the meta-set split: train, val or test.
	Phase string `toml:"phase"`

	KShot    int `toml:"k_shot"`
	KEval    int `toml:"k_eval"`
	NClasses int `toml:"n_classes"`
	NEpisode int `toml:"n_episode"`

	// Seed for the episode generator. Zero is a valid seed; callers that
	// want time-based seeding should fill it in themselves.
	Seed int64 `toml:"seed"`

	// Policy is the aggregation policy: "class-as-task" or
	// "dataset-as-task".
	Policy string `toml:"policy"`

	// Workers bounds per-episode decode parallelism. 0 or 1 is serial.
	Workers int `toml:"workers"`

	Image ImageConfig `toml:"image"`
}

// LoadConfig reads and parses a TOML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %v: %w", path, err, ErrConfig)
	}
	return &cfg, nil
}

// Validate checks parameter ranges. It does not touch the filesystem; a
// missing or empty phase directory is reported by NewMetaSet.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root is required: %w", ErrConfig)
	}
	if c.Phase == "" {
		return fmt.Errorf("phase is required: %w", ErrConfig)
	}
	if c.KShot < 1 {
		return fmt.Errorf("k_shot must be at least 1, got %d: %w", c.KShot, ErrConfig)
	}
	if c.KEval < 0 {
		return fmt.Errorf("k_eval must be non-negative, got %d: %w", c.KEval, ErrConfig)
	}
	if c.NClasses < 1 {
		return fmt.Errorf("n_classes must be at least 1, got %d: %w", c.NClasses, ErrConfig)
	}
	if c.NEpisode < 0 {
		return fmt.Errorf("n_episode must be non-negative, got %d: %w", c.NEpisode, ErrConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d: %w", c.Workers, ErrConfig)
	}
	if _, err := ParsePolicy(c.Policy); err != nil {
		return err
	}
	if c.Image.Size < 1 {
		return fmt.Errorf("image size must be at least 1, got %d: %w", c.Image.Size, ErrConfig)
	}
	return nil
}
