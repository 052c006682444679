package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "SHIFU"

// RuntimeProps are environment-level properties which tune worker behaviour
// independently of the model configuration document
type RuntimeProps struct {
	EpochsPerIteration int      `mapstructure:"epochsPerIteration"` // local epochs run per global iteration
	MemoryFraction     float64  `mapstructure:"memoryFraction"`     // fraction of available memory offered to in-memory dataset tiers
	DryRun             bool     `mapstructure:"dryRun"`             // iff true, iterations are no-ops used to validate data plumbing
	PoissonSampling    bool     `mapstructure:"poissonSampling"`    // iff true, bagging with replacement uses Poisson(1) draws
	TrainOnDisk        bool     `mapstructure:"trainOnDisk"`        // force disk-backed dataset tiers
	CrossOver          bool     `mapstructure:"crossOver"`          // force per-iteration engine reseeding
	TempDir            string   `mapstructure:"tempDir"`            // location for disk-backed dataset tiers
	HDFSAddresses      []string `mapstructure:"hdfsAddresses"`      // namenode addresses for the HDFS source type
	HDFSUser           string   `mapstructure:"hdfsUser"`           // user for HDFS access
	LogLevel           string   `mapstructure:"logLevel"`           // minimum level for emitted logs
}

// LoadRuntimeProps reads properties from an optional file plus SHIFU_-prefixed
// environment variables, applying defaults for absent keys. An empty file path
// loads environment and defaults only.
func LoadRuntimeProps(file string) (*RuntimeProps, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("epochsPerIteration", 1)
	v.SetDefault("memoryFraction", 0.5)
	v.SetDefault("dryRun", false)
	v.SetDefault("poissonSampling", true)
	v.SetDefault("trainOnDisk", false)
	v.SetDefault("crossOver", false)
	v.SetDefault("tempDir", os.TempDir())
	v.SetDefault("hdfsAddresses", []string{})
	v.SetDefault("hdfsUser", "")
	v.SetDefault("logLevel", "info")
	if len(file) > 0 {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read runtime properties %s: %w", file, err)
		}
	}
	props := &RuntimeProps{}
	if err := v.Unmarshal(props); err != nil {
		return nil, fmt.Errorf("unable to decode runtime properties: %w", err)
	}
	ensureDefaultPropValues(props)
	return props, nil
}

func ensureDefaultPropValues(props *RuntimeProps) {
	if props.EpochsPerIteration <= 0 {
		props.EpochsPerIteration = 1
	}
	if props.MemoryFraction <= 0 || props.MemoryFraction > 1 {
		props.MemoryFraction = 0.5
	}
	if len(props.TempDir) == 0 {
		props.TempDir = os.TempDir()
	}
	if len(props.LogLevel) == 0 {
		props.LogLevel = "info"
	}
}
