// Package config loads the runtime settings and the vendor transaction
// mapping that drives customer-journal segmentation.
package config

import (
	"github.com/spf13/viper"

	"github.com/termlens/termlens/internal/archive"
	"github.com/termlens/termlens/internal/classify"
	"github.com/termlens/termlens/internal/counters"
)

// Tool holds the tunable settings a run can override via config file or
// environment. Zero values are filled from the built-in defaults.
type Tool struct {
	LineIndicators int    `mapstructure:"line_indicators"`
	MinSample      int    `mapstructure:"min_sample"`
	MinMatches     int    `mapstructure:"min_matches"`
	GenericFloor   int    `mapstructure:"generic_floor"`
	MaxDepth       int    `mapstructure:"max_depth"`
	CounterMarker  string `mapstructure:"counter_marker"`
	Workers        int    `mapstructure:"workers"`
}

// setDefaults registers the built-in values with a viper instance.
func setDefaults(v *viper.Viper) {
	def := classify.DefaultConfig()
	v.SetDefault("line_indicators", def.LineIndicators)
	v.SetDefault("min_sample", def.MinSample)
	v.SetDefault("min_matches", def.MinMatches)
	v.SetDefault("generic_floor", def.GenericFloor)
	v.SetDefault("max_depth", archive.DefaultMaxDepth)
	v.SetDefault("counter_marker", counters.DefaultMarker)
	v.SetDefault("workers", 4)
}

// Load reads the tool configuration. When path is empty it searches the
// working directory for a termlens config file; a missing file is not an
// error, the defaults apply. TERMLENS_* environment variables override
// file values.
func Load(path string) (Tool, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("termlens")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("TERMLENS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Only an explicitly named file must exist.
		if path != "" {
			return Tool{}, err
		}
	}

	var t Tool
	if err := v.Unmarshal(&t); err != nil {
		return Tool{}, err
	}
	return t, nil
}

// Classifier maps the tool settings onto a classifier configuration.
func (t Tool) Classifier() classify.Config {
	return classify.Config{
		LineIndicators: t.LineIndicators,
		MinSample:      t.MinSample,
		MinMatches:     t.MinMatches,
		GenericFloor:   t.GenericFloor,
	}
}
