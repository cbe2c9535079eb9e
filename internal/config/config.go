// SPDX-License-Identifier: Apache-2.0

// Package config loads the lilac-view configuration file.
package config

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/goccy/go-yaml"

	"github.com/lilacml/lilac-view/internal/spans"
)

// configSchema closes the set of accepted keys and bounds their values.
const configSchema = `
#Config: {
	data_dir?:  string & !=""
	log_level?: "debug" | "info" | "warn" | "error"
	namespace?: string
	snippet?: {
		context_len?:     int & >=0
		len_budget?:      int & >0
		score_threshold?: number & >=0 & <=1
	}
}
`

// Config is the decoded configuration. Unset values keep their defaults.
type Config struct {
	// DataDir is the root of the file-backed datasets,
	// laid out as <data_dir>/<namespace>/<dataset>/.
	DataDir   string              `yaml:"data_dir"`
	LogLevel  string              `yaml:"log_level"`
	Namespace string              `yaml:"namespace"`
	Snippet   spans.SnippetConfig `yaml:"snippet"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		DataDir:   "data",
		LogLevel:  "info",
		Namespace: "local",
		Snippet:   spans.DefaultSnippetConfig(),
	}
}

// Load reads and validates the configuration file at path. An empty path
// yields Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(content)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates YAML content against the config schema and decodes it over
// the defaults.
func Parse(content []byte) (Config, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	if err := validate(doc); err != nil {
		return Config{}, err
	}

	var file fileConfig
	if err := yaml.Unmarshal(content, &file); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return file.apply(Default()), nil
}

// fileConfig mirrors Config with pointers so that unset keys are told apart
// from zero values.
type fileConfig struct {
	DataDir   *string `yaml:"data_dir"`
	LogLevel  *string `yaml:"log_level"`
	Namespace *string `yaml:"namespace"`
	Snippet   *struct {
		ContextLen     *int     `yaml:"context_len"`
		LenBudget      *int     `yaml:"len_budget"`
		ScoreThreshold *float64 `yaml:"score_threshold"`
	} `yaml:"snippet"`
}

func (f fileConfig) apply(cfg Config) Config {
	setIf(&cfg.DataDir, f.DataDir)
	setIf(&cfg.LogLevel, f.LogLevel)
	setIf(&cfg.Namespace, f.Namespace)
	if f.Snippet != nil {
		setIf(&cfg.Snippet.ContextLen, f.Snippet.ContextLen)
		setIf(&cfg.Snippet.LenBudget, f.Snippet.LenBudget)
		setIf(&cfg.Snippet.ScoreThreshold, f.Snippet.ScoreThreshold)
	}
	return cfg
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

var errInvalidConfig = errors.New("invalid config")

func validate(doc map[string]any) error {
	if doc == nil {
		doc = map[string]any{}
	}
	ctx := cuecontext.New()
	def := ctx.CompileString(configSchema).LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	value := def.Unify(ctx.Encode(doc))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %w", errInvalidConfig, err)
	}
	return nil
}

// IsInvalid reports whether err comes from a config that failed validation.
func IsInvalid(err error) bool {
	return errors.Is(err, errInvalidConfig)
}
