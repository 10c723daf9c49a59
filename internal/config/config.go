// Package config loads service settings from defaults, an optional YAML
// file, the environment and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

type Config interface {
	AppConfig
	AuthConfig
	StoreConfig
	EmailConfig
	CorsConfig
	RateLimitConfig

	Validate() error
	Summary() string
}

type mainConfig struct {
	k *koanf.Koanf
}

var _ Config = (*mainConfig)(nil)

type loadOptions struct {
	envFile    string
	configFile string
	flags      *pflag.FlagSet
}

type Option func(*loadOptions)

// WithEnvFile loads KEY=VALUE pairs from path into the process environment
// when the file exists. Variables already set are not overridden.
func WithEnvFile(path string) Option {
	return func(o *loadOptions) {
		o.envFile = path
	}
}

// WithConfigFile layers a YAML file over the defaults.
func WithConfigFile(path string) Option {
	return func(o *loadOptions) {
		o.configFile = path
	}
}

// WithFlags layers explicitly set flags over every other source.
func WithFlags(fs *pflag.FlagSet) Option {
	return func(o *loadOptions) {
		o.flags = fs
	}
}

func New(options ...Option) (Config, error) {
	opts := loadOptions{envFile: ".env"}
	for _, opt := range options {
		opt(&opts)
	}

	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("[config.New] load %s: %w", opts.envFile, err)
		}
	}

	k := koanf.New(".")
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("[config.New] default %s: %w", key, err)
		}
	}

	if opts.configFile != "" {
		if err := k.Load(file.Provider(opts.configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("[config.New] load %s: %w", opts.configFile, err)
		}
	}

	if err := loadEnv(k); err != nil {
		return nil, fmt.Errorf("[config.New] load environment: %w", err)
	}

	if opts.flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opts.flags, ".", k, flagKey(opts.flags)), nil); err != nil {
			return nil, fmt.Errorf("[config.New] load flags: %w", err)
		}
	}

	return &mainConfig{k: k}, nil
}

// flagKey maps a command-line flag onto its config key. Flags with no
// mapping are ignored.
func flagKey(fs *pflag.FlagSet) func(f *pflag.Flag) (string, interface{}) {
	return func(f *pflag.Flag) (string, interface{}) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	}
}
