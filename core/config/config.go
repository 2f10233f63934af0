package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rit3sh-x/mongoschema/core/constants"
)

type Database struct {
	URIEnv   string `yaml:"uri_env"`
	MaxConns int32  `yaml:"max_conns,omitempty"`
	MinConns int32  `yaml:"min_conns,omitempty"`
	URI      string `yaml:"-"`
}

type Config struct {
	SchemaFile string   `yaml:"schema_file"`
	OutputDir  string   `yaml:"output_dir"`
	Generators []string `yaml:"generators"`
	Debug      bool     `yaml:"debug"`
	Database   Database `yaml:"database"`

	// EnvLoaded reports whether the .env file was found and read.
	EnvLoaded bool `yaml:"-"`
}

func Default() *Config {
	return &Config{
		SchemaFile: constants.SCHEMA_FILE,
		OutputDir:  constants.OUTPUT_DIR,
		Generators: []string{constants.GENERATOR_MONGOOSE, constants.GENERATOR_PRISMA},
		Database: Database{
			URIEnv: constants.DATABASE_URI_ENV,
		},
	}
}

// Load layers configuration: defaults, then the YAML file, then the .env
// file, then the process environment. Missing files are skipped.
func Load(configFile string, envFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %q: %w", configFile, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file %q: %w", configFile, err)
		}
	}

	if envFile != "" {
		err := godotenv.Load(envFile)
		switch {
		case err == nil:
			cfg.EnvLoaded = true
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to load env file %q: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if value := os.Getenv(constants.DEBUG_ENV); value != "" {
		debug, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", constants.DEBUG_ENV, value, err)
		}
		c.Debug = debug
	}
	if value := os.Getenv(constants.OUTPUT_DIR_ENV); value != "" {
		c.OutputDir = value
	}
	if value := os.Getenv(constants.DB_MAX_CONNS_ENV); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			c.Database.MaxConns = int32(n)
		}
	}
	if value := os.Getenv(constants.DB_MIN_CONNS_ENV); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			c.Database.MinConns = int32(n)
		}
	}

	if c.Database.URIEnv == "" {
		c.Database.URIEnv = constants.DATABASE_URI_ENV
	}
	c.Database.URI = os.Getenv(c.Database.URIEnv)
	return nil
}
