package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
	"holdem-server/internal/util"
)

// Config provides configuration for the hold'em server
type Config struct {
	loaded         bool
	Addr           string `yaml:"addr" envconfig:"addr"`
	Store          string `yaml:"store" envconfig:"store"`
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	Log            struct {
		Level             string `yaml:"level" envconfig:"level"`
		Format            string `yaml:"format" envconfig:"format"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	} `yaml:"log"`
	Redis struct {
		URL string `yaml:"url" envconfig:"url"`
		// TTL is how long a folded betting round is cached, in seconds
		TTL int `yaml:"ttl" envconfig:"ttl"`
	} `yaml:"redis"`
	AMQP struct {
		URL      string `yaml:"url" envconfig:"url"`
		Exchange string `yaml:"exchange" envconfig:"exchange"`
	} `yaml:"amqp"`
	Table struct {
		SmallBlind    int `yaml:"smallBlind" envconfig:"small_blind"`
		BigBlind      int `yaml:"bigBlind" envconfig:"big_blind"`
		StartingChips int `yaml:"startingChips" envconfig:"starting_chips"`
		MaxPlayers    int `yaml:"maxPlayers" envconfig:"max_players"`
	} `yaml:"table"`
	Simulation struct {
		DefaultTrials int `yaml:"defaultTrials" envconfig:"default_trials"`
		MaxTrials     int `yaml:"maxTrials" envconfig:"max_trials"`
		Workers       int `yaml:"workers" envconfig:"workers"`
	} `yaml:"simulation"`
}

// store backends
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

var config Config

// DefaultConfig returns the configuration used when nothing overrides it
func DefaultConfig() Config {
	var c Config
	c.Addr = ":5000"
	c.Store = StoreMemory
	c.PGDSN = "postgres://postgres@localhost:5432/postgres?sslmode=disable"
	c.MigrationsPath = "./sql"
	c.Log.Level = "info"
	c.Log.Format = "text"
	c.Redis.TTL = 3600
	c.AMQP.Exchange = "holdem.hands"
	c.Table.SmallBlind = 5
	c.Table.BigBlind = 10
	c.Table.StartingChips = 1000
	c.Table.MaxPlayers = 9
	c.Simulation.DefaultTrials = 10_000
	c.Simulation.MaxTrials = 100_000
	c.Simulation.Workers = 4

	return c
}

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// Defaults are overlaid by the YAML file, then by a .env file, then by HOLDEM_* environment variables
func Load() error {
	c := DefaultConfig()

	configFile := util.Getenv("HOLDEM_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err == nil {
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(&c); err != nil {
			return err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := godotenv.Load(util.Getenv("HOLDEM_ENV_FILE", ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := envconfig.Process("holdem", &c); err != nil {
		return err
	}

	c.loaded = true
	config = c
	return nil
}
