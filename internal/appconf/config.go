// Package appconf holds the server configuration. Values come from built-in
// defaults, an optional YAML file, a .env file plus MMT_* environment
// variables, and finally command-line flags, in that order.
package appconf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "MMT_"

type Config struct {
	Port        int         `yaml:"port" validate:"min=1,max=65535"`
	Env         Environment `yaml:"env" validate:"gte=0,lte=2"`
	ApiKeys     []string    `yaml:"api-keys" validate:"min=1,dive,required"`
	RateLimit   int         `yaml:"rate-limit" validate:"min=1"` // requests per second per API key
	DataPath    string      `yaml:"data-path" validate:"required"`
	ImportFile  string      `yaml:"import-file"`
	GtfsFile    string      `yaml:"gtfs-file"`
	FarePerHour float64     `yaml:"fare-per-hour" validate:"gte=0"`
	LogLevel    string      `yaml:"log-level" validate:"oneof=debug info warn error"`
}

func Default() Config {
	return Config{
		Port:        4000,
		Env:         Development,
		ApiKeys:     []string{"test"},
		RateLimit:   100,
		DataPath:    "mmt.db",
		FarePerHour: 10,
		LogLevel:    "info",
	}
}

// LoadFile overlays the YAML file at path onto cfg. Keys missing from the
// file keep their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// LoadEnv overlays MMT_* variables onto cfg. Variables set in the process
// environment win over those read from envFile; a missing envFile is not an
// error.
func LoadEnv(cfg *Config, envFile string) error {
	fileValues := map[string]string{}
	if envFile != "" {
		values, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileValues = values
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("reading %s: %w", envFile, err)
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			return v, true
		}
		v, ok := fileValues[envPrefix+key]
		return v, ok
	}
	return applyEnv(cfg, lookup)
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error
	if v, ok := lookup("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sPORT: %w", envPrefix, err))
		}
		cfg.Port = port
	}
	if v, ok := lookup("ENV"); ok {
		env, err := ParseEnvironment(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sENV: %w", envPrefix, err))
		}
		cfg.Env = env
	}
	if v, ok := lookup("API_KEYS"); ok {
		cfg.ApiKeys = ParseAPIKeys(v)
	}
	if v, ok := lookup("RATE_LIMIT"); ok {
		limit, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sRATE_LIMIT: %w", envPrefix, err))
		}
		cfg.RateLimit = limit
	}
	if v, ok := lookup("DATA_PATH"); ok {
		cfg.DataPath = v
	}
	if v, ok := lookup("IMPORT_FILE"); ok {
		cfg.ImportFile = v
	}
	if v, ok := lookup("GTFS_FILE"); ok {
		cfg.GtfsFile = v
	}
	if v, ok := lookup("FARE_PER_HOUR"); ok {
		fare, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sFARE_PER_HOUR: %w", envPrefix, err))
		}
		cfg.FarePerHour = fare
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	return errors.Join(errs...)
}

// ParseAPIKeys splits a comma separated key list, dropping blanks.
func ParseAPIKeys(list string) []string {
	var keys []string
	for _, k := range strings.Split(list, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Validate checks the final configuration. The test environment only
// accepts an in-memory data store.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, ", "))
		}
		return err
	}
	if c.Env == Test && c.DataPath != ":memory:" {
		return fmt.Errorf("invalid configuration: test environment must use in-memory storage, got %q", c.DataPath)
	}
	return nil
}
