package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// lookupFunc returns the raw value for a configuration key. An empty value
// counts as unset.
type lookupFunc func(key string) string

// Load builds the configuration from environment variables and defaults.
func Load() (*Config, error) {
	return load(os.Getenv)
}

// LoadFile builds the configuration from a YAML file of KEY: value pairs
// using the same keys as the environment:
//
//	SERVER_PORT: 9090
//	API_KEYS: [key-one, key-two]
//
// Environment variables take precedence over the file. An empty path is the
// same as Load.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Load()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	values, err := parseFile(data)
	if err != nil {
		return nil, fmt.Errorf("config load: %s: %w", path, err)
	}

	return load(func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return values[key]
	})
}

func load(lookup lookupFunc) (*Config, error) {
	cfg := &Config{}
	if err := decode(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// parseFile flattens a YAML mapping into string values. Sequences become
// comma-separated lists, matching how list variables are written in the
// environment.
func parseFile(data []byte) (map[string]string, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	values := make(map[string]string, len(raw))
	for key, v := range raw {
		switch v := v.(type) {
		case nil:
		case []any:
			parts := make([]string, len(v))
			for i, p := range v {
				parts[i] = fmt.Sprint(p)
			}
			values[strings.ToUpper(key)] = strings.Join(parts, ",")
		case map[string]any:
			return nil, fmt.Errorf("%s: nested mappings are not supported", key)
		default:
			values[strings.ToUpper(key)] = fmt.Sprint(v)
		}
	}
	return values, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// decode fills every tagged field of the struct v. Nested structs are
// walked; fields without an env tag are left alone.
func decode(v reflect.Value, lookup lookupFunc) error {
	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if sf.Type.Kind() == reflect.Struct {
			if err := decode(fv, lookup); err != nil {
				return err
			}
			continue
		}

		key := sf.Tag.Get("env")
		if key == "" {
			continue
		}

		raw := lookup(key)
		if raw == "" {
			if alt := sf.Tag.Get("envAlt"); alt != "" {
				raw = lookup(alt)
			}
		}
		if raw == "" {
			if sf.Tag.Get("required") == "true" {
				return fmt.Errorf("required variable %s is not set", key)
			}
			raw = sf.Tag.Get("default")
		}
		if raw == "" {
			continue
		}

		if err := assign(fv, raw); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", key, raw, err)
		}
	}
	return nil
}

// assign parses raw into the field's type.
func assign(fv reflect.Value, raw string) error {
	if fv.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return errors.New("invalid duration")
		}
		fv.SetInt(int64(d))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return errors.New("invalid integer")
		}
		fv.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return errors.New("invalid boolean")
		}
		fv.SetBool(b)
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice of %s", fv.Type().Elem().Kind())
		}
		fv.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type %s", fv.Kind())
	}
	return nil
}

// splitList splits a comma-separated value, dropping blank entries.
func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	if c.Database.Enabled() {
		check(c.Database.MaxConns > 0, "DB_MAX_CONNS must be positive")
		check(c.Database.MinConns >= 0, "DB_MIN_CONNS must be non-negative")
		check(c.Database.MaxConns >= c.Database.MinConns,
			"DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", c.Database.MaxConns, c.Database.MinConns)
	}

	check(c.Server.Port > 0 && c.Server.Port <= 65535, "SERVER_PORT (%d) must be 1-65535", c.Server.Port)
	check(c.Server.ReadTimeout >= 0, "SERVER_READ_TIMEOUT must be non-negative")
	check(c.Server.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")

	check(c.Validation.MaxFileSize > 0, "VALIDATE_MAX_FILE_SIZE must be positive")
	check(c.Validation.MaxConcurrent > 0, "VALIDATE_MAX_CONCURRENT must be positive")
	check(c.Validation.MaxWaitTime > 0, "VALIDATE_MAX_WAIT_TIME must be positive")
	check(c.Validation.HistorySize > 0, "VALIDATE_HISTORY_SIZE must be positive")

	if c.Rate.Enabled {
		check(c.Rate.RequestsPerMinute > 0, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
		check(c.Rate.ValidateLimit > 0, "RATE_LIMIT_VALIDATE must be positive when rate limiting is enabled")
	}

	check(!c.Security.RequireAPIKey || len(c.Security.APIKeys) > 0,
		"REQUIRE_API_KEY is true but API_KEYS is empty")

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		check(false, "LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		check(false, "LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)
	}

	if len(problems) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// String renders the config for logging with the database URL and API keys
// masked.
func (c *Config) String() string {
	db := "[DISABLED]"
	if c.Database.Enabled() {
		db = "[MASKED]"
	}

	return fmt.Sprintf("Config{Server: {Addr: %s}, Database: {URL: %s, MaxConns: %d}, "+
		"Validation: {MaxFileSize: %d, MaxConcurrent: %d, SchemaFile: %q, HistorySize: %d}, "+
		"Rate: {Enabled: %v, PerMinute: %d, Validate: %d}, "+
		"Security: {APIKeys: %d configured, RequireAPIKey: %v}, Logging: {Level: %s, Format: %s}}",
		c.Server.Addr(), db, c.Database.MaxConns,
		c.Validation.MaxFileSize, c.Validation.MaxConcurrent, c.Validation.SchemaFile, c.Validation.HistorySize,
		c.Rate.Enabled, c.Rate.RequestsPerMinute, c.Rate.ValidateLimit,
		len(c.Security.APIKeys), c.Security.RequireAPIKey, c.Logging.Level, c.Logging.Format)
}
