package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/pterm/pterm"

	"github.com/mcoot/flipseven-go/internal/factory"
	pgstorage "github.com/mcoot/flipseven-go/internal/storage/postgres"
	redisstorage "github.com/mcoot/flipseven-go/internal/storage/redis"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds CLI configuration
type Config struct {
	StorageType string
	HistoryFile string
	RedisURL    string
	DatabaseURL string
	ServerURL   string
	Output      string
	Verbose     bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		StorageType: getEnvOrDefault("FLIP7_STORE", factory.StorageTypeFile),
		HistoryFile: getEnvOrDefault("FLIP7_HISTORY_FILE", "games.json"),
		RedisURL:    getEnvOrDefault("FLIP7_REDIS_URL", redisstorage.DefaultConfig().URL),
		DatabaseURL: getEnvOrDefault("FLIP7_DATABASE_URL", pgstorage.DefaultConfig().URL),
		ServerURL:   getEnvOrDefault("FLIP7_SERVER", "http://localhost:8080"),
		Output:      getEnvOrDefault("FLIP7_OUTPUT", FormatText),
		Verbose:     false,
	}
}

// Validate checks the values flags and env can't constrain themselves
func (c *Config) Validate() error {
	if c.Output != FormatText && c.Output != FormatJSON {
		return fmt.Errorf("invalid output format %q: must be text or json", c.Output)
	}
	if !slices.Contains(factory.StorageTypes, c.StorageType) {
		return fmt.Errorf("invalid store %q: must be one of %v", c.StorageType, factory.StorageTypes)
	}
	return nil
}

// Logger builds the CLI logger: warnings only, or everything with --verbose
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level := pterm.LogLevelWarn
	if c.Verbose {
		level = pterm.LogLevelDebug
	}
	return slog.New(pterm.NewSlogHandler(pterm.DefaultLogger.WithLevel(level).WithWriter(w)))
}

// FactoryConfig maps the CLI settings onto the application factory
func (c *Config) FactoryConfig(logger *slog.Logger, seed uint64) factory.Config {
	fc := factory.Config{
		Logger:      logger,
		StorageType: c.StorageType,
		HistoryFile: c.HistoryFile,
		Seed:        seed,
	}

	switch c.StorageType {
	case factory.StorageTypeRedis:
		rc := redisstorage.DefaultConfig()
		rc.URL = c.RedisURL
		fc.RedisConfig = &rc
	case factory.StorageTypePostgres:
		pc := pgstorage.DefaultConfig()
		pc.URL = c.DatabaseURL
		fc.PostgresConfig = &pc
	}

	return fc
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
