// Package config loads the tag engine configuration.
//
// Values come from (lowest to highest precedence) built-in defaults,
// /etc/tags/config.toml, ~/.tags/config.toml, the first tags.toml found
// walking up from the working directory, and TAGS_* environment variables.
package config

// Config represents the tag engine configuration
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database" toml:"database"`
	Log         LogConfig         `mapstructure:"log" toml:"log"`
	Definitions DefinitionsConfig `mapstructure:"definitions" toml:"definitions"`
	Collection  CollectionConfig  `mapstructure:"collection" toml:"collection"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path" toml:"path"`
}

// LogConfig configures the global logger
type LogConfig struct {
	JSON  bool   `mapstructure:"json" toml:"json"`
	Level string `mapstructure:"level" toml:"level"` // debug, info, warn, error
}

// DefinitionsConfig points at the YAML document holding attribute and
// filter definitions.
type DefinitionsConfig struct {
	Path string `mapstructure:"path" toml:"path"`
}

// CollectionConfig configures the SQL-backed linked collections.
type CollectionConfig struct {
	ActiveLanguage   string   `mapstructure:"active_language" toml:"active_language"`
	FallbackLanguage string   `mapstructure:"fallback_language" toml:"fallback_language"`
	Translated       []string `mapstructure:"translated" toml:"translated"` // collections flagged as translated
}
