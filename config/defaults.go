package config

import (
	"github.com/spf13/viper"
)

// DefaultDirPermissions is used when creating ~/.tags
const DefaultDirPermissions = 0750

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "tags.db")

	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")

	v.SetDefault("definitions.path", "tags.yaml")

	v.SetDefault("collection.active_language", "en")
	v.SetDefault("collection.fallback_language", "en")
	v.SetDefault("collection.translated", []string{})
}
