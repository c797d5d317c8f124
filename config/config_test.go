package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := loadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, "tags.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.JSON)
	assert.Equal(t, "tags.yaml", cfg.Definitions.Path)
	assert.Equal(t, "en", cfg.Collection.ActiveLanguage)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tags.toml")
	content := `
[database]
path = "/var/lib/tags/site.db"

[log]
json = true
level = "debug"

[collection]
active_language = "de"
translated = ["mm_colors"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/tags/site.db", cfg.Database.Path)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "tags.yaml", cfg.Definitions.Path, "unset keys keep defaults")
	assert.Equal(t, "de", cfg.Collection.ActiveLanguage)
	assert.True(t, cfg.Collection.IsTranslated("mm_colors"))
	assert.False(t, cfg.Collection.IsTranslated("mm_sizes"))
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid", Config{Database: DatabaseConfig{Path: "x.db"}, Log: LogConfig{Level: "warn"}}, false},
		{"empty level is info", Config{Database: DatabaseConfig{Path: "x.db"}}, false},
		{"empty database path", Config{Log: LogConfig{Level: "info"}}, true},
		{"unknown level", Config{Database: DatabaseConfig{Path: "x.db"}, Log: LogConfig{Level: "loud"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := &Config{
		Database:    DatabaseConfig{Path: "site.db"},
		Log:         LogConfig{Level: "warn"},
		Definitions: DefinitionsConfig{Path: "defs.yaml"},
		Collection:  CollectionConfig{ActiveLanguage: "fr", FallbackLanguage: "en"},
	}

	require.NoError(t, Save(cfg, path))
	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Database, loaded.Database)
	assert.Equal(t, cfg.Definitions, loaded.Definitions)
	assert.Equal(t, "fr", loaded.Collection.ActiveLanguage)

	// Second save keeps a backup of the first
	cfg.Log.Level = "error"
	require.NoError(t, Save(cfg, path))
	_, err = os.Stat(path + ".back")
	assert.NoError(t, err)
}

func TestSave_RejectsInvalid(t *testing.T) {
	err := Save(&Config{}, filepath.Join(t.TempDir(), "config.toml"))
	assert.Error(t, err)
}
