package config

import (
	"github.com/designs2/attribute-tags/errors"
	"github.com/designs2/attribute-tags/logger"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database.path cannot be empty")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrapf(err, "log.level %q", c.Log.Level)
	}
	return nil
}

// IsTranslated reports whether the named collection is listed as translated.
func (c *CollectionConfig) IsTranslated(name string) bool {
	for _, translated := range c.Translated {
		if translated == name {
			return true
		}
	}
	return false
}
