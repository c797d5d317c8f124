package commands

import (
	"context"
	"database/sql"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/designs2/attribute-tags/collection"
	"github.com/designs2/attribute-tags/config"
	"github.com/designs2/attribute-tags/db"
	"github.com/designs2/attribute-tags/errors"
	"github.com/designs2/attribute-tags/logger"
	"github.com/designs2/attribute-tags/tags"
)

// Global flags, bound by the root command
var (
	ConfigFile      string
	DatabasePath    string
	DefinitionsPath string
	OutputFormat    string
)

func loadConfig() (*config.Config, error) {
	if ConfigFile != "" {
		return config.LoadFromFile(ConfigFile)
	}
	return config.Load()
}

// Setup initializes the global logger from the configuration and -v flags
// and tags the command context with a fresh request id.
func Setup(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	verbosity, _ := cmd.Flags().GetCount("verbose")
	if err := logger.Initialize(cfg.Log.JSON, logger.VerbosityToLevel(verbosity, cfg.Log.Level)); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithComponent(ctx, cmd.Name())
	cmd.SetContext(logger.WithRequestID(ctx, uuid.NewString()))
	return nil
}

// environment holds everything a command needs to build attributes
type environment struct {
	cfg         *config.Config
	db          *sql.DB
	defs        *tags.Definitions
	collections *collection.Registry
	filters     *collection.DefinitionRegistry
}

// openEnvironment opens and migrates the database, loads the definitions and
// registers the linked collections found in the schema.
func openEnvironment(ctx context.Context) (*environment, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}

	dbPath := cfg.Database.Path
	if DatabasePath != "" {
		dbPath = DatabasePath
	}
	database, err := db.OpenWithMigrations(dbPath, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}

	defsPath := cfg.Definitions.Path
	if DefinitionsPath != "" {
		defsPath = DefinitionsPath
	}
	defs, err := loadDefinitions(defsPath)
	if err != nil {
		database.Close()
		return nil, err
	}

	collections, err := collection.Discover(ctx, database, collection.DiscoverOptions{
		ActiveLanguage:   cfg.Collection.ActiveLanguage,
		FallbackLanguage: cfg.Collection.FallbackLanguage,
		Translated:       cfg.Collection.IsTranslated,
	})
	if err != nil {
		database.Close()
		return nil, errors.Wrap(err, "failed to discover collections")
	}
	// Explicit collection definitions replace the discovered ones
	for _, c := range defs.Collections {
		if c.ActiveLanguage == "" {
			c.ActiveLanguage = cfg.Collection.ActiveLanguage
		}
		if c.FallbackLanguage == "" {
			c.FallbackLanguage = cfg.Collection.FallbackLanguage
		}
		collections.Register(collection.NewTableCollection(database, c))
	}

	return &environment{
		cfg:         cfg,
		db:          database,
		defs:        defs,
		collections: collections,
		filters:     collection.NewDefinitionRegistry(database, defs.Filters...),
	}, nil
}

// loadDefinitions reads the definitions document; a missing file yields an
// empty set so schema commands work without one.
func loadDefinitions(path string) (*tags.Definitions, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Debugw("No definitions file", logger.FieldPath, path)
		return &tags.Definitions{}, nil
	}
	return tags.LoadDefinitions(path)
}

func (e *environment) Close() error {
	return e.db.Close()
}

// settings looks up an attribute by name or id
func (e *environment) settings(ref string) (tags.Settings, error) {
	s, err := e.defs.Attribute(ref)
	if err != nil {
		return s, errors.WithHint(err, "attributes are declared in "+e.cfg.Definitions.Path)
	}
	return s, nil
}

// attribute builds the attribute named by ref
func (e *environment) attribute(ref string) (tags.Attribute, error) {
	s, err := e.settings(ref)
	if err != nil {
		return nil, err
	}
	return tags.New(s, tags.Deps{
		DB:          e.db,
		Collections: e.collections,
		Filters:     e.filters,
		Logger:      logger.ComponentLogger("tags"),
	}), nil
}
