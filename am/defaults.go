package am

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/teranos/entigraph/model"
)

// Default values
const (
	DefaultDatabasePath  = "entigraph.db"
	DefaultHierarchyPath = "entigraph-types.db"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Stores
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("database.hierarchy_path", DefaultHierarchyPath)

	// Schema
	v.SetDefault("schema.root_type", model.SchemaThing)

	// Locales
	v.SetDefault("locales.supported", model.DefaultLocales)

	// Search
	v.SetDefault("search.default_limit", 10)
	v.SetDefault("search.max_limit", 100)
	v.SetDefault("search.max_fuzziness", 2)

	// Triples
	v.SetDefault("triples.batch_size", 20000)

	// Ingest
	v.SetDefault("ingest.refresh_every", 10000)
	v.SetDefault("ingest.refresh_interval_seconds", 30)
	v.SetDefault("ingest.type_blocklist", []string{})
	v.SetDefault("ingest.type_vocabulary", []string{})

	// Metrics
	v.SetDefault("metrics.enabled", false)
}

// BindEnvVars binds keys without a default. AutomaticEnv alone does not
// make them visible to Unmarshal.
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("schema.path", "ENTIGRAPH_SCHEMA_PATH")
}

// GetDatabasePath returns the index path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return DefaultDatabasePath
	}
	return c.Database.Path
}

// GetHierarchyPath returns the type hierarchy path
func (c *Config) GetHierarchyPath() string {
	if c.Database.HierarchyPath == "" {
		return DefaultHierarchyPath
	}
	return c.Database.HierarchyPath
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Database: %s, Hierarchy: %s, Schema: %s, Locales: %v}",
		c.GetDatabasePath(), c.GetHierarchyPath(), c.Schema.Path, c.Locales.Supported)
}
