// Package am loads the entigraph configuration: built-in defaults, then
// system, user and project TOML files, then ENTIGRAPH_* environment
// variables.
package am

// Config represents the entigraph configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Schema   SchemaConfig   `mapstructure:"schema"`
	Locales  LocalesConfig  `mapstructure:"locales"`
	Search   SearchConfig   `mapstructure:"search"`
	Triples  TriplesConfig  `mapstructure:"triples"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// DatabaseConfig configures the on-disk stores
type DatabaseConfig struct {
	Path          string `mapstructure:"path"`           // SQLite index file
	HierarchyPath string `mapstructure:"hierarchy_path"` // bbolt type hierarchy file
}

// SchemaConfig configures the property schema
type SchemaConfig struct {
	Path     string `mapstructure:"path"`      // TOML property schema file
	RootType string `mapstructure:"root_type"` // Type every entity is an instance of (empty disables)
}

// LocalesConfig lists the supported label locales
type LocalesConfig struct {
	Supported []string `mapstructure:"supported"`
}

// SearchConfig configures result limits and fuzzy matching
type SearchConfig struct {
	DefaultLimit int `mapstructure:"default_limit"` // Used when a request has no limit (default: 10)
	MaxLimit     int `mapstructure:"max_limit"`     // Requests above are clamped (default: 100)
	MaxFuzziness int `mapstructure:"max_fuzziness"` // Last rung of the fuzziness ladder, 0-2 (default: 2)
}

// TriplesConfig configures the triple pattern source
type TriplesConfig struct {
	BatchSize int `mapstructure:"batch_size"` // Documents per scan batch (default: 20000)
}

// IngestConfig configures loading
type IngestConfig struct {
	RefreshEvery           int      `mapstructure:"refresh_every"`            // Upserts between commits (default: 10000)
	RefreshIntervalSeconds int      `mapstructure:"refresh_interval_seconds"` // Background commit period (default: 30)
	TypeBlocklist          []string `mapstructure:"type_blocklist"`           // Reject entities under these types
	TypeVocabulary         []string `mapstructure:"type_vocabulary"`          // Classify entities into these types
}

// MetricsConfig configures Prometheus collectors
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}
