package am

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/entigraph/model"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "entigraph.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

// isolate points HOME and cwd at an empty directory so no real config leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	Reset()
	t.Cleanup(Reset)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, DefaultHierarchyPath, cfg.Database.HierarchyPath)
	assert.Equal(t, model.SchemaThing, cfg.Schema.RootType)
	assert.Equal(t, model.DefaultLocales, cfg.Locales.Supported)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.Equal(t, 100, cfg.Search.MaxLimit)
	assert.Equal(t, 2, cfg.Search.MaxFuzziness)
	assert.Equal(t, 20000, cfg.Triples.BatchSize)
	assert.Equal(t, 10000, cfg.Ingest.RefreshEvery)
	assert.Equal(t, 30, cfg.Ingest.RefreshIntervalSeconds)
	assert.False(t, cfg.Metrics.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[database]
path = "/data/wd.db"

[locales]
supported = ["en", "de"]

[search]
max_fuzziness = 1

[ingest]
type_blocklist = ["http://www.wikidata.org/entity/Q4167836"]
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/wd.db", cfg.Database.Path)
	assert.Equal(t, DefaultHierarchyPath, cfg.Database.HierarchyPath, "sibling default survives")
	assert.Equal(t, []string{"en", "de"}, cfg.Locales.Supported)
	assert.Equal(t, 1, cfg.Search.MaxFuzziness)
	assert.Equal(t, 100, cfg.Search.MaxLimit)
	assert.Equal(t, []string{"http://www.wikidata.org/entity/Q4167836"}, cfg.Ingest.TypeBlocklist)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		v := viper.New()
		SetDefaults(v)
		cfg, err := LoadWithViper(v)
		require.NoError(t, err)
		return *cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero limits use defaults", func(c *Config) { c.Search.DefaultLimit, c.Search.MaxLimit = 0, 0 }, false},
		{"negative default limit", func(c *Config) { c.Search.DefaultLimit = -1 }, true},
		{"negative max limit", func(c *Config) { c.Search.MaxLimit = -5 }, true},
		{"max below default", func(c *Config) { c.Search.MaxLimit = 5 }, true},
		{"fuzziness three", func(c *Config) { c.Search.MaxFuzziness = 3 }, true},
		{"fuzziness negative", func(c *Config) { c.Search.MaxFuzziness = -1 }, true},
		{"fuzziness zero", func(c *Config) { c.Search.MaxFuzziness = 0 }, false},
		{"negative batch", func(c *Config) { c.Triples.BatchSize = -1 }, true},
		{"negative refresh every", func(c *Config) { c.Ingest.RefreshEvery = -1 }, true},
		{"negative refresh interval", func(c *Config) { c.Ingest.RefreshIntervalSeconds = -1 }, true},
		{"no locales", func(c *Config) { c.Locales.Supported = nil }, true},
		{"empty locale", func(c *Config) { c.Locales.Supported = []string{"en", ""} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_ProjectConfigFoundFromSubdirectory(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `
[search]
default_limit = 25
`)
	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))
	t.Chdir(sub)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Search.DefaultLimit)
	assert.Equal(t, 100, cfg.Search.MaxLimit)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `
[search]
max_limit = 40
`)
	t.Setenv("ENTIGRAPH_SEARCH_MAX_LIMIT", "50")
	t.Setenv("ENTIGRAPH_DATABASE_PATH", "/tmp/env.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Search.MaxLimit)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
}

func TestLoad_Cached(t *testing.T) {
	isolate(t)
	first, err := Load()
	require.NoError(t, err)
	second, err := Load()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestMergeFiles_Precedence(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	userDir, projectDir := t.TempDir(), t.TempDir()
	user := writeConfig(t, userDir, `
[database]
path = "user.db"
hierarchy_path = "user-types.db"
`)
	project := writeConfig(t, projectDir, `
[database]
path = "project.db"
`)

	v := viper.New()
	SetDefaults(v)
	mergeFiles(v, []configFile{
		{filepath.Join(userDir, "absent.toml"), SourceSystem},
		{user, SourceUser},
		{project, SourceProject},
	})

	assert.Equal(t, "project.db", v.GetString("database.path"))
	assert.Equal(t, "user-types.db", v.GetString("database.hierarchy_path"))
	assert.Equal(t, SourceInfo{Source: SourceProject, Path: project}, ConfigSources["database.path"])
	assert.Equal(t, SourceInfo{Source: SourceUser, Path: user}, ConfigSources["database.hierarchy_path"])
}

func TestGetConfigIntrospection(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `
[schema]
path = "props.toml"
`)
	t.Setenv("ENTIGRAPH_TRIPLES_BATCH_SIZE", "500")

	byKey := map[string]SettingInfo{}
	for _, s := range GetConfigIntrospection() {
		byKey[s.Key] = s
	}

	assert.Equal(t, SourceProject, byKey["schema.path"].Source)
	assert.Equal(t, path, byKey["schema.path"].SourcePath)
	assert.Equal(t, SourceDefault, byKey["search.max_limit"].Source)
	assert.Equal(t, SourceEnvironment, byKey["triples.batch_size"].Source)
	assert.Equal(t, "ENTIGRAPH_TRIPLES_BATCH_SIZE", byKey["triples.batch_size"].SourcePath)
	assert.Equal(t, "props.toml", GetString("schema.path"))
}

func TestComponentOptions(t *testing.T) {
	cfg := Config{
		Schema:  SchemaConfig{RootType: model.SchemaThing},
		Locales: LocalesConfig{Supported: []string{"en", "fr"}},
		Search:  SearchConfig{DefaultLimit: 5, MaxLimit: 50, MaxFuzziness: 1},
		Triples: TriplesConfig{BatchSize: 128},
		Ingest: IngestConfig{
			RefreshEvery:           7,
			RefreshIntervalSeconds: 3,
			TypeBlocklist:          []string{"wd:Q4167836"},
		},
	}

	so := cfg.SearchOptions()
	assert.Equal(t, 5, so.DefaultLimit)
	assert.Equal(t, 50, so.MaxLimit)
	assert.Equal(t, 1, so.MaxFuzziness)

	to := cfg.TriplesOptions()
	assert.Equal(t, 128, to.BatchSize)
	assert.Equal(t, model.SchemaThing, to.RootType)

	lo := cfg.LoaderOptions()
	assert.Equal(t, 7, lo.RefreshEvery)
	assert.Equal(t, 3*time.Second, lo.RefreshInterval)
	assert.Equal(t, []string{"wd:Q4167836"}, lo.TypeBlocklist)
	assert.NotNil(t, lo.Namespaces)

	assert.True(t, cfg.LocaleSet().Contains("fr"))
	assert.False(t, cfg.LocaleSet().Contains("de"))
	assert.Equal(t, len(model.DefaultLocales), (&Config{}).LocaleSet().Len())
}

func TestLoad_SchemaPathFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("ENTIGRAPH_SCHEMA_PATH", "/etc/entigraph/props.toml")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/etc/entigraph/props.toml", cfg.Schema.Path)
}
