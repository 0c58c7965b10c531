package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

// Config holds the configuration for the application.
type Config struct {
	Dataverse struct {
		URL          string `mapstructure:"url"`
		TenantID     string `mapstructure:"tenant_id"`
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
	} `mapstructure:"dataverse"`
	Generator struct {
		SchemaDelayMS         int      `mapstructure:"schema_delay_ms"`
		IncludeSystemEntities bool     `mapstructure:"include_system_entities"`
		ExcludeSystemFields   bool     `mapstructure:"exclude_system_fields"`
		Publisher             string   `mapstructure:"publisher"`
		SolutionIDs           []string `mapstructure:"solution_ids"`
	} `mapstructure:"generator"`
	Output struct {
		Dir    string `mapstructure:"dir"`
		Format string `mapstructure:"format"`
	} `mapstructure:"output"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	TLS struct {
		Enable    bool     `mapstructure:"enable"`
		CertFile  string   `mapstructure:"cert_file"`
		KeyFile   string   `mapstructure:"key_file"`
		Hostnames []string `mapstructure:"hostnames"`
	} `mapstructure:"tls"`
}

// LoadConfig loads the configuration from a file and the environment.
// Environment variables use the BLUEPRINT_ prefix with underscores for
// nesting, e.g. BLUEPRINT_DATAVERSE_URL. When file is empty, the default
// search paths apply and a missing file is not an error.
func LoadConfig(file string) (*Config, error) {
	if file != "" {
		viper.SetConfigFile(file)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}
	viper.SetEnvPrefix("BLUEPRINT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// normalize environment url (strip trailing slash if any)
	config.Dataverse.URL = normalizeEnvironmentURL(config.Dataverse.URL)

	return &config, nil
}

// setDefaults registers every key so environment-only values survive
// Unmarshal; viper resolves env vars only for keys it already knows.
func setDefaults() {
	viper.SetDefault("dataverse.url", "")
	viper.SetDefault("dataverse.tenant_id", "")
	viper.SetDefault("dataverse.client_id", "")
	viper.SetDefault("dataverse.client_secret", "")
	viper.SetDefault("generator.schema_delay_ms", 100)
	viper.SetDefault("generator.include_system_entities", false)
	viper.SetDefault("generator.exclude_system_fields", true)
	viper.SetDefault("generator.publisher", "")
	viper.SetDefault("generator.solution_ids", []string{})
	viper.SetDefault("output.dir", ".")
	viper.SetDefault("output.format", "markdown")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("tls.enable", false)
	viper.SetDefault("tls.cert_file", "")
	viper.SetDefault("tls.key_file", "")
}

// SchemaDelay returns the configured per-entity schema fetch spacing.
func (c *Config) SchemaDelay() time.Duration {
	if c.Generator.SchemaDelayMS <= 0 {
		return 0
	}
	return time.Duration(c.Generator.SchemaDelayMS) * time.Millisecond
}

// Scope builds the default generation scope from the configured publisher or
// solution ids. Explicit solution ids win over a publisher prefix.
func (c *Config) Scope() blueprint.Scope {
	scope := blueprint.Scope{
		IncludeSystemEntities: c.Generator.IncludeSystemEntities,
		ExcludeSystemFields:   c.Generator.ExcludeSystemFields,
	}
	if len(c.Generator.SolutionIDs) > 0 {
		scope.Kind = blueprint.ScopeKindSolutions
		scope.SolutionIDs = c.Generator.SolutionIDs
		return scope
	}
	scope.Kind = blueprint.ScopeKindPublisher
	scope.PublisherPrefix = c.Generator.Publisher
	return scope
}

// ValidateDataverse reports the connection settings a client cannot start
// without.
func (c *Config) ValidateDataverse() error {
	var missing []string
	if c.Dataverse.URL == "" {
		missing = append(missing, "dataverse.url")
	}
	if c.Dataverse.TenantID == "" {
		missing = append(missing, "dataverse.tenant_id")
	}
	if c.Dataverse.ClientID == "" {
		missing = append(missing, "dataverse.client_id")
	}
	if c.Dataverse.ClientSecret == "" {
		missing = append(missing, "dataverse.client_secret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// normalizeEnvironmentURL ensures the provided environment URL is in a
// predictable form. It removes any trailing slash and leaves the scheme and
// path intact. This allows users to paste the URL straight from the admin
// center without worrying about double slashes in request paths.
func normalizeEnvironmentURL(input string) string {
	u := strings.TrimSpace(input)
	if strings.HasSuffix(u, "/") {
		u = strings.TrimRight(u, "/")
	}
	return u
}
