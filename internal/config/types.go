package config

import (
	"net/url"
	"time"
)

// Config is the root of the YAML configuration file.
type Config struct {
	Jira   JiraConfig   `yaml:"jira"`
	Search SearchConfig `yaml:"search"`
	Output OutputConfig `yaml:"output"`
	Server ServerConfig `yaml:"server"`
}

// JiraConfig describes the upstream Jira instance.
type JiraConfig struct {
	URL             string         `yaml:"url"`                       // REST base, e.g. https://x.atlassian.net/rest/api/3
	Deployment      string         `yaml:"deployment,omitempty"`      // auto | cloud | server
	SkipTLSVerify   *bool          `yaml:"skipTLSVerify,omitempty"`   // default false
	Timeout         time.Duration  `yaml:"timeout,omitempty"`         // per request
	MaxRetryElapsed *time.Duration `yaml:"maxRetryElapsed,omitempty"` // 0 disables transient retries
	DeploymentTTL   time.Duration  `yaml:"deploymentTTL,omitempty"`   // how long a detected deployment is cached
	Auth            AuthConfig     `yaml:"auth"`

	APIURL *url.URL `yaml:"-"` // parsed URL, set by ValidateConfig
}

// AuthConfig holds either a bearer token or basic credentials.
// Values may reference env:VAR or file:/path.
type AuthConfig struct {
	Bearer string     `yaml:"bearer,omitempty"`
	Basic  *BasicAuth `yaml:"basic,omitempty"`
}

// BasicAuth is an email + API token pair.
type BasicAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	Mode       string   `yaml:"mode,omitempty"`
	Fields     []string `yaml:"fields,omitempty"`
	Expand     []string `yaml:"expand,omitempty"`
	MaxResults int      `yaml:"maxResults,omitempty"`
}

// OutputConfig controls how results are printed.
type OutputConfig struct {
	Format   string `yaml:"format,omitempty"`   // text | json | yaml | template
	Template string `yaml:"template,omitempty"` // text/template source for format=template
}

// ServerConfig tunes the HTTP API.
type ServerConfig struct {
	CacheTTL time.Duration `yaml:"cacheTTL,omitempty"` // 0 disables result caching
}
