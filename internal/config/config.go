package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/containeroo/resolver"
	"github.com/gi8lino/jirasearch/internal/search"
	"gopkg.in/yaml.v3"
)

// Deployment values.
const (
	DeploymentAuto   = "auto"
	DeploymentCloud  = "cloud"
	DeploymentServer = "server"
)

// Output formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatTemplate = "template"
)

// Default values
const (
	defaultTimeout         = 15 * time.Second
	defaultMaxRetryElapsed = 30 * time.Second
	defaultDeploymentTTL   = 10 * time.Minute
)

// apiPath matches REST API base paths such as /rest/api/2 or /rest/api/latest.
var apiPath = regexp.MustCompile(`/rest/api/(2|3|latest)/?$`)

// Deployments returns the accepted deployment values.
func Deployments() []string {
	return []string{DeploymentAuto, DeploymentCloud, DeploymentServer}
}

// Formats returns the accepted output formats.
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatYAML, FormatTemplate}
}

// LoadConfig loads the configuration from the given path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// secretRef points at a config value that may hold a resolver reference.
type secretRef struct {
	name string
	val  *string
}

// ResolveSecrets replaces env:, file: and similar references in the Jira URL
// and credentials with their values.
func ResolveSecrets(cfg *Config) error {
	targets := []secretRef{
		{"jira.url", &cfg.Jira.URL},
		{"jira.auth.bearer", &cfg.Jira.Auth.Bearer},
	}
	if b := cfg.Jira.Auth.Basic; b != nil {
		targets = append(targets,
			secretRef{"jira.auth.basic.username", &b.Username},
			secretRef{"jira.auth.basic.password", &b.Password},
		)
	}

	for _, t := range targets {
		if *t.val == "" {
			continue
		}
		v, err := resolver.ResolveVariable(*t.val)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", t.name, err)
		}
		*t.val = strings.TrimSpace(v)
	}
	return nil
}

// ValidateConfig fills defaults and checks the configuration for consistency.
// All problems are reported at once.
func ValidateConfig(cfg *Config) error {
	setDefaults(cfg)

	var errs []string

	u, err := parseAPIURL(cfg.Jira.URL)
	if err != nil {
		errs = append(errs, "jira.url: "+err.Error())
	}
	cfg.Jira.APIURL = u

	if !slices.Contains(Deployments(), cfg.Jira.Deployment) {
		errs = append(errs, fmt.Sprintf("jira.deployment: %q must be one of %s", cfg.Jira.Deployment, strings.Join(Deployments(), ", ")))
	}
	if cfg.Jira.Timeout < 0 {
		errs = append(errs, "jira.timeout must be >= 0")
	}
	if *cfg.Jira.MaxRetryElapsed < 0 {
		errs = append(errs, "jira.maxRetryElapsed must be >= 0")
	}
	if cfg.Jira.DeploymentTTL < 0 {
		errs = append(errs, "jira.deploymentTTL must be >= 0")
	}

	a := cfg.Jira.Auth
	switch {
	case a.Bearer != "" && a.Basic != nil:
		errs = append(errs, "jira.auth: bearer and basic are mutually exclusive")
	case a.Basic != nil && (a.Basic.Username == "" || a.Basic.Password == ""):
		errs = append(errs, "jira.auth.basic: username and password are required")
	case a.Basic != nil && !strings.Contains(a.Basic.Username, "@"):
		errs = append(errs, "jira.auth.basic.username: email must contain @")
	case a.Bearer == "" && a.Basic == nil:
		errs = append(errs, "jira.auth: bearer or basic is required")
	}

	if _, err := search.ParseMode(cfg.Search.Mode); err != nil {
		errs = append(errs, "search.mode: "+err.Error())
	}
	if cfg.Search.MaxResults < 0 {
		errs = append(errs, "search.maxResults must be >= 0")
	}

	if !slices.Contains(Formats(), cfg.Output.Format) {
		errs = append(errs, fmt.Sprintf("output.format: %q must be one of %s", cfg.Output.Format, strings.Join(Formats(), ", ")))
	}
	if cfg.Output.Format == FormatTemplate && strings.TrimSpace(cfg.Output.Template) == "" {
		errs = append(errs, "output.template is required when output.format is template")
	}

	if cfg.Server.CacheTTL < 0 {
		errs = append(errs, "server.cacheTTL must be >= 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// setDefaults fills in missing values.
func setDefaults(cfg *Config) {
	if cfg.Jira.Deployment == "" {
		cfg.Jira.Deployment = DeploymentAuto
	}
	if cfg.Jira.SkipTLSVerify == nil {
		skip := false
		cfg.Jira.SkipTLSVerify = &skip
	}
	if cfg.Jira.Timeout == 0 {
		cfg.Jira.Timeout = defaultTimeout
	}
	if cfg.Jira.MaxRetryElapsed == nil {
		d := defaultMaxRetryElapsed
		cfg.Jira.MaxRetryElapsed = &d
	}
	if cfg.Jira.DeploymentTTL == 0 {
		cfg.Jira.DeploymentTTL = defaultDeploymentTTL
	}
	if cfg.Search.Mode == "" {
		cfg.Search.Mode = string(search.ModeAuto)
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = search.DefaultMaxResults
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = FormatText
	}
}

// parseAPIURL validates a REST base URL and ensures a trailing slash so
// relative endpoint paths resolve below it.
func parseAPIURL(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("required")
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("host is required")
	}
	if !apiPath.MatchString(u.Path) {
		return nil, errors.New("URL path must end with /rest/api/2, /rest/api/3 or /rest/api/latest")
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}
