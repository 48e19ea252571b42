package app

import (
	"github.com/gi8lino/jirasearch/internal/config"
	"github.com/gi8lino/jirasearch/internal/flag"
)

// applyFlags overlays flags that were set onto the file configuration.
func applyFlags(cfg *config.Config, f flag.Config) {
	if f.JiraAPIURL != "" {
		cfg.Jira.URL = f.JiraAPIURL
	}
	if f.Deployment != "" {
		cfg.Jira.Deployment = f.Deployment
	}
	if f.JiraSkipTLSVerify {
		skip := true
		cfg.Jira.SkipTLSVerify = &skip
	}

	switch {
	case f.JiraBearerToken != "":
		cfg.Jira.Auth = config.AuthConfig{Bearer: f.JiraBearerToken}
	case f.JiraEmail != "" && f.JiraAuth != "":
		cfg.Jira.Auth = config.AuthConfig{Basic: &config.BasicAuth{Username: f.JiraEmail, Password: f.JiraAuth}}
	}

	if f.Mode != "" {
		cfg.Search.Mode = f.Mode
	}
	if len(f.Fields) > 0 {
		cfg.Search.Fields = f.Fields
	}
	if len(f.Expand) > 0 {
		cfg.Search.Expand = f.Expand
	}
	if f.MaxResults > 0 {
		cfg.Search.MaxResults = f.MaxResults
	}

	if f.Output != "" {
		cfg.Output.Format = f.Output
	}
	if f.Template != "" {
		cfg.Output.Template = f.Template
	}
}
