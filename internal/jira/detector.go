package jira

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gi8lino/jirasearch/internal/cache"
)

// DefaultDeploymentTTL is how long a detected deployment type is trusted.
const DefaultDeploymentTTL = 10 * time.Minute

// cloudHostSuffixes are host suffixes only used by Atlassian-hosted sites.
var cloudHostSuffixes = []string{".atlassian.net", ".jira.com", ".jira-dev.com"}

// Getter performs one GET against the REST API.
type Getter interface {
	Get(ctx context.Context, path string, out any) error
}

// serverInfo is the subset of GET serverInfo the detector reads.
type serverInfo struct {
	BaseURL        string `json:"baseUrl"`
	Version        string `json:"version"`
	DeploymentType string `json:"deploymentType"` // "Cloud" or "Server"
}

// ServerInfoDetector reports the deployment type by probing serverInfo.
type ServerInfoDetector struct {
	client Getter
	apiURL *url.URL
	cache  *cache.MemCache[bool]
	ttl    time.Duration
	logger *slog.Logger
}

// NewServerInfoDetector returns a detector probing apiURL through client.
// Successful lookups are cached for ttl.
func NewServerInfoDetector(client Getter, apiURL *url.URL, ttl time.Duration, logger *slog.Logger) *ServerInfoDetector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ServerInfoDetector{
		client: client,
		apiURL: apiURL,
		cache:  cache.NewMemCache[bool](),
		ttl:    ttl,
		logger: logger,
	}
}

// IsCloud reports whether the deployment is Jira Cloud. If the lookup fails
// the answer is guessed from the host name and not cached.
func (d *ServerInfoDetector) IsCloud(ctx context.Context) bool {
	key := d.apiURL.String()
	if cloud, ok := d.cache.Get(key); ok {
		return cloud
	}

	var info serverInfo
	if err := d.client.Get(ctx, "serverInfo", &info); err != nil {
		cloud := IsCloudHost(d.apiURL.Hostname())
		d.logger.Warn("server info lookup failed, guessing deployment from host",
			"host", d.apiURL.Hostname(),
			"cloud", cloud,
			"error", err,
		)
		return cloud
	}

	cloud := strings.EqualFold(info.DeploymentType, "Cloud")
	d.logger.Debug("detected deployment", "deploymentType", info.DeploymentType, "version", info.Version)
	d.cache.Set(key, cloud, d.ttl)
	return cloud
}

// IsCloudHost reports whether host belongs to an Atlassian-hosted site.
func IsCloudHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, suffix := range cloudHostSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// StaticDetector reports a fixed deployment type.
type StaticDetector bool

// IsCloud returns the configured value.
func (s StaticDetector) IsCloud(context.Context) bool {
	return bool(s)
}
