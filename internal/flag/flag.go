package flag

import (
	"io"
	"net"
	"strings"

	"github.com/containeroo/tinyflags"
	"github.com/gi8lino/jirasearch/internal/logging"
)

// Config aggregates CLI flags after parsing. Empty values mean "not set" and
// leave the config file value in place.
type Config struct {
	Config     string // Path to config file ("" = flags only)
	JQL        string // Query to run in one-shot mode
	Mode       string // Search mode override
	Fields     []string
	Expand     []string
	MaxResults int
	StartAt    int
	Output     string // Output format override
	Template   string // Output template override

	Deployment        string // auto | cloud | server
	JiraAPIURL        string
	JiraEmail         string
	JiraAuth          string // API token for basic auth
	JiraBearerToken   string
	JiraSkipTLSVerify bool

	Serve       bool   // Run the HTTP API instead of a single search
	ListenAddr  string // HTTP bind address (e.g. ":8080")
	RoutePrefix string // Path prefix to mount the API under (e.g. "/jirasearch")
	Debug       bool
	LogFormat   logging.LogFormat
}

// ParseArgs parses CLI arguments into Config, handling version/help flags.
func ParseArgs(version string, args []string, out io.Writer, getEnv func(string) string) (Config, error) {
	var cfg Config
	tf := tinyflags.NewFlagSet("jirasearch", tinyflags.ContinueOnError)
	tf.Version(version)
	tf.SetGetEnvFn(getEnv)
	tf.EnvPrefix("JIRASEARCH")
	tf.SetOutput(out)

	tf.StringVar(&cfg.Config, "config", "", "Path to config file").Placeholder("PATH").Value()

	// Search
	tf.StringVar(&cfg.JQL, "jql", "", "JQL query to run").Short("q").Value()
	tf.StringVar(&cfg.Mode, "mode", "", "Search mode: auto, enhanced or legacy").Value()
	fields := tf.String("fields", "", "Comma-separated field ids to return").Placeholder("LIST").Value()
	expand := tf.String("expand", "", "Comma-separated expansions (e.g. names)").Placeholder("LIST").Value()
	tf.IntVar(&cfg.MaxResults, "max-results", 0, "Page size (default from config, else 1000)").Value()
	tf.IntVar(&cfg.StartAt, "start-at", 0, "Offset of the first issue (legacy search only)").Value()
	tf.StringVar(&cfg.Output, "output", "", "Output format: text, json, yaml or template").Short("o").Value()
	tf.StringVar(&cfg.Template, "template", "", "Go template used with --output=template").Value()

	// Jira
	tf.StringVar(&cfg.Deployment, "deployment", "", "Deployment type: auto, cloud or server").Value()
	tf.StringVar(&cfg.JiraAPIURL, "jira-api-url", "", "Jira REST API base URL (…/rest/api/2 or /3)").Placeholder("URL").Value()
	tf.StringVar(&cfg.JiraEmail, "jira-email", "", "Email for basic auth").Value()
	tf.StringVar(&cfg.JiraAuth, "jira-auth", "", "API token for basic auth").Value()
	tf.StringVar(&cfg.JiraBearerToken, "jira-bearer-token", "", "Bearer token (personal access token)").Value()
	tf.BoolVar(&cfg.JiraSkipTLSVerify, "jira-skip-tls-verify", false, "Skip TLS verification").Value()

	// Server
	tf.BoolVar(&cfg.Serve, "serve", false, "Serve the search API over HTTP").Value()
	listenAddr := tf.TCPAddr("listen-address", &net.TCPAddr{IP: nil, Port: 8080}, "HTTP server listen address").
		Placeholder("ADDR:PORT").
		Value()
	tf.StringVar(&cfg.RoutePrefix, "route-prefix", "", "Path prefix to mount the API under (e.g. /jirasearch)").Value()

	// Logging
	tf.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging").Value()
	logFormat := tf.String("log-format", "text", "Log format").Choices("text", "json").Short("l").Value()

	// Parse
	if err := tf.Parse(args); err != nil {
		return Config{}, err
	}

	// Post-parse
	cfg.Fields = splitList(*fields)
	cfg.Expand = splitList(*expand)
	cfg.LogFormat = logging.LogFormat(*logFormat)
	cfg.ListenAddr = (*listenAddr).String()

	return cfg, nil
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
