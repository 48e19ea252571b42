package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gi8lino/jirasearch/internal/config"
	"github.com/gi8lino/jirasearch/internal/flag"
	"github.com/gi8lino/jirasearch/internal/handlers"
	"github.com/gi8lino/jirasearch/internal/jira"
	"github.com/gi8lino/jirasearch/internal/logging"
	"github.com/gi8lino/jirasearch/internal/render"
	"github.com/gi8lino/jirasearch/internal/search"
	"github.com/gi8lino/jirasearch/internal/server"
	"github.com/gi8lino/jirasearch/internal/utils"

	"github.com/containeroo/tinyflags"
)

// Run executes jirasearch. Results go to stdout, logs and usage to stderr.
func Run(ctx context.Context, version, commit string, args []string, stdout, stderr io.Writer, getEnv func(string) string) error {
	// Create a new context that listens for interrupt signals
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Parse command-line flags
	flags, err := flag.ParseArgs(version, args, stderr, getEnv)
	if err != nil {
		if tinyflags.IsHelpRequested(err) || tinyflags.IsVersionRequested(err) {
			fmt.Fprint(stdout, err.Error()) // nolint:errcheck
			return nil
		}
		return fmt.Errorf("parsing error: %w", err)
	}

	// Setup logger
	logger := logging.SetupLogger(flags.LogFormat, flags.Debug, stderr)

	logger.Debug("Starting jirasearch",
		"version", version,
		"commit", commit,
	)

	// Load config
	var cfg config.Config
	if flags.Config != "" {
		cfg, err = config.LoadConfig(flags.Config)
		if err != nil {
			return fmt.Errorf("loading config error: %w", err)
		}
	}
	applyFlags(&cfg, flags)

	if err := config.ResolveSecrets(&cfg); err != nil {
		return fmt.Errorf("resolving secrets error: %w", err)
	}
	if err := config.ValidateConfig(&cfg); err != nil {
		return fmt.Errorf("validating config error: %w", err)
	}

	// Setup jira client
	var email, token string
	if b := cfg.Jira.Auth.Basic; b != nil {
		email, token = b.Username, b.Password
	}
	auth, method, err := jira.ResolveAuth(cfg.Jira.Auth.Bearer, email, token)
	if err != nil {
		return err
	}
	client := jira.NewClient(cfg.Jira.APIURL, auth, *cfg.Jira.SkipTLSVerify, cfg.Jira.Timeout)
	client.MaxRetryElapsed = *cfg.Jira.MaxRetryElapsed

	logger.Debug("jira auth",
		"method", method,
		"header", utils.ObfuscateHeader(utils.GetAuthorizationHeader(auth)),
	)

	// Setup searcher
	searcher := search.New(client, newDetector(cfg.Jira, client, logger), logger)
	if err := searcher.SetMode(cfg.Search.Mode); err != nil {
		return err
	}
	defaults := search.Request{
		Fields:     cfg.Search.Fields,
		Expand:     cfg.Search.Expand,
		MaxResults: cfg.Search.MaxResults,
	}

	if flags.Serve {
		rs := handlers.NewResultSource(searcher, defaults, cfg.Server.CacheTTL)
		router := server.NewRouter(rs, flags.RoutePrefix, logger, flags.Debug)
		logger.Info("Starting jirasearch", "version", version, "mode", searcher.Mode())
		return server.RunHTTPServer(ctx, router, flags.ListenAddr, logger)
	}

	return searchOnce(ctx, searcher, defaults, flags, cfg.Output, stdout)
}

// searchOnce runs the query given on the command line and renders the result.
func searchOnce(ctx context.Context, s *search.Searcher, defaults search.Request, flags flag.Config, out config.OutputConfig, w io.Writer) error {
	if flags.JQL == "" {
		return errors.New("--jql is required unless --serve is set")
	}

	renderer, err := render.New(out.Format, out.Template)
	if err != nil {
		return fmt.Errorf("output error: %w", err)
	}

	req := defaults
	req.JQL = flags.JQL
	req.StartAt = flags.StartAt

	res, err := s.Search(ctx, req)
	if err != nil {
		return fmt.Errorf("search error: %w", err)
	}
	return renderer.Render(w, res)
}

// newDetector returns the deployment detector for the configured deployment.
func newDetector(cfg config.JiraConfig, client jira.Getter, logger *slog.Logger) search.CloudDetector {
	switch cfg.Deployment {
	case config.DeploymentCloud:
		return jira.StaticDetector(true)
	case config.DeploymentServer:
		return jira.StaticDetector(false)
	default:
		return jira.NewServerInfoDetector(client, cfg.APIURL, cfg.DeploymentTTL, logger)
	}
}
