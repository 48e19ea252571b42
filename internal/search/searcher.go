package search

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// CloudDetector reports whether the target deployment is the hosted variant.
type CloudDetector interface {
	IsCloud(ctx context.Context) bool
}

// selfManaged never reports a cloud deployment.
type selfManaged struct{}

func (selfManaged) IsCloud(context.Context) bool { return false }

// Searcher dispatches searches to the legacy or enhanced endpoint according
// to its mode. It is not safe to call SetMode concurrently with Search.
type Searcher struct {
	mode     Mode
	legacy   Executor
	enhanced Executor
	detector CloudDetector
	logger   *slog.Logger
}

// New returns a Searcher in auto mode using transport for both endpoints.
func New(transport Transport, detector CloudDetector, logger *slog.Logger) *Searcher {
	return NewWithExecutors(
		&LegacyExecutor{Transport: transport},
		&EnhancedExecutor{Transport: transport},
		detector,
		logger,
	)
}

// NewWithExecutors returns a Searcher in auto mode using the given executors.
// A nil detector treats the deployment as self-managed.
func NewWithExecutors(legacy, enhanced Executor, detector CloudDetector, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if detector == nil {
		detector = selfManaged{}
	}
	return &Searcher{
		mode:     ModeAuto,
		legacy:   legacy,
		enhanced: enhanced,
		detector: detector,
		logger:   logger,
	}
}

// SetMode validates and stores token. On error the current mode is kept.
func (s *Searcher) SetMode(token string) error {
	m, err := ParseMode(token)
	if err != nil {
		return err
	}
	s.mode = m
	return nil
}

// Mode returns the current mode.
func (s *Searcher) Mode() Mode {
	return s.mode
}

// Search runs req against the endpoint chosen by the current mode.
//
// In auto mode on a cloud deployment the enhanced endpoint is tried first; if
// it fails with an error that signals the endpoint is unavailable, the legacy
// endpoint is queried once and its outcome is returned instead. All other
// errors are returned unchanged.
func (s *Searcher) Search(ctx context.Context, req Request) (Result, error) {
	req = req.withDefaults()
	mode := s.mode
	log := s.logger.With("search", uuid.NewString(), "mode", string(mode))

	switch mode {
	case ModeLegacy:
		return s.run(ctx, log, s.legacy, EndpointLegacy, req)
	case ModeEnhanced:
		return s.run(ctx, log, s.enhanced, EndpointEnhanced, req)
	}

	if !s.detector.IsCloud(ctx) {
		log.Debug("self-managed deployment, using legacy search")
		return s.run(ctx, log, s.legacy, EndpointLegacy, req)
	}

	res, err := s.run(ctx, log, s.enhanced, EndpointEnhanced, req)
	if err == nil {
		return res, nil
	}
	class := Classify(err)
	if !class.FallbackEligible() {
		return Result{}, err
	}
	log.Debug("enhanced search unavailable, falling back to legacy", "reason", class.String())
	return s.run(ctx, log, s.legacy, EndpointLegacy, req)
}

// run executes one endpoint call and normalizes its page.
func (s *Searcher) run(ctx context.Context, log *slog.Logger, exec Executor, endpoint Endpoint, req Request) (Result, error) {
	log.Debug("executing search", "endpoint", string(endpoint), "maxResults", req.MaxResults, "startAt", req.StartAt)
	page, err := exec.Execute(ctx, req)
	if err != nil {
		return Result{}, err
	}
	return Normalize(page, endpoint), nil
}
