package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appcfg "github.com/bookwright/core/internal/config"
	"go.uber.org/zap"
)

// ErrNoProvider is returned when no enabled provider is configured.
var ErrNoProvider = errors.New("no text generation provider is enabled")

// GatewayError wraps a generation Failure as an error. Callers can map
// the Kind to a transport status without parsing message strings.
type GatewayError struct {
	Kind   FailureKind
	Reason string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("generation failed (%s): %s", e.Kind, e.Reason)
}

// Service coordinates prompt building, provider calls and outline parsing.
type Service struct {
	cfg        appcfg.AIConfig
	logger     *zap.Logger
	newGateway func(appcfg.AIProvider) Gateway
}

func NewService(cfg appcfg.AIConfig, logger *zap.Logger) *Service {
	return &Service{
		cfg:    cfg,
		logger: logger,
		newGateway: func(provider appcfg.AIProvider) Gateway {
			return NewProviderGateway(provider)
		},
	}
}

// GenerateOutline generates and parses a chapter outline for the request.
func (s *Service) GenerateOutline(ctx context.Context, req OutlineRequest) ([]OutlineEntry, error) {
	text, err := s.generate(ctx, req, s.cfg.OutlineModel)
	if err != nil {
		return nil, err
	}

	entries, err := ParseOutline(text)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			s.logger.Warn("outline parse failed",
				zap.String("reason", string(parseErr.Reason)),
				zap.Int("raw_len", len(parseErr.Raw)))
		}
		return nil, err
	}
	return entries, nil
}

// GenerateChapter generates full prose for a single chapter.
func (s *Service) GenerateChapter(ctx context.Context, req ChapterRequest) (string, error) {
	return s.generate(ctx, req, s.cfg.ChapterModel)
}

func (s *Service) generate(ctx context.Context, req Request, modelOverride string) (string, error) {
	provider := SelectProvider(s.cfg)
	if provider == nil {
		return "", ErrNoProvider
	}

	// Per-task model override, e.g. a cheaper model for outlines than for
	// full chapter prose.
	selected := *provider
	if model := strings.TrimSpace(modelOverride); model != "" {
		selected.DefaultModel = model
	}

	result := s.newGateway(selected).Generate(ctx, req)
	if !result.OK() {
		s.logger.Warn("generation call failed",
			zap.String("provider", provider.ID),
			zap.String("kind", string(result.Failure.Kind)),
			zap.String("reason", result.Failure.Reason))
		return "", &GatewayError{Kind: result.Failure.Kind, Reason: result.Failure.Reason}
	}
	return result.Text, nil
}
