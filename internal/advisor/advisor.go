// Package advisor talks to the generative model that suggests ingredient
// mixes and writes species insights. The model is optional: when no
// credential is configured the Unavailable advisor is used and every call
// fails fast with ErrUnavailable.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"aquaform/internal/models"
)

var (
	ErrUnavailable   = errors.New("AI advisor unavailable")
	ErrEmptyResponse = errors.New("no response from AI")
)

const (
	BackendGemini  = "gemini"
	BackendGateway = "gateway"
	BackendNone    = "none"

	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 60 * time.Second

	// NoInsights is returned when the model answers with empty text.
	NoInsights = "No insights available."
)

// Advisor is the AI collaborator. Implementations must not mutate caller state.
type Advisor interface {
	// Available reports whether calls can reach a model at all.
	Available() bool
	Name() string
	Optimize(ctx context.Context, req models.OptimizeRequest) (*models.Suggestion, error)
	Insights(ctx context.Context, speciesName string) (string, error)
}

type Config struct {
	Backend    string
	Model      string
	APIKey     string
	GatewayURL string
	GatewayKey string
	Timeout    time.Duration
}

// New picks an advisor for cfg. A missing credential is not an error: it
// yields an Unavailable advisor explaining why.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Advisor, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	switch cfg.Backend {
	case BackendGemini, "":
		if cfg.APIKey == "" {
			logger.Warn("AI features disabled: API key missing")
			return Unavailable{Reason: "Missing Key"}, nil
		}
		return NewGemini(ctx, cfg, logger)
	case BackendGateway:
		if cfg.GatewayURL == "" || cfg.GatewayKey == "" {
			logger.Warn("AI features disabled: gateway not configured")
			return Unavailable{Reason: "Gateway not configured"}, nil
		}
		return NewGateway(cfg, logger), nil
	case BackendNone:
		return Unavailable{Reason: "Disabled"}, nil
	default:
		return nil, fmt.Errorf("unknown AI backend %q", cfg.Backend)
	}
}

// Unavailable is the advisor used when no model can be reached.
type Unavailable struct {
	Reason string
}

func (Unavailable) Available() bool { return false }

func (u Unavailable) Name() string { return "unavailable" }

func (u Unavailable) Optimize(context.Context, models.OptimizeRequest) (*models.Suggestion, error) {
	return nil, u.err()
}

func (u Unavailable) Insights(context.Context, string) (string, error) {
	return "", u.err()
}

func (u Unavailable) err() error {
	if u.Reason == "" {
		return ErrUnavailable
	}
	return fmt.Errorf("%w: %s", ErrUnavailable, u.Reason)
}

// Status is the short label shown next to the API indicator.
func Status(a Advisor) string {
	if a != nil && a.Available() {
		return "Connected"
	}
	if u, ok := a.(Unavailable); ok && u.Reason != "" {
		return u.Reason
	}
	return "Missing Key"
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
