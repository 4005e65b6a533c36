package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"dialect-runner-server/models"
)

const DefaultMaxSourceBytes = 64 * 1024

// OutcomeCache stores normalized outcomes keyed by source text. A nil miss
// is reported as (nil, nil). Satisfied by CacheService.
type OutcomeCache interface {
	GetOutcome(ctx context.Context, source string) (*models.Outcome, error)
	SetOutcome(ctx context.Context, source string, outcome models.Outcome) error
}

// ExecuteService drives the execute lifecycle: normalize the request,
// invoke the runtime, compose the wire response. The optional cache serves
// repeat submissions of the same source without re-invoking the runtime.
type ExecuteService struct {
	runner   *RunnerService
	cache    OutcomeCache // nil when caching is disabled
	maxBytes int
}

func NewExecuteService(runner *RunnerService, cache OutcomeCache, maxSourceBytes int) *ExecuteService {
	if maxSourceBytes <= 0 {
		maxSourceBytes = DefaultMaxSourceBytes
	}
	return &ExecuteService{runner: runner, cache: cache, maxBytes: maxSourceBytes}
}

// Normalize validates the raw request and extracts the source text. Pure:
// no side effects, no runtime access.
func (s *ExecuteService) Normalize(req *models.ExecuteRequest) (string, *models.ValidationError) {
	if req == nil || req.Code == nil {
		return "", &models.ValidationError{
			Code:    models.ValidationMissingField,
			Message: "code is required",
		}
	}
	source := *req.Code
	if strings.TrimSpace(source) == "" {
		return "", &models.ValidationError{
			Code:    models.ValidationEmptySource,
			Message: "code cannot be empty",
		}
	}
	if len(source) > s.maxBytes {
		return "", &models.ValidationError{
			Code:    models.ValidationSourceTooLarge,
			Message: fmt.Sprintf("code exceeds maximum size of %d bytes", s.maxBytes),
		}
	}
	return source, nil
}

// Execute runs the full lifecycle. The outcome kind is returned alongside
// the response so the handler can pick a status class; the body shape is
// the same for every kind.
func (s *ExecuteService) Execute(ctx context.Context, req *models.ExecuteRequest) (models.ExecuteResponse, models.OutcomeKind, *models.ValidationError) {
	source, verr := s.Normalize(req)
	if verr != nil {
		return models.ExecuteResponse{}, 0, verr
	}

	// Debug runs carry timing fields that differ per run, so only plain
	// runs go through the cache.
	if s.cache != nil && !req.Debug {
		if cached, err := s.cache.GetOutcome(ctx, source); err != nil {
			log.Printf("Cache lookup failed: %v", err)
		} else if cached != nil {
			return models.Compose(*cached, false), cached.Kind, nil
		}
	}

	outcome := s.runner.Invoke(ctx, source, req.Debug)

	// Internal failures are transient, never cached.
	if s.cache != nil && !req.Debug && outcome.Kind != models.OutcomeInternalError {
		if err := s.cache.SetOutcome(ctx, source, outcome); err != nil {
			log.Printf("Cache store failed: %v", err)
		}
	}

	return models.Compose(outcome, req.Debug), outcome.Kind, nil
}
