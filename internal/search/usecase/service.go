package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/newkenyan/property-search/internal/platform/logger"
	"github.com/newkenyan/property-search/internal/search/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("property-search/usecase")

// SearchRequest is the external shape of a search: a location slug plus
// optional filters. The service resolves the slug itself.
type SearchRequest struct {
	LocationSlug    string
	PropertyType    string
	TransactionType domain.TransactionType
	Bedrooms        int32
	MinPrice        float64
	MaxPrice        float64
	City            string
}

// SearchService ties the Matcher, Broadener and statistics together into the
// request-path flow: resolve location, exact match, widen if thin, summarize.
// It holds no mutable state; every invocation is independent.
type SearchService struct {
	locations    domain.LocationRepository
	matcher      *Matcher
	broadener    *Broadener
	logger       *logger.Logger
	storeTimeout time.Duration
	minimum      int
	cap          int
}

// NewSearchService creates the request-path orchestrator. minimum is the
// exact-result count below which widening kicks in; cap bounds how many
// broadened listings are merged in.
func NewSearchService(
	locations domain.LocationRepository,
	matcher *Matcher,
	broadener *Broadener,
	log *logger.Logger,
	storeTimeout time.Duration,
	minimum, cap int,
) *SearchService {
	return &SearchService{
		locations:    locations,
		matcher:      matcher,
		broadener:    broadener,
		logger:       log.Named("SearchService"),
		storeTimeout: storeTimeout,
		minimum:      minimum,
		cap:          cap,
	}
}

// Search resolves the request's location and returns the merged, deduplicated
// result. Store failures and timeouts on the listing side degrade to an empty
// or narrower result rather than failing the whole request; only an
// unresolvable location is surfaced as an error.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*domain.MatchResult, error) {
	ctx, span := tracer.Start(ctx, "SearchService.Search")
	span.SetAttributes(
		attribute.String("location.slug", req.LocationSlug),
		attribute.String("property_type", req.PropertyType),
		attribute.String("transaction_type", string(req.TransactionType)),
	)
	defer span.End()

	if req.TransactionType != "" && !req.TransactionType.IsValid() {
		return nil, domain.ErrInvalidCriteria
	}

	loc, err := s.locations.FindBySlug(ctx, req.LocationSlug)
	if err != nil {
		if errors.Is(err, domain.ErrLocationNotFound) {
			return nil, domain.ErrLocationNotFound
		}
		span.RecordError(err)
		return nil, err
	}

	criteria := domain.MatchCriteria{
		Location:        loc,
		PropertyType:    req.PropertyType,
		TransactionType: req.TransactionType,
		Bedrooms:        req.Bedrooms,
		MinPrice:        req.MinPrice,
		MaxPrice:        req.MaxPrice,
		City:            req.City,
	}

	primary := s.matchPrimary(ctx, criteria)

	if len(primary.Listings) >= s.minimum {
		return primary, nil
	}

	broadenCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	merged, err := s.broadener.Broaden(broadenCtx, primary, criteria, s.minimum, s.cap)
	if err != nil {
		// A browsing surface prefers whatever it has over an error page.
		s.logger.Error("Broadening failed, returning primary result",
			zap.String("location", req.LocationSlug), zap.Error(err))
		span.RecordError(err)
		return primary, nil
	}
	return merged, nil
}

// matchPrimary runs the exact-scope match with a timeout. A timed-out or
// unavailable store yields an empty primary so that broadening still runs;
// partial availability beats a hard failure here.
func (s *SearchService) matchPrimary(ctx context.Context, criteria domain.MatchCriteria) *domain.MatchResult {
	matchCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	primary, err := s.matcher.Match(matchCtx, criteria)
	if err == nil {
		return primary
	}

	if errors.Is(err, domain.ErrStoreUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		s.logger.Warn("Primary match degraded to empty result",
			zap.String("location", criteria.Location.Slug), zap.Error(err))
		return &domain.MatchResult{Stats: Summarize(nil)}
	}

	// Other failures degrade too; the caller sees an empty result, the log
	// carries the cause.
	s.logger.Error("Primary match failed",
		zap.String("location", criteria.Location.Slug), zap.Error(err))
	return &domain.MatchResult{Stats: Summarize(nil)}
}
