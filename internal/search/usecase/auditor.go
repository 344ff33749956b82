package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/newkenyan/property-search/internal/platform/logger"
	"github.com/newkenyan/property-search/internal/platform/metrics"
	"github.com/newkenyan/property-search/internal/search/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Combo is one property-type / transaction combination a location page
// exists for.
type Combo struct {
	PropertyType    string                 `json:"property_type"`
	TransactionType domain.TransactionType `json:"transaction_type"`
}

// DefaultCombos returns the combinations the marketplace publishes pages for.
func DefaultCombos() []Combo {
	types := []string{"House", "Apartment", "Villa", "Maisonette", "Bungalow", "Townhouse", "Studio", "Bedsitter"}
	combos := make([]Combo, 0, len(types)*2)
	for _, t := range types {
		combos = append(combos, Combo{PropertyType: t, TransactionType: domain.TransactionForSale})
		combos = append(combos, Combo{PropertyType: t, TransactionType: domain.TransactionForRent})
	}
	return combos
}

// DeficientPair is a location/combo pair with zero exact-scope matches: a
// dead page until listings arrive for it.
type DeficientPair struct {
	LocationName    string                 `json:"location_name"`
	LocationSlug    string                 `json:"location_slug"`
	LocationType    domain.LocationType    `json:"location_type"`
	County          string                 `json:"county"`
	PropertyType    string                 `json:"property_type"`
	TransactionType domain.TransactionType `json:"transaction_type"`
}

// PairSample records the match count and a few listing titles for a covered
// pair, for spot-checking that matches are sane.
type PairSample struct {
	LocationSlug    string                 `json:"location_slug"`
	PropertyType    string                 `json:"property_type"`
	TransactionType domain.TransactionType `json:"transaction_type"`
	Count           int64                  `json:"count"`
	Titles          []string               `json:"titles,omitempty"`
}

// DeficiencyReport is the output of one coverage run. Deficiencies are data,
// not errors: a report full of them is still a successful run.
type DeficiencyReport struct {
	RunID           string                      `json:"run_id"`
	StartedAt       time.Time                   `json:"started_at"`
	FinishedAt      time.Time                   `json:"finished_at"`
	TotalPairs      int                         `json:"total_pairs"`
	DeficientCount  int                         `json:"deficient_count"`
	CoveragePercent float64                     `json:"coverage_percent"`
	ByLocationType  map[domain.LocationType]int `json:"by_location_type"`
	Deficiencies    []DeficientPair             `json:"deficiencies"`
	Samples         []PairSample                `json:"samples"`
}

// Auditor runs the offline coverage scan: every active location crossed with
// every combo, queried at exact scope only (no broadening, so the report
// reflects true page availability). Store calls are paced by a rate limiter
// and the scan aborts cleanly on context cancellation.
type Auditor struct {
	locations  domain.LocationRepository
	matcher    *Matcher
	limiter    *rate.Limiter
	sampleSize int
	logger     *logger.Logger
	metrics    *metrics.MetricsManager
}

// NewAuditor creates an Auditor. delay is the fixed pause between store
// calls; sampleSize is how many listing titles to record per covered pair,
// 0 disables sampling. mm may be nil when no metrics sink is wired (the CLI
// without a scrape target).
func NewAuditor(
	locations domain.LocationRepository,
	matcher *Matcher,
	delay time.Duration,
	sampleSize int,
	log *logger.Logger,
	mm *metrics.MetricsManager,
) *Auditor {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Auditor{
		locations:  locations,
		matcher:    matcher,
		limiter:    rate.NewLimiter(limit, 1),
		sampleSize: sampleSize,
		logger:     log.Named("Auditor"),
		metrics:    mm,
	}
}

// Run scans locations x combos and reports every pair with zero exact
// matches. On cancellation or store failure the partial report accumulated so
// far is returned together with the error.
func (a *Auditor) Run(ctx context.Context, combos []Combo) (*DeficiencyReport, error) {
	report := &DeficiencyReport{
		RunID:          uuid.NewString(),
		StartedAt:      time.Now().UTC(),
		ByLocationType: map[domain.LocationType]int{},
	}

	locations, err := a.locations.ListActive(ctx)
	if err != nil {
		report.FinishedAt = time.Now().UTC()
		return report, fmt.Errorf("listing active locations: %w", err)
	}

	a.logger.Info("Coverage audit starting",
		zap.String("run_id", report.RunID),
		zap.Int("locations", len(locations)),
		zap.Int("combos", len(combos)))

	for _, loc := range locations {
		for _, combo := range combos {
			if err := a.limiter.Wait(ctx); err != nil {
				a.finish(report)
				return report, fmt.Errorf("audit aborted: %w", err)
			}

			criteria := domain.MatchCriteria{
				Location:        loc,
				PropertyType:    combo.PropertyType,
				TransactionType: combo.TransactionType,
			}
			count, err := a.matcher.countAt(ctx, criteria, loc)
			if err != nil {
				a.finish(report)
				return report, abortError(loc, combo, err)
			}

			report.TotalPairs++
			if a.metrics != nil {
				a.metrics.AuditPairsTotal.Inc()
			}

			if count == 0 {
				report.Deficiencies = append(report.Deficiencies, DeficientPair{
					LocationName:    loc.Name,
					LocationSlug:    loc.Slug,
					LocationType:    loc.Type,
					County:          loc.County,
					PropertyType:    combo.PropertyType,
					TransactionType: combo.TransactionType,
				})
				report.ByLocationType[loc.Type]++
				if a.metrics != nil {
					a.metrics.AuditDeficientTotal.Inc()
				}
				continue
			}

			var titles []string
			if a.sampleSize > 0 {
				if err := a.limiter.Wait(ctx); err != nil {
					a.finish(report)
					return report, fmt.Errorf("audit aborted: %w", err)
				}
				listings, err := a.matcher.matchAt(ctx, criteria, loc, int64(a.sampleSize))
				if err != nil {
					a.finish(report)
					return report, abortError(loc, combo, err)
				}
				for _, l := range listings {
					titles = append(titles, l.Title)
				}
			}
			report.Samples = append(report.Samples, PairSample{
				LocationSlug:    loc.Slug,
				PropertyType:    combo.PropertyType,
				TransactionType: combo.TransactionType,
				Count:           count,
				Titles:          titles,
			})
		}
	}

	a.finish(report)
	a.logger.Info("Coverage audit finished",
		zap.String("run_id", report.RunID),
		zap.Int("total_pairs", report.TotalPairs),
		zap.Int("deficient", report.DeficientCount),
		zap.Float64("coverage_percent", report.CoveragePercent))
	return report, nil
}

func abortError(loc *domain.Location, combo Combo, err error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("audit aborted at %s/%s %s: %w", loc.Slug, combo.PropertyType, combo.TransactionType, err)
	}
	return fmt.Errorf("audit query failed at %s: %w", loc.Slug, err)
}

func (a *Auditor) finish(report *DeficiencyReport) {
	report.FinishedAt = time.Now().UTC()
	report.DeficientCount = len(report.Deficiencies)
	if report.TotalPairs > 0 {
		report.CoveragePercent = float64(report.TotalPairs-report.DeficientCount) / float64(report.TotalPairs) * 100
	}
}
