package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/newkenyan/property-search/internal/adapter/repository/cache"
	"github.com/newkenyan/property-search/internal/platform/logger"
	"github.com/newkenyan/property-search/internal/platform/metrics"
	"github.com/newkenyan/property-search/internal/search/domain"
	"github.com/newkenyan/property-search/internal/search/usecase"
	"go.uber.org/zap"
)

// SearchHandler serves match results to the rendering layer.
type SearchHandler struct {
	service     *usecase.SearchService
	resultCache *cache.ResultCache
	metrics     *metrics.MetricsManager
	logger      *logger.Logger
}

// NewSearchHandler creates the handler. resultCache may be nil when Redis is
// not deployed (local development).
func NewSearchHandler(service *usecase.SearchService, resultCache *cache.ResultCache, mm *metrics.MetricsManager, log *logger.Logger) *SearchHandler {
	return &SearchHandler{
		service:     service,
		resultCache: resultCache,
		metrics:     mm,
		logger:      log.Named("SearchHandler"),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// searchResponse is the wire shape of a match result. Listings carry their
// scope tag so the page can visually separate broadened suggestions.
type searchResponse struct {
	Location string                   `json:"location"`
	Listings []listingResponse        `json:"listings"`
	Stats    domain.ListingStatistics `json:"stats"`
	Partial  bool                     `json:"partial,omitempty"`
}

type listingResponse struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	PropertyType    string   `json:"property_type"`
	TransactionType string   `json:"transaction_type"`
	Price           float64  `json:"price"`
	Bedrooms        int32    `json:"bedrooms,omitempty"`
	Amenities       []string `json:"amenities,omitempty"`
	County          string   `json:"county"`
	City            string   `json:"city"`
	Address         string   `json:"address"`
	IsFeatured      bool     `json:"is_featured"`
	MatchScope      string   `json:"match_scope"`
}

// Health reports liveness.
func (h *SearchHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Search handles GET /api/search/{location}. Query parameters:
// property_type, transaction, bedrooms, min_price, max_price, city.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	slug := mux.Vars(r)["location"]
	q := r.URL.Query()

	req := usecase.SearchRequest{
		LocationSlug:    slug,
		PropertyType:    q.Get("property_type"),
		TransactionType: domain.TransactionType(q.Get("transaction")),
		City:            q.Get("city"),
		Bedrooms:        parseInt32Param(q.Get("bedrooms")),
		MinPrice:        parseFloatParam(q.Get("min_price")),
		MaxPrice:        parseFloatParam(q.Get("max_price")),
	}

	h.metrics.MatchRequestsTotal.Inc()

	ctx := r.Context()
	key := cache.Key(req)
	if h.resultCache != nil {
		if cached, _ := h.resultCache.Get(ctx, key); cached != nil {
			h.observe(start, "cache_hit")
			writeJSON(w, http.StatusOK, toResponse(slug, cached))
			return
		}
	}

	result, err := h.service.Search(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLocationNotFound):
			h.observe(start, "not_found")
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "location not found"})
		case errors.Is(err, domain.ErrInvalidCriteria):
			h.observe(start, "bad_request")
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid search criteria"})
		default:
			h.logger.Error("Search failed", zap.String("location", slug), zap.Error(err))
			h.metrics.StoreErrorsTotal.WithLabelValues("search").Inc()
			h.observe(start, "error")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "search unavailable"})
		}
		return
	}

	for _, m := range result.Listings {
		if m.Scope == domain.MatchScopeBroadened {
			h.metrics.BroadenedResultsTotal.Inc()
			break
		}
	}
	if result.Partial {
		h.metrics.PartialResultsTotal.Inc()
	}

	if h.resultCache != nil {
		_ = h.resultCache.Set(ctx, key, result)
	}

	h.observe(start, "ok")
	writeJSON(w, http.StatusOK, toResponse(slug, result))
}

func (h *SearchHandler) observe(start time.Time, outcome string) {
	h.metrics.SearchLatency.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

func toResponse(slug string, result *domain.MatchResult) searchResponse {
	resp := searchResponse{
		Location: slug,
		Listings: make([]listingResponse, 0, len(result.Listings)),
		Stats:    result.Stats,
		Partial:  result.Partial,
	}
	for _, m := range result.Listings {
		l := m.Listing
		resp.Listings = append(resp.Listings, listingResponse{
			ID:              l.ID,
			Title:           l.Title,
			PropertyType:    l.PropertyType,
			TransactionType: string(l.TransactionType),
			Price:           l.Price,
			Bedrooms:        l.Bedrooms,
			Amenities:       l.Amenities,
			County:          l.County,
			City:            l.City,
			Address:         l.Address,
			IsFeatured:      l.IsFeatured,
			MatchScope:      string(m.Scope),
		})
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func parseInt32Param(s string) int32 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil || v < 0 {
		return 0
	}
	return int32(v)
}

func parseFloatParam(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
