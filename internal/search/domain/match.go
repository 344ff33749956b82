package domain

// MatchScope records which geographic scope produced a listing.
type MatchScope string

const (
	// MatchScopeExact marks listings found at the originally requested scope.
	MatchScopeExact MatchScope = "exact"
	// MatchScopeBroadened marks listings found only after widening to a
	// parent scope.
	MatchScopeBroadened MatchScope = "broadened"
)

// MatchCriteria is a single search request. PropertyType and TransactionType
// may be empty, meaning "any". Secondary filters are optional refinements.
type MatchCriteria struct {
	Location        *Location
	PropertyType    string
	TransactionType TransactionType
	Bedrooms        int32
	MinPrice        float64
	MaxPrice        float64
	City            string
}

// MatchedListing is a listing tagged with the scope that produced it.
type MatchedListing struct {
	Listing *Listing
	Scope   MatchScope
}

// MatchResult is an ordered, deduplicated set of matched listings with a
// statistics summary. Exact matches always precede broadened ones.
type MatchResult struct {
	Listings []MatchedListing
	Stats    ListingStatistics
	// Partial is set when a widening step had to be skipped because the
	// containment hierarchy is inconsistent (a declared county that resolves
	// to no catalogued county). The result is still usable, but narrower
	// than requested.
	Partial bool
}

// IDs returns the listing IDs in result order.
func (r *MatchResult) IDs() []string {
	ids := make([]string, 0, len(r.Listings))
	for _, m := range r.Listings {
		ids = append(ids, m.Listing.ID)
	}
	return ids
}

// Contains reports whether a listing ID is already part of the result.
func (r *MatchResult) Contains(id string) bool {
	for _, m := range r.Listings {
		if m.Listing.ID == id {
			return true
		}
	}
	return false
}

// ListingStatistics summarises a result set for stat cards and
// sufficiency decisions.
type ListingStatistics struct {
	TotalCount          int
	MinPrice            float64
	MaxPrice            float64
	AvgPrice            float64
	BedroomDistribution map[int32]int
	PopularAmenities    []string
}
