package usecase

import (
	"math"
	"sort"

	"github.com/newkenyan/property-search/internal/search/domain"
)

const topAmenities = 5

// Summarize computes the statistics block for a set of listings. It is a pure
// function: deterministic for a given input order, no side effects.
func Summarize(listings []*domain.Listing) domain.ListingStatistics {
	stats := domain.ListingStatistics{
		BedroomDistribution: map[int32]int{},
		PopularAmenities:    []string{},
	}
	if len(listings) == 0 {
		return stats
	}

	stats.TotalCount = len(listings)
	stats.MinPrice = listings[0].Price
	stats.MaxPrice = listings[0].Price

	var sum float64
	for _, l := range listings {
		if l.Price < stats.MinPrice {
			stats.MinPrice = l.Price
		}
		if l.Price > stats.MaxPrice {
			stats.MaxPrice = l.Price
		}
		sum += l.Price
		if l.Bedrooms > 0 {
			stats.BedroomDistribution[l.Bedrooms]++
		}
	}
	// Floor division keeps the average displayable as whole currency.
	stats.AvgPrice = math.Floor(sum / float64(len(listings)))

	stats.PopularAmenities = popularAmenities(listings)
	return stats
}

// popularAmenities frequency-counts amenity strings across all listings and
// returns the top five, ties broken by first appearance.
func popularAmenities(listings []*domain.Listing) []string {
	counts := map[string]int{}
	firstSeen := map[string]int{}
	order := 0
	for _, l := range listings {
		for _, a := range l.Amenities {
			if _, ok := counts[a]; !ok {
				firstSeen[a] = order
				order++
			}
			counts[a]++
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return firstSeen[names[i]] < firstSeen[names[j]]
	})

	if len(names) > topAmenities {
		names = names[:topAmenities]
	}
	return names
}
