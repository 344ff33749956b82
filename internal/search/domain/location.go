package domain

import "strings"

// LocationType is the closed set of geographic scopes the catalog knows about.
type LocationType string

const (
	LocationTypeCounty       LocationType = "county"
	LocationTypeNeighborhood LocationType = "neighborhood"
	LocationTypeEstate       LocationType = "estate"
)

// IsValid checks if the LocationType is one of the defined constants.
func (t LocationType) IsValid() bool {
	switch t {
	case LocationTypeCounty, LocationTypeNeighborhood, LocationTypeEstate:
		return true
	}
	return false
}

// Location is a single entry in the geographic catalog.
// Containment is by name: for a county-type location County equals Name,
// for neighborhoods and estates County names the owning county.
type Location struct {
	ID       string
	Name     string
	Slug     string
	Type     LocationType
	County   string
	City     string // set for neighborhoods and estates
	IsActive bool
}

// ParentScope describes one widening step in the containment hierarchy.
type ParentScope struct {
	Type LocationType
	// Names are candidate catalog names for the parent, tried in order.
	// Some localities are catalogued under more than one name, so an
	// estate's neighborhood is looked up by its city first, then by the
	// estate's own name.
	Names []string
}

// WideningPath returns the parent scopes to try, narrowest first, when a
// location's own scope yields too few listings. A county is the root scope
// and has no path.
func (l *Location) WideningPath() []ParentScope {
	switch l.Type {
	case LocationTypeEstate:
		var names []string
		if l.City != "" {
			names = append(names, l.City)
		}
		names = append(names, l.Name)
		return []ParentScope{
			{Type: LocationTypeNeighborhood, Names: names},
			{Type: LocationTypeCounty, Names: countyCandidates(l.County)},
		}
	case LocationTypeNeighborhood:
		return []ParentScope{
			{Type: LocationTypeCounty, Names: countyCandidates(l.County)},
		}
	default:
		return nil
	}
}

// countyCandidates returns the catalog names to try when resolving a declared
// county. Listings and older catalog rows disagree on the " County" suffix,
// so both forms are tried.
func countyCandidates(declared string) []string {
	names := []string{declared}
	if stripped := StripCountySuffix(declared); stripped != declared {
		names = append(names, stripped)
	}
	return names
}

// CountySearchName returns the county name as it should be matched against
// listing rows. The catalog stores "Nairobi County" while listings carry
// anything from "Nairobi" to "Nairobi County", so the suffix is stripped
// before substring matching.
func (l *Location) CountySearchName() string {
	name := l.County
	if l.Type == LocationTypeCounty {
		name = l.Name
	}
	return StripCountySuffix(name)
}

// StripCountySuffix removes a trailing " County" (any case) from a name.
func StripCountySuffix(name string) string {
	trimmed := strings.TrimSpace(name)
	lower := strings.ToLower(trimmed)
	if strings.HasSuffix(lower, " county") {
		return strings.TrimSpace(trimmed[:len(trimmed)-len(" county")])
	}
	return trimmed
}
