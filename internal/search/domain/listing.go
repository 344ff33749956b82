package domain

import "time"

// TransactionType is the kind of deal a listing is offered under.
type TransactionType string

const (
	TransactionForSale TransactionType = "for_sale"
	TransactionForRent TransactionType = "for_rent"
)

// IsValid checks if the TransactionType is one of the defined constants.
func (t TransactionType) IsValid() bool {
	return t == TransactionForSale || t == TransactionForRent
}

// Listing is a property listing as stored by the marketplace.
// The geographic fields are free text and historically inconsistent with the
// location catalog, which is why all matching on them is substring based.
type Listing struct {
	ID              string
	Title           string
	PropertyType    string
	TransactionType TransactionType
	Price           float64
	Bedrooms        int32 // 0 means not recorded
	Amenities       []string
	County          string
	City            string
	Address         string
	IsApproved      bool
	IsFeatured      bool
	CreatedAt       time.Time
}

// ListingFilter is the predicate handed to the listing store. String fields
// are matched as case-insensitive substrings; zero values mean "any".
type ListingFilter struct {
	TransactionType TransactionType
	PropertyType    string
	County          string
	// Area is the narrow geographic clause: matched against the city and
	// address fields, or the address alone when AreaAddressOnly is set
	// (estate names only ever appear in addresses).
	Area            string
	AreaAddressOnly bool
	City            string
	Bedrooms        int32
	MinPrice        float64
	MaxPrice        float64
	Limit           int64
}
