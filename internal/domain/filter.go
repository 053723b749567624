package domain

import "fmt"

// PriceBand is one of the mutually exclusive price buckets.
type PriceBand string

const (
	PriceAll     PriceBand = "all"
	PriceUnder25 PriceBand = "under25"
	Price25To100 PriceBand = "25to100"
	PriceOver100 PriceBand = "over100"
)

// ParsePriceBand maps a wire value to a PriceBand. Empty means PriceAll.
func ParsePriceBand(s string) (PriceBand, error) {
	switch b := PriceBand(s); b {
	case "":
		return PriceAll, nil
	case PriceAll, PriceUnder25, Price25To100, PriceOver100:
		return b, nil
	default:
		return "", fmt.Errorf("unknown price band %q", s)
	}
}

// Contains reports whether price falls within the band.
// under25 is [0,25), 25to100 is [25,100], over100 is (100,inf).
func (b PriceBand) Contains(price float64) bool {
	switch b {
	case PriceUnder25:
		return price >= 0 && price < 25
	case Price25To100:
		return price >= 25 && price <= 100
	case PriceOver100:
		return price > 100
	default:
		return true
	}
}

// RatingFloor is the minimum average rating a product must have.
type RatingFloor string

const (
	RatingAll RatingFloor = "all"
	Rating3   RatingFloor = "3"
	Rating4   RatingFloor = "4"
)

// ParseRatingFloor maps a wire value to a RatingFloor. Empty means RatingAll.
func ParseRatingFloor(s string) (RatingFloor, error) {
	switch f := RatingFloor(s); f {
	case "":
		return RatingAll, nil
	case RatingAll, Rating3, Rating4:
		return f, nil
	default:
		return "", fmt.Errorf("unknown rating floor %q", s)
	}
}

// Min returns the numeric floor, or 0 for RatingAll.
func (f RatingFloor) Min() float64 {
	switch f {
	case Rating3:
		return 3
	case Rating4:
		return 4
	default:
		return 0
	}
}

// FilterCriteria is the full set of active listing filters. A zero value
// means no filtering.
type FilterCriteria struct {
	Query  string      `json:"query"`
	Price  PriceBand   `json:"price"`
	Rating RatingFloor `json:"rating"`
}

// NewFilterCriteria builds criteria from wire values, rejecting unknown
// band or floor values.
func NewFilterCriteria(query, price, rating string) (FilterCriteria, error) {
	band, err := ParsePriceBand(price)
	if err != nil {
		return FilterCriteria{}, err
	}
	floor, err := ParseRatingFloor(rating)
	if err != nil {
		return FilterCriteria{}, err
	}
	return FilterCriteria{Query: query, Price: band, Rating: floor}, nil
}
