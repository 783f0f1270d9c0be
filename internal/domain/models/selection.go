package models

import "github.com/shopspring/decimal"

type Tag string

const (
	TagCheapest Tag = "cheapest"
	TagFastest  Tag = "fastest"
)

type RankedOffer struct {
	Offer                FlightOffer     `json:"offer"`
	Tag                  Tag             `json:"tag"`
	Price                decimal.Decimal `json:"price"`
	Currency             string          `json:"currency"`
	TotalDurationMinutes int             `json:"total_duration_minutes"`
}

type ExcludedOffer struct {
	Index   int    `json:"index"`
	OfferID string `json:"offer_id,omitempty"`
	Reason  string `json:"reason"`
}

type RankedSelection struct {
	CabinClass    CabinClass      `json:"cabin_class,omitempty"`
	CabinFallback bool            `json:"cabin_fallback"`
	Offers        []RankedOffer   `json:"offers"`
	Excluded      []ExcludedOffer `json:"excluded,omitempty"`
}

func (s RankedSelection) Empty() bool {
	return len(s.Offers) == 0
}

func (s RankedSelection) ByTag(tag Tag) []RankedOffer {
	var out []RankedOffer
	for _, offer := range s.Offers {
		if offer.Tag == tag {
			out = append(out, offer)
		}
	}
	return out
}
