package ranking

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/ozzus/cocoplanner/internal/domain/models"
	"github.com/shopspring/decimal"
)

const DefaultTopN = 2

type Option func(*Ranker)

// WithTopN changes how many offers are picked per tag.
func WithTopN(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.topN = n
		}
	}
}

// Ranker picks the cheapest and the fastest offers of a search. It holds no
// per-call state and can be shared between goroutines.
type Ranker struct {
	topN int
}

func NewRanker(opts ...Option) *Ranker {
	r := &Ranker{topN: DefaultTopN}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type candidate struct {
	offer    models.FlightOffer
	price    decimal.Decimal
	currency string
	minutes  int
	route    string
}

func (c candidate) ranked(tag models.Tag) models.RankedOffer {
	return models.RankedOffer{
		Offer:                c.offer,
		Tag:                  tag,
		Price:                c.price,
		Currency:             c.currency,
		TotalDurationMinutes: c.minutes,
	}
}

// sameOffer is structural equality: equal price in the same currency over the
// same ordered flights.
func (c candidate) sameOffer(other candidate) bool {
	return c.price.Equal(other.price) &&
		strings.EqualFold(c.currency, other.currency) &&
		c.route == other.route
}

// Rank filters offers by cabin, then tags the TopN cheapest and the TopN fastest,
// cheapest first. Offers whose duration, timestamps or price cannot be parsed
// are left out and listed in Excluded.
func (r *Ranker) Rank(offers []models.FlightOffer, cabin models.CabinClass) (models.RankedSelection, error) {
	selection := models.RankedSelection{
		CabinClass: cabin,
		Offers:     []models.RankedOffer{},
	}

	for i, offer := range offers {
		if err := checkStructure(i, offer); err != nil {
			return models.RankedSelection{}, err
		}
	}

	candidates := make([]candidate, 0, len(offers))
	for i, offer := range offers {
		c, err := evaluate(offer)
		if err != nil {
			selection.Excluded = append(selection.Excluded, models.ExcludedOffer{
				Index:   i,
				OfferID: offer.ID,
				Reason:  err.Error(),
			})
			continue
		}
		candidates = append(candidates, c)
	}

	candidates, selection.CabinFallback = filterByCabin(candidates, cabin, func(c candidate) models.FlightOffer { return c.offer })
	candidates = dedupe(candidates)

	byPrice := slices.Clone(candidates)
	slices.SortStableFunc(byPrice, func(a, b candidate) int { return a.price.Cmp(b.price) })
	byDuration := slices.Clone(candidates)
	slices.SortStableFunc(byDuration, func(a, b candidate) int { return cmp.Compare(a.minutes, b.minutes) })

	picked := make([]candidate, 0, 2*r.topN)
	for _, c := range byPrice[:min(r.topN, len(byPrice))] {
		picked = append(picked, c)
		selection.Offers = append(selection.Offers, c.ranked(models.TagCheapest))
	}
	for _, c := range byDuration[:min(r.topN, len(byDuration))] {
		if slices.ContainsFunc(picked, c.sameOffer) {
			continue
		}
		picked = append(picked, c)
		selection.Offers = append(selection.Offers, c.ranked(models.TagFastest))
	}

	return selection, nil
}

func checkStructure(index int, offer models.FlightOffer) error {
	if strings.TrimSpace(offer.Price.Total) == "" {
		return &MalformedOfferError{Index: index, OfferID: offer.ID, Reason: "missing price total"}
	}
	if len(offer.Itineraries) == 0 {
		return &MalformedOfferError{Index: index, OfferID: offer.ID, Reason: "no itineraries"}
	}
	for i, itinerary := range offer.Itineraries {
		if len(itinerary.Segments) == 0 {
			return &MalformedOfferError{Index: index, OfferID: offer.ID, Reason: fmt.Sprintf("itinerary %d has no segments", i)}
		}
	}
	return nil
}

func evaluate(offer models.FlightOffer) (candidate, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(offer.Price.Total))
	if err != nil {
		return candidate{}, fmt.Errorf("parse price %q: %w", offer.Price.Total, err)
	}
	if price.IsNegative() {
		return candidate{}, fmt.Errorf("negative price %s", price)
	}

	minutes, err := TotalDuration(offer)
	if err != nil {
		return candidate{}, err
	}

	return candidate{
		offer:    offer,
		price:    price,
		currency: strings.ToUpper(offer.Price.Currency),
		minutes:  minutes,
		route:    routeKey(offer),
	}, nil
}

func routeKey(offer models.FlightOffer) string {
	var b strings.Builder
	for i, itinerary := range offer.Itineraries {
		if i > 0 {
			b.WriteString("||")
		}
		for j, segment := range itinerary.Segments {
			if j > 0 {
				b.WriteByte('|')
			}
			b.WriteString(strings.Join([]string{
				strings.ToUpper(segment.CarrierCode),
				segment.Number,
				strings.ToUpper(segment.Origin),
				strings.ToUpper(segment.Destination),
				segment.DepartureAt,
			}, "/"))
		}
	}
	return b.String()
}

func dedupe(candidates []candidate) []candidate {
	out := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		if slices.ContainsFunc(out, c.sameOffer) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func filterByCabin[T any](items []T, cabin models.CabinClass, offerOf func(T) models.FlightOffer) ([]T, bool) {
	if cabin == "" || len(items) == 0 {
		return items, false
	}

	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if matchesCabin(offerOf(item), cabin) {
			filtered = append(filtered, item)
		}
	}
	if len(filtered) == 0 {
		return items, true
	}
	return filtered, false
}
