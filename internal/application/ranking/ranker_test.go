package ranking

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"

	derr "github.com/ozzus/cocoplanner/internal/domain/errors"
	"github.com/ozzus/cocoplanner/internal/domain/models"
	"github.com/stretchr/testify/require"
)

func TestRank_EmptyInput(t *testing.T) {
	got, err := NewRanker().Rank(nil, models.CabinEconomy)
	require.NoError(t, err)
	require.NotNil(t, got.Offers)
	require.Empty(t, got.Offers)
	require.False(t, got.CabinFallback)
}

func TestRank_PicksCheapestThenFastest(t *testing.T) {
	offers := []models.FlightOffer{
		directOffer("a", "300.00", "PT2H", "TP001"),
		directOffer("b", "150.00", "PT6H", "TP002"),
		directOffer("c", "200.00", "PT5H", "TP003"),
		directOffer("d", "450.00", "PT1H30M", "TP004"),
		directOffer("e", "180.50", "PT4H", "TP005"),
	}

	got, err := NewRanker().Rank(offers, models.CabinEconomy)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "e", "d", "a"}, offerIDs(got))

	require.Equal(t, models.TagCheapest, got.Offers[0].Tag)
	require.Equal(t, models.TagCheapest, got.Offers[1].Tag)
	require.Equal(t, models.TagFastest, got.Offers[2].Tag)
	require.Equal(t, models.TagFastest, got.Offers[3].Tag)
	require.Equal(t, 90, got.Offers[2].TotalDurationMinutes)
	require.Equal(t, "180.5", got.Offers[1].Price.String())
	require.Equal(t, "EUR", got.Offers[1].Currency)
}

func TestRank_OverlapIsNotDuplicated(t *testing.T) {
	offers := []models.FlightOffer{
		directOffer("a", "100", "PT1H", "TP001"),
		directOffer("b", "200", "PT3H", "TP002"),
		directOffer("c", "300", "PT2H", "TP003"),
	}

	got, err := NewRanker().Rank(offers, models.CabinEconomy)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, offerIDs(got))
	require.Equal(t, models.TagFastest, got.Offers[2].Tag)
}

func TestRank_WithoutCabinFilterMergesOverlap(t *testing.T) {
	offers := []models.FlightOffer{
		directOffer("p500", "500", "PT5H", "TP001"),
		directOffer("p300", "300", "PT10H", "TP002"),
		directOffer("p800", "800", "PT3H20M", "TP003"),
	}

	got, err := NewRanker().Rank(offers, "")
	require.NoError(t, err)
	require.False(t, got.CabinFallback)
	require.Equal(t, []string{"p300", "p500", "p800"}, offerIDs(got))
	require.Equal(t, []models.Tag{models.TagCheapest, models.TagCheapest, models.TagFastest},
		[]models.Tag{got.Offers[0].Tag, got.Offers[1].Tag, got.Offers[2].Tag})
	require.Equal(t, 200, got.Offers[2].TotalDurationMinutes)
	require.Equal(t, 300, got.Offers[1].TotalDurationMinutes)
}

func TestRank_SingleOffer(t *testing.T) {
	got, err := NewRanker().Rank([]models.FlightOffer{directOffer("only", "99.99", "PT2H", "TP001")}, models.CabinEconomy)
	require.NoError(t, err)
	require.Len(t, got.Offers, 1)
	require.Equal(t, models.TagCheapest, got.Offers[0].Tag)
}

func TestRank_StructuralDuplicates(t *testing.T) {
	// Same flight and price returned twice under different ids and price notation.
	first := directOffer("1", "100.0", "PT2H", "TP001")
	second := directOffer("2", "100.00", "PT2H", "TP001")
	other := directOffer("3", "150", "PT3H", "TP002")

	got, err := NewRanker().Rank([]models.FlightOffer{first, second, other}, models.CabinEconomy)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "3"}, offerIDs(got))
}

func TestRank_DifferentCurrencyIsDifferentOffer(t *testing.T) {
	eur := directOffer("1", "100", "PT2H", "TP001")
	usd := directOffer("2", "100", "PT2H", "TP001")
	usd.Price.Currency = "USD"

	got, err := NewRanker().Rank([]models.FlightOffer{eur, usd}, models.CabinEconomy)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, offerIDs(got))
}

func TestRank_CabinFilter(t *testing.T) {
	economy := directOffer("eco", "100", "PT2H", "TP001")
	business := directOffer("biz", "900", "PT2H", "TP002")
	business.TravelerPricings[0].FareDetails[0].Cabin = "BUSINESS"

	got, err := NewRanker().Rank([]models.FlightOffer{economy, business}, models.CabinBusiness)
	require.NoError(t, err)
	require.False(t, got.CabinFallback)
	require.Equal(t, []string{"biz"}, offerIDs(got))
	require.Equal(t, models.CabinBusiness, got.CabinClass)
}

func TestRank_CabinFallback(t *testing.T) {
	offers := []models.FlightOffer{
		directOffer("a", "100", "PT2H", "TP001"),
		directOffer("b", "90", "PT3H", "TP002"),
	}
	offers[1].TravelerPricings = nil

	got, err := NewRanker().Rank(offers, models.CabinFirst)
	require.NoError(t, err)
	require.True(t, got.CabinFallback)
	require.Equal(t, []string{"b", "a"}, offerIDs(got))
}

func TestRank_ExcludesUnparseableOffers(t *testing.T) {
	offers := []models.FlightOffer{
		directOffer("ok", "100", "PT2H", "TP001"),
		directOffer("bad-duration", "50", "2 hours", "TP002"),
		directOffer("bad-price", "cheap", "PT1H", "TP003"),
	}

	got, err := NewRanker().Rank(offers, models.CabinEconomy)
	require.NoError(t, err)
	require.Equal(t, []string{"ok"}, offerIDs(got))
	require.Len(t, got.Excluded, 2)
	require.Equal(t, 1, got.Excluded[0].Index)
	require.Equal(t, "bad-duration", got.Excluded[0].OfferID)
	require.Contains(t, got.Excluded[0].Reason, "2 hours")
	require.Equal(t, 2, got.Excluded[1].Index)
}

func TestRank_ExcludesOverflowingDuration(t *testing.T) {
	offers := []models.FlightOffer{
		directOffer("normal", "100", "PT2H", "TP001"),
		directOffer("huge", "200", "PT153722867280912931H", "TP002"),
		directOffer("other", "300", "PT3H", "TP003"),
	}

	got, err := NewRanker().Rank(offers, models.CabinEconomy)
	require.NoError(t, err)
	require.Equal(t, []string{"normal", "other"}, offerIDs(got))
	require.Len(t, got.Excluded, 1)
	require.Equal(t, "huge", got.Excluded[0].OfferID)
	require.Contains(t, got.Excluded[0].Reason, "out of range")
	for _, offer := range got.Offers {
		require.GreaterOrEqual(t, offer.TotalDurationMinutes, 0)
	}
}

func TestRank_MalformedBatch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.FlightOffer)
	}{
		{name: "missing price", mutate: func(o *models.FlightOffer) { o.Price.Total = "" }},
		{name: "no itineraries", mutate: func(o *models.FlightOffer) { o.Itineraries = nil }},
		{name: "empty itinerary", mutate: func(o *models.FlightOffer) { o.Itineraries[0].Segments = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broken := directOffer("broken", "100", "PT2H", "TP002")
			tt.mutate(&broken)
			offers := []models.FlightOffer{directOffer("ok", "100", "PT2H", "TP001"), broken}

			_, err := NewRanker().Rank(offers, models.CabinEconomy)
			require.True(t, errors.Is(err, derr.ErrMalformedOffer), "err=%v", err)

			var malformed *MalformedOfferError
			require.ErrorAs(t, err, &malformed)
			require.Equal(t, 1, malformed.Index)
		})
	}
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	offers := []models.FlightOffer{
		directOffer("first", "100", "PT2H", "TP001"),
		directOffer("second", "100", "PT2H", "TP002"),
		directOffer("third", "100", "PT2H", "TP003"),
	}

	got, err := NewRanker().Rank(offers, models.CabinEconomy)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, offerIDs(got))
}

func TestRank_WithTopN(t *testing.T) {
	offers := make([]models.FlightOffer, 0, 8)
	for i := range 8 {
		offers = append(offers, directOffer(fmt.Sprint(i), fmt.Sprint(100+i), FormatISODuration(1, 59-i), fmt.Sprintf("TP%03d", i)))
	}

	got, err := NewRanker(WithTopN(3)).Rank(offers, models.CabinEconomy)
	require.NoError(t, err)
	require.Equal(t, []string{"0", "1", "2", "7", "6", "5"}, offerIDs(got))
}

func TestRank_IdempotentAndConcurrent(t *testing.T) {
	offers := randomOffers(rand.New(rand.NewPCG(7, 11)), 40)
	ranker := NewRanker()

	want, err := ranker.Rank(offers, models.CabinEconomy)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]models.RankedSelection, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = ranker.Rank(offers, models.CabinEconomy)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		require.Equal(t, offerIDs(want), offerIDs(got))
	}
}

func TestRank_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1024))
	ranker := NewRanker()

	for round := range 50 {
		offers := randomOffers(rng, rng.IntN(12))
		got, err := ranker.Rank(offers, models.CabinEconomy)
		require.NoError(t, err)

		unique := dedupe(mustCandidates(t, offers))
		require.GreaterOrEqual(t, len(got.Offers), min(2, len(unique)), "round %d", round)
		require.LessOrEqual(t, len(got.Offers), min(4, len(unique)), "round %d", round)

		for i, a := range got.Offers {
			require.True(t, slices.ContainsFunc(offers, func(o models.FlightOffer) bool { return o.ID == a.Offer.ID }))
			for _, b := range got.Offers[i+1:] {
				require.NotEqual(t, a.Offer.ID, b.Offer.ID)
			}
		}

		cheapest := got.ByTag(models.TagCheapest)
		for _, c := range unique {
			if slices.ContainsFunc(cheapest, func(r models.RankedOffer) bool { return r.Offer.ID == c.offer.ID }) {
				continue
			}
			for _, picked := range cheapest {
				require.True(t, picked.Price.LessThanOrEqual(c.price), "round %d", round)
			}
		}
		for i := 1; i < len(cheapest); i++ {
			require.True(t, cheapest[i-1].Price.LessThanOrEqual(cheapest[i].Price), "round %d", round)
		}

		fastest := got.ByTag(models.TagFastest)
		for i := 1; i < len(fastest); i++ {
			require.LessOrEqual(t, fastest[i-1].TotalDurationMinutes, fastest[i].TotalDurationMinutes, "round %d", round)
		}
		if len(unique) == 0 {
			continue
		}
		byDuration := slices.Clone(unique)
		slices.SortStableFunc(byDuration, func(a, b candidate) int { return a.minutes - b.minutes })
		cutoff := byDuration[min(2, len(byDuration))-1].minutes
		for _, c := range unique {
			if slices.ContainsFunc(got.Offers, func(r models.RankedOffer) bool { return r.Offer.ID == c.offer.ID }) {
				continue
			}
			require.GreaterOrEqual(t, c.minutes, cutoff, "round %d", round)
			for _, picked := range fastest {
				require.LessOrEqual(t, picked.TotalDurationMinutes, c.minutes, "round %d", round)
			}
		}
	}
}

func mustCandidates(t *testing.T, offers []models.FlightOffer) []candidate {
	t.Helper()
	out := make([]candidate, 0, len(offers))
	for _, offer := range offers {
		c, err := evaluate(offer)
		require.NoError(t, err)
		out = append(out, c)
	}
	return out
}

// randomOffers draws from a small price and flight space so that ties and
// structural duplicates show up.
func randomOffers(rng *rand.Rand, n int) []models.FlightOffer {
	offers := make([]models.FlightOffer, 0, n)
	for i := range n {
		price := fmt.Sprintf("%d.%02d", 50+rng.IntN(5)*25, rng.IntN(2)*50)
		duration := FormatISODuration(1+rng.IntN(4), rng.IntN(4)*15)
		flight := fmt.Sprintf("TP%03d", rng.IntN(6))
		offers = append(offers, directOffer(fmt.Sprintf("offer-%d", i), price, duration, flight))
	}
	return offers
}
