package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	derr "github.com/ozzus/cocoplanner/internal/domain/errors"
	"github.com/ozzus/cocoplanner/internal/domain/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type grpcTestRanker struct {
	selection models.RankedSelection
	err       error
	searches  []models.FlightSearch
	cabins    []models.CabinClass
}

func (r *grpcTestRanker) SearchFlights(ctx context.Context, search models.FlightSearch) (models.RankedSelection, error) {
	r.searches = append(r.searches, search)
	return r.selection, r.err
}

func (r *grpcTestRanker) RankOffers(ctx context.Context, offers []models.FlightOffer, cabin models.CabinClass) (models.RankedSelection, error) {
	r.cabins = append(r.cabins, cabin)
	return r.selection, r.err
}

func grpcTestSelection() models.RankedSelection {
	return models.RankedSelection{
		CabinClass:    models.CabinBusiness,
		CabinFallback: true,
		Offers: []models.RankedOffer{{
			Offer:                models.FlightOffer{ID: "7", Price: models.Price{Total: "199.90", Currency: "EUR"}},
			Tag:                  models.TagCheapest,
			Price:                decimal.RequireFromString("199.90"),
			Currency:             "EUR",
			TotalDurationMinutes: 185,
		}},
		Excluded: []models.ExcludedOffer{{Index: 1, OfferID: "8", Reason: "bad duration"}},
	}
}

func grpcTestSearch() models.FlightSearch {
	return models.FlightSearch{
		Routes:     []models.FlightRoute{{Origin: "BER", Destination: "LIS", DepartureDate: "2026-06-01"}},
		Travelers:  models.TravelerCounts{Adults: 1},
		CabinClass: models.CabinBusiness,
	}
}

func startTestServer(t *testing.T, ranker FlightRanker) *Client {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	Register(srv, zap.NewNop(), ranker)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	client, err := NewClient("passthrough:///bufnet", 5*time.Second,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	if err != nil {
		t.Fatalf("unexpected dial error: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClient_SearchFlightsRoundTrip(t *testing.T) {
	ranker := &grpcTestRanker{selection: grpcTestSelection()}
	client := startTestServer(t, ranker)

	got, err := client.SearchFlights(context.Background(), grpcTestSearch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranker.searches) != 1 || ranker.searches[0].Routes[0].Destination != "LIS" {
		t.Fatalf("search did not reach the service: %+v", ranker.searches)
	}
	if !got.CabinFallback || len(got.Offers) != 1 || len(got.Excluded) != 1 {
		t.Fatalf("unexpected selection: %+v", got)
	}
	if !got.Offers[0].Price.Equal(decimal.RequireFromString("199.9")) {
		t.Fatalf("price changed in transit: %s", got.Offers[0].Price)
	}
	if got.Offers[0].Tag != models.TagCheapest || got.Offers[0].TotalDurationMinutes != 185 {
		t.Fatalf("unexpected offer: %+v", got.Offers[0])
	}
}

func TestClient_RankOffersNormalizesCabin(t *testing.T) {
	ranker := &grpcTestRanker{selection: grpcTestSelection()}
	client := startTestServer(t, ranker)

	if _, err := client.RankOffers(context.Background(), nil, "BUSINESS"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranker.cabins) != 1 || ranker.cabins[0] != models.CabinBusiness {
		t.Fatalf("unexpected cabin: %v", ranker.cabins)
	}
}

func TestClient_MapsErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "invalid search", err: derr.ErrInvalidSearch, wantErr: derr.ErrInvalidSearch},
		{name: "malformed", err: derr.ErrMalformedOffer, wantErr: derr.ErrMalformedOffer},
		{name: "source down", err: derr.ErrSourceTemporary, wantErr: derr.ErrSourceTemporary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := startTestServer(t, &grpcTestRanker{err: tt.err})
			_, err := client.SearchFlights(context.Background(), grpcTestSearch())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSearchFlights_RequiresRoutes(t *testing.T) {
	srv := &serverAPI{log: zap.NewNop(), service: &grpcTestRanker{}}

	_, err := srv.SearchFlights(context.Background(), &SearchFlightsRequest{})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("unexpected code: got %v want %v", status.Code(err), codes.InvalidArgument)
	}
}

func TestRankOffers_UnknownCabin(t *testing.T) {
	srv := &serverAPI{log: zap.NewNop(), service: &grpcTestRanker{}}

	_, err := srv.RankOffers(context.Background(), &RankOffersRequest{CabinClass: "steerage"})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("unexpected code: got %v want %v", status.Code(err), codes.InvalidArgument)
	}
}

func TestClient_RankOffersWithoutCabinFilter(t *testing.T) {
	ranker := &grpcTestRanker{selection: grpcTestSelection()}
	client := startTestServer(t, ranker)

	if _, err := client.RankOffers(context.Background(), nil, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranker.cabins) != 1 || ranker.cabins[0] != "" {
		t.Fatalf("expected no cabin filter, got %v", ranker.cabins)
	}
}

func TestMapSearchError(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{err: derr.ErrInvalidSearch, want: codes.InvalidArgument},
		{err: derr.ErrMalformedOffer, want: codes.FailedPrecondition},
		{err: derr.ErrSourceTemporary, want: codes.Unavailable},
		{err: context.DeadlineExceeded, want: codes.DeadlineExceeded},
		{err: errors.New("boom"), want: codes.Internal},
	}
	for _, tt := range tests {
		if got := status.Code(mapSearchError(tt.err)); got != tt.want {
			t.Fatalf("mapSearchError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
