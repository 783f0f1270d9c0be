package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	derr "github.com/ozzus/cocoplanner/internal/domain/errors"
	"github.com/ozzus/cocoplanner/internal/domain/models"
	"github.com/ozzus/cocoplanner/internal/infrastructures/amadeus/dto"
)

const offersFixture = `{"data":[{
	"id":"1","source":"GDS",
	"itineraries":[{"duration":"PT2H","segments":[
		{"id":"1","departure":{"iataCode":"BER","at":"2026-06-01T08:00:00"},"arrival":{"iataCode":"LIS","at":"2026-06-01T10:00:00"},"carrierCode":"TP","number":"555","duration":"PT2H"}
	]}],
	"price":{"currency":"EUR","total":"120.40"},
	"travelerPricings":[{"travelerId":"1","travelerType":"ADULT","fareDetailsBySegment":[{"segmentId":"1","cabin":"ECONOMY"}]}]
}]}`

type fakeAmadeus struct {
	tokenCalls  atomic.Int32
	offersCalls atomic.Int32
	rejectFirst bool
	status      int
	tokenStatus int
	tokenState  string
	expiresIn   int
	lastBody    dto.FlightOffersRequest
}

func (f *fakeAmadeus) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.Form.Get("grant_type") != "client_credentials" || r.Form.Get("client_id") != "id" {
			t.Errorf("unexpected token form: %v", r.Form)
		}
		n := f.tokenCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if f.tokenStatus != 0 {
			w.WriteHeader(f.tokenStatus)
			_, _ = w.Write([]byte(`{"error":"server_error"}`))
			return
		}
		state, expiresIn := f.tokenState, f.expiresIn
		if state == "" {
			state = "approved"
		}
		if expiresIn == 0 {
			expiresIn = 1799
		}
		_, _ = fmt.Fprintf(w, `{"type":"amadeusOAuth2Token","state":%q,"access_token":"token-%d","token_type":"Bearer","expires_in":%d}`, state, n, expiresIn)
	})
	mux.HandleFunc(flightOffersPath, func(w http.ResponseWriter, r *http.Request) {
		n := f.offersCalls.Add(1)
		if f.rejectFirst && n == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if f.status != 0 {
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(`{"errors":[{"status":400,"code":477,"title":"INVALID FORMAT","detail":"invalid date"}]}`))
			return
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer token-") {
			t.Errorf("missing bearer token: %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&f.lastBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(offersFixture))
	})
	return mux
}

func testSearch() models.FlightSearch {
	return models.FlightSearch{
		Routes:     []models.FlightRoute{{Origin: "BER", Destination: "LIS", DepartureDate: "2026-06-01"}},
		Travelers:  models.TravelerCounts{Adults: 1},
		CabinClass: models.CabinEconomy,
	}
}

func TestSearchOffers_ReusesToken(t *testing.T) {
	fake := &fakeAmadeus{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	c := NewClient(srv.URL, "id", "secret", "eur", 10, time.Second)
	for range 2 {
		got, err := c.SearchOffers(context.Background(), testSearch())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].Price.Total != "120.40" {
			t.Fatalf("unexpected offers: %+v", got)
		}
	}

	if fake.tokenCalls.Load() != 1 {
		t.Fatalf("token should be cached, calls=%d", fake.tokenCalls.Load())
	}
	if fake.lastBody.CurrencyCode != "EUR" || fake.lastBody.SearchCriteria.MaxFlightOffers != 10 {
		t.Fatalf("unexpected request body: %+v", fake.lastBody)
	}
}

func TestSearchOffers_RefreshesTokenInsideLeeway(t *testing.T) {
	fake := &fakeAmadeus{expiresIn: int(tokenExpiryLeeway / time.Second)}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	c := NewClient(srv.URL, "id", "secret", "EUR", 10, time.Second)
	for range 2 {
		if _, err := c.SearchOffers(context.Background(), testSearch()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if fake.tokenCalls.Load() != 2 {
		t.Fatalf("token expiring within the leeway should be refreshed, calls=%d", fake.tokenCalls.Load())
	}
}

func TestSearchOffers_TokenErrors(t *testing.T) {
	tests := []struct {
		name      string
		fake      *fakeAmadeus
		temporary bool
		contains  string
	}{
		{name: "server error", fake: &fakeAmadeus{tokenStatus: http.StatusServiceUnavailable}, temporary: true},
		{name: "rate limited", fake: &fakeAmadeus{tokenStatus: http.StatusTooManyRequests}, temporary: true},
		{name: "bad credentials", fake: &fakeAmadeus{tokenStatus: http.StatusBadRequest}, temporary: false},
		{name: "not approved", fake: &fakeAmadeus{tokenState: "expired"}, temporary: false, contains: "not approved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.fake.handler(t))
			defer srv.Close()

			c := NewClient(srv.URL, "id", "secret", "EUR", 10, time.Second)
			_, err := c.SearchOffers(context.Background(), testSearch())
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.Is(err, derr.ErrSourceTemporary) != tt.temporary {
				t.Fatalf("unexpected temporary classification: %v", err)
			}
			if tt.contains != "" && !strings.Contains(err.Error(), tt.contains) {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.fake.offersCalls.Load() != 0 {
				t.Fatalf("offers should not be requested without a token")
			}
		})
	}
}

func TestSearchOffers_RetriesAfterUnauthorized(t *testing.T) {
	fake := &fakeAmadeus{rejectFirst: true}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	c := NewClient(srv.URL, "id", "secret", "EUR", 10, time.Second)
	got, err := c.SearchOffers(context.Background(), testSearch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("unexpected offers: %+v", got)
	}
	if fake.tokenCalls.Load() != 2 || fake.offersCalls.Load() != 2 {
		t.Fatalf("unexpected calls: token=%d offers=%d", fake.tokenCalls.Load(), fake.offersCalls.Load())
	}
}

func TestSearchOffers_StatusMapping(t *testing.T) {
	tests := []struct {
		status    int
		temporary bool
	}{
		{status: http.StatusTooManyRequests, temporary: true},
		{status: http.StatusBadGateway, temporary: true},
		{status: http.StatusBadRequest, temporary: false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			fake := &fakeAmadeus{status: tt.status}
			srv := httptest.NewServer(fake.handler(t))
			defer srv.Close()

			c := NewClient(srv.URL, "id", "secret", "EUR", 10, time.Second)
			_, err := c.SearchOffers(context.Background(), testSearch())
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.Is(err, derr.ErrSourceTemporary) != tt.temporary {
				t.Fatalf("unexpected temporary classification: %v", err)
			}
			if !tt.temporary && !strings.Contains(err.Error(), "invalid date") {
				t.Fatalf("error details missing: %v", err)
			}
		})
	}
}

func TestSearchOffers_EmptyCredentials(t *testing.T) {
	c := NewClient("https://test.api.amadeus.com", "", "", "EUR", 10, time.Second)
	_, err := c.SearchOffers(context.Background(), testSearch())
	if err == nil || !strings.Contains(err.Error(), "credentials are empty") {
		t.Fatalf("unexpected error: %v", err)
	}
}
