package amadeus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	derr "github.com/ozzus/cocoplanner/internal/domain/errors"
	"github.com/ozzus/cocoplanner/internal/domain/models"
	"github.com/ozzus/cocoplanner/internal/infrastructures/amadeus/dto"
	"github.com/ozzus/cocoplanner/internal/infrastructures/amadeus/mappers"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	tokenPath         = "/v1/security/oauth2/token"
	flightOffersPath  = "/v2/shopping/flight-offers"
	tokenExpiryLeeway = 30 * time.Second
)

var (
	errUnauthorized     = errors.New("amadeus token rejected")
	errTokenNotApproved = errors.New("amadeus token not approved")
)

type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	currency     string
	maxOffers    int
	httpClient   *http.Client
	credentials  *clientcredentials.Config

	mu     sync.Mutex
	tokens oauth2.TokenSource
}

func NewClient(baseURL, clientID, clientSecret, currency string, maxOffers int, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://test.api.amadeus.com"
	}
	if strings.TrimSpace(currency) == "" {
		currency = "EUR"
	}
	if maxOffers <= 0 {
		maxOffers = 20
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	baseURL = strings.TrimRight(baseURL, "/")
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)
	return &Client{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		currency:     strings.ToUpper(strings.TrimSpace(currency)),
		maxOffers:    maxOffers,
		httpClient:   &http.Client{Timeout: timeout},
		credentials: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     baseURL + tokenPath,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
	}
}

func (c *Client) SearchOffers(ctx context.Context, search models.FlightSearch) ([]models.FlightOffer, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return nil, fmt.Errorf("amadeus credentials are empty")
	}

	body, err := json.Marshal(mappers.BuildOffersRequest(search, c.currency, c.maxOffers))
	if err != nil {
		return nil, fmt.Errorf("marshal flight offers request: %w", err)
	}

	// A token can be revoked before its announced expiry; retry once with a fresh one.
	for range 2 {
		token, err := c.accessToken()
		if err != nil {
			return nil, err
		}

		offers, err := c.fetchOffers(ctx, token, body)
		if errors.Is(err, errUnauthorized) {
			c.invalidateToken()
			continue
		}
		return offers, err
	}

	return nil, fmt.Errorf("amadeus rejected a fresh token: %w", derr.ErrSourceTemporary)
}

func (c *Client) fetchOffers(ctx context.Context, token *oauth2.Token, body []byte) ([]models.FlightOffer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+flightOffersPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	token.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("amadeus request: %w: %w", derr.ErrSourceTemporary, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var payload dto.FlightOffersResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode amadeus response: %w", err)
	}

	return mappers.ToOffers(payload.Data), nil
}

func (c *Client) accessToken() (*oauth2.Token, error) {
	c.mu.Lock()
	if c.tokens == nil {
		c.tokens = oauth2.ReuseTokenSourceWithExpiry(nil, tokenFetcher{client: c}, tokenExpiryLeeway)
	}
	tokens := c.tokens
	c.mu.Unlock()

	token, err := tokens.Token()
	if err != nil {
		return nil, tokenError(err)
	}
	return token, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = nil
}

// tokenFetcher asks the token endpoint for a new token on every call; the
// reuse source in front of it does the caching.
type tokenFetcher struct {
	client *Client
}

func (f tokenFetcher) Token() (*oauth2.Token, error) {
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, f.client.httpClient)
	token, err := f.client.credentials.Token(ctx)
	if err != nil {
		return nil, err
	}
	if state, ok := token.Extra("state").(string); ok && state != "" && state != "approved" {
		return nil, fmt.Errorf("%w: state=%q", errTokenNotApproved, state)
	}
	return token, nil
}

func tokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		if errors.Is(err, errTokenNotApproved) {
			return err
		}
		return fmt.Errorf("amadeus token request: %w: %w", derr.ErrSourceTemporary, err)
	}

	status := 0
	if retrieveErr.Response != nil {
		status = retrieveErr.Response.StatusCode
	}
	if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
		return fmt.Errorf("amadeus token: status %d: %w", status, derr.ErrSourceTemporary)
	}
	return fmt.Errorf("amadeus token: %w", err)
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return errUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("amadeus status: %s: %w", resp.Status, derr.ErrSourceTemporary)
	default:
		return fmt.Errorf("amadeus status: %s: %s", resp.Status, describeErrors(resp.Body))
	}
}

func describeErrors(body io.Reader) string {
	var payload dto.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, 64<<10)).Decode(&payload); err != nil || len(payload.Errors) == 0 {
		return "no error details"
	}

	details := make([]string, 0, len(payload.Errors))
	for _, e := range payload.Errors {
		if e.Detail != "" {
			details = append(details, e.Title+": "+e.Detail)
			continue
		}
		details = append(details, e.Title)
	}
	return strings.Join(details, "; ")
}
