package grpc

import (
	"context"
	"fmt"
	"time"

	derr "github.com/ozzus/cocoplanner/internal/domain/errors"
	"github.com/ozzus/cocoplanner/internal/domain/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// Client talks to a remote flight service started with `cocoplanner serve`.
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

func NewClient(addr string, timeout time.Duration, opts ...grpc.DialOption) (*Client, error) {
	const op = "grpc.NewClient"

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Client{conn: conn, timeout: timeout}, nil
}

func (c *Client) SearchFlights(ctx context.Context, search models.FlightSearch) (models.RankedSelection, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp SelectionResponse
	if err := c.conn.Invoke(reqCtx, searchFlightsMethod, &SearchFlightsRequest{Search: search}, &resp); err != nil {
		return models.RankedSelection{}, mapStatusError(err)
	}
	return resp.Selection, nil
}

func (c *Client) RankOffers(ctx context.Context, offers []models.FlightOffer, cabin models.CabinClass) (models.RankedSelection, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp SelectionResponse
	req := &RankOffersRequest{Offers: offers, CabinClass: cabin}
	if err := c.conn.Invoke(reqCtx, rankOffersMethod, req, &resp); err != nil {
		return models.RankedSelection{}, mapStatusError(err)
	}
	return resp.Selection, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func mapStatusError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", derr.ErrInvalidSearch, st.Message())
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", derr.ErrMalformedOffer, st.Message())
	case codes.Unavailable:
		return fmt.Errorf("%w: %s", derr.ErrSourceTemporary, st.Message())
	case codes.DeadlineExceeded:
		return fmt.Errorf("%s: %w", st.Message(), context.DeadlineExceeded)
	case codes.Canceled:
		return fmt.Errorf("%s: %w", st.Message(), context.Canceled)
	default:
		return err
	}
}
