package grpc

import (
	"context"
	"errors"

	derr "github.com/ozzus/cocoplanner/internal/domain/errors"
	"github.com/ozzus/cocoplanner/internal/domain/models"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FlightRanker is the part of the flight service exposed over gRPC.
type FlightRanker interface {
	SearchFlights(ctx context.Context, search models.FlightSearch) (models.RankedSelection, error)
	RankOffers(ctx context.Context, offers []models.FlightOffer, cabin models.CabinClass) (models.RankedSelection, error)
}

type serverAPI struct {
	log     *zap.Logger
	service FlightRanker
}

func Register(gRPCServer *grpc.Server, log *zap.Logger, flightService FlightRanker) {
	if log == nil {
		log = zap.NewNop()
	}
	gRPCServer.RegisterService(&flightServiceDesc, &serverAPI{
		log:     log,
		service: flightService,
	})
}

func (s *serverAPI) SearchFlights(ctx context.Context, req *SearchFlightsRequest) (*SelectionResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if len(req.Search.Routes) == 0 {
		return nil, status.Error(codes.InvalidArgument, "search.routes must not be empty")
	}
	if req.Search.CabinClass == "" {
		return nil, status.Error(codes.InvalidArgument, "search.cabin_class is required")
	}

	selection, err := s.service.SearchFlights(ctx, req.Search)
	if err != nil {
		return nil, mapSearchError(err)
	}
	return &SelectionResponse{Selection: selection}, nil
}

func (s *serverAPI) RankOffers(ctx context.Context, req *RankOffersRequest) (*SelectionResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	cabin, ok := models.ParseCabinFilter(string(req.CabinClass))
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "unknown cabin_class %q", req.CabinClass)
	}

	selection, err := s.service.RankOffers(ctx, req.Offers, cabin)
	if err != nil {
		s.log.Warn("rank offers failed", zap.Error(err))
		return nil, mapSearchError(err)
	}
	return &SelectionResponse{Selection: selection}, nil
}

func mapSearchError(err error) error {
	switch {
	case errors.Is(err, derr.ErrInvalidSearch):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, derr.ErrMalformedOffer):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, derr.ErrSourceTemporary):
		return status.Error(codes.Unavailable, "source temporarily unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
