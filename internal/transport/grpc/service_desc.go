package grpc

import (
	"context"

	"github.com/ozzus/cocoplanner/internal/domain/models"
	"google.golang.org/grpc"
)

const (
	ServiceName = "cocoplanner.flights.v1.FlightService"

	searchFlightsMethod = "/" + ServiceName + "/SearchFlights"
	rankOffersMethod    = "/" + ServiceName + "/RankOffers"
)

type SearchFlightsRequest struct {
	Search models.FlightSearch `json:"search"`
}

type RankOffersRequest struct {
	Offers     []models.FlightOffer `json:"offers"`
	CabinClass models.CabinClass    `json:"cabin_class"`
}

type SelectionResponse struct {
	Selection models.RankedSelection `json:"selection"`
}

type FlightServiceServer interface {
	SearchFlights(ctx context.Context, req *SearchFlightsRequest) (*SelectionResponse, error)
	RankOffers(ctx context.Context, req *RankOffersRequest) (*SelectionResponse, error)
}

var flightServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FlightServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SearchFlights", Handler: searchFlightsHandler},
		{MethodName: "RankOffers", Handler: rankOffersHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func searchFlightsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SearchFlightsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlightServiceServer).SearchFlights(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: searchFlightsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FlightServiceServer).SearchFlights(ctx, req.(*SearchFlightsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func rankOffersHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RankOffersRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlightServiceServer).RankOffers(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: rankOffersMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FlightServiceServer).RankOffers(ctx, req.(*RankOffersRequest))
	}
	return interceptor(ctx, in, info, handler)
}
