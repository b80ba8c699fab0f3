// Package rpc implements the gRPC API of the shortener.
//
// The service uses protobuf wrapper types for its messages, so it is
// described by hand instead of generated from a .proto file:
//
//	service Shortener {
//	  rpc Shorten(google.protobuf.StringValue) returns (google.protobuf.StringValue);
//	  rpc Resolve(google.protobuf.StringValue) returns (google.protobuf.StringValue);
//	}
package rpc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KretovDmitry/tinyurl/internal/config"
	"github.com/KretovDmitry/tinyurl/internal/errs"
	"github.com/KretovDmitry/tinyurl/internal/logger"
	"github.com/KretovDmitry/tinyurl/internal/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	serviceName           = "tinyurl.Shortener"
	shortenFullMethodName = "/" + serviceName + "/Shorten"
	resolveFullMethodName = "/" + serviceName + "/Resolve"
)

// ShortenerServer is the server API for the Shortener service.
type ShortenerServer interface {
	// Shorten returns the short URL of the given long URL.
	Shorten(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	// Resolve returns the long URL stored under the given short ID.
	Resolve(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

// Shortener allocates and resolves short IDs.
type Shortener interface {
	Allocate(ctx context.Context, url models.OriginalURL) (models.ShortID, error)
	Resolve(ctx context.Context, id models.ShortID) (models.OriginalURL, error)
}

// Server implements ShortenerServer on top of the shortener service.
type Server struct {
	shortener Shortener
	baseURL   string
}

// Interface implementation guards.
var _ ShortenerServer = (*Server)(nil)

// NewServer creates a new server, ensuring that the dependencies are valid values.
func NewServer(shortener Shortener, config *config.Config) (*Server, error) {
	if shortener == nil {
		return nil, fmt.Errorf("%w: shortener", errs.ErrNilDependency)
	}
	if config == nil {
		return nil, fmt.Errorf("%w: config", errs.ErrNilDependency)
	}
	return &Server{
		shortener: shortener,
		baseURL:   strings.TrimSuffix(config.Server.BaseURL, "/"),
	}, nil
}

// NewGRPCServer creates a grpc.Server with the Shortener service registered.
func NewGRPCServer(srv ShortenerServer, l logger.Logger) *grpc.Server {
	s := grpc.NewServer(unaryInterceptors(l))
	s.RegisterService(&ServiceDesc, srv)
	return s
}

// Shorten shortens the original url.
func (s *Server) Shorten(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	id, err := s.shortener.Allocate(ctx, models.OriginalURL(in.GetValue()))
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(s.baseURL + "/" + string(id)), nil
}

// Resolve returns the original url of the short id.
func (s *Server) Resolve(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	url, err := s.shortener.Resolve(ctx, models.ShortID(in.GetValue()))
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(string(url)), nil
}

// toStatus maps a service error to a status without store details.
func toStatus(err error) error {
	switch {
	case errors.Is(err, errs.ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, "url is not provided")
	case errors.Is(err, errs.ErrAllocationExhausted):
		return status.Error(codes.ResourceExhausted, "failed to allocate short url, try again")
	case errors.Is(err, errs.ErrNotFound):
		return status.Error(codes.NotFound, "short url not found")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func shortenHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShortenerServer).Shorten(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: shortenFullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ShortenerServer).Shorten(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func resolveHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShortenerServer).Resolve(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: resolveFullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ShortenerServer).Resolve(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the grpc.ServiceDesc for the Shortener service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ShortenerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Shorten",
			Handler:    shortenHandler,
		},
		{
			MethodName: "Resolve",
			Handler:    resolveHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tinyurl.proto",
}

// Client calls the Shortener service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a new client on top of the connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Shorten returns the short URL of url.
func (c *Client) Shorten(ctx context.Context, url string, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, shortenFullMethodName, wrapperspb.String(url), out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

// Resolve returns the long URL stored under id.
func (c *Client) Resolve(ctx context.Context, id string, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, resolveFullMethodName, wrapperspb.String(id), out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}
