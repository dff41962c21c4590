// Package adminpb defines the admin gRPC service. Requests and responses are
// google.protobuf.Struct messages so no generated code is required.
package adminpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "visionanalyzer.admin.v1.Admin"

const (
	GetUsageFullMethodName    = "/" + ServiceName + "/GetUsage"
	UpgradeTierFullMethodName = "/" + ServiceName + "/UpgradeTier"
	ResetUsageFullMethodName  = "/" + ServiceName + "/ResetUsage"
)

// AdminServer is the server API for the admin service.
type AdminServer interface {
	GetUsage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpgradeTier(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResetUsage(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterAdminServer registers srv on s.
func RegisterAdminServer(s grpc.ServiceRegistrar, srv AdminServer) {
	s.RegisterService(&Admin_ServiceDesc, srv)
}

type unaryCall func(AdminServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AdminServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AdminServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Admin_ServiceDesc is the grpc.ServiceDesc for the admin service.
var Admin_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AdminServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetUsage",
			Handler:    unaryHandler(GetUsageFullMethodName, AdminServer.GetUsage),
		},
		{
			MethodName: "UpgradeTier",
			Handler:    unaryHandler(UpgradeTierFullMethodName, AdminServer.UpgradeTier),
		},
		{
			MethodName: "ResetUsage",
			Handler:    unaryHandler(ResetUsageFullMethodName, AdminServer.ResetUsage),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "visionanalyzer/admin/v1/admin.proto",
}

// AdminClient is the client API for the admin service.
type AdminClient struct {
	cc grpc.ClientConnInterface
}

func NewAdminClient(cc grpc.ClientConnInterface) *AdminClient {
	return &AdminClient{cc: cc}
}

func (c *AdminClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUsage returns the usage of the user named by the "user_id" field.
func (c *AdminClient) GetUsage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GetUsageFullMethodName, in, opts...)
}

// UpgradeTier sets the "tier" of the user named by "user_id".
func (c *AdminClient) UpgradeTier(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, UpgradeTierFullMethodName, in, opts...)
}

// ResetUsage zeroes the counter of the user named by "user_id".
func (c *AdminClient) ResetUsage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ResetUsageFullMethodName, in, opts...)
}
