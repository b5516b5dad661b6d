package rpc

import (
	"context"

	"google.golang.org/grpc"

	"sorcerer/pkg/protocol"
)

// ServiceName is the fully-qualified gRPC service name of an agent.
const ServiceName = "sorcerer.Agent"

// Full method names.
const (
	MethodInvoke     = "/" + ServiceName + "/Invoke"
	MethodGetStatus  = "/" + ServiceName + "/GetStatus"
	MethodGetHistory = "/" + ServiceName + "/GetHistory"
	MethodTerminate  = "/" + ServiceName + "/Terminate"
)

// serviceDesc describes the agent service for grpc.Server.RegisterService.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*protocol.AgentService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Invoke", Handler: invokeHandler},
		{MethodName: "GetStatus", Handler: statusHandler},
		{MethodName: "GetHistory", Handler: historyHandler},
		{MethodName: "Terminate", Handler: terminateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sorcerer/agent",
}

// Register attaches svc to s.
func Register(s *grpc.Server, svc protocol.AgentService) {
	s.RegisterService(&serviceDesc, svc)
}

// unary adapts a typed handler to the grpc method handler signature,
// honoring an optional interceptor.
func unary[Req any, Resp any](
	method string,
	call func(svc protocol.AgentService, ctx context.Context, req *Req) (*Resp, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		svc := srv.(protocol.AgentService)
		if interceptor == nil {
			return call(svc, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(svc, ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var (
	invokeHandler = unary(MethodInvoke,
		func(svc protocol.AgentService, ctx context.Context, req *protocol.InvokeRequest) (*protocol.InvokeResponse, error) {
			return svc.Invoke(ctx, req)
		})
	statusHandler = unary(MethodGetStatus,
		func(svc protocol.AgentService, ctx context.Context, req *protocol.StatusRequest) (*protocol.StatusResponse, error) {
			return svc.GetStatus(ctx, req)
		})
	historyHandler = unary(MethodGetHistory,
		func(svc protocol.AgentService, ctx context.Context, req *protocol.HistoryRequest) (*protocol.HistoryResponse, error) {
			return svc.GetHistory(ctx, req)
		})
	terminateHandler = unary(MethodTerminate,
		func(svc protocol.AgentService, ctx context.Context, req *protocol.TerminateRequest) (*protocol.TerminateResponse, error) {
			return svc.Terminate(ctx, req)
		})
)
