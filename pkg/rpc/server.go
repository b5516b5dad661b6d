package rpc

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"sorcerer/pkg/protocol"
)

// Server hosts one AgentService over gRPC.
type Server struct {
	srv *grpc.Server
	log *zap.SugaredLogger
}

// NewServer builds a gRPC server exposing svc with the CBOR codec.
func NewServer(svc protocol.AgentService, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Server{log: log.Named("rpc")}
	s.srv = grpc.NewServer(
		grpc.ForceServerCodec(Codec{}),
		grpc.UnaryInterceptor(s.logCalls),
	)
	Register(s.srv, svc)
	return s
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully. It returns nil after a ctx-driven shutdown.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.srv.GracefulStop()
		case <-done:
		}
	}()

	s.log.Infow("listening", "addr", lis.Addr().String())
	if err := s.srv.Serve(lis); err != nil {
		return fmt.Errorf("serve %s: %w", lis.Addr(), err)
	}
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	lis, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, lis)
}

// Stop closes all connections immediately.
func (s *Server) Stop() {
	s.srv.Stop()
}

func (s *Server) logCalls(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		s.log.Warnw("call failed", "method", info.FullMethod, "error", err)
	} else {
		s.log.Debugw("call", "method", info.FullMethod)
	}
	return resp, err
}
