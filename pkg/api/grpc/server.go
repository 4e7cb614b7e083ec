// Package grpc exposes pkg/registry's façade operations over gRPC, adapted
// from the teacher's pkg/api/grpc (a VectorDB gRPC service wrapping
// per-namespace pkg/hnsw indexes, pkg/search full-text/hybrid indexes, and a
// metadata store) to wrap one pkg/registry.Registry of named MeanShift
// façades instead — the same grpc.Server/listener/graceful-shutdown shape,
// same TLS/keepalive/reflection wiring, a different payload underneath.
package grpc

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/arimanyus/meanshift/pkg/api/grpc/proto"
	"github.com/arimanyus/meanshift/pkg/cachekv"
	"github.com/arimanyus/meanshift/pkg/config"
	"github.com/arimanyus/meanshift/pkg/observability"
	"github.com/arimanyus/meanshift/pkg/registry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

func init() {
	// Registering under "json" lets the server and any client built with
	// proto.NewKDEClient negotiate this codec with no further wiring (grpc
	// selects the codec named by the request's content-subtype, which
	// defaults to "json" here via grpc.ForceServerCodec/ForceCodec below).
	// See SPEC_FULL.md's "Open Question resolution (gRPC marshalling)" for
	// why there is no protoc-generated codec to register instead.
	encoding.RegisterCodec(proto.JSONCodec{})
}

// Server is the gRPC server hosting one pkg/registry.Registry of named
// MeanShift façades.
type Server struct {
	config     *config.Config
	grpcServer *grpc.Server
	listener   net.Listener
	startTime  time.Time
	shutdownMu sync.Mutex
	isShutdown bool

	registry *registry.Registry
	metrics  *observability.Metrics
	logger   *observability.Logger
	cache    *cachekv.Cache
}

// NewServer creates a gRPC server backed by a fresh registry sized per
// cfg.Models. When cfg.Cache.Enabled, Prob/Mode/AssignCluster results are
// memoized in a shared cachekv.Cache keyed by (model, op, query vector);
// model setters invalidate their model's entries so a memoized result never
// outlives the state it was computed from.
func NewServer(cfg *config.Config, metrics *observability.Metrics, logger *observability.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var cache *cachekv.Cache
	if cfg.Cache.Enabled {
		cache = cachekv.New(cfg.Cache.Capacity, cfg.Cache.TTL)
	}

	return &Server{
		config:    cfg,
		registry:  registry.New(cfg.Models.MaxModels),
		metrics:   metrics,
		logger:    logger,
		cache:     cache,
		startTime: time.Now(),
	}, nil
}

// Registry exposes the underlying registry.
func (s *Server) Registry() *registry.Registry { return s.registry }

// Start starts the gRPC server.
func (s *Server) Start() error {
	var opts []grpc.ServerOption

	if s.config.Server.EnableTLS {
		cert, err := tls.LoadX509KeyPair(s.config.Server.CertFile, s.config.Server.KeyFile)
		if err != nil {
			return fmt.Errorf("failed to load TLS certificates: %w", err)
		}
		tlsConfig := &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		opts = append(opts, grpc.Creds(credentials.NewTLS(tlsConfig)))
		s.logger.Info("TLS enabled")
	}

	kaParams := keepalive.ServerParameters{
		MaxConnectionIdle: 15 * time.Second,
		MaxConnectionAge:  30 * time.Second,
		Time:              5 * time.Second,
		Timeout:           1 * time.Second,
	}
	opts = append(opts, grpc.KeepaliveParams(kaParams))
	opts = append(opts, grpc.MaxConcurrentStreams(uint32(s.config.Server.MaxConnections)))
	opts = append(opts, grpc.ForceServerCodec(proto.JSONCodec{}))

	s.grpcServer = grpc.NewServer(opts...)
	proto.RegisterKDEServer(s.grpcServer, s)
	reflection.Register(s.grpcServer)

	addr := s.config.Server.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	s.logger.Info("KDE gRPC server listening", map[string]interface{}{"address": addr})

	go func() {
		if err := s.grpcServer.Serve(listener); err != nil {
			s.logger.Error("gRPC server error", map[string]interface{}{"error": err.Error()})
		}
	}()

	return nil
}

// Stop gracefully shuts down the server, forcing it after
// cfg.Server.ShutdownTimeout elapses.
func (s *Server) Stop() error {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()

	if s.isShutdown {
		return nil
	}

	s.logger.Info("Shutting down gRPC server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		s.logger.Info("gRPC server stopped gracefully")
	case <-ctx.Done():
		s.logger.Warn("Shutdown timeout exceeded, forcing stop")
		s.grpcServer.Stop()
	}

	s.isShutdown = true
	return nil
}

// Addr returns the bound listener address, valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.config.Server.Address()
	}
	return s.listener.Addr().String()
}

// Uptime returns server uptime.
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}
