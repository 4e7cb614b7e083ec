package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	pb "github.com/arimanyus/meanshift/pkg/api/grpc/proto"
	"github.com/arimanyus/meanshift/pkg/api/rest/middleware"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Config holds the REST server configuration.
type Config struct {
	Host        string
	Port        int
	GRPCAddress string
	CORSEnabled bool
	CORSOrigins []string
	Auth        middleware.AuthConfig
	RateLimit   middleware.RateLimitConfig
}

// Server is the REST API server, proxying every request to the gRPC
// service over a loopback client connection (the same shape as the
// teacher's pkg/api/rest.Server, which proxied to a VectorDB gRPC
// service the same way).
type Server struct {
	config     Config
	handler    *Handler
	httpServer *http.Server
	grpcConn   *grpc.ClientConn
	mux        *http.ServeMux
	startTime  time.Time
}

// NewServer creates a new REST API server backed by a gRPC client dialed
// at config.GRPCAddress.
func NewServer(config Config) (*Server, error) {
	conn, err := grpc.NewClient(
		config.GRPCAddress,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(pb.JSONCodec{})),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to gRPC server: %w", err)
	}

	client := pb.NewKDEClient(conn)
	handler := NewHandler(client)

	server := &Server{
		config:    config,
		handler:   handler,
		grpcConn:  conn,
		mux:       http.NewServeMux(),
		startTime: time.Now(),
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      server.withMiddleware(server.mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server, nil
}

// setupRoutes configures every HTTP route (spec §4's operations plus the
// model-lifecycle CRUD of the service layer).
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/v1/health", s.healthCheck)

	s.mux.HandleFunc("/v1/models", s.routeModels)
	s.mux.HandleFunc("/v1/models/", s.routeModelPath)

	s.mux.HandleFunc("/v1/sample/mult", s.handler.Mult)
}

// routeModels handles GET/POST on the /v1/models collection.
func (s *Server) routeModels(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handler.ListModels(w, r)
	case http.MethodPost:
		s.handler.CreateModel(w, r)
	default:
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// routeModelPath dispatches /v1/models/{name}[/op] by suffix, since
// net/http.ServeMux (pre-1.22 style patterns, matching the teacher's mux
// usage) can't pattern-match path segments itself.
func (s *Server) routeModelPath(w http.ResponseWriter, r *http.Request) {
	switch {
	case hasSuffix(r, "/stats"):
		s.handler.Stats(w, r)
	case hasSuffix(r, "/data"):
		s.handler.SetData(w, r)
	case hasSuffix(r, "/kernel"):
		s.handler.SetKernel(w, r)
	case hasSuffix(r, "/scale-silverman"):
		s.handler.ScaleSilverman(w, r)
	case hasSuffix(r, "/scale-scott"):
		s.handler.ScaleScott(w, r)
	case hasSuffix(r, "/scale"):
		s.handler.SetScale(w, r)
	case hasSuffix(r, "/spatial"):
		s.handler.SetSpatial(w, r)
	case hasSuffix(r, "/balls"):
		s.handler.SetBalls(w, r)
	case hasSuffix(r, "/prob"):
		s.handler.Prob(w, r)
	case hasSuffix(r, "/mode"):
		s.handler.Mode(w, r)
	case hasSuffix(r, "/manifold"):
		s.handler.Manifold(w, r)
	case hasSuffix(r, "/cluster"):
		s.handler.Cluster(w, r)
	case hasSuffix(r, "/assign"):
		s.handler.AssignCluster(w, r)
	case hasSuffix(r, "/draw"):
		s.handler.Draw(w, r)
	case hasSuffix(r, "/bootstrap"):
		s.handler.Bootstrap(w, r)
	case r.Method == http.MethodDelete:
		s.handler.DeleteModel(w, r)
	default:
		http.NotFound(w, r)
	}
}

func hasSuffix(r *http.Request, suffix string) bool {
	p := r.URL.Path
	return len(p) >= len(suffix) && p[len(p)-len(suffix):] == suffix
}

// healthCheck handles GET /v1/health without round-tripping to the gRPC
// server, since liveness must work even if the registry is empty.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

// withMiddleware wraps the handler with logging, CORS, rate limiting, and
// auth: each wrapper is applied around the previous one, so auth is the
// outermost layer (it runs first) and logging the innermost.
func (s *Server) withMiddleware(handler http.Handler) http.Handler {
	handler = loggingMiddleware(handler)

	if s.config.CORSEnabled {
		handler = corsMiddleware(s.config.CORSOrigins)(handler)
	}

	rateLimiter := middleware.NewRateLimiter(s.config.RateLimit)
	handler = middleware.RateLimitMiddleware(rateLimiter)(handler)

	handler = middleware.AuthMiddleware(s.config.Auth)(handler)

	return handler
}

// Start starts the REST API server.
func (s *Server) Start() error {
	log.Printf("Starting REST API server on %s:%d", s.config.Host, s.config.Port)
	log.Printf("Proxying to gRPC server at %s", s.config.GRPCAddress)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	log.Println("Shutting down REST API server...")

	if s.grpcConn != nil {
		if err := s.grpcConn.Close(); err != nil {
			log.Printf("Error closing gRPC connection: %v", err)
		}
	}

	return s.httpServer.Shutdown(ctx)
}

// loggingMiddleware logs every HTTP request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		log.Printf("%s %s %d %v", r.Method, r.URL.Path, wrapped.statusCode, duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware adds CORS headers.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
				allowed = true
				origin = "*"
			} else {
				for _, allowedOrigin := range allowedOrigins {
					if allowedOrigin == origin {
						allowed = true
						break
					}
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Max-Age", "3600")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
