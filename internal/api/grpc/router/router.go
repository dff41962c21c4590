package router

import (
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"google.golang.org/grpc"

	"github.com/dtroode/vision-analyzer/internal/api/grpc/adminpb"
	"github.com/dtroode/vision-analyzer/internal/api/grpc/handler"
	"github.com/dtroode/vision-analyzer/internal/api/grpc/middleware"
	"github.com/dtroode/vision-analyzer/internal/logger"
)

// Router represents the admin gRPC router.
// It manages service registration and interceptor configuration.
type Router struct {
	adminService handler.AdminService
	adminToken   string
	logger       *logger.Logger
}

// New creates new gRPC Router instance.
func New(adminService handler.AdminService, adminToken string, logger *logger.Logger) *Router {
	return &Router{
		adminService: adminService,
		adminToken:   adminToken,
		logger:       logger,
	}
}

// Register registers the admin service behind logging and admin token
// interceptors and returns the configured gRPC server. Extra options are
// appended after the interceptors.
func (r *Router) Register(opts ...grpc.ServerOption) *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.adminToken, r.logger)

	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			auth.UnaryServerInterceptor(authenticate.AuthFunc),
		),
	}, opts...)

	s := grpc.NewServer(opts...)
	r.registerAdminRoutes(s)

	return s
}

func (r *Router) registerAdminRoutes(server *grpc.Server) {
	adminHandler := handler.NewAdmin(r.adminService, r.logger)
	adminpb.RegisterAdminServer(server, adminHandler)
}
