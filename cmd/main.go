package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	apicontext "github.com/dtroode/vision-analyzer/internal/api/context"
	grpcRouter "github.com/dtroode/vision-analyzer/internal/api/grpc/router"
	grpcServer "github.com/dtroode/vision-analyzer/internal/api/grpc/server"
	httpRouter "github.com/dtroode/vision-analyzer/internal/api/http/router"
	httpServer "github.com/dtroode/vision-analyzer/internal/api/http/server"
	"github.com/dtroode/vision-analyzer/internal/config"
	"github.com/dtroode/vision-analyzer/internal/identity"
	"github.com/dtroode/vision-analyzer/internal/logger"
	"github.com/dtroode/vision-analyzer/internal/metrics"
	"github.com/dtroode/vision-analyzer/internal/model"
	"github.com/dtroode/vision-analyzer/internal/repository/memory"
	"github.com/dtroode/vision-analyzer/internal/repository/postgres"
	"github.com/dtroode/vision-analyzer/internal/repository/redis"
	"github.com/dtroode/vision-analyzer/internal/server"
	"github.com/dtroode/vision-analyzer/internal/service"
	storage "github.com/dtroode/vision-analyzer/internal/storage/minio"
	"github.com/dtroode/vision-analyzer/internal/token"
	"github.com/dtroode/vision-analyzer/internal/vision"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.NewWithFormat(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if cfg.LogLevel > int(slog.LevelDebug) {
		gin.SetMode(gin.ReleaseMode)
	}

	logAppVersion(logger)

	m := metrics.New()

	store, closeStore, err := newEntitlementStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize entitlement store", "backend", cfg.StoreBackend, "error", err)
	}
	defer closeStore.Close()

	verifier, err := newIdentityVerifier(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize identity verifier", "mode", cfg.Auth.Mode, "error", err)
	}

	describer, err := vision.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		logger.Fatal("failed to initialize vision client", "error", err)
	}

	var archive model.Storage
	if cfg.Storage.Enabled {
		archive, err = storage.New(ctx, storage.Options{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			logger.Fatal("failed to initialize storage client", "error", err)
		}
	}

	entitlementService := service.NewEntitlement(store, cfg.Quota.FreeLimit, m, logger)
	analysisService := service.NewAnalysis(entitlementService, describer, archive, cfg.Quota.MaxUploadBytes, m, logger)

	if cfg.AdminToken == "" {
		logger.Warn("ADMIN_TOKEN is not set, admin gRPC calls will be rejected")
	}

	servers := []struct {
		server model.Server
		sl     model.SecurityLayer
	}{
		{
			server: registerHTTPServer(cfg, logger, m, entitlementService, analysisService, verifier),
			sl:     server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName),
		},
		{
			server: registerGRPCServer(logger, entitlementService, cfg.AdminToken, fmt.Sprintf(":%s", cfg.GRPC.Port)),
			sl:     server.NewSecurityLayer(cfg.GRPC.EnableHTTPS, cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName),
		},
	}

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server, sl model.SecurityLayer) {
			defer wg.Done()
			logger.Info("Starting server on", "server", s.Name(), "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "server", s.Name(), "error", err)
				stop()
			}
		}(s.server, s.sl)
	}

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.server.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "server", s.server.Name(), "error", err, "address", s.server.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion(logger *logger.Logger) {
	logger.Info("vision analyzer",
		"build_version", buildVersion,
		"build_date", buildDate,
		"build_commit", buildCommit)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func newEntitlementStore(ctx context.Context, cfg *config.Config) (model.EntitlementStore, io.Closer, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewEntitlementRepository(db), db, nil
	case config.StoreRedis:
		client, err := redis.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		return redis.NewEntitlementRepository(client, cfg.Redis.KeyPrefix), client, nil
	case config.StoreMemory:
		return memory.NewEntitlementRepository(), closerFunc(func() error { return nil }), nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func newIdentityVerifier(ctx context.Context, cfg *config.Config) (model.IdentityVerifier, error) {
	if cfg.Auth.Mode == config.AuthJWT {
		return token.NewJWT(cfg.Auth.JWTSecret), nil
	}
	return identity.NewOIDC(ctx, cfg.Auth.OIDCIssuerURL, cfg.Auth.OIDCClientID)
}

func registerHTTPServer(
	cfg *config.Config,
	logger *logger.Logger,
	m *metrics.Metrics,
	entitlementService *service.Entitlement,
	analysisService *service.Analysis,
	verifier model.IdentityVerifier,
) *httpServer.HTTPServer {
	r := httpRouter.New(
		entitlementService,
		analysisService,
		verifier,
		apicontext.NewManager(),
		httpRouter.Burst{PerSecond: cfg.Quota.BurstRate, Size: cfg.Quota.Burst},
		m,
		logger,
	)

	return httpServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))
}

func registerGRPCServer(
	logger *logger.Logger,
	entitlementService *service.Entitlement,
	adminToken string,
	addr string,
) *grpcServer.GRPCServer {
	r := grpcRouter.New(entitlementService, adminToken, logger)
	return grpcServer.NewGRPCServer(r.Register(), addr)
}
