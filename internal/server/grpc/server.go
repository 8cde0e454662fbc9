// Package grpc serves starterkit.v1.AccountService over gRPC, next to the
// standard health service.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/starterkit/internal/logging"
	"github.com/dmitrijs2005/starterkit/internal/rpc"
	"github.com/dmitrijs2005/starterkit/internal/server/metrics"
	"github.com/dmitrijs2005/starterkit/internal/server/models"
	"github.com/dmitrijs2005/starterkit/internal/server/objectstore"
	"github.com/dmitrijs2005/starterkit/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type userSvc interface {
	SignUp(ctx context.Context, email, password string) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*services.TokenPair, error)
	SignOut(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	VerifyEmail(ctx context.Context, token string) (*services.TokenPair, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangeEmail(ctx context.Context, newEmail string) error
}

type avatarSvc interface {
	StorageStatus(ctx context.Context) objectstore.Status
	IssueUploadURL(ctx context.Context) (*services.UploadTarget, error)
	RecordAvatarKey(ctx context.Context, key string) error
	CurrentProfile(ctx context.Context) (*services.Profile, error)
}

type GRPCServer struct {
	address   string
	users     userSvc
	avatars   avatarSvc
	metrics   *metrics.Metrics
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, us userSvc, as avatarSvc, m *metrics.Metrics, secretKey string) (*GRPCServer, error) {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		avatars:   as,
		metrics:   m,
		jwtSecret: []byte(secretKey),
	}, nil
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.metricsInterceptor, s.accessTokenInterceptor))

	rpc.RegisterAccountServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
