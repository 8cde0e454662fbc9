package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const pingTimeout = 3 * time.Second

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      rpc.AccountClient
	health      healthpb.HealthClient
	dialOptions []grpc.DialOption

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	onTokens     func(accessToken, refreshToken string)
}

var _ Client = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

// accessTokenInterceptor attaches the access token and, when the server says
// it expired, refreshes the session once and repeats the call.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	accessToken, refreshToken := s.Tokens()

	err := invoker(withAccessToken(ctx, accessToken), method, req, reply, cc, opts...)
	if err == nil || !isTokenExpired(err) {
		return err
	}
	if method == rpc.MethodRefreshToken || refreshToken == "" {
		return err
	}

	resp, rerr := s.client.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: refreshToken})
	if rerr != nil {
		return rerr
	}
	s.storeTokens(resp)

	return invoker(withAccessToken(ctx, resp.AccessToken), method, req, reply, cc, opts...)
}

func NewGRPCClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, s.dialOptions...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewAccountClient(conn)
	s.health = healthpb.NewHealthClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
}

func (s *GRPCClient) Tokens() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken, s.refreshToken
}

// OnTokens registers fn to be called whenever the session tokens change,
// including silent refreshes.
func (s *GRPCClient) OnTokens(fn func(accessToken, refreshToken string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTokens = fn
}

func (s *GRPCClient) storeTokens(resp *rpc.TokenResponse) {
	s.mu.Lock()
	s.accessToken = resp.AccessToken
	s.refreshToken = resp.RefreshToken
	fn := s.onTokens
	s.mu.Unlock()

	if fn != nil {
		fn(resp.AccessToken, resp.RefreshToken)
	}
}

func (s *GRPCClient) clearTokens() {
	s.storeTokens(&rpc.TokenResponse{})
}

// Ping asks the standard health service whether the account service serves.
func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: rpc.ServiceName})
	if err != nil {
		return s.mapError(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) SignUp(ctx context.Context, email string, password []byte) (string, error) {
	resp, err := s.client.SignUp(ctx, &rpc.SignUpRequest{Email: email, Password: string(password)})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.UserID, nil
}

func (s *GRPCClient) SignIn(ctx context.Context, email string, password []byte) error {
	resp, err := s.client.SignIn(ctx, &rpc.SignInRequest{Email: email, Password: string(password)})
	if err != nil {
		return s.mapError(err)
	}
	s.storeTokens(resp)
	return nil
}

// SignOut revokes the refresh token on the server. Local tokens are dropped
// even when the server cannot be reached.
func (s *GRPCClient) SignOut(ctx context.Context) error {
	_, refreshToken := s.Tokens()
	defer s.clearTokens()

	if refreshToken == "" {
		return nil
	}
	if _, err := s.client.SignOut(ctx, &rpc.SignOutRequest{RefreshToken: refreshToken}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) VerifyEmail(ctx context.Context, token string) error {
	resp, err := s.client.VerifyEmail(ctx, &rpc.VerifyEmailRequest{Token: token})
	if err != nil {
		return s.mapError(err)
	}
	s.storeTokens(resp)
	return nil
}

func (s *GRPCClient) RequestPasswordReset(ctx context.Context, email string) error {
	_, err := s.client.RequestPasswordReset(ctx, &rpc.RequestPasswordResetRequest{Email: email})
	return s.mapError(err)
}

func (s *GRPCClient) ResetPassword(ctx context.Context, token string, password []byte) error {
	_, err := s.client.ResetPassword(ctx, &rpc.ResetPasswordRequest{Token: token, Password: string(password)})
	return s.mapError(err)
}

func (s *GRPCClient) ChangeEmail(ctx context.Context, email string) error {
	_, err := s.client.ChangeEmail(ctx, &rpc.ChangeEmailRequest{Email: email})
	return s.mapError(err)
}

func (s *GRPCClient) IssueUploadURL(ctx context.Context) (*rpc.IssueUploadURLResponse, error) {
	resp, err := s.client.IssueUploadURL(ctx, &rpc.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) RecordAvatarKey(ctx context.Context, key string) error {
	_, err := s.client.RecordAvatarKey(ctx, &rpc.RecordAvatarKeyRequest{Key: key})
	return s.mapError(err)
}

// CurrentProfile returns nil, nil when the server does not know the caller.
func (s *GRPCClient) CurrentProfile(ctx context.Context) (*rpc.Profile, error) {
	resp, err := s.client.FetchCurrentProfile(ctx, &rpc.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Profile, nil
}

func (s *GRPCClient) StorageStatus(ctx context.Context) (*rpc.StorageStatusResponse, error) {
	resp, err := s.client.FetchStorageStatus(ctx, &rpc.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

// mapError turns gRPC statuses into sentinels. Messages the server produced
// from a known sentinel map back to that sentinel.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}

	for _, known := range knownErrors {
		if st.Message() == known.Error() {
			return known
		}
	}

	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.Internal:
		return common.ErrInternal
	default:
		return fmt.Errorf("rpc error: %w", errors.New(st.Message()))
	}
}
