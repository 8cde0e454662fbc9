package grpc

import (
	"context"

	"github.com/dmitrijs2005/starterkit/internal/rpc"
	"github.com/dmitrijs2005/starterkit/internal/server/metrics"
	"github.com/dmitrijs2005/starterkit/internal/server/services"
)

func (s *GRPCServer) event(name string) {
	if s.metrics != nil {
		s.metrics.RecordEvent(name)
	}
}

func tokenResponse(p *services.TokenPair) *rpc.TokenResponse {
	return &rpc.TokenResponse{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}

func (s *GRPCServer) SignUp(ctx context.Context, req *rpc.SignUpRequest) (*rpc.SignUpResponse, error) {

	s.logger.Info(ctx, "Registration request")

	user, err := s.users.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.event(metrics.EventSignUp)
	s.logger.Info(ctx, "Registered", "user_id", user.ID)
	return &rpc.SignUpResponse{UserID: user.ID, Email: user.Email}, nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *rpc.SignInRequest) (*rpc.TokenResponse, error) {

	tokens, err := s.users.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.event(metrics.EventSignIn)
	return tokenResponse(tokens), nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *rpc.SignOutRequest) (*rpc.Empty, error) {
	if err := s.users.SignOut(ctx, req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *rpc.RefreshTokenRequest) (*rpc.TokenResponse, error) {

	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return tokenResponse(tokens), nil
}

func (s *GRPCServer) VerifyEmail(ctx context.Context, req *rpc.VerifyEmailRequest) (*rpc.TokenResponse, error) {

	tokens, err := s.users.VerifyEmail(ctx, req.Token)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.event(metrics.EventEmailVerified)
	return tokenResponse(tokens), nil
}

func (s *GRPCServer) RequestPasswordReset(ctx context.Context, req *rpc.RequestPasswordResetRequest) (*rpc.Empty, error) {
	if err := s.users.RequestPasswordReset(ctx, req.Email); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *rpc.ResetPasswordRequest) (*rpc.Empty, error) {
	if err := s.users.ResetPassword(ctx, req.Token, req.Password); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.event(metrics.EventPasswordReset)
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) ChangeEmail(ctx context.Context, req *rpc.ChangeEmailRequest) (*rpc.Empty, error) {
	if err := s.users.ChangeEmail(ctx, req.Email); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) IssueUploadURL(ctx context.Context, _ *rpc.Empty) (*rpc.IssueUploadURLResponse, error) {

	target, err := s.avatars.IssueUploadURL(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &rpc.IssueUploadURLResponse{
		URL:       target.URL,
		Key:       target.Key,
		Method:    target.Method,
		ExpiresAt: target.ExpiresAt,
	}, nil
}

func (s *GRPCServer) RecordAvatarKey(ctx context.Context, req *rpc.RecordAvatarKeyRequest) (*rpc.Empty, error) {
	if err := s.avatars.RecordAvatarKey(ctx, req.Key); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.event(metrics.EventAvatarUpdated)
	return &rpc.Empty{}, nil
}

// FetchCurrentProfile answers anonymous callers with a nil profile, unless
// their access token has expired, so the client can refresh first.
func (s *GRPCServer) FetchCurrentProfile(ctx context.Context, _ *rpc.Empty) (*rpc.ProfileResponse, error) {
	if err := s.requireUserIfExpired(ctx); err != nil {
		return nil, err
	}

	p, err := s.avatars.CurrentProfile(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	if p == nil {
		return &rpc.ProfileResponse{}, nil
	}

	return &rpc.ProfileResponse{Profile: &rpc.Profile{
		ID:            p.ID,
		Email:         p.Email,
		EmailVerified: p.EmailVerified,
		AvatarKey:     p.AvatarKey,
		AvatarURL:     p.AvatarURL,
	}}, nil
}

func (s *GRPCServer) FetchStorageStatus(ctx context.Context, _ *rpc.Empty) (*rpc.StorageStatusResponse, error) {
	st := s.avatars.StorageStatus(ctx)
	return &rpc.StorageStatusResponse{Enabled: st.Enabled, Missing: st.Missing}, nil
}
