package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/server/auth"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var codeBySentinel = []struct {
	err  error
	code codes.Code
}{
	{common.ErrStorageDisabled, codes.FailedPrecondition},
	{common.ErrEmailNotVerified, codes.FailedPrecondition},
	{common.ErrInvalidCredentials, codes.Unauthenticated},
	{common.ErrRefreshTokenExpired, codes.Unauthenticated},
	{common.ErrUserExists, codes.AlreadyExists},
	{common.ErrNotFound, codes.NotFound},
	{common.ErrInvalidEmail, codes.InvalidArgument},
	{common.ErrPasswordTooShort, codes.InvalidArgument},
	{common.ErrPasswordTooLong, codes.InvalidArgument},
	{common.ErrInvalidAvatarKey, codes.InvalidArgument},
	{common.ErrInvalidToken, codes.InvalidArgument},
	{common.ErrTokenExpired, codes.InvalidArgument},
}

// toStatus maps service errors to gRPC statuses carrying the user-facing
// message. An anonymous call made with an expired access token is answered
// with ErrTokenExpired so the client can refresh and retry.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrUnauthenticated) {
		if auth.TokenExpired(ctx) {
			return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		}
		return status.Error(codes.Unauthenticated, common.ErrUnauthenticated.Error())
	}

	for _, m := range codeBySentinel {
		if errors.Is(err, m.err) {
			return status.Error(m.code, m.err.Error())
		}
	}

	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, common.ErrInternal.Error())
}

// requireUserIfExpired rejects callers whose access token has expired.
func (s *GRPCServer) requireUserIfExpired(ctx context.Context) error {
	if auth.TokenExpired(ctx) {
		return s.toStatus(ctx, common.ErrUnauthenticated)
	}
	return nil
}
