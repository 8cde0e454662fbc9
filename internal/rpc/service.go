// Package rpc describes the starterkit.v1.AccountService gRPC service: its
// messages, server registration and client stub. Messages are plain structs
// carried by the JSON codec registered in this package.
package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "starterkit.v1.AccountService"

// Full method names, as seen by interceptors.
const (
	MethodSignUp               = "/" + ServiceName + "/SignUp"
	MethodSignIn               = "/" + ServiceName + "/SignIn"
	MethodSignOut              = "/" + ServiceName + "/SignOut"
	MethodRefreshToken         = "/" + ServiceName + "/RefreshToken"
	MethodVerifyEmail          = "/" + ServiceName + "/VerifyEmail"
	MethodRequestPasswordReset = "/" + ServiceName + "/RequestPasswordReset"
	MethodResetPassword        = "/" + ServiceName + "/ResetPassword"
	MethodChangeEmail          = "/" + ServiceName + "/ChangeEmail"
	MethodIssueUploadURL       = "/" + ServiceName + "/IssueUploadURL"
	MethodRecordAvatarKey      = "/" + ServiceName + "/RecordAvatarKey"
	MethodFetchCurrentProfile  = "/" + ServiceName + "/FetchCurrentProfile"
	MethodFetchStorageStatus   = "/" + ServiceName + "/FetchStorageStatus"
)

type AccountServer interface {
	SignUp(context.Context, *SignUpRequest) (*SignUpResponse, error)
	SignIn(context.Context, *SignInRequest) (*TokenResponse, error)
	SignOut(context.Context, *SignOutRequest) (*Empty, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error)
	VerifyEmail(context.Context, *VerifyEmailRequest) (*TokenResponse, error)
	RequestPasswordReset(context.Context, *RequestPasswordResetRequest) (*Empty, error)
	ResetPassword(context.Context, *ResetPasswordRequest) (*Empty, error)
	ChangeEmail(context.Context, *ChangeEmailRequest) (*Empty, error)
	IssueUploadURL(context.Context, *Empty) (*IssueUploadURLResponse, error)
	RecordAvatarKey(context.Context, *RecordAvatarKeyRequest) (*Empty, error)
	FetchCurrentProfile(context.Context, *Empty) (*ProfileResponse, error)
	FetchStorageStatus(context.Context, *Empty) (*StorageStatusResponse, error)
}

// unary adapts a typed server method to grpc.MethodHandler.
func unary[Req, Resp any](fullMethod string, call func(AccountServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AccountServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AccountServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SignUp", Handler: unary(MethodSignUp, AccountServer.SignUp)},
		{MethodName: "SignIn", Handler: unary(MethodSignIn, AccountServer.SignIn)},
		{MethodName: "SignOut", Handler: unary(MethodSignOut, AccountServer.SignOut)},
		{MethodName: "RefreshToken", Handler: unary(MethodRefreshToken, AccountServer.RefreshToken)},
		{MethodName: "VerifyEmail", Handler: unary(MethodVerifyEmail, AccountServer.VerifyEmail)},
		{MethodName: "RequestPasswordReset", Handler: unary(MethodRequestPasswordReset, AccountServer.RequestPasswordReset)},
		{MethodName: "ResetPassword", Handler: unary(MethodResetPassword, AccountServer.ResetPassword)},
		{MethodName: "ChangeEmail", Handler: unary(MethodChangeEmail, AccountServer.ChangeEmail)},
		{MethodName: "IssueUploadURL", Handler: unary(MethodIssueUploadURL, AccountServer.IssueUploadURL)},
		{MethodName: "RecordAvatarKey", Handler: unary(MethodRecordAvatarKey, AccountServer.RecordAvatarKey)},
		{MethodName: "FetchCurrentProfile", Handler: unary(MethodFetchCurrentProfile, AccountServer.FetchCurrentProfile)},
		{MethodName: "FetchStorageStatus", Handler: unary(MethodFetchStorageStatus, AccountServer.FetchStorageStatus)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "starterkit/v1/account.proto",
}

func RegisterAccountServer(s grpc.ServiceRegistrar, srv AccountServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type AccountClient interface {
	SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*SignUpResponse, error)
	SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*Empty, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	VerifyEmail(ctx context.Context, in *VerifyEmailRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	RequestPasswordReset(ctx context.Context, in *RequestPasswordResetRequest, opts ...grpc.CallOption) (*Empty, error)
	ResetPassword(ctx context.Context, in *ResetPasswordRequest, opts ...grpc.CallOption) (*Empty, error)
	ChangeEmail(ctx context.Context, in *ChangeEmailRequest, opts ...grpc.CallOption) (*Empty, error)
	IssueUploadURL(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*IssueUploadURLResponse, error)
	RecordAvatarKey(ctx context.Context, in *RecordAvatarKeyRequest, opts ...grpc.CallOption) (*Empty, error)
	FetchCurrentProfile(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ProfileResponse, error)
	FetchStorageStatus(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*StorageStatusResponse, error)
}

type accountClient struct {
	cc grpc.ClientConnInterface
}

func NewAccountClient(cc grpc.ClientConnInterface) AccountClient {
	return &accountClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *accountClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*SignUpResponse, error) {
	return invoke[SignUpResponse](ctx, c.cc, MethodSignUp, in, opts)
}

func (c *accountClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, MethodSignIn, in, opts)
}

func (c *accountClient) SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodSignOut, in, opts)
}

func (c *accountClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *accountClient) VerifyEmail(ctx context.Context, in *VerifyEmailRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, MethodVerifyEmail, in, opts)
}

func (c *accountClient) RequestPasswordReset(ctx context.Context, in *RequestPasswordResetRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodRequestPasswordReset, in, opts)
}

func (c *accountClient) ResetPassword(ctx context.Context, in *ResetPasswordRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodResetPassword, in, opts)
}

func (c *accountClient) ChangeEmail(ctx context.Context, in *ChangeEmailRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodChangeEmail, in, opts)
}

func (c *accountClient) IssueUploadURL(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*IssueUploadURLResponse, error) {
	return invoke[IssueUploadURLResponse](ctx, c.cc, MethodIssueUploadURL, in, opts)
}

func (c *accountClient) RecordAvatarKey(ctx context.Context, in *RecordAvatarKeyRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodRecordAvatarKey, in, opts)
}

func (c *accountClient) FetchCurrentProfile(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c.cc, MethodFetchCurrentProfile, in, opts)
}

func (c *accountClient) FetchStorageStatus(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*StorageStatusResponse, error) {
	return invoke[StorageStatusResponse](ctx, c.cc, MethodFetchStorageStatus, in, opts)
}
