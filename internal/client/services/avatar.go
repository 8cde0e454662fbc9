package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/client/client"
	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/filex"
	"github.com/dmitrijs2005/starterkit/internal/logging"
	"github.com/dmitrijs2005/starterkit/internal/netx"
	"github.com/dmitrijs2005/starterkit/internal/rpc"
)

// ErrNoProfile is returned after an upload when the server no longer knows
// the caller.
var ErrNoProfile = errors.New("profile not available")

// StorageDisabledError carries the missing settings reported by the server.
type StorageDisabledError struct {
	Missing []string
}

func (e *StorageDisabledError) Error() string { return common.ErrStorageDisabled.Error() }
func (e *StorageDisabledError) Unwrap() error { return common.ErrStorageDisabled }

type AvatarService interface {
	Status(ctx context.Context) (*rpc.StorageStatusResponse, error)
	Upload(ctx context.Context, path string, progress netx.Progress) (*rpc.Profile, error)
}

type avatarService struct {
	client        client.Client
	http          *http.Client
	uploadTimeout time.Duration
	maxSize       int64
	logger        logging.Logger
}

func NewAvatarService(c client.Client, httpClient *http.Client, uploadTimeout time.Duration, logger logging.Logger) AvatarService {
	return &avatarService{
		client:        c,
		http:          httpClient,
		uploadTimeout: uploadTimeout,
		maxSize:       common.MaxAvatarSize,
		logger:        logger.With("module", "avatar_service"),
	}
}

func (s *avatarService) Status(ctx context.Context) (*rpc.StorageStatusResponse, error) {
	return s.client.StorageStatus(ctx)
}

// Upload validates the file locally, sends it straight to the object store
// through a presigned URL and then records the key on the profile.
func (s *avatarService) Upload(ctx context.Context, path string, progress netx.Progress) (*rpc.Profile, error) {
	img, err := filex.ReadImage(path, s.maxSize)
	if err != nil {
		return nil, err
	}

	target, err := s.client.IssueUploadURL(ctx)
	if err != nil {
		if errors.Is(err, common.ErrStorageDisabled) {
			return nil, s.disabled(ctx)
		}
		return nil, fmt.Errorf("issue upload url: %w", err)
	}

	uploadCtx := ctx
	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		uploadCtx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}

	err = netx.UploadToPresignedURL(uploadCtx, s.http, netx.UploadRequest{
		URL:         target.URL,
		Method:      target.Method,
		ContentType: img.ContentType,
		Body:        img.Data,
		Progress:    progress,
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", img.Name, err)
	}

	if err := s.client.RecordAvatarKey(ctx, target.Key); err != nil {
		return nil, fmt.Errorf("record avatar: %w", err)
	}
	s.logger.Debug(ctx, "avatar uploaded", "key", target.Key, "bytes", len(img.Data))

	p, err := s.client.CurrentProfile(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNoProfile
	}
	return p, nil
}

func (s *avatarService) disabled(ctx context.Context) error {
	st, err := s.client.StorageStatus(ctx)
	if err != nil {
		return &StorageDisabledError{}
	}
	return &StorageDisabledError{Missing: st.Missing}
}
