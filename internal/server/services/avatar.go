package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/logging"
	"github.com/dmitrijs2005/starterkit/internal/server/auth"
	"github.com/dmitrijs2005/starterkit/internal/server/cache"
	"github.com/dmitrijs2005/starterkit/internal/server/objectstore"
	"github.com/dmitrijs2005/starterkit/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ObjectStore is the part of objectstore.Store the avatar flow needs.
type ObjectStore interface {
	Status(ctx context.Context) objectstore.Status
	PresignPut(ctx context.Context, key string) (*objectstore.Presigned, error)
	PresignGet(ctx context.Context, key string) (*objectstore.Presigned, error)
}

// StorageDisabledError is returned when uploads are requested while the
// object store is unconfigured. It matches common.ErrStorageDisabled.
type StorageDisabledError struct {
	Missing []string
}

func (e *StorageDisabledError) Error() string { return common.ErrStorageDisabled.Error() }
func (e *StorageDisabledError) Unwrap() error { return common.ErrStorageDisabled }

// UploadTarget tells the client where to PUT the image and which key to
// record afterwards.
type UploadTarget struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Profile is what the current user sees about themselves.
type Profile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	AvatarKey     string `json:"avatar_key,omitempty"`
	AvatarURL     string `json:"avatar_url,omitempty"`
}

// AvatarKeyPrefix is the private namespace of userID in the bucket.
func AvatarKeyPrefix(userID string) string {
	return common.AvatarKeyRoot + "/" + userID + "/"
}

// OwnsAvatarKey reports whether key lies strictly under userID's prefix.
func OwnsAvatarKey(userID, key string) bool {
	if userID == "" {
		return false
	}
	prefix := AvatarKeyPrefix(userID)
	return strings.HasPrefix(key, prefix) && len(key) > len(prefix)
}

type AvatarService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       ObjectStore
	urls        cache.Cache
	urlTTL      time.Duration
	logger      logging.Logger
}

// NewAvatarService caches presigned GET URLs for urlTTL, capped below the
// presign validity.
func NewAvatarService(db *sql.DB, m repomanager.RepositoryManager, store ObjectStore,
	urls cache.Cache, urlTTL time.Duration, logger logging.Logger) *AvatarService {
	if maxTTL := common.PresignValidity - time.Minute; urlTTL <= 0 || urlTTL > maxTTL {
		urlTTL = maxTTL
	}
	return &AvatarService{
		db:          db,
		repomanager: m,
		store:       store,
		urls:        urls,
		urlTTL:      urlTTL,
		logger:      logger.With("module", "avatar_service"),
	}
}

func (s *AvatarService) StorageStatus(ctx context.Context) objectstore.Status {
	return s.store.Status(ctx)
}

// IssueUploadURL checks storage before identity, so anonymous visitors
// also learn that uploads are off.
func (s *AvatarService) IssueUploadURL(ctx context.Context) (*UploadTarget, error) {
	if st := s.store.Status(ctx); !st.Enabled {
		return nil, &StorageDisabledError{Missing: st.Missing}
	}

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, common.ErrUnauthenticated
	}

	key := AvatarKeyPrefix(userID) + uuid.NewString()
	p, err := s.store.PresignPut(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrStorageDisabled) {
			return nil, &StorageDisabledError{Missing: s.store.Status(ctx).Missing}
		}
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	return &UploadTarget{URL: p.URL, Key: key, Method: p.Method, ExpiresAt: p.ExpiresAt}, nil
}

// RecordAvatarKey stores key as the caller's avatar after an upload.
func (s *AvatarService) RecordAvatarKey(ctx context.Context, key string) error {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return common.ErrUnauthenticated
	}
	if !OwnsAvatarKey(userID, key) {
		s.logger.Warn(ctx, "avatar key outside caller prefix", "user_id", userID, "key", key)
		return common.ErrInvalidAvatarKey
	}

	if err := s.repomanager.Users(s.db).SetAvatarKey(ctx, userID, key); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("error saving avatar key: %w", err)
	}

	s.logger.Info(ctx, "avatar updated", "user_id", userID)
	return nil
}

// CurrentProfile returns nil, nil for anonymous callers.
func (s *AvatarService) CurrentProfile(ctx context.Context) (*Profile, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, nil
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error loading profile: %w", err)
	}

	p := &Profile{
		ID:            user.ID,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		AvatarKey:     user.AvatarKey,
	}

	if OwnsAvatarKey(user.ID, user.AvatarKey) && s.store.Status(ctx).Enabled {
		p.AvatarURL = s.avatarURL(ctx, user.AvatarKey)
	}

	return p, nil
}

// avatarURL returns "" when the URL cannot be signed.
func (s *AvatarService) avatarURL(ctx context.Context, key string) string {
	if u, err := s.urls.Get(ctx, key); err == nil {
		return u
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn(ctx, "avatar url cache read failed", "error", err)
	}

	p, err := s.store.PresignGet(ctx, key)
	if err != nil {
		s.logger.Error(ctx, "presign avatar url failed", "key", key, "error", err)
		return ""
	}

	if err := s.urls.Set(ctx, key, p.URL, s.urlTTL); err != nil {
		s.logger.Warn(ctx, "avatar url cache write failed", "error", err)
	}
	return p.URL
}
